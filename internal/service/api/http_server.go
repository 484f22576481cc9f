package api

import (
	"net/http"
	"time"

	"github.com/darkkaiser/miniapp-server/internal/service/api/constants"
	"github.com/darkkaiser/miniapp-server/internal/service/api/httputil"
	appmiddleware "github.com/darkkaiser/miniapp-server/internal/service/api/middleware"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// hstsMaxAge HTTPS 사용 시 Strict-Transport-Security의 max-age (1년)
const hstsMaxAge = 31536000

// HTTPServerConfig HTTP 서버 생성에 필요한 설정을 정의합니다.
type HTTPServerConfig struct {
	// Debug Echo 프레임워크의 디버그 모드 활성화 여부
	Debug bool

	// AllowOrigins CORS에서 허용할 Origin 목록
	AllowOrigins []string

	// BodyLimit 요청 본문의 최대 크기 (예: "1M", 기본값: 1M)
	BodyLimit string

	// RequestTimeout 각 HTTP 요청의 최대 처리 시간 (기본값: 60초)
	RequestTimeout time.Duration

	// RateLimitPerSecond, RateLimitBurst IP별 요청 제한 (0이면 기본값)
	RateLimitPerSecond float64
	RateLimitBurst     int

	// EnableHSTS TLS 서버로 동작할 때 HSTS 헤더를 추가합니다.
	EnableHSTS bool
}

// NewHTTPServer 설정된 미들웨어를 포함한 Echo 인스턴스를 생성합니다.
//
// 미들웨어 적용 순서:
//
//  1. PanicRecovery - 이후 미들웨어와 핸들러의 panic을 복구합니다.
//  2. RequestID - 로깅보다 먼저 적용되어야 로그에 request_id가 포함됩니다.
//  3. Server 헤더 제거
//  4. HTTPLogger - 429/503 응답도 기록되도록 RateLimit/Timeout보다 앞에 둡니다.
//  5. RateLimiting - IP별 초당 요청 수 제한
//  6. BodyLimit - 초과 시 413
//  7. Timeout - 초과 시 503
//  8. CORS
//  9. Secure - 보안 헤더
//
// 라우트는 포함되지 않으며, 반환된 인스턴스에 별도로 등록해야 합니다.
func NewHTTPServer(cfg HTTPServerConfig) *echo.Echo {
	e := echo.New()

	e.Debug = cfg.Debug
	e.HideBanner = true
	e.HidePort = true

	e.Server.ReadHeaderTimeout = constants.DefaultReadHeaderTimeout
	e.Server.IdleTimeout = constants.DefaultIdleTimeout

	e.Logger = appmiddleware.NewLogger()
	e.HTTPErrorHandler = httputil.ErrorHandler

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = constants.DefaultRequestTimeout
	}
	bodyLimit := cfg.BodyLimit
	if bodyLimit == "" {
		bodyLimit = constants.DefaultMaxBodySize
	}
	rps := cfg.RateLimitPerSecond
	if rps <= 0 {
		rps = constants.DefaultRateLimitPerSecond
	}
	burst := cfg.RateLimitBurst
	if burst <= 0 {
		burst = constants.DefaultRateLimitBurst
	}

	// 1. Panic 복구
	e.Use(appmiddleware.PanicRecovery())
	// 2. Request ID
	e.Use(middleware.RequestID())
	// 3. Server 헤더 제거
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Del(echo.HeaderServer)
			return next(c)
		}
	})
	// 4. HTTP 로깅
	e.Use(appmiddleware.HTTPLogger())
	// 5. Rate Limiting
	e.Use(appmiddleware.RateLimiting(rps, burst))
	// 6. Body Limit
	e.Use(middleware.BodyLimit(bodyLimit))
	// 7. Timeout
	e.Use(middleware.ContextTimeoutWithConfig(middleware.ContextTimeoutConfig{
		Timeout: timeout,
	}))
	// 8. CORS
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderContentType, constants.HeaderAdminKey},
	}))
	// 9. 보안 헤더
	secure := middleware.DefaultSecureConfig
	if cfg.EnableHSTS {
		secure.HSTSMaxAge = hstsMaxAge
	}
	e.Use(middleware.SecureWithConfig(secure))

	return e
}
