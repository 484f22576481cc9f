package middleware

import (
	"net/url"
	"strconv"
	"time"

	"github.com/darkkaiser/miniapp-server/internal/service/api/constants"
	applog "github.com/darkkaiser/miniapp-server/pkg/log"
	"github.com/darkkaiser/miniapp-server/pkg/strutil"
	"github.com/labstack/echo/v4"
)

const (
	// defaultBytesIn Content-Length 헤더가 없을 때(Chunked 전송 등) bytes_in 필드에 기록할 값
	defaultBytesIn = "0"
)

// HTTPLogger HTTP 요청/응답을 구조화된 로그로 기록하는 미들웨어를 반환합니다.
//
// 관리자 키, 액세스 토큰, 앱 시크릿 등 constants.SensitiveQueryParams에 정의된
// 쿼리 파라미터 값은 마스킹하여 기록합니다.
func HTTPLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			res := c.Response()
			start := time.Now()

			// 에러를 먼저 처리해야 응답 상태 코드가 확정됩니다.
			if err := next(c); err != nil {
				c.Error(err)
			}

			latency := time.Since(start)

			path := req.URL.Path
			if path == "" {
				path = "/"
			}

			bytesIn := req.Header.Get(echo.HeaderContentLength)
			if bytesIn == "" {
				bytesIn = defaultBytesIn
			}

			applog.WithComponentAndFields(constants.ComponentMiddlewareHTTPLogger, applog.Fields{
				"method":   req.Method,
				"path":     path,
				"uri":      maskSensitiveQueryParams(req.RequestURI),
				"host":     req.Host,
				"protocol": req.Proto,

				"remote_ip":  c.RealIP(),
				"user_agent": req.UserAgent(),

				"status":    res.Status,
				"bytes_in":  bytesIn,
				"bytes_out": strconv.FormatInt(res.Size, 10),

				"latency":       strconv.FormatInt(latency.Microseconds(), 10),
				"latency_human": latency.String(),

				"request_id": res.Header().Get(echo.HeaderXRequestID),
			}).Info("HTTP 요청")

			return nil
		}
	}
}

// maskSensitiveQueryParams URI의 민감한 쿼리 파라미터 값을 마스킹합니다.
// 파싱에 실패하면 로깅이 중단되지 않도록 원본을 반환합니다.
//
//	입력: "/api/v1/apps?admin_key=secret123&id=100"
//	출력: "/api/v1/apps?admin_key=secr%2A%2A%2A&id=100"
func maskSensitiveQueryParams(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return uri
	}

	q := u.Query()
	masked := false
	for _, param := range constants.SensitiveQueryParams {
		if q.Has(param) {
			q.Set(param, strutil.MaskSensitiveData(q.Get(param)))
			masked = true
		}
	}

	if !masked {
		return uri
	}

	u.RawQuery = q.Encode()
	return u.String()
}
