package middleware

import (
	"fmt"
	"sync"

	"github.com/darkkaiser/miniapp-server/internal/service/api/constants"
	applog "github.com/darkkaiser/miniapp-server/pkg/log"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

const (
	// maxIPRateLimiters 메모리에 유지하는 IP별 Limiter의 최대 개수.
	// 초과하면 가장 오래 사용되지 않은 IP의 Limiter부터 제거합니다.
	maxIPRateLimiters = 10000

	// retryAfterSeconds 요청 제한 시 클라이언트에게 제안하는 대기 시간(초)
	retryAfterSeconds = "1"
)

// ipRateLimiter IP 주소별 Token Bucket Limiter를 LRU로 관리합니다.
type ipRateLimiter struct {
	// mu 조회와 생성을 하나의 임계 구역으로 묶어 같은 IP에 Limiter가 두 번 생성되지 않게 합니다.
	mu       sync.Mutex
	limiters *lru.Cache[string, *rate.Limiter]
	rate     rate.Limit
	burst    int
}

func newIPRateLimiter(requestsPerSecond float64, burst int) *ipRateLimiter {
	limiters, err := lru.New[string, *rate.Limiter](maxIPRateLimiters)
	if err != nil {
		// 크기가 양수인 상수이므로 발생하지 않습니다.
		panic(err)
	}

	return &ipRateLimiter{
		limiters: limiters,
		rate:     rate.Limit(requestsPerSecond),
		burst:    burst,
	}
}

func (i *ipRateLimiter) getLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	if limiter, ok := i.limiters.Get(ip); ok {
		return limiter
	}

	limiter := rate.NewLimiter(i.rate, i.burst)
	i.limiters.Add(ip, limiter)

	return limiter
}

// RateLimiting IP 기반 요청 제한 미들웨어를 반환합니다.
//
// 제한을 초과하면 Retry-After 헤더와 함께 429 Too Many Requests를 반환합니다.
// 메모리 기반이므로 서버 인스턴스마다 독립적으로 제한됩니다.
//
// Panics:
//   - requestsPerSecond 또는 burst가 0 이하인 경우
func RateLimiting(requestsPerSecond float64, burst int) echo.MiddlewareFunc {
	if requestsPerSecond <= 0 {
		panic(fmt.Sprintf(constants.PanicMsgRateLimitRequestsPerSecondInvalid, requestsPerSecond))
	}
	if burst <= 0 {
		panic(fmt.Sprintf(constants.PanicMsgRateLimitBurstInvalid, burst))
	}

	limiter := newIPRateLimiter(requestsPerSecond, burst)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()

			if !limiter.getLimiter(ip).Allow() {
				applog.WithComponentAndFields(constants.ComponentMiddlewareRateLimit, applog.Fields{
					"remote_ip": ip,
					"path":      c.Request().URL.Path,
					"method":    c.Request().Method,
				}).Warn("Rate limit 초과")

				c.Response().Header().Set(constants.HeaderRetryAfter, retryAfterSeconds)

				return ErrRateLimitExceeded
			}

			return next(c)
		}
	}
}
