package middleware

import (
	"net/http"
	"runtime"

	"github.com/darkkaiser/miniapp-server/internal/service/api/constants"
	applog "github.com/darkkaiser/miniapp-server/pkg/log"
	"github.com/labstack/echo/v4"
)

const (
	// stackBufferSize panic 발생 시 스택 트레이스를 저장할 버퍼 크기 (4KB)
	stackBufferSize = 4 << 10
)

// PanicRecovery 핸들러에서 발생한 panic을 복구하고 스택 트레이스와 함께 기록하는 미들웨어를 반환합니다.
func PanicRecovery() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					if r == http.ErrAbortHandler {
						panic(r)
					}

					err = NewErrPanicRecovered(r)

					stack := make([]byte, stackBufferSize)
					length := runtime.Stack(stack, false)

					fields := applog.Fields{
						"error": err,
						"stack": string(stack[:length]),
						"path":  c.Request().URL.Path,
					}
					if requestID := c.Response().Header().Get(echo.HeaderXRequestID); requestID != "" {
						fields["request_id"] = requestID
					}

					applog.WithComponentAndFields(constants.ComponentMiddlewarePanicRecovery, fields).Error("PANIC RECOVERED")
				}
			}()

			return next(c)
		}
	}
}
