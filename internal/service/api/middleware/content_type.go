package middleware

import (
	"mime"
	"strings"

	"github.com/darkkaiser/miniapp-server/internal/service/api/constants"
	applog "github.com/darkkaiser/miniapp-server/pkg/log"
	"github.com/labstack/echo/v4"
)

// ValidateContentType 본문이 있는 요청의 Content-Type을 검증하는 미들웨어를 반환합니다.
// 본문이 없는 요청은 검증하지 않으며, 일치하지 않으면 415를 반환합니다.
func ValidateContentType(expected string) echo.MiddlewareFunc {
	expected = strings.ToLower(expected)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Body == nil || req.ContentLength == 0 {
				return next(c)
			}

			contentType := req.Header.Get(echo.HeaderContentType)
			mediaType, _, err := mime.ParseMediaType(contentType)
			if err != nil || strings.ToLower(mediaType) != expected {
				applog.WithComponentAndFields(constants.ComponentMiddlewareContentType, applog.Fields{
					"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
					"method":     req.Method,
					"path":       req.URL.Path,
					"expected":   expected,
					"actual":     contentType,
					"remote_ip":  c.RealIP(),
				}).Warn("지원하지 않는 Content-Type 요청")

				return ErrUnsupportedMediaType
			}

			return next(c)
		}
	}
}
