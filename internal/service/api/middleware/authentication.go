package middleware

import (
	"github.com/darkkaiser/miniapp-server/internal/service/api/auth"
	"github.com/darkkaiser/miniapp-server/internal/service/api/constants"
	applog "github.com/darkkaiser/miniapp-server/pkg/log"
	"github.com/labstack/echo/v4"
)

// RequireAdminKey 관리자 인증을 수행하는 미들웨어를 반환합니다.
//
// 관리자 키 추출 우선순위:
//  1. X-Admin-Key 헤더 (권장)
//  2. admin_key 쿼리 파라미터 (레거시)
//
// 인증에 성공하면 관리자 정보를 Context에 저장하고, 실패하면 401을 반환합니다.
func RequireAdminKey(authenticator *auth.Authenticator) echo.MiddlewareFunc {
	if authenticator == nil {
		panic(constants.PanicMsgAuthenticatorRequired)
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			adminKey := extractAdminKey(c)
			if adminKey == "" {
				return ErrAdminKeyRequired
			}

			admin, err := authenticator.Authenticate(adminKey)
			if err != nil {
				return err
			}

			auth.SetAdmin(c, admin)

			return next(c)
		}
	}
}

func extractAdminKey(c echo.Context) string {
	if key := c.Request().Header.Get(constants.HeaderAdminKey); key != "" {
		return key
	}

	key := c.QueryParam(constants.QueryParamAdminKey)
	if key != "" {
		applog.WithComponentAndFields(constants.ComponentMiddlewareAuthentication, applog.Fields{
			"method":    c.Request().Method,
			"path":      c.Path(),
			"remote_ip": c.RealIP(),
		}).Warn("보안 경고: 쿼리 파라미터로 admin_key 전달됨 (헤더 사용 권장)")
	}
	return key
}
