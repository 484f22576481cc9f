// Package v1 미니앱 관리 API의 v1 버전 라우트를 정의합니다.
//
// 모든 엔드포인트는 /api/v1 하위에 위치하며 관리자 키 인증이 필요합니다.
//
// 주요 엔드포인트:
//   - POST /api/v1/apps                            - 미니앱 등록
//   - GET  /api/v1/apps                            - 내 미니앱 목록
//   - GET  /api/v1/apps/:id                        - 미니앱 조회
//   - GET  /api/v1/apps/alliance/:key              - 제휴 키로 조회
//   - POST /api/v1/apps/:id/admins                 - 관리자 연결
//   - POST /api/v1/apps/:id/status/{audit,online,close} - 상태 전환
//   - POST /api/v1/apps/:id/moderation/{text,images}    - 콘텐츠 검사
package v1

import (
	"github.com/darkkaiser/miniapp-server/internal/service/api/auth"
	"github.com/darkkaiser/miniapp-server/internal/service/api/constants"
	"github.com/darkkaiser/miniapp-server/internal/service/api/middleware"
	"github.com/darkkaiser/miniapp-server/internal/service/api/v1/handler"
	"github.com/labstack/echo/v4"
)

// RegisterRoutes Echo 인스턴스에 v1 API 라우트를 등록합니다.
//
// 그룹 전체에 RequireAdminKey를 적용하고, 본문을 받는 POST 엔드포인트에는
// JSON Content-Type 검증을 추가로 적용합니다.
func RegisterRoutes(e *echo.Echo, h *handler.Handler, authenticator *auth.Authenticator) {
	if authenticator == nil {
		panic(constants.PanicMsgAuthenticatorRequired)
	}

	v1Group := e.Group("/api/v1", middleware.RequireAdminKey(authenticator))
	requireJSON := middleware.ValidateContentType(echo.MIMEApplicationJSON)

	apps := v1Group.Group("/apps")
	apps.POST("", h.RegisterAppHandler, requireJSON)
	apps.GET("", h.ListAppsHandler)
	apps.GET("/alliance/:key", h.GetAppByAllianceKeyHandler)
	apps.GET("/:id", h.GetAppHandler)
	apps.POST("/:id/admins", h.ConnectAdminHandler, requireJSON)

	apps.POST("/:id/status/audit", h.EnableAuditModeHandler)
	apps.POST("/:id/status/online", h.EnableOnlineModeHandler)
	apps.POST("/:id/status/close", h.CloseAppHandler)

	apps.POST("/:id/moderation/text", h.CheckTextHandler, requireJSON)
	apps.POST("/:id/moderation/images", h.CheckImagesHandler, requireJSON)
}
