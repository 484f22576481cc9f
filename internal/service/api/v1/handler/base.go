// Package handler v1 API의 HTTP 요청 핸들러를 제공합니다.
package handler

import (
	"context"
	"strconv"

	"github.com/darkkaiser/miniapp-server/internal/pkg/validation"
	"github.com/darkkaiser/miniapp-server/internal/service/api/constants"
	"github.com/darkkaiser/miniapp-server/internal/service/app"
	"github.com/darkkaiser/miniapp-server/internal/store"
	applog "github.com/darkkaiser/miniapp-server/pkg/log"
	"github.com/labstack/echo/v4"
)

// AppService 미니앱 관리 비즈니스 로직입니다.
type AppService interface {
	Register(ctx context.Context, in app.RegisterInput) (*store.Application, error)
	ConnectAdmin(ctx context.Context, appID, adminID uint64) (*store.AdminAppLink, error)
	ListByAdmin(ctx context.Context, adminID uint64) ([]*store.Application, error)
	Get(ctx context.Context, id uint64) (*store.Application, error)
	GetByAllianceKey(ctx context.Context, key string) (*store.Application, error)
	EnableAuditMode(ctx context.Context, id uint64) (*store.Application, error)
	EnableOnlineMode(ctx context.Context, id uint64) (*store.Application, error)
	Close(ctx context.Context, id uint64) (*store.Application, error)
}

// Moderator 텍스트와 이미지의 콘텐츠 검사를 수행합니다.
type Moderator interface {
	CheckText(ctx context.Context, appID uint64, text string) error
	CheckImages(ctx context.Context, appID uint64, references []string) error
}

// Handler v1 API 요청을 바인딩하고 검증한 뒤 서비스 계층을 호출합니다.
type Handler struct {
	apps      AppService
	moderator Moderator

	// maxImages 한 번의 이미지 검사 요청에 허용하는 최대 이미지 수
	maxImages int
}

// NewHandler Handler 인스턴스를 생성합니다.
func NewHandler(apps AppService, moderator Moderator, maxImages int) *Handler {
	if apps == nil {
		panic(constants.PanicMsgAppServiceRequired)
	}
	if moderator == nil {
		panic(constants.PanicMsgModeratorRequired)
	}

	return &Handler{
		apps:      apps,
		moderator: moderator,
		maxImages: maxImages,
	}
}

// bind 요청 본문을 바인딩하고 validate 태그로 검증합니다.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return NewErrInvalidBody()
	}
	if err := validation.Struct(req); err != nil {
		return NewErrValidationFailed(validation.FormatError(err))
	}
	return nil
}

// pathID 경로 파라미터 :id를 uint64로 변환합니다.
func pathID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, NewErrInvalidID(c.Param("id"))
	}
	return id, nil
}

// log 공통 로깅 필드가 설정된 로거 엔트리를 반환합니다.
func log(c echo.Context) *applog.Entry {
	return applog.WithComponentAndFields(constants.ComponentHandler, applog.Fields{
		"endpoint":   c.Path(),
		"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
	})
}
