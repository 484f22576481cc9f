package handler

import (
	"context"
	"net/http"

	"github.com/darkkaiser/miniapp-server/internal/service/api/auth"
	"github.com/darkkaiser/miniapp-server/internal/service/api/model/response"
	"github.com/darkkaiser/miniapp-server/internal/service/api/v1/model/request"
	"github.com/darkkaiser/miniapp-server/internal/store"
	applog "github.com/darkkaiser/miniapp-server/pkg/log"
	"github.com/labstack/echo/v4"
)

// RegisterAppHandler godoc
// @Summary 미니앱 등록
// @Description 미니앱을 online 상태로 등록하고 새 제휴 키를 발급합니다. 호출한 관리자가 자동으로 연결됩니다.
// @Tags Application
// @Accept json
// @Produce json
// @Param X-Admin-Key header string true "관리자 키"
// @Param app body request.RegisterAppRequest true "미니앱 정보"
// @Success 201 {object} response.ApplicationResponse "등록된 미니앱"
// @Failure 400 {object} response.ErrorResponse "잘못된 요청"
// @Failure 401 {object} response.ErrorResponse "인증 실패"
// @Failure 409 {object} response.ErrorResponse "제휴 키 충돌"
// @Security AdminKeyAuth
// @Router /api/v1/apps [post]
func (h *Handler) RegisterAppHandler(c echo.Context) error {
	req := new(request.RegisterAppRequest)
	if err := bind(c, req); err != nil {
		return err
	}

	admin := auth.MustGetAdmin(c)
	ctx := c.Request().Context()

	registered, err := h.apps.Register(ctx, req.ToInput())
	if err != nil {
		return err
	}
	if _, err := h.apps.ConnectAdmin(ctx, registered.ID, admin.ID); err != nil {
		return err
	}

	log(c).WithFields(applog.Fields{
		"app_id":   registered.ID,
		"admin_id": admin.ID,
	}).Info("미니앱 등록 요청 성공")

	return c.JSON(http.StatusCreated, response.NewApplicationResponse(registered))
}

// ListAppsHandler godoc
// @Summary 내 미니앱 목록
// @Description 호출한 관리자에게 연결된 미니앱 목록을 ID 순으로 반환합니다.
// @Tags Application
// @Produce json
// @Param X-Admin-Key header string true "관리자 키"
// @Success 200 {array} response.ApplicationResponse "미니앱 목록"
// @Failure 401 {object} response.ErrorResponse "인증 실패"
// @Security AdminKeyAuth
// @Router /api/v1/apps [get]
func (h *Handler) ListAppsHandler(c echo.Context) error {
	apps, err := h.apps.ListByAdmin(c.Request().Context(), auth.MustGetAdmin(c).ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, response.NewApplicationListResponse(apps))
}

// GetAppHandler godoc
// @Summary 미니앱 조회
// @Tags Application
// @Produce json
// @Param X-Admin-Key header string true "관리자 키"
// @Param id path int true "미니앱 ID"
// @Success 200 {object} response.ApplicationResponse "미니앱"
// @Failure 404 {object} response.ErrorResponse "존재하지 않는 미니앱"
// @Security AdminKeyAuth
// @Router /api/v1/apps/{id} [get]
func (h *Handler) GetAppHandler(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	found, err := h.apps.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, response.NewApplicationResponse(found))
}

// GetAppByAllianceKeyHandler godoc
// @Summary 제휴 키로 미니앱 조회
// @Tags Application
// @Produce json
// @Param X-Admin-Key header string true "관리자 키"
// @Param key path string true "제휴 키"
// @Success 200 {object} response.ApplicationResponse "미니앱"
// @Failure 404 {object} response.ErrorResponse "존재하지 않는 제휴 키"
// @Security AdminKeyAuth
// @Router /api/v1/apps/alliance/{key} [get]
func (h *Handler) GetAppByAllianceKeyHandler(c echo.Context) error {
	found, err := h.apps.GetByAllianceKey(c.Request().Context(), c.Param("key"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, response.NewApplicationResponse(found))
}

// ConnectAdminHandler godoc
// @Summary 관리자 연결
// @Description 다른 관리자를 미니앱에 연결합니다.
// @Tags Application
// @Accept json
// @Produce json
// @Param X-Admin-Key header string true "관리자 키"
// @Param id path int true "미니앱 ID"
// @Param link body request.ConnectAdminRequest true "연결할 관리자"
// @Success 201 {object} response.AdminLinkResponse "연결 결과"
// @Failure 404 {object} response.ErrorResponse "존재하지 않는 미니앱"
// @Failure 409 {object} response.ErrorResponse "이미 연결된 관리자"
// @Security AdminKeyAuth
// @Router /api/v1/apps/{id}/admins [post]
func (h *Handler) ConnectAdminHandler(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	req := new(request.ConnectAdminRequest)
	if err := bind(c, req); err != nil {
		return err
	}

	link, err := h.apps.ConnectAdmin(c.Request().Context(), id, req.AdminID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, response.AdminLinkResponse{
		AdminID:   link.AdminID,
		AppID:     link.AppID,
		CreatedAt: link.CreatedAt,
	})
}

// EnableAuditModeHandler godoc
// @Summary 심사 모드 전환
// @Description 미니앱을 WeChat 심사 모드(online)로 전환합니다.
// @Tags Application
// @Produce json
// @Param X-Admin-Key header string true "관리자 키"
// @Param id path int true "미니앱 ID"
// @Success 200 {object} response.ApplicationResponse "전환된 미니앱"
// @Failure 403 {object} response.ErrorResponse "전환 불가 상태"
// @Failure 404 {object} response.ErrorResponse "존재하지 않는 미니앱"
// @Security AdminKeyAuth
// @Router /api/v1/apps/{id}/status/audit [post]
func (h *Handler) EnableAuditModeHandler(c echo.Context) error {
	return h.changeStatus(c, h.apps.EnableAuditMode)
}

// EnableOnlineModeHandler godoc
// @Summary 운영 모드 전환
// @Description 미니앱을 운영 모드(pending_audit)로 전환합니다.
// @Tags Application
// @Produce json
// @Param X-Admin-Key header string true "관리자 키"
// @Param id path int true "미니앱 ID"
// @Success 200 {object} response.ApplicationResponse "전환된 미니앱"
// @Failure 403 {object} response.ErrorResponse "전환 불가 상태"
// @Failure 404 {object} response.ErrorResponse "존재하지 않는 미니앱"
// @Security AdminKeyAuth
// @Router /api/v1/apps/{id}/status/online [post]
func (h *Handler) EnableOnlineModeHandler(c echo.Context) error {
	return h.changeStatus(c, h.apps.EnableOnlineMode)
}

// CloseAppHandler godoc
// @Summary 미니앱 종료
// @Tags Application
// @Produce json
// @Param X-Admin-Key header string true "관리자 키"
// @Param id path int true "미니앱 ID"
// @Success 200 {object} response.ApplicationResponse "종료된 미니앱"
// @Failure 404 {object} response.ErrorResponse "존재하지 않는 미니앱"
// @Security AdminKeyAuth
// @Router /api/v1/apps/{id}/status/close [post]
func (h *Handler) CloseAppHandler(c echo.Context) error {
	return h.changeStatus(c, h.apps.Close)
}

func (h *Handler) changeStatus(c echo.Context, transition func(ctx context.Context, id uint64) (*store.Application, error)) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	updated, err := transition(c.Request().Context(), id)
	if err != nil {
		return err
	}

	log(c).WithFields(applog.Fields{
		"app_id":   id,
		"status":   updated.Status,
		"admin_id": auth.MustGetAdmin(c).ID,
	}).Info("미니앱 상태 전환 요청 성공")

	return c.JSON(http.StatusOK, response.NewApplicationResponse(updated))
}
