package handler

import (
	"github.com/darkkaiser/miniapp-server/internal/service/api/httputil"
	"github.com/darkkaiser/miniapp-server/internal/service/api/v1/model/request"
	"github.com/labstack/echo/v4"
)

// CheckTextHandler godoc
// @Summary 텍스트 콘텐츠 검사
// @Description 미니앱의 액세스 토큰으로 텍스트를 검사합니다. 위반 시 422를 반환합니다.
// @Tags Moderation
// @Accept json
// @Produce json
// @Param X-Admin-Key header string true "관리자 키"
// @Param id path int true "미니앱 ID"
// @Param content body request.TextModerationRequest true "검사할 텍스트"
// @Success 200 {object} response.SuccessResponse "검사 통과"
// @Failure 404 {object} response.ErrorResponse "존재하지 않는 미니앱"
// @Failure 422 {object} response.ErrorResponse "정책 위반"
// @Failure 502 {object} response.ErrorResponse "토큰 발급 또는 검사 제공자 오류"
// @Security AdminKeyAuth
// @Router /api/v1/apps/{id}/moderation/text [post]
func (h *Handler) CheckTextHandler(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	req := new(request.TextModerationRequest)
	if err := bind(c, req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	if _, err := h.apps.Get(ctx, id); err != nil {
		return err
	}

	if err := h.moderator.CheckText(ctx, id, req.Content); err != nil {
		log(c).WithField("app_id", id).WithError(err).Info("텍스트 검사 실패")
		return err
	}

	return httputil.Success(c)
}

// CheckImagesHandler godoc
// @Summary 이미지 콘텐츠 검사
// @Description 원본 저장소의 이미지를 순서대로 내려받아 검사합니다. 첫 번째 실패에서 중단합니다.
// @Tags Moderation
// @Accept json
// @Produce json
// @Param X-Admin-Key header string true "관리자 키"
// @Param id path int true "미니앱 ID"
// @Param images body request.ImageModerationRequest true "검사할 이미지 참조 목록"
// @Success 200 {object} response.SuccessResponse "검사 통과"
// @Failure 400 {object} response.ErrorResponse "이미지 수 초과"
// @Failure 404 {object} response.ErrorResponse "존재하지 않는 미니앱"
// @Failure 422 {object} response.ErrorResponse "정책 위반"
// @Failure 502 {object} response.ErrorResponse "다운로드, 토큰 발급 또는 검사 제공자 오류"
// @Security AdminKeyAuth
// @Router /api/v1/apps/{id}/moderation/images [post]
func (h *Handler) CheckImagesHandler(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	req := new(request.ImageModerationRequest)
	if err := bind(c, req); err != nil {
		return err
	}
	if h.maxImages > 0 && len(req.Images) > h.maxImages {
		return NewErrTooManyImages(len(req.Images), h.maxImages)
	}

	ctx := c.Request().Context()
	if _, err := h.apps.Get(ctx, id); err != nil {
		return err
	}

	if err := h.moderator.CheckImages(ctx, id, req.Images); err != nil {
		log(c).WithField("app_id", id).WithError(err).Info("이미지 검사 실패")
		return err
	}

	log(c).WithField("app_id", id).WithField("images", len(req.Images)).Debug("이미지 검사 통과")

	return httputil.Success(c)
}
