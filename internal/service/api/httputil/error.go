package httputil

import (
	"errors"
	"net/http"

	apperrors "github.com/darkkaiser/miniapp-server/internal/pkg/errors"
	"github.com/darkkaiser/miniapp-server/internal/service/api/constants"
	"github.com/darkkaiser/miniapp-server/internal/service/api/model/response"
	"github.com/darkkaiser/miniapp-server/internal/service/moderation"
	applog "github.com/darkkaiser/miniapp-server/pkg/log"
	"github.com/labstack/echo/v4"
)

// ContextKeyAdminID 에러 로그에 관리자 ID를 남기기 위한 Context 키
const ContextKeyAdminID = "miniapp-server/api/admin_id"

// ErrorHandler Echo 프레임워크의 전역 에러 핸들러입니다.
//
// 모든 에러를 {result_code, message} 형식으로 변환하여 응답합니다.
// 검사 제공자의 원본 에러 코드는 응답에 포함하지 않습니다.
func ErrorHandler(err error, c echo.Context) {
	code, message := resolve(err)

	fields := applog.Fields{
		"path":        c.Request().URL.Path,
		"method":      c.Request().Method,
		"status_code": code,
		"error":       err,
		"remote_ip":   c.RealIP(),
		"request_id":  c.Response().Header().Get(echo.HeaderXRequestID),
	}
	if adminID := c.Get(ContextKeyAdminID); adminID != nil {
		fields["admin_id"] = adminID
	}

	if code >= http.StatusInternalServerError {
		applog.WithComponentAndFields(constants.ComponentErrorHandler, fields).Error(constants.LogMsgHTTP5xxServerError)
	} else if code >= http.StatusBadRequest {
		applog.WithComponentAndFields(constants.ComponentErrorHandler, fields).Warn(constants.LogMsgHTTP4xxClientError)
	}

	// 이미 응답이 전송된 경우 추가 응답하지 않습니다.
	if c.Response().Committed {
		return
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}

	_ = c.JSON(code, response.ErrorResponse{
		ResultCode: code,
		Message:    message,
	})
}

// resolve 에러를 HTTP 상태 코드와 사용자 메시지로 변환합니다.
func resolve(err error) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return resolveHTTPError(he)
	}

	if me, ok := moderation.AsModerationError(err); ok {
		if me.Kind == moderation.PolicyViolation {
			return http.StatusUnprocessableEntity, me.UserMessage()
		}
		return http.StatusBadGateway, me.UserMessage()
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		switch appErr.Type() {
		case apperrors.InvalidInput:
			return http.StatusBadRequest, appErr.Message()
		case apperrors.Forbidden:
			return http.StatusForbidden, appErr.Message()
		case apperrors.NotFound:
			return http.StatusNotFound, appErr.Message()
		case apperrors.Conflict:
			return http.StatusConflict, appErr.Message()
		}
	}

	return http.StatusInternalServerError, constants.ErrMsgInternalServer
}

func resolveHTTPError(he *echo.HTTPError) (int, string) {
	code := he.Code
	message := http.StatusText(code)

	switch m := he.Message.(type) {
	case string:
		message = m
	case response.ErrorResponse:
		message = m.Message
	}

	// 라우팅 실패 등 Echo 기본 404는 한국어 메시지로 통일합니다.
	if code == http.StatusNotFound && message == http.StatusText(http.StatusNotFound) {
		message = constants.ErrMsgNotFound
	}
	if code == http.StatusRequestEntityTooLarge {
		message = constants.ErrMsgRequestEntityTooLarge
	}
	if code >= http.StatusInternalServerError && code != http.StatusServiceUnavailable {
		message = constants.ErrMsgInternalServer
	}

	return code, message
}
