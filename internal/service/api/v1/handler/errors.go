package handler

import (
	"fmt"

	"github.com/darkkaiser/miniapp-server/internal/service/api/constants"
	"github.com/darkkaiser/miniapp-server/internal/service/api/httputil"
)

// NewErrInvalidBody 요청 본문을 파싱할 수 없을 때의 에러를 생성합니다.
func NewErrInvalidBody() error {
	return httputil.NewBadRequestError(constants.ErrMsgBadRequestInvalidBody)
}

// NewErrValidationFailed 요청 데이터 검증 실패 에러를 생성합니다.
func NewErrValidationFailed(msg string) error {
	return httputil.NewBadRequestError(msg)
}

// NewErrInvalidID 경로의 ID가 양의 정수가 아닐 때의 에러를 생성합니다.
func NewErrInvalidID(raw string) error {
	return httputil.NewBadRequestError(fmt.Sprintf("%s: '%s'", constants.ErrMsgBadRequestInvalidID, raw))
}

// NewErrTooManyImages 이미지 수가 허용치를 초과했을 때의 에러를 생성합니다.
func NewErrTooManyImages(count, limit int) error {
	return httputil.NewBadRequestError(fmt.Sprintf("이미지는 한 번에 최대 %d개까지 검사할 수 있습니다 (요청: %d개)", limit, count))
}
