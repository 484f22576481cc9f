package app

import (
	apperrors "github.com/darkkaiser/miniapp-server/internal/pkg/errors"
)

// ErrPendingAuditModeSwitch 심사를 통과하지 않은 앱의 모드 전환을 거부할 때 반환됩니다.
var ErrPendingAuditModeSwitch = apperrors.New(apperrors.Forbidden, "심사를 통과하지 않은 앱은 모드를 전환할 수 없습니다")

// ErrClosedModeSwitch 종료된 앱의 모드 전환을 거부할 때 반환됩니다.
var ErrClosedModeSwitch = apperrors.New(apperrors.Forbidden, "종료된 앱은 모드를 전환할 수 없습니다")

// NewErrInvalidInput 등록 입력값 검증 실패 에러를 생성합니다.
func NewErrInvalidInput(message string) error {
	return apperrors.New(apperrors.InvalidInput, message)
}

func newErrAllianceKeyExhausted(err error, attempts int) error {
	return apperrors.Wrapf(err, apperrors.Conflict, "제휴 키 생성이 %d회 연속으로 충돌했습니다", attempts)
}

func newErrGenerateAllianceKey(err error) error {
	return apperrors.Wrap(err, apperrors.Internal, "제휴 키를 생성할 수 없습니다")
}
