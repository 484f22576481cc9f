package notification

import (
	"errors"
	"strings"

	apperrors "github.com/darkkaiser/miniapp-server/internal/pkg/errors"
	"github.com/darkkaiser/miniapp-server/pkg/strutil"
)

// newErrBotInitFailed 봇 초기화 실패 에러를 생성합니다.
//
// 텔레그램 API 주소에는 봇 토큰이 포함되므로 원인 메시지에서 토큰을 가립니다.
func newErrBotInitFailed(err error, botToken string) error {
	redacted := errors.New(strings.ReplaceAll(err.Error(), botToken, strutil.MaskSensitiveData(botToken)))
	return apperrors.Wrap(redacted, apperrors.Unavailable, "텔레그램 봇 초기화에 실패했습니다. 봇 토큰과 네트워크 상태를 확인하세요")
}
