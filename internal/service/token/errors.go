package token

import (
	apperrors "github.com/darkkaiser/miniapp-server/internal/pkg/errors"
	"github.com/darkkaiser/miniapp-server/pkg/strutil"
)

// NewErrTokenRejected 제공자가 0이 아닌 errcode로 토큰 발급을 거부했을 때의 에러를 생성합니다.
func NewErrTokenRejected(appID uint64, errcode int64, errmsg string) error {
	return apperrors.Newf(apperrors.Unauthorized, "액세스 토큰 발급이 거부되었습니다 (app_id: %d, errcode: %d, errmsg: %s)", appID, errcode, strutil.Truncate(errmsg, maxErrMsgRunes))
}

// NewErrMissingAccessToken 응답에 access_token이 없을 때의 에러를 생성합니다.
func NewErrMissingAccessToken(appID uint64) error {
	return apperrors.Newf(apperrors.ParsingFailed, "토큰 응답에 access_token이 없습니다 (app_id: %d)", appID)
}

func newErrTokenRequest(err error, appID uint64) error {
	return apperrors.Wrapf(err, apperrors.Unavailable, "액세스 토큰 발급 요청에 실패했습니다 (app_id: %d)", appID)
}

func newErrInvalidEndpoint(err error, endpoint string) error {
	return apperrors.Wrapf(err, apperrors.InvalidInput, "토큰 발급 API 주소('%s')가 올바르지 않습니다", endpoint)
}

func newErrInvalidRedisURL(err error) error {
	return apperrors.Wrap(err, apperrors.InvalidInput, "Redis URL 형식이 올바르지 않습니다")
}

func newErrCacheWrite(err error) error {
	return apperrors.Wrap(err, apperrors.System, "토큰 캐시 저장에 실패했습니다")
}

func newErrUnsupportedCache(backend string) error {
	return apperrors.Newf(apperrors.InvalidInput, "지원하지 않는 토큰 캐시입니다: '%s'", backend)
}
