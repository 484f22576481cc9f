package fetcher

import (
	apperrors "github.com/darkkaiser/miniapp-server/internal/pkg/errors"
)

var (
	// ErrMaxRetriesExceeded 재시도 횟수를 모두 소진했을 때의 원인 에러입니다.
	ErrMaxRetriesExceeded = apperrors.New(apperrors.Unavailable, "최대 재시도 횟수를 초과했습니다")
)

// NewErrInvalidRequest 요청 객체 생성 실패 에러를 반환합니다.
func NewErrInvalidRequest(err error, url string) error {
	return apperrors.Wrapf(err, apperrors.InvalidInput, "HTTP 요청을 생성할 수 없습니다: '%s'", redactRawURL(url))
}

// NewErrResponseBodyTooLarge 응답 본문이 제한을 넘었을 때의 에러를 반환합니다.
func NewErrResponseBodyTooLarge(limit int64) error {
	return apperrors.Newf(apperrors.InvalidInput, "응답 본문 크기가 제한(%d 바이트)을 초과했습니다", limit)
}

// NewErrResponseBodyTooLargeByContentLength Content-Length 헤더만으로 제한 초과가 확인된 경우의 에러를 반환합니다.
func NewErrResponseBodyTooLargeByContentLength(contentLength, limit int64) error {
	return apperrors.Newf(apperrors.InvalidInput, "응답 본문 크기(%d 바이트)가 제한(%d 바이트)을 초과했습니다", contentLength, limit)
}

func newErrMaxRetriesExceeded(lastErr error) error {
	return apperrors.Wrap(lastErr, apperrors.Unavailable, "최대 재시도 횟수를 초과했습니다")
}

func newErrRetryAfterExceeded(retryAfter, maxDelay string) error {
	return apperrors.Newf(apperrors.Unavailable, "서버가 요구한 재시도 대기 시간(%s)이 허용 최대값(%s)을 초과합니다", retryAfter, maxDelay)
}

func newErrGetBodyFailed(err error) error {
	return apperrors.Wrap(err, apperrors.Internal, "재시도를 위한 요청 본문 재생성에 실패했습니다")
}
