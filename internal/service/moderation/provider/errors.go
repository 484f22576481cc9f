package provider

import (
	apperrors "github.com/darkkaiser/miniapp-server/internal/pkg/errors"
)

func newErrEncodeRequest(err error) error {
	return apperrors.Wrap(err, apperrors.Internal, "검수 요청 본문을 생성할 수 없습니다")
}

func newErrReadImage(err error, filename string) error {
	return apperrors.Wrapf(err, apperrors.System, "이미지 파일('%s')을 읽을 수 없습니다", filename)
}

func newErrInvalidEndpoint(err error, endpoint string) error {
	return apperrors.Wrapf(err, apperrors.InvalidInput, "검수 API 주소('%s')가 올바르지 않습니다", endpoint)
}

func newErrRequestFailed(err error, url string) error {
	return apperrors.Wrapf(err, apperrors.Unavailable, "검수 API 호출에 실패했습니다: '%s'", url)
}

func newErrUnexpectedStatus(statusCode int, url string) error {
	return apperrors.Newf(apperrors.Unavailable, "검수 API가 예상하지 못한 상태 코드(%d)를 반환했습니다: '%s'", statusCode, url)
}

func newErrReadResponse(err error) error {
	return apperrors.Wrap(err, apperrors.Unavailable, "검수 API 응답을 읽을 수 없습니다")
}
