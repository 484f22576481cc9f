package asset

import (
	apperrors "github.com/darkkaiser/miniapp-server/internal/pkg/errors"
)

var (
	// ErrOriginNotConfigured 콘텐츠 오리진이 설정되지 않았을 때 반환합니다.
	ErrOriginNotConfigured = apperrors.New(apperrors.InvalidInput, "이미지 오리진(moderation.asset.origin)이 설정되지 않았습니다")
)

func newErrCreateDir(err error, dir string) error {
	return apperrors.Wrapf(err, apperrors.System, "임시 디렉터리('%s')를 생성할 수 없습니다", dir)
}

func newErrRemoveDir(err error, dir string) error {
	return apperrors.Wrapf(err, apperrors.System, "임시 디렉터리('%s')를 삭제할 수 없습니다", dir)
}

func newErrWriteFile(err error, path string) error {
	return apperrors.Wrapf(err, apperrors.System, "이미지 파일('%s')을 저장할 수 없습니다", path)
}

func newErrFetch(err error, reference string) error {
	return apperrors.Wrapf(err, apperrors.ExecutionFailed, "이미지('%s')를 내려받을 수 없습니다", reference)
}

func newErrUnexpectedStatus(statusCode int, reference string) error {
	return apperrors.Newf(apperrors.ExecutionFailed, "이미지('%s') 요청이 상태 코드 %d로 실패했습니다", reference, statusCode)
}

func newErrReadDir(err error, dir string) error {
	return apperrors.Wrapf(err, apperrors.System, "임시 디렉터리('%s')를 읽을 수 없습니다", dir)
}
