package store

import (
	apperrors "github.com/darkkaiser/miniapp-server/internal/pkg/errors"
)

// NewErrApplicationNotFound 애플리케이션을 찾을 수 없을 때의 에러를 생성합니다.
func NewErrApplicationNotFound(id uint64) error {
	return apperrors.Newf(apperrors.NotFound, "애플리케이션(ID: %d)을 찾을 수 없습니다", id)
}

// NewErrAllianceKeyNotFound 제휴 키로 애플리케이션을 찾을 수 없을 때의 에러를 생성합니다.
func NewErrAllianceKeyNotFound() error {
	return apperrors.New(apperrors.NotFound, "제휴 키에 해당하는 애플리케이션을 찾을 수 없습니다")
}

// NewErrDuplicateAllianceKey 제휴 키가 중복될 때의 에러를 생성합니다.
func NewErrDuplicateAllianceKey() error {
	return apperrors.New(apperrors.Conflict, "이미 사용 중인 제휴 키입니다")
}

// NewErrDuplicateLink 이미 연결된 관리자일 때의 에러를 생성합니다.
func NewErrDuplicateLink(adminID, appID uint64) error {
	return apperrors.Newf(apperrors.Conflict, "관리자(ID: %d)는 이미 애플리케이션(ID: %d)에 연결되어 있습니다", adminID, appID)
}

// NewErrInvalidStatus 정의되지 않은 상태 값일 때의 에러를 생성합니다.
func NewErrInvalidStatus(status Status) error {
	return apperrors.Newf(apperrors.InvalidInput, "지원하지 않는 애플리케이션 상태입니다: '%s'", status)
}

// NewErrUnsupportedDriver 지원하지 않는 저장소 드라이버일 때의 에러를 생성합니다.
func NewErrUnsupportedDriver(driver string) error {
	return apperrors.Newf(apperrors.InvalidInput, "지원하지 않는 저장소 드라이버입니다: '%s'", driver)
}

// NewErrUnsupportedDSN 해석할 수 없는 DSN일 때의 에러를 생성합니다. DSN 원문은 비밀번호가 포함될 수 있어 메시지에 넣지 않습니다.
func NewErrUnsupportedDSN() error {
	return apperrors.New(apperrors.InvalidInput, "지원하지 않는 데이터베이스 DSN 형식입니다 (sqlite://<path> 또는 postgres://...)")
}

func newErrDatabase(err error, op string) error {
	return apperrors.Wrapf(err, apperrors.System, "데이터베이스 작업(%s)에 실패했습니다", op)
}

func newErrReadFile(err error, path string) error {
	return apperrors.Wrapf(err, apperrors.System, "저장소 파일('%s')을 읽을 수 없습니다", path)
}

func newErrDecodeFile(err error, path string) error {
	return apperrors.Wrapf(err, apperrors.ParsingFailed, "저장소 파일('%s')의 형식이 올바르지 않습니다", path)
}

func newErrWriteFile(err error, path string) error {
	return apperrors.Wrapf(err, apperrors.System, "저장소 파일('%s')을 저장할 수 없습니다", path)
}
