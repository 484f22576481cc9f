package auth

import "errors"

var (
	// ErrAdminMissingInContext Context에서 관리자 정보를 찾을 수 없을 때 반환합니다.
	ErrAdminMissingInContext = errors.New("Context에서 관리자 정보를 찾을 수 없습니다")

	// ErrAdminTypeMismatch Context에 저장된 값이 *domain.Admin 타입이 아닐 때 반환합니다.
	ErrAdminTypeMismatch = errors.New("Context에 저장된 관리자 정보의 타입이 올바르지 않습니다")
)
