package middleware

import (
	"fmt"

	apperrors "github.com/darkkaiser/miniapp-server/internal/pkg/errors"
	"github.com/darkkaiser/miniapp-server/internal/service/api/constants"
	"github.com/darkkaiser/miniapp-server/internal/service/api/httputil"
)

var (
	// ErrAdminKeyRequired 관리자 키가 헤더와 쿼리 파라미터 모두에 없을 때 반환합니다.
	ErrAdminKeyRequired = httputil.NewUnauthorizedError(constants.ErrMsgUnauthorizedAdminKeyRequired)

	// ErrRateLimitExceeded 허용된 요청 빈도를 초과했을 때 반환합니다.
	ErrRateLimitExceeded = httputil.NewTooManyRequestsError(constants.ErrMsgTooManyRequests)

	// ErrUnsupportedMediaType 요청의 Content-Type을 지원하지 않을 때 반환합니다.
	ErrUnsupportedMediaType = httputil.NewUnsupportedMediaTypeError(constants.ErrMsgUnsupportedMediaType)
)

// NewErrPanicRecovered 복구된 패닉 값을 내부 시스템 오류로 래핑합니다.
func NewErrPanicRecovered(r any) error {
	if err, ok := r.(error); ok {
		return apperrors.Wrap(err, apperrors.Internal, "핸들러에서 패닉이 발생했습니다")
	}
	return apperrors.New(apperrors.Internal, fmt.Sprintf("%v", r))
}
