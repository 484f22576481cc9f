package auth

import (
	"fmt"

	"github.com/darkkaiser/miniapp-server/internal/service/api/constants"
	"github.com/darkkaiser/miniapp-server/internal/service/api/httputil"
	"github.com/darkkaiser/miniapp-server/internal/service/api/model/domain"
	"github.com/labstack/echo/v4"
)

// contextKeyAdmin 인증된 관리자 저장용 Context 키
const contextKeyAdmin = "darkkaiser/miniapp-server/api/auth/AuthenticatedAdmin"

// SetAdmin 인증된 관리자 정보를 Context에 저장합니다.
func SetAdmin(c echo.Context, admin *domain.Admin) {
	c.Set(contextKeyAdmin, admin)
	c.Set(httputil.ContextKeyAdminID, admin.ID)
}

// GetAdmin Context에서 관리자 정보를 조회합니다.
func GetAdmin(c echo.Context) (*domain.Admin, error) {
	val := c.Get(contextKeyAdmin)
	if val == nil {
		return nil, ErrAdminMissingInContext
	}

	admin, ok := val.(*domain.Admin)
	if !ok {
		return nil, ErrAdminTypeMismatch
	}

	return admin, nil
}

// MustGetAdmin 인증 미들웨어를 통과한 요청에서 관리자 정보를 조회합니다.
// 조회에 실패하면 panic이 발생합니다.
func MustGetAdmin(c echo.Context) *domain.Admin {
	admin, err := GetAdmin(c)
	if err != nil {
		panic(fmt.Sprintf(constants.PanicMsgAuthContextAdminNotFound, err))
	}
	return admin
}
