// Package auth 관리자 키 기반 인증을 제공합니다.
package auth

import (
	"crypto/subtle"

	"github.com/darkkaiser/miniapp-server/internal/config"
	"github.com/darkkaiser/miniapp-server/internal/service/api/constants"
	"github.com/darkkaiser/miniapp-server/internal/service/api/httputil"
	"github.com/darkkaiser/miniapp-server/internal/service/api/model/domain"
	applog "github.com/darkkaiser/miniapp-server/pkg/log"
	"github.com/darkkaiser/miniapp-server/pkg/strutil"
)

type credential struct {
	key   []byte
	admin *domain.Admin
}

// Authenticator 설정에 등록된 관리자 키로 요청을 인증합니다.
//
// 초기화 이후 읽기 전용이므로 여러 고루틴에서 동시에 호출해도 안전합니다.
type Authenticator struct {
	credentials []credential
}

// NewAuthenticator 설정의 관리자 목록으로 Authenticator를 생성합니다.
func NewAuthenticator(admins []config.AdminConfig) *Authenticator {
	credentials := make([]credential, 0, len(admins))
	for _, a := range admins {
		credentials = append(credentials, credential{
			key:   []byte(a.Key),
			admin: &domain.Admin{ID: a.ID, Name: a.Name},
		})
	}

	return &Authenticator{credentials: credentials}
}

// Authenticate 관리자 키에 해당하는 관리자를 반환합니다.
// 키 비교는 상수 시간으로 수행하며, 일치하는 키가 없으면 401 에러를 반환합니다.
func (a *Authenticator) Authenticate(adminKey string) (*domain.Admin, error) {
	received := []byte(adminKey)

	var matched *domain.Admin
	for _, c := range a.credentials {
		if subtle.ConstantTimeCompare(c.key, received) == 1 && matched == nil {
			matched = c.admin
		}
	}

	if matched == nil {
		applog.WithComponentAndFields(constants.ComponentMiddlewareAuthentication, applog.Fields{
			"received_admin_key": strutil.MaskSensitiveData(adminKey),
		}).Warn("admin_key 불일치")

		return nil, httputil.NewUnauthorizedError(constants.ErrMsgUnauthorizedInvalidAdminKey)
	}

	return matched, nil
}
