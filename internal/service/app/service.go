// Package app 미니앱 등록, 관리자 연결, 상태 전환을 담당합니다.
package app

import (
	"context"
	"crypto/rand"
	"io"

	"github.com/darkkaiser/miniapp-server/internal/config"
	apperrors "github.com/darkkaiser/miniapp-server/internal/pkg/errors"
	"github.com/darkkaiser/miniapp-server/internal/pkg/validation"
	"github.com/darkkaiser/miniapp-server/internal/store"
	"github.com/darkkaiser/miniapp-server/pkg/concurrency"
	applog "github.com/darkkaiser/miniapp-server/pkg/log"
	"github.com/darkkaiser/miniapp-server/pkg/strutil"
	"github.com/mr-tron/base58"
)

// component 애플리케이션 서비스의 로깅용 컴포넌트 이름
const component = "app.service"

const (
	// allianceKeyBytes 제휴 키 생성에 사용하는 난수 바이트 수
	allianceKeyBytes = 16

	// maxAllianceKeyAttempts 제휴 키 충돌 시 재생성을 포함한 최대 시도 횟수
	maxAllianceKeyAttempts = 3
)

// RegisterInput 미니앱 등록 요청입니다.
type RegisterInput struct {
	Name      string `json:"name" validate:"required,max=100" korean:"앱 이름"`
	AppKey    string `json:"app_key" validate:"required,max=64" korean:"앱 키"`
	AppSecret string `json:"app_secret" validate:"required,max=128" korean:"앱 시크릿"`
	CollegeID uint64 `json:"college_id" korean:"학교 ID"`
	Mobile    string `json:"mobile" validate:"required,max=20" korean:"연락처"`
	Domain    string `json:"domain" validate:"omitempty,max=255" korean:"도메인"`
}

// Service 미니앱 관리 서비스입니다.
type Service struct {
	store store.Store
	guard bool

	// locks 같은 앱에 대한 상태 전환을 직렬화합니다.
	locks *concurrency.KeyedMutex[uint64]

	// keyReader 제휴 키 난수원. 테스트에서 교체합니다.
	keyReader io.Reader
}

// NewService 새로운 Service를 생성합니다.
func NewService(policy config.AppPolicyConfig, s store.Store) *Service {
	if s == nil {
		panic("Store는 필수입니다")
	}

	return &Service{
		store:     s,
		guard:     policy.ModeSwitchGuard,
		locks:     concurrency.NewKeyedMutex[uint64](),
		keyReader: rand.Reader,
	}
}

// Register 미니앱을 online 상태로 등록하고 새 제휴 키를 발급합니다.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*store.Application, error) {
	if err := validation.Struct(in); err != nil {
		return nil, NewErrInvalidInput(validation.FormatError(err))
	}

	var lastErr error
	for attempt := 1; attempt <= maxAllianceKeyAttempts; attempt++ {
		key, err := s.newAllianceKey()
		if err != nil {
			return nil, err
		}

		app := &store.Application{
			Name:        in.Name,
			AppKey:      in.AppKey,
			AppSecret:   in.AppSecret,
			CollegeID:   in.CollegeID,
			Mobile:      in.Mobile,
			Domain:      in.Domain,
			Status:      store.StatusOnline,
			AllianceKey: key,
		}

		err = s.store.CreateApplication(ctx, app)
		if err == nil {
			applog.WithComponentAndFields(component, applog.Fields{
				"app_id":     app.ID,
				"app_key":    strutil.MaskSensitiveData(app.AppKey),
				"college_id": app.CollegeID,
			}).Info("미니앱 등록 완료")

			return app, nil
		}
		if !apperrors.Is(err, apperrors.Conflict) {
			return nil, err
		}

		applog.WithComponentAndFields(component, applog.Fields{
			"attempt": attempt,
		}).Warn("제휴 키 충돌: 새 키로 다시 시도합니다")
		lastErr = err
	}

	return nil, newErrAllianceKeyExhausted(lastErr, maxAllianceKeyAttempts)
}

func (s *Service) newAllianceKey() (string, error) {
	buf := make([]byte, allianceKeyBytes)
	if _, err := io.ReadFull(s.keyReader, buf); err != nil {
		return "", newErrGenerateAllianceKey(err)
	}
	return base58.Encode(buf), nil
}

// ConnectAdmin 관리자를 앱에 연결합니다.
func (s *Service) ConnectAdmin(ctx context.Context, appID, adminID uint64) (*store.AdminAppLink, error) {
	link, err := s.store.LinkAdmin(ctx, adminID, appID)
	if err != nil {
		return nil, err
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"app_id":   appID,
		"admin_id": adminID,
	}).Info("관리자 연결 완료")

	return link, nil
}

// ListByAdmin 관리자에게 연결된 앱 목록을 ID 순으로 반환합니다.
func (s *Service) ListByAdmin(ctx context.Context, adminID uint64) ([]*store.Application, error) {
	return s.store.ListApplicationsByAdmin(ctx, adminID)
}

// Get ID로 앱을 조회합니다.
func (s *Service) Get(ctx context.Context, id uint64) (*store.Application, error) {
	return s.store.GetApplication(ctx, id)
}

// GetByAllianceKey 제휴 키로 앱을 조회합니다.
func (s *Service) GetByAllianceKey(ctx context.Context, key string) (*store.Application, error) {
	return s.store.GetApplicationByAllianceKey(ctx, key)
}

// CanSwitchMode 앱의 모드 전환 가능 여부를 검사합니다.
// 가드가 꺼져 있으면 항상 nil을 반환합니다.
func (s *Service) CanSwitchMode(app *store.Application) error {
	if !s.guard {
		return nil
	}

	switch app.Status {
	case store.StatusPendingAudit:
		return ErrPendingAuditModeSwitch
	case store.StatusClosed:
		return ErrClosedModeSwitch
	default:
		return nil
	}
}

// EnableAuditMode 앱을 WeChat 심사 모드(online)로 전환합니다.
func (s *Service) EnableAuditMode(ctx context.Context, id uint64) (*store.Application, error) {
	return s.transition(ctx, id, store.StatusOnline, true)
}

// EnableOnlineMode 앱을 운영 모드(pending_audit)로 전환합니다.
func (s *Service) EnableOnlineMode(ctx context.Context, id uint64) (*store.Application, error) {
	return s.transition(ctx, id, store.StatusPendingAudit, true)
}

// Close 앱을 종료(closed) 상태로 전환합니다. 모드 전환 가드를 적용하지 않습니다.
func (s *Service) Close(ctx context.Context, id uint64) (*store.Application, error) {
	return s.transition(ctx, id, store.StatusClosed, false)
}

func (s *Service) transition(ctx context.Context, id uint64, to store.Status, guarded bool) (*store.Application, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	current, err := s.store.GetApplication(ctx, id)
	if err != nil {
		return nil, err
	}

	if guarded {
		if err := s.CanSwitchMode(current); err != nil {
			return nil, err
		}
	}

	updated, err := s.store.UpdateApplicationStatus(ctx, id, to)
	if err != nil {
		return nil, err
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"app_id": id,
		"from":   current.Status,
		"to":     to,
	}).Info("앱 상태 전환 완료")

	return updated, nil
}
