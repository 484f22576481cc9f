// Package store 애플리케이션과 관리자 연결 정보를 저장합니다.
//
// 드라이버는 설정(store.driver)으로 선택합니다.
//   - memory: 프로세스 메모리 (테스트 및 단일 인스턴스 개발용)
//   - file:   하나의 JSON 문서를 원자적으로 교체하며 저장
//   - sql:    gorm 기반 sqlite/postgres
package store

import (
	"context"
	"io"

	"github.com/darkkaiser/miniapp-server/internal/config"
)

// component 저장소의 로깅용 컴포넌트 이름
const component = "store"

// Store 애플리케이션 저장소 인터페이스입니다.
//
// 조회 결과는 호출자 소유의 복사본이며, 수정해도 저장소에 반영되지 않습니다.
type Store interface {
	// CreateApplication ID를 할당하여 저장합니다. AllianceKey가 중복이면 Conflict 에러를 반환합니다.
	CreateApplication(ctx context.Context, app *Application) error

	GetApplication(ctx context.Context, id uint64) (*Application, error)
	GetApplicationByAllianceKey(ctx context.Context, key string) (*Application, error)

	// UpdateApplicationStatus 상태만 변경하고 변경된 애플리케이션을 반환합니다.
	UpdateApplicationStatus(ctx context.Context, id uint64, status Status) (*Application, error)

	// LinkAdmin 관리자와 애플리케이션을 연결합니다. 이미 연결되어 있으면 Conflict 에러를 반환합니다.
	LinkAdmin(ctx context.Context, adminID, appID uint64) (*AdminAppLink, error)

	// ListApplicationsByAdmin 관리자에게 연결된 애플리케이션을 ID 순으로 반환합니다.
	ListApplicationsByAdmin(ctx context.Context, adminID uint64) ([]*Application, error)

	io.Closer
}

// Open 설정에 맞는 저장소를 생성합니다.
func Open(cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "", "memory":
		return NewMemoryStore(), nil
	case "file":
		return NewFileStore(cfg.Path)
	case "sql":
		return NewSQLStore(cfg.DSN)
	default:
		return nil, NewErrUnsupportedDriver(cfg.Driver)
	}
}
