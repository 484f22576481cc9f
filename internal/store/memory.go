package store

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"
)

type linkKey struct {
	adminID uint64
	appID   uint64
}

// MemoryStore 프로세스 메모리에 저장하는 Store 구현체입니다.
type MemoryStore struct {
	mu sync.RWMutex

	nextID       uint64
	apps         map[uint64]*Application
	allianceKeys map[string]uint64
	links        map[linkKey]*AdminAppLink

	now func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore 비어 있는 MemoryStore를 생성합니다.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID:       1,
		apps:         make(map[uint64]*Application),
		allianceKeys: make(map[string]uint64),
		links:        make(map[linkKey]*AdminAppLink),
		now:          time.Now,
	}
}

func (s *MemoryStore) CreateApplication(ctx context.Context, app *Application) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.allianceKeys[app.AllianceKey]; exists {
		return NewErrDuplicateAllianceKey()
	}

	now := s.now()
	app.ID = s.nextID
	app.CreatedAt = now
	app.UpdatedAt = now
	s.nextID++

	stored := *app
	s.apps[stored.ID] = &stored
	s.allianceKeys[stored.AllianceKey] = stored.ID

	return nil
}

func (s *MemoryStore) GetApplication(ctx context.Context, id uint64) (*Application, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	app, ok := s.apps[id]
	if !ok {
		return nil, NewErrApplicationNotFound(id)
	}
	clone := *app
	return &clone, nil
}

func (s *MemoryStore) GetApplicationByAllianceKey(ctx context.Context, key string) (*Application, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.allianceKeys[key]
	if !ok {
		return nil, NewErrAllianceKeyNotFound()
	}
	clone := *s.apps[id]
	return &clone, nil
}

func (s *MemoryStore) UpdateApplicationStatus(ctx context.Context, id uint64, status Status) (*Application, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, NewErrInvalidStatus(status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	app, ok := s.apps[id]
	if !ok {
		return nil, NewErrApplicationNotFound(id)
	}
	app.Status = status
	app.UpdatedAt = s.now()

	clone := *app
	return &clone, nil
}

func (s *MemoryStore) LinkAdmin(ctx context.Context, adminID, appID uint64) (*AdminAppLink, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.apps[appID]; !ok {
		return nil, NewErrApplicationNotFound(appID)
	}

	key := linkKey{adminID: adminID, appID: appID}
	if _, exists := s.links[key]; exists {
		return nil, NewErrDuplicateLink(adminID, appID)
	}

	link := &AdminAppLink{AdminID: adminID, AppID: appID, CreatedAt: s.now()}
	s.links[key] = link

	clone := *link
	return &clone, nil
}

func (s *MemoryStore) ListApplicationsByAdmin(ctx context.Context, adminID uint64) ([]*Application, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	apps := make([]*Application, 0)
	for key := range s.links {
		if key.adminID != adminID {
			continue
		}
		if app, ok := s.apps[key.appID]; ok {
			clone := *app
			apps = append(apps, &clone)
		}
	}
	slices.SortFunc(apps, func(a, b *Application) int { return cmp.Compare(a.ID, b.ID) })

	return apps, nil
}

func (s *MemoryStore) Close() error {
	return nil
}

// snapshot 파일 저장소가 디스크에 기록하는 전체 상태입니다.
type snapshot struct {
	NextID       uint64          `json:"next_id"`
	Applications []*Application  `json:"applications"`
	Links        []*AdminAppLink `json:"links"`
}

// snapshotLocked 현재 상태의 복사본을 반환합니다. 호출자가 잠금을 보유하고 있어야 합니다.
func (s *MemoryStore) snapshotLocked() *snapshot {
	snap := &snapshot{
		NextID:       s.nextID,
		Applications: make([]*Application, 0, len(s.apps)),
		Links:        make([]*AdminAppLink, 0, len(s.links)),
	}
	for _, app := range s.apps {
		clone := *app
		snap.Applications = append(snap.Applications, &clone)
	}
	for _, link := range s.links {
		clone := *link
		snap.Links = append(snap.Links, &clone)
	}

	slices.SortFunc(snap.Applications, func(a, b *Application) int { return cmp.Compare(a.ID, b.ID) })
	slices.SortFunc(snap.Links, func(a, b *AdminAppLink) int {
		if c := cmp.Compare(a.AdminID, b.AdminID); c != 0 {
			return c
		}
		return cmp.Compare(a.AppID, b.AppID)
	})

	return snap
}

// restoreLocked 스냅샷으로 상태를 교체합니다. 호출자가 잠금을 보유하고 있어야 합니다.
func (s *MemoryStore) restoreLocked(snap *snapshot) {
	s.apps = make(map[uint64]*Application, len(snap.Applications))
	s.allianceKeys = make(map[string]uint64, len(snap.Applications))
	s.links = make(map[linkKey]*AdminAppLink, len(snap.Links))
	s.nextID = max(snap.NextID, 1)

	for _, app := range snap.Applications {
		clone := *app
		s.apps[clone.ID] = &clone
		s.allianceKeys[clone.AllianceKey] = clone.ID
		if clone.ID >= s.nextID {
			s.nextID = clone.ID + 1
		}
	}
	for _, link := range snap.Links {
		clone := *link
		s.links[linkKey{adminID: clone.AdminID, appID: clone.AppID}] = &clone
	}
}

func (s *MemoryStore) snapshot() *snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *MemoryStore) restore(snap *snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.restoreLocked(snap)
}
