package store

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	applog "github.com/darkkaiser/miniapp-server/pkg/log"
)

// tempFilePattern 저장 중 생성되는 임시 파일의 이름 패턴
const tempFilePattern = "miniapp-store-*.tmp"

// FileStore 전체 상태를 하나의 JSON 파일로 저장하는 Store 구현체입니다.
//
// 조회는 메모리에서 처리하고, 변경이 성공할 때마다 전체 문서를
// "임시 파일 쓰기 → fsync → rename" 순서로 원자적으로 교체합니다.
// 파일 기록에 실패하면 메모리 상태를 변경 이전으로 되돌립니다.
type FileStore struct {
	*MemoryStore

	path string

	// writeMu 변경과 파일 기록을 하나의 단위로 직렬화합니다.
	writeMu sync.Mutex
}

var _ Store = (*FileStore)(nil)

// NewFileStore path의 JSON 문서를 읽어 FileStore를 생성합니다. 파일이 없으면 빈 저장소로 시작합니다.
func NewFileStore(path string) (*FileStore, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, newErrReadFile(err, path)
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return nil, newErrWriteFile(err, absPath)
	}

	s := &FileStore{MemoryStore: NewMemoryStore(), path: absPath}

	data, err := os.ReadFile(absPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		applog.WithComponentAndFields(component, applog.Fields{
			"path": absPath,
		}).Info("저장소 파일이 없어 빈 저장소로 시작합니다")
	case err != nil:
		return nil, newErrReadFile(err, absPath)
	default:
		var snap snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			return nil, newErrDecodeFile(err, absPath)
		}
		s.restore(&snap)

		applog.WithComponentAndFields(component, applog.Fields{
			"path":         absPath,
			"applications": len(snap.Applications),
			"links":        len(snap.Links),
		}).Info("저장소 파일 로드 완료")
	}

	return s, nil
}

func (s *FileStore) CreateApplication(ctx context.Context, app *Application) error {
	return s.mutate(func() error {
		return s.MemoryStore.CreateApplication(ctx, app)
	})
}

func (s *FileStore) UpdateApplicationStatus(ctx context.Context, id uint64, status Status) (*Application, error) {
	var updated *Application
	err := s.mutate(func() error {
		var err error
		updated, err = s.MemoryStore.UpdateApplicationStatus(ctx, id, status)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *FileStore) LinkAdmin(ctx context.Context, adminID, appID uint64) (*AdminAppLink, error) {
	var link *AdminAppLink
	err := s.mutate(func() error {
		var err error
		link, err = s.MemoryStore.LinkAdmin(ctx, adminID, appID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return link, nil
}

func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) mutate(fn func() error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	prev := s.snapshot()
	if err := fn(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s.snapshot(), "", "\t")
	if err == nil {
		err = writeAtomic(s.path, data)
	}
	if err != nil {
		s.restore(prev)

		applog.WithComponentAndFields(component, applog.Fields{
			"path":  s.path,
			"error": err,
		}).Error("저장소 파일 기록 실패: 변경 사항을 되돌립니다")

		return newErrWriteFile(err, s.path)
	}
	return nil
}

// writeAtomic 같은 디렉터리의 임시 파일에 기록하고 fsync한 뒤 rename으로 교체합니다.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)

	tmpFile, err := os.CreateTemp(dir, tempFilePattern)
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()

	// Windows에서는 열린 파일을 삭제할 수 없으므로 Close가 Remove보다 먼저 실행되어야 합니다.
	defer os.Remove(tmpPath)
	defer tmpFile.Close()

	if _, err := tmpFile.Write(data); err != nil {
		return err
	}
	if err := tmpFile.Sync(); err != nil {
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}
	if err := renameWithRetry(tmpPath, path); err != nil {
		return err
	}

	// 실패해도 치명적이지 않으므로 무시합니다.
	if dirFile, err := os.Open(dir); err == nil {
		_ = dirFile.Sync()
		dirFile.Close()
	}

	return nil
}

// renameWithRetry 백신, 인덱서 등이 파일을 일시적으로 잠근 경우를 위해 짧게 재시도합니다.
func renameWithRetry(oldPath, newPath string) error {
	const maxRetries = 5
	const retryDelay = 10 * time.Millisecond

	var lastErr error
	for range maxRetries {
		err := os.Rename(oldPath, newPath)
		if err == nil {
			return nil
		}
		lastErr = err
		time.Sleep(retryDelay)
	}
	return lastErr
}
