// Package asset 검수 대상 이미지를 콘텐츠 오리진에서 내려받아 배치 단위 임시 디렉터리에 보관합니다.
package asset

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/darkkaiser/miniapp-server/internal/pkg/fetcher"
	applog "github.com/darkkaiser/miniapp-server/pkg/log"
	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// component 원격 이미지 수집기의 로깅용 컴포넌트 이름
const component = "moderation.asset"

const (
	// BatchDirPrefix 배치 임시 디렉터리 이름의 접두사
	BatchDirPrefix = "batch-"

	// placeholderName 비어 있거나 "."/".."인 참조에 사용하는 파일 이름
	placeholderName = "asset"

	dirPerm  = 0o700
	filePerm = 0o600
)

var separatorReplacer = strings.NewReplacer("/", "_", "\\", "_", "\x00", "_")

// Flatten 이미지 참조를 배치 디렉터리 안의 파일 이름으로 변환합니다.
//
// 모든 경로 구분자를 '_'로 바꾸므로 결과에는 구분자가 없고 배치 디렉터리를 벗어날 수 없습니다.
// 서로 다른 참조가 같은 이름이 되면 같은 배치 안에서는 나중에 내려받은 파일이 앞의 파일을 덮어씁니다.
func Flatten(reference string) string {
	name := separatorReplacer.Replace(norm.NFC.String(reference))
	switch name {
	case "", ".", "..":
		return placeholderName
	}
	return name
}

// Config 수집기 설정입니다.
type Config struct {
	// Origin 이미지를 내려받을 콘텐츠 오리진 (예: https://cdn.example.com)
	Origin string

	// ScratchDir 배치 임시 디렉터리를 생성할 상위 디렉터리
	ScratchDir string
}

// Source 콘텐츠 오리진에서 이미지를 내려받습니다. 여러 배치가 동시에 사용해도 안전합니다.
type Source struct {
	fetcher    fetcher.Fetcher
	origin     string
	scratchDir string
}

// NewSource 새로운 Source를 생성합니다.
func NewSource(cfg Config, f fetcher.Fetcher) (*Source, error) {
	if f == nil {
		panic("Fetcher는 필수입니다")
	}
	if cfg.Origin == "" {
		return nil, ErrOriginNotConfigured
	}
	if cfg.ScratchDir == "" {
		cfg.ScratchDir = filepath.Join(os.TempDir(), "miniapp-server")
	}
	if err := os.MkdirAll(cfg.ScratchDir, dirPerm); err != nil {
		return nil, newErrCreateDir(err, cfg.ScratchDir)
	}

	return &Source{
		fetcher:    f,
		origin:     strings.TrimRight(cfg.Origin, "/"),
		scratchDir: cfg.ScratchDir,
	}, nil
}

// ScratchDir 배치 임시 디렉터리의 상위 디렉터리를 반환합니다.
func (s *Source) ScratchDir() string {
	return s.scratchDir
}

// NewBatch 새로운 배치 임시 디렉터리를 생성합니다. 호출자는 반드시 Close를 defer로 호출해야 합니다.
func (s *Source) NewBatch(ctx context.Context) (*Batch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir := filepath.Join(s.scratchDir, BatchDirPrefix+uuid.NewString())
	if err := os.Mkdir(dir, dirPerm); err != nil {
		return nil, newErrCreateDir(err, dir)
	}

	return &Batch{source: s, origin: s.origin, dir: dir}, nil
}

// Batch 한 번의 검수 요청에서 내려받은 이미지들의 수명을 관리합니다.
type Batch struct {
	source *Source
	origin string
	dir    string

	closeOnce sync.Once
	closeErr  error
}

// Dir 배치 임시 디렉터리 경로를 반환합니다.
func (b *Batch) Dir() string {
	return b.dir
}

// Asset 배치 디렉터리에 저장된 이미지입니다.
type Asset struct {
	Reference string
	Path      string
	Size      int64
}

// escapeReference 참조를 '/' 단위로 나누어 각 세그먼트를 경로 이스케이프합니다.
//
// 참조는 인코딩되지 않은 객체 키로 취급하므로 '#', '?', '%'도 파일 이름의 일부로 전달됩니다.
func escapeReference(reference string) string {
	segments := strings.Split(reference, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}

// Open 저장된 이미지를 읽기용으로 엽니다.
func (a *Asset) Open() (io.ReadCloser, error) {
	return os.Open(a.Path)
}

// Fetch origin + "/" + reference를 GET으로 내려받아 배치 디렉터리에 저장합니다.
// 200 이외의 상태 코드, 전송 오류, 시간 초과는 모두 에러로 반환합니다.
func (b *Batch) Fetch(ctx context.Context, reference string) (*Asset, error) {
	target := b.origin + "/" + escapeReference(reference)

	resp, err := fetcher.Get(ctx, b.source.fetcher, target)
	if err != nil {
		return nil, newErrFetch(err, reference)
	}
	defer fetcher.DrainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, newErrUnexpectedStatus(resp.StatusCode, reference)
	}

	path := filepath.Join(b.dir, Flatten(reference))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePerm)
	if err != nil {
		return nil, newErrWriteFile(err, path)
	}

	n, copyErr := io.Copy(file, resp.Body)
	closeErr := file.Close()
	if copyErr != nil {
		_ = os.Remove(path)
		return nil, newErrFetch(copyErr, reference)
	}
	if closeErr != nil {
		_ = os.Remove(path)
		return nil, newErrWriteFile(closeErr, path)
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"reference": reference,
		"path":      path,
		"bytes":     n,
	}).Debug("이미지 수집 완료")

	return &Asset{Reference: reference, Path: path, Size: n}, nil
}

// Close 배치 디렉터리를 통째로 삭제합니다. 여러 번 호출해도 안전합니다.
func (b *Batch) Close() error {
	b.closeOnce.Do(func() {
		if err := os.RemoveAll(b.dir); err != nil {
			b.closeErr = newErrRemoveDir(err, b.dir)

			applog.WithComponentAndFields(component, applog.Fields{
				"dir":   b.dir,
				"error": err,
			}).Warn("배치 임시 디렉터리 삭제 실패: 주기적 정리 작업에서 다시 시도합니다")
		}
	})
	return b.closeErr
}
