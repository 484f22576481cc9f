package asset

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	applog "github.com/darkkaiser/miniapp-server/pkg/log"
)

// Sweep 수정 시각이 maxAge보다 오래된 배치 임시 디렉터리를 삭제하고 삭제한 개수를 반환합니다.
//
// 정상 경로에서는 Batch.Close가 디렉터리를 지우므로, 여기서 정리되는 것은
// 비정상 종료된 프로세스가 남긴 디렉터리뿐입니다.
func (s *Source) Sweep(maxAge time.Duration, now time.Time) (int, error) {
	entries, err := os.ReadDir(s.scratchDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, newErrReadDir(err, s.scratchDir)
	}

	removed := 0
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), BatchDirPrefix) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) < maxAge {
			continue
		}

		dir := filepath.Join(s.scratchDir, entry.Name())
		if err := os.RemoveAll(dir); err != nil {
			applog.WithComponentAndFields(component, applog.Fields{
				"dir":   dir,
				"error": err,
			}).Warn("오래된 배치 임시 디렉터리 삭제 실패")
			continue
		}
		removed++
	}

	return removed, nil
}
