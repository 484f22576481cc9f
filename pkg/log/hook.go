package log

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// hook 로그 레벨에 따라 이벤트를 여러 Writer로 나누어 기록합니다.
//
//   - ERROR 이상: critical + main
//   - INFO, WARN: main
//   - DEBUG 이하: verbose (main에는 기록하지 않음)
//   - console: 레벨과 무관하게 모두 기록
type hook struct {
	mainWriter     io.Writer
	criticalWriter io.Writer
	verboseWriter  io.Writer
	consoleWriter  io.Writer

	formatter Formatter

	mu     sync.RWMutex
	closed bool
}

func (h *hook) Levels() []Level {
	return AllLevels
}

func (h *hook) Fire(entry *Entry) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return nil
	}

	msg, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}

	if h.consoleWriter != nil {
		// 콘솔 출력 실패는 로깅 전체를 막지 않습니다.
		if _, err := h.consoleWriter.Write(msg); err != nil {
			fmt.Fprintf(os.Stderr, "[LOG-SYSTEM-WARN] 콘솔 출력 실패: %v\n", err)
		}
	}

	var firstErr error
	write := func(w io.Writer, name string) {
		if w == nil {
			return
		}
		if _, err := w.Write(msg); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			fmt.Fprintf(os.Stderr, "[LOG-SYSTEM-FAILURE] %s 로그 파일 쓰기 실패: %v\n", name, err)
		}
	}

	if entry.Level <= ErrorLevel {
		write(h.criticalWriter, "Critical")
	}
	if entry.Level >= DebugLevel {
		write(h.verboseWriter, "Verbose")
		return firstErr
	}
	write(h.mainWriter, "Main")

	return firstErr
}

// Close 이후의 모든 Fire 호출을 무시하도록 전환합니다.
// 진행 중인 Fire가 끝날 때까지 대기합니다.
func (h *hook) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	return nil
}
