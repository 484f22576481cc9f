package log

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func newTestHook() (*hook, *safeBuffer, *safeBuffer, *safeBuffer, *safeBuffer) {
	mainBuf, critBuf, verbBuf, consBuf := &safeBuffer{}, &safeBuffer{}, &safeBuffer{}, &safeBuffer{}
	return &hook{
		mainWriter:     mainBuf,
		criticalWriter: critBuf,
		verboseWriter:  verbBuf,
		consoleWriter:  consBuf,
		formatter:      &logrus.TextFormatter{DisableTimestamp: true},
	}, mainBuf, critBuf, verbBuf, consBuf
}

func newEntry(level Level, msg string) *Entry {
	e := logrus.NewEntry(logrus.New())
	e.Level = level
	e.Message = msg
	return e
}

func TestHook_Fire_Routing(t *testing.T) {
	tests := []struct {
		name       string
		level      Level
		inMain     bool
		inCritical bool
		inVerbose  bool
		inConsole  bool
	}{
		{"ERROR는 critical과 main에 기록된다", ErrorLevel, true, true, false, true},
		{"WARN은 main에만 기록된다", WarnLevel, true, false, false, true},
		{"INFO는 main에만 기록된다", InfoLevel, true, false, false, true},
		{"DEBUG는 verbose에만 기록된다", DebugLevel, false, false, true, true},
		{"TRACE는 verbose에만 기록된다", TraceLevel, false, false, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, mainBuf, critBuf, verbBuf, consBuf := newTestHook()

			require.NoError(t, h.Fire(newEntry(tt.level, "moderation-check")))

			assert.Equal(t, tt.inMain, mainBuf.String() != "")
			assert.Equal(t, tt.inCritical, critBuf.String() != "")
			assert.Equal(t, tt.inVerbose, verbBuf.String() != "")
			assert.Equal(t, tt.inConsole, consBuf.String() != "")
		})
	}
}

func TestHook_Fire_WriterFailure(t *testing.T) {
	h, mainBuf, _, _, _ := newTestHook()
	h.criticalWriter = failWriter{}

	err := h.Fire(newEntry(ErrorLevel, "image check failed"))

	assert.Error(t, err)
	assert.Contains(t, mainBuf.String(), "image check failed", "critical 쓰기가 실패해도 main 기록은 수행되어야 합니다")
}

func TestHook_Close(t *testing.T) {
	h, mainBuf, _, _, _ := newTestHook()
	require.NoError(t, h.Close())

	require.NoError(t, h.Fire(newEntry(InfoLevel, "after close")))
	assert.Empty(t, mainBuf.String())
}

func TestHook_ConcurrentFire(t *testing.T) {
	h, mainBuf, _, _, _ := newTestHook()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = h.Fire(newEntry(InfoLevel, "concurrent"))
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, bytes.Count([]byte(mainBuf.String()), []byte("concurrent")))
}
