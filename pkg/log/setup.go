package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	fileExt = "log"

	defaultDir        = "logs"
	defaultMaxSizeMB  = 100
	defaultMaxBackups = 20
)

var (
	setupOnce      sync.Once
	globalCloser   io.Closer
	globalSetupErr error
)

// Setup 전역 로거를 초기화합니다. 프로세스 생명주기 동안 한 번만 수행되며,
// 이후 호출은 최초 결과를 그대로 반환합니다.
//
// 반환된 Closer는 main에서 defer로 닫아야 합니다.
func Setup(opts Options) (io.Closer, error) {
	setupOnce.Do(func() {
		globalCloser, globalSetupErr = setup(logrus.StandardLogger(), opts)
	})
	return globalCloser, globalSetupErr
}

// silentFormatter 기본 출력(io.Discard)에 대한 포맷팅 비용을 없앱니다.
// 실제 포맷팅은 hook에서 수행합니다.
type silentFormatter struct{}

func (silentFormatter) Format(*logrus.Entry) ([]byte, error) {
	return nil, nil
}

func setup(logger *logrus.Logger, opts Options) (io.Closer, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("유효하지 않은 로그 설정: %w", err)
	}

	level := opts.Level
	if level == 0 {
		level = InfoLevel
	}
	dir := opts.Dir
	if dir == "" {
		dir = defaultDir
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("로그 디렉토리 생성 실패: %w", err)
	}

	rotate := func(suffix string) *lumberjack.Logger {
		name := opts.Name
		if suffix != "" {
			name += "." + suffix
		}
		return &lumberjack.Logger{
			Filename:   filepath.Join(dir, name+"."+fileExt),
			MaxSize:    orDefault(opts.MaxSizeMB, defaultMaxSizeMB),
			MaxBackups: orDefault(opts.MaxBackups, defaultMaxBackups),
			MaxAge:     opts.MaxAge,
			LocalTime:  true,
		}
	}

	h := &hook{formatter: newTextFormatter(opts.CallerPathPrefix)}

	mainLogger := rotate("")
	h.mainWriter = mainLogger
	closers := []io.Closer{mainLogger}

	if opts.EnableCriticalLog {
		l := rotate("critical")
		h.criticalWriter = l
		closers = append(closers, l)
	}
	if opts.EnableVerboseLog {
		l := rotate("verbose")
		h.verboseWriter = l
		closers = append(closers, l)
	}
	if opts.EnableConsoleLog {
		h.consoleWriter = os.Stdout
	}

	logger.SetLevel(level)
	logger.SetReportCaller(opts.ReportCaller)
	logger.SetFormatter(silentFormatter{})
	logger.SetOutput(io.Discard)
	logger.AddHook(h)

	c := &closer{closers: closers, hook: h}

	// Fatal 로그로 프로세스가 종료되기 전에 버퍼를 비웁니다.
	logrus.RegisterExitHandler(func() { _ = c.Close() })

	return c, nil
}

func newTextFormatter(callerPathPrefix string) *logrus.TextFormatter {
	return &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
		CallerPrettyfier: func(frame *runtime.Frame) (function string, file string) {
			function = frame.Function + "(line:" + strconv.Itoa(frame.Line) + ")"
			if callerPathPrefix != "" {
				if cut, ok := strings.CutPrefix(function, callerPathPrefix); ok {
					function = "..." + cut
				}
			}
			return function, ""
		},
	}
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}
