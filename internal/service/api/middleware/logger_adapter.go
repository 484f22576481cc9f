package middleware

import (
	"io"

	applog "github.com/darkkaiser/miniapp-server/pkg/log"
	"github.com/labstack/gommon/log"
	"github.com/sirupsen/logrus"
)

// Logger Echo 내부 로그를 애플리케이션 로거로 보냅니다.
//
// Print/Debug/Info 계열과 SetOutput은 logrus.Logger에서 그대로 승격되고,
// 여기서는 gommon/log에만 있는 메서드를 채웁니다.
type Logger struct {
	*logrus.Logger
}

// NewLogger 전역 로거를 사용하는 어댑터를 생성합니다.
func NewLogger() Logger {
	return Logger{Logger: applog.StandardLogger()}
}

// Trace는 Echo에 없으므로 DEBUG로 보고, Fatal과 Panic은 OFF로 봅니다.
var echoLevels = map[applog.Level]log.Lvl{
	applog.TraceLevel: log.DEBUG,
	applog.DebugLevel: log.DEBUG,
	applog.InfoLevel:  log.INFO,
	applog.WarnLevel:  log.WARN,
	applog.ErrorLevel: log.ERROR,
}

var appLevels = map[log.Lvl]applog.Level{
	log.DEBUG: applog.DebugLevel,
	log.INFO:  applog.InfoLevel,
	log.WARN:  applog.WarnLevel,
	log.ERROR: applog.ErrorLevel,
}

func (l Logger) Level() log.Lvl {
	if lvl, ok := echoLevels[l.Logger.GetLevel()]; ok {
		return lvl
	}
	return log.OFF
}

// SetLevel OFF는 대응하는 레벨이 없어 무시합니다.
func (l Logger) SetLevel(lvl log.Lvl) {
	if level, ok := appLevels[lvl]; ok {
		l.Logger.SetLevel(level)
	}
}

func (l Logger) Output() io.Writer { return l.Logger.Out }

func (l Logger) Prefix() string { return "" }
func (l Logger) SetPrefix(string) {}
func (l Logger) SetHeader(string) {}
func (l Logger) Printj(j log.JSON) { l.withJSON(j).Print() }
func (l Logger) Debugj(j log.JSON) { l.withJSON(j).Debug() }
func (l Logger) Infoj(j log.JSON) { l.withJSON(j).Info() }
func (l Logger) Warnj(j log.JSON) { l.withJSON(j).Warn() }
func (l Logger) Errorj(j log.JSON) { l.withJSON(j).Error() }
func (l Logger) Fatalj(j log.JSON) { l.withJSON(j).Fatal() }
func (l Logger) Panicj(j log.JSON) { l.withJSON(j).Panic() }

func (l Logger) withJSON(j log.JSON) *logrus.Entry {
	return l.Logger.WithFields(applog.Fields(j))
}
