// Package log logrus 기반의 전역 로거 설정과 컴포넌트 단위 로깅 헬퍼를 제공합니다.
package log

import "github.com/sirupsen/logrus"

// WithComponent component 필드가 포함된 Entry를 반환합니다.
func WithComponent(component string) *Entry {
	return logrus.WithField("component", component)
}

// WithComponentAndFields component 필드와 추가 필드가 포함된 Entry를 반환합니다.
// 전달된 fields 맵은 변경하지 않습니다.
func WithComponentAndFields(component string, fields Fields) *Entry {
	merged := make(Fields, len(fields)+1)
	for k, v := range fields {
		merged[k] = v
	}
	merged["component"] = component
	return logrus.WithFields(merged)
}

// SetDebugMode 디버그 모드면 Trace, 아니면 Info 레벨로 전환합니다.
func SetDebugMode(debug bool) {
	if debug {
		logrus.SetLevel(TraceLevel)
	} else {
		logrus.SetLevel(InfoLevel)
	}
}

// StandardLogger 전역 logrus 로거를 반환합니다. cron, echo 등 외부 라이브러리의 로거 어댑터에 사용합니다.
func StandardLogger() *logrus.Logger {
	return logrus.StandardLogger()
}
