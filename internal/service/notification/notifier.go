// Package notification 서버 장애를 운영자에게 알리는 Notifier를 제공합니다.
package notification

import (
	"github.com/darkkaiser/miniapp-server/internal/config"
)

// Notifier 운영자에게 장애 알림을 보냅니다.
//
// Notify는 호출자를 막지 않아야 하며, 전송 실패는 Notifier 내부에서 기록합니다.
type Notifier interface {
	Notify(message string)
}

type discard struct{}

func (discard) Notify(string) {}

// Discard 알림을 보내지 않는 Notifier입니다.
var Discard Notifier = discard{}

// New 설정에 맞는 Notifier를 생성합니다.
//
// 텔레그램 봇 토큰이 설정되지 않았으면 Discard와 nil 서비스를 반환합니다.
func New(appName string, cfg config.AlertConfig) (Notifier, *TelegramNotifier, error) {
	if !cfg.Telegram.Enabled() {
		return Discard, nil, nil
	}

	n, err := NewTelegramNotifier(appName, cfg.Telegram)
	if err != nil {
		return nil, nil, err
	}
	return n, n, nil
}
