package notification

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"sync"
	"time"

	"github.com/darkkaiser/miniapp-server/internal/config"
	applog "github.com/darkkaiser/miniapp-server/pkg/log"
	"github.com/darkkaiser/miniapp-server/pkg/strutil"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
)

// component 텔레그램 Notifier의 로깅용 컴포넌트 이름
const component = "notification.telegram"

const (
	// queueSize 전송 대기열 크기. 가득 차면 새 알림을 버립니다.
	queueSize = 64

	// maxMessageRunes 텔레그램 메시지 최대 길이(4096자)에서 제목 영역을 뺀 본문 길이
	maxMessageRunes = 3900

	// maxSendAttempts 알림 1건당 최대 전송 시도 횟수
	maxSendAttempts = 3

	httpClientTimeout = 30 * time.Second
	retryDelay        = 1 * time.Second
	drainTimeout      = 5 * time.Second

	// 텔레그램은 같은 채팅방에 초당 1건 정도를 권장합니다.
	defaultRateLimit = 1
	defaultRateBurst = 5

	msgTitle = "<b>【 %s 】</b>\n\n%s"
)

// botClient 메시지 전송에 사용하는 텔레그램 Bot API의 부분 집합입니다.
type botClient interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier 장애 알림을 대기열에 쌓아 두고 백그라운드에서 텔레그램으로 보냅니다.
type TelegramNotifier struct {
	appName string
	chatID  int64

	bot     botClient
	limiter *rate.Limiter
	queue   chan string

	retryDelay time.Duration

	running   bool
	runningMu sync.Mutex
}

var _ Notifier = (*TelegramNotifier)(nil)

// NewTelegramNotifier 봇 토큰을 검증(getMe)하고 새로운 TelegramNotifier를 생성합니다.
func NewTelegramNotifier(appName string, cfg config.TelegramConfig) (*TelegramNotifier, error) {
	endpoint := cfg.APIEndpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}

	client := &http.Client{Timeout: httpClientTimeout}
	bot, err := tgbotapi.NewBotAPIWithClient(cfg.BotToken, endpoint, client)
	if err != nil {
		return nil, newErrBotInitFailed(err, cfg.BotToken)
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"bot_username": bot.Self.UserName,
		"bot_token":    strutil.MaskSensitiveData(cfg.BotToken),
		"chat_id":      cfg.ChatID,
	}).Info("텔레그램 봇 초기화 완료")

	return newTelegramNotifier(appName, cfg.ChatID, bot), nil
}

func newTelegramNotifier(appName string, chatID int64, bot botClient) *TelegramNotifier {
	return &TelegramNotifier{
		appName:    appName,
		chatID:     chatID,
		bot:        bot,
		limiter:    rate.NewLimiter(rate.Limit(defaultRateLimit), defaultRateBurst),
		queue:      make(chan string, queueSize),
		retryDelay: retryDelay,
	}
}

// Notify 알림을 대기열에 넣습니다. 대기열이 가득 차 있으면 알림을 버리고 경고를 남깁니다.
func (n *TelegramNotifier) Notify(message string) {
	select {
	case n.queue <- message:
	default:
		applog.WithComponentAndFields(component, applog.Fields{
			"queue_size": queueSize,
			"message":    strutil.Truncate(message, 100),
		}).Warn("알림 대기열이 가득 차서 알림을 버렸습니다")
	}
}

// Start 전송 워커를 시작합니다.
//
// serviceStopCtx가 취소되면 대기열에 남은 알림을 제한 시간 안에서 마저 보낸 뒤
// serviceStopWG.Done()을 호출합니다.
func (n *TelegramNotifier) Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error {
	n.runningMu.Lock()
	defer n.runningMu.Unlock()

	if n.running {
		serviceStopWG.Done()
		applog.WithComponent(component).Warn("텔레그램 Notifier가 이미 실행 중입니다 (중복 호출)")
		return nil
	}
	n.running = true

	go n.run(serviceStopCtx, serviceStopWG)

	applog.WithComponent(component).Info("서비스 시작 완료: 텔레그램 Notifier가 정상적으로 초기화되었습니다")

	return nil
}

func (n *TelegramNotifier) run(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) {
	defer serviceStopWG.Done()

	for {
		select {
		case message := <-n.queue:
			n.send(serviceStopCtx, message)

		case <-serviceStopCtx.Done():
			n.drain()

			n.runningMu.Lock()
			n.running = false
			n.runningMu.Unlock()

			applog.WithComponent(component).Info("텔레그램 Notifier 종료 완료")
			return
		}
	}
}

// drain 종료 직전에 대기열에 남은 알림을 보냅니다.
func (n *TelegramNotifier) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()

	for {
		select {
		case message := <-n.queue:
			n.send(ctx, message)
		default:
			return
		}
	}
}

func (n *TelegramNotifier) send(ctx context.Context, message string) {
	text := fmt.Sprintf(msgTitle, html.EscapeString(n.appName), html.EscapeString(strutil.Truncate(message, maxMessageRunes)))

	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML

	for attempt := 1; attempt <= maxSendAttempts; attempt++ {
		if err := n.limiter.Wait(ctx); err != nil {
			applog.WithComponentAndFields(component, applog.Fields{
				"error": err,
			}).Warn("전송 대기 중 취소되어 알림을 보내지 못했습니다")
			return
		}

		_, err := n.bot.Send(msg)
		if err == nil {
			return
		}

		code, retryAfter := parseTelegramError(err)
		fields := applog.Fields{
			"chat_id": n.chatID,
			"attempt": attempt,
			"code":    code,
			"error":   err,
		}

		// 4xx 응답은 다시 보내도 성공하지 않습니다. 429는 예외입니다.
		if code >= 400 && code < 500 && code != http.StatusTooManyRequests {
			applog.WithComponentAndFields(component, fields).Error("텔레그램이 알림 전송을 거부했습니다")
			return
		}
		if attempt == maxSendAttempts {
			applog.WithComponentAndFields(component, fields).Error("텔레그램 알림 전송 실패: 재시도 횟수를 모두 소진했습니다")
			return
		}

		delay := n.retryDelay
		if retryAfter > 0 {
			delay = time.Duration(retryAfter) * time.Second
		}
		applog.WithComponentAndFields(component, fields).Warn("텔레그램 알림 전송 실패: 잠시 후 다시 시도합니다")

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return
		}
	}
}

// parseTelegramError 텔레그램 API 에러에서 응답 코드와 재시도 대기 시간(초)을 꺼냅니다.
// 네트워크 오류 등 API 에러가 아니면 0을 반환합니다.
func parseTelegramError(err error) (code int, retryAfter int) {
	if apiErr, ok := err.(tgbotapi.Error); ok {
		return apiErr.Code, apiErr.ResponseParameters.RetryAfter
	}
	if apiErr, ok := err.(*tgbotapi.Error); ok {
		return apiErr.Code, apiErr.ResponseParameters.RetryAfter
	}
	return 0, 0
}
