package notification

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/darkkaiser/miniapp-server/internal/config"
	apperrors "github.com/darkkaiser/miniapp-server/internal/pkg/errors"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type fakeBot struct {
	mu   sync.Mutex
	sent []tgbotapi.MessageConfig
	errs []error
}

func (b *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.sent = append(b.sent, c.(tgbotapi.MessageConfig))
	if len(b.errs) > 0 {
		err := b.errs[0]
		b.errs = b.errs[1:]
		if err != nil {
			return tgbotapi.Message{}, err
		}
	}
	return tgbotapi.Message{MessageID: len(b.sent)}, nil
}

func (b *fakeBot) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.sent)
}

func (b *fakeBot) last() tgbotapi.MessageConfig {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sent[len(b.sent)-1]
}

func newTestNotifier(bot botClient) *TelegramNotifier {
	n := newTelegramNotifier("miniapp-server", 42, bot)
	n.limiter = rate.NewLimiter(rate.Inf, 0)
	n.retryDelay = time.Millisecond
	return n
}

func startNotifier(t *testing.T, n *TelegramNotifier) (context.CancelFunc, *sync.WaitGroup) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}
	wg.Add(1)
	require.NoError(t, n.Start(ctx, wg))
	t.Cleanup(func() {
		cancel()
		wg.Wait()
	})
	return cancel, wg
}

func TestTelegramNotifier_Send(t *testing.T) {
	t.Run("성공: 제목을 붙이고 HTML을 이스케이프해서 보낸다", func(t *testing.T) {
		bot := &fakeBot{}
		n := newTestNotifier(bot)
		startNotifier(t, n)

		n.Notify("HTTP 서버 오류: <listen tcp>")

		require.Eventually(t, func() bool { return bot.count() == 1 }, time.Second, 10*time.Millisecond)
		msg := bot.last()
		assert.Equal(t, int64(42), msg.ChatID)
		assert.Equal(t, tgbotapi.ModeHTML, msg.ParseMode)
		assert.Equal(t, "<b>【 miniapp-server 】</b>\n\nHTTP 서버 오류: &lt;listen tcp&gt;", msg.Text)
	})

	t.Run("성공: 긴 메시지는 잘라서 보낸다", func(t *testing.T) {
		bot := &fakeBot{}
		n := newTestNotifier(bot)
		startNotifier(t, n)

		n.Notify(strings.Repeat("가", maxMessageRunes+100))

		require.Eventually(t, func() bool { return bot.count() == 1 }, time.Second, 10*time.Millisecond)
		assert.True(t, strings.HasSuffix(bot.last().Text, "..."))
		assert.Less(t, len([]rune(bot.last().Text)), 4096)
	})

	t.Run("일시적 오류는 재시도한다", func(t *testing.T) {
		bot := &fakeBot{errs: []error{
			&tgbotapi.Error{Code: http.StatusBadGateway, Message: "Bad Gateway"},
			assert.AnError,
		}}
		n := newTestNotifier(bot)
		startNotifier(t, n)

		n.Notify("재시도")

		require.Eventually(t, func() bool { return bot.count() == 3 }, time.Second, 10*time.Millisecond)
		time.Sleep(20 * time.Millisecond)
		assert.Equal(t, 3, bot.count())
	})

	t.Run("재시도 횟수를 넘기면 포기한다", func(t *testing.T) {
		bot := &fakeBot{errs: []error{assert.AnError, assert.AnError, assert.AnError, assert.AnError}}
		n := newTestNotifier(bot)
		startNotifier(t, n)

		n.Notify("포기")

		require.Eventually(t, func() bool { return bot.count() == maxSendAttempts }, time.Second, 10*time.Millisecond)
		time.Sleep(20 * time.Millisecond)
		assert.Equal(t, maxSendAttempts, bot.count())
	})

	t.Run("4xx 응답은 재시도하지 않는다", func(t *testing.T) {
		bot := &fakeBot{errs: []error{
			tgbotapi.Error{Code: http.StatusBadRequest, Message: "Bad Request: chat not found"},
		}}
		n := newTestNotifier(bot)
		startNotifier(t, n)

		n.Notify("거부")
		n.Notify("다음")

		require.Eventually(t, func() bool { return bot.count() == 2 }, time.Second, 10*time.Millisecond)
		assert.Contains(t, bot.last().Text, "다음")
	})
}

func TestTelegramNotifier_Lifecycle(t *testing.T) {
	t.Run("종료 시 대기열에 남은 알림을 보낸다", func(t *testing.T) {
		bot := &fakeBot{}
		n := newTestNotifier(bot)

		for range 3 {
			n.Notify("종료 전 알림")
		}

		cancel, wg := startNotifier(t, n)
		cancel()
		wg.Wait()

		assert.Equal(t, 3, bot.count())
		assert.False(t, n.running)
	})

	t.Run("중복 시작은 무시한다", func(t *testing.T) {
		n := newTestNotifier(&fakeBot{})
		startNotifier(t, n)

		wg := &sync.WaitGroup{}
		wg.Add(1)
		require.NoError(t, n.Start(context.Background(), wg))

		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("중복 호출 시 WaitGroup이 해제되지 않았습니다")
		}
	})

	t.Run("대기열이 가득 차도 호출자를 막지 않는다", func(t *testing.T) {
		n := newTestNotifier(&fakeBot{})

		done := make(chan struct{})
		go func() {
			for range queueSize + 10 {
				n.Notify("가득")
			}
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("Notify가 블로킹되었습니다")
		}
		assert.Len(t, n.queue, queueSize)
	})
}

func TestParseTelegramError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		code       int
		retryAfter int
	}{
		{"값 타입", tgbotapi.Error{Code: 429, ResponseParameters: tgbotapi.ResponseParameters{RetryAfter: 7}}, 429, 7},
		{"포인터 타입", &tgbotapi.Error{Code: 502}, 502, 0},
		{"일반 에러", assert.AnError, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, retryAfter := parseTelegramError(tt.err)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.retryAfter, retryAfter)
		})
	}
}

// newFakeTelegramAPI getMe와 sendMessage만 흉내 내는 텔레그램 Bot API 서버입니다.
func newFakeTelegramAPI(t *testing.T, token string) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var sent atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if !strings.HasPrefix(r.URL.Path, "/bot"+token+"/") {
			_, _ = w.Write([]byte(`{"ok":false,"error_code":401,"description":"Unauthorized"}`))
			return
		}

		switch {
		case strings.HasSuffix(r.URL.Path, "/getMe"):
			_, _ = w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"bot","username":"alert_bot"}}`))
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			assert.NoError(t, r.ParseForm())
			assert.Equal(t, "-1001", r.PostForm.Get("chat_id"))
			assert.Equal(t, tgbotapi.ModeHTML, r.PostForm.Get("parse_mode"))
			sent.Add(1)
			_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":-1001,"type":"group"}}}`))
		default:
			_, _ = w.Write([]byte(`{"ok":false,"error_code":404,"description":"Not Found"}`))
		}
	}))
	t.Cleanup(ts.Close)

	return ts, &sent
}

func TestNewTelegramNotifier(t *testing.T) {
	const token = "123456:ABCDEFGHIJKLMNOPQRSTUVWXYZ"

	t.Run("성공: 봇 API로 알림을 보낸다", func(t *testing.T) {
		ts, sent := newFakeTelegramAPI(t, token)

		n, err := NewTelegramNotifier("miniapp-server", config.TelegramConfig{
			BotToken:    token,
			ChatID:      -1001,
			APIEndpoint: ts.URL + "/bot%s/%s",
		})
		require.NoError(t, err)
		n.limiter = rate.NewLimiter(rate.Inf, 0)

		startNotifier(t, n)
		n.Notify("스케줄러 정리 실패")

		require.Eventually(t, func() bool { return sent.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	})

	t.Run("실패: 잘못된 토큰은 Unavailable이며 토큰이 노출되지 않는다", func(t *testing.T) {
		ts, _ := newFakeTelegramAPI(t, "other-token")

		_, err := NewTelegramNotifier("miniapp-server", config.TelegramConfig{
			BotToken:    token,
			ChatID:      -1001,
			APIEndpoint: ts.URL + "/bot%s/%s",
		})
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.Unavailable))
		assert.NotContains(t, err.Error(), token)
	})
}

func TestNew(t *testing.T) {
	n, svc, err := New("miniapp-server", config.AlertConfig{})
	require.NoError(t, err)
	assert.Equal(t, Discard, n)
	assert.Nil(t, svc)

	assert.NotPanics(t, func() { Discard.Notify("무시") })
}
