package api

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/darkkaiser/miniapp-server/internal/config"
	"github.com/darkkaiser/miniapp-server/internal/pkg/version"
	"github.com/darkkaiser/miniapp-server/internal/service/api/constants"
	"github.com/darkkaiser/miniapp-server/internal/service/app"
	"github.com/darkkaiser/miniapp-server/internal/service/moderation"
	"github.com/darkkaiser/miniapp-server/internal/service/notification"
	"github.com/darkkaiser/miniapp-server/internal/store"
	"github.com/darkkaiser/miniapp-server/internal/testutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAdminKey = "admin-key-0123456789"

// stubModerator 금지어가 포함된 텍스트만 위반으로 판정합니다.
type stubModerator struct{}

func (stubModerator) CheckText(_ context.Context, _ uint64, text string) error {
	if strings.Contains(text, "금지어") {
		return moderation.NewErrTextViolation()
	}
	return nil
}

func (stubModerator) CheckImages(context.Context, uint64, []string) error {
	return nil
}

func newTestConfig(port int) *config.AppConfig {
	return &config.AppConfig{
		Debug: true,
		HTTP: config.HTTPConfig{
			ListenPort:   port,
			AllowOrigins: []string{"*"},
			BodyLimit:    "1K",
		},
		Moderation: config.ModerationConfig{MaxImages: 9},
		Admins: []config.AdminConfig{
			{ID: 1, Name: "운영자", Key: testAdminKey},
		},
	}
}

func newTestService(t *testing.T, appConfig *config.AppConfig) *Service {
	t.Helper()

	apps := app.NewService(config.AppPolicyConfig{}, store.NewMemoryStore())
	registry := prometheus.NewRegistry()

	return NewService(appConfig, apps, stubModerator{}, registry, notification.Discard, version.Info{
		Version:     "1.0.0",
		BuildDate:   "2024-01-01",
		BuildNumber: "100",
	})
}

func TestNewService_Panics(t *testing.T) {
	cfg := newTestConfig(8080)
	apps := app.NewService(config.AppPolicyConfig{}, store.NewMemoryStore())
	registry := prometheus.NewRegistry()

	tests := []struct {
		name string
		fn   func()
	}{
		{"AppConfig 누락", func() { NewService(nil, apps, stubModerator{}, registry, notification.Discard, version.Info{}) }},
		{"AppService 누락", func() { NewService(cfg, nil, stubModerator{}, registry, notification.Discard, version.Info{}) }},
		{"Moderator 누락", func() { NewService(cfg, apps, nil, registry, notification.Discard, version.Info{}) }},
		{"Gatherer 누락", func() { NewService(cfg, apps, stubModerator{}, nil, notification.Discard, version.Info{}) }},
		{"Notifier 누락", func() { NewService(cfg, apps, stubModerator{}, registry, nil, version.Info{}) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Panics(t, tt.fn)
		})
	}
}

func TestService_newEcho(t *testing.T) {
	service := newTestService(t, newTestConfig(8080))

	e := service.newEcho()
	assert.True(t, e.Debug)

	routes := make(map[string]bool)
	for _, r := range e.Routes() {
		routes[r.Method+" "+r.Path] = true
	}

	for _, want := range []string{
		"GET /health",
		"GET /version",
		"GET /metrics",
		"GET /swagger/*",
		"POST /api/v1/apps",
		"GET /api/v1/apps",
		"GET /api/v1/apps/:id",
		"GET /api/v1/apps/alliance/:key",
		"POST /api/v1/apps/:id/admins",
		"POST /api/v1/apps/:id/status/audit",
		"POST /api/v1/apps/:id/status/online",
		"POST /api/v1/apps/:id/status/close",
		"POST /api/v1/apps/:id/moderation/text",
		"POST /api/v1/apps/:id/moderation/images",
	} {
		assert.True(t, routes[want], "%s 라우트가 등록되어야 합니다", want)
	}
}

func TestService_EndToEnd(t *testing.T) {
	e := newTestService(t, newTestConfig(8080)).newEcho()

	do := func(method, path, body string, withKey bool) *httptest.ResponseRecorder {
		var req *http.Request
		if body != "" {
			req = httptest.NewRequest(method, path, strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
		} else {
			req = httptest.NewRequest(method, path, nil)
		}
		if withKey {
			req.Header.Set(constants.HeaderAdminKey, testAdminKey)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	t.Run("헬스체크는 인증 없이 호출할 수 있다", func(t *testing.T) {
		rec := do(http.MethodGet, "/health", "", false)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("Server"))
		assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	})

	t.Run("관리자 키가 없으면 401", func(t *testing.T) {
		rec := do(http.MethodGet, "/api/v1/apps", "", false)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	var appID string
	t.Run("등록 후 조회", func(t *testing.T) {
		rec := do(http.MethodPost, "/api/v1/apps", `{"name":"캠퍼스 마켓","app_key":"wx1","app_secret":"s","mobile":"010"}`, true)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var res struct {
			ID uint64 `json:"id"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		appID = jsonNumber(res.ID)

		rec = do(http.MethodGet, "/api/v1/apps/"+appID, "", true)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("JSON이 아닌 Content-Type은 415", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/apps", strings.NewReader("name=x"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set(constants.HeaderAdminKey, testAdminKey)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	})

	t.Run("텍스트 검사 위반은 422", func(t *testing.T) {
		rec := do(http.MethodPost, "/api/v1/apps/"+appID+"/moderation/text", `{"content":"금지어 포함"}`, true)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		rec = do(http.MethodPost, "/api/v1/apps/"+appID+"/moderation/text", `{"content":"안녕하세요"}`, true)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("본문 크기 제한을 넘으면 413", func(t *testing.T) {
		rec := do(http.MethodPost, "/api/v1/apps/"+appID+"/moderation/text", `{"content":"`+strings.Repeat("a", 2048)+`"}`, true)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})

	t.Run("없는 경로는 404", func(t *testing.T) {
		rec := do(http.MethodGet, "/nope", "", false)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), constants.ErrMsgNotFound)
	})

	t.Run("메트릭 엔드포인트", func(t *testing.T) {
		rec := do(http.MethodGet, "/metrics", "", false)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestService_Lifecycle(t *testing.T) {
	port, err := testutil.GetFreePort()
	require.NoError(t, err)

	service := newTestService(t, newTestConfig(port))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wg := &sync.WaitGroup{}

	wg.Add(1)
	require.NoError(t, service.Start(ctx, wg))
	require.NoError(t, testutil.WaitForServer(port, 2*time.Second))

	// 중복 시작은 무시되며 WaitGroup을 즉시 해제합니다.
	wg.Add(1)
	require.NoError(t, service.Start(ctx, wg))

	service.runningMu.Lock()
	assert.True(t, service.running)
	service.runningMu.Unlock()

	cancel()
	waitOrFail(t, wg, 6*time.Second)

	service.runningMu.Lock()
	assert.False(t, service.running)
	service.runningMu.Unlock()
}

func TestService_UnexpectedExit(t *testing.T) {
	port, err := testutil.GetFreePort()
	require.NoError(t, err)

	cfg := newTestConfig(port)
	cfg.HTTP.TLSServer = true
	cfg.HTTP.TLSCertFile = filepath.Join("invalid", "cert.pem")
	cfg.HTTP.TLSKeyFile = filepath.Join("invalid", "key.pem")
	service := newTestService(t, cfg)
	notifier := &recordingNotifier{}
	service.notifier = notifier

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wg := &sync.WaitGroup{}

	wg.Add(1)
	require.NoError(t, service.Start(ctx, wg))

	// 인증서 로드 실패로 서버가 먼저 종료되면 취소 없이도 서비스가 정리됩니다.
	waitOrFail(t, wg, 3*time.Second)

	service.runningMu.Lock()
	assert.False(t, service.running)
	service.runningMu.Unlock()

	messages := notifier.all()
	require.Len(t, messages, 1, "운영자에게 장애 알림을 보내야 합니다")
	assert.Contains(t, messages[0], fmt.Sprintf("포트: %d", port))
}

func TestService_reportListenExit(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		alerts int
	}{
		{"정상 종료는 알리지 않는다", http.ErrServerClosed, 0},
		{"감싼 정상 종료도 알리지 않는다", fmt.Errorf("listener: %w", http.ErrServerClosed), 0},
		{"nil은 알리지 않는다", nil, 0},
		{"그 밖의 오류는 알린다", errors.New("bind: address already in use"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := newTestService(t, newTestConfig(18080))
			notifier := &recordingNotifier{}
			service.notifier = notifier

			service.reportListenExit(tt.err)

			messages := notifier.all()
			require.Len(t, messages, tt.alerts)
			if tt.alerts > 0 {
				assert.Contains(t, messages[0], "포트: 18080")
				assert.Contains(t, messages[0], "address already in use")
			}
		})
	}
}

// recordingNotifier 받은 알림을 기록합니다.
type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Notify(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
}

func (n *recordingNotifier) all() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

func waitOrFail(t *testing.T, wg *sync.WaitGroup, timeout time.Duration) {
	t.Helper()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		t.Fatal("서비스 종료 대기 시간 초과")
	}
}

func jsonNumber(id uint64) string {
	b, _ := json.Marshal(id)
	return string(b)
}

func TestService_TLS(t *testing.T) {
	port, err := testutil.GetFreePort()
	require.NoError(t, err)

	certFile, keyFile := testutil.WriteSelfSignedCert(t)
	cfg := newTestConfig(port)
	cfg.HTTP.TLSServer = true
	cfg.HTTP.TLSCertFile = certFile
	cfg.HTTP.TLSKeyFile = keyFile
	service := newTestService(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wg := &sync.WaitGroup{}

	wg.Add(1)
	require.NoError(t, service.Start(ctx, wg))
	require.NoError(t, testutil.WaitForServer(port, 2*time.Second))

	transport := &http.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: true}}
	client := &http.Client{Transport: transport, Timeout: 2 * time.Second}

	resp, err := client.Get(fmt.Sprintf("https://127.0.0.1:%d/health", port))
	require.NoError(t, err)
	_ = resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Strict-Transport-Security"), "max-age=")

	transport.CloseIdleConnections()
	cancel()
	waitOrFail(t, wg, 6*time.Second)
}
