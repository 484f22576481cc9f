package token

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/darkkaiser/miniapp-server/internal/config"
	apperrors "github.com/darkkaiser/miniapp-server/internal/pkg/errors"
	"github.com/darkkaiser/miniapp-server/internal/pkg/fetcher"
	"github.com/darkkaiser/miniapp-server/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tokenServer struct {
	*httptest.Server
	calls atomic.Int32
}

func newTokenServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request, n int32)) *tokenServer {
	t.Helper()
	ts := &tokenServer{}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler(w, r, ts.calls.Add(1))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func setupProvider(t *testing.T, endpoint string, margin time.Duration) (*WeChatProvider, uint64) {
	t.Helper()

	s := store.NewMemoryStore()
	app := &store.Application{Name: "test", AppKey: "wx-app", AppSecret: "top-secret", Status: store.StatusOnline, AllianceKey: "k"}
	require.NoError(t, s.CreateApplication(context.Background(), app))

	f := fetcher.NewFromConfig(fetcher.Config{Timeout: time.Second, DisableLogging: true})
	return NewWeChatProvider(endpoint, margin, s, f, NewMemoryCache(16)), app.ID
}

func TestWeChatProvider_AccessToken(t *testing.T) {
	t.Run("성공: 자격 증명으로 발급받고 캐시한다", func(t *testing.T) {
		ts := newTokenServer(t, func(w http.ResponseWriter, r *http.Request, n int32) {
			q := r.URL.Query()
			assert.Equal(t, "client_credential", q.Get("grant_type"))
			assert.Equal(t, "wx-app", q.Get("appid"))
			assert.Equal(t, "top-secret", q.Get("secret"))
			fmt.Fprintf(w, `{"access_token":"TOKEN-%d","expires_in":7200}`, n)
		})
		p, appID := setupProvider(t, ts.URL, 5*time.Minute)

		tok, err := p.AccessToken(context.Background(), appID)
		require.NoError(t, err)
		assert.Equal(t, "TOKEN-1", tok)

		tok, err = p.AccessToken(context.Background(), appID)
		require.NoError(t, err)
		assert.Equal(t, "TOKEN-1", tok)
		assert.Equal(t, int32(1), ts.calls.Load())
	})

	t.Run("실패: errcode가 있으면 Unauthorized", func(t *testing.T) {
		ts := newTokenServer(t, func(w http.ResponseWriter, r *http.Request, n int32) {
			_, _ = w.Write([]byte(`{"errcode":40125,"errmsg":"invalid appsecret"}`))
		})
		p, appID := setupProvider(t, ts.URL, 0)

		_, err := p.AccessToken(context.Background(), appID)
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.Unauthorized))
		assert.NotContains(t, err.Error(), "top-secret")
	})

	t.Run("실패: access_token이 없으면 ParsingFailed", func(t *testing.T) {
		ts := newTokenServer(t, func(w http.ResponseWriter, r *http.Request, n int32) {
			_, _ = w.Write([]byte(`{"expires_in":7200}`))
		})
		p, appID := setupProvider(t, ts.URL, 0)

		_, err := p.AccessToken(context.Background(), appID)
		assert.True(t, apperrors.Is(err, apperrors.ParsingFailed))
	})

	t.Run("실패: 없는 애플리케이션은 NotFound", func(t *testing.T) {
		ts := newTokenServer(t, func(w http.ResponseWriter, r *http.Request, n int32) {})
		p, _ := setupProvider(t, ts.URL, 0)

		_, err := p.AccessToken(context.Background(), 999)
		assert.True(t, apperrors.Is(err, apperrors.NotFound))
		assert.Equal(t, int32(0), ts.calls.Load())
	})

	t.Run("실패: 5xx 응답은 Unavailable이며 secret이 노출되지 않는다", func(t *testing.T) {
		ts := newTokenServer(t, func(w http.ResponseWriter, r *http.Request, n int32) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
		p, appID := setupProvider(t, ts.URL, 0)

		_, err := p.AccessToken(context.Background(), appID)
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.Unavailable))
		assert.NotContains(t, fmt.Sprintf("%+v", err), "top-secret")
	})

	t.Run("수명이 여유 시간보다 짧으면 캐시하지 않는다", func(t *testing.T) {
		ts := newTokenServer(t, func(w http.ResponseWriter, r *http.Request, n int32) {
			fmt.Fprintf(w, `{"access_token":"T%d","expires_in":60}`, n)
		})
		p, appID := setupProvider(t, ts.URL, 5*time.Minute)

		_, err := p.AccessToken(context.Background(), appID)
		require.NoError(t, err)
		_, err = p.AccessToken(context.Background(), appID)
		require.NoError(t, err)
		assert.Equal(t, int32(2), ts.calls.Load())
	})
}

func TestWeChatProvider_ConcurrentMissesAreCoalesced(t *testing.T) {
	release := make(chan struct{})
	ts := newTokenServer(t, func(w http.ResponseWriter, r *http.Request, n int32) {
		<-release
		fmt.Fprintf(w, `{"access_token":"SHARED","expires_in":7200}`)
	})
	p, appID := setupProvider(t, ts.URL, time.Minute)

	const callers = 10
	var wg sync.WaitGroup
	tokens := make([]string, callers)
	for i := range callers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tok, err := p.AccessToken(context.Background(), appID)
			assert.NoError(t, err)
			tokens[i] = tok
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), ts.calls.Load())
	for _, tok := range tokens {
		assert.Equal(t, "SHARED", tok)
	}
}

func TestWeChatProvider_CanceledCallerDoesNotAffectOthers(t *testing.T) {
	release := make(chan struct{})
	ts := newTokenServer(t, func(w http.ResponseWriter, r *http.Request, n int32) {
		<-release
		fmt.Fprintf(w, `{"access_token":"SHARED","expires_in":7200}`)
	})
	p, appID := setupProvider(t, ts.URL, time.Minute)

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := p.AccessToken(ctxA, appID)
		errA <- err
	}()

	type result struct {
		token string
		err   error
	}
	resB := make(chan result, 1)
	go func() {
		tok, err := p.AccessToken(context.Background(), appID)
		resB <- result{tok, err}
	}()

	require.Eventually(t, func() bool { return ts.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	cancelA()
	select {
	case err := <-errA:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("취소된 호출자가 발급 완료를 기다리고 있습니다")
	}

	close(release)
	select {
	case res := <-resB:
		require.NoError(t, res.err)
		assert.Equal(t, "SHARED", res.token)
	case <-time.After(2 * time.Second):
		t.Fatal("취소되지 않은 호출자가 토큰을 받지 못했습니다")
	}
	assert.Equal(t, int32(1), ts.calls.Load())

	tok, err := p.AccessToken(context.Background(), appID)
	require.NoError(t, err)
	assert.Equal(t, "SHARED", tok, "분리된 발급 결과가 캐시되어야 합니다")
	assert.Equal(t, int32(1), ts.calls.Load())
}

func TestWeChatProvider_IssueTimeout(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	ts := newTokenServer(t, func(w http.ResponseWriter, r *http.Request, n int32) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	p, appID := setupProvider(t, ts.URL, 0)
	p.issueTimeout = 50 * time.Millisecond

	_, err := p.AccessToken(context.Background(), appID)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.Unavailable))
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(4).(*memoryCache)
	now := time.Now()
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(context.Background(), "k", "v", time.Minute))

	got, ok := c.Get(context.Background(), "k")
	assert.True(t, ok)
	assert.Equal(t, "v", got)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get(context.Background(), "k")
	assert.False(t, ok)
}

func TestNewCache(t *testing.T) {
	c, err := NewCache(config.TokenConfig{Cache: "memory", CacheSize: 8})
	require.NoError(t, err)
	assert.IsType(t, &memoryCache{}, c)

	c, err = NewCache(config.TokenConfig{Cache: "redis", RedisURL: "redis://localhost:6379/0"})
	require.NoError(t, err)
	assert.IsType(t, &redisCache{}, c)
	assert.NoError(t, c.Close())

	_, err = NewCache(config.TokenConfig{Cache: "redis", RedisURL: "://bad"})
	assert.True(t, apperrors.Is(err, apperrors.InvalidInput))

	_, err = NewCache(config.TokenConfig{Cache: "memcached"})
	assert.True(t, apperrors.Is(err, apperrors.InvalidInput))
}

func TestNewWeChatProvider_Panics(t *testing.T) {
	s := store.NewMemoryStore()
	f := fetcher.NewHTTPFetcher()
	c := NewMemoryCache(1)

	assert.Panics(t, func() { NewWeChatProvider("", 0, nil, f, c) })
	assert.Panics(t, func() { NewWeChatProvider("", 0, s, nil, c) })
	assert.Panics(t, func() { NewWeChatProvider("", 0, s, f, nil) })
	assert.Equal(t, DefaultEndpoint, NewWeChatProvider("", 0, s, f, c).endpoint)
}
