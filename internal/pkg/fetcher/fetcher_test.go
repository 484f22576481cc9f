package fetcher_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	apperrors "github.com/darkkaiser/miniapp-server/internal/pkg/errors"
	"github.com/darkkaiser/miniapp-server/internal/pkg/fetcher"
	"github.com/darkkaiser/miniapp-server/internal/pkg/fetcher/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newRequest(t *testing.T, method, url string) *http.Request {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), method, url, nil)
	require.NoError(t, err)
	return req
}

func TestStatusCodeFetcher_Do(t *testing.T) {
	tests := []struct {
		name            string
		allowed         []int
		statusCode      int
		body            string
		expectedErrType apperrors.ErrorType
		expectError     bool
	}{
		{name: "성공: 200 OK", statusCode: http.StatusOK, body: "ok"},
		{name: "성공: 허용 목록의 201", allowed: []int{http.StatusCreated}, statusCode: http.StatusCreated},
		{name: "실패: 404", statusCode: http.StatusNotFound, body: "no such image", expectError: true, expectedErrType: apperrors.NotFound},
		{name: "실패: 403", statusCode: http.StatusForbidden, body: "denied", expectError: true, expectedErrType: apperrors.Forbidden},
		{name: "실패: 500", statusCode: http.StatusInternalServerError, body: "boom", expectError: true, expectedErrType: apperrors.Unavailable},
		{name: "실패: 429", statusCode: http.StatusTooManyRequests, expectError: true, expectedErrType: apperrors.Unavailable},
		{name: "실패: 허용 목록 외의 200", allowed: []int{http.StatusCreated}, statusCode: http.StatusOK, expectError: true, expectedErrType: apperrors.ExecutionFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mocks.NewMockFetcher()
			m.On("Do", mock.Anything).Return(mocks.NewMockResponse(tt.body, tt.statusCode), nil)

			f := fetcher.NewStatusCodeFetcher(m, tt.allowed...)
			resp, err := f.Do(newRequest(t, http.MethodGet, "https://cdn.example.com/a.png"))

			if !tt.expectError {
				require.NoError(t, err)
				require.NotNil(t, resp)
				assert.Equal(t, tt.statusCode, resp.StatusCode)
				return
			}

			require.Error(t, err)
			assert.Nil(t, resp)
			assert.True(t, apperrors.Is(err, tt.expectedErrType), "got: %v", err)

			var statusErr *fetcher.HTTPStatusError
			require.True(t, errors.As(err, &statusErr))
			assert.Equal(t, tt.statusCode, statusErr.StatusCode)
			assert.Equal(t, tt.body, statusErr.BodySnippet)
		})
	}
}

func TestStatusCodeFetcher_DelegateError(t *testing.T) {
	m := mocks.NewMockFetcher()
	m.On("Do", mock.Anything).Return(nil, errors.New("connection refused"))

	_, err := fetcher.NewStatusCodeFetcher(m).Do(newRequest(t, http.MethodGet, "https://cdn.example.com"))
	assert.EqualError(t, err, "connection refused")
}

func TestMaxBytesFetcher(t *testing.T) {
	t.Run("Content-Length로 초과가 확인되면 즉시 실패한다", func(t *testing.T) {
		m := mocks.NewMockFetcher()
		m.On("Do", mock.Anything).Return(mocks.NewMockResponse(strings.Repeat("a", 100), http.StatusOK), nil)

		_, err := fetcher.NewMaxBytesFetcher(m, 10).Do(newRequest(t, http.MethodGet, "https://a.com"))
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.InvalidInput))
	})

	t.Run("스트리밍 중 초과하면 읽기 에러를 반환한다", func(t *testing.T) {
		resp := mocks.NewMockResponse(strings.Repeat("a", 100), http.StatusOK)
		resp.ContentLength = -1
		m := mocks.NewMockFetcher()
		m.On("Do", mock.Anything).Return(resp, nil)

		got, err := fetcher.NewMaxBytesFetcher(m, 10).Do(newRequest(t, http.MethodGet, "https://a.com"))
		require.NoError(t, err)
		defer got.Body.Close()

		_, err = io.ReadAll(got.Body)
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.InvalidInput))
	})

	t.Run("제한 이내면 그대로 읽힌다", func(t *testing.T) {
		m := mocks.NewMockFetcher()
		m.On("Do", mock.Anything).Return(mocks.NewMockResponse("small", http.StatusOK), nil)

		got, err := fetcher.NewMaxBytesFetcher(m, 10).Do(newRequest(t, http.MethodGet, "https://a.com"))
		require.NoError(t, err)
		b, err := io.ReadAll(got.Body)
		require.NoError(t, err)
		assert.Equal(t, "small", string(b))
	})

	t.Run("NoLimit이면 delegate를 그대로 반환한다", func(t *testing.T) {
		m := mocks.NewMockFetcher()
		assert.Same(t, m, fetcher.NewMaxBytesFetcher(m, fetcher.NoLimit))
	})
}

func TestRetryFetcher(t *testing.T) {
	t.Run("일시적 오류 후 성공한다", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			_, _ = w.Write([]byte("image-bytes"))
		}))
		defer srv.Close()

		f := fetcher.NewRetryFetcher(fetcher.NewStatusCodeFetcher(fetcher.NewHTTPFetcher()), 3, time.Millisecond, 5*time.Millisecond)
		resp, err := f.Do(newRequest(t, http.MethodGet, srv.URL))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("POST 요청은 재시도하지 않는다", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		f := fetcher.NewRetryFetcher(fetcher.NewStatusCodeFetcher(fetcher.NewHTTPFetcher()), 3, time.Millisecond, 5*time.Millisecond)
		req, err := http.NewRequest(http.MethodPost, srv.URL, bytes.NewBufferString(`{"content":"x"}`))
		require.NoError(t, err)

		_, err = f.Do(req)
		require.Error(t, err)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("재시도 불가능한 상태 코드는 즉시 실패한다", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		f := fetcher.NewRetryFetcher(fetcher.NewStatusCodeFetcher(fetcher.NewHTTPFetcher()), 3, time.Millisecond, 5*time.Millisecond)
		_, err := f.Do(newRequest(t, http.MethodGet, srv.URL))
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.NotFound))
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("재시도를 모두 소진하면 Unavailable을 반환한다", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		f := fetcher.NewRetryFetcher(fetcher.NewStatusCodeFetcher(fetcher.NewHTTPFetcher()), 2, time.Millisecond, 2*time.Millisecond)
		_, err := f.Do(newRequest(t, http.MethodGet, srv.URL))
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.Unavailable))
	})

	t.Run("대기 중 컨텍스트가 취소되면 즉시 반환한다", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		f := fetcher.NewRetryFetcher(fetcher.NewStatusCodeFetcher(fetcher.NewHTTPFetcher()), 5, time.Second, 5*time.Second)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
		require.NoError(t, err)

		_, err = f.Do(req)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestHTTPFetcher_TLSVerification(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	t.Run("기본 설정은 인증서를 검증한다", func(t *testing.T) {
		f := fetcher.NewHTTPFetcher(fetcher.WithDisableTransportCache(true))
		defer f.Close()

		_, err := f.Do(newRequest(t, http.MethodGet, srv.URL))
		assert.Error(t, err)
	})

	t.Run("검증 생략을 명시하면 자체 서명 인증서를 허용한다", func(t *testing.T) {
		f := fetcher.NewHTTPFetcher(fetcher.WithInsecureSkipVerify(true), fetcher.WithDisableTransportCache(true))
		defer f.Close()

		resp, err := f.Do(newRequest(t, http.MethodGet, srv.URL))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestHTTPFetcher_UserAgent(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	f := fetcher.NewHTTPFetcher(fetcher.WithUserAgent("miniapp-test/1.0"))
	resp, err := f.Do(newRequest(t, http.MethodGet, srv.URL))
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "miniapp-test/1.0", got)
}

func TestNewFromConfig_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	f := fetcher.NewFromConfig(fetcher.Config{Timeout: 50 * time.Millisecond, DisableLogging: true})
	_, err := fetcher.Get(context.Background(), f, srv.URL)
	require.Error(t, err)

	var netErr interface{ Timeout() bool }
	require.True(t, errors.As(err, &netErr))
	assert.True(t, netErr.Timeout())
}
