package fetcher

import (
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	defaultTimeout             = 30 * time.Second
	defaultTLSHandshakeTimeout = 10 * time.Second
	defaultIdleConnTimeout     = 90 * time.Second
	defaultMaxIdleConns        = 100

	// defaultUserAgent 별도 지정이 없을 때 사용하는 User-Agent
	defaultUserAgent = "miniapp-server/1.0"

	// maxTransportCacheSize 설정 조합별로 공유하는 Transport의 최대 개수
	maxTransportCacheSize = 16
)

// transportKey 같은 설정을 가진 HTTPFetcher끼리 커넥션 풀을 공유하기 위한 키입니다.
type transportKey struct {
	tlsHandshakeTimeout   time.Duration
	responseHeaderTimeout time.Duration
	idleConnTimeout       time.Duration
	maxIdleConns          int
	insecureSkipVerify    bool
}

var (
	transportCacheOnce sync.Once
	transportCache     *lru.Cache[transportKey, *http.Transport]
)

func sharedTransports() *lru.Cache[transportKey, *http.Transport] {
	transportCacheOnce.Do(func() {
		// 캐시에서 밀려난 Transport는 유휴 커넥션을 정리합니다.
		transportCache, _ = lru.NewWithEvict(maxTransportCacheSize, func(_ transportKey, tr *http.Transport) {
			tr.CloseIdleConnections()
		})
	})
	return transportCache
}

func newTransport(key transportKey) *http.Transport {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		TLSHandshakeTimeout:   key.tlsHandshakeTimeout,
		ResponseHeaderTimeout: key.responseHeaderTimeout,
		IdleConnTimeout:       key.idleConnTimeout,
		MaxIdleConns:          key.maxIdleConns,
		MaxIdleConnsPerHost:   key.maxIdleConns,
	}
	if key.insecureSkipVerify {
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // 설정으로 명시적으로 활성화한 경우에만 사용
	}
	return tr
}

func sharedTransport(key transportKey) *http.Transport {
	cache := sharedTransports()
	if tr, ok := cache.Get(key); ok {
		return tr
	}

	tr := newTransport(key)
	if existing, ok, _ := cache.PeekOrAdd(key, tr); ok {
		return existing
	}
	return tr
}

// HTTPFetcher net/http 클라이언트로 실제 요청을 수행하는 최하위 Fetcher입니다.
type HTTPFetcher struct {
	client *http.Client

	userAgent string
	key       transportKey

	isolatedTransport bool
	customTransport   bool
}

var _ Fetcher = (*HTTPFetcher)(nil)

// Option HTTPFetcher 설정 함수입니다.
type Option func(*HTTPFetcher)

// WithTimeout 요청 전체(연결, 헤더, 본문 수신)에 대한 제한 시간을 설정합니다.
func WithTimeout(timeout time.Duration) Option {
	return func(h *HTTPFetcher) {
		if timeout > 0 {
			h.client.Timeout = timeout
		}
	}
}

// WithTLSHandshakeTimeout TLS 핸드셰이크 제한 시간을 설정합니다.
func WithTLSHandshakeTimeout(timeout time.Duration) Option {
	return func(h *HTTPFetcher) {
		if timeout > 0 {
			h.key.tlsHandshakeTimeout = timeout
		}
	}
}

// WithResponseHeaderTimeout 응답 헤더 대기 제한 시간을 설정합니다.
func WithResponseHeaderTimeout(timeout time.Duration) Option {
	return func(h *HTTPFetcher) {
		h.key.responseHeaderTimeout = timeout
	}
}

// WithMaxIdleConns 유휴 커넥션 최대 개수를 설정합니다.
func WithMaxIdleConns(n int) Option {
	return func(h *HTTPFetcher) {
		if n >= 0 {
			h.key.maxIdleConns = n
		}
	}
}

// WithInsecureSkipVerify 서버 인증서 검증을 생략합니다.
// 자체 서명 인증서를 사용하는 내부 저장소 등, 설정으로 명시한 경우에만 사용해야 합니다.
func WithInsecureSkipVerify(skip bool) Option {
	return func(h *HTTPFetcher) {
		h.key.insecureSkipVerify = skip
	}
}

// WithUserAgent 요청에 User-Agent가 없을 때 사용할 값을 설정합니다.
func WithUserAgent(ua string) Option {
	return func(h *HTTPFetcher) {
		if ua != "" {
			h.userAgent = ua
		}
	}
}

// WithDisableTransportCache 다른 Fetcher와 커넥션 풀을 공유하지 않는 독립 Transport를 사용합니다.
func WithDisableTransportCache(disable bool) Option {
	return func(h *HTTPFetcher) {
		h.isolatedTransport = disable
	}
}

// WithTransport 외부에서 만든 RoundTripper를 그대로 사용합니다. (주로 테스트용)
func WithTransport(rt http.RoundTripper) Option {
	return func(h *HTTPFetcher) {
		h.client.Transport = rt
		h.customTransport = true
	}
}

// NewHTTPFetcher 새로운 HTTPFetcher를 생성합니다.
func NewHTTPFetcher(opts ...Option) *HTTPFetcher {
	h := &HTTPFetcher{
		client:    &http.Client{Timeout: defaultTimeout},
		userAgent: defaultUserAgent,
		key: transportKey{
			tlsHandshakeTimeout: defaultTLSHandshakeTimeout,
			idleConnTimeout:     defaultIdleConnTimeout,
			maxIdleConns:        defaultMaxIdleConns,
		},
	}
	for _, opt := range opts {
		opt(h)
	}

	if !h.customTransport {
		if h.isolatedTransport {
			h.client.Transport = newTransport(h.key)
		} else {
			h.client.Transport = sharedTransport(h.key)
		}
	}

	return h
}

func (h *HTTPFetcher) Do(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", h.userAgent)
	}
	resp, err := h.client.Do(req)
	if err != nil {
		// url.Error는 요청 URL 전체를 메시지에 포함하므로 토큰이 노출되지 않도록 가립니다.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			urlErr.URL = redactRawURL(urlErr.URL)
		}
	}
	return resp, err
}

// Close 독립 Transport를 사용하는 경우 유휴 커넥션을 정리합니다.
// 공유 Transport는 다른 Fetcher가 사용 중일 수 있으므로 닫지 않습니다.
func (h *HTTPFetcher) Close() error {
	if h.isolatedTransport {
		h.client.CloseIdleConnections()
	}
	return nil
}
