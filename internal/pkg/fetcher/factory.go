package fetcher

import "time"

// Config Fetcher 체인 구성 설정입니다. 0 값 필드는 기본값을 사용합니다.
type Config struct {
	Timeout               time.Duration
	TLSHandshakeTimeout   time.Duration
	ResponseHeaderTimeout time.Duration
	InsecureSkipVerify    bool
	UserAgent             string

	// MaxRetries 0이면 RetryFetcher를 체인에 추가하지 않습니다.
	MaxRetries    int
	MinRetryDelay time.Duration
	MaxRetryDelay time.Duration

	// AllowedStatusCodes 비어 있으면 200 OK만 허용합니다.
	AllowedStatusCodes []int

	// MaxBytes 0이면 기본값(10MB), NoLimit이면 제한하지 않습니다.
	MaxBytes int64

	DisableLogging          bool
	DisableTransportCaching bool
}

// NewFromConfig 설정에 따라 Fetcher 체인을 조립합니다.
//
//	Logging → Retry(MaxRetries > 0) → StatusCode → MaxBytes → HTTP
func NewFromConfig(cfg Config, opts ...Option) Fetcher {
	httpOpts := []Option{
		WithTimeout(cfg.Timeout),
		WithTLSHandshakeTimeout(cfg.TLSHandshakeTimeout),
		WithResponseHeaderTimeout(cfg.ResponseHeaderTimeout),
		WithInsecureSkipVerify(cfg.InsecureSkipVerify),
		WithUserAgent(cfg.UserAgent),
		WithDisableTransportCache(cfg.DisableTransportCaching),
	}
	httpOpts = append(httpOpts, opts...)

	var f Fetcher = NewHTTPFetcher(httpOpts...)
	f = NewMaxBytesFetcher(f, cfg.MaxBytes)
	f = NewStatusCodeFetcher(f, cfg.AllowedStatusCodes...)

	if cfg.MaxRetries > 0 {
		f = NewRetryFetcher(f, cfg.MaxRetries, cfg.MinRetryDelay, cfg.MaxRetryDelay)
	}
	if !cfg.DisableLogging {
		f = NewLoggingFetcher(f)
	}

	return f
}
