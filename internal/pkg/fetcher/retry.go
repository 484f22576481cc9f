package fetcher

import (
	"context"
	"crypto/x509"
	"errors"
	"math/rand/v2"
	"net"
	"net/http"
	"strconv"
	"time"

	apperrors "github.com/darkkaiser/miniapp-server/internal/pkg/errors"
	applog "github.com/darkkaiser/miniapp-server/pkg/log"
)

const (
	maxAllowedRetries    = 10
	defaultMinRetryDelay = 1 * time.Second
	defaultMaxRetryDelay = 30 * time.Second
)

// RetryFetcher 일시적인 실패(네트워크 타임아웃, 5xx, 429)를 지수 백오프로 재시도합니다.
//
// 멱등한 메서드(GET, HEAD)만 재시도하며, 그 외 요청은 한 번만 전달합니다.
// 서버가 Retry-After를 보내면 그 값을 우선하되, 최대 대기 시간을 넘으면 즉시 실패합니다.
type RetryFetcher struct {
	delegate   Fetcher
	maxRetries int
	minDelay   time.Duration
	maxDelay   time.Duration
}

var _ Fetcher = (*RetryFetcher)(nil)

// NewRetryFetcher 새로운 RetryFetcher를 생성합니다.
func NewRetryFetcher(delegate Fetcher, maxRetries int, minDelay, maxDelay time.Duration) *RetryFetcher {
	maxRetries = min(max(maxRetries, 0), maxAllowedRetries)
	if minDelay <= 0 {
		minDelay = defaultMinRetryDelay
	}
	if maxDelay <= 0 {
		maxDelay = defaultMaxRetryDelay
	}
	if maxDelay < minDelay {
		maxDelay = minDelay
	}

	return &RetryFetcher{delegate: delegate, maxRetries: maxRetries, minDelay: minDelay, maxDelay: maxDelay}
}

func (f *RetryFetcher) Do(req *http.Request) (*http.Response, error) {
	attempts := f.maxRetries
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		attempts = 0
	}

	var lastErr error
	for i := 0; i <= attempts; i++ {
		if i > 0 {
			delay, err := f.nextDelay(i, lastErr)
			if err != nil {
				return nil, err
			}

			applog.WithComponentAndFields(component, applog.Fields{
				"url":         redactURL(req.URL),
				"retry":       i,
				"max_retries": attempts,
				"delay":       delay.String(),
				"error":       lastErr.Error(),
			}).WithContext(req.Context()).Warn("재시도 대기 중: 일시적 오류로 인해 요청 재시도를 준비합니다")

			timer := time.NewTimer(delay)
			select {
			case <-req.Context().Done():
				timer.Stop()
				return nil, req.Context().Err()
			case <-timer.C:
			}
		}

		resp, err := f.delegate.Do(req)
		if err == nil {
			if !isRetriableStatus(resp.StatusCode) || i == attempts {
				return resp, nil
			}
			lastErr = CheckResponseStatus(resp)
			DrainAndClose(resp.Body)
			continue
		}

		if resp != nil {
			DrainAndClose(resp.Body)
		}
		if req.Context().Err() != nil || !isRetriable(err) {
			return nil, err
		}
		lastErr = err
	}

	return nil, newErrMaxRetriesExceeded(lastErr)
}

// nextDelay 지수 백오프(전체 지터 적용) 대기 시간을 계산합니다.
func (f *RetryFetcher) nextDelay(attempt int, lastErr error) (time.Duration, error) {
	var statusErr *HTTPStatusError
	if errors.As(lastErr, &statusErr) && statusErr.Header != nil {
		if d, ok := parseRetryAfter(statusErr.Header.Get("Retry-After")); ok {
			if d > f.maxDelay {
				return 0, newErrRetryAfterExceeded(d.String(), f.maxDelay.String())
			}
			return d, nil
		}
	}

	backoff := f.minDelay << (attempt - 1)
	if backoff <= 0 || backoff > f.maxDelay {
		backoff = f.maxDelay
	}
	delay := time.Duration(rand.Int64N(int64(backoff) + 1))
	if delay < f.minDelay {
		delay = f.minDelay
	}
	return delay, nil
}

func isRetriableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusRequestTimeout,
		http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout, http.StatusInternalServerError:
		return true
	}
	return false
}

func isRetriable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}

	var hostnameErr x509.HostnameError
	var unknownAuthorityErr x509.UnknownAuthorityError
	var certInvalidErr x509.CertificateInvalidError
	if errors.As(err, &hostnameErr) || errors.As(err, &unknownAuthorityErr) || errors.As(err, &certInvalidErr) {
		return false
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return isRetriableStatus(statusErr.StatusCode)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return apperrors.Is(err, apperrors.Unavailable)
}

func parseRetryAfter(value string) (time.Duration, bool) {
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second, true
	}
	if date, err := http.ParseTime(value); err == nil {
		return max(time.Until(date), 0), true
	}
	return 0, false
}
