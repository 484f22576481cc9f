package fetcher

import (
	"fmt"
	"io"
	"net/http"
	"slices"

	apperrors "github.com/darkkaiser/miniapp-server/internal/pkg/errors"
)

// maxBodySnippetBytes 상태 코드 에러에 포함할 응답 본문 일부의 최대 크기
const maxBodySnippetBytes = 1024

// HTTPStatusError 허용되지 않은 상태 코드를 받았을 때의 상세 정보입니다.
type HTTPStatusError struct {
	StatusCode  int
	Status      string
	URL         string // 민감 정보가 마스킹된 URL
	Header      http.Header
	BodySnippet string
	Cause       error
}

func (e *HTTPStatusError) Error() string {
	msg := fmt.Sprintf("HTTP %d (%s)", e.StatusCode, e.Status)
	if e.URL != "" {
		msg += " URL: " + e.URL
	}
	if e.BodySnippet != "" {
		msg += ", Body: " + e.BodySnippet
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *HTTPStatusError) Unwrap() error {
	return e.Cause
}

// CheckResponseStatus 응답 상태 코드를 검사합니다. allowed가 비어 있으면 200 OK만 허용합니다.
//
// 실패 시 본문 일부를 읽어 HTTPStatusError에 담고, 상태 코드에 맞는 ErrorType으로 감싸 반환합니다.
// 본문은 호출자가 닫아야 합니다.
func CheckResponseStatus(resp *http.Response, allowed ...int) error {
	if len(allowed) == 0 {
		if resp.StatusCode == http.StatusOK {
			return nil
		}
	} else if slices.Contains(allowed, resp.StatusCode) {
		return nil
	}

	statusErr := &HTTPStatusError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     redactHeaders(resp.Header),
	}
	if resp.Request != nil {
		statusErr.URL = redactURL(resp.Request.URL)
	}
	if resp.Body != nil {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodySnippetBytes))
		statusErr.BodySnippet = string(b)
	}

	return apperrors.Wrap(statusErr, statusErrorType(resp.StatusCode), fmt.Sprintf("HTTP 요청이 실패했습니다. 상태 코드: %d", resp.StatusCode))
}

func statusErrorType(code int) apperrors.ErrorType {
	switch {
	case code >= 500 || code == http.StatusTooManyRequests || code == http.StatusRequestTimeout:
		return apperrors.Unavailable
	case code == http.StatusUnauthorized:
		return apperrors.Unauthorized
	case code == http.StatusForbidden:
		return apperrors.Forbidden
	case code == http.StatusNotFound:
		return apperrors.NotFound
	case code >= 400:
		return apperrors.InvalidInput
	default:
		return apperrors.ExecutionFailed
	}
}

// StatusCodeFetcher 허용되지 않은 상태 코드의 응답을 에러로 변환합니다.
type StatusCodeFetcher struct {
	delegate Fetcher
	allowed  []int
}

var _ Fetcher = (*StatusCodeFetcher)(nil)

// NewStatusCodeFetcher 새로운 StatusCodeFetcher를 생성합니다. allowed가 비어 있으면 200 OK만 허용합니다.
func NewStatusCodeFetcher(delegate Fetcher, allowed ...int) *StatusCodeFetcher {
	return &StatusCodeFetcher{delegate: delegate, allowed: allowed}
}

func (f *StatusCodeFetcher) Do(req *http.Request) (*http.Response, error) {
	resp, err := f.delegate.Do(req)
	if err != nil {
		if resp != nil {
			DrainAndClose(resp.Body)
		}
		return nil, err
	}

	if statusErr := CheckResponseStatus(resp, f.allowed...); statusErr != nil {
		DrainAndClose(resp.Body)
		return nil, statusErr
	}

	return resp, nil
}
