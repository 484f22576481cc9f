package fetcher

import (
	"errors"
	"io"
	"net/http"
)

const (
	defaultMaxBytes = 10 * 1024 * 1024

	// NoLimit 응답 본문 크기를 제한하지 않습니다.
	NoLimit = -1
)

type maxBytesReader struct {
	rc    io.ReadCloser
	limit int64
}

func (r *maxBytesReader) Read(p []byte) (int, error) {
	n, err := r.rc.Read(p)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return n, NewErrResponseBodyTooLarge(r.limit)
		}
	}
	return n, err
}

func (r *maxBytesReader) Close() error {
	return r.rc.Close()
}

// MaxBytesFetcher 응답 본문 크기를 제한합니다.
// Content-Length로 초과가 확인되면 본문을 읽지 않고 즉시 실패하며,
// 그 외에는 읽는 도중 제한을 넘는 시점에 에러를 반환합니다.
type MaxBytesFetcher struct {
	delegate Fetcher
	limit    int64
}

// NewMaxBytesFetcher 새로운 MaxBytesFetcher를 생성합니다.
// limit이 NoLimit이면 delegate를 그대로 반환하고, 0 이하이면 기본값(10MB)을 사용합니다.
func NewMaxBytesFetcher(delegate Fetcher, limit int64) Fetcher {
	if limit == NoLimit {
		return delegate
	}
	if limit <= 0 {
		limit = defaultMaxBytes
	}
	return &MaxBytesFetcher{delegate: delegate, limit: limit}
}

func (f *MaxBytesFetcher) Do(req *http.Request) (*http.Response, error) {
	resp, err := f.delegate.Do(req)
	if err != nil {
		if resp != nil {
			DrainAndClose(resp.Body)
		}
		return nil, err
	}

	if resp.ContentLength > f.limit {
		DrainAndClose(resp.Body)
		return nil, NewErrResponseBodyTooLargeByContentLength(resp.ContentLength, f.limit)
	}

	if resp.Body != nil {
		resp.Body = &maxBytesReader{
			rc:    http.MaxBytesReader(nil, resp.Body, f.limit),
			limit: f.limit,
		}
	}
	return resp, nil
}
