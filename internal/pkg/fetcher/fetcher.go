// Package fetcher 외부 HTTP 호출을 위한 데코레이터 체인을 제공합니다.
//
// 각 단계는 Fetcher 인터페이스를 구현하며 NewFromConfig가 아래 순서로 조립합니다.
//
//	LoggingFetcher → RetryFetcher(선택) → StatusCodeFetcher → MaxBytesFetcher → HTTPFetcher
//
// 모든 요청은 호출자의 context를 그대로 따르므로, 상위 요청이 취소되면
// 진행 중인 연결도 즉시 중단됩니다.
package fetcher

import (
	"context"
	"io"
	"net/http"
	"sync"
)

// component 로그에 기록되는 컴포넌트 이름
const component = "fetcher"

// Fetcher HTTP 요청을 수행하는 인터페이스입니다.
type Fetcher interface {
	Do(req *http.Request) (*http.Response, error)
}

// Get 지정한 URL로 GET 요청을 보냅니다.
func Get(ctx context.Context, f Fetcher, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, NewErrInvalidRequest(err, url)
	}
	return f.Do(req)
}

// maxDrainBytes 커넥션 재사용을 위해 읽고 버릴 최대 바이트 수.
// 이보다 긴 본문이 남은 커넥션은 재사용하지 않고 닫습니다.
const maxDrainBytes = 64 * 1024

var drainBufPool = sync.Pool{
	New: func() any {
		b := make([]byte, 32*1024)
		return &b
	},
}

// DrainAndClose 남은 응답 본문을 일정량 읽어 버린 뒤 닫습니다.
func DrainAndClose(body io.ReadCloser) {
	if body == nil {
		return
	}
	defer body.Close()

	bufPtr := drainBufPool.Get().(*[]byte)
	defer drainBufPool.Put(bufPtr)

	_, _ = io.CopyBuffer(io.Discard, io.LimitReader(body, maxDrainBytes), *bufPtr)
}
