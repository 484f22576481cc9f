// Package mocks fetcher 패키지의 테스트 대역을 제공합니다.
package mocks

import (
	"bytes"
	"io"
	"net/http"

	"github.com/darkkaiser/miniapp-server/internal/pkg/fetcher"
	"github.com/stretchr/testify/mock"
)

var _ fetcher.Fetcher = (*MockFetcher)(nil)

// MockFetcher testify/mock 기반의 Fetcher 대역입니다.
type MockFetcher struct {
	mock.Mock
}

// NewMockFetcher 새로운 MockFetcher를 생성합니다.
func NewMockFetcher() *MockFetcher {
	return &MockFetcher{}
}

func (m *MockFetcher) Do(req *http.Request) (*http.Response, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*http.Response), args.Error(1)
}

// NewMockResponse 본문과 상태 코드로 응답을 생성합니다.
func NewMockResponse(body string, statusCode int) *http.Response {
	return &http.Response{
		StatusCode:    statusCode,
		Status:        http.StatusText(statusCode),
		Body:          io.NopCloser(bytes.NewBufferString(body)),
		ContentLength: int64(len(body)),
		Header:        make(http.Header),
	}
}

// NewMockJSONResponse Content-Type이 application/json인 응답을 생성합니다.
func NewMockJSONResponse(body string, statusCode int) *http.Response {
	resp := NewMockResponse(body, statusCode)
	resp.Header.Set("Content-Type", "application/json")
	return resp
}
