// Package mocks moderation 패키지 의존성의 testify/mock 기반 대역을 제공합니다.
package mocks

import (
	"context"
	"io"

	"github.com/darkkaiser/miniapp-server/internal/service/moderation"
	"github.com/darkkaiser/miniapp-server/internal/service/moderation/asset"
	"github.com/darkkaiser/miniapp-server/internal/service/moderation/provider"
	"github.com/stretchr/testify/mock"
)

var (
	_ moderation.TokenProvider = (*MockTokenProvider)(nil)
	_ moderation.Client        = (*MockClient)(nil)
	_ moderation.BatchOpener   = (*MockBatchOpener)(nil)
	_ moderation.Batch         = (*MockBatch)(nil)
)

// MockTokenProvider TokenProvider 대역입니다.
type MockTokenProvider struct {
	mock.Mock
}

func (m *MockTokenProvider) AccessToken(ctx context.Context, appID uint64) (string, error) {
	args := m.Called(ctx, appID)
	return args.String(0), args.Error(1)
}

// MockClient Client 대역입니다. CheckImage는 이미지 본문 대신 filename만 인자로 기록합니다.
type MockClient struct {
	mock.Mock
}

func (m *MockClient) CheckText(ctx context.Context, token, text string) (provider.Verdict, error) {
	args := m.Called(ctx, token, text)
	return args.Get(0).(provider.Verdict), args.Error(1)
}

func (m *MockClient) CheckImage(ctx context.Context, token string, image io.Reader, filename string) (provider.Verdict, error) {
	_, _ = io.Copy(io.Discard, image)
	args := m.Called(ctx, token, filename)
	return args.Get(0).(provider.Verdict), args.Error(1)
}

// MockBatchOpener BatchOpener 대역입니다.
type MockBatchOpener struct {
	mock.Mock
}

func (m *MockBatchOpener) OpenBatch(ctx context.Context) (moderation.Batch, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(moderation.Batch), args.Error(1)
}

// MockBatch Batch 대역입니다.
type MockBatch struct {
	mock.Mock
}

func (m *MockBatch) Fetch(ctx context.Context, reference string) (*asset.Asset, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*asset.Asset), args.Error(1)
}

func (m *MockBatch) Close() error {
	return m.Called().Error(0)
}
