//go:build !production

package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/palemoky/floating-bridge/internal/server/storage"
)

// MockStore 牌局持久化 mock
type MockStore struct {
	mock.Mock
}

func (m *MockStore) SaveSnapshot(ctx context.Context, tableID string, data []byte) error {
	args := m.Called(ctx, tableID, data)
	return args.Error(0)
}

func (m *MockStore) DeleteSnapshot(ctx context.Context, tableID string) error {
	args := m.Called(ctx, tableID)
	return args.Error(0)
}

func (m *MockStore) AppendRound(ctx context.Context, rec *storage.RoundRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

// MockRecorder 战绩记录 mock
type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) RecordRound(ctx context.Context, name, role string, won bool, tricks int) error {
	args := m.Called(ctx, name, role, won, tricks)
	return args.Error(0)
}
