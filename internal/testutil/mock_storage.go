//go:build !production

package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Uwaniumnya/crystal-social/internal/protocol"
	"github.com/Uwaniumnya/crystal-social/internal/server/storage"
)

// MockRecorder 排行榜记录 mock
type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) RecordRoundResult(ctx context.Context, playerID, playerName string, wagered, returned int64) error {
	args := m.Called(ctx, playerID, playerName, wagered, returned)
	return args.Error(0)
}

// MockRoomStore 房间存储 mock
type MockRoomStore struct {
	mock.Mock
}

func (m *MockRoomStore) SaveRoom(ctx context.Context, data *storage.RoomData) error {
	args := m.Called(ctx, data)
	return args.Error(0)
}

func (m *MockRoomStore) DeleteRoom(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRoomStore) AppendRoundHistory(ctx context.Context, roomID string, summary protocol.RoundSummary) error {
	args := m.Called(ctx, roomID, summary)
	return args.Error(0)
}
