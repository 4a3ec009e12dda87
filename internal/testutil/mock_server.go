//go:build !production

package testutil

import (
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/Uwaniumnya/crystal-social/internal/game/player"
	"github.com/Uwaniumnya/crystal-social/internal/protocol"
	"github.com/Uwaniumnya/crystal-social/internal/types"
)

// MockServer 实现 types.ServerInterface 的 mock
type MockServer struct {
	mock.Mock
}

func (m *MockServer) IsMaintenanceMode() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockServer) GetOnlineCount() int {
	args := m.Called()
	return args.Int(0)
}

func (m *MockServer) BroadcastToLobby(msg *protocol.Message) {
	m.Called(msg)
}

func (m *MockServer) BindPlayer(client types.ClientInterface, p *player.Player) error {
	args := m.Called(client, p)
	return args.Error(0)
}

// RecordingLobby 记录大厅广播，实现 room.Lobby
type RecordingLobby struct {
	mu       sync.Mutex
	messages []*protocol.Message
}

func (l *RecordingLobby) BroadcastToLobby(msg *protocol.Message) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, msg)
}

// Count 已广播的消息数
func (l *RecordingLobby) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.messages)
}

// Last 最后一条广播，没有时返回 nil
func (l *RecordingLobby) Last() *protocol.Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.messages) == 0 {
		return nil
	}
	return l.messages[len(l.messages)-1]
}
