//go:build !production

package testutil

import "github.com/stretchr/testify/mock"

// MockChatLimiter 聊天限流 mock，实现 types.ChatLimiter
type MockChatLimiter struct {
	mock.Mock
}

// NewMutedChatLimiter 对 playerID 的第一次发言返回拒绝原因
func NewMutedChatLimiter(playerID, reason string) *MockChatLimiter {
	m := new(MockChatLimiter)
	m.On("AllowChat", playerID).Return(false, reason).Once()
	return m
}

func (m *MockChatLimiter) AllowChat(playerID string) (allowed bool, reason string) {
	args := m.Called(playerID)
	return args.Bool(0), args.String(1)
}

func (m *MockChatLimiter) RemoveClient(playerID string) {
	m.Called(playerID)
}
