//go:build !production

package testutil

import (
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/Uwaniumnya/crystal-social/internal/game/player"
	"github.com/Uwaniumnya/crystal-social/internal/protocol"
)

// DefaultBalance 测试玩家的初始余额
const DefaultBalance = 1000

// MockClient 实现 types.ClientInterface 的 mock
type MockClient struct {
	mock.Mock
}

func (m *MockClient) GetID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClient) GetName() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClient) GetRoom() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClient) SetRoom(roomID string) {
	m.Called(roomID)
}

func (m *MockClient) GetPlayer() *player.Player {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*player.Player)
}

func (m *MockClient) SendMessage(msg *protocol.Message) {
	m.Called(msg)
}

func (m *MockClient) Close() {
	m.Called()
}

// SimpleClient 简单的 mock 客户端，不使用 testify（用于不需要断言调用的测试）。
// 消息可能来自计时器协程，读取请用 Messages/LastOfType。
type SimpleClient struct {
	Player *player.Player

	mu       sync.Mutex
	roomID   string
	messages []*protocol.Message
	closed   bool
}

// NewSimpleClient 创建余额为 DefaultBalance 的客户端
func NewSimpleClient(id, name string) *SimpleClient {
	return NewSimpleClientWithBalance(id, name, DefaultBalance)
}

// NewSimpleClientWithBalance 创建指定余额的客户端
func NewSimpleClientWithBalance(id, name string, balance int64) *SimpleClient {
	return &SimpleClient{Player: player.New(id, name, balance)}
}

// NewGuestClient 创建尚未绑定玩家的客户端
func NewGuestClient() *SimpleClient {
	return &SimpleClient{}
}

// Bind 绑定玩家（模拟服务器的 BindPlayer）
func (c *SimpleClient) Bind(p *player.Player) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Player = p
}

func (c *SimpleClient) GetID() string {
	if p := c.GetPlayer(); p != nil {
		return p.ID
	}
	return ""
}

func (c *SimpleClient) GetName() string {
	if p := c.GetPlayer(); p != nil {
		return p.Name
	}
	return ""
}

func (c *SimpleClient) GetPlayer() *player.Player {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Player
}

func (c *SimpleClient) GetRoom() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.roomID
}

// SetRoom 与服务器客户端一致，同时更新玩家所在房间
func (c *SimpleClient) SetRoom(roomID string) {
	c.mu.Lock()
	c.roomID = roomID
	p := c.Player
	c.mu.Unlock()
	if p != nil {
		p.SetRoomID(roomID)
	}
}

func (c *SimpleClient) SendMessage(msg *protocol.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msg)
}

func (c *SimpleClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// IsClosed 是否已调用 Close
func (c *SimpleClient) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Messages 已收到消息的副本
func (c *SimpleClient) Messages() []*protocol.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*protocol.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Types 已收到消息的类型序列
func (c *SimpleClient) Types() []protocol.MessageType {
	msgs := c.Messages()
	types := make([]protocol.MessageType, len(msgs))
	for i, m := range msgs {
		types[i] = m.Type
	}
	return types
}

// OfType 指定类型的全部消息
func (c *SimpleClient) OfType(t protocol.MessageType) []*protocol.Message {
	var out []*protocol.Message
	for _, m := range c.Messages() {
		if m.Type == t {
			out = append(out, m)
		}
	}
	return out
}

// LastOfType 指定类型的最后一条消息，没有时返回 nil
func (c *SimpleClient) LastOfType(t protocol.MessageType) *protocol.Message {
	msgs := c.OfType(t)
	if len(msgs) == 0 {
		return nil
	}
	return msgs[len(msgs)-1]
}

// Reset 清空已收到的消息
func (c *SimpleClient) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = nil
}
