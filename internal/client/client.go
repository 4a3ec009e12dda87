package client

import (
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Uwaniumnya/crystal-social/internal/protocol"
	"github.com/Uwaniumnya/crystal-social/internal/protocol/codec"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// 心跳检测间隔
	heartbeatInterval = 5 * time.Second
	// 最大重连次数
	maxReconnectAttempts = 5
	// 重连间隔
	reconnectInterval = 2 * time.Second

	bufferSize = 256
)

// 连接错误
var (
	ErrClosed         = errors.New("connection closed")
	ErrBufferFull     = errors.New("send buffer full")
	ErrReceiveTimeout = errors.New("receive timeout")
)

// Client WebSocket 客户端
type Client struct {
	ServerURL string
	Header    http.Header // 握手请求头（如 Origin）

	conn    *websocket.Conn
	send    chan []byte
	receive chan *protocol.Message
	done    chan struct{}

	// 身份，authenticated 后填充
	identity  Identity
	authToken string // 最近一次 authenticate 携带的身份令牌，重连时复用

	// 网络延迟（毫秒）
	latency atomic.Int64

	// 回调
	OnMessage       func(*protocol.Message) // 消息回调
	OnError         func(error)             // 错误回调
	OnClose         func()                  // 关闭回调
	OnReconnect     func()                  // 重连成功回调
	OnReconnecting  func(attempt, max int)  // 正在重连回调
	OnLatencyUpdate func(int64)             // 延迟更新回调

	mu             sync.RWMutex
	closed         bool
	reconnecting   atomic.Bool
	reconnectCount int
}

// NewClient 创建客户端
func NewClient(serverURL string) *Client {
	return &Client{
		ServerURL: serverURL,
		send:      make(chan []byte, bufferSize),
		receive:   make(chan *protocol.Message, bufferSize),
		done:      make(chan struct{}),
	}
}

func (c *Client) dial() (*websocket.Conn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout:  10 * time.Second,
		EnableCompression: false,
	}
	conn, resp, err := dialer.Dial(c.ServerURL, c.Header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	return conn, err
}

// Connect 连接服务器
func (c *Client) Connect() error {
	conn, err := c.dial()
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	// 启动读写协程
	c.start(conn)
	return nil
}

// SendMessage 发送消息
func (c *Client) SendMessage(msg *protocol.Message) error {
	data, err := codec.Encode(msg)
	if err != nil {
		return err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClosed
	}

	select {
	case c.send <- data:
		return nil
	default:
		return ErrBufferFull
	}
}

// Receive 接收消息 (阻塞)
func (c *Client) Receive() (*protocol.Message, error) {
	c.mu.RLock()
	receive, done := c.receive, c.done
	c.mu.RUnlock()

	select {
	case msg := <-receive:
		return msg, nil
	case <-done:
		return nil, ErrClosed
	}
}

// ReceiveWithTimeout 带超时接收消息
func (c *Client) ReceiveWithTimeout(timeout time.Duration) (*protocol.Message, error) {
	c.mu.RLock()
	receive, done := c.receive, c.done
	c.mu.RUnlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case msg := <-receive:
		return msg, nil
	case <-timer.C:
		return nil, ErrReceiveTimeout
	case <-done:
		return nil, ErrClosed
	}
}

// WaitFor 接收消息直到出现指定类型，期间的其他消息交给 skip（可为 nil）
func (c *Client) WaitFor(msgType protocol.MessageType, timeout time.Duration, skip func(*protocol.Message)) (*protocol.Message, error) {
	deadline := time.Now().Add(timeout)
	for {
		left := time.Until(deadline)
		if left <= 0 {
			return nil, ErrReceiveTimeout
		}
		msg, err := c.ReceiveWithTimeout(left)
		if err != nil {
			return nil, err
		}
		if msg.Type == msgType {
			return msg, nil
		}
		if skip != nil {
			skip(msg)
		}
	}
}

// Close 关闭连接
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.done)
		if c.conn != nil {
			_ = c.conn.Close()
		}
	}
}

// IsConnected 是否已连接
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.closed && c.conn != nil
}

// Identity 连接与玩家身份
type Identity struct {
	ConnectionID   string
	PlayerID       string
	PlayerName     string
	ReconnectToken string
}

// Identity 返回当前身份
func (c *Client) Identity() Identity {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.identity
}

func (c *Client) updateIdentity(fn func(*Identity)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.identity)
}

// Latency 获取当前延迟（毫秒）
func (c *Client) Latency() int64 {
	return c.latency.Load()
}

// IsReconnecting 是否正在重连
func (c *Client) IsReconnecting() bool {
	return c.reconnecting.Load()
}
