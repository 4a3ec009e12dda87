package server

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Uwaniumnya/crystal-social/internal/apperrors"
	"github.com/Uwaniumnya/crystal-social/internal/game/player"
	"github.com/Uwaniumnya/crystal-social/internal/logger"
	"github.com/Uwaniumnya/crystal-social/internal/protocol"
	"github.com/Uwaniumnya/crystal-social/internal/protocol/codec"
)

const (
	// 写入超时
	writeWait = 10 * time.Second

	// 读取超时（pong 等待时间）
	pongWait = 60 * time.Second

	// ping 发送间隔（必须小于 pongWait）
	pingPeriod = (pongWait * 9) / 10

	// 消息最大大小
	maxMessageSize = 4096

	// 发送缓冲区大小
	sendBufferSize = 256

	// 超速警告次数上限，超过后断开
	maxRateWarnings = 5
)

// Client 一个 WebSocket 连接。连接建立时未绑定玩家，authenticate 后才有身份。
type Client struct {
	ConnID string // 连接 ID
	IP     string // 客户端 IP 地址

	server *Server
	conn   *websocket.Conn
	send   chan []byte

	mu     sync.RWMutex
	player *player.Player
	roomID string
	closed bool

	disconnectOnce sync.Once
}

// NewClient 创建新客户端
func NewClient(s *Server, conn *websocket.Conn) *Client {
	return &Client{
		ConnID: uuid.NewString(),
		server: s,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
	}
}

// ReadPump 从 WebSocket 读取消息
func (c *Client) ReadPump() {
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
			log.Printf("[PANIC] readPump panic recovered: %v", r)
		}
		c.handleDisconnect()
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("读取错误: %v", err)
			}
			return
		}

		// 消息速率限制检查
		allowed, warning := c.server.messageLimiter.Allow(c.ConnID)
		if !allowed {
			log.Printf("⚠️ 连接 %s (IP: %s) 消息过于频繁", c.label(), c.IP)
			c.SendMessage(codec.NewErrorMessage(protocol.ErrCodeRateLimit))
			if c.server.messageLimiter.Strikes(c.ConnID) > maxRateWarnings {
				log.Printf("🚫 连接 %s 因多次超速被断开", c.label())
				return
			}
			continue
		}
		if warning {
			c.SendMessage(codec.NewErrorMessageWithText(protocol.ErrCodeRateLimit, "slow down"))
		}

		msg, err := codec.Decode(message)
		if err != nil {
			c.SendMessage(codec.NewErrorFromError(err))
			continue
		}

		c.server.handler.Handle(c, msg)
		codec.PutMessage(msg)
	}
}

// WritePump 向 WebSocket 写入消息
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
			log.Printf("[PANIC] writePump panic recovered: %v", r)
		}
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// 通道已关闭
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendMessage 发送消息给客户端。只入队不阻塞，已关闭或缓冲区满时丢弃。
func (c *Client) SendMessage(msg *protocol.Message) {
	data, err := codec.Encode(msg)
	if err != nil {
		log.Printf("消息编码错误: %v", err)
		return
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return
	}

	select {
	case c.send <- data:
	default:
		log.Printf("⚠️ 连接 %s 发送缓冲区已满，丢弃 %s", c.label(), msg.Type)
	}
}

// handleDisconnect 断线清理，只执行一次：离开房间、保存资料、释放绑定
func (c *Client) handleDisconnect() {
	c.disconnectOnce.Do(func() {
		s := c.server
		s.messageLimiter.RemoveClient(c.ConnID)

		p := c.GetPlayer()
		if p != nil && c.GetRoom() != "" {
			res, err := s.roomManager.LeaveRoom(c)
			switch {
			case errors.Is(err, apperrors.ErrNotInRoom):
				// 座位已交给新连接
			case err != nil:
				log.Printf("⚠️ 玩家 %s 断线离开房间失败: %v", p.Name, err)
			case res.Forfeited > 0:
				s.notifyForfeit(p, res.RoomID, res.Forfeited)
			}
		}

		// 被新连接顶替时，绑定已归新连接，资料由新连接负责
		if s.unregisterClient(c) && p != nil {
			s.chatLimiter.RemoveClient(p.ID)
			s.sessionManager.SetOffline(p.ID)
			s.saveProfile(p)
		}

		c.Close()
	})
}

// Close 关闭发送通道，WritePump 随后发送关闭帧并断开
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// bind 绑定玩家，已绑定时返回错误
func (c *Client) bind(p *player.Player) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.player != nil {
		return apperrors.ErrAlreadyAuthenticated
	}
	c.player = p
	return nil
}

// GetID 返回绑定的玩家 ID，未绑定时为空
func (c *Client) GetID() string {
	if p := c.GetPlayer(); p != nil {
		return p.ID
	}
	return ""
}

// GetName 返回绑定的玩家昵称
func (c *Client) GetName() string {
	if p := c.GetPlayer(); p != nil {
		return p.Name
	}
	return ""
}

// GetPlayer 返回绑定的玩家
func (c *Client) GetPlayer() *player.Player {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.player
}

// SetRoom 设置客户端所在房间
func (c *Client) SetRoom(roomID string) {
	c.mu.Lock()
	c.roomID = roomID
	p := c.player
	c.mu.Unlock()
	if p != nil {
		p.SetRoomID(roomID)
	}
}

// GetRoom 获取客户端所在房间
func (c *Client) GetRoom() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roomID
}

// label 日志用的连接标识
func (c *Client) label() string {
	if name := c.GetName(); name != "" {
		return name
	}
	return c.ConnID
}
