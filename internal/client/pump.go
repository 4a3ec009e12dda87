package client

import (
	"log"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Uwaniumnya/crystal-social/internal/logger"
	"github.com/Uwaniumnya/crystal-social/internal/protocol"
	"github.com/Uwaniumnya/crystal-social/internal/protocol/codec"
)

// start 为一条底层连接启动读写协程，stop 在读协程退出时关闭
func (c *Client) start(conn *websocket.Conn) {
	stop := make(chan struct{})
	go c.readPump(conn, stop)
	go c.writePump(conn, stop)
}

// readPump 从服务器读取消息
func (c *Client) readPump(conn *websocket.Conn, stop chan struct{}) {
	defer c.handleReadExit(stop)

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				if c.OnError != nil {
					c.OnError(err)
				}
			}
			return
		}

		msg, err := codec.Decode(message)
		if err != nil {
			log.Printf("消息解析错误: %v", err)
			continue
		}

		c.processMessage(msg)
	}
}

func (c *Client) handleReadExit(stop chan struct{}) {
	if r := recover(); r != nil {
		logger.LogPanic(r)
		log.Printf("[PANIC] readPump panic recovered: %v", r)
	}
	close(stop)

	c.mu.RLock()
	closed := c.closed
	c.mu.RUnlock()
	if closed {
		return
	}

	// 有重连 token 时尝试重连，次数由 reconnectCount 限制
	if c.Identity().ReconnectToken != "" {
		c.reconnecting.Store(false)
		go c.tryReconnect()
		return
	}
	c.Close()
	if c.OnClose != nil {
		c.OnClose()
	}
}

func (c *Client) processMessage(msg *protocol.Message) {
	isReconnected := c.handleInternalMessage(msg)

	// 回调处理
	if c.OnMessage != nil {
		c.OnMessage(msg)
	}

	// 同时发送到 channel
	select {
	case c.receive <- msg:
	default:
		log.Printf("⚠️ 接收缓冲区已满，丢弃 %s", msg.Type)
	}

	// 重连成功回调放在最后，确保消息已经发送到 channel
	if isReconnected && c.OnReconnect != nil {
		c.OnReconnect()
	}
}

// handleInternalMessage 记录身份与延迟；返回是否完成了一次重连
func (c *Client) handleInternalMessage(msg *protocol.Message) bool {
	switch msg.Type {
	case protocol.MsgConnected:
		if payload, err := codec.ParsePayload[protocol.ConnectedPayload](msg); err == nil {
			c.updateIdentity(func(id *Identity) { id.ConnectionID = payload.ConnectionID })
		}
	case protocol.MsgAuthenticated:
		payload, err := codec.ParsePayload[protocol.AuthenticatedPayload](msg)
		if err != nil {
			return false
		}
		c.updateIdentity(func(id *Identity) {
			id.PlayerID = payload.Player.ID
			id.PlayerName = payload.Player.Name
			id.ReconnectToken = payload.ReconnectToken
		})
		if c.reconnecting.CompareAndSwap(true, false) {
			c.mu.Lock()
			c.reconnectCount = 0
			c.mu.Unlock()
			return true
		}
	case protocol.MsgError:
		// 被同一玩家的新连接顶替后不再自动重连
		if payload, err := codec.ParsePayload[protocol.ErrorPayload](msg); err == nil &&
			payload.Code == protocol.ErrCodeAlreadyAuthenticated {
			c.updateIdentity(func(id *Identity) { id.ReconnectToken = "" })
		}
	case protocol.MsgPong:
		if payload, err := codec.ParsePayload[protocol.PongPayload](msg); err == nil {
			latency := time.Now().UnixMilli() - payload.ClientTimestamp
			c.latency.Store(latency)
			if c.OnLatencyUpdate != nil {
				c.OnLatencyUpdate(latency)
			}
		}
	}
	return false
}

// writePump 向服务器写入消息
func (c *Client) writePump(conn *websocket.Conn, stop chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
			log.Printf("[PANIC] writePump panic recovered: %v", r)
		}
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-stop:
			return
		case <-c.done:
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
