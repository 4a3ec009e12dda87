package client

import (
	"log"
	"time"

	"github.com/Uwaniumnya/crystal-social/internal/logger"
)

// StartHeartbeat 启动心跳检测
func (c *Client) StartHeartbeat() {
	go func() {
		ticker := time.NewTicker(heartbeatInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if c.IsConnected() {
					_ = c.Ping()
				}
			case <-c.done:
				return
			}
		}
	}()
}

// tryReconnect 断线后按指数退避重连，成功后用重连 token 恢复身份
func (c *Client) tryReconnect() {
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
			log.Printf("[PANIC] tryReconnect panic recovered: %v", r)
			c.reconnecting.Store(false)
		}
	}()

	if !c.reconnecting.CompareAndSwap(false, true) {
		return
	}

	backoff := reconnectInterval
	for {
		c.mu.Lock()
		if c.closed || c.reconnectCount >= maxReconnectAttempts {
			c.mu.Unlock()
			break
		}
		c.reconnectCount++
		attempt := c.reconnectCount
		c.mu.Unlock()

		// 通过回调通知 UI 正在重连
		if c.OnReconnecting != nil {
			c.OnReconnecting(attempt, maxReconnectAttempts)
		}

		select {
		case <-time.After(backoff):
		case <-c.done:
			c.reconnecting.Store(false)
			return
		}
		backoff = min(backoff*2, 30*time.Second)

		conn, err := c.dial()
		if err != nil {
			log.Printf("🔄 重连失败 (%d/%d): %v", attempt, maxReconnectAttempts, err)
			continue
		}

		c.mu.Lock()
		c.conn = conn
		c.mu.Unlock()
		c.start(conn)

		// 身份恢复完成后 handleInternalMessage 清除重连状态；
		// 新连接在此之前断开时由 readPump 再次发起重连
		if err := c.resume(); err != nil {
			log.Printf("⚠️ 发送身份恢复请求失败: %v", err)
		}
		return
	}

	// 重连失败
	log.Printf("❌ 重连失败，已达最大尝试次数")
	c.reconnecting.Store(false)
	c.Close()
	if c.OnClose != nil {
		c.OnClose()
	}
}
