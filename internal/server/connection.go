package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/Uwaniumnya/crystal-social/internal/game/player"
	"github.com/Uwaniumnya/crystal-social/internal/notify"
	"github.com/Uwaniumnya/crystal-social/internal/protocol"
	"github.com/Uwaniumnya/crystal-social/internal/protocol/codec"
	"github.com/Uwaniumnya/crystal-social/internal/types"
)

// storageTimeout 断线时保存资料、发布通知的超时
const storageTimeout = 3 * time.Second

// handleWebSocket 处理 WebSocket 连接
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	// 获取真实客户端IP
	clientIP := ClientIP(r, s.config.Security.TrustProxy)

	// 维护模式检查（最优先）
	if s.IsMaintenanceMode() {
		log.Printf("🔧 维护模式，拒绝新连接: %s", clientIP)
		http.Error(w, "Server is under maintenance, please try again later",
			http.StatusServiceUnavailable)
		return
	}

	// 连接数限制检查，连接断开时释放
	select {
	case s.semaphore <- struct{}{}:
	default:
		log.Printf("🚫 达到最大连接数限制 (%d), IP: %s", s.maxConnections, clientIP)
		http.Error(w, "Server Full", http.StatusServiceUnavailable)
		return
	}
	release := func() { <-s.semaphore }

	// IP 过滤检查
	if !s.ipFilter.IsAllowed(clientIP) {
		release()
		log.Printf("🚫 IP %s 被过滤器拒绝", clientIP)
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	// 来源验证
	if !s.originChecker.Check(r) {
		release()
		log.Printf("🚫 来源验证失败: %s (IP: %s)", r.Header.Get("Origin"), clientIP)
		http.Error(w, "Origin not allowed", http.StatusForbidden)
		return
	}

	// 速率限制检查
	if !s.connLimiter.Allow(clientIP) {
		release()
		log.Printf("🚫 IP %s 请求过于频繁", clientIP)
		http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		release()
		log.Printf("WebSocket 升级失败: %v", err)
		return
	}

	// 创建客户端
	client := NewClient(s, conn)
	client.IP = clientIP
	s.registerClient(client)

	client.SendMessage(codec.MustNewMessage(protocol.MsgConnected, protocol.ConnectedPayload{
		ConnectionID: client.ConnID,
		RequiresAuth: s.config.Auth.Secret != "",
	}))

	log.Printf("🔌 连接 %s 已建立 (IP: %s)", client.ConnID, clientIP)

	// 启动客户端读写协程
	go func() {
		defer release()
		client.ReadPump()
	}()
	go client.WritePump()
}

// handleHealth 健康检查接口
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// serverStats /stats 响应
type serverStats struct {
	Online       int  `json:"online"`
	Rooms        int  `json:"rooms"`
	ActiveRounds int  `json:"activeRounds"`
	Maintenance  bool `json:"maintenance"`
}

// handleStats 在线人数、房间数与进行中的局数
func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(serverStats{
		Online:       s.GetOnlineCount(),
		Rooms:        s.roomManager.RoomCount(),
		ActiveRounds: s.roomManager.ActiveRoundsCount(),
		Maintenance:  s.IsMaintenanceMode(),
	})
}

// registerClient 注册客户端
func (s *Server) registerClient(client *Client) {
	s.clients.add(client)
}

// unregisterClient 注销客户端，返回该连接是否仍持有玩家绑定
func (s *Server) unregisterClient(client *Client) bool {
	owned := s.clients.release(client)
	log.Printf("❌ 连接 %s (%s) 已断开", client.ConnID, client.label())
	return owned
}

// BindPlayer 把玩家绑定到连接。同一玩家的旧连接被顶替并关闭。
func (s *Server) BindPlayer(client types.ClientInterface, p *player.Player) error {
	c, ok := client.(*Client)
	if !ok {
		return fmt.Errorf("unexpected client type %T", client)
	}
	if err := c.bind(p); err != nil {
		return err
	}

	if old := s.clients.bind(c, p.ID); old != nil {
		log.Printf("🔁 玩家 %s 在新连接登录，关闭旧连接 %s", p.Name, old.ConnID)
		// 座位在关闭前交给新连接，旧连接的断线清理不再离开房间
		s.roomManager.TransferSeat(old, c)
		old.SendMessage(codec.NewErrorMessageWithText(protocol.ErrCodeAlreadyAuthenticated,
			"signed in from another connection"))
		old.Close()
	}
	s.sessionManager.SetOnline(p.ID)
	return nil
}

// saveProfile 保存玩家余额与统计
func (s *Server) saveProfile(p *player.Player) {
	if s.redisStore == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()
	if err := s.redisStore.SaveProfile(ctx, p.Profile()); err != nil {
		log.Printf("⚠️ 保存玩家 %s 资料失败: %v", p.ID, err)
	}
}

// notifyForfeit 断线导致下注被没收时通知玩家
func (s *Server) notifyForfeit(p *player.Player, roomID string, amount int64) {
	n := notify.Notification{
		PlayerID: p.ID,
		Title:    "Bet forfeited",
		Body:     fmt.Sprintf("You disconnected mid-round and forfeited %d credits.", amount),
		Data: map[string]string{
			"roomId":    roomID,
			"forfeited": fmt.Sprint(amount),
			"reason":    "disconnect",
		},
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
		defer cancel()
		if err := s.notifier.Notify(ctx, n); err != nil {
			log.Printf("⚠️ 推送玩家 %s 通知失败: %v", p.ID, err)
		}
	}()
}
