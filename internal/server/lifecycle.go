package server

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"time"

	"github.com/Uwaniumnya/crystal-social/internal/protocol"
	"github.com/Uwaniumnya/crystal-social/internal/protocol/codec"
)

// monitorStats 定期监控服务器状态
func (s *Server) monitorStats() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
		}

		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		log.Printf("📊 [监控] 在线: %d | 房间: %d | 进行中: %d | Goroutines: %d | 活跃连接: %d/%d | 内存: %.2f MB",
			s.GetOnlineCount(),
			s.roomManager.RoomCount(),
			s.roomManager.ActiveRoundsCount(),
			runtime.NumGoroutine(),
			len(s.semaphore),
			s.maxConnections,
			float64(m.Alloc)/1024/1024)
	}
}

// EnterMaintenanceMode 进入维护模式：拒绝新连接、新房间与入座
func (s *Server) EnterMaintenanceMode() {
	s.maintenanceMu.Lock()
	s.maintenanceMode = true
	s.maintenanceMu.Unlock()

	s.Broadcast(codec.NewErrorMessageWithText(protocol.ErrCodeMaintenance,
		"👷🏻‍♂️ maintenance: no new tables, running rounds will finish"))

	log.Println("🔧 进入维护模式：停止新连接和房间创建")
}

// IsMaintenanceMode 检查是否在维护模式
func (s *Server) IsMaintenanceMode() bool {
	s.maintenanceMu.RLock()
	defer s.maintenanceMu.RUnlock()
	return s.maintenanceMode
}

// GracefulShutdown 进入维护模式，等待进行中的局结束（最长 timeout），然后关闭
func (s *Server) GracefulShutdown(timeout time.Duration) {
	// 1. 进入维护模式
	s.EnterMaintenanceMode()

	// 2. 等待对局结束
	interval := s.config.Game.ShutdownCheckIntervalDuration()
	if interval <= 0 {
		interval = time.Second
	}
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for time.Now().Before(deadline) {
		active := s.roomManager.ActiveRoundsCount()
		if active == 0 {
			log.Println("✅ 所有对局已结束")
			break
		}
		log.Printf("⏳ 等待 %d 个房间结束本局...", active)
		<-ticker.C
	}

	// 3. 超时检查
	if active := s.roomManager.ActiveRoundsCount(); active > 0 {
		log.Printf("⚠️ 超时，仍有 %d 个房间进行中，强制关闭", active)
	}

	s.Broadcast(codec.NewErrorMessageWithText(protocol.ErrCodeMaintenance,
		fmt.Sprintf("🚧 server shutting down, %d connections closing", s.GetOnlineCount())))

	// 4. 关闭服务器
	s.Shutdown()
}

// Shutdown 关闭 HTTP 服务、所有连接与后台协程
func (s *Server) Shutdown() {
	s.stopOnce.Do(func() {
		close(s.stop)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Printf("⚠️ HTTP 服务关闭失败: %v", err)
		}

		// 关闭所有客户端连接，断线清理会保存玩家资料
		for _, client := range s.clients.clients() {
			client.Close()
		}

		s.roomManager.Close()
		s.sessionManager.Close()
		s.connLimiter.Close()

		if s.redis != nil {
			// 等待断线清理写完资料
			deadline := time.Now().Add(storageTimeout)
			for s.GetOnlineCount() > 0 && time.Now().Before(deadline) {
				time.Sleep(50 * time.Millisecond)
			}
			_ = s.redis.Close()
		}

		log.Println("服务器已关闭")
	})
}
