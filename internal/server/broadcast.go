package server

import "github.com/Uwaniumnya/crystal-social/internal/protocol"

// GetOnlineCount 获取在线连接数（按需调用）
func (s *Server) GetOnlineCount() int {
	return s.clients.count()
}

// Broadcast 广播消息给所有客户端
func (s *Server) Broadcast(msg *protocol.Message) {
	for _, client := range s.clients.clients() {
		client.SendMessage(msg)
	}
}

// BroadcastToLobby 广播消息给大厅玩家（已登录且未在房间内）
func (s *Server) BroadcastToLobby(msg *protocol.Message) {
	for _, client := range s.clients.clients() {
		if client.GetPlayer() != nil && client.GetRoom() == "" {
			client.SendMessage(msg)
		}
	}
}
