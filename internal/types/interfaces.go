package types

import (
	"github.com/Uwaniumnya/crystal-social/internal/game/player"
	"github.com/Uwaniumnya/crystal-social/internal/protocol"
)

// ServerInterface 定义服务器接口（用于打破循环依赖）
type ServerInterface interface {
	IsMaintenanceMode() bool
	GetOnlineCount() int
	BroadcastToLobby(msg *protocol.Message)
	BindPlayer(client ClientInterface, p *player.Player) error
}

// ClientInterface 定义客户端接口。GetID 返回绑定的玩家 id，未绑定时为空。
type ClientInterface interface {
	GetID() string
	GetName() string
	GetRoom() string
	SetRoom(roomID string)
	GetPlayer() *player.Player
	SendMessage(msg *protocol.Message)
	Close()
}

// ChatLimiter 聊天速率限制器接口
type ChatLimiter interface {
	AllowChat(playerID string) (allowed bool, reason string)
	RemoveClient(playerID string)
}
