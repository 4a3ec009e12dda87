package protocol

import "encoding/json"

// Message 线上消息信封
type Message struct {
	ID           string          `json:"id"`
	Type         MessageType     `json:"type"`
	FromPlayerID string          `json:"fromPlayerId,omitempty"`
	Data         json.RawMessage `json:"data,omitempty"`
	Timestamp    int64           `json:"timestamp"` // 毫秒
}

// MessageType 消息类型
type MessageType string

// 客户端 → 服务端 消息类型
const (
	// 身份
	MsgAuthenticate MessageType = "authenticate"
	MsgPlayerJoin   MessageType = "playerJoin" // authenticate 的别名
	MsgPing         MessageType = "ping"       // 心跳 ping

	// 房间操作
	MsgCreateRoom MessageType = "createRoom"
	MsgJoinRoom   MessageType = "joinRoom"
	MsgLeaveRoom  MessageType = "leaveRoom"

	// 下注与对局
	MsgPlaceBet   MessageType = "placeBet"
	MsgRemoveBet  MessageType = "removeBet"
	MsgHit        MessageType = "hit"
	MsgStand      MessageType = "stand"
	MsgDoubleDown MessageType = "doubleDown"
	MsgStartRound MessageType = "startRound" // 骰宝，房主专用

	// 查询与聊天
	MsgChat           MessageType = "chat"
	MsgGetRooms       MessageType = "getRooms"
	MsgGetLeaderboard MessageType = "getLeaderboard"
	MsgGetStats       MessageType = "getStats"
	MsgGetHistory     MessageType = "getHistory"
)

// 服务端 → 客户端 消息类型
const (
	// 连接相关
	MsgConnected     MessageType = "connected"
	MsgAuthenticated MessageType = "authenticated"
	MsgPong          MessageType = "pong"

	// 房间相关
	MsgRoomCreated      MessageType = "roomCreated"
	MsgRoomJoined       MessageType = "roomJoined"
	MsgRoomLeft         MessageType = "roomLeft"
	MsgPlayerJoinedRoom MessageType = "playerJoinedRoom"
	MsgPlayerLeftRoom   MessageType = "playerLeftRoom"
	MsgHostChanged      MessageType = "hostChanged"
	MsgAvailableRooms   MessageType = "availableRooms"

	// 对局流程
	MsgBetPlaced         MessageType = "betPlaced"
	MsgBetRemoved        MessageType = "betRemoved"
	MsgDealingComplete   MessageType = "dealingComplete"
	MsgCardDealt         MessageType = "cardDealt"
	MsgPlayerStood       MessageType = "playerStood"
	MsgPlayerDoubledDown MessageType = "playerDoubledDown"
	MsgNextPlayer        MessageType = "nextPlayer"
	MsgDealerTurn        MessageType = "dealerTurn"
	MsgDiceRolled        MessageType = "diceRolled"
	MsgGameComplete      MessageType = "gameComplete"
	MsgRoomReset         MessageType = "roomReset"

	// 其他
	MsgChatMessage MessageType = "chatMessage"
	MsgLeaderboard MessageType = "leaderboard"
	MsgStats       MessageType = "stats"
	MsgHistory     MessageType = "history"

	// 错误
	MsgError MessageType = "error"
)
