package client

import (
	"time"

	"github.com/Uwaniumnya/crystal-social/internal/protocol"
	"github.com/Uwaniumnya/crystal-social/internal/protocol/codec"
)

// --- 便捷方法 ---

// Authenticate 绑定身份。token 为身份服务签发的 JWT，服务器未要求时传空。
func (c *Client) Authenticate(playerID, name, token string) error {
	c.mu.Lock()
	c.authToken = token
	c.mu.Unlock()
	return c.SendMessage(codec.MustNewMessage(protocol.MsgAuthenticate, protocol.AuthenticatePayload{
		PlayerID: playerID,
		Name:     name,
		Token:    token,
	}))
}

// resume 用重连 token 恢复上一次的玩家
func (c *Client) resume() error {
	c.mu.RLock()
	id, token := c.identity, c.authToken
	c.mu.RUnlock()
	return c.SendMessage(codec.MustNewMessage(protocol.MsgAuthenticate, protocol.AuthenticatePayload{
		PlayerID:       id.PlayerID,
		Token:          token,
		ReconnectToken: id.ReconnectToken,
	}))
}

// CreateRoom 创建房间，game 为 blackjack 或 dice
func (c *Client) CreateRoom(req protocol.CreateRoomPayload) error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgCreateRoom, req))
}

// JoinRoom 加入房间
func (c *Client) JoinRoom(roomID string) error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgJoinRoom, protocol.RoomRefPayload{RoomID: roomID}))
}

// LeaveRoom 离开房间
func (c *Client) LeaveRoom() error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgLeaveRoom, protocol.RoomRefPayload{}))
}

// PlaceBet 下注
func (c *Client) PlaceBet(betType string, amount int64) error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgPlaceBet, protocol.PlaceBetPayload{
		BetType: betType,
		Amount:  amount,
	}))
}

// RemoveBet 撤注
func (c *Client) RemoveBet(betType string) error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgRemoveBet, protocol.RemoveBetPayload{BetType: betType}))
}

// Hit 要牌
func (c *Client) Hit() error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgHit, nil))
}

// Stand 停牌
func (c *Client) Stand() error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgStand, nil))
}

// DoubleDown 加倍
func (c *Client) DoubleDown() error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgDoubleDown, nil))
}

// StartRound 骰宝开局（房主）
func (c *Client) StartRound() error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgStartRound, protocol.RoomRefPayload{}))
}

// Chat 发送聊天
func (c *Client) Chat(text string) error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgChat, protocol.ChatPayload{Message: text}))
}

// GetRooms 获取房间列表
func (c *Client) GetRooms() error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgGetRooms, nil))
}

// GetStats 获取个人统计
func (c *Client) GetStats() error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgGetStats, nil))
}

// GetLeaderboard 获取排行榜
func (c *Client) GetLeaderboard(board string, limit int) error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgGetLeaderboard, protocol.GetLeaderboardPayload{
		Type:  board,
		Limit: limit,
	}))
}

// GetHistory 获取房间结算历史，roomID 为空时取当前房间
func (c *Client) GetHistory(roomID string, limit int) error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgGetHistory, protocol.GetHistoryPayload{
		RoomID: roomID,
		Limit:  limit,
	}))
}

// Ping 发送心跳
func (c *Client) Ping() error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgPing, protocol.PingPayload{
		Timestamp: time.Now().UnixMilli(),
	}))
}
