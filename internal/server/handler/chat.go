package handler

import (
	"time"

	"github.com/google/uuid"

	"github.com/Uwaniumnya/crystal-social/internal/apperrors"
	"github.com/Uwaniumnya/crystal-social/internal/protocol"
	"github.com/Uwaniumnya/crystal-social/internal/protocol/codec"
	"github.com/Uwaniumnya/crystal-social/internal/types"
)

// 聊天范围
const (
	scopeRoom  = "room"
	scopeLobby = "lobby"
)

// handleChat 处理聊天消息：入座时发到房间，否则发到大厅
func (h *Handler) handleChat(client types.ClientInterface, cmd codec.Chat) error {
	// 聊天限流检查
	if h.chatLimiter != nil {
		allowed, reason := h.chatLimiter.AllowChat(client.GetID())
		if !allowed {
			return apperrors.Wrapf(apperrors.ErrRateLimited, "%s", reason)
		}
	}

	payload := protocol.ChatMessagePayload{
		ID:         uuid.NewString(),
		PlayerID:   client.GetID(),
		PlayerName: client.GetName(),
		Message:    cmd.Message,
		Scope:      scopeLobby,
		Timestamp:  time.Now().UnixMilli(),
	}

	if client.GetRoom() != "" {
		r, err := h.roomManager.RoomOf(client)
		if err != nil {
			return err
		}
		payload.Scope = scopeRoom
		r.Broadcast(chatMessage(payload))
		return nil
	}

	h.server.BroadcastToLobby(chatMessage(payload))
	return nil
}

func chatMessage(payload protocol.ChatMessagePayload) *protocol.Message {
	msg := codec.MustNewMessage(protocol.MsgChatMessage, payload)
	msg.FromPlayerID = payload.PlayerID
	return msg
}
