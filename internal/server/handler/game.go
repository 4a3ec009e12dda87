package handler

import (
	"strings"

	"github.com/Uwaniumnya/crystal-social/internal/game/rule"
	"github.com/Uwaniumnya/crystal-social/internal/protocol/codec"
	"github.com/Uwaniumnya/crystal-social/internal/types"
)

// 对局指令只返回错误，状态变化由房间广播给所有成员

func (h *Handler) handlePlaceBet(client types.ClientInterface, cmd codec.PlaceBet) error {
	r, err := h.seatedRoom(client, cmd.RoomID)
	if err != nil {
		return err
	}
	return r.PlaceBet(client.GetID(), betType(cmd.BetType), cmd.Amount)
}

func (h *Handler) handleRemoveBet(client types.ClientInterface, cmd codec.RemoveBet) error {
	r, err := h.seatedRoom(client, cmd.RoomID)
	if err != nil {
		return err
	}
	return r.RemoveBet(client.GetID(), betType(cmd.BetType))
}

func (h *Handler) handleHit(client types.ClientInterface) error {
	r, err := h.roomManager.RoomOf(client)
	if err != nil {
		return err
	}
	return r.Hit(client.GetID())
}

func (h *Handler) handleStand(client types.ClientInterface) error {
	r, err := h.roomManager.RoomOf(client)
	if err != nil {
		return err
	}
	return r.Stand(client.GetID())
}

func (h *Handler) handleDoubleDown(client types.ClientInterface) error {
	r, err := h.roomManager.RoomOf(client)
	if err != nil {
		return err
	}
	return r.DoubleDown(client.GetID())
}

// handleStartRound 骰宝房主开局
func (h *Handler) handleStartRound(client types.ClientInterface, cmd codec.StartRound) error {
	r, err := h.seatedRoom(client, cmd.RoomID)
	if err != nil {
		return err
	}
	return r.StartRound(client.GetID())
}

func betType(s string) rule.BetType {
	return rule.BetType(strings.ToLower(strings.TrimSpace(s)))
}
