package handler

import (
	"github.com/Uwaniumnya/crystal-social/internal/apperrors"
	"github.com/Uwaniumnya/crystal-social/internal/game/room"
	"github.com/Uwaniumnya/crystal-social/internal/protocol"
	"github.com/Uwaniumnya/crystal-social/internal/protocol/codec"
	"github.com/Uwaniumnya/crystal-social/internal/types"
)

// handleCreateRoom 创建房间
func (h *Handler) handleCreateRoom(client types.ClientInterface, cmd codec.CreateRoom) error {
	if h.server.IsMaintenanceMode() {
		return apperrors.ErrMaintenance
	}

	r, err := h.roomManager.CreateRoom(client, cmd.CreateRoomPayload)
	if err != nil {
		return err
	}

	client.SendMessage(codec.MustNewMessage(protocol.MsgRoomCreated, protocol.RoomPayload{
		Room: r.Snapshot(),
	}))
	return nil
}

// handleJoinRoom 加入房间
func (h *Handler) handleJoinRoom(client types.ClientInterface, cmd codec.JoinRoom) error {
	if h.server.IsMaintenanceMode() {
		return apperrors.ErrMaintenance
	}

	r, err := h.roomManager.JoinRoom(client, cmd.RoomID)
	if err != nil {
		return err
	}

	client.SendMessage(codec.MustNewMessage(protocol.MsgRoomJoined, protocol.RoomPayload{
		Room: r.Snapshot(),
	}))
	return nil
}

// handleLeaveRoom 离开房间，进行中的下注不退还
func (h *Handler) handleLeaveRoom(client types.ClientInterface, cmd codec.LeaveRoom) error {
	if _, err := h.seatedRoom(client, cmd.RoomID); err != nil {
		return err
	}

	res, err := h.roomManager.LeaveRoom(client)
	if err != nil {
		return err
	}

	client.SendMessage(codec.MustNewMessage(protocol.MsgRoomLeft, protocol.RoomLeftPayload{
		RoomID: res.RoomID,
	}))
	return nil
}

// handleGetRooms 获取房间列表
func (h *Handler) handleGetRooms(client types.ClientInterface) error {
	client.SendMessage(codec.MustNewMessage(protocol.MsgAvailableRooms, protocol.AvailableRoomsPayload{
		Rooms: h.roomManager.ListRooms(),
	}))
	return nil
}

// seatedRoom 返回客户端所在房间；roomID 非空时必须与之一致
func (h *Handler) seatedRoom(client types.ClientInterface, roomID string) (*room.Room, error) {
	r, err := h.roomManager.RoomOf(client)
	if err != nil {
		return nil, err
	}
	if roomID != "" && roomID != r.ID {
		return nil, apperrors.Wrapf(apperrors.ErrNotInRoom, "not seated in room %s", roomID)
	}
	return r, nil
}
