package codec

import (
	"strings"
	"unicode/utf8"

	"github.com/Uwaniumnya/crystal-social/internal/apperrors"
	"github.com/Uwaniumnya/crystal-social/internal/protocol"
)

// MaxChatLength 聊天内容最大字符数
const MaxChatLength = 500

// Command 解码后的客户端指令。每种消息类型对应一个具体类型，
// 未知类型在解码阶段即被拒绝。
type Command interface {
	Type() protocol.MessageType
}

type (
	Authenticate struct {
		protocol.AuthenticatePayload
	}
	CreateRoom struct {
		protocol.CreateRoomPayload
	}
	JoinRoom struct {
		RoomID string
	}
	LeaveRoom struct {
		RoomID string
	}
	PlaceBet struct {
		RoomID  string
		BetType string
		Amount  int64
	}
	RemoveBet struct {
		RoomID  string
		BetType string
	}
	Hit        struct{}
	Stand      struct{}
	DoubleDown struct{}
	StartRound struct {
		RoomID string
	}
	Chat struct {
		Message string
	}
	GetRooms       struct{}
	GetLeaderboard struct {
		Board string
		Limit int
	}
	GetStats   struct{}
	GetHistory struct {
		RoomID string
		Limit  int
	}
	Ping struct {
		Timestamp int64
	}
)

func (Authenticate) Type() protocol.MessageType   { return protocol.MsgAuthenticate }
func (CreateRoom) Type() protocol.MessageType     { return protocol.MsgCreateRoom }
func (JoinRoom) Type() protocol.MessageType       { return protocol.MsgJoinRoom }
func (LeaveRoom) Type() protocol.MessageType      { return protocol.MsgLeaveRoom }
func (PlaceBet) Type() protocol.MessageType       { return protocol.MsgPlaceBet }
func (RemoveBet) Type() protocol.MessageType      { return protocol.MsgRemoveBet }
func (Hit) Type() protocol.MessageType            { return protocol.MsgHit }
func (Stand) Type() protocol.MessageType          { return protocol.MsgStand }
func (DoubleDown) Type() protocol.MessageType     { return protocol.MsgDoubleDown }
func (StartRound) Type() protocol.MessageType     { return protocol.MsgStartRound }
func (Chat) Type() protocol.MessageType           { return protocol.MsgChat }
func (GetRooms) Type() protocol.MessageType       { return protocol.MsgGetRooms }
func (GetLeaderboard) Type() protocol.MessageType { return protocol.MsgGetLeaderboard }
func (GetStats) Type() protocol.MessageType       { return protocol.MsgGetStats }
func (GetHistory) Type() protocol.MessageType     { return protocol.MsgGetHistory }
func (Ping) Type() protocol.MessageType           { return protocol.MsgPing }

// DecodeCommand 将消息信封解码为具体指令
func DecodeCommand(msg *protocol.Message) (Command, error) {
	switch msg.Type {
	case protocol.MsgAuthenticate, protocol.MsgPlayerJoin:
		p, err := ParsePayload[protocol.AuthenticatePayload](msg)
		if err != nil {
			return nil, err
		}
		p.Name = strings.TrimSpace(p.Name)
		if p.Credits != nil && *p.Credits < 0 {
			return nil, apperrors.Wrapf(apperrors.ErrInvalidField, "credits must not be negative")
		}
		return Authenticate{*p}, nil

	case protocol.MsgCreateRoom:
		p, err := ParsePayload[protocol.CreateRoomPayload](msg)
		if err != nil {
			return nil, err
		}
		p.Name = strings.TrimSpace(p.Name)
		return CreateRoom{*p}, nil

	case protocol.MsgJoinRoom:
		p, err := ParsePayload[protocol.RoomRefPayload](msg)
		if err != nil {
			return nil, err
		}
		if p.RoomID == "" {
			return nil, apperrors.Wrapf(apperrors.ErrInvalidField, "roomId is required")
		}
		return JoinRoom{RoomID: p.RoomID}, nil

	case protocol.MsgLeaveRoom:
		p, err := ParsePayload[protocol.RoomRefPayload](msg)
		if err != nil {
			return nil, err
		}
		return LeaveRoom{RoomID: p.RoomID}, nil

	case protocol.MsgPlaceBet:
		p, err := ParsePayload[protocol.PlaceBetPayload](msg)
		if err != nil {
			return nil, err
		}
		if p.BetType == "" {
			return nil, apperrors.Wrapf(apperrors.ErrInvalidField, "betType is required")
		}
		return PlaceBet{RoomID: p.RoomID, BetType: p.BetType, Amount: p.Amount}, nil

	case protocol.MsgRemoveBet:
		p, err := ParsePayload[protocol.RemoveBetPayload](msg)
		if err != nil {
			return nil, err
		}
		if p.BetType == "" {
			return nil, apperrors.Wrapf(apperrors.ErrInvalidField, "betType is required")
		}
		return RemoveBet{RoomID: p.RoomID, BetType: p.BetType}, nil

	case protocol.MsgHit:
		return Hit{}, nil
	case protocol.MsgStand:
		return Stand{}, nil
	case protocol.MsgDoubleDown:
		return DoubleDown{}, nil

	case protocol.MsgStartRound:
		p, err := ParsePayload[protocol.RoomRefPayload](msg)
		if err != nil {
			return nil, err
		}
		return StartRound{RoomID: p.RoomID}, nil

	case protocol.MsgChat:
		p, err := ParsePayload[protocol.ChatPayload](msg)
		if err != nil {
			return nil, err
		}
		text := strings.TrimSpace(p.Message)
		if text == "" {
			return nil, apperrors.Wrapf(apperrors.ErrInvalidField, "message is required")
		}
		if utf8.RuneCountInString(text) > MaxChatLength {
			return nil, apperrors.Wrapf(apperrors.ErrInvalidField, "message longer than %d characters", MaxChatLength)
		}
		return Chat{Message: text}, nil

	case protocol.MsgGetRooms:
		return GetRooms{}, nil

	case protocol.MsgGetLeaderboard:
		p, err := ParsePayload[protocol.GetLeaderboardPayload](msg)
		if err != nil {
			return nil, err
		}
		return GetLeaderboard{Board: p.Type, Limit: p.Limit}, nil

	case protocol.MsgGetStats:
		return GetStats{}, nil

	case protocol.MsgGetHistory:
		p, err := ParsePayload[protocol.GetHistoryPayload](msg)
		if err != nil {
			return nil, err
		}
		if p.Limit < 0 {
			return nil, apperrors.Wrapf(apperrors.ErrInvalidField, "limit must not be negative")
		}
		return GetHistory{RoomID: p.RoomID, Limit: p.Limit}, nil

	case protocol.MsgPing:
		p, err := ParsePayload[protocol.PingPayload](msg)
		if err != nil {
			return nil, err
		}
		return Ping{Timestamp: p.Timestamp}, nil
	}

	return nil, apperrors.Wrapf(apperrors.ErrInvalidMessage, "unknown message type: %q", msg.Type)
}

// DecodeFrame 解码一帧原始数据为指令
func DecodeFrame(data []byte) (Command, error) {
	msg, err := Decode(data)
	if err != nil {
		return nil, err
	}
	defer PutMessage(msg)
	return DecodeCommand(msg)
}
