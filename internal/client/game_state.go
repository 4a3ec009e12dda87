package client

import (
	"github.com/Uwaniumnya/crystal-social/internal/game/rule"
	"github.com/Uwaniumnya/crystal-social/internal/protocol"
	"github.com/Uwaniumnya/crystal-social/internal/protocol/codec"
)

// TableState 客户端视角的牌桌状态，由服务器消息驱动
type TableState struct {
	PlayerID string
	Balance  int64

	// 房间
	Room        *protocol.RoomSnapshot
	Hand        protocol.HandInfo // 自己的手牌
	Dealer      protocol.HandInfo
	CurrentTurn string

	// 上一局
	LastRoll   *protocol.DiceRollInfo
	LastResult *protocol.PlayerResult

	CardCounter *CardCounter
}

// NewTableState 创建牌桌状态
func NewTableState() *TableState {
	return &TableState{CardCounter: NewCardCounter()}
}

// IsMyTurn 是否轮到自己行动
func (ts *TableState) IsMyTurn() bool {
	return ts.PlayerID != "" && ts.CurrentTurn == ts.PlayerID
}

// Apply 根据一条服务器消息更新状态，无法解析的消息忽略
func (ts *TableState) Apply(msg *protocol.Message) {
	switch msg.Type {
	case protocol.MsgAuthenticated:
		if p, err := codec.ParsePayload[protocol.AuthenticatedPayload](msg); err == nil {
			ts.PlayerID = p.Player.ID
			ts.Balance = p.Player.Credits
		}

	case protocol.MsgRoomCreated, protocol.MsgRoomJoined:
		if p, err := codec.ParsePayload[protocol.RoomPayload](msg); err == nil {
			ts.setRoom(p.Room)
			ts.CardCounter.Reset()
			ts.countVisible()
		}
	case protocol.MsgDealingComplete:
		if p, err := codec.ParsePayload[protocol.RoomPayload](msg); err == nil {
			ts.setRoom(p.Room)
		}
	case protocol.MsgRoomReset:
		if p, err := codec.ParsePayload[protocol.RoomPayload](msg); err == nil {
			ts.setRoom(p.Room)
			ts.CardCounter.Reset()
		}
	case protocol.MsgRoomLeft:
		ts.Room = nil
		ts.clearRound()
		ts.CardCounter.Reset()

	case protocol.MsgPlayerJoinedRoom:
		if p, err := codec.ParsePayload[protocol.PlayerJoinedRoomPayload](msg); err == nil {
			ts.Room = &p.Room
		}
	case protocol.MsgPlayerLeftRoom:
		if p, err := codec.ParsePayload[protocol.PlayerLeftRoomPayload](msg); err == nil {
			ts.Room = &p.Room
		}
	case protocol.MsgHostChanged:
		if p, err := codec.ParsePayload[protocol.HostChangedPayload](msg); err == nil && ts.Room != nil {
			ts.Room.HostID = p.HostID
		}

	case protocol.MsgBetPlaced:
		if p, err := codec.ParsePayload[protocol.BetPlacedPayload](msg); err == nil && p.Bet.PlayerID == ts.PlayerID {
			ts.Balance = p.Balance
		}
	case protocol.MsgBetRemoved:
		if p, err := codec.ParsePayload[protocol.BetRemovedPayload](msg); err == nil && p.PlayerID == ts.PlayerID {
			ts.Balance = p.Balance
		}

	case protocol.MsgCardDealt:
		if p, err := codec.ParsePayload[protocol.CardDealtPayload](msg); err == nil {
			ts.CardCounter.Deduct(p.Card)
			ts.setHand(p.PlayerID, p.Hand)
		}
	case protocol.MsgPlayerStood:
		if p, err := codec.ParsePayload[protocol.PlayerStoodPayload](msg); err == nil {
			ts.setHand(p.PlayerID, p.Hand)
		}
	case protocol.MsgPlayerDoubledDown:
		if p, err := codec.ParsePayload[protocol.PlayerDoubledDownPayload](msg); err == nil {
			ts.CardCounter.Deduct(p.Card)
			ts.setHand(p.PlayerID, p.Hand)
			if p.PlayerID == ts.PlayerID {
				ts.Balance = p.Balance
			}
		}
	case protocol.MsgNextPlayer:
		if p, err := codec.ParsePayload[protocol.NextPlayerPayload](msg); err == nil {
			ts.CurrentTurn = p.PlayerID
		}
	case protocol.MsgDealerTurn:
		if p, err := codec.ParsePayload[protocol.DealerTurnPayload](msg); err == nil {
			// 明牌已在发牌时扣除，这里扣除暗牌和补牌
			if len(p.Dealer.Cards) > 1 {
				ts.CardCounter.DeductAll(p.Dealer.Cards[1:])
			}
			ts.Dealer = p.Dealer
			ts.CurrentTurn = ""
		}

	case protocol.MsgDiceRolled:
		if p, err := codec.ParsePayload[protocol.DiceRollInfo](msg); err == nil {
			ts.LastRoll = p
		}
	case protocol.MsgGameComplete:
		if p, err := codec.ParsePayload[protocol.GameCompletePayload](msg); err == nil {
			ts.CurrentTurn = ""
			for i := range p.Results {
				if p.Results[i].PlayerID == ts.PlayerID {
					result := p.Results[i]
					ts.LastResult = &result
					ts.Balance = result.Balance
				}
			}
		}
	}
}

func (ts *TableState) setRoom(room protocol.RoomSnapshot) {
	ts.Room = &room
	ts.clearRound()
	if room.Round == nil {
		return
	}
	ts.CurrentTurn = room.Round.CurrentTurn
	for _, h := range room.Round.Hands {
		ts.setHand(h.PlayerID, h)
	}
	if room.Round.Dealer != nil {
		ts.Dealer = *room.Round.Dealer
	}
}

func (ts *TableState) setHand(playerID string, hand protocol.HandInfo) {
	switch playerID {
	case ts.PlayerID:
		ts.Hand = hand
	case rule.DealerID:
		ts.Dealer = hand
	}
}

// countVisible 中途入座时扣除桌面上已亮出的牌
func (ts *TableState) countVisible() {
	if ts.Room == nil || ts.Room.Round == nil {
		return
	}
	for _, h := range ts.Room.Round.Hands {
		ts.CardCounter.DeductAll(h.Cards)
	}
	if ts.Room.Round.Dealer != nil {
		ts.CardCounter.DeductAll(ts.Room.Round.Dealer.Cards)
	}
}

func (ts *TableState) clearRound() {
	ts.Hand = protocol.HandInfo{}
	ts.Dealer = protocol.HandInfo{}
	ts.CurrentTurn = ""
}
