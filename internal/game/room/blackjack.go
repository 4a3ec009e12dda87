package room

import (
	"slices"

	"github.com/Uwaniumnya/crystal-social/internal/apperrors"
	"github.com/Uwaniumnya/crystal-social/internal/game/card"
	"github.com/Uwaniumnya/crystal-social/internal/game/payout"
	"github.com/Uwaniumnya/crystal-social/internal/game/rule"
	"github.com/Uwaniumnya/crystal-social/internal/protocol"
	"github.com/Uwaniumnya/crystal-social/internal/protocol/codec"
	"github.com/Uwaniumnya/crystal-social/internal/protocol/convert"
)

// dealerHoleIndex 庄家暗牌位置
const dealerHoleIndex = 1

// draw 从本局牌靴抽一张
func (r *Room) draw() (card.Card, error) {
	c, err := r.round.shoe.Draw()
	if err != nil {
		return card.Card{}, apperrors.ErrShoeExhausted
	}
	return c, nil
}

// deal 按入座顺序给每位下注玩家发两张，再给庄家发两张（第二张暗牌）
func (r *Room) deal() {
	rd := r.round
	r.status = StatusDealing

	for _, id := range r.order {
		if len(rd.bets[id]) > 0 {
			rd.order = append(rd.order, id)
			rd.hands[id] = rule.NewHand(id)
		}
	}

	for _, id := range rd.order {
		h := rd.hands[id]
		for range 2 {
			c, err := r.draw()
			if err != nil {
				r.abortRound(err)
				return
			}
			h.Add(c)
			r.broadcast(codec.MustNewMessage(protocol.MsgCardDealt, protocol.CardDealtPayload{
				PlayerID: id,
				Card:     convert.CardToInfo(c),
				Hand:     convert.HandToInfo(h),
			}))
		}
		// 黑杰克自动停牌
		if h.IsNatural() {
			h.Standing = true
		}
	}

	for i := range 2 {
		c, err := r.draw()
		if err != nil {
			r.abortRound(err)
			return
		}
		rd.dealer.Add(c)
		info := convert.CardToInfo(c)
		if i == dealerHoleIndex {
			info = convert.HiddenCard()
		}
		r.broadcast(codec.MustNewMessage(protocol.MsgCardDealt, protocol.CardDealtPayload{
			PlayerID: rule.DealerID,
			Card:     info,
			Hand:     convert.DealerToInfo(rd.dealer, false),
		}))
	}

	r.status = StatusPlaying
	rd.turn = r.nextActive(0)
	r.broadcast(codec.MustNewMessage(protocol.MsgDealingComplete, protocol.RoomPayload{Room: r.snapshot()}))

	if rd.turn < 0 {
		r.dealerTurn()
		return
	}
	r.broadcast(codec.MustNewMessage(protocol.MsgNextPlayer, protocol.NextPlayerPayload{PlayerID: rd.currentTurn()}))
}

// nextActive 从 from 开始第一个还能行动的手牌下标，没有时返回 -1
func (r *Room) nextActive(from int) int {
	rd := r.round
	for i := from; i < len(rd.order); i++ {
		if h := rd.hands[rd.order[i]]; h != nil && h.IsActive() {
			return i
		}
	}
	return -1
}

// advance 轮到下一位；所有手牌结束后进入庄家回合
func (r *Room) advance() {
	rd := r.round
	rd.turn = r.nextActive(rd.turn + 1)
	if rd.turn < 0 {
		r.dealerTurn()
		return
	}
	r.broadcast(codec.MustNewMessage(protocol.MsgNextPlayer, protocol.NextPlayerPayload{PlayerID: rd.currentTurn()}))
}

// turnHand 校验请求方是当前行动玩家，返回其手牌
func (r *Room) turnHand(playerID string) (*rule.Hand, error) {
	if _, err := r.member(playerID); err != nil {
		return nil, err
	}
	if r.Game != GameBlackjack || r.status != StatusPlaying {
		return nil, apperrors.ErrWrongPhase
	}
	if r.round.currentTurn() != playerID {
		return nil, apperrors.ErrNotYourTurn
	}
	return r.round.hands[playerID], nil
}

// Hit 要牌；爆牌或到 21 点自动轮转
func (r *Room) Hit(playerID string) error {
	return r.do(func() error {
		h, err := r.turnHand(playerID)
		if err != nil {
			return err
		}
		c, err := r.draw()
		if err != nil {
			r.abortRound(err)
			return nil
		}
		h.Add(c)
		r.touch()
		r.broadcast(codec.MustNewMessage(protocol.MsgCardDealt, protocol.CardDealtPayload{
			PlayerID: playerID,
			Card:     convert.CardToInfo(c),
			Hand:     convert.HandToInfo(h),
		}))

		if h.IsBust() || h.Value() == rule.BlackjackTarget {
			h.Standing = !h.IsBust()
			r.advance()
		}
		return nil
	})
}

// Stand 停牌
func (r *Room) Stand(playerID string) error {
	return r.do(func() error {
		h, err := r.turnHand(playerID)
		if err != nil {
			return err
		}
		h.Standing = true
		r.touch()
		r.broadcast(codec.MustNewMessage(protocol.MsgPlayerStood, protocol.PlayerStoodPayload{
			PlayerID: playerID,
			Hand:     convert.HandToInfo(h),
		}))
		r.advance()
		return nil
	})
}

// DoubleDown 加倍：只限两张牌，余额需能再付一次本金；只再要一张牌并强制停牌。
// 加倍后的本金可以超过房间上限。
func (r *Room) DoubleDown(playerID string) error {
	return r.do(func() error {
		h, err := r.turnHand(playerID)
		if err != nil {
			return err
		}
		if !h.CanDouble() {
			return apperrors.ErrCannotDouble
		}

		m := r.members[playerID]
		bets := r.round.bets[playerID]
		idx := slices.IndexFunc(bets, func(b Bet) bool { return b.Type == rule.BetMain })
		if idx < 0 {
			return apperrors.ErrBetNotFound
		}
		if err := m.Player.Debit(bets[idx].Amount); err != nil {
			return err
		}
		bets[idx].Amount *= 2

		c, err := r.draw()
		if err != nil {
			r.abortRound(err)
			return nil
		}
		h.Add(c)
		h.Doubled = true
		h.Standing = !h.IsBust()
		r.touch()

		r.broadcast(codec.MustNewMessage(protocol.MsgPlayerDoubledDown, protocol.PlayerDoubledDownPayload{
			PlayerID: playerID,
			Card:     convert.CardToInfo(c),
			Hand:     convert.HandToInfo(h),
			Stake:    bets[idx].Amount,
			Balance:  m.Player.Balance(),
		}))
		r.advance()
		return nil
	})
}

// dealerTurn 庄家按规则要牌后结算，每局只会进入一次
func (r *Room) dealerTurn() {
	if r.status != StatusPlaying {
		return
	}
	rd := r.round
	r.status = StatusDealerTurn
	rd.turn = -1

	if _, err := rule.PlayDealer(rd.dealer, r.draw); err != nil {
		r.abortRound(err)
		return
	}
	dealer := convert.HandToInfo(rd.dealer)
	r.broadcast(codec.MustNewMessage(protocol.MsgDealerTurn, protocol.DealerTurnPayload{Dealer: dealer}))

	r.settleBlackjack(dealer)
}

// settleBlackjack 按结算表返还并更新统计
func (r *Room) settleBlackjack(dealer protocol.HandInfo) {
	rd := r.round
	results := make([]protocol.PlayerResult, 0, len(rd.order))
	records := make([]roundRecord, 0, len(rd.order))

	for _, id := range rd.order {
		m, h := r.members[id], rd.hands[id]
		if m == nil || h == nil {
			continue
		}

		res := protocol.PlayerResult{PlayerID: id, PlayerName: m.Player.Name}
		for _, b := range rd.bets[id] {
			outcome, returned := payout.Blackjack(h, rd.dealer, b.Amount)
			res.Outcome = string(outcome)
			res.Wagered += b.Amount
			res.Payout += returned
			res.Bets = append(res.Bets, protocol.BetResult{
				BetType: string(b.Type),
				Amount:  b.Amount,
				Payout:  returned,
				Won:     returned > b.Amount,
			})
		}

		m.Player.Credit(res.Payout)
		m.Player.RecordRound(res.Wagered, res.Payout)

		hand := convert.HandToInfo(h)
		res.Hand = &hand
		res.Net = res.Payout - res.Wagered
		res.Balance = m.Player.Balance()
		results = append(results, res)
		records = append(records, roundRecord{playerID: id, name: m.Player.Name, wagered: res.Wagered, returned: res.Payout})
	}

	r.complete(results, &dealer, nil, records)
}
