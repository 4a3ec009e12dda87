package room

import (
	"slices"
	"time"

	"github.com/Uwaniumnya/crystal-social/internal/apperrors"
	"github.com/Uwaniumnya/crystal-social/internal/game/payout"
	"github.com/Uwaniumnya/crystal-social/internal/protocol"
	"github.com/Uwaniumnya/crystal-social/internal/protocol/codec"
	"github.com/Uwaniumnya/crystal-social/internal/protocol/convert"
)

// StartRound 房主开骰（骰宝房间，至少有一笔下注）
func (r *Room) StartRound(playerID string) error {
	return r.do(func() error {
		if _, err := r.member(playerID); err != nil {
			return err
		}
		if r.Game != GameDice {
			return apperrors.Wrapf(apperrors.ErrWrongPhase, "blackjack rounds start once every player has bet")
		}
		if r.hostID != playerID {
			return apperrors.ErrNotHost
		}
		switch r.status {
		case StatusWaiting:
			return apperrors.ErrNoBets
		case StatusBetting:
		default:
			return apperrors.ErrWrongPhase
		}
		if len(r.round.bets) == 0 {
			return apperrors.ErrNoBets
		}

		r.touch()
		r.resolveDice()
		return nil
	})
}

// resolveDice 掷一次骰子，一次性结算所有下注
func (r *Room) resolveDice() {
	rd := r.round
	r.status = StatusResolving

	roll := r.mgr.opts.RollDice()
	info := convert.RollToInfo(roll, time.Now())
	rd.roll = &info
	r.rollHistory = append(r.rollHistory, info)
	if len(r.rollHistory) > rollHistoryLimit {
		r.rollHistory = slices.Clone(r.rollHistory[len(r.rollHistory)-rollHistoryLimit:])
	}
	r.broadcast(codec.MustNewMessage(protocol.MsgDiceRolled, info))

	results := make([]protocol.PlayerResult, 0, len(rd.bets))
	records := make([]roundRecord, 0, len(rd.bets))
	for _, id := range r.order {
		bets := rd.bets[id]
		if len(bets) == 0 {
			continue
		}
		m := r.members[id]

		res := protocol.PlayerResult{PlayerID: id, PlayerName: m.Player.Name}
		for _, b := range bets {
			returned := payout.Dice(b.Type, roll, b.Amount)
			res.Wagered += b.Amount
			res.Payout += returned
			res.Bets = append(res.Bets, protocol.BetResult{
				BetType: string(b.Type),
				Amount:  b.Amount,
				Payout:  returned,
				Won:     returned > 0,
			})
		}

		m.Player.Credit(res.Payout)
		m.Player.RecordRound(res.Wagered, res.Payout)

		switch {
		case res.Payout > res.Wagered:
			res.Outcome = string(payout.OutcomeWin)
		case res.Payout == res.Wagered:
			res.Outcome = string(payout.OutcomePush)
		default:
			res.Outcome = string(payout.OutcomeLose)
		}
		res.Net = res.Payout - res.Wagered
		res.Balance = m.Player.Balance()
		results = append(results, res)
		records = append(records, roundRecord{playerID: id, name: m.Player.Name, wagered: res.Wagered, returned: res.Payout})
	}

	r.complete(results, nil, &info, records)
}
