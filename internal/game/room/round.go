package room

import (
	"log"
	"slices"
	"time"

	"github.com/Uwaniumnya/crystal-social/internal/apperrors"
	"github.com/Uwaniumnya/crystal-social/internal/game/rule"
	"github.com/Uwaniumnya/crystal-social/internal/protocol"
	"github.com/Uwaniumnya/crystal-social/internal/protocol/codec"
)

// do 在房间锁内执行命令，解锁后保存快照
func (r *Room) do(fn func() error) error {
	r.mu.Lock()
	err := fn()
	data := r.roomData()
	r.mu.Unlock()
	if err != nil {
		return err
	}
	r.mgr.persist(data)
	return nil
}

// PlaceBet 下注。同一类型再次下注会替换原下注（先退回原金额）。
func (r *Room) PlaceBet(playerID string, betType rule.BetType, amount int64) error {
	return r.do(func() error { return r.placeBet(playerID, betType, amount) })
}

func (r *Room) placeBet(playerID string, betType rule.BetType, amount int64) error {
	m, err := r.member(playerID)
	if err != nil {
		return err
	}
	if r.status != StatusWaiting && r.status != StatusBetting {
		return apperrors.ErrWrongPhase
	}
	if !r.acceptsBetType(betType) {
		return apperrors.Wrapf(apperrors.ErrInvalidBetType, "bet type %q is not accepted at a %s table", betType, r.Game)
	}
	if amount < r.MinBet || amount > r.MaxBet {
		return apperrors.Wrapf(apperrors.ErrBetOutOfRange, "bet must be between %d and %d", r.MinBet, r.MaxBet)
	}

	bets := r.round.bets[playerID]
	idx := slices.IndexFunc(bets, func(b Bet) bool { return b.Type == betType })
	var previous int64
	if idx >= 0 {
		previous = bets[idx].Amount
	}
	if available := m.Player.Balance() + previous; available < amount {
		return apperrors.Wrapf(apperrors.ErrInsufficientFunds, "insufficient balance: have %d, need %d", available, amount)
	}

	m.Player.Credit(previous)
	if err := m.Player.Debit(amount); err != nil {
		if previous > 0 {
			_ = m.Player.Debit(previous)
		}
		return err
	}

	if idx >= 0 {
		bets[idx].Amount = amount
	} else {
		bets = append(bets, Bet{Type: betType, Amount: amount})
	}
	r.round.bets[playerID] = bets
	if r.status == StatusWaiting {
		r.status = StatusBetting
	}
	r.touch()

	r.broadcast(codec.MustNewMessage(protocol.MsgBetPlaced, protocol.BetPlacedPayload{
		Bet:     protocol.BetInfo{PlayerID: playerID, BetType: string(betType), Amount: amount},
		Balance: m.Player.Balance(),
		Bets:    r.betInfos(playerID),
	}))

	// 21 点：所有成员都下注后自动发牌
	if r.Game == GameBlackjack && r.allMembersBet() {
		r.deal()
	}
	return nil
}

// RemoveBet 撤回下注（仅限下注阶段）
func (r *Room) RemoveBet(playerID string, betType rule.BetType) error {
	return r.do(func() error { return r.removeBet(playerID, betType) })
}

func (r *Room) removeBet(playerID string, betType rule.BetType) error {
	m, err := r.member(playerID)
	if err != nil {
		return err
	}
	if r.status != StatusBetting {
		return apperrors.ErrWrongPhase
	}

	bets := r.round.bets[playerID]
	idx := slices.IndexFunc(bets, func(b Bet) bool { return b.Type == betType })
	if idx < 0 {
		return apperrors.ErrBetNotFound
	}

	m.Player.Credit(bets[idx].Amount)
	bets = slices.Delete(bets, idx, idx+1)
	if len(bets) == 0 {
		delete(r.round.bets, playerID)
	} else {
		r.round.bets[playerID] = bets
	}
	if len(r.round.bets) == 0 {
		r.status = StatusWaiting
	}
	r.touch()

	r.broadcast(codec.MustNewMessage(protocol.MsgBetRemoved, protocol.BetRemovedPayload{
		PlayerID: playerID,
		BetType:  string(betType),
		Balance:  m.Player.Balance(),
	}))
	return nil
}

func (r *Room) acceptsBetType(bt rule.BetType) bool {
	if r.Game == GameBlackjack {
		return bt == rule.BetMain
	}
	return rule.IsDiceBet(bt)
}

// allMembersBet 是否每个成员都已下注
func (r *Room) allMembersBet() bool {
	if len(r.members) == 0 {
		return false
	}
	for id := range r.members {
		if len(r.round.bets[id]) == 0 {
			return false
		}
	}
	return true
}

// betInfos 玩家本局的全部下注
func (r *Room) betInfos(playerID string) []protocol.BetInfo {
	bets := r.round.bets[playerID]
	infos := make([]protocol.BetInfo, len(bets))
	for i, b := range bets {
		infos[i] = protocol.BetInfo{PlayerID: playerID, BetType: string(b.Type), Amount: b.Amount}
	}
	return infos
}

// removeMember 移除成员并修正本局状态，返回被没收的下注额。调用方需持有锁。
func (r *Room) removeMember(playerID string) int64 {
	m := r.members[playerID]
	delete(r.members, playerID)
	r.order, _ = removeID(r.order, playerID)
	r.touch()

	var forfeited int64
	wasTurn := false
	if r.status.InRound() {
		rd := r.round
		forfeited = rd.wagered(playerID)
		if forfeited > 0 {
			m.Player.RecordRound(forfeited, 0)
		}
		wasTurn = r.status == StatusPlaying && rd.currentTurn() == playerID
		delete(rd.bets, playerID)
		delete(rd.hands, playerID)
		var idx int
		rd.order, idx = removeID(rd.order, playerID)
		if idx >= 0 && idx <= rd.turn {
			rd.turn--
		}
	}

	if len(r.members) == 0 {
		return forfeited
	}

	// 房主离开时移交给最早入座的成员
	if r.hostID == playerID {
		r.hostID = r.order[0]
		r.broadcast(codec.MustNewMessage(protocol.MsgHostChanged, protocol.HostChangedPayload{HostID: r.hostID}))
		log.Printf("👑 房间 %s 房主变更为 %s", r.ID, r.hostID)
	}

	r.broadcast(codec.MustNewMessage(protocol.MsgPlayerLeftRoom, protocol.PlayerLeftRoomPayload{
		PlayerID:   playerID,
		PlayerName: m.Player.Name,
		Room:       r.snapshot(),
	}))

	switch {
	case wasTurn:
		r.advance()
	case r.status == StatusBetting && len(r.round.bets) == 0:
		r.status = StatusWaiting
	case r.status == StatusBetting && r.Game == GameBlackjack && r.allMembersBet():
		r.deal()
	}
	return forfeited
}

// complete 本局结束：广播结果，记录历史，安排重置
func (r *Room) complete(results []protocol.PlayerResult, dealer *protocol.HandInfo, roll *protocol.DiceRollInfo, records []roundRecord) {
	rd := r.round
	r.status = StatusComplete
	rd.turn = -1

	summary := protocol.RoundSummary{
		Number:      rd.number,
		CompletedAt: time.Now().UnixMilli(),
		Roll:        roll,
		Payouts:     make(map[string]int64, len(results)),
	}
	if dealer != nil {
		summary.DealerValue = dealer.Value
	}
	for _, res := range results {
		summary.Payouts[res.PlayerID] = res.Payout
	}
	r.history = append(r.history, summary)
	if len(r.history) > roundHistoryLimit {
		r.history = slices.Clone(r.history[len(r.history)-roundHistoryLimit:])
	}
	r.rounds++

	r.broadcast(codec.MustNewMessage(protocol.MsgGameComplete, protocol.GameCompletePayload{
		RoomID:  r.ID,
		Round:   rd.number,
		Dealer:  dealer,
		Roll:    roll,
		Results: results,
	}))

	log.Printf("🏁 房间 %s 第 %d 局结算完成，%d 名玩家", r.ID, rd.number, len(results))

	r.scheduleReset()
	r.mgr.afterRound(r.ID, summary, records)
}

// scheduleReset 延迟回到等待状态；房间销毁时计时器会被停止
func (r *Room) scheduleReset() {
	if r.resetTimer != nil {
		r.resetTimer.Stop()
	}
	r.resetTimer = time.AfterFunc(r.mgr.opts.ResetDelay, r.reset)
}

// reset 计时器回调。房间已关闭或状态已变化时不做任何事。
func (r *Room) reset() {
	r.mu.Lock()
	if r.closed || r.status != StatusComplete {
		r.mu.Unlock()
		return
	}
	r.resetRound()
	r.broadcast(codec.MustNewMessage(protocol.MsgRoomReset, protocol.RoomPayload{Room: r.snapshot()}))
	data := r.roomData()
	r.mu.Unlock()

	r.mgr.persist(data)
}

// resetRound 整体替换本局状态
func (r *Room) resetRound() {
	r.round = newRound(r.rounds+1, r.mgr.opts.NewShoe())
	r.status = StatusWaiting
	if r.resetTimer != nil {
		r.resetTimer.Stop()
		r.resetTimer = nil
	}
}

// refundOutstanding 退回所有未结算的下注（本局作废）
func (r *Room) refundOutstanding() {
	if !r.status.InRound() {
		return
	}
	for id, bets := range r.round.bets {
		m := r.members[id]
		if m == nil {
			continue
		}
		for _, b := range bets {
			m.Player.Credit(b.Amount)
		}
	}
	r.round.bets = make(map[string][]Bet)
}

// abortRound 牌靴耗尽等无法继续时作废本局
func (r *Room) abortRound(err error) {
	log.Printf("⚠️ 房间 %s 第 %d 局作废: %v", r.ID, r.round.number, err)
	r.refundOutstanding()
	r.broadcast(codec.NewErrorFromError(err))
	r.resetRound()
	r.broadcast(codec.MustNewMessage(protocol.MsgRoomReset, protocol.RoomPayload{Room: r.snapshot()}))
}

// close 标记关闭并停止重置计时器。调用方需持有锁。
func (r *Room) close() {
	r.closed = true
	if r.resetTimer != nil {
		r.resetTimer.Stop()
		r.resetTimer = nil
	}
}
