package room

import (
	"slices"
	"time"

	"github.com/Uwaniumnya/crystal-social/internal/protocol"
	"github.com/Uwaniumnya/crystal-social/internal/protocol/convert"
	"github.com/Uwaniumnya/crystal-social/internal/server/storage"
)

// Snapshot 房间完整快照
func (r *Room) Snapshot() protocol.RoomSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot()
}

// History 最近 n 局摘要，新的在前
func (r *Room) History(n int) []protocol.RoundSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	n = min(n, len(r.history))
	out := make([]protocol.RoundSummary, 0, n)
	for i := len(r.history) - 1; i >= len(r.history)-n; i-- {
		out = append(out, r.history[i])
	}
	return out
}

// snapshot 调用方需持有锁
func (r *Room) snapshot() protocol.RoomSnapshot {
	s := protocol.RoomSnapshot{
		ID:          r.ID,
		Name:        r.Name,
		Game:        string(r.Game),
		HostID:      r.hostID,
		Status:      string(r.status),
		MinBet:      r.MinBet,
		MaxBet:      r.MaxBet,
		MaxPlayers:  r.MaxPlayers,
		Players:     r.playerInfos(),
		History:     slices.Clone(r.history),
		RollHistory: slices.Clone(r.rollHistory),
	}
	if r.status != StatusWaiting {
		info := r.roundInfo()
		s.Round = &info
	}
	return s
}

func (r *Room) playerInfos() []protocol.PlayerInfo {
	infos := make([]protocol.PlayerInfo, 0, len(r.order))
	for _, id := range r.order {
		if m := r.members[id]; m != nil {
			infos = append(infos, convert.PlayerToInfo(m.Player))
		}
	}
	return infos
}

// roundInfo 当前局状态；庄家暗牌在庄家回合前不公开
func (r *Room) roundInfo() protocol.RoundInfo {
	rd := r.round
	info := protocol.RoundInfo{
		Number:      rd.number,
		Bets:        make(map[string][]protocol.BetInfo, len(rd.bets)),
		CurrentTurn: rd.currentTurn(),
		Roll:        rd.roll,
	}
	for id := range rd.bets {
		info.Bets[id] = r.betInfos(id)
	}
	if r.Game == GameBlackjack && len(rd.order) > 0 {
		for _, id := range rd.order {
			if h := rd.hands[id]; h != nil {
				info.Hands = append(info.Hands, convert.HandToInfo(h))
			}
		}
		reveal := r.status == StatusDealerTurn || r.status == StatusComplete
		dealer := convert.DealerToInfo(rd.dealer, reveal)
		info.Dealer = &dealer
	}
	return info
}

// ListItem 大厅列表项；房间已关闭时返回 false
func (r *Room) ListItem() (protocol.RoomListItem, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return protocol.RoomListItem{}, false
	}
	return protocol.RoomListItem{
		ID:          r.ID,
		Name:        r.Name,
		Game:        string(r.Game),
		HostID:      r.hostID,
		Status:      string(r.status),
		PlayerCount: len(r.members),
		MaxPlayers:  r.MaxPlayers,
		MinBet:      r.MinBet,
		MaxBet:      r.MaxBet,
		Players:     r.playerInfos(),
	}, true
}

// RoomData 转换为 Redis 存储格式
func (r *Room) RoomData() *storage.RoomData {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.roomData()
}

// roomData 调用方需持有锁；房间已关闭时返回 nil
func (r *Room) roomData() *storage.RoomData {
	if r.closed {
		return nil
	}
	return &storage.RoomData{
		ID:         r.ID,
		Name:       r.Name,
		Game:       string(r.Game),
		HostID:     r.hostID,
		Status:     string(r.status),
		MinBet:     r.MinBet,
		MaxBet:     r.MaxBet,
		MaxPlayers: r.MaxPlayers,
		MemberIDs:  slices.Clone(r.order),
		Round:      r.round.number,
		CreatedAt:  r.CreatedAt.Unix(),
		UpdatedAt:  time.Now().Unix(),
	}
}
