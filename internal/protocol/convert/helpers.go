package convert

import (
	"time"

	"github.com/Uwaniumnya/crystal-social/internal/game/player"
	"github.com/Uwaniumnya/crystal-social/internal/game/rule"
	"github.com/Uwaniumnya/crystal-social/internal/protocol"
)

// PlayerToInfo 对外公开的玩家信息
func PlayerToInfo(p *player.Player) protocol.PlayerInfo {
	return protocol.PlayerInfo{
		ID:      p.ID,
		Name:    p.Name,
		Credits: p.Balance(),
	}
}

// RollToInfo 骰子结果
func RollToInfo(r rule.Roll, at time.Time) protocol.DiceRollInfo {
	info := protocol.DiceRollInfo{
		Dice:   [3]int(r),
		Total:  r.Total(),
		Triple: r.IsTriple(),
	}
	if !at.IsZero() {
		info.At = at.UnixMilli()
	}
	return info
}

// StatsToPayload 个人统计
func StatsToPayload(p *player.Player, rank int64) protocol.StatsPayload {
	s := p.Stats()
	return protocol.StatsPayload{
		PlayerID:    p.ID,
		PlayerName:  p.Name,
		Balance:     p.Balance(),
		GamesPlayed: s.GamesPlayed,
		GamesWon:    s.GamesWon,
		GamesLost:   s.GamesLost,
		TotalBet:    s.TotalBet,
		TotalWon:    s.TotalWon,
		Rank:        rank,
	}
}
