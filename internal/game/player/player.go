package player

import (
	"sync"

	"github.com/Uwaniumnya/crystal-social/internal/apperrors"
)

// Stats 玩家生涯统计
type Stats struct {
	GamesPlayed int64 `json:"gamesPlayed"`
	GamesWon    int64 `json:"gamesWon"`
	GamesLost   int64 `json:"gamesLost"`
	TotalBet    int64 `json:"totalBet"`
	TotalWon    int64 `json:"totalWon"`
}

// Profile 可持久化的玩家资料
type Profile struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Balance int64  `json:"balance"`
	Stats   Stats  `json:"stats"`
}

// Player 在线玩家。余额非负，只在下注扣除和结算返还时变化。
type Player struct {
	ID   string
	Name string

	mu      sync.Mutex
	balance int64
	stats   Stats
	roomID  string
}

// New 创建玩家
func New(id, name string, balance int64) *Player {
	if balance < 0 {
		balance = 0
	}
	return &Player{ID: id, Name: name, balance: balance}
}

// FromProfile 从持久化资料恢复玩家
func FromProfile(p Profile) *Player {
	pl := New(p.ID, p.Name, p.Balance)
	pl.stats = p.Stats
	return pl
}

// Balance 当前余额
func (p *Player) Balance() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.balance
}

// Debit 扣除下注金额
func (p *Player) Debit(amount int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if amount <= 0 {
		return apperrors.ErrBetOutOfRange
	}
	if amount > p.balance {
		return apperrors.Wrapf(apperrors.ErrInsufficientFunds,
			"insufficient balance: have %d, need %d", p.balance, amount)
	}
	p.balance -= amount
	return nil
}

// Credit 归还金额（结算或撤注）
func (p *Player) Credit(amount int64) {
	if amount <= 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.balance += amount
}

// RecordRound 记录一局结果：返还大于本金算赢，返还为 0 算输，平局两者都不计
func (p *Player) RecordRound(wagered, returned int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stats.GamesPlayed++
	p.stats.TotalBet += wagered
	p.stats.TotalWon += returned
	switch {
	case returned > wagered:
		p.stats.GamesWon++
	case returned == 0:
		p.stats.GamesLost++
	}
}

// Stats 生涯统计快照
func (p *Player) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// RoomID 当前所在房间，未入座为空
func (p *Player) RoomID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.roomID
}

// SetRoomID 设置所在房间
func (p *Player) SetRoomID(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.roomID = id
}

// Profile 导出持久化资料
func (p *Player) Profile() Profile {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Profile{ID: p.ID, Name: p.Name, Balance: p.balance, Stats: p.stats}
}
