//go:build !production

package room

import (
	"time"

	"github.com/Uwaniumnya/crystal-social/internal/game/card"
	"github.com/Uwaniumnya/crystal-social/internal/game/rule"
)

// FixedShoe 每局都按相同顺序发牌
func FixedShoe(cards ...card.Card) func() *card.Shoe {
	return func() *card.Shoe { return card.NewStackedShoe(cards...) }
}

// FixedRoll 每次都掷出相同点数
func FixedRoll(roll rule.Roll) func() rule.Roll {
	return func() rule.Roll { return roll }
}

// C 测试用的简写牌面
func C(rank card.Rank) card.Card {
	return card.Card{Suit: card.Spade, Rank: rank}
}

// SetIdleForTest 把房间最后活跃时间往前推
func (r *Room) SetIdleForTest(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastActivity = time.Now().Add(-d)
}

// CleanupForTest 立即执行一次空闲清理
func (rm *RoomManager) CleanupForTest() int {
	return rm.cleanup(time.Now())
}
