package client

import (
	"github.com/Uwaniumnya/crystal-social/internal/game/card"
	"github.com/Uwaniumnya/crystal-social/internal/game/rule"
	"github.com/Uwaniumnya/crystal-social/internal/protocol"
)

// CardCounter 记牌器：每局使用一副新牌，记录尚未亮出的牌
type CardCounter struct {
	remaining map[string]int // 牌面 -> 剩余张数
	total     int
}

// NewCardCounter 创建记牌器
func NewCardCounter() *CardCounter {
	cc := &CardCounter{remaining: make(map[string]int, card.RankCount)}
	cc.Reset()
	return cc
}

// Reset 恢复为完整的一副牌（52 张）
func (cc *CardCounter) Reset() {
	for r := card.RankA; r <= card.RankK; r++ {
		cc.remaining[r.String()] = card.SuitCount
	}
	cc.total = card.SuitCount * card.RankCount
}

// Deduct 扣除一张已亮出的牌，暗牌忽略
func (cc *CardCounter) Deduct(c protocol.CardInfo) {
	if c.Hidden {
		return
	}
	if cc.remaining[c.Rank] > 0 {
		cc.remaining[c.Rank]--
		cc.total--
	}
}

// DeductAll 扣除多张牌
func (cc *CardCounter) DeductAll(cards []protocol.CardInfo) {
	for _, c := range cards {
		cc.Deduct(c)
	}
}

// Remaining 某个牌面的剩余张数
func (cc *CardCounter) Remaining(rank string) int {
	return cc.remaining[rank]
}

// Total 剩余总张数（含庄家暗牌）
func (cc *CardCounter) Total() int {
	return cc.total
}

// BustChance 以当前点数再要一张牌爆牌的概率，handValue 按硬点数传入。
// 软手牌再要一张不会爆牌，由调用方判断。
func (cc *CardCounter) BustChance(handValue int) float64 {
	if cc.total == 0 {
		return 0
	}
	busting := 0
	for r := card.RankA; r <= card.RankK; r++ {
		if handValue+rule.CardValue(r) > rule.BlackjackTarget {
			busting += cc.remaining[r.String()]
		}
	}
	return float64(busting) / float64(cc.total)
}
