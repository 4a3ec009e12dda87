package rule

import (
	"github.com/Uwaniumnya/crystal-social/internal/game/card"
)

const (
	BlackjackTarget  = 21 // 目标点数
	DealerStandValue = 17 // 庄家停牌点数（软 17 也停）
	softAceBonus     = 10 // A 计 11 时比计 1 多出的点数
)

// DealerID 庄家手牌的所有者标识
const DealerID = "dealer"

// CardValue 单张牌的基础点数，A 按 1 计
func CardValue(r card.Rank) int {
	switch {
	case r == card.RankA:
		return 1
	case r >= card.Rank10:
		return 10
	default:
		return int(r)
	}
}

// Evaluate 计算手牌点数。A 先按 11 计，超过 21 时逐张降为 1。
// soft 表示仍有一张 A 按 11 计。
func Evaluate(cards []card.Card) (value int, soft bool) {
	aces := 0
	for _, c := range cards {
		if c.Rank == card.RankA {
			aces++
			value += CardValue(c.Rank) + softAceBonus
			continue
		}
		value += CardValue(c.Rank)
	}
	for value > BlackjackTarget && aces > 0 {
		value -= softAceBonus
		aces--
	}
	return value, aces > 0
}

// Hand 一名玩家（或庄家）本局的手牌
type Hand struct {
	Owner    string
	Cards    []card.Card
	Standing bool
	Doubled  bool
}

// NewHand 创建空手牌
func NewHand(owner string) *Hand {
	return &Hand{Owner: owner, Cards: make([]card.Card, 0, 4)}
}

// Add 加入一张牌
func (h *Hand) Add(c card.Card) {
	h.Cards = append(h.Cards, c)
}

// Value 当前点数
func (h *Hand) Value() int {
	v, _ := Evaluate(h.Cards)
	return v
}

// IsSoft 是否为软牌
func (h *Hand) IsSoft() bool {
	_, soft := Evaluate(h.Cards)
	return soft
}

// IsBust 是否爆牌
func (h *Hand) IsBust() bool {
	return h.Value() > BlackjackTarget
}

// IsNatural 是否为黑杰克（两张牌 21 点）
func (h *Hand) IsNatural() bool {
	return len(h.Cards) == 2 && h.Value() == BlackjackTarget
}

// IsActive 是否还能继续行动
func (h *Hand) IsActive() bool {
	return !h.Standing && !h.IsBust()
}

// CanDouble 只有两张牌的手牌可以加倍
func (h *Hand) CanDouble() bool {
	return len(h.Cards) == 2 && h.IsActive()
}

// DealerShouldHit 庄家点数低于 17 必须要牌
func DealerShouldHit(h *Hand) bool {
	return h.Value() < DealerStandValue
}

// PlayDealer 庄家按规则要牌直到停牌或爆牌，返回新抽的牌
func PlayDealer(h *Hand, draw func() (card.Card, error)) ([]card.Card, error) {
	var drawn []card.Card
	for DealerShouldHit(h) {
		c, err := draw()
		if err != nil {
			return drawn, err
		}
		h.Add(c)
		drawn = append(drawn, c)
	}
	h.Standing = !h.IsBust()
	return drawn, nil
}
