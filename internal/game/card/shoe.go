package card

import (
	"errors"
	"math/rand/v2"
)

// ErrShoeExhausted 牌靴已空
var ErrShoeExhausted = errors.New("shoe exhausted")

// Shoe 一局使用的洗好的牌。
// 随机源为 math/rand/v2，非密码学安全，仅适用于娱乐对局。
type Shoe struct {
	cards []Card
}

// NewShoe 生成洗好的一副牌；rng 为 nil 时使用全局随机源
func NewShoe(rng *rand.Rand) *Shoe {
	cards := NewDeck()
	shuffle(cards, rng)
	return &Shoe{cards: cards}
}

// shuffle Fisher-Yates 洗牌
func shuffle(cards []Card, rng *rand.Rand) {
	intN := rand.IntN
	if rng != nil {
		intN = rng.IntN
	}
	for i := len(cards) - 1; i >= 1; i-- {
		j := intN(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
}

// Draw 取出顶牌，牌靴为空时返回 ErrShoeExhausted
func (s *Shoe) Draw() (Card, error) {
	if len(s.cards) == 0 {
		return Card{}, ErrShoeExhausted
	}
	top := s.cards[len(s.cards)-1]
	s.cards = s.cards[:len(s.cards)-1]
	return top, nil
}

// Remaining 剩余张数
func (s *Shoe) Remaining() int {
	return len(s.cards)
}

// NewStackedShoe 按给定顺序组成牌靴，第一张最先发出。用于复盘与测试。
func NewStackedShoe(cards ...Card) *Shoe {
	stacked := make([]Card, len(cards))
	for i, c := range cards {
		stacked[len(cards)-1-i] = c
	}
	return &Shoe{cards: stacked}
}
