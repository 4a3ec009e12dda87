package card

import (
	"strconv"
)

// Suit 定义花色
type Suit int

// Rank 定义点数
type Rank int

// CardColor 定义牌的颜色
type CardColor int

const (
	Black CardColor = iota
	Red
)

// Card 定义一张牌，发出后不可变
type Card struct {
	Suit Suit
	Rank Rank
}

const (
	Spade   Suit = iota // 黑桃
	Heart               // 红心
	Club                // 梅花
	Diamond             // 方块
)

// SuitCount 花色数量
const SuitCount = 4

// suitSymbols 花色符号映射表
var suitSymbols = map[Suit]string{
	Spade:   "♠",
	Heart:   "♥",
	Club:    "♣",
	Diamond: "♦",
}

// suitNames 花色名称（线上协议使用）
var suitNames = map[Suit]string{
	Spade:   "spades",
	Heart:   "hearts",
	Club:    "clubs",
	Diamond: "diamonds",
}

func (s Suit) String() string {
	if symbol, ok := suitSymbols[s]; ok {
		return symbol
	}
	return ""
}

// Name 返回花色名称
func (s Suit) Name() string {
	return suitNames[s]
}

const (
	RankA Rank = iota + 1 // Ace
	Rank2
	Rank3
	Rank4
	Rank5
	Rank6
	Rank7
	Rank8
	Rank9
	Rank10
	RankJ // Jack
	RankQ // Queen
	RankK // King
)

// RankCount 点数数量
const RankCount = 13

// rankNames 牌面值字符串映射表
var rankNames = map[Rank]string{
	RankA: "A",
	RankJ: "J",
	RankQ: "Q",
	RankK: "K",
}

func (r Rank) String() string {
	if name, ok := rankNames[r]; ok {
		return name
	}
	return strconv.Itoa(int(r))
}

// IsFace 是否为人头牌 (J/Q/K)
func (r Rank) IsFace() bool {
	return r >= RankJ && r <= RankK
}

// Color 返回牌的颜色
func (c Card) Color() CardColor {
	if c.Suit == Heart || c.Suit == Diamond {
		return Red
	}
	return Black
}

func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// NewDeck 按花色、点数顺序生成一副 52 张的牌
func NewDeck() []Card {
	deck := make([]Card, 0, SuitCount*RankCount)
	for s := Spade; s <= Diamond; s++ {
		for r := RankA; r <= RankK; r++ {
			deck = append(deck, Card{Suit: s, Rank: r})
		}
	}
	return deck
}
