package convert

import (
	"github.com/Uwaniumnya/crystal-social/internal/game/card"
	"github.com/Uwaniumnya/crystal-social/internal/game/rule"
	"github.com/Uwaniumnya/crystal-social/internal/protocol"
)

// CardToInfo 将 card.Card 转换为 protocol.CardInfo
func CardToInfo(c card.Card) protocol.CardInfo {
	return protocol.CardInfo{
		Suit: c.Suit.Name(),
		Rank: c.Rank.String(),
	}
}

// CardsToInfos 将 []card.Card 转换为 []protocol.CardInfo
func CardsToInfos(cards []card.Card) []protocol.CardInfo {
	infos := make([]protocol.CardInfo, len(cards))
	for i, c := range cards {
		infos[i] = CardToInfo(c)
	}
	return infos
}

// HiddenCard 庄家暗牌
func HiddenCard() protocol.CardInfo {
	return protocol.CardInfo{Hidden: true}
}

// HandToInfo 将手牌转换为 protocol.HandInfo
func HandToInfo(h *rule.Hand) protocol.HandInfo {
	return protocol.HandInfo{
		PlayerID:   h.Owner,
		Cards:      CardsToInfos(h.Cards),
		Value:      h.Value(),
		IsBust:     h.IsBust(),
		IsNatural:  h.IsNatural(),
		IsStanding: h.Standing,
		IsDoubled:  h.Doubled,
		IsSoft:     h.IsSoft(),
	}
}

// DealerToInfo 庄家手牌；未翻牌时只亮第一张，点数也只计明牌
func DealerToInfo(h *rule.Hand, reveal bool) protocol.HandInfo {
	if reveal || len(h.Cards) == 0 {
		return HandToInfo(h)
	}
	up := h.Cards[0]
	infos := make([]protocol.CardInfo, len(h.Cards))
	infos[0] = CardToInfo(up)
	for i := 1; i < len(infos); i++ {
		infos[i] = HiddenCard()
	}
	value, soft := rule.Evaluate([]card.Card{up})
	return protocol.HandInfo{
		PlayerID: h.Owner,
		Cards:    infos,
		Value:    value,
		IsSoft:   soft,
	}
}
