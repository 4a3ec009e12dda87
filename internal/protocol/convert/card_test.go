package convert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Uwaniumnya/crystal-social/internal/game/card"
	"github.com/Uwaniumnya/crystal-social/internal/game/player"
	"github.com/Uwaniumnya/crystal-social/internal/game/rule"
	"github.com/Uwaniumnya/crystal-social/internal/protocol"
)

func TestCardToInfo(t *testing.T) {
	t.Parallel()

	info := CardToInfo(card.Card{Suit: card.Heart, Rank: card.RankQ})
	assert.Equal(t, protocol.CardInfo{Suit: "hearts", Rank: "Q"}, info)
	assert.Len(t, CardsToInfos(card.NewDeck()), 52)
}

func TestHandToInfo(t *testing.T) {
	t.Parallel()

	h := rule.NewHand("p1")
	h.Add(card.Card{Suit: card.Spade, Rank: card.RankA})
	h.Add(card.Card{Suit: card.Club, Rank: card.RankK})
	h.Standing = true

	info := HandToInfo(h)
	assert.Equal(t, "p1", info.PlayerID)
	assert.Equal(t, 21, info.Value)
	assert.True(t, info.IsNatural)
	assert.True(t, info.IsStanding)
	assert.False(t, info.IsBust)
	assert.True(t, info.IsSoft)
	require.Len(t, info.Cards, 2)
	assert.Equal(t, "A", info.Cards[0].Rank)
}

func TestDealerToInfo_HidesHoleCard(t *testing.T) {
	t.Parallel()

	d := rule.NewHand(rule.DealerID)
	d.Add(card.Card{Suit: card.Diamond, Rank: card.Rank9})
	d.Add(card.Card{Suit: card.Heart, Rank: card.RankA})

	hidden := DealerToInfo(d, false)
	require.Len(t, hidden.Cards, 2)
	assert.Equal(t, "9", hidden.Cards[0].Rank)
	assert.True(t, hidden.Cards[1].Hidden)
	assert.Empty(t, hidden.Cards[1].Rank)
	assert.Equal(t, 9, hidden.Value)
	assert.False(t, hidden.IsSoft, "soft ace stays hidden")

	shown := DealerToInfo(d, true)
	assert.Equal(t, 20, shown.Value)
	assert.True(t, shown.IsSoft)
	assert.False(t, shown.Cards[1].Hidden)
}

func TestRollToInfo(t *testing.T) {
	t.Parallel()

	at := time.UnixMilli(1700000000000)
	info := RollToInfo(rule.Roll{1, 2, 6}, at)
	assert.Equal(t, [3]int{1, 2, 6}, info.Dice)
	assert.Equal(t, 9, info.Total)
	assert.Equal(t, int64(1700000000000), info.At)

	assert.False(t, info.Triple)

	triple := RollToInfo(rule.Roll{1, 1, 1}, time.Time{})
	assert.Zero(t, triple.At)
	assert.True(t, triple.Triple)
}

func TestHandToInfo_SoftAndHard(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		ranks []card.Rank
		value int
		soft  bool
	}{
		{"soft 17", []card.Rank{card.RankA, card.Rank6}, 17, true},
		{"ace forced hard", []card.Rank{card.RankA, card.Rank6, card.RankK}, 17, false},
		{"no ace", []card.Rank{card.Rank10, card.Rank7}, 17, false},
		{"two aces", []card.Rank{card.RankA, card.RankA}, 12, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := rule.NewHand("p1")
			for _, r := range tt.ranks {
				h.Add(card.Card{Suit: card.Club, Rank: r})
			}
			info := HandToInfo(h)
			assert.Equal(t, tt.value, info.Value)
			assert.Equal(t, tt.soft, info.IsSoft)
		})
	}
}

func TestPlayerToInfoAndStats(t *testing.T) {
	t.Parallel()

	p := player.New("p1", "Alice", 900)
	p.RecordRound(100, 0)
	assert.Equal(t, protocol.PlayerInfo{ID: "p1", Name: "Alice", Credits: 900}, PlayerToInfo(p))

	stats := StatsToPayload(p, 3)
	assert.Equal(t, int64(1), stats.GamesLost)
	assert.Equal(t, int64(3), stats.Rank)
	assert.Equal(t, int64(900), stats.Balance)
}
