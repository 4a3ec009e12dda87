package payout

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Uwaniumnya/crystal-social/internal/game/card"
	"github.com/Uwaniumnya/crystal-social/internal/game/rule"
)

func hand(owner string, ranks ...card.Rank) *rule.Hand {
	h := rule.NewHand(owner)
	for i, r := range ranks {
		h.Add(card.Card{Suit: card.Suit(i % card.SuitCount), Rank: r})
	}
	return h
}

func TestBlackjack(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		player  *rule.Hand
		dealer  *rule.Hand
		stake   int64
		outcome Outcome
		paid    int64
	}{
		{
			name:    "natural against non-natural pays 250",
			player:  hand("p", card.RankA, card.RankK),
			dealer:  hand(rule.DealerID, card.Rank10, card.Rank9),
			stake:   100,
			outcome: OutcomeBlackjack,
			paid:    250,
		},
		{
			name:    "equal values push returns stake",
			player:  hand("p", card.Rank10, card.Rank8),
			dealer:  hand(rule.DealerID, card.Rank9, card.Rank9),
			stake:   100,
			outcome: OutcomePush,
			paid:    100,
		},
		{
			name:    "dealer bust pays 200",
			player:  hand("p", card.Rank10, card.Rank2),
			dealer:  hand(rule.DealerID, card.Rank10, card.Rank6, card.Rank9),
			stake:   100,
			outcome: OutcomeWin,
			paid:    200,
		},
		{
			name:    "higher value wins",
			player:  hand("p", card.Rank10, card.Rank9),
			dealer:  hand(rule.DealerID, card.Rank10, card.Rank7),
			stake:   50,
			outcome: OutcomeWin,
			paid:    100,
		},
		{
			name:    "lower value loses",
			player:  hand("p", card.Rank10, card.Rank7),
			dealer:  hand(rule.DealerID, card.Rank10, card.Rank8),
			stake:   100,
			outcome: OutcomeLose,
			paid:    0,
		},
		{
			name:    "player bust loses even if dealer busts",
			player:  hand("p", card.Rank10, card.Rank9, card.Rank5),
			dealer:  hand(rule.DealerID, card.Rank10, card.Rank6, card.Rank9),
			stake:   100,
			outcome: OutcomeBust,
			paid:    0,
		},
		{
			name:    "natural against natural pushes",
			player:  hand("p", card.RankA, card.RankQ),
			dealer:  hand(rule.DealerID, card.RankA, card.RankJ),
			stake:   100,
			outcome: OutcomePush,
			paid:    100,
		},
		{
			name:    "three-card 21 loses to dealer natural",
			player:  hand("p", card.Rank7, card.Rank7, card.Rank7),
			dealer:  hand(rule.DealerID, card.RankA, card.RankK),
			stake:   100,
			outcome: OutcomeLose,
			paid:    0,
		},
		{
			name:    "odd natural stake rounds down",
			player:  hand("p", card.RankA, card.RankK),
			dealer:  hand(rule.DealerID, card.Rank10, card.Rank7),
			stake:   15,
			outcome: OutcomeBlackjack,
			paid:    37,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			outcome, paid := Blackjack(tt.player, tt.dealer, tt.stake)
			assert.Equal(t, tt.outcome, outcome)
			assert.Equal(t, tt.paid, paid)
		})
	}
}

func TestDice(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int64(200), Dice(rule.BetBig, rule.Roll{6, 5, 1}, 100))
	assert.Equal(t, int64(0), Dice(rule.BetSmall, rule.Roll{6, 5, 1}, 100))
	assert.Equal(t, int64(20), Dice(rule.BetEven, rule.Roll{2, 2, 2}, 10))
	assert.Equal(t, int64(0), Dice(rule.BetOdd, rule.Roll{2, 2, 2}, 10))
}
