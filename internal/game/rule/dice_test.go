package rule

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRollDice_Range(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(5, 6))
	for range 1000 {
		r := RollDice(rng)
		for _, d := range r {
			assert.GreaterOrEqual(t, d, 1)
			assert.LessOrEqual(t, d, 6)
		}
		assert.GreaterOrEqual(t, r.Total(), 3)
		assert.LessOrEqual(t, r.Total(), 18)
	}
}

func TestDiceBetWins(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		roll Roll
		bet  BetType
		want bool
	}{
		{"big at 11", Roll{5, 5, 1}, BetBig, true},
		{"big at 17", Roll{6, 6, 5}, BetBig, true},
		{"big misses 18", Roll{6, 6, 6}, BetBig, false},
		{"small at 4", Roll{1, 1, 2}, BetSmall, true},
		{"small at 10", Roll{4, 4, 2}, BetSmall, true},
		{"small misses 3", Roll{1, 1, 1}, BetSmall, false},
		{"small misses 11", Roll{5, 5, 1}, BetSmall, false},
		{"odd", Roll{1, 2, 4}, BetOdd, true},
		{"odd misses even", Roll{2, 2, 2}, BetOdd, false},
		{"even", Roll{2, 2, 2}, BetEven, true},
		{"main is not a dice bet", Roll{2, 2, 2}, BetMain, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, DiceBetWins(tt.bet, tt.roll))
		})
	}
}

func TestIsDiceBet(t *testing.T) {
	t.Parallel()

	for _, bt := range []BetType{BetBig, BetSmall, BetOdd, BetEven} {
		assert.True(t, IsDiceBet(bt))
	}
	assert.False(t, IsDiceBet(BetMain))
	assert.False(t, IsDiceBet("triple"))
	assert.True(t, Roll{3, 3, 3}.IsTriple())
	assert.False(t, Roll{3, 3, 4}.IsTriple())
}
