package card

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeck(t *testing.T) {
	t.Parallel()

	deck := NewDeck()
	require.Len(t, deck, 52)

	seen := make(map[Card]bool, len(deck))
	for _, c := range deck {
		assert.False(t, seen[c], "duplicate card %s", c)
		seen[c] = true
	}
}

func TestShoe_UniqueAndShrinks(t *testing.T) {
	t.Parallel()

	shoe := NewShoe(rand.New(rand.NewPCG(1, 2)))
	require.Equal(t, 52, shoe.Remaining())

	seen := make(map[Card]bool, 52)
	for i := 52; i > 0; i-- {
		c, err := shoe.Draw()
		require.NoError(t, err)
		assert.False(t, seen[c], "card %s drawn twice", c)
		seen[c] = true
		assert.Equal(t, i-1, shoe.Remaining())
	}
	assert.Len(t, seen, 52)

	_, err := shoe.Draw()
	assert.ErrorIs(t, err, ErrShoeExhausted)
	assert.Equal(t, 0, shoe.Remaining())
}

func TestShoe_SeededIsDeterministic(t *testing.T) {
	t.Parallel()

	a := NewShoe(rand.New(rand.NewPCG(7, 7)))
	b := NewShoe(rand.New(rand.NewPCG(7, 7)))
	for range 10 {
		ca, _ := a.Draw()
		cb, _ := b.Draw()
		assert.Equal(t, ca, cb)
	}
}

func TestShoe_Shuffles(t *testing.T) {
	t.Parallel()

	shoe := NewShoe(rand.New(rand.NewPCG(3, 4)))
	ordered := NewDeck()

	same := 0
	for i := len(ordered) - 1; i >= 0; i-- {
		c, err := shoe.Draw()
		require.NoError(t, err)
		if c == ordered[i] {
			same++
		}
	}
	assert.Less(t, same, 52)
}

func TestCard_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "A♠", Card{Suit: Spade, Rank: RankA}.String())
	assert.Equal(t, "10♥", Card{Suit: Heart, Rank: Rank10}.String())
	assert.Equal(t, "K♦", Card{Suit: Diamond, Rank: RankK}.String())
	assert.Equal(t, Red, Card{Suit: Heart, Rank: Rank2}.Color())
	assert.Equal(t, Black, Card{Suit: Club, Rank: Rank2}.Color())
	assert.Equal(t, "clubs", Club.Name())
	assert.True(t, RankQ.IsFace())
	assert.False(t, Rank10.IsFace())
}

func TestNewStackedShoe_DrawsInOrder(t *testing.T) {
	t.Parallel()

	first := Card{Suit: Spade, Rank: RankA}
	second := Card{Suit: Heart, Rank: RankK}
	shoe := NewStackedShoe(first, second)

	c, err := shoe.Draw()
	require.NoError(t, err)
	assert.Equal(t, first, c)
	c, err = shoe.Draw()
	require.NoError(t, err)
	assert.Equal(t, second, c)

	_, err = shoe.Draw()
	assert.ErrorIs(t, err, ErrShoeExhausted)
}
