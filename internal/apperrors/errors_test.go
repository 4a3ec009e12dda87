package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Uwaniumnya/crystal-social/internal/protocol"
)

func TestGameError_IsMatchesByCode(t *testing.T) {
	t.Parallel()

	err := Wrapf(ErrBetOutOfRange, "bet must be between %d and %d", 10, 1000)
	assert.ErrorIs(t, err, ErrBetOutOfRange)
	assert.NotErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, "bet must be between 10 and 1000", err.Error())

	wrapped := fmt.Errorf("place bet: %w", err)
	assert.ErrorIs(t, wrapped, ErrBetOutOfRange)
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"validation", ErrBetOutOfRange, KindValidation},
		{"state", ErrNotYourTurn, KindState},
		{"resource", ErrRoomNotFound, KindResource},
		{"capacity", ErrRoomFull, KindCapacity},
		{"funds", ErrInsufficientFunds, KindFunds},
		{"wrapped", fmt.Errorf("join: %w", ErrRoomFull), KindCapacity},
		{"plain", errors.New("boom"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestPredefinedErrorsHaveMessages(t *testing.T) {
	t.Parallel()

	for _, err := range []*GameError{ErrRoomNotFound, ErrRoomFull, ErrWrongPhase, ErrCannotDouble} {
		assert.NotEmpty(t, err.Message, err.Code)
		assert.Equal(t, protocol.ErrorMessages[err.Code], err.Message)
	}
}

func TestLookup(t *testing.T) {
	t.Parallel()

	e, ok := Lookup(protocol.ErrCodeRoomFull)
	assert.True(t, ok)
	assert.Same(t, ErrRoomFull, e)

	_, ok = Lookup("NOPE")
	assert.False(t, ok)
}
