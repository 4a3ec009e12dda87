package codec

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Uwaniumnya/crystal-social/internal/apperrors"
	"github.com/Uwaniumnya/crystal-social/internal/protocol"
)

func TestNewMessage_FillsEnvelope(t *testing.T) {
	t.Parallel()

	msg, err := NewMessage(protocol.MsgNextPlayer, protocol.NextPlayerPayload{PlayerID: "p2"})
	require.NoError(t, err)
	assert.NotEmpty(t, msg.ID)
	assert.Positive(t, msg.Timestamp)
	assert.Equal(t, protocol.MsgNextPlayer, msg.Type)
	assert.JSONEq(t, `{"playerId":"p2"}`, string(msg.Data))

	empty, err := NewMessage(protocol.MsgPong, nil)
	require.NoError(t, err)
	assert.Nil(t, empty.Data)
}

func TestEncode_WireShape(t *testing.T) {
	t.Parallel()

	msg := &protocol.Message{
		ID:           "m1",
		Type:         protocol.MsgHit,
		FromPlayerID: "p1",
		Timestamp:    1700000000000,
	}
	data, err := Encode(msg)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"m1","type":"hit","fromPlayerId":"p1","timestamp":1700000000000}`, string(data))
	assert.NotEqual(t, byte('\n'), data[len(data)-1])
}

func TestDecode_Errors(t *testing.T) {
	t.Parallel()

	_, err := Decode([]byte("{not json"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidMessage)

	_, err = Decode([]byte(`{"id":"x"}`))
	assert.ErrorIs(t, err, apperrors.ErrInvalidMessage)
}

func TestDecodeFrame_Commands(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		frame string
		want  Command
	}{
		{
			name:  "authenticate",
			frame: `{"type":"authenticate","data":{"playerId":"p1","name":" Alice ","credits":500}}`,
			want:  Authenticate{protocol.AuthenticatePayload{PlayerID: "p1", Name: "Alice", Credits: ptr(int64(500))}},
		},
		{
			name:  "playerJoin alias",
			frame: `{"type":"playerJoin","data":{"name":"Bob"}}`,
			want:  Authenticate{protocol.AuthenticatePayload{Name: "Bob"}},
		},
		{
			name:  "create room",
			frame: `{"type":"createRoom","data":{"name":"High rollers","game":"dice","minBet":50,"maxBet":500,"maxPlayers":4}}`,
			want:  CreateRoom{protocol.CreateRoomPayload{Name: "High rollers", Game: "dice", MinBet: 50, MaxBet: 500, MaxPlayers: 4}},
		},
		{
			name:  "join room",
			frame: `{"type":"joinRoom","data":{"roomId":"r1"}}`,
			want:  JoinRoom{RoomID: "r1"},
		},
		{
			name:  "leave room without data",
			frame: `{"type":"leaveRoom"}`,
			want:  LeaveRoom{},
		},
		{
			name:  "place bet",
			frame: `{"type":"placeBet","data":{"roomId":"r1","betType":"big","amount":100}}`,
			want:  PlaceBet{RoomID: "r1", BetType: "big", Amount: 100},
		},
		{
			name:  "remove bet",
			frame: `{"type":"removeBet","data":{"betType":"odd"}}`,
			want:  RemoveBet{BetType: "odd"},
		},
		{name: "hit", frame: `{"type":"hit"}`, want: Hit{}},
		{name: "stand", frame: `{"type":"stand","data":null}`, want: Stand{}},
		{name: "double down", frame: `{"type":"doubleDown","data":{}}`, want: DoubleDown{}},
		{
			name:  "start round",
			frame: `{"type":"startRound","data":{"roomId":"r9"}}`,
			want:  StartRound{RoomID: "r9"},
		},
		{
			name:  "chat trims",
			frame: `{"type":"chat","data":{"message":"  hi all  "}}`,
			want:  Chat{Message: "hi all"},
		},
		{name: "get rooms", frame: `{"type":"getRooms"}`, want: GetRooms{}},
		{
			name:  "leaderboard",
			frame: `{"type":"getLeaderboard","data":{"type":"daily","limit":5}}`,
			want:  GetLeaderboard{Board: "daily", Limit: 5},
		},
		{name: "stats", frame: `{"type":"getStats"}`, want: GetStats{}},
		{name: "history of current room", frame: `{"type":"getHistory"}`, want: GetHistory{}},
		{
			name:  "history",
			frame: `{"type":"getHistory","data":{"roomId":"r9","limit":3}}`,
			want:  GetHistory{RoomID: "r9", Limit: 3},
		},
		{name: "ping", frame: `{"type":"ping","data":{"timestamp":42}}`, want: Ping{Timestamp: 42}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cmd, err := DecodeFrame([]byte(tt.frame))
			require.NoError(t, err)
			assert.Equal(t, tt.want, cmd)
		})
	}
}

func TestDecodeFrame_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		frame string
		want  *apperrors.GameError
	}{
		{"unknown tag", `{"type":"splitHand"}`, apperrors.ErrInvalidMessage},
		{"bad data", `{"type":"placeBet","data":"oops"}`, apperrors.ErrInvalidMessage},
		{"join without room", `{"type":"joinRoom","data":{}}`, apperrors.ErrInvalidField},
		{"bet without type", `{"type":"placeBet","data":{"amount":10}}`, apperrors.ErrInvalidField},
		{"empty chat", `{"type":"chat","data":{"message":"   "}}`, apperrors.ErrInvalidField},
		{"negative history limit", `{"type":"getHistory","data":{"limit":-2}}`, apperrors.ErrInvalidField},
		{"negative credits", `{"type":"authenticate","data":{"credits":-1}}`, apperrors.ErrInvalidField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := DecodeFrame([]byte(tt.frame))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNewErrorFromError(t *testing.T) {
	t.Parallel()

	msg := NewErrorFromError(apperrors.Wrapf(apperrors.ErrBetOutOfRange, "bet must be between 10 and 1000"))
	assert.Equal(t, protocol.MsgError, msg.Type)

	var p protocol.ErrorPayload
	require.NoError(t, json.Unmarshal(msg.Data, &p))
	assert.Equal(t, protocol.ErrCodeBetOutOfRange, p.Code)
	assert.Equal(t, "validation", p.Kind)
	assert.Equal(t, "bet must be between 10 and 1000", p.Message)

	internal := NewErrorFromError(errors.New("redis down"))
	require.NoError(t, json.Unmarshal(internal.Data, &p))
	assert.Equal(t, protocol.ErrCodeInternal, p.Code)
	assert.Equal(t, "internal", p.Kind)
	assert.NotContains(t, p.Message, "redis")
}

func TestNewErrorMessage_KindFromCode(t *testing.T) {
	t.Parallel()

	var p protocol.ErrorPayload
	require.NoError(t, json.Unmarshal(NewErrorMessage(protocol.ErrCodeRoomFull).Data, &p))
	assert.Equal(t, "capacity", p.Kind)
	assert.Equal(t, protocol.ErrorMessages[protocol.ErrCodeRoomFull], p.Message)
}

func ptr[T any](v T) *T { return &v }
