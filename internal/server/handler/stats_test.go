package handler

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Uwaniumnya/crystal-social/internal/game/room"
	"github.com/Uwaniumnya/crystal-social/internal/game/rule"
	"github.com/Uwaniumnya/crystal-social/internal/protocol"
	"github.com/Uwaniumnya/crystal-social/internal/server/storage"
)

func newLeaderboard(t *testing.T) (*storage.LeaderboardManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return storage.NewLeaderboardManager(client), mr
}

func TestGetStats(t *testing.T) {
	t.Parallel()

	lb, _ := newLeaderboard(t)
	ctx := context.Background()
	require.NoError(t, lb.RecordRoundResult(ctx, "p2", "Bob", 100, 300))
	require.NoError(t, lb.RecordRoundResult(ctx, "p1", "Alice", 100, 200))

	f := newFixture(t, HandlerDeps{Leaderboard: lb}, room.Options{})
	alice := f.login(t, "p1", "Alice")
	alice.GetPlayer().RecordRound(100, 200)
	carol := f.login(t, "p3", "Carol")

	f.send(alice, protocol.MsgGetStats, nil)
	got := payloadOf[protocol.StatsPayload](t, alice.LastOfType(protocol.MsgStats))
	assert.Equal(t, protocol.StatsPayload{
		PlayerID:    "p1",
		PlayerName:  "Alice",
		Balance:     1000,
		GamesPlayed: 1,
		GamesWon:    1,
		TotalBet:    100,
		TotalWon:    200,
		Rank:        2,
	}, *got)

	f.send(carol, protocol.MsgGetStats, nil)
	assert.Equal(t, int64(-1), payloadOf[protocol.StatsPayload](t, carol.LastOfType(protocol.MsgStats)).Rank)
}

func TestGetStats_WithoutLeaderboard(t *testing.T) {
	t.Parallel()

	f := newFixture(t, HandlerDeps{}, room.Options{})
	alice := f.login(t, "p1", "Alice")

	f.send(alice, protocol.MsgGetStats, nil)

	got := payloadOf[protocol.StatsPayload](t, alice.LastOfType(protocol.MsgStats))
	assert.Equal(t, int64(-1), got.Rank)
	assert.Equal(t, int64(1000), got.Balance)
}

func TestGetLeaderboard(t *testing.T) {
	t.Parallel()

	lb, _ := newLeaderboard(t)
	ctx := context.Background()
	require.NoError(t, lb.RecordRoundResult(ctx, "p1", "Alice", 100, 250))
	require.NoError(t, lb.RecordRoundResult(ctx, "p2", "Bob", 100, 0))

	f := newFixture(t, HandlerDeps{Leaderboard: lb}, room.Options{})
	alice := f.login(t, "p1", "Alice")

	tests := []struct {
		name  string
		board string
		want  string
	}{
		{"defaults to total", "", storage.BoardTotal},
		{"daily", storage.BoardDaily, storage.BoardDaily},
		{"weekly", storage.BoardWeekly, storage.BoardWeekly},
	}
	for _, tt := range tests {
		alice.Reset()
		f.send(alice, protocol.MsgGetLeaderboard, protocol.GetLeaderboardPayload{Type: tt.board})

		got := payloadOf[protocol.LeaderboardPayload](t, alice.LastOfType(protocol.MsgLeaderboard))
		assert.Equal(t, tt.want, got.Type, tt.name)
		require.Len(t, got.Entries, 2, tt.name)
		assert.Equal(t, "p1", got.Entries[0].PlayerID, tt.name)
		assert.Equal(t, int64(150), got.Entries[0].NetWinnings, tt.name)
		assert.Equal(t, int64(-100), got.Entries[1].NetWinnings, tt.name)
	}

	f.send(alice, protocol.MsgGetLeaderboard, protocol.GetLeaderboardPayload{Type: "monthly"})
	assert.Equal(t, protocol.ErrCodeInvalidField, lastError(t, alice).Code)
}

func TestGetLeaderboard_Empty(t *testing.T) {
	t.Parallel()

	f := newFixture(t, HandlerDeps{}, room.Options{})
	alice := f.login(t, "p1", "Alice")

	f.send(alice, protocol.MsgGetLeaderboard, protocol.GetLeaderboardPayload{Type: "daily"})

	got := payloadOf[protocol.LeaderboardPayload](t, alice.LastOfType(protocol.MsgLeaderboard))
	assert.Equal(t, "daily", got.Type)
	assert.NotNil(t, got.Entries)
	assert.Empty(t, got.Entries)
}

func TestGetLeaderboard_StorageDown(t *testing.T) {
	t.Parallel()

	lb, mr := newLeaderboard(t)
	f := newFixture(t, HandlerDeps{Leaderboard: lb}, room.Options{})
	alice := f.login(t, "p1", "Alice")
	mr.Close()

	f.send(alice, protocol.MsgGetLeaderboard, protocol.GetLeaderboardPayload{})

	errPayload := lastError(t, alice)
	assert.Equal(t, protocol.ErrCodeInternal, errPayload.Code)
	assert.NotContains(t, errPayload.Message, "127.0.0.1", "storage details stay on the server")
}

// 未配置 Redis 时读房间内存中的历史
func TestGetHistory_FromRoom(t *testing.T) {
	t.Parallel()

	f := newFixture(t, HandlerDeps{}, room.Options{RollDice: room.FixedRoll(rule.Roll{2, 2, 2})})
	alice := f.login(t, "p1", "Alice")
	roomID := f.openTable(t, protocol.CreateRoomPayload{Game: "dice"}, alice)

	// 还没有结算过
	f.send(alice, protocol.MsgGetHistory, nil)
	got := payloadOf[protocol.HistoryPayload](t, alice.LastOfType(protocol.MsgHistory))
	assert.Equal(t, roomID, got.RoomID)
	assert.Empty(t, got.Rounds)

	f.send(alice, protocol.MsgPlaceBet, protocol.PlaceBetPayload{BetType: "small", Amount: 100})
	f.send(alice, protocol.MsgStartRound, protocol.RoomRefPayload{RoomID: roomID})
	require.NotNil(t, alice.LastOfType(protocol.MsgGameComplete))

	alice.Reset()
	f.send(alice, protocol.MsgGetHistory, protocol.GetHistoryPayload{RoomID: roomID, Limit: 5})
	got = payloadOf[protocol.HistoryPayload](t, alice.LastOfType(protocol.MsgHistory))
	require.Len(t, got.Rounds, 1)
	assert.Equal(t, 1, got.Rounds[0].Number)
	require.NotNil(t, got.Rounds[0].Roll)
	assert.Equal(t, 6, got.Rounds[0].Roll.Total)
	assert.True(t, got.Rounds[0].Roll.Triple)
}

// 配置了 Redis 时读 Redis，Redis 不可用时退回内存
func TestGetHistory_FromStore(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := storage.NewRedisStore(client)

	f := newFixture(t, HandlerDeps{History: store}, room.Options{})
	alice := f.login(t, "p1", "Alice")
	roomID := f.openTable(t, protocol.CreateRoomPayload{Game: "blackjack"}, alice)

	ctx := context.Background()
	for i := 1; i <= 4; i++ {
		require.NoError(t, store.AppendRoundHistory(ctx, roomID, protocol.RoundSummary{
			Number:      i,
			DealerValue: 16 + i,
			Payouts:     map[string]int64{"p1": int64(i * 10)},
		}))
	}

	tests := []struct {
		name  string
		limit int
		want  []int
	}{
		{"默认条数", 0, []int{4, 3, 2, 1}},
		{"限制条数", 2, []int{4, 3}},
		{"超过上限", 500, []int{4, 3, 2, 1}},
	}
	for _, tt := range tests {
		alice.Reset()
		f.send(alice, protocol.MsgGetHistory, protocol.GetHistoryPayload{Limit: tt.limit})

		got := payloadOf[protocol.HistoryPayload](t, alice.LastOfType(protocol.MsgHistory))
		numbers := make([]int, 0, len(got.Rounds))
		for _, r := range got.Rounds {
			numbers = append(numbers, r.Number)
		}
		assert.Equal(t, tt.want, numbers, tt.name)
	}

	mr.Close()
	alice.Reset()
	f.send(alice, protocol.MsgGetHistory, protocol.GetHistoryPayload{})
	got := payloadOf[protocol.HistoryPayload](t, alice.LastOfType(protocol.MsgHistory))
	assert.Empty(t, got.Rounds, "falls back to the room's own history")
}

func TestGetHistory_Errors(t *testing.T) {
	t.Parallel()

	f := newFixture(t, HandlerDeps{}, room.Options{})
	alice := f.login(t, "p1", "Alice")

	tests := []struct {
		name    string
		payload protocol.GetHistoryPayload
		want    protocol.ErrorCode
	}{
		{"不在房间", protocol.GetHistoryPayload{}, protocol.ErrCodeNotInRoom},
		{"房间不存在", protocol.GetHistoryPayload{RoomID: "nope"}, protocol.ErrCodeRoomNotFound},
		{"条数为负", protocol.GetHistoryPayload{Limit: -1}, protocol.ErrCodeInvalidField},
	}
	for _, tt := range tests {
		alice.Reset()
		f.send(alice, protocol.MsgGetHistory, tt.payload)
		assert.Equal(t, tt.want, lastError(t, alice).Code, tt.name)
	}
}
