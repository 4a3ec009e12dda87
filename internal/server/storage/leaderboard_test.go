package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLeaderboardManager(t *testing.T) (*LeaderboardManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	lm := NewLeaderboardManager(client)
	fixed := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	lm.now = func() time.Time { return fixed }
	return lm, mr
}

func TestLeaderboard_RecordRoundResult_NewPlayer(t *testing.T) {
	t.Parallel()

	lm, _ := newTestLeaderboardManager(t)
	ctx := context.Background()

	require.NoError(t, lm.RecordRoundResult(ctx, "p1", "Alice", 100, 250))

	stats, err := lm.GetPlayerStats(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.Equal(t, "Alice", stats.PlayerName)
	assert.Equal(t, int64(1), stats.RoundsPlayed)
	assert.Equal(t, int64(1), stats.RoundsWon)
	assert.Equal(t, int64(150), stats.NetWinnings)
	assert.Equal(t, int64(150), stats.BiggestWin)
	assert.Equal(t, 1, stats.CurrentStreak)
}

func TestLeaderboard_Streaks(t *testing.T) {
	t.Parallel()

	lm, _ := newTestLeaderboardManager(t)
	ctx := context.Background()

	require.NoError(t, lm.RecordRoundResult(ctx, "p1", "Alice", 100, 200))
	require.NoError(t, lm.RecordRoundResult(ctx, "p1", "Alice", 100, 200))
	require.NoError(t, lm.RecordRoundResult(ctx, "p1", "Alice", 100, 100)) // push
	require.NoError(t, lm.RecordRoundResult(ctx, "p1", "Alice", 100, 0))

	stats, err := lm.GetPlayerStats(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.RoundsPlayed)
	assert.Equal(t, int64(2), stats.RoundsWon)
	assert.Equal(t, int64(1), stats.RoundsLost)
	assert.Equal(t, -1, stats.CurrentStreak)
	assert.Equal(t, 2, stats.MaxWinStreak)
	assert.Equal(t, int64(100), stats.NetWinnings)
}

func TestLeaderboard_Ranking(t *testing.T) {
	t.Parallel()

	lm, mr := newTestLeaderboardManager(t)
	ctx := context.Background()

	require.NoError(t, lm.RecordRoundResult(ctx, "p1", "Alice", 100, 200)) // +100
	require.NoError(t, lm.RecordRoundResult(ctx, "p2", "Bob", 100, 350))   // +250
	require.NoError(t, lm.RecordRoundResult(ctx, "p3", "Cleo", 100, 0))    // -100

	for _, board := range []string{BoardTotal, BoardDaily, BoardWeekly} {
		entries, err := lm.GetLeaderboard(ctx, board, 10)
		require.NoError(t, err, board)
		require.Len(t, entries, 3, board)
		assert.Equal(t, "p2", entries[0].PlayerID, board)
		assert.Equal(t, 1, entries[0].Rank)
		assert.Equal(t, int64(250), entries[0].NetWinnings)
		assert.Equal(t, "p3", entries[2].PlayerID, board)
		assert.Equal(t, int64(-100), entries[2].NetWinnings)
	}

	top, err := lm.GetLeaderboard(ctx, BoardTotal, 1)
	require.NoError(t, err)
	assert.Len(t, top, 1)

	rank, err := lm.GetPlayerRank(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), rank)

	rank, err = lm.GetPlayerRank(ctx, "nobody")
	require.NoError(t, err)
	assert.Equal(t, int64(-1), rank)

	assert.True(t, mr.Exists("leaderboard:daily:2026-03-14"))
	assert.True(t, mr.Exists("leaderboard:weekly:2026-W11"))
	assert.Equal(t, dailyExpiration, mr.TTL("leaderboard:daily:2026-03-14"))
}

func TestLeaderboard_DefaultLimit(t *testing.T) {
	t.Parallel()

	lm, _ := newTestLeaderboardManager(t)
	ctx := context.Background()

	for i := range 15 {
		require.NoError(t, lm.RecordRoundResult(ctx, string(rune('a'+i)), "P", 10, int64(i)))
	}
	entries, err := lm.GetLeaderboard(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, entries, defaultLeaderboardLimit)
}
