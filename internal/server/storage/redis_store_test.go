package storage

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Uwaniumnya/crystal-social/internal/game/player"
	"github.com/Uwaniumnya/crystal-social/internal/protocol"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client), mr
}

func TestRedisStore_SaveDeleteRoom(t *testing.T) {
	t.Parallel()

	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	roomData := &RoomData{
		ID:         "room-1",
		Name:       "Alice's table",
		Game:       "blackjack",
		HostID:     "p1",
		Status:     "waiting",
		MinBet:     10,
		MaxBet:     1000,
		MaxPlayers: 6,
		MemberIDs:  []string{"p1", "p2"},
		CreatedAt:  time.Now().Unix(),
	}

	require.NoError(t, store.SaveRoom(ctx, roomData))
	assert.True(t, mr.Exists("room:room-1"))
	assert.Equal(t, roomExpiration, mr.TTL("room:room-1"))

	// 写入的是 JSON，运维可以直接 GET 查看
	raw, err := mr.Get("room:room-1")
	require.NoError(t, err)
	var loaded RoomData
	require.NoError(t, json.Unmarshal([]byte(raw), &loaded))
	assert.Equal(t, *roomData, loaded)

	require.NoError(t, store.AppendRoundHistory(ctx, "room-1", protocol.RoundSummary{Number: 1}))
	require.NoError(t, store.DeleteRoom(ctx, "room-1"))
	assert.False(t, mr.Exists("room:room-1"))
	assert.False(t, mr.Exists("room:history:room-1"))
}

func TestRedisStore_SaveNilRoom(t *testing.T) {
	t.Parallel()

	store, _ := newTestRedisStore(t)
	assert.NoError(t, store.SaveRoom(context.Background(), nil))
}

func TestRedisStore_RoundHistoryIsCapped(t *testing.T) {
	t.Parallel()

	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	for i := 1; i <= historyLimit+5; i++ {
		require.NoError(t, store.AppendRoundHistory(ctx, "r1", protocol.RoundSummary{
			Number:  i,
			Payouts: map[string]int64{"p1": int64(i)},
		}))
	}

	all, err := store.RoundHistory(ctx, "r1", 1000)
	require.NoError(t, err)
	assert.Len(t, all, historyLimit)
	assert.Equal(t, historyLimit+5, all[0].Number, "newest first")

	recent, err := store.RoundHistory(ctx, "r1", 3)
	require.NoError(t, err)
	assert.Len(t, recent, 3)

	none, err := store.RoundHistory(ctx, "r1", 0)
	require.NoError(t, err)
	assert.Empty(t, none)

	require.NoError(t, store.DeleteRoom(ctx, "r1"))
	all, err = store.RoundHistory(ctx, "r1", 10)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestRedisStore_Profile(t *testing.T) {
	t.Parallel()

	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	missing, err := store.LoadProfile(ctx, "ghost")
	require.NoError(t, err)
	assert.Nil(t, missing)

	p := player.New("p1", "Alice", 750)
	p.RecordRound(100, 200)
	require.NoError(t, store.SaveProfile(ctx, p.Profile()))

	loaded, err := store.LoadProfile(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, p.Profile(), *loaded)
}

func TestRedisStore_ConnectionError(t *testing.T) {
	t.Parallel()

	store, mr := newTestRedisStore(t)
	mr.Close()

	err := store.SaveRoom(context.Background(), &RoomData{ID: "x"})
	assert.Error(t, err)
	_, err = store.LoadProfile(context.Background(), "x")
	assert.Error(t, err)
}
