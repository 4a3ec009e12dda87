package room

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Uwaniumnya/crystal-social/internal/apperrors"
	"github.com/Uwaniumnya/crystal-social/internal/game/rule"
	"github.com/Uwaniumnya/crystal-social/internal/protocol"
	"github.com/Uwaniumnya/crystal-social/internal/protocol/codec"
	"github.com/Uwaniumnya/crystal-social/internal/server/storage"
	"github.com/Uwaniumnya/crystal-social/internal/testutil"
)

func newTestManager(t *testing.T, opts Options) *RoomManager {
	t.Helper()
	if opts.ResetDelay == 0 {
		opts.ResetDelay = time.Hour
	}
	rm := NewRoomManager(nil, nil, opts)
	t.Cleanup(rm.Close)
	return rm
}

func TestCreateRoom_Defaults(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t, Options{})
	alice := testutil.NewSimpleClient("p1", "Alice")

	room, err := rm.CreateRoom(alice, protocol.CreateRoomPayload{})
	require.NoError(t, err)

	assert.Equal(t, "Alice's table", room.Name)
	assert.Equal(t, GameBlackjack, room.Game)
	assert.Equal(t, int64(10), room.MinBet)
	assert.Equal(t, int64(1000), room.MaxBet)
	assert.Equal(t, 6, room.MaxPlayers)
	assert.Equal(t, "p1", room.HostID())
	assert.Equal(t, StatusWaiting, room.Status())
	assert.Equal(t, room.ID, alice.GetRoom())

	dice, err := rm.CreateRoom(testutil.NewSimpleClient("p2", "Bob"), protocol.CreateRoomPayload{Game: "dice"})
	require.NoError(t, err)
	assert.Equal(t, 8, dice.MaxPlayers)
	assert.Equal(t, 2, rm.RoomCount())
}

func TestCreateRoom_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		req  protocol.CreateRoomPayload
		want error
	}{
		{"unknown game", protocol.CreateRoomPayload{Game: "poker"}, apperrors.ErrUnsupportedGame},
		{"negative min bet", protocol.CreateRoomPayload{MinBet: -5}, apperrors.ErrInvalidRoomOptions},
		{"max below min", protocol.CreateRoomPayload{MinBet: 100, MaxBet: 50}, apperrors.ErrInvalidRoomOptions},
		{"too many blackjack seats", protocol.CreateRoomPayload{MaxPlayers: 7}, apperrors.ErrInvalidRoomOptions},
		{"too many dice seats", protocol.CreateRoomPayload{Game: "dice", MaxPlayers: 9}, apperrors.ErrInvalidRoomOptions},
		{"negative seats", protocol.CreateRoomPayload{MaxPlayers: -1}, apperrors.ErrInvalidRoomOptions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rm := newTestManager(t, Options{})
			client := testutil.NewSimpleClient("p1", "Alice")

			room, err := rm.CreateRoom(client, tt.req)
			assert.Nil(t, room)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, client.GetRoom())
			assert.Zero(t, rm.RoomCount())
		})
	}
}

func TestCreateRoom_AlreadySeated(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t, Options{})
	alice := testutil.NewSimpleClient("p1", "Alice")
	_, err := rm.CreateRoom(alice, protocol.CreateRoomPayload{})
	require.NoError(t, err)

	_, err = rm.CreateRoom(alice, protocol.CreateRoomPayload{})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyInRoom)
	assert.Equal(t, apperrors.KindState, apperrors.KindOf(err))
}

func TestJoinRoom(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t, Options{})
	lobby := &testutil.RecordingLobby{}
	rm.SetLobby(lobby)

	alice := testutil.NewSimpleClient("p1", "Alice")
	bob := testutil.NewSimpleClient("p2", "Bob")
	carol := testutil.NewSimpleClient("p3", "Carol")

	room, err := rm.CreateRoom(alice, protocol.CreateRoomPayload{MaxPlayers: 2})
	require.NoError(t, err)
	lobbyBefore := lobby.Count()

	joined, err := rm.JoinRoom(bob, room.ID)
	require.NoError(t, err)
	assert.Same(t, room, joined)
	assert.Equal(t, room.ID, bob.GetRoom())
	assert.Equal(t, 2, room.MemberCount())

	msg := alice.LastOfType(protocol.MsgPlayerJoinedRoom)
	require.NotNil(t, msg)
	payload, err := codec.ParsePayload[protocol.PlayerJoinedRoomPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, "p2", payload.Player.ID)
	assert.Len(t, payload.Room.Players, 2)
	assert.Nil(t, bob.LastOfType(protocol.MsgPlayerJoinedRoom), "joiner is not notified of itself")
	assert.Greater(t, lobby.Count(), lobbyBefore)
	assert.Equal(t, protocol.MsgAvailableRooms, lobby.Last().Type)

	_, err = rm.JoinRoom(carol, room.ID)
	assert.ErrorIs(t, err, apperrors.ErrRoomFull)
	assert.Equal(t, apperrors.KindCapacity, apperrors.KindOf(err))

	_, err = rm.JoinRoom(bob, room.ID)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyInRoom)

	_, err = rm.JoinRoom(carol, "missing")
	assert.ErrorIs(t, err, apperrors.ErrRoomNotFound)
	assert.Equal(t, apperrors.KindResource, apperrors.KindOf(err))
}

func TestLeaveRoom_HostReassignmentAndDestroy(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t, Options{})
	alice := testutil.NewSimpleClient("p1", "Alice")
	bob := testutil.NewSimpleClient("p2", "Bob")
	carol := testutil.NewSimpleClient("p3", "Carol")

	room, err := rm.CreateRoom(alice, protocol.CreateRoomPayload{})
	require.NoError(t, err)
	_, err = rm.JoinRoom(bob, room.ID)
	require.NoError(t, err)
	_, err = rm.JoinRoom(carol, room.ID)
	require.NoError(t, err)

	res, err := rm.LeaveRoom(alice)
	require.NoError(t, err)
	assert.False(t, res.Destroyed)
	assert.Empty(t, alice.GetRoom())
	assert.Equal(t, "p2", room.HostID(), "host passes to the next member in join order")

	msg := bob.LastOfType(protocol.MsgHostChanged)
	require.NotNil(t, msg)
	hc, err := codec.ParsePayload[protocol.HostChangedPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, "p2", hc.HostID)
	assert.NotNil(t, carol.LastOfType(protocol.MsgPlayerLeftRoom))

	_, err = rm.LeaveRoom(bob)
	require.NoError(t, err)
	assert.Equal(t, "p3", room.HostID())

	res, err = rm.LeaveRoom(carol)
	require.NoError(t, err)
	assert.True(t, res.Destroyed)
	assert.Nil(t, rm.GetRoom(room.ID))

	_, err = rm.JoinRoom(alice, room.ID)
	assert.ErrorIs(t, err, apperrors.ErrRoomNotFound)
	assert.Equal(t, apperrors.KindResource, apperrors.KindOf(err))
}

func TestLeaveRoom_NotSeated(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t, Options{})
	_, err := rm.LeaveRoom(testutil.NewSimpleClient("p1", "Alice"))
	assert.ErrorIs(t, err, apperrors.ErrNotInRoom)
}

func TestListRooms_OrderedByCreation(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t, Options{})
	first, err := rm.CreateRoom(testutil.NewSimpleClient("p1", "Alice"), protocol.CreateRoomPayload{Name: "first"})
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	second, err := rm.CreateRoom(testutil.NewSimpleClient("p2", "Bob"), protocol.CreateRoomPayload{Name: "second", Game: "dice"})
	require.NoError(t, err)

	items := rm.ListRooms()
	require.Len(t, items, 2)
	assert.Equal(t, first.ID, items[0].ID)
	assert.Equal(t, second.ID, items[1].ID)
	assert.Equal(t, "dice", items[1].Game)
	assert.Equal(t, 1, items[0].PlayerCount)
	assert.Equal(t, "waiting", items[0].Status)
}

func TestCleanup_RemovesIdleRoomsAndRefunds(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t, Options{RoomTimeout: time.Minute})
	alice := testutil.NewSimpleClient("p1", "Alice")
	bob := testutil.NewSimpleClient("p2", "Bob")

	idle, err := rm.CreateRoom(alice, protocol.CreateRoomPayload{Game: "dice"})
	require.NoError(t, err)
	busy, err := rm.CreateRoom(bob, protocol.CreateRoomPayload{})
	require.NoError(t, err)

	require.NoError(t, idle.PlaceBet("p1", "big", 100))
	assert.Equal(t, int64(900), alice.Player.Balance())

	idle.SetIdleForTest(2 * time.Minute)
	assert.Equal(t, 1, rm.CleanupForTest())

	assert.Nil(t, rm.GetRoom(idle.ID))
	assert.NotNil(t, rm.GetRoom(busy.ID))
	assert.Empty(t, alice.GetRoom())
	assert.Equal(t, int64(1000), alice.Player.Balance())
	assert.NotNil(t, alice.LastOfType(protocol.MsgRoomLeft))
}

func TestActiveRoundsCount(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t, Options{})
	alice := testutil.NewSimpleClient("p1", "Alice")
	room, err := rm.CreateRoom(alice, protocol.CreateRoomPayload{Game: "dice"})
	require.NoError(t, err)
	assert.Zero(t, rm.ActiveRoundsCount())

	require.NoError(t, room.PlaceBet("p1", "odd", 50))
	assert.Equal(t, 1, rm.ActiveRoundsCount())
}

// chanStore 把每次写入投递到通道
type chanStore struct {
	saved   chan string
	deleted chan string
	history chan protocol.RoundSummary
}

func newChanStore() *chanStore {
	return &chanStore{
		saved:   make(chan string, 64),
		deleted: make(chan string, 8),
		history: make(chan protocol.RoundSummary, 8),
	}
}

func (s *chanStore) SaveRoom(_ context.Context, data *storage.RoomData) error {
	s.saved <- data.ID
	return nil
}

func (s *chanStore) DeleteRoom(_ context.Context, id string) error {
	s.deleted <- id
	return nil
}

func (s *chanStore) AppendRoundHistory(_ context.Context, _ string, summary protocol.RoundSummary) error {
	s.history <- summary
	return nil
}

func TestRoomManager_PersistsThroughStore(t *testing.T) {
	t.Parallel()

	store := newChanStore()
	rm := NewRoomManager(store, nil, Options{ResetDelay: time.Hour})
	t.Cleanup(rm.Close)

	alice := testutil.NewSimpleClient("p1", "Alice")
	room, err := rm.CreateRoom(alice, protocol.CreateRoomPayload{})
	require.NoError(t, err)

	select {
	case id := <-store.saved:
		assert.Equal(t, room.ID, id)
	case <-time.After(time.Second):
		t.Fatal("room snapshot was not saved")
	}

	_, err = rm.LeaveRoom(alice)
	require.NoError(t, err)

	select {
	case id := <-store.deleted:
		assert.Equal(t, room.ID, id)
	case <-time.After(time.Second):
		t.Fatal("room was not deleted from the store")
	}
}

// sameSeat 同一玩家的另一条连接
func sameSeat(c *testutil.SimpleClient) *testutil.SimpleClient {
	other := testutil.NewGuestClient()
	other.Bind(c.GetPlayer())
	return other
}

func TestJoinRoom_RejectsPlayerSeatedOnAnotherConnection(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t, Options{})
	host := testutil.NewSimpleClient("p0", "Host")
	room, err := rm.CreateRoom(host, protocol.CreateRoomPayload{Game: "dice"})
	require.NoError(t, err)
	other, err := rm.CreateRoom(testutil.NewSimpleClient("p9", "Zed"), protocol.CreateRoomPayload{Game: "dice"})
	require.NoError(t, err)

	alice := testutil.NewSimpleClient("p1", "Alice")
	_, err = rm.JoinRoom(alice, room.ID)
	require.NoError(t, err)

	fresh := sameSeat(alice)
	_, err = rm.JoinRoom(fresh, room.ID)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyInRoom)
	_, err = rm.JoinRoom(fresh, other.ID)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyInRoom)
	_, err = rm.CreateRoom(fresh, protocol.CreateRoomPayload{})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyInRoom)

	assert.Empty(t, fresh.GetRoom())
	assert.Equal(t, 2, room.MemberCount())
	assert.Len(t, room.Snapshot().Players, 2)
	assert.Equal(t, 2, rm.RoomCount())
}

func TestTransferSeat_NewConnectionKeepsSeatAndBets(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t, Options{})
	host := testutil.NewSimpleClient("p0", "Host")
	room, err := rm.CreateRoom(host, protocol.CreateRoomPayload{Game: "dice"})
	require.NoError(t, err)
	alice := testutil.NewSimpleClient("p1", "Alice")
	_, err = rm.JoinRoom(alice, room.ID)
	require.NoError(t, err)
	require.NoError(t, room.PlaceBet("p1", rule.BetBig, 100))

	fresh := sameSeat(alice)
	assert.Same(t, room, rm.TransferSeat(alice, fresh))
	assert.Equal(t, room.ID, fresh.GetRoom())
	assert.Empty(t, alice.GetRoom())
	assert.Nil(t, rm.TransferSeat(alice, fresh), "nothing left to hand over")

	// 旧连接稍后的断线清理不影响新连接
	_, err = rm.LeaveRoom(alice)
	assert.ErrorIs(t, err, apperrors.ErrNotInRoom)
	alice.SetRoom(room.ID)
	_, err = rm.LeaveRoom(alice)
	assert.ErrorIs(t, err, apperrors.ErrNotInRoom)
	assert.True(t, room.HasMember("p1"))
	assert.Equal(t, StatusBetting, room.Status())

	room.Broadcast(codec.MustNewMessage(protocol.MsgChatMessage, protocol.ChatMessagePayload{Message: "hi"}))
	assert.NotNil(t, fresh.LastOfType(protocol.MsgChatMessage))
	assert.Nil(t, alice.LastOfType(protocol.MsgChatMessage))

	require.NoError(t, room.RemoveBet("p1", rule.BetBig))
	assert.Equal(t, int64(testutil.DefaultBalance), fresh.GetPlayer().Balance())

	res, err := rm.LeaveRoom(fresh)
	require.NoError(t, err)
	assert.False(t, res.Destroyed)
	assert.Equal(t, 1, room.MemberCount())
	assert.Equal(t, "p0", room.HostID())
	assert.Empty(t, fresh.GetPlayer().RoomID())

	// 离开后可以重新入座
	_, err = rm.JoinRoom(fresh, room.ID)
	require.NoError(t, err)
	assert.Len(t, room.Snapshot().Players, 2)
}
