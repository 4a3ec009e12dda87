package room

import (
	"context"
	"log"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Uwaniumnya/crystal-social/internal/apperrors"
	"github.com/Uwaniumnya/crystal-social/internal/game/card"
	"github.com/Uwaniumnya/crystal-social/internal/game/player"
	"github.com/Uwaniumnya/crystal-social/internal/game/rule"
	"github.com/Uwaniumnya/crystal-social/internal/protocol"
	"github.com/Uwaniumnya/crystal-social/internal/protocol/codec"
	"github.com/Uwaniumnya/crystal-social/internal/server/storage"
	"github.com/Uwaniumnya/crystal-social/internal/types"
)

// Store 房间快照与结算历史的持久化
type Store interface {
	SaveRoom(ctx context.Context, data *storage.RoomData) error
	DeleteRoom(ctx context.Context, id string) error
	AppendRoundHistory(ctx context.Context, roomID string, summary protocol.RoundSummary) error
}

// ResultRecorder 记录每名玩家的单局输赢（排行榜）
type ResultRecorder interface {
	RecordRoundResult(ctx context.Context, playerID, playerName string, wagered, returned int64) error
}

// Lobby 大厅广播（未入座的玩家）
type Lobby interface {
	BroadcastToLobby(msg *protocol.Message)
}

// Options 房间管理器配置
type Options struct {
	ResetDelay          time.Duration // 结算后回到等待状态的延迟
	RoomTimeout         time.Duration // 房间空闲超时
	MinBet              int64
	MaxBet              int64
	BlackjackMaxPlayers int
	DiceMaxPlayers      int

	NewShoe  func() *card.Shoe // 每局一副新牌
	RollDice func() rule.Roll
}

func (o *Options) applyDefaults() {
	if o.ResetDelay <= 0 {
		o.ResetDelay = 5 * time.Second
	}
	if o.RoomTimeout <= 0 {
		o.RoomTimeout = 30 * time.Minute
	}
	if o.MinBet <= 0 {
		o.MinBet = 10
	}
	if o.MaxBet <= 0 {
		o.MaxBet = 1000
	}
	if o.BlackjackMaxPlayers <= 0 {
		o.BlackjackMaxPlayers = 6
	}
	if o.DiceMaxPlayers <= 0 {
		o.DiceMaxPlayers = 8
	}
	if o.NewShoe == nil {
		o.NewShoe = func() *card.Shoe { return card.NewShoe(nil) }
	}
	if o.RollDice == nil {
		o.RollDice = func() rule.Roll { return rule.RollDice(nil) }
	}
}

// RoomManager 房间管理器。mu 只保护房间目录，持有期间不获取任何房间锁。
type RoomManager struct {
	store    Store
	recorder ResultRecorder
	lobby    Lobby
	opts     Options

	rooms map[string]*Room
	mu    sync.RWMutex

	stop     chan struct{}
	stopOnce sync.Once
}

// NewRoomManager 创建房间管理器；store 与 recorder 可以为 nil
func NewRoomManager(store Store, recorder ResultRecorder, opts Options) *RoomManager {
	opts.applyDefaults()
	rm := &RoomManager{
		store:    store,
		recorder: recorder,
		opts:     opts,
		rooms:    make(map[string]*Room),
		stop:     make(chan struct{}),
	}

	// 启动房间清理协程
	go rm.cleanupLoop()

	return rm
}

// SetLobby 设置大厅广播（服务器创建后注入）
func (rm *RoomManager) SetLobby(lobby Lobby) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.lobby = lobby
}

// Close 停止清理协程
func (rm *RoomManager) Close() {
	rm.stopOnce.Do(func() { close(rm.stop) })
}

// CreateRoom 创建房间，创建者成为房主
func (rm *RoomManager) CreateRoom(client types.ClientInterface, req protocol.CreateRoomPayload) (*Room, error) {
	if client.GetRoom() != "" || rm.seated(client.GetPlayer()) {
		return nil, apperrors.ErrAlreadyInRoom
	}

	room, err := rm.newRoom(client.GetName(), req)
	if err != nil {
		return nil, err
	}

	p := client.GetPlayer()
	room.members[p.ID] = &Member{Client: client, Player: p, JoinedAt: room.CreatedAt}
	room.order = append(room.order, p.ID)
	room.hostID = p.ID
	client.SetRoom(room.ID)

	rm.mu.Lock()
	rm.rooms[room.ID] = room
	rm.mu.Unlock()

	rm.persist(room.RoomData())
	rm.broadcastRoomList()

	log.Printf("🏠 房间 %s (%s) 已创建，房主 %s", room.ID, room.Game, client.GetName())

	return room, nil
}

// newRoom 校验选项并构造房间
func (rm *RoomManager) newRoom(hostName string, req protocol.CreateRoomPayload) (*Room, error) {
	game := Game(strings.ToLower(strings.TrimSpace(req.Game)))
	if game == "" {
		game = GameBlackjack
	}

	var capacity int
	switch game {
	case GameBlackjack:
		capacity = rm.opts.BlackjackMaxPlayers
	case GameDice:
		capacity = rm.opts.DiceMaxPlayers
	default:
		return nil, apperrors.Wrapf(apperrors.ErrUnsupportedGame, "unsupported game %q", req.Game)
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = hostName + "'s table"
	}
	minBet, maxBet, maxPlayers := req.MinBet, req.MaxBet, req.MaxPlayers
	if minBet == 0 {
		minBet = rm.opts.MinBet
	}
	if maxBet == 0 {
		maxBet = rm.opts.MaxBet
	}
	if maxPlayers == 0 {
		maxPlayers = capacity
	}

	switch {
	case minBet < 1:
		return nil, apperrors.Wrapf(apperrors.ErrInvalidRoomOptions, "minBet must be at least 1")
	case maxBet < minBet:
		return nil, apperrors.Wrapf(apperrors.ErrInvalidRoomOptions, "maxBet %d is below minBet %d", maxBet, minBet)
	case maxPlayers < 1 || maxPlayers > capacity:
		return nil, apperrors.Wrapf(apperrors.ErrInvalidRoomOptions, "maxPlayers must be between 1 and %d", capacity)
	}

	now := time.Now()
	r := &Room{
		ID:           uuid.NewString(),
		Name:         name,
		Game:         game,
		MinBet:       minBet,
		MaxBet:       maxBet,
		MaxPlayers:   maxPlayers,
		CreatedAt:    now,
		status:       StatusWaiting,
		members:      make(map[string]*Member, maxPlayers),
		order:        make([]string, 0, maxPlayers),
		lastActivity: now,
		mgr:          rm,
	}
	r.round = newRound(1, rm.opts.NewShoe())
	return r, nil
}

// JoinRoom 加入房间
func (rm *RoomManager) JoinRoom(client types.ClientInterface, roomID string) (*Room, error) {
	p := client.GetPlayer()
	if client.GetRoom() != "" || rm.seated(p) {
		return nil, apperrors.ErrAlreadyInRoom
	}

	room := rm.GetRoom(roomID)
	if room == nil {
		return nil, apperrors.ErrRoomNotFound
	}

	room.mu.Lock()
	if room.closed {
		room.mu.Unlock()
		return nil, apperrors.ErrRoomNotFound
	}
	if _, ok := room.members[p.ID]; ok {
		room.mu.Unlock()
		return nil, apperrors.ErrAlreadyInRoom
	}
	if len(room.members) >= room.MaxPlayers {
		room.mu.Unlock()
		return nil, apperrors.ErrRoomFull
	}

	room.members[p.ID] = &Member{Client: client, Player: p, JoinedAt: time.Now()}
	room.order = append(room.order, p.ID)
	room.touch()
	client.SetRoom(room.ID)

	// 通知房间内其他玩家
	room.broadcastExcept(p.ID, codec.MustNewMessage(protocol.MsgPlayerJoinedRoom, protocol.PlayerJoinedRoomPayload{
		Player: protocol.PlayerInfo{ID: p.ID, Name: p.Name, Credits: p.Balance()},
		Room:   room.snapshot(),
	}))
	data := room.roomData()
	room.mu.Unlock()

	log.Printf("👤 玩家 %s 加入房间 %s", client.GetName(), room.ID)

	rm.persist(data)
	rm.broadcastRoomList()

	return room, nil
}

// LeaveResult 离开房间的结果
type LeaveResult struct {
	RoomID    string
	Forfeited int64 // 未结算而被没收的下注
	Destroyed bool
}

// LeaveRoom 离开房间。进行中的下注不退还；房间空了即销毁。
func (rm *RoomManager) LeaveRoom(client types.ClientInterface) (LeaveResult, error) {
	roomID := client.GetRoom()
	if roomID == "" {
		return LeaveResult{}, apperrors.ErrNotInRoom
	}

	room := rm.GetRoom(roomID)
	if room == nil {
		client.SetRoom("")
		return LeaveResult{}, apperrors.ErrRoomNotFound
	}

	room.mu.Lock()
	playerID := client.GetID()
	m, ok := room.members[playerID]
	if ok && m.Client != client {
		// 座位已交给同一玩家的新连接
		room.mu.Unlock()
		return LeaveResult{}, apperrors.ErrNotInRoom
	}
	if !ok || room.closed {
		room.mu.Unlock()
		client.SetRoom("")
		return LeaveResult{}, apperrors.ErrNotInRoom
	}

	forfeited := room.removeMember(playerID)
	client.SetRoom("")
	result := LeaveResult{RoomID: roomID, Forfeited: forfeited}

	var data *storage.RoomData
	if len(room.members) == 0 {
		room.close()
		result.Destroyed = true
	} else {
		data = room.roomData()
	}
	room.mu.Unlock()

	log.Printf("👋 玩家 %s 离开房间 %s", client.GetName(), roomID)

	if result.Destroyed {
		rm.destroy(roomID)
	} else {
		rm.persist(data)
	}
	if forfeited > 0 {
		rm.afterForfeit(client.GetID(), client.GetName(), forfeited)
	}
	rm.broadcastRoomList()

	return result, nil
}

// TransferSeat 同一玩家在新连接登录时，把旧连接的座位连同手牌和下注交给新连接。
// 旧连接不再入座，之后的断线清理不会影响新连接。返回接手的房间，没有座位时为 nil。
func (rm *RoomManager) TransferSeat(from, to types.ClientInterface) *Room {
	roomID := from.GetRoom()
	if roomID == "" {
		return nil
	}
	room := rm.GetRoom(roomID)
	if room == nil {
		return nil
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	m, ok := room.members[to.GetID()]
	if room.closed || !ok || m.Client != from {
		return nil
	}
	m.Client = to
	// 先清旧连接再设新连接，两者共享同一个玩家
	from.SetRoom("")
	to.SetRoom(roomID)
	room.touch()
	log.Printf("🔁 玩家 %s 的座位 (房间 %s) 交给新连接", to.GetName(), roomID)
	return room
}

// seated 玩家是否仍坐在某个房间里
func (rm *RoomManager) seated(p *player.Player) bool {
	if p == nil {
		return false
	}
	roomID := p.RoomID()
	if roomID == "" {
		return false
	}
	room := rm.GetRoom(roomID)
	return room != nil && room.HasMember(p.ID)
}

// destroy 从目录中移除房间并删除持久化数据
func (rm *RoomManager) destroy(roomID string) {
	rm.mu.Lock()
	delete(rm.rooms, roomID)
	rm.mu.Unlock()

	if rm.store != nil {
		go func() {
			if err := rm.store.DeleteRoom(context.Background(), roomID); err != nil {
				log.Printf("⚠️ 删除房间 %s 失败: %v", roomID, err)
			}
		}()
	}
	log.Printf("🏠 房间 %s 已解散", roomID)
}

// GetRoom 获取房间
func (rm *RoomManager) GetRoom(id string) *Room {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return rm.rooms[id]
}

// RoomOf 返回客户端所在的房间
func (rm *RoomManager) RoomOf(client types.ClientInterface) (*Room, error) {
	roomID := client.GetRoom()
	if roomID == "" {
		return nil, apperrors.ErrNotInRoom
	}
	room := rm.GetRoom(roomID)
	if room == nil {
		return nil, apperrors.ErrRoomNotFound
	}
	return room, nil
}

// snapshotRooms 复制目录中的房间指针，之后再逐个加房间锁
func (rm *RoomManager) snapshotRooms() []*Room {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	rooms := make([]*Room, 0, len(rm.rooms))
	for _, r := range rm.rooms {
		rooms = append(rooms, r)
	}
	return rooms
}

// ListRooms 获取房间列表（按创建时间排序）
func (rm *RoomManager) ListRooms() []protocol.RoomListItem {
	rooms := rm.snapshotRooms()
	slices.SortFunc(rooms, func(a, b *Room) int { return a.CreatedAt.Compare(b.CreatedAt) })
	items := make([]protocol.RoomListItem, 0, len(rooms))
	for _, r := range rooms {
		if item, ok := r.ListItem(); ok {
			items = append(items, item)
		}
	}
	return items
}

// RoomCount 房间数
func (rm *RoomManager) RoomCount() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return len(rm.rooms)
}

// ActiveRoundsCount 有未结算下注的房间数
func (rm *RoomManager) ActiveRoundsCount() int {
	count := 0
	for _, r := range rm.snapshotRooms() {
		if r.Status().InRound() {
			count++
		}
	}
	return count
}

// broadcastRoomList 向大厅推送最新房间列表，调用时不得持有任何房间锁
func (rm *RoomManager) broadcastRoomList() {
	rm.mu.RLock()
	lobby := rm.lobby
	rm.mu.RUnlock()
	if lobby == nil {
		return
	}
	lobby.BroadcastToLobby(codec.MustNewMessage(protocol.MsgAvailableRooms, protocol.AvailableRoomsPayload{
		Rooms: rm.ListRooms(),
	}))
}

// persist 异步保存房间快照
func (rm *RoomManager) persist(data *storage.RoomData) {
	if rm.store == nil || data == nil {
		return
	}
	go func() {
		if err := rm.store.SaveRoom(context.Background(), data); err != nil {
			log.Printf("⚠️ 保存房间 %s 失败: %v", data.ID, err)
		}
	}()
}

// roundRecord 一名玩家的单局输赢
type roundRecord struct {
	playerID string
	name     string
	wagered  int64
	returned int64
}

// afterRound 结算后的持久化与排行榜更新，在房间锁外执行
func (rm *RoomManager) afterRound(roomID string, summary protocol.RoundSummary, records []roundRecord) {
	if rm.store == nil && rm.recorder == nil {
		return
	}
	go func() {
		ctx := context.Background()
		if rm.store != nil {
			if err := rm.store.AppendRoundHistory(ctx, roomID, summary); err != nil {
				log.Printf("⚠️ 保存房间 %s 结算历史失败: %v", roomID, err)
			}
		}
		if rm.recorder == nil {
			return
		}
		for _, rec := range records {
			if err := rm.recorder.RecordRoundResult(ctx, rec.playerID, rec.name, rec.wagered, rec.returned); err != nil {
				log.Printf("⚠️ 更新玩家 %s 排行榜失败: %v", rec.playerID, err)
			}
		}
	}()
}

// afterForfeit 中途离开没收的下注计入排行榜
func (rm *RoomManager) afterForfeit(playerID, name string, amount int64) {
	if rm.recorder == nil {
		return
	}
	go func() {
		if err := rm.recorder.RecordRoundResult(context.Background(), playerID, name, amount, 0); err != nil {
			log.Printf("⚠️ 更新玩家 %s 排行榜失败: %v", playerID, err)
		}
	}()
}
