package room

import (
	"sync"
	"time"

	"github.com/Uwaniumnya/crystal-social/internal/apperrors"
	"github.com/Uwaniumnya/crystal-social/internal/game/card"
	"github.com/Uwaniumnya/crystal-social/internal/game/player"
	"github.com/Uwaniumnya/crystal-social/internal/game/rule"
	"github.com/Uwaniumnya/crystal-social/internal/protocol"
	"github.com/Uwaniumnya/crystal-social/internal/types"
)

// Game 游戏类型
type Game string

const (
	GameBlackjack Game = "blackjack"
	GameDice      Game = "dice"
)

// Status 房间状态
type Status string

const (
	StatusWaiting    Status = "waiting"    // 等待下注
	StatusBetting    Status = "betting"    // 下注中
	StatusDealing    Status = "dealing"    // 发牌中
	StatusPlaying    Status = "playing"    // 玩家依次行动
	StatusDealerTurn Status = "dealerTurn" // 庄家要牌
	StatusResolving  Status = "resolving"  // 骰子结算
	StatusComplete   Status = "complete"   // 本局结束，等待重置
)

// InRound 是否有未结算的下注
func (s Status) InRound() bool {
	switch s {
	case StatusBetting, StatusDealing, StatusPlaying, StatusDealerTurn, StatusResolving:
		return true
	default:
		return false
	}
}

const (
	roundHistoryLimit = 50 // 保留的结算摘要数
	rollHistoryLimit  = 20 // 保留的骰子结果数
)

// Member 房间成员
type Member struct {
	Client   types.ClientInterface
	Player   *player.Player
	JoinedAt time.Time
}

// Bet 一笔下注
type Bet struct {
	Type   rule.BetType
	Amount int64
}

// round 一局的全部状态，重置时整体替换
type round struct {
	number int
	shoe   *card.Shoe
	bets   map[string][]Bet
	hands  map[string]*rule.Hand
	dealer *rule.Hand
	order  []string // 本局参与发牌的玩家（入座顺序）
	turn   int      // order 下标，-1 表示无人行动
	roll   *protocol.DiceRollInfo
}

func newRound(number int, shoe *card.Shoe) *round {
	return &round{
		number: number,
		shoe:   shoe,
		bets:   make(map[string][]Bet),
		hands:  make(map[string]*rule.Hand),
		dealer: rule.NewHand(rule.DealerID),
		turn:   -1,
	}
}

// currentTurn 当前行动玩家，无人行动时为空
func (rd *round) currentTurn() string {
	if rd.turn < 0 || rd.turn >= len(rd.order) {
		return ""
	}
	return rd.order[rd.turn]
}

// wagered 玩家本局已下注总额
func (rd *round) wagered(playerID string) int64 {
	var total int64
	for _, b := range rd.bets[playerID] {
		total += b.Amount
	}
	return total
}

// Room 游戏房间。mu 是该房间所有命令的唯一串行化点。
type Room struct {
	ID         string
	Name       string
	Game       Game
	MinBet     int64
	MaxBet     int64
	MaxPlayers int
	CreatedAt  time.Time

	hostID       string
	status       Status
	members      map[string]*Member
	order        []string // 入座顺序
	round        *round
	rounds       int // 已开始的局数
	history      []protocol.RoundSummary
	rollHistory  []protocol.DiceRollInfo
	resetTimer   *time.Timer
	lastActivity time.Time
	closed       bool

	mgr *RoomManager
	mu  sync.Mutex
}

// HostID 当前房主
func (r *Room) HostID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hostID
}

// Status 当前状态
func (r *Room) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// MemberCount 成员数
func (r *Room) MemberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

// HasMember 是否为房间成员
func (r *Room) HasMember(playerID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.members[playerID]
	return ok
}

// CurrentTurn 当前行动玩家
func (r *Room) CurrentTurn() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.round.currentTurn()
}

// Broadcast 广播消息给所有成员
func (r *Room) Broadcast(msg *protocol.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.broadcast(msg)
}

// broadcast 调用方需持有锁；发送只入队，不做网络写
func (r *Room) broadcast(msg *protocol.Message) {
	for _, id := range r.order {
		if m := r.members[id]; m != nil && m.Client != nil {
			m.Client.SendMessage(msg)
		}
	}
}

// broadcastExcept 广播给除 playerID 外的成员
func (r *Room) broadcastExcept(playerID string, msg *protocol.Message) {
	for _, id := range r.order {
		if id == playerID {
			continue
		}
		if m := r.members[id]; m != nil && m.Client != nil {
			m.Client.SendMessage(msg)
		}
	}
}

// touch 记录活跃时间，供空闲清理使用
func (r *Room) touch() {
	r.lastActivity = time.Now()
}

// member 查找成员，已关闭的房间视为不存在
func (r *Room) member(playerID string) (*Member, error) {
	if r.closed {
		return nil, apperrors.ErrRoomNotFound
	}
	m, ok := r.members[playerID]
	if !ok {
		return nil, apperrors.ErrNotInRoom
	}
	return m, nil
}

// removeID 从列表中移除 id，返回移除前的下标
func removeID(ids []string, id string) ([]string, int) {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...), i
		}
	}
	return ids, -1
}
