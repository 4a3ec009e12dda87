package protocol

// --- 客户端请求 Payloads ---

// AuthenticatePayload 身份绑定请求。Token 为身份服务签发的 JWT，
// 配置了密钥时必填；ReconnectToken 用于恢复上一次连接的余额。
type AuthenticatePayload struct {
	PlayerID       string `json:"playerId,omitempty"`
	Name           string `json:"name,omitempty"`
	Credits        *int64 `json:"credits,omitempty"`
	Token          string `json:"token,omitempty"`
	ReconnectToken string `json:"reconnectToken,omitempty"`
}

// CreateRoomPayload 创建房间请求，零值字段使用默认值
type CreateRoomPayload struct {
	Name       string `json:"name,omitempty"`
	Game       string `json:"game,omitempty"` // blackjack/dice
	MinBet     int64  `json:"minBet,omitempty"`
	MaxBet     int64  `json:"maxBet,omitempty"`
	MaxPlayers int    `json:"maxPlayers,omitempty"`
}

// RoomRefPayload 指定房间的请求（joinRoom/leaveRoom/startRound）
type RoomRefPayload struct {
	RoomID string `json:"roomId"`
}

// PlaceBetPayload 下注请求
type PlaceBetPayload struct {
	RoomID  string `json:"roomId,omitempty"`
	BetType string `json:"betType"`
	Amount  int64  `json:"amount"`
}

// RemoveBetPayload 撤注请求
type RemoveBetPayload struct {
	RoomID  string `json:"roomId,omitempty"`
	BetType string `json:"betType"`
}

// ChatPayload 聊天请求
type ChatPayload struct {
	Message string `json:"message"`
}

// GetLeaderboardPayload 获取排行榜请求
type GetLeaderboardPayload struct {
	Type  string `json:"type"` // total/daily/weekly
	Limit int    `json:"limit"`
}

// GetHistoryPayload 查询房间结算历史，roomId 为空时取当前房间
type GetHistoryPayload struct {
	RoomID string `json:"roomId"`
	Limit  int    `json:"limit"`
}

// PingPayload 心跳请求
type PingPayload struct {
	Timestamp int64 `json:"timestamp"` // 客户端时间戳（毫秒）
}

// --- 服务端响应 Payloads ---

// ConnectedPayload 连接建立
type ConnectedPayload struct {
	ConnectionID string `json:"connectionId"`
	RequiresAuth bool   `json:"requiresAuth"` // 是否必须携带身份令牌
}

// AuthenticatedPayload 身份绑定成功
type AuthenticatedPayload struct {
	Player         PlayerInfo `json:"player"`
	ReconnectToken string     `json:"reconnectToken"`
	Restored       bool       `json:"restored"` // 是否恢复了之前的余额
}

// PlayerInfo 对外公开的玩家信息（只含 id/名字/余额）
type PlayerInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Credits int64  `json:"credits"`
}

// CardInfo 牌面信息，Hidden 为庄家暗牌
type CardInfo struct {
	Suit   string `json:"suit,omitempty"`
	Rank   string `json:"rank,omitempty"`
	Hidden bool   `json:"hidden,omitempty"`
}

// HandInfo 手牌信息
type HandInfo struct {
	PlayerID   string     `json:"playerId"`
	Cards      []CardInfo `json:"cards"`
	Value      int        `json:"value"`
	IsBust     bool       `json:"isBust"`
	IsNatural  bool       `json:"isNatural"`
	IsStanding bool       `json:"isStanding"`
	IsDoubled  bool       `json:"isDoubled,omitempty"`
	IsSoft     bool       `json:"isSoft,omitempty"` // A 按 11 计
}

// BetInfo 下注信息
type BetInfo struct {
	PlayerID string `json:"playerId"`
	BetType  string `json:"betType"`
	Amount   int64  `json:"amount"`
}

// DiceRollInfo 骰子结果
type DiceRollInfo struct {
	Dice   [3]int `json:"dice"`
	Total  int    `json:"total"`
	Triple bool   `json:"triple,omitempty"` // 三颗相同，只作展示
	At     int64  `json:"at,omitempty"`
}

// RoundInfo 当前局状态
type RoundInfo struct {
	Number      int                  `json:"number"`
	Bets        map[string][]BetInfo `json:"bets"`
	Hands       []HandInfo           `json:"hands,omitempty"`
	Dealer      *HandInfo            `json:"dealer,omitempty"`
	CurrentTurn string               `json:"currentTurn,omitempty"`
	Roll        *DiceRollInfo        `json:"roll,omitempty"`
}

// RoundSummary 已结束局的摘要
type RoundSummary struct {
	Number      int              `json:"number"`
	CompletedAt int64            `json:"completedAt"`
	DealerValue int              `json:"dealerValue,omitempty"`
	Roll        *DiceRollInfo    `json:"roll,omitempty"`
	Payouts     map[string]int64 `json:"payouts"`
}

// RoomSnapshot 房间完整快照
type RoomSnapshot struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Game        string         `json:"game"`
	HostID      string         `json:"hostId"`
	Status      string         `json:"status"`
	MinBet      int64          `json:"minBet"`
	MaxBet      int64          `json:"maxBet"`
	MaxPlayers  int            `json:"maxPlayers"`
	Players     []PlayerInfo   `json:"players"`
	Round       *RoundInfo     `json:"round,omitempty"`
	History     []RoundSummary `json:"history,omitempty"`
	RollHistory []DiceRollInfo `json:"rollHistory,omitempty"`
}

// RoomListItem 房间列表项（大厅展示）
type RoomListItem struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Game        string       `json:"game"`
	HostID      string       `json:"hostId"`
	Status      string       `json:"status"`
	PlayerCount int          `json:"playerCount"`
	MaxPlayers  int          `json:"maxPlayers"`
	MinBet      int64        `json:"minBet"`
	MaxBet      int64        `json:"maxBet"`
	Players     []PlayerInfo `json:"players"`
}

// RoomPayload 携带房间快照的响应（roomCreated/roomJoined/roomReset/dealingComplete）
type RoomPayload struct {
	Room RoomSnapshot `json:"room"`
}

// RoomLeftPayload 离开房间
type RoomLeftPayload struct {
	RoomID string `json:"roomId"`
}

// PlayerJoinedRoomPayload 有玩家加入
type PlayerJoinedRoomPayload struct {
	Player PlayerInfo   `json:"player"`
	Room   RoomSnapshot `json:"room"`
}

// PlayerLeftRoomPayload 有玩家离开
type PlayerLeftRoomPayload struct {
	PlayerID   string       `json:"playerId"`
	PlayerName string       `json:"playerName"`
	Room       RoomSnapshot `json:"room"`
}

// HostChangedPayload 房主变更
type HostChangedPayload struct {
	HostID string `json:"hostId"`
}

// AvailableRoomsPayload 可加入房间列表
type AvailableRoomsPayload struct {
	Rooms []RoomListItem `json:"rooms"`
}

// BetPlacedPayload 下注成功（广播）
type BetPlacedPayload struct {
	Bet     BetInfo   `json:"bet"`
	Balance int64     `json:"balance"`
	Bets    []BetInfo `json:"bets"` // 该玩家本局所有下注
}

// BetRemovedPayload 撤注成功（广播）
type BetRemovedPayload struct {
	PlayerID string `json:"playerId"`
	BetType  string `json:"betType"`
	Balance  int64  `json:"balance"`
}

// CardDealtPayload 发出一张牌
type CardDealtPayload struct {
	PlayerID string   `json:"playerId"`
	Card     CardInfo `json:"card"`
	Hand     HandInfo `json:"hand"`
}

// PlayerStoodPayload 玩家停牌
type PlayerStoodPayload struct {
	PlayerID string   `json:"playerId"`
	Hand     HandInfo `json:"hand"`
}

// PlayerDoubledDownPayload 玩家加倍
type PlayerDoubledDownPayload struct {
	PlayerID string   `json:"playerId"`
	Card     CardInfo `json:"card"`
	Hand     HandInfo `json:"hand"`
	Stake    int64    `json:"stake"`
	Balance  int64    `json:"balance"`
}

// NextPlayerPayload 轮到下一位
type NextPlayerPayload struct {
	PlayerID string `json:"playerId"`
}

// DealerTurnPayload 庄家回合结束时的手牌
type DealerTurnPayload struct {
	Dealer HandInfo `json:"dealer"`
}

// BetResult 单注结算
type BetResult struct {
	BetType string `json:"betType"`
	Amount  int64  `json:"amount"`
	Payout  int64  `json:"payout"`
	Won     bool   `json:"won"`
}

// PlayerResult 玩家本局结算
type PlayerResult struct {
	PlayerID   string      `json:"playerId"`
	PlayerName string      `json:"playerName"`
	Outcome    string      `json:"outcome,omitempty"`
	Hand       *HandInfo   `json:"hand,omitempty"`
	Bets       []BetResult `json:"bets"`
	Wagered    int64       `json:"wagered"`
	Payout     int64       `json:"payout"`
	Net        int64       `json:"net"`
	Balance    int64       `json:"balance"`
}

// GameCompletePayload 本局结束
type GameCompletePayload struct {
	RoomID  string         `json:"roomId"`
	Round   int            `json:"round"`
	Dealer  *HandInfo      `json:"dealer,omitempty"`
	Roll    *DiceRollInfo  `json:"roll,omitempty"`
	Results []PlayerResult `json:"results"`
}

// ChatMessagePayload 聊天消息
type ChatMessagePayload struct {
	ID         string `json:"id"`
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	Message    string `json:"message"`
	Scope      string `json:"scope"` // room/lobby
	Timestamp  int64  `json:"timestamp"`
}

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	Rank        int     `json:"rank"`
	PlayerID    string  `json:"playerId"`
	PlayerName  string  `json:"playerName"`
	NetWinnings int64   `json:"netWinnings"`
	GamesPlayed int64   `json:"gamesPlayed"`
	GamesWon    int64   `json:"gamesWon"`
	WinRate     float64 `json:"winRate"`
}

// LeaderboardPayload 排行榜
type LeaderboardPayload struct {
	Type    string             `json:"type"`
	Entries []LeaderboardEntry `json:"entries"`
}

// StatsPayload 个人统计
type StatsPayload struct {
	PlayerID    string `json:"playerId"`
	PlayerName  string `json:"playerName"`
	Balance     int64  `json:"balance"`
	GamesPlayed int64  `json:"gamesPlayed"`
	GamesWon    int64  `json:"gamesWon"`
	GamesLost   int64  `json:"gamesLost"`
	TotalBet    int64  `json:"totalBet"`
	TotalWon    int64  `json:"totalWon"`
	Rank        int64  `json:"rank"` // 总榜排名，-1 表示未上榜
}

// HistoryPayload 房间结算历史（新的在前）
type HistoryPayload struct {
	RoomID string         `json:"roomId"`
	Rounds []RoundSummary `json:"rounds"`
}

// PongPayload 心跳响应
type PongPayload struct {
	ClientTimestamp int64 `json:"clientTimestamp"`
	ServerTimestamp int64 `json:"serverTimestamp"`
}

// ErrorPayload 错误响应
type ErrorPayload struct {
	Code    ErrorCode `json:"code"`
	Kind    string    `json:"kind"`
	Message string    `json:"message"`
}
