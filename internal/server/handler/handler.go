package handler

import (
	"context"
	"log"

	"github.com/Uwaniumnya/crystal-social/internal/apperrors"
	"github.com/Uwaniumnya/crystal-social/internal/auth"
	"github.com/Uwaniumnya/crystal-social/internal/game/player"
	"github.com/Uwaniumnya/crystal-social/internal/game/room"
	"github.com/Uwaniumnya/crystal-social/internal/logger"
	"github.com/Uwaniumnya/crystal-social/internal/protocol"
	"github.com/Uwaniumnya/crystal-social/internal/protocol/codec"
	"github.com/Uwaniumnya/crystal-social/internal/server/session"
	"github.com/Uwaniumnya/crystal-social/internal/types"
)

// Leaderboard 排行榜查询
type Leaderboard interface {
	GetLeaderboard(ctx context.Context, board string, limit int) ([]protocol.LeaderboardEntry, error)
	GetPlayerRank(ctx context.Context, playerID string) (int64, error)
}

// ProfileStore 玩家资料读取
type ProfileStore interface {
	LoadProfile(ctx context.Context, id string) (*player.Profile, error)
}

// HistoryStore 结算历史读取
type HistoryStore interface {
	RoundHistory(ctx context.Context, roomID string, n int) ([]protocol.RoundSummary, error)
}

// HandlerDeps 处理器依赖。Leaderboard、Profiles、History、ChatLimiter、Verifier 可以为 nil。
type HandlerDeps struct {
	Server          types.ServerInterface
	RoomManager     *room.RoomManager
	ChatLimiter     types.ChatLimiter
	Leaderboard     Leaderboard
	Profiles        ProfileStore
	History         HistoryStore
	SessionManager  *session.SessionManager
	Verifier        *auth.Verifier
	Namer           *player.Namer // 为空时随机播种
	StartingCredits int64
}

// Handler 消息处理器
type Handler struct {
	server          types.ServerInterface
	roomManager     *room.RoomManager
	chatLimiter     types.ChatLimiter
	leaderboard     Leaderboard
	profiles        ProfileStore
	history         HistoryStore
	sessionManager  *session.SessionManager
	verifier        *auth.Verifier
	namer           *player.Namer
	startingCredits int64
}

// NewHandler 创建处理器
func NewHandler(deps HandlerDeps) *Handler {
	sm := deps.SessionManager
	if sm == nil {
		sm = session.NewSessionManager(0)
	}
	namer := deps.Namer
	if namer == nil {
		namer = player.NewNamer(nil)
	}
	return &Handler{
		server:          deps.Server,
		roomManager:     deps.RoomManager,
		chatLimiter:     deps.ChatLimiter,
		leaderboard:     deps.Leaderboard,
		profiles:        deps.Profiles,
		history:         deps.History,
		sessionManager:  sm,
		verifier:        deps.Verifier,
		namer:           namer,
		startingCredits: deps.StartingCredits,
	}
}

// Handle 处理一条消息。错误只回给请求方；panic 被恢复并以 INTERNAL 回复。
func (h *Handler) Handle(client types.ClientInterface, msg *protocol.Message) {
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
			log.Printf("[PANIC] 处理 %s 消息时 panic: %v", msg.Type, r)
			client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInternal))
		}
	}()

	cmd, err := codec.DecodeCommand(msg)
	if err != nil {
		log.Printf("⚠️  无法解析的消息: '%s' (来自玩家: %s)", msg.Type, client.GetName())
		client.SendMessage(codec.NewErrorFromError(err))
		return
	}

	if err := h.dispatch(client, cmd); err != nil {
		if apperrors.KindOf(err) == apperrors.KindInternal {
			logger.LogError("处理 %s 失败 (玩家 %s): %v", cmd.Type(), client.GetID(), err)
		}
		client.SendMessage(codec.NewErrorFromError(err))
	}
}

// dispatch 按指令类型分发；除 ping 与身份绑定外都要求已绑定玩家
func (h *Handler) dispatch(client types.ClientInterface, cmd codec.Command) error {
	switch c := cmd.(type) {
	case codec.Ping:
		return h.handlePing(client, c)
	case codec.Authenticate:
		return h.handleAuthenticate(client, c)
	}

	if client.GetPlayer() == nil {
		return apperrors.ErrNotAuthenticated
	}

	switch c := cmd.(type) {
	// 房间操作
	case codec.CreateRoom:
		return h.handleCreateRoom(client, c)
	case codec.JoinRoom:
		return h.handleJoinRoom(client, c)
	case codec.LeaveRoom:
		return h.handleLeaveRoom(client, c)
	case codec.GetRooms:
		return h.handleGetRooms(client)

	// 下注与对局
	case codec.PlaceBet:
		return h.handlePlaceBet(client, c)
	case codec.RemoveBet:
		return h.handleRemoveBet(client, c)
	case codec.Hit:
		return h.handleHit(client)
	case codec.Stand:
		return h.handleStand(client)
	case codec.DoubleDown:
		return h.handleDoubleDown(client)
	case codec.StartRound:
		return h.handleStartRound(client, c)

	// 聊天与查询
	case codec.Chat:
		return h.handleChat(client, c)
	case codec.GetLeaderboard:
		return h.handleGetLeaderboard(client, c)
	case codec.GetStats:
		return h.handleGetStats(client)
	case codec.GetHistory:
		return h.handleGetHistory(client, c)
	}

	return apperrors.Wrapf(apperrors.ErrInvalidMessage, "unhandled message type %q", cmd.Type())
}
