package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"github.com/Uwaniumnya/crystal-social/internal/auth"
	"github.com/Uwaniumnya/crystal-social/internal/config"
	"github.com/Uwaniumnya/crystal-social/internal/game/room"
	"github.com/Uwaniumnya/crystal-social/internal/notify"
	"github.com/Uwaniumnya/crystal-social/internal/server/handler"
	"github.com/Uwaniumnya/crystal-social/internal/server/session"
	"github.com/Uwaniumnya/crystal-social/internal/server/storage"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// 来源由 OriginChecker 在升级前校验
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	// 消息都很小，压缩只会增加 CPU 与内存开销
	EnableCompression: false,
}

// Server WebSocket 服务器
type Server struct {
	config         *config.Config
	redis          *redis.Client // Redis 关闭时为 nil
	redisStore     *storage.RedisStore
	leaderboard    *storage.LeaderboardManager
	notifier       notify.Notifier
	roomManager    *room.RoomManager
	sessionManager *session.SessionManager
	clients        *registry
	handler        *handler.Handler
	mux            *http.ServeMux
	httpServer     *http.Server

	// 安全组件
	connLimiter    *ConnLimiter
	originChecker  *OriginChecker
	messageLimiter *MessageLimiter
	chatLimiter    *ChatLimiter
	ipFilter       *IPFilter

	// 连接控制
	maxConnections int
	semaphore      chan struct{} // 信号量控制并发连接数

	// 维护模式
	maintenanceMode bool
	maintenanceMu   sync.RWMutex

	stop     chan struct{}
	stopOnce sync.Once
}

// NewServer 创建服务器实例。配置了 Redis 时连接失败直接返回错误。
func NewServer(cfg *config.Config) (*Server, error) {
	if cfg.Redis.Disabled {
		log.Println("⚠️ Redis 已关闭：房间快照、玩家资料与排行榜只保存在内存中")
		return newServer(cfg, nil), nil
	}

	// 初始化 Redis 客户端
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// 测试 Redis 连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis 连接失败: %w", err)
	}

	return newServer(cfg, rdb), nil
}

func newServer(cfg *config.Config, rdb *redis.Client) *Server {
	s := &Server{
		config:   cfg,
		redis:    rdb,
		notifier: notify.LogNotifier{},
		clients:  newRegistry(),
		// 初始化安全组件
		connLimiter:    NewConnLimiter(cfg.Security.RateLimit),
		originChecker:  NewOriginChecker(cfg.Security.AllowedOrigins),
		messageLimiter: NewMessageLimiter(cfg.Security.MessageLimit.MaxPerSecond),
		chatLimiter:    NewChatLimiter(cfg.Security.ChatLimit),
		ipFilter:       NewIPFilter(cfg.Security.AllowedIPs, cfg.Security.BlockedIPs),
		// 初始化连接控制
		maxConnections: cfg.Server.MaxConnections,
		semaphore:      make(chan struct{}, cfg.Server.MaxConnections),
		sessionManager: session.NewSessionManager(cfg.Game.ReconnectWindowDuration()),
		stop:           make(chan struct{}),
	}

	// 存储依赖以接口传给下层，Redis 关闭时必须传 nil 接口
	var (
		roomStore   room.Store
		recorder    room.ResultRecorder
		profiles    handler.ProfileStore
		history     handler.HistoryStore
		leaderboard handler.Leaderboard
	)
	if rdb != nil {
		s.redisStore = storage.NewRedisStore(rdb)
		s.leaderboard = storage.NewLeaderboardManager(rdb)
		s.notifier = notify.NewRedisPublisher(rdb, cfg.Notify.Channel)
		roomStore, recorder = s.redisStore, s.leaderboard
		profiles, history, leaderboard = s.redisStore, s.redisStore, s.leaderboard
	}

	// 初始化房间管理器
	s.roomManager = room.NewRoomManager(roomStore, recorder, room.Options{
		ResetDelay:          cfg.Game.ResetDelayDuration(),
		RoomTimeout:         cfg.Game.RoomTimeoutDuration(),
		MinBet:              cfg.Game.MinBet,
		MaxBet:              cfg.Game.MaxBet,
		BlackjackMaxPlayers: cfg.Game.BlackjackMaxPlayers,
		DiceMaxPlayers:      cfg.Game.DiceMaxPlayers,
	})
	s.roomManager.SetLobby(s)

	// 初始化消息处理器
	s.handler = handler.NewHandler(handler.HandlerDeps{
		Server:          s,
		RoomManager:     s.roomManager,
		ChatLimiter:     s.chatLimiter,
		Leaderboard:     leaderboard,
		Profiles:        profiles,
		History:         history,
		SessionManager:  s.sessionManager,
		Verifier:        auth.NewVerifier(cfg.Auth.Secret, cfg.Auth.Issuer),
		StartingCredits: cfg.Game.StartingCredits,
	})

	s.mux = http.NewServeMux()
	s.mux.HandleFunc("/ws", s.handleWebSocket)
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/stats", s.handleStats)
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second, // 防止 Slowloris 攻击
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("🔒 安全配置: 连接限制=%d/s, 消息限制=%d/s, 聊天限制=%d/s, 最大连接数=%d, 身份校验=%v",
		cfg.Security.RateLimit.MaxPerSecond, cfg.Security.MessageLimit.MaxPerSecond,
		cfg.Security.ChatLimit.MaxPerSecond, cfg.Server.MaxConnections, cfg.Auth.Secret != "")

	return s
}

// Handler 返回 HTTP 路由（/ws、/health、/stats）
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start 启动服务器，阻塞直到服务器关闭
func (s *Server) Start() error {
	// 启动监控 goroutine
	go s.monitorStats()

	log.Printf("🚀 服务器启动在 ws://%s/ws (CPU核心数: %d)", s.httpServer.Addr, runtime.NumCPU())
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
