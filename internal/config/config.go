package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// 默认值
const (
	defaultHost                  = "0.0.0.0"
	defaultPort                  = 1780
	defaultMaxConnections        = 10000
	defaultRedisAddr             = "localhost:6379"
	defaultResetDelay            = 5000 // 毫秒
	defaultStartingCredits       = 1000
	defaultMinBet                = 10
	defaultMaxBet                = 1000
	defaultBlackjackMaxPlayers   = 6
	defaultDiceMaxPlayers        = 8
	defaultRoomTimeout           = 30  // 分钟
	defaultReconnectWindow       = 120 // 秒
	defaultShutdownTimeout       = 10  // 分钟
	defaultShutdownCheckInterval = 5   // 秒
	defaultConnPerSecond         = 10
	defaultConnPerMinute         = 60
	defaultBanDuration           = 60 // 秒
	defaultMessagePerSecond      = 20
	defaultChatPerSecond         = 1
	defaultChatPerMinute         = 30
	defaultChatCooldown          = 5 // 秒
	defaultNotifyChannel         = "casino:push"
)

// Config 服务端配置
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Redis    RedisConfig    `yaml:"redis"`
	Game     GameConfig     `yaml:"game"`
	Security SecurityConfig `yaml:"security"`
	Auth     AuthConfig     `yaml:"auth"`
	Notify   NotifyConfig   `yaml:"notify"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig WebSocket 服务器配置
type ServerConfig struct {
	Host           string `yaml:"host" env:"SERVER_HOST"`
	Port           int    `yaml:"port" env:"SERVER_PORT"`
	MaxConnections int    `yaml:"max_connections" env:"SERVER_MAX_CONNECTIONS"`
}

// RedisConfig Redis 配置；Disabled 时只使用内存状态
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
	Disabled bool   `yaml:"disabled" env:"REDIS_DISABLED"`
}

// GameConfig 游戏配置
type GameConfig struct {
	ResetDelay            int   `yaml:"reset_delay" env:"GAME_RESET_DELAY"` // 结算后重置延迟（毫秒）
	StartingCredits       int64 `yaml:"starting_credits" env:"GAME_STARTING_CREDITS"`
	MinBet                int64 `yaml:"min_bet" env:"GAME_MIN_BET"`
	MaxBet                int64 `yaml:"max_bet" env:"GAME_MAX_BET"`
	BlackjackMaxPlayers   int   `yaml:"blackjack_max_players" env:"GAME_BLACKJACK_MAX_PLAYERS"`
	DiceMaxPlayers        int   `yaml:"dice_max_players" env:"GAME_DICE_MAX_PLAYERS"`
	RoomTimeout           int   `yaml:"room_timeout" env:"GAME_ROOM_TIMEOUT"`                         // 房间空闲超时（分钟）
	ReconnectWindow       int   `yaml:"reconnect_window" env:"GAME_RECONNECT_WINDOW"`                 // 重连窗口（秒）
	ShutdownTimeout       int   `yaml:"shutdown_timeout" env:"GAME_SHUTDOWN_TIMEOUT"`                 // 优雅关闭最长等待（分钟）
	ShutdownCheckInterval int   `yaml:"shutdown_check_interval" env:"GAME_SHUTDOWN_CHECK_INTERVAL"` // 关闭检查间隔（秒）
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	AllowedOrigins []string           `yaml:"allowed_origins" env:"SECURITY_ALLOWED_ORIGINS" envSeparator:","`
	AllowedIPs     []string           `yaml:"allowed_ips" env:"SECURITY_ALLOWED_IPS" envSeparator:","` // 地址或 CIDR，空表示不限制
	BlockedIPs     []string           `yaml:"blocked_ips" env:"SECURITY_BLOCKED_IPS" envSeparator:","`
	TrustProxy     bool               `yaml:"trust_proxy" env:"SECURITY_TRUST_PROXY"` // 是否采信 X-Forwarded-For
	RateLimit      RateLimitConfig    `yaml:"rate_limit"`
	MessageLimit   MessageLimitConfig `yaml:"message_limit"`
	ChatLimit      ChatLimitConfig    `yaml:"chat_limit"`
}

// RateLimitConfig 连接速率限制
type RateLimitConfig struct {
	MaxPerSecond int `yaml:"max_per_second" env:"SECURITY_RATE_LIMIT_MAX_PER_SECOND"`
	MaxPerMinute int `yaml:"max_per_minute" env:"SECURITY_RATE_LIMIT_MAX_PER_MINUTE"`
	BanDuration  int `yaml:"ban_duration" env:"SECURITY_RATE_LIMIT_BAN_DURATION"` // 秒
}

// MessageLimitConfig 单连接消息速率限制
type MessageLimitConfig struct {
	MaxPerSecond int `yaml:"max_per_second" env:"SECURITY_MESSAGE_LIMIT_MAX_PER_SECOND"`
}

// ChatLimitConfig 聊天速率限制
type ChatLimitConfig struct {
	MaxPerSecond int `yaml:"max_per_second" env:"SECURITY_CHAT_LIMIT_MAX_PER_SECOND"`
	MaxPerMinute int `yaml:"max_per_minute" env:"SECURITY_CHAT_LIMIT_MAX_PER_MINUTE"`
	Cooldown     int `yaml:"cooldown" env:"SECURITY_CHAT_LIMIT_COOLDOWN"` // 秒
}

// AuthConfig 身份令牌校验；Secret 为空时接受未签名的身份
type AuthConfig struct {
	Secret string `yaml:"secret" env:"AUTH_SECRET"`
	Issuer string `yaml:"issuer" env:"AUTH_ISSUER"`
}

// NotifyConfig 推送发布配置
type NotifyConfig struct {
	Channel string `yaml:"channel" env:"NOTIFY_CHANNEL"`
}

// LogConfig 日志配置；File 为空时输出到标准错误
type LogConfig struct {
	File string `yaml:"file" env:"LOG_FILE"`
}

// ResetDelayDuration 返回结算后重置延迟
func (c *GameConfig) ResetDelayDuration() time.Duration {
	return time.Duration(c.ResetDelay) * time.Millisecond
}

// RoomTimeoutDuration 返回房间空闲超时
func (c *GameConfig) RoomTimeoutDuration() time.Duration {
	return time.Duration(c.RoomTimeout) * time.Minute
}

// ReconnectWindowDuration 返回重连窗口
func (c *GameConfig) ReconnectWindowDuration() time.Duration {
	return time.Duration(c.ReconnectWindow) * time.Second
}

// ShutdownTimeoutDuration 返回优雅关闭最长等待时间
func (c *GameConfig) ShutdownTimeoutDuration() time.Duration {
	return time.Duration(c.ShutdownTimeout) * time.Minute
}

// ShutdownCheckIntervalDuration 返回关闭检查间隔
func (c *GameConfig) ShutdownCheckIntervalDuration() time.Duration {
	return time.Duration(c.ShutdownCheckInterval) * time.Second
}

// BanDurationTime 返回封禁时长
func (c *RateLimitConfig) BanDurationTime() time.Duration {
	return time.Duration(c.BanDuration) * time.Second
}

// CooldownDuration 返回聊天冷却时长
func (c *ChatLimitConfig) CooldownDuration() time.Duration {
	return time.Duration(c.Cooldown) * time.Second
}

// Load 加载配置文件，再用环境变量覆盖，最后补齐默认值
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default 返回默认配置（仍然应用环境变量覆盖）
func Default() *Config {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		cfg = Config{}
	}
	applyDefaults(&cfg)
	return &cfg
}

// applyDefaults 补齐未设置的字段
func applyDefaults(cfg *Config) {
	setDefault(&cfg.Server.Host, defaultHost)
	setDefault(&cfg.Server.Port, defaultPort)
	setDefault(&cfg.Server.MaxConnections, defaultMaxConnections)
	setDefault(&cfg.Redis.Addr, defaultRedisAddr)

	setDefault(&cfg.Game.ResetDelay, defaultResetDelay)
	setDefault(&cfg.Game.StartingCredits, defaultStartingCredits)
	setDefault(&cfg.Game.MinBet, defaultMinBet)
	setDefault(&cfg.Game.MaxBet, defaultMaxBet)
	setDefault(&cfg.Game.BlackjackMaxPlayers, defaultBlackjackMaxPlayers)
	setDefault(&cfg.Game.DiceMaxPlayers, defaultDiceMaxPlayers)
	setDefault(&cfg.Game.RoomTimeout, defaultRoomTimeout)
	setDefault(&cfg.Game.ReconnectWindow, defaultReconnectWindow)
	setDefault(&cfg.Game.ShutdownTimeout, defaultShutdownTimeout)
	setDefault(&cfg.Game.ShutdownCheckInterval, defaultShutdownCheckInterval)

	if len(cfg.Security.AllowedOrigins) == 0 {
		cfg.Security.AllowedOrigins = []string{"*"}
	}
	setDefault(&cfg.Security.RateLimit.MaxPerSecond, defaultConnPerSecond)
	setDefault(&cfg.Security.RateLimit.MaxPerMinute, defaultConnPerMinute)
	setDefault(&cfg.Security.RateLimit.BanDuration, defaultBanDuration)
	setDefault(&cfg.Security.MessageLimit.MaxPerSecond, defaultMessagePerSecond)
	setDefault(&cfg.Security.ChatLimit.MaxPerSecond, defaultChatPerSecond)
	setDefault(&cfg.Security.ChatLimit.MaxPerMinute, defaultChatPerMinute)
	setDefault(&cfg.Security.ChatLimit.Cooldown, defaultChatCooldown)

	setDefault(&cfg.Notify.Channel, defaultNotifyChannel)
}

func setDefault[T comparable](field *T, value T) {
	var zero T
	if *field == zero {
		*field = value
	}
}

// Validate 检查配置之间的约束
func (c *Config) Validate() error {
	var errs []error
	if c.Game.MinBet < 1 {
		errs = append(errs, fmt.Errorf("game.min_bet must be at least 1, got %d", c.Game.MinBet))
	}
	if c.Game.MaxBet < c.Game.MinBet {
		errs = append(errs, fmt.Errorf("game.max_bet (%d) must not be below game.min_bet (%d)", c.Game.MaxBet, c.Game.MinBet))
	}
	if c.Game.StartingCredits < 0 {
		errs = append(errs, fmt.Errorf("game.starting_credits must not be negative"))
	}
	if c.Game.BlackjackMaxPlayers < 1 || c.Game.DiceMaxPlayers < 1 {
		errs = append(errs, fmt.Errorf("max players must be at least 1"))
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	for _, entry := range slices.Concat(c.Security.AllowedIPs, c.Security.BlockedIPs) {
		if !validIPRule(entry) {
			errs = append(errs, fmt.Errorf("security: invalid ip rule %q", entry))
		}
	}
	return errors.Join(errs...)
}

// validIPRule 地址或 CIDR 网段
func validIPRule(entry string) bool {
	entry = strings.TrimSpace(entry)
	if strings.Contains(entry, "/") {
		_, err := netip.ParsePrefix(entry)
		return err == nil
	}
	_, err := netip.ParseAddr(entry)
	return err == nil
}
