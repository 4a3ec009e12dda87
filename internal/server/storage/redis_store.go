package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Uwaniumnya/crystal-social/internal/game/player"
	"github.com/Uwaniumnya/crystal-social/internal/protocol"
)

const (
	// Redis key 前缀
	roomKeyPrefix    = "room:"
	historyKeyPrefix = "room:history:"
	profileKeyPrefix = "player:profile:"

	// 房间数据过期时间
	roomExpiration = 2 * time.Hour
	// 玩家资料过期时间
	profileExpiration = 30 * 24 * time.Hour
	// 每个房间保留的历史局数
	historyLimit = 50
)

// RoomData 房间数据（用于 Redis 序列化，只做展示与排障，不用于恢复对局）
type RoomData struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Game       string   `json:"game"`
	HostID     string   `json:"host_id"`
	Status     string   `json:"status"`
	MinBet     int64    `json:"min_bet"`
	MaxBet     int64    `json:"max_bet"`
	MaxPlayers int      `json:"max_players"`
	MemberIDs  []string `json:"member_ids"`
	Round      int      `json:"round"`
	CreatedAt  int64    `json:"created_at"`
	UpdatedAt  int64    `json:"updated_at"`
}

// RedisStore Redis 存储
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore 创建 Redis 存储
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// --- 房间存储 ---

// SaveRoom 保存房间到 Redis
func (rs *RedisStore) SaveRoom(ctx context.Context, data *RoomData) error {
	if data == nil {
		return nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal room %s: %w", data.ID, err)
	}

	return rs.client.Set(ctx, roomKeyPrefix+data.ID, jsonData, roomExpiration).Err()
}

// DeleteRoom 从 Redis 删除房间及其历史
func (rs *RedisStore) DeleteRoom(ctx context.Context, id string) error {
	return rs.client.Del(ctx, roomKeyPrefix+id, historyKeyPrefix+id).Err()
}

// AppendRoundHistory 追加一局摘要，只保留最近 historyLimit 局
func (rs *RedisStore) AppendRoundHistory(ctx context.Context, roomID string, summary protocol.RoundSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal round summary: %w", err)
	}

	key := historyKeyPrefix + roomID
	pipe := rs.client.TxPipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, historyLimit-1)
	pipe.Expire(ctx, key, roomExpiration)
	_, err = pipe.Exec(ctx)
	return err
}

// RoundHistory 获取最近 n 局摘要（新的在前）
func (rs *RedisStore) RoundHistory(ctx context.Context, roomID string, n int) ([]protocol.RoundSummary, error) {
	if n <= 0 {
		return nil, nil
	}
	raw, err := rs.client.LRange(ctx, historyKeyPrefix+roomID, 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}

	out := make([]protocol.RoundSummary, 0, len(raw))
	for _, item := range raw {
		var s protocol.RoundSummary
		if err := json.Unmarshal([]byte(item), &s); err != nil {
			return nil, fmt.Errorf("unmarshal round summary: %w", err)
		}
		out = append(out, s)
	}
	return out, nil
}

// --- 玩家资料 ---

// SaveProfile 保存玩家余额与统计
func (rs *RedisStore) SaveProfile(ctx context.Context, p player.Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal profile %s: %w", p.ID, err)
	}
	return rs.client.Set(ctx, profileKeyPrefix+p.ID, data, profileExpiration).Err()
}

// LoadProfile 加载玩家资料，不存在时返回 nil
func (rs *RedisStore) LoadProfile(ctx context.Context, id string) (*player.Profile, error) {
	data, err := rs.client.Get(ctx, profileKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var p player.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("unmarshal profile %s: %w", id, err)
	}
	return &p, nil
}
