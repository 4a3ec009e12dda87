package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Uwaniumnya/crystal-social/internal/protocol"
)

const (
	// Redis key
	playerStatsKey    = "player:stats:"
	leaderboardKey    = "leaderboard:net"
	dailyLeaderboard  = "leaderboard:daily:"
	weeklyLeaderboard = "leaderboard:weekly:"

	dailyExpiration  = 48 * time.Hour
	weeklyExpiration = 8 * 24 * time.Hour

	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
)

// 排行榜类型
const (
	BoardTotal  = "total"
	BoardDaily  = "daily"
	BoardWeekly = "weekly"
)

// PlayerStats 玩家统计数据
type PlayerStats struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`

	RoundsPlayed int64 `json:"rounds_played"`
	RoundsWon    int64 `json:"rounds_won"`
	RoundsLost   int64 `json:"rounds_lost"`
	TotalBet     int64 `json:"total_bet"`
	TotalWon     int64 `json:"total_won"`
	NetWinnings  int64 `json:"net_winnings"`
	BiggestWin   int64 `json:"biggest_win"`

	// 连胜/连败
	CurrentStreak int `json:"current_streak"` // 正数为连胜，负数为连败
	MaxWinStreak  int `json:"max_win_streak"`

	LastPlayedAt int64 `json:"last_played_at"`
	CreatedAt    int64 `json:"created_at"`
}

// LeaderboardManager 排行榜管理器，按净赢额排序
type LeaderboardManager struct {
	redis *redis.Client
	now   func() time.Time
}

// NewLeaderboardManager 创建排行榜管理器
func NewLeaderboardManager(client *redis.Client) *LeaderboardManager {
	return &LeaderboardManager{redis: client, now: time.Now}
}

// GetPlayerStats 获取玩家统计，不存在时返回 nil
func (lm *LeaderboardManager) GetPlayerStats(ctx context.Context, playerID string) (*PlayerStats, error) {
	data, err := lm.redis.Get(ctx, playerStatsKey+playerID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var stats PlayerStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// SavePlayerStats 保存玩家统计
func (lm *LeaderboardManager) SavePlayerStats(ctx context.Context, stats *PlayerStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return lm.redis.Set(ctx, playerStatsKey+stats.PlayerID, data, 0).Err()
}

// updateStreak 更新连胜/连败；平局不影响
func updateStreak(stats *PlayerStats, net int64) {
	switch {
	case net > 0:
		stats.RoundsWon++
		stats.CurrentStreak = max(1, stats.CurrentStreak+1)
	case net < 0:
		stats.RoundsLost++
		stats.CurrentStreak = min(-1, stats.CurrentStreak-1)
	}
	if stats.CurrentStreak > stats.MaxWinStreak {
		stats.MaxWinStreak = stats.CurrentStreak
	}
}

// RecordRoundResult 记录一局结算：wagered 为总下注，returned 为返还总额
func (lm *LeaderboardManager) RecordRoundResult(ctx context.Context, playerID, playerName string, wagered, returned int64) error {
	stats, err := lm.GetPlayerStats(ctx, playerID)
	if err != nil {
		return err
	}
	now := lm.now()
	if stats == nil {
		stats = &PlayerStats{PlayerID: playerID, CreatedAt: now.Unix()}
	}

	net := returned - wagered
	stats.PlayerName = playerName
	stats.RoundsPlayed++
	stats.TotalBet += wagered
	stats.TotalWon += returned
	stats.NetWinnings += net
	stats.BiggestWin = max(stats.BiggestWin, net)
	stats.LastPlayedAt = now.Unix()
	updateStreak(stats, net)

	if err := lm.SavePlayerStats(ctx, stats); err != nil {
		return err
	}
	return lm.updateLeaderboards(ctx, stats, net)
}

// updateLeaderboards 总榜记录累计净赢额，日榜/周榜累加本期净赢额
func (lm *LeaderboardManager) updateLeaderboards(ctx context.Context, stats *PlayerStats, net int64) error {
	now := lm.now()
	dailyKey := lm.boardKey(BoardDaily, now)
	weeklyKey := lm.boardKey(BoardWeekly, now)

	pipe := lm.redis.TxPipeline()
	pipe.ZAdd(ctx, leaderboardKey, redis.Z{Score: float64(stats.NetWinnings), Member: stats.PlayerID})
	pipe.ZIncrBy(ctx, dailyKey, float64(net), stats.PlayerID)
	pipe.Expire(ctx, dailyKey, dailyExpiration)
	pipe.ZIncrBy(ctx, weeklyKey, float64(net), stats.PlayerID)
	pipe.Expire(ctx, weeklyKey, weeklyExpiration)
	_, err := pipe.Exec(ctx)
	return err
}

// boardKey 排行榜 key
func (lm *LeaderboardManager) boardKey(board string, now time.Time) string {
	switch board {
	case BoardDaily:
		return dailyLeaderboard + now.Format("2006-01-02")
	case BoardWeekly:
		year, week := now.ISOWeek()
		return fmt.Sprintf("%s%d-W%02d", weeklyLeaderboard, year, week)
	default:
		return leaderboardKey
	}
}

// GetLeaderboard 获取排行榜（从高到低）
func (lm *LeaderboardManager) GetLeaderboard(ctx context.Context, board string, limit int) ([]protocol.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}
	limit = min(limit, maxLeaderboardLimit)

	results, err := lm.redis.ZRevRangeWithScores(ctx, lm.boardKey(board, lm.now()), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]protocol.LeaderboardEntry, 0, len(results))
	for i, result := range results {
		playerID, ok := result.Member.(string)
		if !ok {
			continue
		}

		stats, err := lm.GetPlayerStats(ctx, playerID)
		if err != nil || stats == nil {
			continue
		}

		winRate := 0.0
		if stats.RoundsPlayed > 0 {
			winRate = float64(stats.RoundsWon) / float64(stats.RoundsPlayed) * 100
		}

		entries = append(entries, protocol.LeaderboardEntry{
			Rank:        i + 1,
			PlayerID:    playerID,
			PlayerName:  stats.PlayerName,
			NetWinnings: int64(result.Score),
			GamesPlayed: stats.RoundsPlayed,
			GamesWon:    stats.RoundsWon,
			WinRate:     winRate,
		})
	}
	return entries, nil
}

// GetPlayerRank 获取玩家总榜排名，未上榜返回 -1
func (lm *LeaderboardManager) GetPlayerRank(ctx context.Context, playerID string) (int64, error) {
	rank, err := lm.redis.ZRevRank(ctx, leaderboardKey, playerID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return -1, nil
		}
		return -1, err
	}
	return rank + 1, nil // Redis 排名从 0 开始
}
