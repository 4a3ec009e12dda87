// Package notify 把离线提醒交给外部推送服务。服务端只负责把通知发布到
// Redis 频道，真正的推送（移动端推送等）由订阅方完成。
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultChannel 默认发布频道
const DefaultChannel = "casino:push"

// Notification 推送内容
type Notification struct {
	PlayerID  string            `json:"playerId"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	Data      map[string]string `json:"data,omitempty"`
	CreatedAt int64             `json:"createdAt"`
}

// Notifier 推送发布接口
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// RedisPublisher 通过 Redis Pub/Sub 发布通知
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

// NewRedisPublisher 创建发布者
func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{client: client, channel: channel}
}

// Notify 发布通知
func (p *RedisPublisher) Notify(ctx context.Context, n Notification) error {
	if n.CreatedAt == 0 {
		n.CreatedAt = time.Now().UnixMilli()
	}
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	return p.client.Publish(ctx, p.channel, data).Err()
}

// LogNotifier 未配置 Redis 时只记录日志
type LogNotifier struct{}

// Notify 记录通知
func (LogNotifier) Notify(_ context.Context, n Notification) error {
	log.Printf("📨 [push] %s: %s - %s", n.PlayerID, n.Title, n.Body)
	return nil
}
