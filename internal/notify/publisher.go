package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Publisher delivers a single occupancy event to the notification channel.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// RedisPublisher publishes events to a Redis pub/sub channel.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

// NewRedisPublisher connects to redis with short timeouts; delivery is
// best-effort, so a slow channel must not back up the workers.
func NewRedisPublisher(addr, channel string) *RedisPublisher {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
	})
	return &RedisPublisher{client: client, channel: channel}
}

// Publish sends the event as JSON. No acknowledgment is awaited beyond the
// PUBLISH reply.
func (p *RedisPublisher) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event for room %s: %w", event.RoomID, err)
	}
	if err := p.client.Publish(ctx, p.channel, body).Err(); err != nil {
		return fmt.Errorf("failed to publish event for room %s: %w", event.RoomID, err)
	}
	return nil
}

// Close releases the redis connection.
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
