// Package events публикует доменные события после фиксации транзакции.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Типы событий.
const (
	ProviderRegistered = "provider.registered"
	JobCreated         = "job.created"
	JobEnded           = "job.ended"
	OfferMade          = "offer.made"
	OfferAccepted      = "offer.accepted"
	OfferRejected      = "offer.rejected"
	OfferWithdrawn     = "offer.withdrawn"
	RatingGiven        = "rating.given"
)

// Event - доменное событие.
type Event struct {
	Type       string            `json:"type"`
	OccurredAt time.Time         `json:"occurredAt"`
	Payload    map[string]string `json:"payload"`
}

// Publisher отправляет события подписчикам (уведомления, почта).
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// RedisPublisher публикует события в канал Redis.
type RedisPublisher struct {
	rdb     *redis.Client
	channel string
}

// NewRedisPublisher создает новый экземпляр RedisPublisher.
func NewRedisPublisher(rdb *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{rdb: rdb, channel: channel}
}

// Publish сериализует событие в JSON и публикует его.
func (p *RedisPublisher) Publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", event.Type, err)
	}
	if err := p.rdb.Publish(ctx, p.channel, data).Err(); err != nil {
		return fmt.Errorf("publish event %s: %w", event.Type, err)
	}
	return nil
}

// NopPublisher отбрасывает события.
type NopPublisher struct{}

// Publish ничего не делает.
func (NopPublisher) Publish(context.Context, Event) error { return nil }
