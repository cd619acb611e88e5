package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/honeycarbs/jobscout/internal/domain"
)

// Channel is the pub/sub channel alerts are published on
const Channel = "jobscout:alerts"

type publisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// RedisBroadcaster publishes alerts as JSON on a Redis channel
type RedisBroadcaster struct {
	client  publisher
	channel string
}

// NewRedisBroadcaster creates a broadcaster on the default channel
func NewRedisBroadcaster(client publisher) *RedisBroadcaster {
	return &RedisBroadcaster{client: client, channel: Channel}
}

type alertEvent struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message,omitempty"`
	URL       string    `json:"url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (b *RedisBroadcaster) Name() string {
	return "redis"
}

func (b *RedisBroadcaster) Broadcast(ctx context.Context, alert domain.Alert) error {
	payload, err := json.Marshal(alertEvent{
		ID:        alert.ID.String(),
		Type:      string(alert.Type),
		Title:     alert.Title,
		Message:   alert.Message,
		URL:       alert.URL,
		CreatedAt: alert.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("alert: encode event: %w", err)
	}

	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("alert: publish %s: %w", b.channel, err)
	}
	return nil
}
