package redis

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/apascualco/fleetway/internal/domain"
	"github.com/redis/go-redis/v9"
)

// Publisher emits control-plane events over Redis pub/sub. Fire and
// forget: a failed publish is logged at warning level and swallowed,
// callers must never depend on delivery.
type Publisher struct {
	client *redis.Client
}

func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client.Client}
}

func (p *Publisher) Publish(ctx context.Context, topic string, event *domain.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		slog.Warn("event marshal failed",
			"topic", topic,
			"action", event.Action,
			"error", err,
		)
		return
	}
	if err := p.client.Publish(ctx, topic, payload).Err(); err != nil {
		slog.Warn("event publish failed",
			"topic", topic,
			"action", event.Action,
			"resource_id", event.ResourceID,
			"error", err,
		)
		return
	}
	slog.Debug("event published", "topic", topic, "action", event.Action, "resource_id", event.ResourceID)
}
