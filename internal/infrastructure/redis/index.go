package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/apascualco/fleetway/internal/domain"
	"github.com/redis/go-redis/v9"
)

// Index implements the discovery-index port. Entries are TTL-bound so an
// instance that stops refreshing drops out of discovery on its own. The
// active flag is stored as "1"/"0" for interop with the gateway's
// existing readers.
type Index struct {
	client *redis.Client
}

func NewIndex(client *Client) *Index {
	return &Index{client: client.Client}
}

func (i *Index) PutInstance(ctx context.Context, name string, entry *domain.InstanceEntry, ttl time.Duration) {
	raw, err := json.Marshal(entry)
	if err != nil {
		slog.Warn("instance entry marshal failed", "service", name, "error", err)
		return
	}
	if err := i.client.SetEx(ctx, domain.InstancesKey(name), raw, ttl).Err(); err != nil {
		slog.Warn("discovery index write failed", "service", name, "error", err)
	}
}

func (i *Index) GetInstance(ctx context.Context, name string) (*domain.InstanceEntry, bool) {
	raw, err := i.client.Get(ctx, domain.InstancesKey(name)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("discovery index read failed", "service", name, "error", err)
		}
		return nil, false
	}
	var entry domain.InstanceEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		slog.Warn("instance entry unmarshal failed", "service", name, "error", err)
		return nil, false
	}
	return &entry, true
}

func (i *Index) SetActive(ctx context.Context, name string, active bool, ttl time.Duration) {
	value := "0"
	if active {
		value = "1"
	}
	if err := i.client.SetEx(ctx, domain.ActiveKey(name), value, ttl).Err(); err != nil {
		slog.Warn("active flag write failed", "service", name, "error", err)
	}
}

func (i *Index) GetActive(ctx context.Context, name string) (bool, bool) {
	value, err := i.client.Get(ctx, domain.ActiveKey(name)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("active flag read failed", "service", name, "error", err)
		}
		return false, false
	}
	return value == "1", true
}

func (i *Index) Purge(ctx context.Context, name string) {
	if err := i.client.Del(ctx, domain.InstancesKey(name), domain.ActiveKey(name)).Err(); err != nil {
		slog.Warn("discovery index purge failed", "service", name, "error", err)
	}
}
