package domain

import (
	"context"
	"time"
)

// ServiceStore is the durable source of truth for service records
// (output port). Implementations must scope each mutation to its own
// transaction and report failures as *StorageError.
type ServiceStore interface {
	// Upsert inserts or updates by service name. On update the existing
	// Status, LastHealthCheck and RegisteredAt are preserved; on insert
	// Status starts as unknown. Returns the committed record.
	Upsert(ctx context.Context, rec *ServiceRecord) (*ServiceRecord, error)
	GetByName(ctx context.Context, name string) (*ServiceRecord, error)
	// List returns all records, filtered by status when non-empty.
	List(ctx context.Context, status ServiceStatus) ([]*ServiceRecord, error)
	// UpdateHealth sets status and last_health_check, merging the response
	// time into metadata when non-nil. Returns nil, nil when absent.
	UpdateHealth(ctx context.Context, name string, status ServiceStatus, responseTimeMs *float64) (*ServiceRecord, error)
	// DeleteByName reports whether a record existed.
	DeleteByName(ctx context.Context, name string) (bool, error)
}

// FlagStore persists feature flags keyed by (name, environment).
type FlagStore interface {
	Create(ctx context.Context, flag *FeatureFlag) (*FeatureFlag, error)
	GetByName(ctx context.Context, name, environment string) (*FeatureFlag, error)
	List(ctx context.Context, environment string, limit, offset int) ([]*FeatureFlag, error)
	Update(ctx context.Context, name, environment string, update *FlagUpdate) (*FeatureFlag, error)
	Delete(ctx context.Context, name, environment string) (bool, error)
}

// Cache is the key/value cache layer. Every operation is best-effort:
// implementations log failures and report misses, callers fall back to
// the durable store and never abort.
type Cache interface {
	// Get unmarshals the cached value into dest and reports a hit.
	Get(ctx context.Context, key string, dest any) bool
	Set(ctx context.Context, key string, value any, ttl time.Duration)
	Delete(ctx context.Context, key string)
	// DeletePattern removes every key matching a glob pattern.
	DeletePattern(ctx context.Context, pattern string)
}

// DiscoveryIndex holds the ephemeral TTL-bound projections used for fast
// liveness queries without touching the durable store. Best-effort, same
// degradation contract as Cache.
type DiscoveryIndex interface {
	PutInstance(ctx context.Context, name string, entry *InstanceEntry, ttl time.Duration)
	GetInstance(ctx context.Context, name string) (*InstanceEntry, bool)
	SetActive(ctx context.Context, name string, active bool, ttl time.Duration)
	GetActive(ctx context.Context, name string) (bool, bool)
	Purge(ctx context.Context, name string)
}

// Publisher is the fire-and-forget event bus port. Failures are logged
// and swallowed; use NopPublisher when no bus is configured.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *Event)
}

// NopPublisher discards all events. Used when no bus is configured so
// call sites never need nil checks.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, *Event) {}
