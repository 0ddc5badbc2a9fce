package application

import (
	"time"

	"github.com/apascualco/fleetway/internal/domain"
)

type RegistryConfig struct {
	// RegistryTTL bounds the service_info cache and the discovery-index
	// projections.
	RegistryTTL time.Duration
	// HealthyListTTL is deliberately short so a stale healthy-set expires
	// quickly even when invalidation is missed.
	HealthyListTTL time.Duration
}

func (c *RegistryConfig) applyDefaults() {
	if c.RegistryTTL == 0 {
		c.RegistryTTL = 5 * time.Minute
	}
	if c.HealthyListTTL == 0 {
		c.HealthyListTTL = 30 * time.Second
	}
}

// Registry orchestrates reads and writes across the durable store, the
// cache layer and the discovery index. It owns the dual-write discipline:
// store commit first, then cache/index projections, then a best-effort
// event publish.
type Registry struct {
	config    RegistryConfig
	store     domain.ServiceStore
	cache     domain.Cache
	index     domain.DiscoveryIndex
	publisher domain.Publisher
}

func NewRegistry(cfg RegistryConfig, store domain.ServiceStore, cache domain.Cache, index domain.DiscoveryIndex, publisher domain.Publisher) *Registry {
	cfg.applyDefaults()
	if publisher == nil {
		publisher = domain.NopPublisher{}
	}
	return &Registry{
		config:    cfg,
		store:     store,
		cache:     cache,
		index:     index,
		publisher: publisher,
	}
}
