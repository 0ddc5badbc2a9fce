package application

import (
	"context"

	"github.com/apascualco/fleetway/internal/domain"
)

// Get is cache-first: on a miss the durable store is read and the cache
// repopulated. Returns nil, nil when the service is absent everywhere.
func (r *Registry) Get(ctx context.Context, name string) (*domain.ServiceRecord, error) {
	var cached domain.ServiceRecord
	if r.cache.Get(ctx, domain.ServiceInfoKey(name), &cached) {
		return &cached, nil
	}

	rec, err := r.store.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}

	r.cache.Set(ctx, domain.ServiceInfoKey(name), rec, r.config.RegistryTTL)
	return rec, nil
}

// List always reads the durable store directly; no TTL applies.
func (r *Registry) List(ctx context.Context, status domain.ServiceStatus) ([]*domain.ServiceRecord, error) {
	return r.store.List(ctx, status)
}

// ListHealthy is cache-first with the short healthy-list TTL to bound the
// staleness of discovery results.
func (r *Registry) ListHealthy(ctx context.Context) ([]*domain.ServiceRecord, error) {
	var cached []*domain.ServiceRecord
	if r.cache.Get(ctx, domain.KeyHealthyServices, &cached) {
		return cached, nil
	}

	records, err := r.store.List(ctx, domain.StatusHealthy)
	if err != nil {
		return nil, err
	}

	r.cache.Set(ctx, domain.KeyHealthyServices, records, r.config.HealthyListTTL)
	return records, nil
}

// Instance returns the discovery-index projection for one service, nil
// when the entry expired or was never written.
func (r *Registry) Instance(ctx context.Context, name string) *domain.InstanceEntry {
	entry, ok := r.index.GetInstance(ctx, name)
	if !ok {
		return nil
	}
	return entry
}

// Active reports the last-known liveness flag for a service without
// touching the durable store. The second return is false when the flag
// has expired.
func (r *Registry) Active(ctx context.Context, name string) (bool, bool) {
	return r.index.GetActive(ctx, name)
}
