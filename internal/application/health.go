package application

import (
	"context"
	"log/slog"

	"github.com/apascualco/fleetway/internal/domain"
)

// UpdateHealth records a health verdict for a service. Returns nil, nil
// when the service is not registered; a verdict never creates a record.
//
// On success the discovery index is refreshed, the service_info cache is
// invalidated by pattern, and the healthy-services list cache is dropped
// so a stale healthy-set is never served after a transition.
func (r *Registry) UpdateHealth(ctx context.Context, name string, status domain.ServiceStatus, responseTimeMs *float64) (*domain.ServiceRecord, error) {
	rec, err := r.store.UpdateHealth(ctx, name, status, responseTimeMs)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		slog.Debug("health update for unknown service", "service", name)
		return nil, nil
	}

	failures := r.consecutiveFailures(ctx, rec)
	r.index.PutInstance(ctx, name, instanceEntry(rec, failures), r.config.RegistryTTL)
	r.index.SetActive(ctx, name, status == domain.StatusHealthy, r.config.RegistryTTL)

	r.cache.DeletePattern(ctx, domain.ServiceInfoPattern(name))
	r.cache.Delete(ctx, domain.KeyHealthyServices)

	r.publishServiceEvent(ctx, domain.ActionHealthUpdate, name, status)

	slog.Info("service health updated",
		"service", name,
		"status", string(status),
		"consecutive_failures", failures,
	)
	return rec, nil
}
