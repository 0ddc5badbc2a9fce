package application

import (
	"context"
	"log/slog"

	"github.com/apascualco/fleetway/internal/domain"
)

// Register upserts a service by name. Re-registration replaces the URLs
// and metadata but never resets status or health timestamps; those only
// move through UpdateHealth. After the store commit the record is
// mirrored into the discovery index and the cache, then a register event
// is published best-effort.
func (r *Registry) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.ServiceRecord, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	rec, err := r.store.Upsert(ctx, &domain.ServiceRecord{
		ServiceName:    req.ServiceName,
		ServiceURL:     req.ServiceURL,
		HealthCheckURL: req.HealthCheckURL,
		Status:         domain.StatusUnknown,
		Metadata:       req.Metadata,
	})
	if err != nil {
		return nil, err
	}

	r.index.PutInstance(ctx, rec.ServiceName, instanceEntry(rec, 0), r.config.RegistryTTL)
	r.index.SetActive(ctx, rec.ServiceName, true, r.config.RegistryTTL)
	r.cache.Set(ctx, domain.ServiceInfoKey(rec.ServiceName), rec, r.config.RegistryTTL)

	r.publishServiceEvent(ctx, domain.ActionRegister, rec.ServiceName, rec.Status)

	slog.Info("service registered",
		"service", rec.ServiceName,
		"url", rec.ServiceURL,
		"status", string(rec.Status),
	)
	return rec, nil
}

// Deregister removes the durable row and purges every cache and
// discovery-index projection for the name. Reports whether a record
// existed; unknown names are not an error.
func (r *Registry) Deregister(ctx context.Context, name string) (bool, error) {
	found, err := r.store.DeleteByName(ctx, name)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}

	r.cache.DeletePattern(ctx, domain.ServiceInfoPattern(name))
	r.cache.Delete(ctx, domain.KeyHealthyServices)
	r.index.Purge(ctx, name)

	r.publishServiceEvent(ctx, domain.ActionDeregister, name, "deregistered")

	slog.Info("service deregistered", "service", name)
	return true, nil
}
