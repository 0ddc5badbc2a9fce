// Package memstore provides mutex-guarded in-memory implementations of
// the durable store ports. The relational engine lives outside this
// repository; this implementation backs local development and tests and
// documents the transactional contract adapters must honor.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/apascualco/fleetway/internal/domain"
)

type ServiceStore struct {
	mu      sync.RWMutex
	records map[string]*domain.ServiceRecord
}

func NewServiceStore() *ServiceStore {
	return &ServiceStore{
		records: make(map[string]*domain.ServiceRecord),
	}
}

func (s *ServiceStore) Upsert(ctx context.Context, rec *domain.ServiceRecord) (*domain.ServiceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()

	existing, ok := s.records[rec.ServiceName]
	if !ok {
		created := rec.Clone()
		created.Status = domain.StatusUnknown
		created.RegisteredAt = now
		created.UpdatedAt = now
		s.records[rec.ServiceName] = created
		return created.Clone(), nil
	}

	// Re-registration replaces the mutable fields only; status and the
	// health timestamp survive until an explicit health update.
	existing.ServiceURL = rec.ServiceURL
	existing.HealthCheckURL = rec.HealthCheckURL
	if rec.Metadata != nil {
		existing.Metadata = rec.Clone().Metadata
	}
	existing.UpdatedAt = now
	return existing.Clone(), nil
}

func (s *ServiceStore) GetByName(ctx context.Context, name string) (*domain.ServiceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.records[name].Clone(), nil
}

func (s *ServiceStore) List(ctx context.Context, status domain.ServiceStatus) ([]*domain.ServiceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]*domain.ServiceRecord, 0, len(s.records))
	for _, rec := range s.records {
		if status != "" && rec.Status != status {
			continue
		}
		records = append(records, rec.Clone())
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].ServiceName < records[j].ServiceName
	})
	return records, nil
}

func (s *ServiceStore) UpdateHealth(ctx context.Context, name string, status domain.ServiceStatus, responseTimeMs *float64) (*domain.ServiceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[name]
	if !ok {
		return nil, nil
	}

	now := time.Now().UTC()
	rec.Status = status
	rec.LastHealthCheck = &now
	rec.UpdatedAt = now
	if responseTimeMs != nil {
		rec.MergeMetadata(map[string]any{"avg_response_time": *responseTimeMs})
	}
	return rec.Clone(), nil
}

func (s *ServiceStore) DeleteByName(ctx context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[name]; !ok {
		return false, nil
	}
	delete(s.records, name)
	return true, nil
}
