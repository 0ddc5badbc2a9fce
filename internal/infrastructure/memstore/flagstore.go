package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/apascualco/fleetway/internal/domain"
)

type FlagStore struct {
	mu    sync.RWMutex
	flags map[flagKey]*domain.FeatureFlag
}

type flagKey struct {
	name string
	env  string
}

func NewFlagStore() *FlagStore {
	return &FlagStore{
		flags: make(map[flagKey]*domain.FeatureFlag),
	}
}

func (s *FlagStore) Create(ctx context.Context, flag *domain.FeatureFlag) (*domain.FeatureFlag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := flagKey{flag.Name, flag.Environment}
	if _, ok := s.flags[key]; ok {
		return nil, domain.NewStorageError("create", domain.ErrFlagExists)
	}

	now := time.Now().UTC()
	created := flag.Clone()
	created.CreatedAt = now
	created.UpdatedAt = now
	s.flags[key] = created
	return created.Clone(), nil
}

func (s *FlagStore) GetByName(ctx context.Context, name, environment string) (*domain.FeatureFlag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.flags[flagKey{name, environment}].Clone(), nil
}

func (s *FlagStore) List(ctx context.Context, environment string, limit, offset int) ([]*domain.FeatureFlag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	flags := make([]*domain.FeatureFlag, 0, len(s.flags))
	for _, flag := range s.flags {
		if environment != "" && flag.Environment != environment {
			continue
		}
		flags = append(flags, flag.Clone())
	}
	sort.Slice(flags, func(i, j int) bool {
		if flags[i].Name != flags[j].Name {
			return flags[i].Name < flags[j].Name
		}
		return flags[i].Environment < flags[j].Environment
	})

	if offset >= len(flags) {
		return nil, nil
	}
	flags = flags[offset:]
	if limit > 0 && limit < len(flags) {
		flags = flags[:limit]
	}
	return flags, nil
}

func (s *FlagStore) Update(ctx context.Context, name, environment string, update *domain.FlagUpdate) (*domain.FeatureFlag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	flag, ok := s.flags[flagKey{name, environment}]
	if !ok {
		return nil, nil
	}

	if update.Description != nil {
		flag.Description = *update.Description
	}
	if update.IsEnabled != nil {
		flag.IsEnabled = *update.IsEnabled
	}
	if update.RolloutPercentage != nil {
		flag.RolloutPercentage = *update.RolloutPercentage
	}
	if update.TargetUsers != nil {
		flag.TargetUsers = append([]string(nil), (*update.TargetUsers)...)
	}
	flag.UpdatedAt = time.Now().UTC()
	return flag.Clone(), nil
}

func (s *FlagStore) Delete(ctx context.Context, name, environment string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := flagKey{name, environment}
	if _, ok := s.flags[key]; !ok {
		return false, nil
	}
	delete(s.flags, key)
	return true, nil
}
