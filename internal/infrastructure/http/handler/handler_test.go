package handler

import (
	"context"
	"sync"
	"time"

	"github.com/apascualco/fleetway/internal/application"
	"github.com/apascualco/fleetway/internal/domain"
	"github.com/apascualco/fleetway/internal/infrastructure/memstore"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testCache and testIndex stand in for the redis projections so handler
// tests run entirely in memory.
type testCache struct{}

func (testCache) Get(context.Context, string, any) bool { return false }

func (testCache) Set(context.Context, string, any, time.Duration) {}

func (testCache) Delete(context.Context, string) {}

func (testCache) DeletePattern(context.Context, string) {}

type testIndex struct {
	mu      sync.Mutex
	entries map[string]*domain.InstanceEntry
	active  map[string]bool
}

func newTestIndex() *testIndex {
	return &testIndex{
		entries: make(map[string]*domain.InstanceEntry),
		active:  make(map[string]bool),
	}
}

func (i *testIndex) PutInstance(_ context.Context, name string, entry *domain.InstanceEntry, _ time.Duration) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.entries[name] = entry
}

func (i *testIndex) GetInstance(_ context.Context, name string) (*domain.InstanceEntry, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	entry, ok := i.entries[name]
	return entry, ok
}

func (i *testIndex) SetActive(_ context.Context, name string, active bool, _ time.Duration) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.active[name] = active
}

func (i *testIndex) GetActive(_ context.Context, name string) (bool, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	active, ok := i.active[name]
	return active, ok
}

func (i *testIndex) Purge(_ context.Context, name string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.entries, name)
	delete(i.active, name)
}

func newTestRegistry() *application.Registry {
	return application.NewRegistry(application.RegistryConfig{}, memstore.NewServiceStore(), testCache{}, newTestIndex(), nil)
}

func newTestFlags() *application.Flags {
	return application.NewFlags(application.FlagsConfig{}, memstore.NewFlagStore(), testCache{}, nil)
}
