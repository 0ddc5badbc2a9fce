package application

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/apascualco/fleetway/internal/domain"
)

// fakeCache is an in-memory domain.Cache that records invalidations so
// tests can assert the dual-write discipline.
type fakeCache struct {
	mu              sync.Mutex
	values          map[string][]byte
	ttls            map[string]time.Duration
	deletedPatterns []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		values: make(map[string][]byte),
		ttls:   make(map[string]time.Duration),
	}
}

func (c *fakeCache) Get(_ context.Context, key string, dest any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw, ok := c.values[key]
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

func (c *fakeCache) Set(_ context.Context, key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.values[key] = raw
	c.ttls[key] = ttl
}

func (c *fakeCache) Delete(_ context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, key)
}

func (c *fakeCache) DeletePattern(_ context.Context, pattern string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.deletedPatterns = append(c.deletedPatterns, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range c.values {
		if strings.HasPrefix(key, prefix) {
			delete(c.values, key)
		}
	}
}

func (c *fakeCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.values[key]
	return ok
}

type fakeIndex struct {
	mu      sync.Mutex
	entries map[string]*domain.InstanceEntry
	active  map[string]bool
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{
		entries: make(map[string]*domain.InstanceEntry),
		active:  make(map[string]bool),
	}
}

func (i *fakeIndex) PutInstance(_ context.Context, name string, entry *domain.InstanceEntry, _ time.Duration) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.entries[name] = entry
}

func (i *fakeIndex) GetInstance(_ context.Context, name string) (*domain.InstanceEntry, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	entry, ok := i.entries[name]
	return entry, ok
}

func (i *fakeIndex) SetActive(_ context.Context, name string, active bool, _ time.Duration) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.active[name] = active
}

func (i *fakeIndex) GetActive(_ context.Context, name string) (bool, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	active, ok := i.active[name]
	return active, ok
}

func (i *fakeIndex) Purge(_ context.Context, name string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.entries, name)
	delete(i.active, name)
}

type publishedEvent struct {
	topic string
	event *domain.Event
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *fakePublisher) Publish(_ context.Context, topic string, event *domain.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{topic: topic, event: event})
}

func (p *fakePublisher) actions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	actions := make([]string, 0, len(p.events))
	for _, e := range p.events {
		actions = append(actions, e.event.Action)
	}
	return actions
}
