package campaign

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryStore is a simple in-process campaign store for local/dev use.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]Campaign
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[string]Campaign)}
}

func (s *InMemoryStore) Create(_ context.Context, c Campaign) (Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	s.records[c.ID] = c
	return c, nil
}

func (s *InMemoryStore) Get(_ context.Context, id string) (Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.records[id]
	if !ok {
		return Campaign{}, ErrNotFound
	}
	return c, nil
}

func (s *InMemoryStore) List(_ context.Context) ([]Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Campaign, 0, len(s.records))
	for _, c := range s.records {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemoryStore) Update(_ context.Context, id string, u Update) (Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.records[id]
	if !ok {
		return Campaign{}, ErrNotFound
	}
	applyUpdate(&c, u)
	c.UpdatedAt = time.Now().UTC()
	s.records[id] = c
	return c, nil
}

func (s *InMemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return ErrNotFound
	}
	delete(s.records, id)
	return nil
}

func (s *InMemoryStore) Close() error { return nil }

func applyUpdate(c *Campaign, u Update) {
	if u.Name != nil {
		c.Name = *u.Name
	}
	if u.SystemPrompt != nil {
		c.SystemPrompt = *u.SystemPrompt
	}
	if u.InitialGreeting != nil {
		c.InitialGreeting = *u.InitialGreeting
	}
	if u.IsActive != nil {
		c.IsActive = *u.IsActive
	}
}
