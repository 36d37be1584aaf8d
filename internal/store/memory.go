// internal/store/memory.go
//
// In-memory registry of live session controllers.
//
// Characteristics:
//   - Stores *game.Controller values keyed by controller ID in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Controllers idle longer than the session TTL are evicted by Evict.
//   - State is lost when the process restarts; finished results are persisted
//     separately by the results package.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jgalan247/Edexcel-GCSE/internal/game"
)

// ErrNotFound is returned for an unknown session id.
var ErrNotFound = errors.New("session not found")

// Store defines the registry interface for live sessions.
type Store interface {
	// Save adds or replaces a controller.
	Save(ctx context.Context, c *game.Controller) error

	// Get retrieves a controller by ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*game.Controller, error)

	// Delete drops a controller. Unknown ids are not an error.
	Delete(ctx context.Context, id string) error

	// Each calls fn for every live controller, outside the store lock.
	Each(fn func(*game.Controller))

	// Evict drops controllers idle since before now-ttl and returns how many.
	Evict(now time.Time, ttl time.Duration) int

	// Len reports the number of live controllers.
	Len() int
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex
	sessions map[string]*game.Controller
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[string]*game.Controller)}
}

func (m *memory) Save(ctx context.Context, c *game.Controller) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[c.ID()] = c
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (*game.Controller, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.sessions[id]; ok {
		return c, nil
	}
	return nil, ErrNotFound
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *memory) Each(fn func(*game.Controller)) {
	m.mu.RLock()
	live := make([]*game.Controller, 0, len(m.sessions))
	for _, c := range m.sessions {
		live = append(live, c)
	}
	m.mu.RUnlock()

	for _, c := range live {
		fn(c)
	}
}

func (m *memory) Evict(now time.Time, ttl time.Duration) int {
	if ttl <= 0 {
		return 0
	}
	cutoff := now.Add(-ttl)
	var stale []string
	m.Each(func(c *game.Controller) {
		if c.LastActive().Before(cutoff) {
			stale = append(stale, c.ID())
		}
	})

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range stale {
		delete(m.sessions, id)
	}
	return len(stale)
}

func (m *memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
