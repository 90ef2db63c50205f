package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Backend holds raw response bodies.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

type entry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryBackend is a process-local TTL map. A zero ttl never expires.
type MemoryBackend struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryBackend(ttl time.Duration) *MemoryBackend {
	return &MemoryBackend{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *MemoryBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if m.ttl > 0 && !e.expiresAt.After(m.now()) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return nil, false, nil
	}
	return e.value, true, nil
}

func (m *MemoryBackend) Set(_ context.Context, key string, value []byte) error {
	var expiresAt time.Time
	if m.ttl > 0 {
		expiresAt = m.now().Add(m.ttl)
	}

	m.mu.Lock()
	m.entries[key] = entry{value: value, expiresAt: expiresAt}
	m.mu.Unlock()
	return nil
}

// Store deduplicates concurrent loads of one key and keeps successful
// results in its backend.
type Store struct {
	backend Backend
	flight  singleflight.Group
}

func NewStore(backend Backend) *Store {
	return &Store{backend: backend}
}

// GetOrLoad returns the cached body for key or loads it. Backend read and
// write failures degrade to a direct load; only loader errors are returned.
func (s *Store) GetOrLoad(ctx context.Context, key string, loader func(context.Context) ([]byte, error)) ([]byte, error) {
	if loader == nil {
		return nil, fmt.Errorf("loader is required")
	}
	if key == "" || s == nil || s.backend == nil {
		return loader(ctx)
	}

	if value, ok, err := s.backend.Get(ctx, key); err == nil && ok {
		return value, nil
	}

	value, err, _ := s.flight.Do(key, func() (any, error) {
		if cached, ok, err := s.backend.Get(ctx, key); err == nil && ok {
			return cached, nil
		}
		loaded, loadErr := loader(ctx)
		if loadErr != nil {
			return nil, loadErr
		}
		_ = s.backend.Set(ctx, key, loaded)
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return value.([]byte), nil
}
