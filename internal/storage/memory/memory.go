// Package memory is an in-process Storage backend. It is the default when no
// external store is configured and the reference backend in tests.
package memory

import (
	"context"
	"sync"
)

// Storage keeps values in a map guarded by a RWMutex.
type Storage struct {
	mu   sync.RWMutex
	data map[string]string
}

// New creates an empty in-memory storage.
func New() *Storage {
	return &Storage{data: make(map[string]string)}
}

// NewWithData creates a storage pre-seeded with the given entries.
func NewWithData(seed map[string]string) *Storage {
	s := New()
	for k, v := range seed {
		s.data[k] = v
	}
	return s
}

// Get returns the value for key.
func (s *Storage) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	return v, ok, nil
}

// Set stores value under key.
func (s *Storage) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = value
	return nil
}

// Ping always succeeds.
func (s *Storage) Ping(context.Context) error {
	return nil
}
