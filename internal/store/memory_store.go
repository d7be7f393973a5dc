package store

import (
	"context"
	"sync"
)

// MemoryStore implements KVStore with an in-process map.
// Nothing survives a restart; used by tests and throwaway servers.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

// Get implements the KVStore interface method
func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.data[key]
	return value, ok, nil
}

// Set implements the KVStore interface method
func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = value
	return nil
}

// Close implements the KVStore interface
func (s *MemoryStore) Close() error {
	return nil
}
