package store

import (
	"context"
	"sync"
)

// MockStore is a test double for the KVStore interface
// It allows tests to control behavior and verify interactions
type MockStore struct {
	mu sync.Mutex

	// Data holds the mock contents
	Data map[string]string

	// Track method calls for verification in tests
	GetCalls    []string
	SetCalls    []string
	CloseCalled bool

	// Control behavior for error scenarios
	GetError   error
	SetError   error
	CloseError error
}

// NewMockStore creates an empty mock store
func NewMockStore() *MockStore {
	return &MockStore{
		Data:     map[string]string{},
		GetCalls: []string{},
		SetCalls: []string{},
	}
}

// Get implements the KVStore interface
func (m *MockStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GetCalls = append(m.GetCalls, key)
	if m.GetError != nil {
		return "", false, m.GetError
	}

	value, ok := m.Data[key]
	return value, ok, nil
}

// Set implements the KVStore interface
func (m *MockStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SetCalls = append(m.SetCalls, key)
	if m.SetError != nil {
		return m.SetError
	}

	m.Data[key] = value
	return nil
}

// Close implements the KVStore interface
func (m *MockStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CloseCalled = true
	return m.CloseError
}
