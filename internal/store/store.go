package store

import (
	"context"
	"fmt"
	"strings"
)

// KVStore is a string-keyed, string-valued durable store.
// Allows multiple implementations (file, memory, Redis, MySQL) and easy testing with mocks
type KVStore interface {
	// Get returns the value under key; found is false when the key is absent
	Get(ctx context.Context, key string) (value string, found bool, err error)

	// Set stores value under key, replacing any previous value
	Set(ctx context.Context, key, value string) error

	// Close cleans up resources (database connections, file handles, etc.)
	Close() error
}

// Config selects and configures a KVStore backend
type Config struct {
	Type string // "file", "memory", "redis", or "mysql"
	Path string // file backend path

	MySQLDSN string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// NewStore creates a KVStore based on the configuration (factory pattern)
func NewStore(cfg Config) (KVStore, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Type)) {
	case "file", "":
		return NewFileStore(cfg.Path)

	case "memory":
		return NewMemoryStore(), nil

	case "redis":
		s, err := NewRedisStore(context.Background(), cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis store: %w", err)
		}
		return s, nil

	case "mysql":
		s, err := NewMySQLStore(cfg.MySQLDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to create MySQL store: %w", err)
		}
		return s, nil

	default:
		return nil, fmt.Errorf("unknown datastore type: %s (supported: 'file', 'memory', 'redis', 'mysql')", cfg.Type)
	}
}
