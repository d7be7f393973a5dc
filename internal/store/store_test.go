package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

// TestNewStore_Types tests the backend factory
func TestNewStore_Types(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	defer mr.Close()

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"file", Config{Type: "file", Path: filepath.Join(t.TempDir(), "h.csv")}, false},
		{"default is file", Config{Path: filepath.Join(t.TempDir(), "h.csv")}, false},
		{"memory", Config{Type: "Memory"}, false},
		{"redis", Config{Type: "redis", RedisAddr: mr.Addr()}, false},
		{"redis unreachable", Config{Type: "redis", RedisAddr: "invalid:9999"}, true},
		{"unknown", Config{Type: "sqlite"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewStore(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			defer s.Close()

			ctx := context.Background()
			if err := s.Set(ctx, "k", "v"); err != nil {
				t.Fatalf("set failed: %v", err)
			}
			if v, found, _ := s.Get(ctx, "k"); !found || v != "v" {
				t.Errorf("expected 'v', got %q (found=%v)", v, found)
			}
		})
	}
}

// TestMockStore tests call tracking and error injection
func TestMockStore(t *testing.T) {
	m := NewMockStore()
	ctx := context.Background()

	m.Set(ctx, "a", "1")
	m.Get(ctx, "a")

	if len(m.SetCalls) != 1 || len(m.GetCalls) != 1 {
		t.Errorf("expected 1 set and 1 get, got %d and %d", len(m.SetCalls), len(m.GetCalls))
	}

	m.GetError = context.DeadlineExceeded
	if _, _, err := m.Get(ctx, "a"); err == nil {
		t.Error("expected injected error")
	}

	if err := m.Close(); err != nil || !m.CloseCalled {
		t.Error("expected close to be tracked")
	}
}
