// Package history keeps the bounded, newest-first log of successful lookups.
//
// Each namespace is a JSON array stored under one key of a store.KVStore.
// Failures never reach the caller: a broken read degrades to an empty list
// and a broken write is logged and dropped.
package history

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/evyataryagoni/netlookup/internal/logger"
	"github.com/evyataryagoni/netlookup/internal/metrics"
	"github.com/evyataryagoni/netlookup/internal/models"
	"github.com/evyataryagoni/netlookup/internal/store"
)

// MaxEntries is the number of items kept per namespace
const MaxEntries = 10

// Namespace keys
const (
	NamespaceIP     = "ip-lookup-history"
	NamespaceDomain = "domain-lookup-history"
)

// NamespaceFor maps a lookup type to its namespace key
func NamespaceFor(kind models.LookupType) (string, bool) {
	switch kind {
	case models.LookupTypeIP:
		return NamespaceIP, true
	case models.LookupTypeDomain:
		return NamespaceDomain, true
	default:
		return "", false
	}
}

// Store is the history log over a key-value backend
type Store struct {
	mu      sync.Mutex // serializes Append within this process
	kv      store.KVStore
	metrics *metrics.Metrics
	logger  *logger.Logger
	now     func() time.Time
	newID   func() string
}

// Option customizes a Store
type Option func(*Store)

// WithClock overrides the timestamp source
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides the item ID source
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// New creates a history store. m and log may be nil.
func New(kv store.KVStore, m *metrics.Metrics, log *logger.Logger, opts ...Option) *Store {
	if log == nil {
		log = logger.NewDefault()
	}
	s := &Store{
		kv:      kv,
		metrics: m,
		logger:  log.WithComponent("HistoryStore"),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record creates an item for a successful lookup and appends it to the
// namespace of kind
func (s *Store) Record(ctx context.Context, kind models.LookupType, query string) {
	namespace, ok := NamespaceFor(kind)
	if !ok {
		s.logger.Error().Str("type", string(kind)).Msg("Unknown lookup type, history not written")
		return
	}

	s.Append(ctx, namespace, models.LookupHistoryItem{
		ID:        s.newID(),
		Type:      kind,
		Query:     query,
		Timestamp: s.now().UnixMilli(),
	})
}

// Append prepends item to namespace and keeps the newest MaxEntries.
// Appends from this process are serialized; processes sharing one backend
// may still lose an entry to a concurrent write (last write wins).
func (s *Store) Append(ctx context.Context, namespace string, item models.LookupHistoryItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.ReadAll(ctx, namespace)

	updated := make([]models.LookupHistoryItem, 0, MaxEntries)
	updated = append(updated, item)
	updated = append(updated, existing...)
	if len(updated) > MaxEntries {
		updated = updated[:MaxEntries]
	}

	data, err := json.Marshal(updated)
	if err != nil {
		s.writeFailed(namespace, err, "Failed to encode history")
		return
	}

	if err := s.kv.Set(ctx, namespace, string(data)); err != nil {
		s.writeFailed(namespace, err, "Failed to save to history")
		return
	}

	if s.metrics != nil {
		s.metrics.HistoryWritesTotal.WithLabelValues(namespace, "success").Inc()
	}
	s.logger.Debug().
		Str("namespace", namespace).
		Str("query", item.Query).
		Int("entries", len(updated)).
		Msg("History updated")
}

// ReadAll returns the items of namespace, newest first.
// Absent or malformed content yields an empty, non-nil slice.
func (s *Store) ReadAll(ctx context.Context, namespace string) []models.LookupHistoryItem {
	raw, found, err := s.kv.Get(ctx, namespace)
	if err != nil {
		s.readFailed(namespace, err, "Failed to load history")
		return []models.LookupHistoryItem{}
	}
	if !found || raw == "" {
		return []models.LookupHistoryItem{}
	}

	var items []models.LookupHistoryItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		s.readFailed(namespace, err, "Stored history is malformed")
		return []models.LookupHistoryItem{}
	}
	if items == nil {
		// stored "null"
		return []models.LookupHistoryItem{}
	}
	return items
}

func (s *Store) writeFailed(namespace string, err error, msg string) {
	s.logger.Error().Err(err).Str("namespace", namespace).Msg(msg)
	if s.metrics != nil {
		s.metrics.HistoryWritesTotal.WithLabelValues(namespace, "error").Inc()
	}
}

func (s *Store) readFailed(namespace string, err error, msg string) {
	s.logger.Warn().Err(err).Str("namespace", namespace).Msg(msg)
	if s.metrics != nil {
		s.metrics.HistoryReadErrors.Inc()
	}
}
