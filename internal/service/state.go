package service

import (
	"context"
	"sync"

	"github.com/evyataryagoni/netlookup/internal/metrics"
	"github.com/evyataryagoni/netlookup/internal/models"
)

// NetworkInfoSource returns raw network-info payloads for an address
type NetworkInfoSource interface {
	Lookup(ctx context.Context, ip string) ([]byte, error)
}

// SelfSource returns the raw network-info payload of this host's public address
type SelfSource interface {
	Self(ctx context.Context) ([]byte, error)
}

// WhoisSource returns raw WHOIS payloads for a domain
type WhoisSource interface {
	Lookup(ctx context.Context, domain string) ([]byte, error)
}

// Fabricator produces a stand-in domain record when WhoisSource fails
type Fabricator interface {
	Generate(ctx context.Context, domain string) (*models.DomainDetails, error)
}

// HistoryRecorder persists successful queries
type HistoryRecorder interface {
	Record(ctx context.Context, kind models.LookupType, query string)
}

// tracker owns the published state of one orchestrator.
//
// Every call to begin issues a new sequence number. publish only succeeds
// when its number is still the latest one, so a slow response can never
// overwrite the result of a newer call.
type tracker[T any] struct {
	mu    sync.Mutex
	seq   uint64
	state models.LookupState[T]
}

func newTracker[T any]() *tracker[T] {
	return &tracker[T]{state: models.LookupState[T]{Status: models.StatusIdle}}
}

// begin clears data and error, enters loading and returns the call's number
func (t *tracker[T]) begin() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.seq++
	t.state = models.LookupState[T]{Status: models.StatusLoading, Loading: true}
	return t.seq
}

// succeed publishes data for call seq. It reports false for a stale call.
func (t *tracker[T]) succeed(seq uint64, data *T) bool {
	return t.publish(seq, models.LookupState[T]{Status: models.StatusSuccess, Data: data})
}

// fail publishes err for call seq. It reports false for a stale call.
func (t *tracker[T]) fail(seq uint64, err error) bool {
	return t.publish(seq, models.LookupState[T]{Status: models.StatusError, Error: err.Error()})
}

func (t *tracker[T]) publish(seq uint64, s models.LookupState[T]) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if seq != t.seq {
		return false
	}
	t.state = s
	return true
}

func (t *tracker[T]) snapshot() models.LookupState[T] {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// recorder labels lookup metrics with one kind. A nil Metrics records nothing.
type recorder struct {
	m    *metrics.Metrics
	kind string
}

func (r recorder) count(result string) {
	if r.m != nil {
		r.m.LookupsTotal.WithLabelValues(r.kind, result).Inc()
	}
}

func (r recorder) stale() {
	if r.m != nil {
		r.m.StaleResponses.WithLabelValues(r.kind).Inc()
	}
}

func (r recorder) fallback() {
	if r.m != nil {
		r.m.LookupFallbacks.Inc()
	}
}
