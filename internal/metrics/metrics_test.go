package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestNew_IsolatedRegistries tests that separate registries don't collide
func TestNew_IsolatedRegistries(t *testing.T) {
	first := New(prometheus.NewRegistry())
	second := New(prometheus.NewRegistry())

	first.LookupsTotal.WithLabelValues("ip", "success").Inc()

	if got := testutil.ToFloat64(first.LookupsTotal.WithLabelValues("ip", "success")); got != 1 {
		t.Errorf("expected 1, got %v", got)
	}
	if got := testutil.ToFloat64(second.LookupsTotal.WithLabelValues("ip", "success")); got != 0 {
		t.Errorf("expected second instance untouched, got %v", got)
	}
}

// TestNew_DuplicateRegistrationPanics tests promauto semantics on one registry
func TestNew_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	New(reg)
}
