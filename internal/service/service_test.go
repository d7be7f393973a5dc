package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/evyataryagoni/netlookup/internal/history"
	"github.com/evyataryagoni/netlookup/internal/inspector"
	"github.com/evyataryagoni/netlookup/internal/logger"
	"github.com/evyataryagoni/netlookup/internal/metrics"
	"github.com/evyataryagoni/netlookup/internal/models"
	"github.com/evyataryagoni/netlookup/internal/provider"
	"github.com/evyataryagoni/netlookup/internal/store"
	"github.com/evyataryagoni/netlookup/internal/synthetic"
	"github.com/evyataryagoni/netlookup/internal/validate"
)

// sourceFunc adapts a function to NetworkInfoSource and WhoisSource
type sourceFunc func(ctx context.Context, query string) ([]byte, error)

func (f sourceFunc) Lookup(ctx context.Context, query string) ([]byte, error) { return f(ctx, query) }

// selfFunc adapts a function to SelfSource
type selfFunc func(ctx context.Context) ([]byte, error)

func (f selfFunc) Self(ctx context.Context) ([]byte, error) { return f(ctx) }

// fabricatorFunc adapts a function to Fabricator
type fabricatorFunc func(ctx context.Context, domain string) (*models.DomainDetails, error)

func (f fabricatorFunc) Generate(ctx context.Context, domain string) (*models.DomainDetails, error) {
	return f(ctx, domain)
}

// countingSource returns body and counts calls
type countingSource struct {
	mu    sync.Mutex
	body  string
	err   error
	calls []string
}

func (c *countingSource) Lookup(_ context.Context, query string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, query)
	if c.err != nil {
		return nil, c.err
	}
	return []byte(c.body), nil
}

func (c *countingSource) Self(ctx context.Context) ([]byte, error) {
	return c.Lookup(ctx, "")
}

func (c *countingSource) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

const googleDNSBody = `{"ip":"8.8.8.8","version":"IPv4","city":"Mountain View","country_name":"United States","org":"GOOGLE"}`

func newHistory() *history.Store {
	return history.New(store.NewMemoryStore(), nil, logger.Nop())
}

// TestIPLookup_Success tests the 8.8.8.8 scenario end to end
func TestIPLookup_Success(t *testing.T) {
	src := &countingSource{body: googleDNSBody}
	hist := newHistory()
	s := NewIPLookup(src, hist, nil, logger.Nop())

	if got := s.State().Status; got != models.StatusIdle {
		t.Fatalf("expected idle before first call, got %s", got)
	}

	details, err := s.Trigger(context.Background(), " 8.8.8.8 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if details.IP != "8.8.8.8" {
		t.Errorf("expected ip 8.8.8.8, got %q", details.IP)
	}

	state := s.State()
	if state.Status != models.StatusSuccess || state.Loading || state.Error != "" {
		t.Errorf("unexpected state %+v", state)
	}
	if state.Data == nil || state.Data.IP != "8.8.8.8" {
		t.Fatalf("expected published ip 8.8.8.8, got %+v", state.Data)
	}
	if state.Data.Connection.Type != "unknown" {
		t.Errorf("expected connection type unknown, got %q", state.Data.Connection.Type)
	}

	if src.callCount() != 1 || src.calls[0] != "8.8.8.8" {
		t.Errorf("expected one fetch for the trimmed ip, got %v", src.calls)
	}

	items := hist.ReadAll(context.Background(), history.NamespaceIP)
	if len(items) != 1 || items[0].Query != "8.8.8.8" || items[0].Type != models.LookupTypeIP {
		t.Errorf("expected one ip history item, got %+v", items)
	}
}

// TestIPLookup_ValidationErrors tests no fetch and no history on bad input
func TestIPLookup_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
		wantMsg string
	}{
		{"empty", "", validate.ErrMissingInput, "Please enter an IP address"},
		{"whitespace", "   ", validate.ErrMissingInput, "Please enter an IP address"},
		{"bad octet", "256.1.1.1", validate.ErrInvalidFormat, "Please enter a valid IP address"},
		{"hostname", "example.com", validate.ErrInvalidFormat, "Please enter a valid IP address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &countingSource{body: googleDNSBody}
			hist := newHistory()
			s := NewIPLookup(src, hist, nil, logger.Nop())

			_, err := s.Trigger(context.Background(), tt.input)

			var verr *validate.Error
			if !errors.As(err, &verr) {
				t.Fatalf("expected *validate.Error, got %v", err)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			state := s.State()
			if state.Status != models.StatusError || state.Error != tt.wantMsg || state.Data != nil {
				t.Errorf("unexpected state %+v", state)
			}
			if src.callCount() != 0 {
				t.Errorf("expected no fetch, got %d", src.callCount())
			}
			if items := hist.ReadAll(context.Background(), history.NamespaceIP); len(items) != 0 {
				t.Errorf("expected no history, got %d items", len(items))
			}
		})
	}
}

// TestIPLookup_UpstreamErrors tests transport and provider failures
func TestIPLookup_UpstreamErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     *countingSource
		wantMsg string
	}{
		{
			name:    "http status",
			src:     &countingSource{err: &provider.StatusError{Code: 500, Text: "Internal Server Error"}},
			wantMsg: "Error: 500 - Internal Server Error",
		},
		{
			name:    "provider error field",
			src:     &countingSource{body: `{"ip":"127.0.0.1","error":true,"reason":"Reserved IP Address"}`},
			wantMsg: "Reserved IP Address",
		},
		{
			name:    "malformed body",
			src:     &countingSource{body: "<html>"},
			wantMsg: "provider returned a malformed response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hist := newHistory()
			m := metrics.New(prometheus.NewRegistry())
			s := NewIPLookup(tt.src, hist, m, logger.Nop())

			details, err := s.Trigger(context.Background(), "127.0.0.1")
			if err == nil || details != nil {
				t.Fatalf("expected failure, got %+v, %v", details, err)
			}

			state := s.State()
			if state.Status != models.StatusError || state.Error != tt.wantMsg {
				t.Errorf("expected error %q, got %+v", tt.wantMsg, state)
			}
			if items := hist.ReadAll(context.Background(), history.NamespaceIP); len(items) != 0 {
				t.Errorf("expected no history on failure, got %d items", len(items))
			}
			if got := testutil.ToFloat64(m.LookupsTotal.WithLabelValues(KindIP, resultSuccess)); got != 0 {
				t.Errorf("expected no success metric, got %v", got)
			}
		})
	}
}

// TestIPLookup_ClearsPreviousResult tests a new call resets to loading
func TestIPLookup_ClearsPreviousResult(t *testing.T) {
	var s *IPLookup
	var during models.LookupState[models.IPDetails]
	calls := 0
	src := sourceFunc(func(_ context.Context, ip string) ([]byte, error) {
		calls++
		if calls == 2 {
			during = s.State()
		}
		return []byte(fmt.Sprintf(`{"ip":%q}`, ip)), nil
	})
	s = NewIPLookup(src, nil, nil, logger.Nop())

	if _, err := s.Trigger(context.Background(), "1.1.1.1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.Trigger(context.Background(), "8.8.4.4"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if during.Status != models.StatusLoading || !during.Loading || during.Data != nil {
		t.Errorf("expected cleared loading state during call, got %+v", during)
	}
	if got := s.State(); got.Data == nil || got.Data.IP != "8.8.4.4" {
		t.Errorf("expected latest result, got %+v", got.Data)
	}
}

// TestIPLookup_StaleResponseDiscarded tests a slow older call can't win
func TestIPLookup_StaleResponseDiscarded(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	src := sourceFunc(func(_ context.Context, ip string) ([]byte, error) {
		if ip == "1.1.1.1" {
			close(entered)
			<-release
		}
		return []byte(fmt.Sprintf(`{"ip":%q}`, ip)), nil
	})
	m := metrics.New(prometheus.NewRegistry())
	hist := newHistory()
	s := NewIPLookup(src, hist, m, logger.Nop())

	done := make(chan *models.IPDetails)
	go func() {
		d, _ := s.Trigger(context.Background(), "1.1.1.1")
		done <- d
	}()

	<-entered
	if _, err := s.Trigger(context.Background(), "8.8.8.8"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	close(release)

	first := <-done
	if first == nil || first.IP != "1.1.1.1" {
		t.Errorf("expected slow call to return its own result, got %+v", first)
	}

	state := s.State()
	if state.Data == nil || state.Data.IP != "8.8.8.8" {
		t.Errorf("expected newest result to stay published, got %+v", state.Data)
	}
	if got := testutil.ToFloat64(m.StaleResponses.WithLabelValues(KindIP)); got != 1 {
		t.Errorf("expected 1 stale response, got %v", got)
	}
	if items := hist.ReadAll(context.Background(), history.NamespaceIP); len(items) != 2 {
		t.Errorf("expected both successful lookups in history, got %d", len(items))
	}
}

// TestParseFallbackPolicy tests policy names
func TestParseFallbackPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    FallbackPolicy
		wantErr bool
	}{
		{"", FallbackFabricate, false},
		{"fabricate", FallbackFabricate, false},
		{" Surface-Error ", FallbackSurfaceError, false},
		{"retry", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFallbackPolicy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("%q: unexpected error %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("%q: expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func newGenerator() *synthetic.Generator {
	return synthetic.New(synthetic.WithDelay(0))
}

// TestDomainLookup_Success tests the primary WHOIS path
func TestDomainLookup_Success(t *testing.T) {
	src := &countingSource{body: `{"domainName":"example.com","nameServer":"a.iana-servers.net","dnssec":"signedDelegation"}`}
	hist := newHistory()
	m := metrics.New(prometheus.NewRegistry())
	s := NewDomainLookup(src, newGenerator(), FallbackFabricate, hist, m, logger.Nop())

	details, err := s.Trigger(context.Background(), "example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if details.Synthetic {
		t.Error("expected genuine record")
	}
	if !details.DNSSEC || len(details.Nameservers) != 1 {
		t.Errorf("unexpected normalized record %+v", details)
	}
	if got := testutil.ToFloat64(m.LookupFallbacks); got != 0 {
		t.Errorf("expected no fallback, got %v", got)
	}
	if items := hist.ReadAll(context.Background(), history.NamespaceDomain); len(items) != 1 {
		t.Errorf("expected 1 domain history item, got %d", len(items))
	}
}

// TestDomainLookup_FallbackOnFailure tests forced upstream failures
func TestDomainLookup_FallbackOnFailure(t *testing.T) {
	tests := []struct {
		name string
		src  *countingSource
	}{
		{"transport error", &countingSource{err: errors.New("connection refused")}},
		{"http status", &countingSource{err: &provider.StatusError{Code: 503, Text: "Service Unavailable"}}},
		{"provider error field", &countingSource{body: `{"error":"Domain name is required"}`}},
		{"malformed body", &countingSource{body: "oops"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hist := newHistory()
			m := metrics.New(prometheus.NewRegistry())
			s := NewDomainLookup(tt.src, newGenerator(), FallbackFabricate, hist, m, logger.Nop())

			details, err := s.Trigger(context.Background(), "example.com")
			if err != nil {
				t.Fatalf("expected fallback to mask failure, got %v", err)
			}

			state := s.State()
			if state.Status != models.StatusSuccess || state.Data == nil {
				t.Fatalf("expected success state, got %+v", state)
			}
			if state.Data.Domain != "example.com" || details.Domain != "example.com" {
				t.Errorf("expected domain example.com, got %q", state.Data.Domain)
			}
			if !state.Data.Synthetic {
				t.Error("expected synthetic flag on fallback record")
			}
			if got := testutil.ToFloat64(m.LookupFallbacks); got != 1 {
				t.Errorf("expected 1 fallback, got %v", got)
			}
			if items := hist.ReadAll(context.Background(), history.NamespaceDomain); len(items) != 1 {
				t.Errorf("expected history on fallback path, got %d", len(items))
			}
		})
	}
}

// TestDomainLookup_SurfaceError tests the non-fabricating policy
func TestDomainLookup_SurfaceError(t *testing.T) {
	src := &countingSource{err: &provider.StatusError{Code: 502, Text: "Bad Gateway"}}
	hist := newHistory()
	s := NewDomainLookup(src, newGenerator(), FallbackSurfaceError, hist, nil, logger.Nop())

	if _, err := s.Trigger(context.Background(), "example.com"); err == nil {
		t.Fatal("expected upstream error")
	}

	state := s.State()
	if state.Status != models.StatusError || state.Error != "Error: 502 - Bad Gateway" {
		t.Errorf("unexpected state %+v", state)
	}
	if items := hist.ReadAll(context.Background(), history.NamespaceDomain); len(items) != 0 {
		t.Errorf("expected no history, got %d items", len(items))
	}
}

// TestDomainLookup_BothPathsFail tests a failing fallback
func TestDomainLookup_BothPathsFail(t *testing.T) {
	src := &countingSource{err: errors.New("connection refused")}
	fab := fabricatorFunc(func(ctx context.Context, _ string) (*models.DomainDetails, error) {
		return nil, context.Canceled
	})
	hist := newHistory()
	s := NewDomainLookup(src, fab, FallbackFabricate, hist, nil, logger.Nop())

	_, err := s.Trigger(context.Background(), "example.com")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected fallback error, got %v", err)
	}
	if s.State().Status != models.StatusError {
		t.Errorf("expected error state, got %s", s.State().Status)
	}
	if items := hist.ReadAll(context.Background(), history.NamespaceDomain); len(items) != 0 {
		t.Errorf("expected no history, got %d items", len(items))
	}
}

// TestDomainLookup_ValidationError tests no fetch on bad input
func TestDomainLookup_ValidationError(t *testing.T) {
	src := &countingSource{}
	s := NewDomainLookup(src, newGenerator(), FallbackFabricate, nil, nil, logger.Nop())

	_, err := s.Trigger(context.Background(), "-bad-.com")
	if !errors.Is(err, validate.ErrInvalidFormat) {
		t.Fatalf("expected invalid format, got %v", err)
	}
	if s.State().Error != "Please enter a valid domain name" {
		t.Errorf("unexpected error %q", s.State().Error)
	}
	if src.callCount() != 0 {
		t.Errorf("expected no fetch, got %d", src.callCount())
	}
	if s.Policy() != FallbackFabricate {
		t.Errorf("unexpected policy %q", s.Policy())
	}
}

const desktopUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// TestMyIPLookup_Activate tests the single automatic trigger
func TestMyIPLookup_Activate(t *testing.T) {
	src := &countingSource{body: `{"ip":"203.0.113.7","connection":{"type":"hosting","vpn":true}}`}
	s := NewMyIPLookup(src, nil, nil, logger.Nop())
	env := inspector.Environment{UserAgent: desktopUA}

	state := s.Activate(context.Background(), env)
	s.Activate(context.Background(), env)

	if src.callCount() != 1 {
		t.Errorf("expected one fetch across activations, got %d", src.callCount())
	}
	if state.Status != models.StatusSuccess || state.Data == nil {
		t.Fatalf("unexpected state %+v", state)
	}
	if state.Data.IPData == nil || state.Data.SystemInfo == nil {
		t.Fatal("expected both ip data and system info")
	}
	if state.Data.IPData.Connection != (models.Connection{Type: "unknown"}) {
		t.Errorf("expected default connection, got %+v", state.Data.IPData.Connection)
	}

	b := state.Data.SystemInfo.Browser
	count := 0
	for _, v := range []bool{b.IsMobile, b.IsTablet, b.IsDesktop} {
		if v {
			count++
		}
	}
	if count != 1 || !b.IsDesktop {
		t.Errorf("expected exactly one device class (desktop), got %+v", b)
	}
}

// TestMyIPLookup_Refresh tests manual re-runs
func TestMyIPLookup_Refresh(t *testing.T) {
	src := &countingSource{body: `{"ip":"203.0.113.7"}`}
	s := NewMyIPLookup(src, nil, nil, logger.Nop())
	ctx := context.Background()

	s.Activate(ctx, inspector.Environment{})
	result, err := s.Refresh(ctx, inspector.Environment{UserAgent: "Mozilla/5.0 (iPad; CPU OS 16_6 like Mac OS X)"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if src.callCount() != 2 {
		t.Errorf("expected 2 fetches, got %d", src.callCount())
	}
	if !result.SystemInfo.Browser.IsTablet {
		t.Errorf("expected refreshed environment, got %+v", result.SystemInfo.Browser)
	}
	if got := s.State().Data; got == nil || !got.SystemInfo.Browser.IsTablet {
		t.Error("expected refreshed state to be published")
	}
}

// TestMyIPLookup_Error tests failures leave no data
func TestMyIPLookup_Error(t *testing.T) {
	src := selfFunc(func(ctx context.Context) ([]byte, error) {
		return nil, &provider.StatusError{Code: 429, Text: "Too Many Requests"}
	})
	s := NewMyIPLookup(src, nil, nil, logger.Nop())

	state := s.Activate(context.Background(), inspector.Environment{})

	if state.Status != models.StatusError || state.Error != "Error: 429 - Too Many Requests" {
		t.Errorf("unexpected state %+v", state)
	}
	if state.Data != nil {
		t.Error("expected no data on error")
	}
}

// TestMyIPLookup_ConcurrentActivate tests activation runs once under contention
func TestMyIPLookup_ConcurrentActivate(t *testing.T) {
	src := &countingSource{body: `{"ip":"203.0.113.7"}`}
	s := NewMyIPLookup(src, nil, nil, logger.Nop())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Activate(context.Background(), inspector.Environment{})
		}()
	}
	wg.Wait()

	if src.callCount() != 1 {
		t.Errorf("expected exactly one fetch, got %d", src.callCount())
	}
}

// TestMyIPLookup_LookupCaller tests the source chosen for each caller address
func TestMyIPLookup_LookupCaller(t *testing.T) {
	tests := []struct {
		name      string
		addr      string
		wantQuery string // empty when self answers
	}{
		{"public ipv4 with port", "203.0.113.20:443", "203.0.113.20"},
		{"bare public ipv4", "203.0.113.20", "203.0.113.20"},
		{"public ipv6 with port", "[2001:db8::1]:443", "2001:db8::1"},
		{"mapped ipv4", "[::ffff:203.0.113.20]:443", "203.0.113.20"},
		{"private", "10.0.0.5:8080", ""},
		{"loopback", "127.0.0.1:8080", ""},
		{"ipv6 loopback", "[::1]:8080", ""},
		{"unparseable", "not-an-address", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			self := &countingSource{body: `{"ip":"198.51.100.1"}`}
			callers := &countingSource{body: `{"ip":"203.0.113.20"}`}
			s := NewMyIPLookup(self, callers, nil, logger.Nop())

			result, err := s.LookupCaller(context.Background(), tt.addr, inspector.Environment{UserAgent: desktopUA})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.SystemInfo == nil || !result.SystemInfo.Browser.IsDesktop {
				t.Errorf("expected system info from env, got %+v", result.SystemInfo)
			}

			if tt.wantQuery == "" {
				if self.callCount() != 1 || callers.callCount() != 0 {
					t.Errorf("expected self to answer, got self=%d callers=%d", self.callCount(), callers.callCount())
				}
				return
			}
			if self.callCount() != 0 || len(callers.calls) != 1 || callers.calls[0] != tt.wantQuery {
				t.Errorf("expected caller lookup of %s, got self=%d callers=%v", tt.wantQuery, self.callCount(), callers.calls)
			}
		})
	}
}

// TestMyIPLookup_LookupCallerPublishesNothing tests caller lookups leave the shared state alone
func TestMyIPLookup_LookupCallerPublishesNothing(t *testing.T) {
	callers := &countingSource{body: `{"ip":"203.0.113.20"}`}
	s := NewMyIPLookup(&countingSource{}, callers, nil, logger.Nop())

	if _, err := s.LookupCaller(context.Background(), "203.0.113.20:443", inspector.Environment{UserAgent: desktopUA}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state := s.State(); state.Status != models.StatusIdle || state.Data != nil {
		t.Errorf("expected shared state to stay idle, got %+v", state)
	}
}

// TestMyIPLookup_LookupCallerWithoutCallers tests self answers when no source is set
func TestMyIPLookup_LookupCallerWithoutCallers(t *testing.T) {
	self := &countingSource{body: `{"ip":"198.51.100.1"}`}
	s := NewMyIPLookup(self, nil, nil, logger.Nop())

	result, err := s.LookupCaller(context.Background(), "203.0.113.20:443", inspector.Environment{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IPData.IP != "198.51.100.1" || self.callCount() != 1 {
		t.Errorf("expected self answer, got %+v after %d calls", result.IPData, self.callCount())
	}
}

// TestDomainLookup_SyntheticDelayCancelled tests ctx ending during the delay
func TestDomainLookup_SyntheticDelayCancelled(t *testing.T) {
	src := &countingSource{err: errors.New("down")}
	gen := synthetic.New(synthetic.WithDelay(time.Hour))
	s := NewDomainLookup(src, gen, FallbackFabricate, nil, nil, logger.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := s.Trigger(ctx, "example.com"); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}
