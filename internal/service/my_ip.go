package service

import (
	"context"
	"net"
	"net/netip"
	"sync"

	"github.com/evyataryagoni/netlookup/internal/inspector"
	"github.com/evyataryagoni/netlookup/internal/logger"
	"github.com/evyataryagoni/netlookup/internal/metrics"
	"github.com/evyataryagoni/netlookup/internal/models"
	"github.com/evyataryagoni/netlookup/internal/normalizer"
)

// MyIPLookup reports a public address together with the system info of the
// environment asking for it. Self-lookups are not written to history.
//
// Activate, Refresh and Trigger serve a single session (the CLI) and publish
// into one shared state. LookupCaller serves many remote callers and
// publishes nothing.
type MyIPLookup struct {
	self      SelfSource
	callers   NetworkInfoSource
	activated sync.Once
	state     *tracker[models.MyIPResult]
	metrics   recorder
	logger    *logger.Logger
}

// NewMyIPLookup creates a self-lookup orchestrator in the idle state.
// callers may be nil, in which case LookupCaller always asks self.
func NewMyIPLookup(self SelfSource, callers NetworkInfoSource, m *metrics.Metrics, log *logger.Logger) *MyIPLookup {
	if log == nil {
		log = logger.NewDefault()
	}
	return &MyIPLookup{
		self:    self,
		callers: callers,
		state:   newTracker[models.MyIPResult](),
		metrics: recorder{m: m, kind: KindMyIP},
		logger:  log.WithComponent("MyIP"),
	}
}

// Activate runs the first lookup and returns the resulting state. Only the
// first call triggers; later calls return the current state.
func (s *MyIPLookup) Activate(ctx context.Context, env inspector.Environment) models.LookupState[models.MyIPResult] {
	s.activated.Do(func() {
		s.Trigger(ctx, env)
	})
	return s.State()
}

// Refresh repeats the lookup and returns its own outcome
func (s *MyIPLookup) Refresh(ctx context.Context, env inspector.Environment) (*models.MyIPResult, error) {
	return s.Trigger(ctx, env)
}

// Trigger fetches this host's public address, inspects env and publishes
// both records together
func (s *MyIPLookup) Trigger(ctx context.Context, env inspector.Environment) (*models.MyIPResult, error) {
	seq := s.state.begin()

	result, label, err := s.resolve(ctx, s.self.Self, env)
	if err != nil {
		return nil, s.fail(seq, label, err)
	}

	if !s.state.succeed(seq, result) {
		s.metrics.stale()
	}
	s.metrics.count(resultSuccess)
	return result, nil
}

// LookupCaller describes a remote caller from its address (host or
// host:port) and its environment. Public addresses are looked up directly;
// loopback and private ones share this host's egress, so self is asked
// instead. Nothing is published to State.
func (s *MyIPLookup) LookupCaller(ctx context.Context, addr string, env inspector.Environment) (*models.MyIPResult, error) {
	fetch := s.self.Self
	if ip, ok := publicAddress(addr); ok && s.callers != nil {
		fetch = func(ctx context.Context) ([]byte, error) {
			return s.callers.Lookup(ctx, ip)
		}
	}

	result, label, err := s.resolve(ctx, fetch, env)
	s.metrics.count(label)
	return result, err
}

// State returns the latest published snapshot
func (s *MyIPLookup) State() models.LookupState[models.MyIPResult] {
	return s.state.snapshot()
}

// resolve fetches and normalizes the address record, then pairs it with
// the inspected environment. The returned label is a lookups_total result.
func (s *MyIPLookup) resolve(ctx context.Context, fetch func(context.Context) ([]byte, error), env inspector.Environment) (*models.MyIPResult, string, error) {
	body, err := fetch(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Self lookup request failed")
		return nil, resultUpstream, err
	}
	if err := normalizer.CheckNetworkInfoError(body); err != nil {
		s.logger.Warn().Err(err).Msg("Self lookup provider reported an error")
		return nil, resultProvider, err
	}
	details, err := normalizer.MyIPDetails(body)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to normalize self lookup response")
		return nil, resultProvider, err
	}

	info := inspector.Inspect(env)

	s.logger.Info().
		Str("ip", details.IP).
		Str("browser", info.Browser.Name).
		Str("os", info.OS.Name).
		Msg("Self lookup successful")
	return &models.MyIPResult{IPData: details, SystemInfo: &info}, resultSuccess, nil
}

func (s *MyIPLookup) fail(seq uint64, result string, err error) error {
	if !s.state.fail(seq, err) {
		s.metrics.stale()
	}
	s.metrics.count(result)
	return err
}

// publicAddress extracts a globally routable IP from addr
func publicAddress(addr string) (string, bool) {
	host := addr
	if h, _, err := net.SplitHostPort(addr); err == nil {
		host = h
	}
	ip, err := netip.ParseAddr(host)
	if err != nil {
		return "", false
	}
	ip = ip.Unmap().WithZone("")
	if !ip.IsGlobalUnicast() || ip.IsPrivate() {
		return "", false
	}
	return ip.String(), true
}
