package service

import (
	"context"

	"github.com/evyataryagoni/netlookup/internal/logger"
	"github.com/evyataryagoni/netlookup/internal/metrics"
	"github.com/evyataryagoni/netlookup/internal/models"
	"github.com/evyataryagoni/netlookup/internal/normalizer"
	"github.com/evyataryagoni/netlookup/internal/validate"
)

// Lookup kinds used as metric labels
const (
	KindIP     = "ip"
	KindDomain = "domain"
	KindMyIP   = "my_ip"
)

// Result labels of the lookups_total metric
const (
	resultSuccess    = "success"
	resultValidation = "validation"
	resultUpstream   = "upstream"
	resultProvider   = "provider"
	resultSynthetic  = "synthetic"
)

// IPLookup orchestrates lookups of a single IP address
//
// Flow of one call:
//  1. Validate the input
//  2. Fetch the raw record from the network-info source
//  3. Reject provider-signalled errors and normalize the payload
//  4. Publish the result and record the query in history
type IPLookup struct {
	source  NetworkInfoSource
	history HistoryRecorder
	state   *tracker[models.IPDetails]
	metrics recorder
	logger  *logger.Logger
}

// NewIPLookup creates an IP lookup orchestrator in the idle state.
// history, m and log may be nil.
func NewIPLookup(source NetworkInfoSource, history HistoryRecorder, m *metrics.Metrics, log *logger.Logger) *IPLookup {
	if log == nil {
		log = logger.NewDefault()
	}
	return &IPLookup{
		source:  source,
		history: history,
		state:   newTracker[models.IPDetails](),
		metrics: recorder{m: m, kind: KindIP},
		logger:  log.WithComponent("IPLookup"),
	}
}

// Trigger runs one lookup of raw and returns its own outcome. The published
// State only reflects it if no newer call was started in the meantime.
// Validation failures are returned as *validate.Error.
func (s *IPLookup) Trigger(ctx context.Context, raw string) (*models.IPDetails, error) {
	seq := s.state.begin()

	ip, err := validate.CheckIP(raw)
	if err != nil {
		s.logger.Warn().Str("input", raw).Msg("Invalid IP address")
		return nil, s.fail(seq, resultValidation, err)
	}

	log := s.logger.WithQuery(ip)
	log.Debug().Msg("Looking up IP address")

	body, err := s.source.Lookup(ctx, ip)
	if err != nil {
		log.Error().Err(err).Msg("Network-info request failed")
		return nil, s.fail(seq, resultUpstream, err)
	}

	if err := normalizer.CheckNetworkInfoError(body); err != nil {
		log.Warn().Err(err).Msg("Network-info provider reported an error")
		return nil, s.fail(seq, resultProvider, err)
	}

	details, err := normalizer.IPDetails(body)
	if err != nil {
		log.Error().Err(err).Msg("Failed to normalize network-info response")
		return nil, s.fail(seq, resultProvider, err)
	}

	if !s.state.succeed(seq, details) {
		s.metrics.stale()
		log.Debug().Msg("Discarding stale IP lookup result")
	}
	s.metrics.count(resultSuccess)
	if s.history != nil {
		s.history.Record(ctx, models.LookupTypeIP, ip)
	}

	log.Info().
		Str("city", details.City).
		Str("country", details.CountryName).
		Msg("IP lookup successful")
	return details, nil
}

// State returns the latest published snapshot
func (s *IPLookup) State() models.LookupState[models.IPDetails] {
	return s.state.snapshot()
}

func (s *IPLookup) fail(seq uint64, result string, err error) error {
	if !s.state.fail(seq, err) {
		s.metrics.stale()
	}
	s.metrics.count(result)
	return err
}
