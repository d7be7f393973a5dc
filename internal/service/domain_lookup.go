package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/evyataryagoni/netlookup/internal/logger"
	"github.com/evyataryagoni/netlookup/internal/metrics"
	"github.com/evyataryagoni/netlookup/internal/models"
	"github.com/evyataryagoni/netlookup/internal/normalizer"
	"github.com/evyataryagoni/netlookup/internal/validate"
)

// FallbackPolicy decides what a domain lookup does when the WHOIS source fails
type FallbackPolicy string

const (
	// FallbackFabricate answers with a synthetic record and still succeeds
	FallbackFabricate FallbackPolicy = "fabricate"

	// FallbackSurfaceError reports the upstream failure as the lookup error
	FallbackSurfaceError FallbackPolicy = "surface-error"
)

// ParseFallbackPolicy parses a policy name. An empty name is FallbackFabricate.
func ParseFallbackPolicy(name string) (FallbackPolicy, error) {
	switch p := FallbackPolicy(strings.ToLower(strings.TrimSpace(name))); p {
	case "", FallbackFabricate:
		return FallbackFabricate, nil
	case FallbackSurfaceError:
		return p, nil
	default:
		return "", fmt.Errorf("unknown domain fallback policy %q", name)
	}
}

// DomainLookup orchestrates WHOIS lookups of a domain name.
// Under FallbackFabricate any failure of the WHOIS source is masked by a
// synthetic record, so only validation errors reach the caller.
type DomainLookup struct {
	source   WhoisSource
	fallback Fabricator
	policy   FallbackPolicy
	history  HistoryRecorder
	state    *tracker[models.DomainDetails]
	metrics  recorder
	logger   *logger.Logger
}

// NewDomainLookup creates a domain lookup orchestrator in the idle state.
// fallback is only used under FallbackFabricate and may be nil otherwise.
func NewDomainLookup(source WhoisSource, fallback Fabricator, policy FallbackPolicy, history HistoryRecorder, m *metrics.Metrics, log *logger.Logger) *DomainLookup {
	if log == nil {
		log = logger.NewDefault()
	}
	if policy == "" {
		policy = FallbackFabricate
	}
	return &DomainLookup{
		source:   source,
		fallback: fallback,
		policy:   policy,
		history:  history,
		state:    newTracker[models.DomainDetails](),
		metrics:  recorder{m: m, kind: KindDomain},
		logger:   log.WithComponent("DomainLookup"),
	}
}

// Policy returns the configured fallback policy
func (s *DomainLookup) Policy() FallbackPolicy {
	return s.policy
}

// Trigger runs one lookup of raw and returns its own outcome.
// Validation failures are returned as *validate.Error.
func (s *DomainLookup) Trigger(ctx context.Context, raw string) (*models.DomainDetails, error) {
	seq := s.state.begin()

	domain, err := validate.CheckDomain(raw)
	if err != nil {
		s.logger.Warn().Str("input", raw).Msg("Invalid domain name")
		return nil, s.fail(seq, resultValidation, err)
	}

	log := s.logger.WithQuery(domain)
	log.Debug().Msg("Looking up domain")

	result := resultSuccess
	details, err := s.fetch(ctx, domain)
	if err != nil {
		if s.policy != FallbackFabricate || s.fallback == nil {
			log.Error().Err(err).Msg("WHOIS lookup failed")
			return nil, s.fail(seq, resultUpstream, err)
		}

		log.Warn().Err(err).Msg("WHOIS lookup failed, falling back to synthetic data")
		s.metrics.fallback()
		result = resultSynthetic

		details, err = s.fallback.Generate(ctx, domain)
		if err != nil {
			log.Error().Err(err).Msg("Synthetic fallback failed")
			return nil, s.fail(seq, resultUpstream, err)
		}
	}

	if !s.state.succeed(seq, details) {
		s.metrics.stale()
		log.Debug().Msg("Discarding stale domain lookup result")
	}
	s.metrics.count(result)
	if s.history != nil {
		s.history.Record(ctx, models.LookupTypeDomain, domain)
	}

	log.Info().
		Str("registrar", details.Registrar.Name).
		Bool("synthetic", details.Synthetic).
		Msg("Domain lookup successful")
	return details, nil
}

// State returns the latest published snapshot
func (s *DomainLookup) State() models.LookupState[models.DomainDetails] {
	return s.state.snapshot()
}

// fetch runs the primary path: request, provider error check, normalize
func (s *DomainLookup) fetch(ctx context.Context, domain string) (*models.DomainDetails, error) {
	body, err := s.source.Lookup(ctx, domain)
	if err != nil {
		return nil, err
	}
	if err := normalizer.CheckWhoisError(body); err != nil {
		return nil, err
	}
	return normalizer.DomainDetails(body, domain)
}

func (s *DomainLookup) fail(seq uint64, result string, err error) error {
	if !s.state.fail(seq, err) {
		s.metrics.stale()
	}
	s.metrics.count(result)
	return err
}
