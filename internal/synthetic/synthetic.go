// Package synthetic fabricates placeholder domain records for when the WHOIS
// source is unreachable. Records are deterministic per domain and calendar
// day, flagged Synthetic, and carry no registry data.
package synthetic

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/evyataryagoni/netlookup/internal/models"
)

// DefaultDelay is the artificial latency before a record is returned
const DefaultDelay = 800 * time.Millisecond

// IDPrefix starts every fabricated domain_id
const IDPrefix = "SYNTHETIC-"

const (
	day        = 24 * time.Hour
	dateLayout = "2006-01-02"
)

type registrarProfile struct {
	registrar    models.Registrar
	organization string
}

var (
	markMonitor = registrarProfile{
		registrar: models.Registrar{
			Name:  "MarkMonitor Inc.",
			URL:   "https://markmonitor.com",
			Email: "abusecomplaints@markmonitor.com",
			Phone: "+1.2083895740",
		},
		organization: "Google LLC",
	}
	goDaddy = registrarProfile{
		registrar: models.Registrar{
			Name:  "GoDaddy.com, LLC",
			URL:   "https://www.godaddy.com",
			Email: "abuse@godaddy.com",
			Phone: "+1.4806242505",
		},
		organization: models.RedactedForPrivacy,
	}
)

// Generator builds synthetic records
type Generator struct {
	delay time.Duration
	now   func() time.Time
}

// Option configures a Generator
type Option func(*Generator)

// WithDelay overrides DefaultDelay; 0 disables the wait
func WithDelay(d time.Duration) Option {
	return func(g *Generator) { g.delay = d }
}

// WithClock sets the reference time for generated dates
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// New creates a Generator
func New(opts ...Option) *Generator {
	g := &Generator{delay: DefaultDelay, now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate waits the configured delay and returns a record for domain.
// The only error is ctx's, when it ends during the wait.
func (g *Generator) Generate(ctx context.Context, domain string) (*models.DomainDetails, error) {
	if g.delay > 0 {
		timer := time.NewTimer(g.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return g.Build(domain), nil
}

// Build returns the record for domain without waiting
func (g *Generator) Build(domain string) *models.DomainDetails {
	seed := xxhash.Sum64String(domain)
	rng := rand.New(rand.NewPCG(seed, seed>>1|1))
	today := g.now().UTC().Truncate(day)

	profile := goDaddy
	nameservers := []string{"ns1." + domain, "ns2." + domain}
	if strings.Contains(domain, "google") {
		profile = markMonitor
		nameservers = []string{
			"ns1.googledomains.com",
			"ns2.googledomains.com",
			"ns3.googledomains.com",
			"ns4.googledomains.com",
		}
	}

	return &models.DomainDetails{
		Domain:   domain,
		DomainID: fmt.Sprintf("%s%d", IDPrefix, rng.IntN(10000)),
		Status:   []string{"clientTransferProhibited", "serverDeleteProhibited"},
		Created:  today.Add(-randDays(rng, 5*365)).Format(dateLayout),
		Updated:  today.Add(-randDays(rng, 30)).Format(dateLayout),
		Expires:  today.Add(randDays(rng, 2*365)).Format(dateLayout),

		Registrar: profile.registrar,
		Registrant: models.Registrant{
			Name:         models.RedactedForPrivacy,
			Organization: profile.organization,
			Street:       models.RedactedForPrivacy,
			City:         models.RedactedForPrivacy,
			State:        "CA",
			PostalCode:   models.RedactedForPrivacy,
			Country:      "US",
			Phone:        models.RedactedForPrivacy,
			Email:        models.RedactedForPrivacy,
		},
		Nameservers: nameservers,
		DNSSEC:      rng.IntN(2) == 1,
		Synthetic:   true,
	}
}

func randDays(rng *rand.Rand, n int) time.Duration {
	return time.Duration(rng.IntN(n+1)) * day
}
