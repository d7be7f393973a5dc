// Package provider fetches raw payloads from the remote lookup sources.
// Bodies are returned untouched; mapping them is the normalizer's job.
package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/evyataryagoni/netlookup/internal/logger"
	"github.com/evyataryagoni/netlookup/internal/metrics"
)

// maxBodySize bounds how much of a provider response is read
const maxBodySize = 1 << 20

// StatusError is returned when a provider answers with a non-2xx status
type StatusError struct {
	Code int
	Text string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Error: %d - %s", e.Code, e.Text)
}

// Options configures the HTTP clients
type Options struct {
	// APIKey is sent as a bearer token when set
	APIKey string

	// Timeout for a whole request. 0 leaves it to the transport.
	Timeout time.Duration

	// HTTPClient overrides the client built from Timeout
	HTTPClient *http.Client

	Metrics *metrics.Metrics
	Logger  *logger.Logger
}

// client is the shared GET-and-read logic of every provider
type client struct {
	name    string
	baseURL string
	apiKey  string
	http    *http.Client
	metrics *metrics.Metrics
	logger  *logger.Logger
}

func newClient(name, baseURL string, opts Options) client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewDefault()
	}
	return client{
		name:    name,
		baseURL: baseURL,
		apiKey:  opts.APIKey,
		http:    hc,
		metrics: opts.Metrics,
		logger:  log.WithComponent(name),
	}
}

// get issues GET baseURL with params and returns the body of a 2xx response
func (c *client) get(ctx context.Context, params url.Values) ([]byte, error) {
	target, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid %s url: %w", c.name, err)
	}
	if len(params) > 0 {
		q := target.Query()
		for k, vs := range params {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		target.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", c.name, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	c.observe(start, resp, err)
	if err != nil {
		c.logger.Warn().Err(err).Str("url", c.baseURL).Msg("Provider request failed")
		return nil, fmt.Errorf("%s request failed: %w", c.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		c.logger.Warn().Int("status", resp.StatusCode).Str("url", c.baseURL).Msg("Provider returned non-success status")
		return nil, &StatusError{Code: resp.StatusCode, Text: http.StatusText(resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", c.name, err)
	}
	c.logger.Debug().Int("bytes", len(body)).Msg("Provider response received")
	return body, nil
}

func (c *client) observe(start time.Time, resp *http.Response, err error) {
	if c.metrics == nil {
		return
	}
	result := "error"
	if err == nil {
		result = strconv.Itoa(resp.StatusCode)
	}
	c.metrics.UpstreamRequestsTotal.WithLabelValues(c.name, result).Inc()
	c.metrics.UpstreamRequestDuration.WithLabelValues(c.name).Observe(time.Since(start).Seconds())
}
