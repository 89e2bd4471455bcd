package risk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/codguard/codguard/internal/logging"
	"github.com/codguard/codguard/internal/metrics"
	"github.com/codguard/codguard/internal/settings"
	"github.com/codguard/codguard/internal/traces"
)

const maxResponseBody = 1 << 20

// Client evaluates checkout payloads against the upstream risk API. It never
// returns an error: every failure mode degrades to the neutral decision so
// the shopper-facing path stays up.
type Client struct {
	cache      *Cache
	httpClient *http.Client
	group      singleflight.Group
}

func NewClient() *Client {
	return &Client{
		cache: NewCache(DefaultCacheCapacity),
		// Per-call deadlines come from settings via the request context.
		httpClient: &http.Client{},
	}
}

// Evaluate normalizes params, consults the cache, and calls the upstream
// scorer on a miss. Concurrent evaluations of the same fingerprint share one
// upstream call.
func (c *Client) Evaluate(ctx context.Context, params Params, s *settings.Settings) Decision {
	req := Normalize(params)

	if s.APIURL == "" {
		d := Neutral("API URL not configured")
		metrics.EvaluationsTotal.WithLabelValues(string(d.Tier)).Inc()
		return d
	}

	fp := Fingerprint(req)
	ttl := time.Duration(s.CacheTTL) * time.Second

	ctx, span := traces.StartSpan(ctx, "risk.evaluate")
	defer span.End()

	if d, ok := c.cache.Get(fp, ttl); ok {
		metrics.CacheHitsTotal.Inc()
		metrics.EvaluationsTotal.WithLabelValues(string(d.Tier)).Inc()
		span.SetAttributes(traces.CacheHit(true), traces.Tier(string(d.Tier)))
		return d
	}
	metrics.CacheMissesTotal.Inc()
	span.SetAttributes(traces.CacheHit(false))

	// Concurrent misses on the same fingerprint collapse into one upstream
	// call; everyone gets the same decision back.
	v, _, _ := c.group.Do(fp, func() (any, error) {
		d, ok := c.callUpstream(ctx, req, s)
		if ok {
			c.cache.Put(fp, d, ttl)
		}
		return d, nil
	})
	d := v.(Decision)

	metrics.EvaluationsTotal.WithLabelValues(string(d.Tier)).Inc()
	span.SetAttributes(traces.Tier(string(d.Tier)))
	return d
}

// callUpstream POSTs the canonical request and classifies the outcome. The
// second return reports whether the decision came from a well-formed upstream
// response and is therefore safe to cache.
func (c *Client) callUpstream(ctx context.Context, req Request, s *settings.Settings) (Decision, bool) {
	log := logging.L(ctx)

	body, err := json.Marshal(req)
	if err != nil {
		return Neutral("Invalid JSON"), false
	}

	timeout := time.Duration(s.Timeout) * time.Second
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(callCtx, http.MethodPost, s.APIURL, bytes.NewReader(body))
	if err != nil {
		metrics.UpstreamCallsTotal.WithLabelValues("transport_error").Inc()
		return Neutral(fmt.Sprintf("HTTP error: %v", err)), false
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if s.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+s.APIKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		metrics.UpstreamCallsTotal.WithLabelValues("transport_error").Inc()
		log.Warn("risk api unreachable", "error", err)
		return Neutral(fmt.Sprintf("HTTP error: %v", err)), false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.UpstreamCallsTotal.WithLabelValues("bad_status").Inc()
		log.Warn("risk api returned bad status", "status", resp.StatusCode)
		return Neutral(fmt.Sprintf("Bad status: %d", resp.StatusCode)), false
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		metrics.UpstreamCallsTotal.WithLabelValues("transport_error").Inc()
		return Neutral(fmt.Sprintf("HTTP error: %v", err)), false
	}

	var parsed map[string]any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		metrics.UpstreamCallsTotal.WithLabelValues("bad_json").Inc()
		log.Warn("risk api returned unparseable body")
		return Neutral("Invalid JSON"), false
	}

	metrics.UpstreamCallsTotal.WithLabelValues("ok").Inc()
	return NormalizeResponse(parsed), true
}
