package video

import (
	"context"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// ProbeStatus classifies the outcome of one availability probe.
type ProbeStatus string

const (
	ProbeAvailable     ProbeStatus = "available"
	ProbeNoCredentials ProbeStatus = "no_credentials"
	ProbeUnauthorized  ProbeStatus = "unauthorized"
	ProbeUnreachable   ProbeStatus = "unreachable"
)

// ProbeResult is the per-provider outcome surfaced on GET /v1/providers.
type ProbeResult struct {
	Provider  string      `json:"provider"`
	Status    ProbeStatus `json:"status"`
	LatencyMS int64       `json:"latency_ms"`
	Detail    string      `json:"detail,omitempty"`
}

// Prober issues one lightweight request per registered provider to classify
// reachability and credential validity.
type Prober struct {
	client  *http.Client
	timeout time.Duration
}

// NewProber constructs a prober. A nil HTTP client gets a short-timeout default.
func NewProber(client *http.Client, perProbeTimeout time.Duration) *Prober {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if perProbeTimeout <= 0 {
		perProbeTimeout = 5 * time.Second
	}
	return &Prober{client: client, timeout: perProbeTimeout}
}

// ProbeAll probes every entry concurrently and returns results in entry order.
// Providers without credentials are classified without issuing a request.
func (p *Prober) ProbeAll(ctx context.Context, entries []Entry) []ProbeResult {
	results := make([]ProbeResult, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	for i, entry := range entries {
		i, entry := i, entry
		g.Go(func() error {
			results[i] = p.probe(gctx, entry)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (p *Prober) probe(ctx context.Context, entry Entry) ProbeResult {
	result := ProbeResult{Provider: entry.Name}
	if !entry.HasCredentials() {
		result.Status = ProbeNoCredentials
		return result
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	target := strings.TrimRight(entry.BaseURL, "/") + entry.ProbePath
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		result.Status = ProbeUnreachable
		result.Detail = err.Error()
		return result
	}
	req.Header.Set(entry.AuthHeader, entry.AuthPrefix+entry.APIKey)

	start := time.Now()
	resp, err := p.client.Do(req)
	result.LatencyMS = time.Since(start).Milliseconds()
	if err != nil {
		result.Status = ProbeUnreachable
		result.Detail = err.Error()
		return result
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		result.Status = ProbeUnauthorized
	case resp.StatusCode >= http.StatusInternalServerError:
		result.Status = ProbeUnreachable
		result.Detail = resp.Status
	default:
		result.Status = ProbeAvailable
	}
	return result
}
