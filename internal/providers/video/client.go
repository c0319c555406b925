package video

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/animato-app/animato-server/internal/infra"
)

// AdapterOptions configures any provider adapter. One options shape keeps the
// chain wiring uniform across all seven providers.
type AdapterOptions struct {
	Entry        Entry
	HTTPClient   *http.Client
	PollInterval time.Duration
	PollTimeout  time.Duration
	Logger       *infra.Logger
}

func (o AdapterOptions) normalized() AdapterOptions {
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	}
	if o.PollInterval <= 0 {
		o.PollInterval = 5 * time.Second
	}
	if o.PollTimeout <= 0 {
		o.PollTimeout = 5 * time.Minute
	}
	if o.Logger == nil {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		o.Logger = &l
	}
	o.Entry.BaseURL = strings.TrimRight(o.Entry.BaseURL, "/")
	return o
}

// apiStatusError is returned for non-2xx responses from a provider API.
type apiStatusError struct {
	provider string
	status   int
	body     string
}

func (e *apiStatusError) Error() string {
	if e.body == "" {
		return fmt.Sprintf("video: %s status %d", e.provider, e.status)
	}
	return fmt.Sprintf("video: %s status %d: %s", e.provider, e.status, e.body)
}

// doJSON performs one JSON round trip against a provider endpoint, applying
// the entry's auth header and decoding the response body into out when the
// status is 2xx.
func doJSON(ctx context.Context, client *http.Client, entry Entry, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("video: %s marshal request: %w", entry.Name, err)
		}
		body = bytes.NewReader(raw)
	}

	target := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		target = entry.BaseURL + path
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("video: %s create request: %w", entry.Name, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if entry.HasCredentials() {
		req.Header.Set(entry.AuthHeader, entry.AuthPrefix+entry.APIKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("video: %s request: %w", entry.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &apiStatusError{provider: entry.Name, status: resp.StatusCode, body: strings.TrimSpace(string(data))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("video: %s decode response: %w", entry.Name, err)
	}
	return nil
}
