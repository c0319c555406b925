package image

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Pollinations fetches an image from the keyless pollinations.ai endpoint.
// The prompt travels in the URL path and the service streams back the bytes.
type Pollinations struct {
	baseURL string
	client  *http.Client
}

const pollinationsDefaultBaseURL = "https://image.pollinations.ai"

func NewPollinations(baseURL string, client *http.Client) *Pollinations {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = pollinationsDefaultBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: 90 * time.Second}
	}
	return &Pollinations{baseURL: baseURL, client: client}
}

func (p *Pollinations) Name() string { return "pollinations" }

func (p *Pollinations) Generate(ctx context.Context, req GenerateRequest) (*Asset, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, errors.New("image: pollinations requires a prompt")
	}

	width, height := aspectDimensions(req.AspectRatio, req.Kind)
	target := fmt.Sprintf("%s/prompt/%s?width=%d&height=%d&seed=%d&nologo=true",
		p.baseURL, url.PathEscape(prompt), width, height, promptSeed(req.RequestID))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("image: pollinations create request: %w", err)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("image: pollinations request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("image: pollinations status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, fmt.Errorf("image: pollinations read body: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("image: pollinations returned empty body")
	}

	format := resp.Header.Get("Content-Type")
	if format == "" {
		format = "image/jpeg"
	}

	return &Asset{
		URL:    target,
		Format: format,
		Width:  width,
		Height: height,
		Data:   data,
	}, nil
}

// promptSeed pins the service-side randomness to the request so retries draw
// the same image.
func promptSeed(requestID string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(requestID))
	return h.Sum32()
}

var _ Generator = (*Pollinations)(nil)
