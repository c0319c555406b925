package video

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/animato-app/animato-server/internal/infra"
)

// Luma drives the Dream Machine generation API. When a reference image is
// present it is pinned as the first keyframe so the generated motion starts
// from the segment still.
type Luma struct {
	entry        Entry
	client       *http.Client
	pollInterval time.Duration
	pollTimeout  time.Duration
	logger       *infra.Logger
}

func NewLuma(opts AdapterOptions) *Luma {
	opts = opts.normalized()
	return &Luma{
		entry:        opts.Entry,
		client:       opts.HTTPClient,
		pollInterval: opts.PollInterval,
		pollTimeout:  opts.PollTimeout,
		logger:       opts.Logger,
	}
}

func (l *Luma) Name() string { return ProviderLuma }

func (l *Luma) Ready() bool { return l != nil && l.entry.HasCredentials() }

type lumaKeyframe struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

type lumaGenerationRequest struct {
	Prompt      string                  `json:"prompt"`
	Model       string                  `json:"model"`
	AspectRatio string                  `json:"aspect_ratio"`
	Duration    string                  `json:"duration"`
	Keyframes   map[string]lumaKeyframe `json:"keyframes,omitempty"`
}

type lumaGeneration struct {
	ID            string `json:"id"`
	State         string `json:"state"`
	FailureReason string `json:"failure_reason"`
	Assets        struct {
		Video string `json:"video"`
	} `json:"assets"`
}

func (l *Luma) Generate(ctx context.Context, req GenerateRequest) (*Asset, error) {
	if !l.Ready() {
		return nil, ErrNoCredentials
	}

	payload := lumaGenerationRequest{
		Prompt:      req.Prompt,
		Model:       "ray-2",
		AspectRatio: normalizeAspect(req.AspectRatio),
		Duration:    lumaDuration(req.DurationSeconds),
	}
	if req.ReferenceImageURL != "" {
		payload.Keyframes = map[string]lumaKeyframe{
			"frame0": {Type: "image", URL: req.ReferenceImageURL},
		}
	}

	var created lumaGeneration
	if err := doJSON(ctx, l.client, l.entry, http.MethodPost, "/dream-machine/v1/generations", payload, &created); err != nil {
		return nil, err
	}
	if created.ID == "" {
		return nil, fmt.Errorf("video: luma returned no generation id")
	}

	l.logger.Debug().
		Str("request_id", req.RequestID).
		Str("generation_id", created.ID).
		Msg("luma: generation submitted")

	var final lumaGeneration
	err := pollUntil(ctx, l.pollInterval, l.pollTimeout, func(ctx context.Context) (bool, error) {
		var status lumaGeneration
		if err := doJSON(ctx, l.client, l.entry, http.MethodGet, "/dream-machine/v1/generations/"+created.ID, nil, &status); err != nil {
			return false, err
		}
		switch status.State {
		case "completed":
			final = status
			return true, nil
		case "failed":
			return false, &JobFailedError{Provider: ProviderLuma, Message: status.FailureReason}
		default:
			return false, nil
		}
	})
	if err != nil {
		return nil, err
	}
	if final.Assets.Video == "" {
		return nil, fmt.Errorf("video: luma completed without video asset")
	}

	return &Asset{
		URL:             final.Assets.Video,
		Format:          "video/mp4",
		DurationSeconds: req.DurationSeconds,
		Provider:        ProviderLuma,
		Strategy:        StrategyProvider,
	}, nil
}

// lumaDuration clamps to the durations Dream Machine accepts.
func lumaDuration(seconds float64) string {
	if seconds > 7 {
		return "9s"
	}
	return "5s"
}

var _ Generator = (*Luma)(nil)
