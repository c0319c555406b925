package video

import (
	"context"
	"errors"
	"fmt"
)

// GenerateRequest is the uniform request every adapter translates into its
// provider's wire shape. Slideshow fields are only consumed by the degraded
// composition fallback.
type GenerateRequest struct {
	Prompt            string
	ReferenceImageURL string
	DurationSeconds   float64
	AspectRatio       string
	RequestID         string
	Theme             string

	// Degraded-path inputs.
	SlideshowImageKeys []string
	AudioKey           string
	NarrationText      string
}

// Asset is the normalized result of a successful generation attempt.
type Asset struct {
	URL             string
	StorageKey      string
	Format          string
	DurationSeconds float64
	Provider        string
	Strategy        string
	Data            []byte
}

// Strategies reported on the produced asset.
const (
	StrategyProvider  = "provider"
	StrategySlideshow = "slideshow"
	StrategyStock     = "stock"
)

// Generator is the contract implemented by every provider adapter.
type Generator interface {
	// Name returns the registry identifier of the provider.
	Name() string
	// Ready reports whether the adapter holds credentials and may be attempted.
	Ready() bool
	Generate(ctx context.Context, req GenerateRequest) (*Asset, error)
}

// ErrNoCredentials marks an adapter that was constructed without an API key.
// The chain skips these without recording a provider failure.
var ErrNoCredentials = errors.New("video: provider credentials missing")

// ErrPollTimeout indicates the provider never reached a terminal state within
// the configured deadline.
var ErrPollTimeout = errors.New("video: poll deadline exceeded")

// JobFailedError carries the provider-reported failure message for a job that
// reached a terminal failed state.
type JobFailedError struct {
	Provider string
	Message  string
}

func (e *JobFailedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("video: %s job failed", e.Provider)
	}
	return fmt.Sprintf("video: %s job failed: %s", e.Provider, e.Message)
}
