package video

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/animato-app/animato-server/internal/infra"
)

// Creatomate renders the segment from an inline source document (no template
// required): one image or text element sized to the requested aspect ratio.
type Creatomate struct {
	entry        Entry
	client       *http.Client
	pollInterval time.Duration
	pollTimeout  time.Duration
	logger       *infra.Logger
}

func NewCreatomate(opts AdapterOptions) *Creatomate {
	opts = opts.normalized()
	return &Creatomate{
		entry:        opts.Entry,
		client:       opts.HTTPClient,
		pollInterval: opts.PollInterval,
		pollTimeout:  opts.PollTimeout,
		logger:       opts.Logger,
	}
}

func (c *Creatomate) Name() string { return ProviderCreatomate }

func (c *Creatomate) Ready() bool { return c != nil && c.entry.HasCredentials() }

type creatomateElement struct {
	Type     string  `json:"type"`
	Source   string  `json:"source,omitempty"`
	Text     string  `json:"text,omitempty"`
	Duration float64 `json:"duration,omitempty"`
}

type creatomateSource struct {
	OutputFormat string              `json:"output_format"`
	Width        int                 `json:"width"`
	Height       int                 `json:"height"`
	Duration     float64             `json:"duration"`
	Elements     []creatomateElement `json:"elements"`
}

type creatomateRenderRequest struct {
	Source creatomateSource `json:"source"`
}

type creatomateRender struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	URL          string `json:"url"`
	ErrorMessage string `json:"error_message"`
}

func (c *Creatomate) Generate(ctx context.Context, req GenerateRequest) (*Asset, error) {
	if !c.Ready() {
		return nil, ErrNoCredentials
	}

	duration := req.DurationSeconds
	if duration <= 0 {
		duration = 5
	}
	width, height := aspectDimensions(req.AspectRatio)

	element := creatomateElement{Type: "text", Text: req.Prompt, Duration: duration}
	if req.ReferenceImageURL != "" {
		element = creatomateElement{Type: "image", Source: req.ReferenceImageURL, Duration: duration}
	}

	payload := creatomateRenderRequest{Source: creatomateSource{
		OutputFormat: "mp4",
		Width:        width,
		Height:       height,
		Duration:     duration,
		Elements:     []creatomateElement{element},
	}}

	// The renders endpoint returns a batch even for a single source.
	var created []creatomateRender
	if err := doJSON(ctx, c.client, c.entry, http.MethodPost, "/renders", payload, &created); err != nil {
		return nil, err
	}
	if len(created) == 0 || created[0].ID == "" {
		return nil, fmt.Errorf("video: creatomate returned no render")
	}
	renderID := created[0].ID

	c.logger.Debug().
		Str("request_id", req.RequestID).
		Str("render_id", renderID).
		Msg("creatomate: render submitted")

	var final creatomateRender
	err := pollUntil(ctx, c.pollInterval, c.pollTimeout, func(ctx context.Context) (bool, error) {
		var status creatomateRender
		if err := doJSON(ctx, c.client, c.entry, http.MethodGet, "/renders/"+renderID, nil, &status); err != nil {
			return false, err
		}
		switch status.Status {
		case "succeeded":
			final = status
			return true, nil
		case "failed":
			return false, &JobFailedError{Provider: ProviderCreatomate, Message: status.ErrorMessage}
		default:
			return false, nil
		}
	})
	if err != nil {
		return nil, err
	}
	if final.URL == "" {
		return nil, fmt.Errorf("video: creatomate succeeded without url")
	}

	return &Asset{
		URL:             final.URL,
		Format:          "video/mp4",
		DurationSeconds: duration,
		Provider:        ProviderCreatomate,
		Strategy:        StrategyProvider,
	}, nil
}

var _ Generator = (*Creatomate)(nil)
