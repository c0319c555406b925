package video

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/animato-app/animato-server/internal/infra"
)

const aimlDefaultModel = "minimax/video-01"

// AIML drives the AI/ML API video gateway, which fronts several hosted video
// models behind one generation endpoint. It is the last remote hop before the
// chain degrades to local composition.
type AIML struct {
	entry        Entry
	model        string
	client       *http.Client
	pollInterval time.Duration
	pollTimeout  time.Duration
	logger       *infra.Logger
}

func NewAIML(opts AdapterOptions, model string) *AIML {
	opts = opts.normalized()
	if model == "" {
		model = aimlDefaultModel
	}
	return &AIML{
		entry:        opts.Entry,
		model:        model,
		client:       opts.HTTPClient,
		pollInterval: opts.PollInterval,
		pollTimeout:  opts.PollTimeout,
		logger:       opts.Logger,
	}
}

func (a *AIML) Name() string { return ProviderAIML }

func (a *AIML) Ready() bool { return a != nil && a.entry.HasCredentials() }

type aimlGenerationRequest struct {
	Model         string `json:"model"`
	Prompt        string `json:"prompt"`
	FirstFrameURL string `json:"first_frame_image,omitempty"`
}

type aimlGeneration struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  string `json:"error"`
	Video  struct {
		URL string `json:"url"`
	} `json:"video"`
}

func (a *AIML) Generate(ctx context.Context, req GenerateRequest) (*Asset, error) {
	if !a.Ready() {
		return nil, ErrNoCredentials
	}

	payload := aimlGenerationRequest{
		Model:         a.model,
		Prompt:        req.Prompt,
		FirstFrameURL: req.ReferenceImageURL,
	}

	var created aimlGeneration
	if err := doJSON(ctx, a.client, a.entry, http.MethodPost, "/v2/generate/video/minimax/generation", payload, &created); err != nil {
		return nil, err
	}
	if created.ID == "" {
		return nil, fmt.Errorf("video: aimlapi returned no generation id")
	}

	a.logger.Debug().
		Str("request_id", req.RequestID).
		Str("generation_id", created.ID).
		Msg("aimlapi: generation submitted")

	statusPath := "/v2/generate/video/minimax/generation?generation_id=" + url.QueryEscape(created.ID)
	var final aimlGeneration
	err := pollUntil(ctx, a.pollInterval, a.pollTimeout, func(ctx context.Context) (bool, error) {
		var status aimlGeneration
		if err := doJSON(ctx, a.client, a.entry, http.MethodGet, statusPath, nil, &status); err != nil {
			return false, err
		}
		switch status.Status {
		case "completed":
			final = status
			return true, nil
		case "error", "failed":
			return false, &JobFailedError{Provider: ProviderAIML, Message: status.Error}
		default:
			return false, nil
		}
	})
	if err != nil {
		return nil, err
	}
	if final.Video.URL == "" {
		return nil, fmt.Errorf("video: aimlapi completed without video url")
	}

	return &Asset{
		URL:             final.Video.URL,
		Format:          "video/mp4",
		DurationSeconds: req.DurationSeconds,
		Provider:        ProviderAIML,
		Strategy:        StrategyProvider,
	}, nil
}

var _ Generator = (*AIML)(nil)
