package video

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/animato-app/animato-server/internal/infra"
)

const runwayAPIVersion = "2024-11-06"

// Runway drives the Gen-3 image-to-video task API. It is image-conditioned
// only: requests without a reference image fail fast so the chain can move on.
type Runway struct {
	entry        Entry
	client       *http.Client
	pollInterval time.Duration
	pollTimeout  time.Duration
	logger       *infra.Logger
}

func NewRunway(opts AdapterOptions) *Runway {
	opts = opts.normalized()
	return &Runway{
		entry:        opts.Entry,
		client:       opts.HTTPClient,
		pollInterval: opts.PollInterval,
		pollTimeout:  opts.PollTimeout,
		logger:       opts.Logger,
	}
}

func (r *Runway) Name() string { return ProviderRunway }

func (r *Runway) Ready() bool { return r != nil && r.entry.HasCredentials() }

type runwayTaskRequest struct {
	Model       string `json:"model"`
	PromptImage string `json:"promptImage"`
	PromptText  string `json:"promptText,omitempty"`
	Ratio       string `json:"ratio"`
	Duration    int    `json:"duration"`
}

type runwayTask struct {
	ID            string   `json:"id"`
	Status        string   `json:"status"`
	Output        []string `json:"output"`
	FailureReason string   `json:"failure"`
}

func (r *Runway) Generate(ctx context.Context, req GenerateRequest) (*Asset, error) {
	if !r.Ready() {
		return nil, ErrNoCredentials
	}
	if strings.TrimSpace(req.ReferenceImageURL) == "" {
		return nil, fmt.Errorf("video: runway requires a reference image")
	}

	payload := runwayTaskRequest{
		Model:       "gen3a_turbo",
		PromptImage: req.ReferenceImageURL,
		PromptText:  req.Prompt,
		Ratio:       runwayRatio(req.AspectRatio),
		Duration:    runwayDuration(req.DurationSeconds),
	}

	var created runwayTask
	if err := r.doVersioned(ctx, http.MethodPost, "/v1/image_to_video", payload, &created); err != nil {
		return nil, err
	}
	if created.ID == "" {
		return nil, fmt.Errorf("video: runway returned no task id")
	}

	r.logger.Debug().
		Str("request_id", req.RequestID).
		Str("task_id", created.ID).
		Msg("runway: task submitted")

	var final runwayTask
	err := pollUntil(ctx, r.pollInterval, r.pollTimeout, func(ctx context.Context) (bool, error) {
		var status runwayTask
		if err := r.doVersioned(ctx, http.MethodGet, "/v1/tasks/"+created.ID, nil, &status); err != nil {
			return false, err
		}
		switch status.Status {
		case "SUCCEEDED":
			final = status
			return true, nil
		case "FAILED":
			return false, &JobFailedError{Provider: ProviderRunway, Message: status.FailureReason}
		default:
			return false, nil
		}
	})
	if err != nil {
		return nil, err
	}
	if len(final.Output) == 0 || final.Output[0] == "" {
		return nil, fmt.Errorf("video: runway succeeded without output")
	}

	return &Asset{
		URL:             final.Output[0],
		Format:          "video/mp4",
		DurationSeconds: req.DurationSeconds,
		Provider:        ProviderRunway,
		Strategy:        StrategyProvider,
	}, nil
}

// doVersioned wraps doJSON with the required X-Runway-Version header by
// cloning the entry into a transport with the extra header applied.
func (r *Runway) doVersioned(ctx context.Context, method, path string, payload, out any) error {
	client := r.client
	versioned := &http.Client{
		Timeout:   client.Timeout,
		Transport: &headerTransport{base: client.Transport, header: "X-Runway-Version", value: runwayAPIVersion},
	}
	return doJSON(ctx, versioned, r.entry, method, path, payload, out)
}

// headerTransport injects one static header into every request.
type headerTransport struct {
	base   http.RoundTripper
	header string
	value  string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set(t.header, t.value)
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}

func runwayRatio(aspect string) string {
	switch normalizeAspect(aspect) {
	case "16:9", "4:3":
		return "1280:768"
	default:
		return "768:1280"
	}
}

func runwayDuration(seconds float64) int {
	if seconds > 7 {
		return 10
	}
	return 5
}

var _ Generator = (*Runway)(nil)
