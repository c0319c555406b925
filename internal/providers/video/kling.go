package video

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/animato-app/animato-server/internal/infra"
)

// Kling drives the Kling text-to-video task API. Non-zero API codes are
// treated as terminal failures even when the HTTP status is 200.
type Kling struct {
	entry        Entry
	client       *http.Client
	pollInterval time.Duration
	pollTimeout  time.Duration
	logger       *infra.Logger
}

func NewKling(opts AdapterOptions) *Kling {
	opts = opts.normalized()
	return &Kling{
		entry:        opts.Entry,
		client:       opts.HTTPClient,
		pollInterval: opts.PollInterval,
		pollTimeout:  opts.PollTimeout,
		logger:       opts.Logger,
	}
}

func (k *Kling) Name() string { return ProviderKling }

func (k *Kling) Ready() bool { return k != nil && k.entry.HasCredentials() }

type klingTaskRequest struct {
	ModelName   string `json:"model_name"`
	Prompt      string `json:"prompt"`
	Duration    string `json:"duration"`
	AspectRatio string `json:"aspect_ratio"`
	Image       string `json:"image,omitempty"`
}

type klingTaskResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		TaskID        string `json:"task_id"`
		TaskStatus    string `json:"task_status"`
		TaskStatusMsg string `json:"task_status_msg"`
		TaskResult    struct {
			Videos []struct {
				URL      string `json:"url"`
				Duration string `json:"duration"`
			} `json:"videos"`
		} `json:"task_result"`
	} `json:"data"`
}

func (k *Kling) Generate(ctx context.Context, req GenerateRequest) (*Asset, error) {
	if !k.Ready() {
		return nil, ErrNoCredentials
	}

	payload := klingTaskRequest{
		ModelName:   "kling-v1",
		Prompt:      req.Prompt,
		Duration:    klingDuration(req.DurationSeconds),
		AspectRatio: normalizeAspect(req.AspectRatio),
		Image:       req.ReferenceImageURL,
	}

	var created klingTaskResponse
	if err := doJSON(ctx, k.client, k.entry, http.MethodPost, "/v1/videos/text2video", payload, &created); err != nil {
		return nil, err
	}
	if created.Code != 0 {
		return nil, &JobFailedError{Provider: ProviderKling, Message: created.Message}
	}
	if created.Data.TaskID == "" {
		return nil, fmt.Errorf("video: kling returned no task id")
	}

	k.logger.Debug().
		Str("request_id", req.RequestID).
		Str("task_id", created.Data.TaskID).
		Msg("kling: task submitted")

	var final klingTaskResponse
	err := pollUntil(ctx, k.pollInterval, k.pollTimeout, func(ctx context.Context) (bool, error) {
		var status klingTaskResponse
		if err := doJSON(ctx, k.client, k.entry, http.MethodGet, "/v1/videos/text2video/"+created.Data.TaskID, nil, &status); err != nil {
			return false, err
		}
		if status.Code != 0 {
			return false, &JobFailedError{Provider: ProviderKling, Message: status.Message}
		}
		switch status.Data.TaskStatus {
		case "succeed":
			final = status
			return true, nil
		case "failed":
			return false, &JobFailedError{Provider: ProviderKling, Message: status.Data.TaskStatusMsg}
		default:
			return false, nil
		}
	})
	if err != nil {
		return nil, err
	}
	videos := final.Data.TaskResult.Videos
	if len(videos) == 0 || videos[0].URL == "" {
		return nil, fmt.Errorf("video: kling succeeded without video")
	}

	return &Asset{
		URL:             videos[0].URL,
		Format:          "video/mp4",
		DurationSeconds: req.DurationSeconds,
		Provider:        ProviderKling,
		Strategy:        StrategyProvider,
	}, nil
}

func klingDuration(seconds float64) string {
	if seconds > 7 {
		return "10"
	}
	return "5"
}

var _ Generator = (*Kling)(nil)
