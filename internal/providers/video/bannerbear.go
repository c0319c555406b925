package video

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/animato-app/animato-server/internal/infra"
)

const bannerbearDefaultTemplate = "animato_segment_v1"

// Bannerbear renders the segment against a pre-built video template: the
// reference image fills the media slot and the narration is injected as the
// subtitle modification.
type Bannerbear struct {
	entry        Entry
	templateUID  string
	client       *http.Client
	pollInterval time.Duration
	pollTimeout  time.Duration
	logger       *infra.Logger
}

func NewBannerbear(opts AdapterOptions, templateUID string) *Bannerbear {
	opts = opts.normalized()
	if templateUID == "" {
		templateUID = bannerbearDefaultTemplate
	}
	return &Bannerbear{
		entry:        opts.Entry,
		templateUID:  templateUID,
		client:       opts.HTTPClient,
		pollInterval: opts.PollInterval,
		pollTimeout:  opts.PollTimeout,
		logger:       opts.Logger,
	}
}

func (b *Bannerbear) Name() string { return ProviderBannerbear }

func (b *Bannerbear) Ready() bool { return b != nil && b.entry.HasCredentials() }

type bannerbearModification struct {
	Name string `json:"name"`
	Text string `json:"text,omitempty"`
}

type bannerbearVideoRequest struct {
	VideoTemplate string                   `json:"video_template"`
	InputMediaURL string                   `json:"input_media_url,omitempty"`
	Modifications []bannerbearModification `json:"modifications,omitempty"`
	Metadata      string                   `json:"metadata,omitempty"`
}

type bannerbearVideo struct {
	UID      string `json:"uid"`
	Status   string `json:"status"`
	VideoURL string `json:"video_url"`
	ErrorMsg string `json:"error_message"`
}

func (b *Bannerbear) Generate(ctx context.Context, req GenerateRequest) (*Asset, error) {
	if !b.Ready() {
		return nil, ErrNoCredentials
	}

	payload := bannerbearVideoRequest{
		VideoTemplate: b.templateUID,
		InputMediaURL: req.ReferenceImageURL,
		Metadata:      req.RequestID,
		Modifications: []bannerbearModification{
			{Name: "subtitle", Text: req.NarrationText},
			{Name: "headline", Text: req.Prompt},
		},
	}

	var created bannerbearVideo
	if err := doJSON(ctx, b.client, b.entry, http.MethodPost, "/videos", payload, &created); err != nil {
		return nil, err
	}
	if created.UID == "" {
		return nil, fmt.Errorf("video: bannerbear returned no uid")
	}

	b.logger.Debug().
		Str("request_id", req.RequestID).
		Str("uid", created.UID).
		Msg("bannerbear: video submitted")

	var final bannerbearVideo
	err := pollUntil(ctx, b.pollInterval, b.pollTimeout, func(ctx context.Context) (bool, error) {
		var status bannerbearVideo
		if err := doJSON(ctx, b.client, b.entry, http.MethodGet, "/videos/"+created.UID, nil, &status); err != nil {
			return false, err
		}
		switch status.Status {
		case "rendered", "completed":
			final = status
			return true, nil
		case "failed":
			return false, &JobFailedError{Provider: ProviderBannerbear, Message: status.ErrorMsg}
		default:
			return false, nil
		}
	})
	if err != nil {
		return nil, err
	}
	if final.VideoURL == "" {
		return nil, fmt.Errorf("video: bannerbear rendered without url")
	}

	return &Asset{
		URL:             final.VideoURL,
		Format:          "video/mp4",
		DurationSeconds: req.DurationSeconds,
		Provider:        ProviderBannerbear,
		Strategy:        StrategyProvider,
	}, nil
}

var _ Generator = (*Bannerbear)(nil)
