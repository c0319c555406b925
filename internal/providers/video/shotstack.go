package video

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/animato-app/animato-server/internal/infra"
)

// Shotstack renders a segment through the Shotstack edit API. It is a
// template renderer rather than a generative model: the reference image (or a
// title card when no image exists) is composed into a single-clip timeline.
type Shotstack struct {
	entry        Entry
	client       *http.Client
	pollInterval time.Duration
	pollTimeout  time.Duration
	logger       *infra.Logger
}

func NewShotstack(opts AdapterOptions) *Shotstack {
	opts = opts.normalized()
	return &Shotstack{
		entry:        opts.Entry,
		client:       opts.HTTPClient,
		pollInterval: opts.PollInterval,
		pollTimeout:  opts.PollTimeout,
		logger:       opts.Logger,
	}
}

func (s *Shotstack) Name() string { return ProviderShotstack }

func (s *Shotstack) Ready() bool { return s != nil && s.entry.HasCredentials() }

type shotstackAsset struct {
	Type  string `json:"type"`
	Src   string `json:"src,omitempty"`
	Text  string `json:"text,omitempty"`
	Style string `json:"style,omitempty"`
}

type shotstackClip struct {
	Asset  shotstackAsset `json:"asset"`
	Start  float64        `json:"start"`
	Length float64        `json:"length"`
	Effect string         `json:"effect,omitempty"`
}

type shotstackEdit struct {
	Timeline struct {
		Background string `json:"background"`
		Tracks     []struct {
			Clips []shotstackClip `json:"clips"`
		} `json:"tracks"`
	} `json:"timeline"`
	Output struct {
		Format      string `json:"format"`
		AspectRatio string `json:"aspectRatio"`
	} `json:"output"`
}

type shotstackSubmitResponse struct {
	Success  bool `json:"success"`
	Response struct {
		ID string `json:"id"`
	} `json:"response"`
}

type shotstackRenderResponse struct {
	Response struct {
		Status string `json:"status"`
		URL    string `json:"url"`
		Error  string `json:"error"`
	} `json:"response"`
}

func (s *Shotstack) Generate(ctx context.Context, req GenerateRequest) (*Asset, error) {
	if !s.Ready() {
		return nil, ErrNoCredentials
	}

	length := req.DurationSeconds
	if length <= 0 {
		length = 5
	}
	clip := shotstackClip{Start: 0, Length: length, Effect: "zoomIn"}
	if req.ReferenceImageURL != "" {
		clip.Asset = shotstackAsset{Type: "image", Src: req.ReferenceImageURL}
	} else {
		clip.Asset = shotstackAsset{Type: "title", Text: req.Prompt, Style: "minimal"}
	}

	var edit shotstackEdit
	edit.Timeline.Background = "#000000"
	edit.Timeline.Tracks = []struct {
		Clips []shotstackClip `json:"clips"`
	}{{Clips: []shotstackClip{clip}}}
	edit.Output.Format = "mp4"
	edit.Output.AspectRatio = shotstackAspect(req.AspectRatio)

	var submitted shotstackSubmitResponse
	if err := doJSON(ctx, s.client, s.entry, http.MethodPost, "/render", edit, &submitted); err != nil {
		return nil, err
	}
	if submitted.Response.ID == "" {
		return nil, fmt.Errorf("video: shotstack returned no render id")
	}

	s.logger.Debug().
		Str("request_id", req.RequestID).
		Str("render_id", submitted.Response.ID).
		Msg("shotstack: render submitted")

	var final shotstackRenderResponse
	err := pollUntil(ctx, s.pollInterval, s.pollTimeout, func(ctx context.Context) (bool, error) {
		var status shotstackRenderResponse
		if err := doJSON(ctx, s.client, s.entry, http.MethodGet, "/render/"+submitted.Response.ID, nil, &status); err != nil {
			return false, err
		}
		switch status.Response.Status {
		case "done":
			final = status
			return true, nil
		case "failed":
			return false, &JobFailedError{Provider: ProviderShotstack, Message: status.Response.Error}
		default:
			return false, nil
		}
	})
	if err != nil {
		return nil, err
	}
	if final.Response.URL == "" {
		return nil, fmt.Errorf("video: shotstack render done without url")
	}

	return &Asset{
		URL:             final.Response.URL,
		Format:          "video/mp4",
		DurationSeconds: length,
		Provider:        ProviderShotstack,
		Strategy:        StrategyProvider,
	}, nil
}

func shotstackAspect(aspect string) string {
	switch strings.TrimSpace(aspect) {
	case "9:16", "1:1", "4:3", "16:9", "4:5":
		return aspect
	default:
		return "9:16"
	}
}

var _ Generator = (*Shotstack)(nil)
