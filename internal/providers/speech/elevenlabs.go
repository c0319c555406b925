package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type ElevenLabsOptions struct {
	APIKey     string
	BaseURL    string
	VoiceID    string
	ModelID    string
	HTTPClient *http.Client
	Fallback   Synthesizer
	OnFallback func(reason string, err error)
}

// ElevenLabs synthesizes narration through the text-to-speech endpoint and
// streams the MP3 bytes back. Failures route through the fallback synthesizer.
type ElevenLabs struct {
	apiKey     string
	baseURL    string
	voiceID    string
	modelID    string
	client     *http.Client
	fallback   Synthesizer
	onFallback func(reason string, err error)
}

const (
	elevenLabsDefaultBaseURL = "https://api.elevenlabs.io/v1"
	elevenLabsDefaultVoice   = "21m00Tcm4TlvDq8ikWAM"
	elevenLabsDefaultModel   = "eleven_multilingual_v2"
	elevenLabsTimeout        = 60 * time.Second
)

func NewElevenLabs(opts ElevenLabsOptions) (*ElevenLabs, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("elevenlabs api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = elevenLabsDefaultBaseURL
	}
	voiceID := strings.TrimSpace(opts.VoiceID)
	if voiceID == "" {
		voiceID = elevenLabsDefaultVoice
	}
	modelID := strings.TrimSpace(opts.ModelID)
	if modelID == "" {
		modelID = elevenLabsDefaultModel
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: elevenLabsTimeout}
	}
	return &ElevenLabs{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		voiceID:    voiceID,
		modelID:    modelID,
		client:     client,
		fallback:   opts.Fallback,
		onFallback: opts.OnFallback,
	}, nil
}

func (e *ElevenLabs) Name() string { return "elevenlabs" }

type elevenLabsRequest struct {
	Text          string `json:"text"`
	ModelID       string `json:"model_id"`
	VoiceSettings struct {
		Stability       float64 `json:"stability"`
		SimilarityBoost float64 `json:"similarity_boost"`
	} `json:"voice_settings"`
}

func (e *ElevenLabs) Synthesize(ctx context.Context, req SynthesizeRequest) (*Audio, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, fmt.Errorf("speech: narration text is empty")
	}

	voice := strings.TrimSpace(req.VoiceID)
	if voice == "" {
		voice = e.voiceID
	}

	payload := elevenLabsRequest{Text: text, ModelID: e.modelID}
	payload.VoiceSettings.Stability = 0.5
	payload.VoiceSettings.SimilarityBoost = 0.75

	raw, err := json.Marshal(payload)
	if err != nil {
		return e.useFallback(ctx, req, "encode_request", err)
	}

	endpoint := fmt.Sprintf("%s/text-to-speech/%s", e.baseURL, voice)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(raw))
	if err != nil {
		return e.useFallback(ctx, req, "build_request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "audio/mpeg")
	httpReq.Header.Set("xi-api-key", e.apiKey)

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return e.useFallback(ctx, req, "http_request", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		return e.useFallback(ctx, req, "http_status", fmt.Errorf("elevenlabs status %d", resp.StatusCode))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return e.useFallback(ctx, req, "read_body", err)
	}
	if len(data) == 0 {
		return e.useFallback(ctx, req, "empty_response", errors.New("elevenlabs returned no audio"))
	}

	words := len(strings.Fields(text))
	return &Audio{
		Format:          "audio/mpeg",
		DurationSeconds: float64(words) / readingRate,
		Provider:        e.Name(),
		Data:            data,
	}, nil
}

func (e *ElevenLabs) useFallback(ctx context.Context, req SynthesizeRequest, reason string, cause error) (*Audio, error) {
	if e.onFallback != nil {
		e.onFallback(reason, cause)
	}
	fallback := e.fallback
	if fallback == nil {
		fallback = NewStatic()
	}
	return fallback.Synthesize(ctx, req)
}

var _ Synthesizer = (*ElevenLabs)(nil)
