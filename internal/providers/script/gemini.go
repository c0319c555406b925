package script

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/animato-app/animato-server/internal/domain"
)

type GeminiOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
	Fallback   Writer
	OnFallback func(reason string, err error)
}

// GeminiWriter asks the Gemini generateContent API for a script in JSON
// response mode. Any failure routes through the fallback writer so the wizard
// never stalls on a provider outage.
type GeminiWriter struct {
	apiKey     string
	model      string
	baseURL    string
	client     *http.Client
	fallback   Writer
	onFallback func(reason string, err error)
}

const geminiDefaultTimeout = 30 * time.Second

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiGenerationConfig struct {
	Temperature      float64 `json:"temperature,omitempty"`
	CandidateCount   int     `json:"candidateCount,omitempty"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func NewGeminiWriter(opts GeminiOptions) (*GeminiWriter, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("gemini api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "gemini-1.5-flash"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: geminiDefaultTimeout}
	}
	return &GeminiWriter{
		apiKey:     strings.TrimSpace(opts.APIKey),
		model:      model,
		baseURL:    baseURL,
		client:     client,
		fallback:   opts.Fallback,
		onFallback: opts.OnFallback,
	}, nil
}

func (g *GeminiWriter) WriteScript(ctx context.Context, req WriteRequest) (*domain.Script, error) {
	text, reason, err := g.generate(ctx, buildScriptPrompt(req), 0.7)
	if err != nil {
		return g.fallbackScript(ctx, req, reason, err)
	}
	parsed, err := parseModelPayload[modelScriptPayload](text)
	if err != nil {
		return g.fallbackScript(ctx, req, "parse_payload", err)
	}
	script, err := payloadToScript(parsed, req)
	if err != nil {
		return g.fallbackScript(ctx, req, "invalid_payload", err)
	}
	return script, nil
}

func (g *GeminiWriter) DeriveCharacters(ctx context.Context, script domain.Script) ([]domain.Character, error) {
	text, reason, err := g.generate(ctx, buildCharactersPrompt(script), 0.5)
	if err != nil {
		return g.fallbackCharacters(ctx, script, reason, err)
	}
	parsed, err := parseModelPayload[modelCharactersPayload](text)
	if err != nil {
		return g.fallbackCharacters(ctx, script, "parse_payload", err)
	}
	chars, err := payloadToCharacters(parsed)
	if err != nil {
		return g.fallbackCharacters(ctx, script, "invalid_payload", err)
	}
	return chars, nil
}

func (g *GeminiWriter) generate(ctx context.Context, prompt string, temperature float64) (string, string, error) {
	payload := geminiRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: prompt}},
		}},
		GenerationConfig: &geminiGenerationConfig{
			Temperature:      temperature,
			CandidateCount:   1,
			ResponseMimeType: "application/json",
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return "", "encode_request", err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint(), &buf)
	if err != nil {
		return "", "build_request", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", "http_request", err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		return "", "http_status", fmt.Errorf("gemini status %d", resp.StatusCode)
	}

	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", "decode_response", err
	}
	for _, cand := range out.Candidates {
		for _, part := range cand.Content.Parts {
			if strings.TrimSpace(part.Text) != "" {
				return part.Text, "", nil
			}
		}
	}
	return "", "empty_response", errors.New("gemini returned no text")
}

func (g *GeminiWriter) endpoint() string {
	return fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, url.PathEscape(g.model))
}

func (g *GeminiWriter) fallbackScript(ctx context.Context, req WriteRequest, reason string, cause error) (*domain.Script, error) {
	if g.onFallback != nil {
		g.onFallback(reason, cause)
	}
	fallback := g.fallback
	if fallback == nil {
		fallback = NewStaticWriter()
	}
	return fallback.WriteScript(ctx, req)
}

func (g *GeminiWriter) fallbackCharacters(ctx context.Context, script domain.Script, reason string, cause error) ([]domain.Character, error) {
	if g.onFallback != nil {
		g.onFallback(reason, cause)
	}
	fallback := g.fallback
	if fallback == nil {
		fallback = NewStaticWriter()
	}
	return fallback.DeriveCharacters(ctx, script)
}

var _ Writer = (*GeminiWriter)(nil)
