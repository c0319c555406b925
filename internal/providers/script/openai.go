package script

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/animato-app/animato-server/internal/domain"
)

type OpenAIOptions struct {
	APIKey       string
	Model        string
	BaseURL      string
	Organization string
	HTTPClient   *http.Client
	Fallback     Writer
	OnFallback   func(reason string, err error)
}

// OpenAIWriter drives the chat completions API in json_object response mode.
type OpenAIWriter struct {
	apiKey       string
	model        string
	baseURL      string
	organization string
	client       *http.Client
	fallback     Writer
	onFallback   func(reason string, err error)
}

const (
	openAIDefaultTimeout = 30 * time.Second
	defaultOpenAIModel   = "gpt-4o-mini"
)

type openAIChatRequest struct {
	Model          string          `json:"model"`
	Messages       []openAIMessage `json:"messages"`
	Temperature    float64         `json:"temperature,omitempty"`
	ResponseFormat *openAIFormat   `json:"response_format,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIFormat struct {
	Type string `json:"type"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func NewOpenAIWriter(opts OpenAIOptions) (*OpenAIWriter, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("openai api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultOpenAIModel
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: openAIDefaultTimeout}
	}
	return &OpenAIWriter{
		apiKey:       strings.TrimSpace(opts.APIKey),
		model:        model,
		baseURL:      baseURL,
		organization: strings.TrimSpace(opts.Organization),
		client:       client,
		fallback:     opts.Fallback,
		onFallback:   opts.OnFallback,
	}, nil
}

func (o *OpenAIWriter) WriteScript(ctx context.Context, req WriteRequest) (*domain.Script, error) {
	text, reason, err := o.complete(ctx, buildScriptPrompt(req), 0.7)
	if err != nil {
		return o.fallbackScript(ctx, req, reason, err)
	}
	parsed, err := parseModelPayload[modelScriptPayload](text)
	if err != nil {
		return o.fallbackScript(ctx, req, "parse_payload", err)
	}
	script, err := payloadToScript(parsed, req)
	if err != nil {
		return o.fallbackScript(ctx, req, "invalid_payload", err)
	}
	return script, nil
}

func (o *OpenAIWriter) DeriveCharacters(ctx context.Context, script domain.Script) ([]domain.Character, error) {
	text, reason, err := o.complete(ctx, buildCharactersPrompt(script), 0.5)
	if err != nil {
		return o.fallbackCharacters(ctx, script, reason, err)
	}
	parsed, err := parseModelPayload[modelCharactersPayload](text)
	if err != nil {
		return o.fallbackCharacters(ctx, script, "parse_payload", err)
	}
	chars, err := payloadToCharacters(parsed)
	if err != nil {
		return o.fallbackCharacters(ctx, script, "invalid_payload", err)
	}
	return chars, nil
}

func (o *OpenAIWriter) complete(ctx context.Context, prompt string, temperature float64) (string, string, error) {
	payload := openAIChatRequest{
		Model:          o.model,
		Temperature:    temperature,
		ResponseFormat: &openAIFormat{Type: "json_object"},
		Messages: []openAIMessage{
			{Role: "system", Content: "You are a scriptwriting assistant that only responds with valid JSON."},
			{Role: "user", Content: prompt},
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return "", "encode_request", err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", &buf)
	if err != nil {
		return "", "build_request", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)
	if o.organization != "" {
		httpReq.Header.Set("OpenAI-Organization", o.organization)
	}

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return "", "http_request", err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		return "", "http_status", fmt.Errorf("openai status %d", resp.StatusCode)
	}

	var out openAIChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", "decode_response", err
	}
	for _, choice := range out.Choices {
		if strings.TrimSpace(choice.Message.Content) != "" {
			return choice.Message.Content, "", nil
		}
	}
	return "", "empty_response", errors.New("openai returned no choices")
}

func (o *OpenAIWriter) fallbackScript(ctx context.Context, req WriteRequest, reason string, cause error) (*domain.Script, error) {
	if o.onFallback != nil {
		o.onFallback(reason, cause)
	}
	fallback := o.fallback
	if fallback == nil {
		fallback = NewStaticWriter()
	}
	return fallback.WriteScript(ctx, req)
}

func (o *OpenAIWriter) fallbackCharacters(ctx context.Context, script domain.Script, reason string, cause error) ([]domain.Character, error) {
	if o.onFallback != nil {
		o.onFallback(reason, cause)
	}
	fallback := o.fallback
	if fallback == nil {
		fallback = NewStaticWriter()
	}
	return fallback.DeriveCharacters(ctx, script)
}

var _ Writer = (*OpenAIWriter)(nil)
