package image

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type GeminiOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// Gemini generates images through the generateContent API, reading the image
// bytes out of the inlineData part of the first candidate.
type Gemini struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

func NewGemini(opts GeminiOptions) *Gemini {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "gemini-2.0-flash-exp"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &Gemini{
		apiKey:  strings.TrimSpace(opts.APIKey),
		model:   model,
		baseURL: baseURL,
		client:  client,
	}
}

func (g *Gemini) Name() string { return "gemini" }

type geminiImageRequest struct {
	Contents         []geminiImageContent `json:"contents"`
	GenerationConfig struct {
		ResponseModalities []string `json:"responseModalities,omitempty"`
		CandidateCount     int      `json:"candidateCount,omitempty"`
	} `json:"generationConfig"`
}

type geminiImageContent struct {
	Role  string            `json:"role,omitempty"`
	Parts []geminiImagePart `json:"parts,omitempty"`
}

type geminiImagePart struct {
	Text       string `json:"text,omitempty"`
	InlineData *struct {
		MimeType string `json:"mimeType,omitempty"`
		Data     string `json:"data,omitempty"`
	} `json:"inlineData,omitempty"`
}

type geminiImageResponse struct {
	Candidates []struct {
		Content geminiImageContent `json:"content"`
	} `json:"candidates"`
}

func (g *Gemini) Generate(ctx context.Context, req GenerateRequest) (*Asset, error) {
	if g.apiKey == "" {
		return nil, errors.New("image: gemini api key missing")
	}

	var payload geminiImageRequest
	payload.Contents = []geminiImageContent{{
		Role:  "user",
		Parts: []geminiImagePart{{Text: req.Prompt}},
	}}
	payload.GenerationConfig.ResponseModalities = []string{"IMAGE"}
	payload.GenerationConfig.CandidateCount = 1

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("image: gemini marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, url.PathEscape(g.model))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("image: gemini create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("image: gemini request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("image: gemini status %d", resp.StatusCode)
	}

	var out geminiImageResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("image: gemini decode response: %w", err)
	}

	for _, cand := range out.Candidates {
		for _, part := range cand.Content.Parts {
			if part.InlineData == nil || part.InlineData.Data == "" {
				continue
			}
			data, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
			if err != nil {
				return nil, fmt.Errorf("image: gemini decode inline data: %w", err)
			}
			format := part.InlineData.MimeType
			if format == "" {
				format = "image/png"
			}
			width, height := aspectDimensions(req.AspectRatio, req.Kind)
			return &Asset{
				Format: format,
				Width:  width,
				Height: height,
				Data:   data,
			}, nil
		}
	}
	return nil, errors.New("image: gemini returned no inline image")
}

var _ Generator = (*Gemini)(nil)
