package script

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/animato-app/animato-server/internal/domain"
	"github.com/animato-app/animato-server/internal/domain/jsoncfg"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func scriptFixture(theme string) domain.Script {
	return domain.Script{
		Title: "Fixture",
		Theme: theme,
		Segments: []domain.Segment{
			{Index: 0, Narration: "first beat", VisualPrompt: "a scene", DurationSeconds: 5},
		},
	}
}

func geminiJSONResponse(t *testing.T, payload any) *http.Response {
	t.Helper()
	text, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	body := map[string]any{
		"candidates": []map[string]any{{
			"content": map[string]any{
				"role":  "model",
				"parts": []map[string]string{{"text": string(text)}},
			},
		}},
	}
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(bytes.NewReader(raw)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func TestGeminiWriterParsesScript(t *testing.T) {
	writer, err := NewGeminiWriter(GeminiOptions{
		APIKey: "dummy",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			if r.Header.Get("x-goog-api-key") != "dummy" {
				t.Errorf("missing api key header")
			}
			return geminiJSONResponse(t, map[string]any{
				"title": "Moonlight Lighthouse",
				"segments": []map[string]any{
					{"narration": "The beam sweeps the lunar dust.", "visual_prompt": "lighthouse on the moon", "duration_seconds": 6},
					{"narration": "A ship of stars answers.", "visual_prompt": "starship approaching", "duration_seconds": 5},
				},
				"characters": []map[string]any{
					{"name": "Keeper Lune", "role": "keeper", "appearance_prompt": "an old keeper in a silver coat"},
				},
			}), nil
		})},
	})
	if err != nil {
		t.Fatalf("NewGeminiWriter: %v", err)
	}

	script, err := writer.WriteScript(context.Background(), WriteRequest{
		Brief: jsoncfg.BriefJSON{Theme: "scifi", Topic: "a lighthouse on the moon", SegmentCount: 2},
	})
	if err != nil {
		t.Fatalf("WriteScript: %v", err)
	}
	if script.Title != "Moonlight Lighthouse" {
		t.Fatalf("title = %q", script.Title)
	}
	if len(script.Segments) != 2 || script.Segments[1].Index != 1 {
		t.Fatalf("segments = %+v", script.Segments)
	}
	if len(script.Characters) != 1 || script.Characters[0].Name != "Keeper Lune" {
		t.Fatalf("characters = %+v", script.Characters)
	}
}

func TestGeminiWriterFallsBackOnHTTPError(t *testing.T) {
	var reason string
	writer, err := NewGeminiWriter(GeminiOptions{
		APIKey: "dummy",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return nil, errors.New("boom")
		})},
		OnFallback: func(r string, err error) { reason = r },
	})
	if err != nil {
		t.Fatalf("NewGeminiWriter: %v", err)
	}

	script, err := writer.WriteScript(context.Background(), WriteRequest{
		Brief: jsoncfg.BriefJSON{Theme: "nature", Topic: "tidepools", SegmentCount: 2},
	})
	if err != nil {
		t.Fatalf("WriteScript: %v", err)
	}
	if reason != "http_request" {
		t.Fatalf("fallback reason = %q, want http_request", reason)
	}
	if len(script.Segments) != 2 {
		t.Fatalf("fallback script segments = %d, want 2", len(script.Segments))
	}
}

func TestGeminiWriterFallsBackOnBadPayload(t *testing.T) {
	var reason string
	writer, err := NewGeminiWriter(GeminiOptions{
		APIKey: "dummy",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			body := io.NopCloser(bytes.NewReader([]byte(`{"candidates":[{"content":{"parts":[{"text":"not json at all"}]}}]}`)))
			return &http.Response{StatusCode: http.StatusOK, Body: body}, nil
		})},
		OnFallback: func(r string, err error) { reason = r },
	})
	if err != nil {
		t.Fatalf("NewGeminiWriter: %v", err)
	}

	if _, err := writer.WriteScript(context.Background(), WriteRequest{
		Brief: jsoncfg.BriefJSON{Theme: "comedy", Topic: "a llama chef"},
	}); err != nil {
		t.Fatalf("WriteScript: %v", err)
	}
	if reason != "parse_payload" {
		t.Fatalf("fallback reason = %q, want parse_payload", reason)
	}
}

func TestGeminiWriterChainsToConfiguredFallback(t *testing.T) {
	writer, err := NewGeminiWriter(GeminiOptions{
		APIKey: "dummy",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return nil, errors.New("boom")
		})},
		Fallback: NewStaticWriter(),
	})
	if err != nil {
		t.Fatalf("NewGeminiWriter: %v", err)
	}
	chars, err := writer.DeriveCharacters(context.Background(), scriptFixture("fairytale"))
	if err != nil {
		t.Fatalf("DeriveCharacters: %v", err)
	}
	if len(chars) != 2 || chars[0].Role != "hero" {
		t.Fatalf("characters = %+v", chars)
	}
}

func TestNewGeminiWriterRequiresKey(t *testing.T) {
	if _, err := NewGeminiWriter(GeminiOptions{}); err == nil {
		t.Fatal("expected error without api key")
	}
}
