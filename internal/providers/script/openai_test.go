package script

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/animato-app/animato-server/internal/domain/jsoncfg"
)

func TestOpenAIWriterParsesScript(t *testing.T) {
	payload := map[string]any{
		"title": "The Llama Chef",
		"segments": []map[string]any{
			{"narration": "A llama opens a bistro.", "visual_prompt": "llama in an apron", "duration_seconds": 5},
		},
	}
	content, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	writer, err := NewOpenAIWriter(OpenAIOptions{
		APIKey: "sk-test",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			if r.Header.Get("Authorization") != "Bearer sk-test" {
				t.Errorf("missing bearer token")
			}
			var req openAIChatRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decode request: %v", err)
			}
			if req.ResponseFormat == nil || req.ResponseFormat.Type != "json_object" {
				t.Errorf("response_format = %+v, want json_object", req.ResponseFormat)
			}
			body := map[string]any{
				"choices": []map[string]any{{
					"message": map[string]string{"content": string(content)},
				}},
			}
			raw, _ := json.Marshal(body)
			return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewReader(raw))}, nil
		})},
	})
	if err != nil {
		t.Fatalf("NewOpenAIWriter: %v", err)
	}

	script, err := writer.WriteScript(context.Background(), WriteRequest{
		Brief: jsoncfg.BriefJSON{Theme: "comedy", Topic: "a llama chef", SegmentCount: 1},
	})
	if err != nil {
		t.Fatalf("WriteScript: %v", err)
	}
	if script.Title != "The Llama Chef" {
		t.Fatalf("title = %q", script.Title)
	}
}

func TestOpenAIWriterFallsBackOnStatus(t *testing.T) {
	var reason string
	writer, err := NewOpenAIWriter(OpenAIOptions{
		APIKey: "sk-test",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return &http.Response{StatusCode: http.StatusTooManyRequests, Body: io.NopCloser(bytes.NewReader(nil))}, nil
		})},
		OnFallback: func(r string, err error) { reason = r },
	})
	if err != nil {
		t.Fatalf("NewOpenAIWriter: %v", err)
	}

	script, err := writer.WriteScript(context.Background(), WriteRequest{
		Brief: jsoncfg.BriefJSON{Theme: "mystery", Topic: "the missing bell", SegmentCount: 2},
	})
	if err != nil {
		t.Fatalf("WriteScript: %v", err)
	}
	if reason != "http_status" {
		t.Fatalf("fallback reason = %q, want http_status", reason)
	}
	if len(script.Segments) != 2 {
		t.Fatalf("segments = %d, want 2", len(script.Segments))
	}
}
