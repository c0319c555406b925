package speech

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func TestStaticSynthesizer(t *testing.T) {
	s := NewStatic()
	audio, err := s.Synthesize(context.Background(), SynthesizeRequest{
		Text:      "five words of narration here",
		VoiceID:   "narrator",
		RequestID: "p1:0",
	})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if audio.DurationSeconds != 2 {
		t.Fatalf("duration = %v, want 2 (5 words at 2.5 wps)", audio.DurationSeconds)
	}
	if !strings.Contains(string(audio.Data), "five words of narration here") {
		t.Fatal("placeholder does not carry the narration text")
	}

	again, err := s.Synthesize(context.Background(), SynthesizeRequest{
		Text:      "five words of narration here",
		VoiceID:   "narrator",
		RequestID: "p1:0",
	})
	if err != nil {
		t.Fatalf("Synthesize again: %v", err)
	}
	if again.StorageKey != audio.StorageKey {
		t.Fatalf("storage keys differ: %q vs %q", again.StorageKey, audio.StorageKey)
	}
}

func TestStaticRejectsEmptyText(t *testing.T) {
	if _, err := NewStatic().Synthesize(context.Background(), SynthesizeRequest{Text: "  "}); err == nil {
		t.Fatal("expected error for empty narration")
	}
}

func TestElevenLabsSynthesize(t *testing.T) {
	synth, err := NewElevenLabs(ElevenLabsOptions{
		APIKey:  "xi-key",
		VoiceID: "voice-1",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			if r.Header.Get("xi-api-key") != "xi-key" {
				t.Errorf("missing xi-api-key header")
			}
			if !strings.HasSuffix(r.URL.Path, "/text-to-speech/voice-1") {
				t.Errorf("path = %q", r.URL.Path)
			}
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(bytes.NewReader([]byte("mp3bytes"))),
				Header:     http.Header{"Content-Type": []string{"audio/mpeg"}},
			}, nil
		})},
	})
	if err != nil {
		t.Fatalf("NewElevenLabs: %v", err)
	}

	audio, err := synth.Synthesize(context.Background(), SynthesizeRequest{
		Text:      "hello from the moon",
		RequestID: "p2:1",
	})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if audio.Format != "audio/mpeg" || string(audio.Data) != "mp3bytes" {
		t.Fatalf("audio = %+v", audio)
	}
	if audio.Provider != "elevenlabs" {
		t.Fatalf("provider = %q", audio.Provider)
	}
}

func TestElevenLabsFallsBackToStatic(t *testing.T) {
	var reason string
	synth, err := NewElevenLabs(ElevenLabsOptions{
		APIKey: "xi-key",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return nil, errors.New("boom")
		})},
		OnFallback: func(r string, err error) { reason = r },
	})
	if err != nil {
		t.Fatalf("NewElevenLabs: %v", err)
	}

	audio, err := synth.Synthesize(context.Background(), SynthesizeRequest{Text: "hello there", RequestID: "p3:0"})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if reason != "http_request" {
		t.Fatalf("fallback reason = %q", reason)
	}
	if audio.Provider != "static" {
		t.Fatalf("provider = %q, want static", audio.Provider)
	}
}

func TestNewElevenLabsRequiresKey(t *testing.T) {
	if _, err := NewElevenLabs(ElevenLabsOptions{}); err == nil {
		t.Fatal("expected error without api key")
	}
}
