package script

import (
	"context"
	"strings"
	"testing"

	"github.com/animato-app/animato-server/internal/domain/jsoncfg"
)

func TestStaticWriterDeterministic(t *testing.T) {
	w := NewStaticWriter()
	req := WriteRequest{
		Brief: jsoncfg.BriefJSON{
			Theme:        "scifi",
			Topic:        "a lighthouse on the moon",
			SegmentCount: 3,
		},
		Locale: "en",
	}

	first, err := w.WriteScript(context.Background(), req)
	if err != nil {
		t.Fatalf("WriteScript: %v", err)
	}
	second, err := w.WriteScript(context.Background(), req)
	if err != nil {
		t.Fatalf("WriteScript again: %v", err)
	}

	if len(first.Segments) != 3 {
		t.Fatalf("len(segments) = %d, want 3", len(first.Segments))
	}
	if first.Title != second.Title || first.Segments[1].Narration != second.Segments[1].Narration {
		t.Fatal("static writer is not deterministic")
	}
	if !strings.Contains(first.Segments[0].Narration, "a lighthouse on the moon") {
		t.Fatalf("narration does not mention topic: %q", first.Segments[0].Narration)
	}
	for i, seg := range first.Segments {
		if seg.Index != i {
			t.Fatalf("segment %d has index %d", i, seg.Index)
		}
		if seg.DurationSeconds <= 0 {
			t.Fatalf("segment %d has no duration", i)
		}
		if seg.VisualPrompt == "" {
			t.Fatalf("segment %d has no visual prompt", i)
		}
	}
	if len(first.Characters) != 2 {
		t.Fatalf("len(characters) = %d, want 2", len(first.Characters))
	}
}

func TestStaticWriterUnknownThemeFallsBackToAdventure(t *testing.T) {
	w := NewStaticWriter()
	script, err := w.WriteScript(context.Background(), WriteRequest{
		Brief: jsoncfg.BriefJSON{Theme: "opera", Topic: "the last aria", SegmentCount: 2},
	})
	if err != nil {
		t.Fatalf("WriteScript: %v", err)
	}
	if len(script.Segments) != 2 {
		t.Fatalf("len(segments) = %d, want 2", len(script.Segments))
	}
	if !strings.Contains(script.Segments[0].Narration, "the last aria") {
		t.Fatalf("narration = %q", script.Segments[0].Narration)
	}
}

func TestStaticWriterDefaultsSegmentCount(t *testing.T) {
	w := NewStaticWriter()
	script, err := w.WriteScript(context.Background(), WriteRequest{
		Brief: jsoncfg.BriefJSON{Theme: "nature", Topic: "tidepools"},
	})
	if err != nil {
		t.Fatalf("WriteScript: %v", err)
	}
	if len(script.Segments) != jsoncfg.DefaultSegmentCount {
		t.Fatalf("len(segments) = %d, want %d", len(script.Segments), jsoncfg.DefaultSegmentCount)
	}
}

func TestDeriveCharactersByTheme(t *testing.T) {
	w := NewStaticWriter()
	chars, err := w.DeriveCharacters(context.Background(), scriptFixture("mystery"))
	if err != nil {
		t.Fatalf("DeriveCharacters: %v", err)
	}
	if len(chars) != 2 {
		t.Fatalf("len(chars) = %d, want 2", len(chars))
	}
	if chars[0].Role != "detective" || chars[1].Role != "witness" {
		t.Fatalf("roles = %q, %q", chars[0].Role, chars[1].Role)
	}
	if !strings.Contains(chars[0].AppearancePrompt, "portrait") {
		t.Fatalf("appearance prompt = %q", chars[0].AppearancePrompt)
	}
}

func TestExtractJSONFragment(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`{"title":"x"}`, `{"title":"x"}`},
		{"```json\n{\"title\":\"x\"}\n```", `{"title":"x"}`},
		{"Here you go: {\"title\":\"x\"} enjoy!", `{"title":"x"}`},
		{"   ", ""},
	}
	for _, tc := range cases {
		if got := extractJSONFragment(tc.in); got != tc.want {
			t.Errorf("extractJSONFragment(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
