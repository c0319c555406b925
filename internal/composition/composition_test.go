package composition

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/animato-app/animato-server/internal/providers/video"
	"github.com/animato-app/animato-server/internal/storage"
)

func TestCueNarrationPacing(t *testing.T) {
	text := "one two three four five six seven eight nine ten"
	cues := CueNarration(text, 0, 0)
	if len(cues) != 2 {
		t.Fatalf("len(cues) = %d, want 2", len(cues))
	}
	if cues[0].Text != "one two three four five six seven" {
		t.Fatalf("first cue = %q", cues[0].Text)
	}
	if cues[0].StartSeconds != 0 || cues[0].EndSeconds != 2.8 {
		t.Fatalf("first cue timing = [%v, %v], want [0, 2.8]", cues[0].StartSeconds, cues[0].EndSeconds)
	}
	if cues[1].StartSeconds != 2.8 {
		t.Fatalf("second cue starts at %v, want 2.8", cues[1].StartSeconds)
	}
	if cues[1].Index != 1 {
		t.Fatalf("second cue index = %d, want 1", cues[1].Index)
	}
}

func TestCueNarrationEmpty(t *testing.T) {
	if cues := CueNarration("   ", 0, 0); cues != nil {
		t.Fatalf("cues = %v, want nil", cues)
	}
}

func TestBuildSlideshowLayout(t *testing.T) {
	doc := BuildSlideshow(SlideshowInput{
		ProjectID:       "p1",
		SegmentIndex:    2,
		AspectRatio:     "9:16",
		ImageKeys:       []string{"a.png", "b.png", "c.png"},
		AudioKey:        "narration.mp3",
		Narration:       "a quiet morning in the valley",
		DurationSeconds: 6,
	})

	if doc.Kind != KindSlideshow || doc.Version != DocumentVersion {
		t.Fatalf("unexpected document identity %+v", doc)
	}
	if len(doc.Clips) != 3 {
		t.Fatalf("len(clips) = %d, want 3", len(doc.Clips))
	}
	if doc.Clips[0].DurationSeconds != 2 || doc.Clips[1].StartSeconds != 2 || doc.Clips[2].StartSeconds != 4 {
		t.Fatalf("clips not evenly spread: %+v", doc.Clips)
	}
	if doc.Clips[0].Transition != "" || doc.Clips[1].Transition != "crossfade" {
		t.Fatalf("transitions wrong: %+v", doc.Clips)
	}
	if len(doc.Audio) != 1 || doc.Audio[0].AudioKey != "narration.mp3" {
		t.Fatalf("audio track = %+v", doc.Audio)
	}
	if len(doc.Subtitles) == 0 {
		t.Fatal("expected subtitle cues")
	}
}

func TestBuildCompiledConcatenatesSegments(t *testing.T) {
	doc := BuildCompiled("p2", "9:16", []CompiledSegment{
		{VideoURL: "https://cdn/seg0.mp4", AudioKey: "a0.mp3", Narration: "first part of the story", DurationSeconds: 5},
		{ImageKey: "still1.png", Narration: "second part", DurationSeconds: 4},
	})

	if doc.Kind != KindCompiled {
		t.Fatalf("kind = %q", doc.Kind)
	}
	if doc.DurationSeconds != 9 {
		t.Fatalf("total duration = %v, want 9", doc.DurationSeconds)
	}
	if doc.Clips[0].VideoURL == "" || doc.Clips[1].ImageKey == "" {
		t.Fatalf("clip sources wrong: %+v", doc.Clips)
	}
	if doc.Clips[1].StartSeconds != 5 {
		t.Fatalf("second clip starts at %v, want 5", doc.Clips[1].StartSeconds)
	}
	if len(doc.Audio) != 1 {
		t.Fatalf("len(audio) = %d, want 1 (second segment has no audio)", len(doc.Audio))
	}
	// Cues from the second segment start after the first segment.
	last := doc.Subtitles[len(doc.Subtitles)-1]
	if last.StartSeconds < 5 {
		t.Fatalf("last cue starts at %v, want >= 5", last.StartSeconds)
	}
	for i, cue := range doc.Subtitles {
		if cue.Index != i {
			t.Fatalf("cue %d has index %d", i, cue.Index)
		}
	}
}

func TestBuildCompiledFillsBareSegmentsWithColorCards(t *testing.T) {
	doc := BuildCompiled("p6", "9:16", []CompiledSegment{
		{Narration: "nothing was generated here", DurationSeconds: 4},
	})
	if len(doc.Clips) != 1 {
		t.Fatalf("len(clips) = %d, want 1", len(doc.Clips))
	}
	clip := doc.Clips[0]
	if clip.VideoURL != "" || clip.ImageKey != "" {
		t.Fatalf("bare segment should have no media source: %+v", clip)
	}
	if clip.ColorHex == "" {
		t.Fatal("bare segment clip has no color card")
	}
}

func TestWriterPersistsDocument(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	w := NewWriter(store)

	doc := BuildSlideshow(SlideshowInput{
		ProjectID:       "p3",
		SegmentIndex:    1,
		ImageKeys:       []string{"a.png"},
		Narration:       "hello",
		DurationSeconds: 5,
	})
	key, data, err := w.WriteDocument(context.Background(), doc)
	if err != nil {
		t.Fatalf("WriteDocument: %v", err)
	}
	if key != "projects/p3/compositions/segment_1.json" {
		t.Fatalf("key = %q", key)
	}
	var decoded Document
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal stored document: %v", err)
	}
	if decoded.ProjectID != "p3" || decoded.SegmentIndex != 1 {
		t.Fatalf("stored document = %+v", decoded)
	}
}

func TestWriterRejectsMissingProject(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if _, _, err := NewWriter(store).WriteDocument(context.Background(), Document{}); err == nil {
		t.Fatal("expected error for missing project id")
	}
}

func TestSlideshowComposer(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	composer := NewSlideshowComposer(NewWriter(store))

	asset, err := composer.ComposeSlideshow(context.Background(), video.GenerateRequest{
		RequestID:          "p4:3",
		AspectRatio:        "9:16",
		DurationSeconds:    6,
		SlideshowImageKeys: []string{"a.png", "b.png"},
		AudioKey:           "n.mp3",
		NarrationText:      "the hero returns home",
	})
	if err != nil {
		t.Fatalf("ComposeSlideshow: %v", err)
	}
	if asset.Strategy != video.StrategySlideshow {
		t.Fatalf("strategy = %q", asset.Strategy)
	}
	if !strings.Contains(asset.StorageKey, "segment_3") {
		t.Fatalf("storage key = %q, want segment index from request id", asset.StorageKey)
	}
	if len(asset.Data) == 0 {
		t.Fatal("asset carries no document bytes")
	}
}

func TestSlideshowComposerRequiresImages(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	composer := NewSlideshowComposer(NewWriter(store))
	if _, err := composer.ComposeSlideshow(context.Background(), video.GenerateRequest{RequestID: "p5:0"}); err == nil {
		t.Fatal("expected error without stills")
	}
}
