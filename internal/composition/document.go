package composition

import (
	"math"
	"strings"
)

// Document is the composition metadata artifact: a renderer-agnostic timeline
// describing which assets play when. The app never encodes video locally; it
// writes this document and lets a downstream renderer (or the client player)
// interpret it.
type Document struct {
	Version         int           `json:"version"`
	ProjectID       string        `json:"project_id"`
	Kind            string        `json:"kind"`
	SegmentIndex    int           `json:"segment_index,omitempty"`
	AspectRatio     string        `json:"aspect_ratio"`
	DurationSeconds float64       `json:"duration_seconds"`
	Clips           []Clip        `json:"clips"`
	Audio           []AudioTrack  `json:"audio,omitempty"`
	Subtitles       []SubtitleCue `json:"subtitles,omitempty"`
}

// Document kinds.
const (
	KindSlideshow = "slideshow"
	KindCompiled  = "compiled"
)

// DocumentVersion is bumped whenever the timeline shape changes.
const DocumentVersion = 1

// Clip is one visual element on the timeline. Exactly one of ImageKey,
// VideoURL, and ColorHex is set: slideshows reference stored stills, compiled
// timelines reference the per-segment videos, and segments with no visual
// artifact at all render a solid color card.
type Clip struct {
	ImageKey        string  `json:"image_key,omitempty"`
	VideoURL        string  `json:"video_url,omitempty"`
	ColorHex        string  `json:"color_hex,omitempty"`
	StartSeconds    float64 `json:"start_seconds"`
	DurationSeconds float64 `json:"duration_seconds"`
	Transition      string  `json:"transition,omitempty"`
}

// colorCardHex fills timeline gaps where a segment produced neither a video
// nor a still.
const colorCardHex = "#1c2333"

// AudioTrack references one stored narration artifact.
type AudioTrack struct {
	AudioKey        string  `json:"audio_key"`
	StartSeconds    float64 `json:"start_seconds"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// SubtitleCue is one timed caption derived from segment narration.
type SubtitleCue struct {
	Index        int     `json:"index"`
	StartSeconds float64 `json:"start_seconds"`
	EndSeconds   float64 `json:"end_seconds"`
	Text         string  `json:"text"`
}

// Subtitle pacing. Cues are cut at a fixed reading rate so timing never
// depends on an upstream provider.
const (
	wordsPerSecond = 2.5
	maxWordsPerCue = 7
)

// CueNarration splits narration text into subtitle cues starting at offset.
// Cue boundaries fall every maxWordsPerCue words and each cue lasts its word
// count divided by the fixed reading rate.
func CueNarration(text string, offset float64, startIndex int) []SubtitleCue {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var cues []SubtitleCue
	at := offset
	for start := 0; start < len(words); start += maxWordsPerCue {
		end := start + maxWordsPerCue
		if end > len(words) {
			end = len(words)
		}
		chunk := words[start:end]
		dur := float64(len(chunk)) / wordsPerSecond
		cues = append(cues, SubtitleCue{
			Index:        startIndex + len(cues),
			StartSeconds: round2(at),
			EndSeconds:   round2(at + dur),
			Text:         strings.Join(chunk, " "),
		})
		at += dur
	}
	return cues
}

// NarrationDuration estimates how long the narration takes to read at the
// fixed rate. Used when no audio artifact carries an explicit duration.
func NarrationDuration(text string) float64 {
	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}
	return round2(float64(words) / wordsPerSecond)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
