package jsoncfg

import (
	"encoding/json"
	"fmt"
	"strings"
)

// VoiceConfig selects the narration voice for the speech step.
type VoiceConfig struct {
	Provider string `json:"provider"`
	VoiceID  string `json:"voice_id"`
}

// ExtrasConfig carries optional generation hints.
type ExtrasConfig struct {
	Locale  string `json:"locale"`
	Quality string `json:"quality"`
}

// BriefJSON is the canonical project brief contract persisted on the project
// row. The wizard collects it on the first screen and every later step reads
// from it.
type BriefJSON struct {
	Version      string       `json:"version"`
	Theme        string       `json:"theme"`
	Topic        string       `json:"topic"`
	Style        string       `json:"style"`
	AspectRatio  string       `json:"aspect_ratio"`
	SegmentCount int          `json:"segment_count"`
	Voice        VoiceConfig  `json:"voice"`
	Extras       ExtrasConfig `json:"extras"`
}

var allowedAspectRatios = map[string]struct{}{
	"1:1":  {},
	"4:3":  {},
	"3:4":  {},
	"16:9": {},
	"9:16": {},
}

var allowedThemes = map[string]struct{}{
	"adventure": {},
	"fairytale": {},
	"mystery":   {},
	"scifi":     {},
	"comedy":    {},
	"nature":    {},
}

const (
	// DefaultBriefVersion represents the schema version persisted for briefs.
	DefaultBriefVersion = "2025-03"
	// DefaultBriefAspectRatio is used when the request omits the aspect ratio.
	DefaultBriefAspectRatio = "9:16"
	// DefaultSegmentCount keeps mobile renders short.
	DefaultSegmentCount = 4
	// MaxSegmentCount bounds the per-project workload.
	MaxSegmentCount = 8
	// DefaultExtrasLocale is applied when no locale preference is provided.
	DefaultExtrasLocale = "en"
	// DefaultExtrasQuality represents the baseline generation quality.
	DefaultExtrasQuality = "standard"
)

// Normalize ensures the brief respects server defaults and limits.
func (b *BriefJSON) Normalize(preferredLocale string) {
	if b == nil {
		return
	}
	if b.Version == "" {
		b.Version = DefaultBriefVersion
	}
	if b.AspectRatio == "" {
		b.AspectRatio = DefaultBriefAspectRatio
	}
	if b.SegmentCount <= 0 {
		b.SegmentCount = DefaultSegmentCount
	}
	if b.SegmentCount > MaxSegmentCount {
		b.SegmentCount = MaxSegmentCount
	}
	if b.Extras.Locale == "" {
		if preferredLocale != "" {
			b.Extras.Locale = preferredLocale
		} else {
			b.Extras.Locale = DefaultExtrasLocale
		}
	}
	if b.Extras.Quality == "" {
		b.Extras.Quality = DefaultExtrasQuality
	}
}

// Validate ensures the brief satisfies the contract before persistence.
func (b BriefJSON) Validate() error {
	if strings.TrimSpace(b.Theme) == "" {
		return fmt.Errorf("theme is required")
	}
	if _, ok := allowedThemes[strings.ToLower(strings.TrimSpace(b.Theme))]; !ok {
		return fmt.Errorf("theme must be one of adventure, fairytale, mystery, scifi, comedy, nature")
	}
	if strings.TrimSpace(b.Topic) == "" {
		return fmt.Errorf("topic is required")
	}
	if _, ok := allowedAspectRatios[b.AspectRatio]; !ok {
		return fmt.Errorf("aspect_ratio must be one of 1:1, 4:3, 3:4, 16:9, 9:16")
	}
	if b.SegmentCount < 1 || b.SegmentCount > MaxSegmentCount {
		return fmt.Errorf("segment_count must be between 1 and %d", MaxSegmentCount)
	}
	return nil
}

func MustMarshal(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("json marshal: %w", err))
	}
	return b
}
