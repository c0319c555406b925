package speech

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// SynthesizeRequest carries one segment's narration into a speech provider.
type SynthesizeRequest struct {
	Text      string
	VoiceID   string
	Locale    string
	RequestID string
}

// Audio is one synthesized narration artifact.
type Audio struct {
	StorageKey      string
	Format          string
	DurationSeconds float64
	Provider        string
	Data            []byte
}

// Synthesizer is the contract implemented by speech providers.
type Synthesizer interface {
	Name() string
	Synthesize(ctx context.Context, req SynthesizeRequest) (*Audio, error)
}

// readingRate matches the subtitle cue pacing so audio and captions agree.
const readingRate = 2.5

// Static emits a placeholder artifact carrying the narration as text. It
// stands in for real audio in environments without a TTS key; duration is
// estimated from the word count at the caption reading rate.
type Static struct{}

func NewStatic() *Static {
	return &Static{}
}

func (s *Static) Name() string { return "static" }

func (s *Static) Synthesize(ctx context.Context, req SynthesizeRequest) (*Audio, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, fmt.Errorf("speech: narration text is empty")
	}

	words := len(strings.Fields(text))
	seed := staticSeed(req.RequestID, text, req.VoiceID)
	body := fmt.Sprintf("placeholder narration\nvoice: %s\nlocale: %s\ntext: %s\n",
		req.VoiceID, req.Locale, text)

	return &Audio{
		StorageKey:      fmt.Sprintf("synthetic/audio/%s.txt", seed),
		Format:          "text/plain",
		DurationSeconds: float64(words) / readingRate,
		Provider:        s.Name(),
		Data:            []byte(body),
	}, nil
}

func staticSeed(parts ...string) string {
	hasher := sha256.New()
	for _, part := range parts {
		hasher.Write([]byte(part))
		hasher.Write([]byte{'|'})
	}
	return hex.EncodeToString(hasher.Sum(nil))[:16]
}

var _ Synthesizer = (*Static)(nil)
