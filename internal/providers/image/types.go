package image

import (
	"context"
	"strings"
)

// Kind distinguishes what the image is for. Portraits condition the video
// providers on character identity; stills illustrate one segment.
type Kind string

const (
	KindPortrait Kind = "portrait"
	KindStill    Kind = "still"
)

// GenerateRequest is the normalized request passed to any image provider.
type GenerateRequest struct {
	Prompt      string
	Kind        Kind
	AspectRatio string
	RequestID   string
	Locale      string
}

// Asset represents one generated image.
type Asset struct {
	StorageKey string
	URL        string
	Format     string
	Width      int
	Height     int
	Data       []byte
}

// Generator is the contract implemented by all image providers.
type Generator interface {
	Name() string
	Generate(ctx context.Context, req GenerateRequest) (*Asset, error)
}

// NormalizeKind sanitizes free-form input into a supported kind.
func NormalizeKind(kind string) Kind {
	if strings.EqualFold(strings.TrimSpace(kind), string(KindPortrait)) {
		return KindPortrait
	}
	return KindStill
}

// aspectDimensions maps an aspect ratio onto generation dimensions. Portraits
// are always square regardless of the project aspect.
func aspectDimensions(aspect string, kind Kind) (int, int) {
	if kind == KindPortrait {
		return 1024, 1024
	}
	switch strings.TrimSpace(aspect) {
	case "16:9":
		return 1920, 1080
	case "4:3":
		return 1280, 960
	case "3:4":
		return 960, 1280
	case "1:1":
		return 1024, 1024
	default:
		return 1080, 1920
	}
}
