package domain

import "time"

// AssetKind enumerates artifact types produced by the pipeline.
type AssetKind string

const (
	AssetKindImage       AssetKind = "image"
	AssetKindAudio       AssetKind = "audio"
	AssetKindVideo       AssetKind = "video"
	AssetKindComposition AssetKind = "composition"
)

// Asset represents a generated artifact persisted on the file store with a
// metadata row in Postgres.
type Asset struct {
	ID              string
	ProjectID       string
	JobID           string
	Kind            AssetKind
	StorageKey      string
	MIME            string
	Bytes           int64
	Width           int
	Height          int
	DurationSeconds float64
	SegmentIndex    int
	Metadata        map[string]any
	CreatedAt       time.Time
}
