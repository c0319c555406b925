package composition

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/animato-app/animato-server/internal/providers/video"
)

// ContentType identifies stored composition documents.
const ContentType = "application/json"

// SlideshowComposer implements the video chain's degraded path: when every
// remote provider fails, the segment stills are assembled into a slideshow
// timeline and persisted as a composition document.
type SlideshowComposer struct {
	writer *Writer
}

func NewSlideshowComposer(writer *Writer) *SlideshowComposer {
	return &SlideshowComposer{writer: writer}
}

// ComposeSlideshow builds and stores the slideshow document for one segment.
// It fails when the request carries no stills, letting the chain move on to
// the stock library.
func (c *SlideshowComposer) ComposeSlideshow(ctx context.Context, req video.GenerateRequest) (*video.Asset, error) {
	if len(req.SlideshowImageKeys) == 0 {
		return nil, errors.New("composition: no segment stills to compose")
	}

	projectID, segmentIndex := splitRequestID(req.RequestID)
	doc := BuildSlideshow(SlideshowInput{
		ProjectID:       projectID,
		SegmentIndex:    segmentIndex,
		AspectRatio:     req.AspectRatio,
		ImageKeys:       req.SlideshowImageKeys,
		AudioKey:        req.AudioKey,
		Narration:       req.NarrationText,
		DurationSeconds: req.DurationSeconds,
	})

	key, data, err := c.writer.WriteDocument(ctx, doc)
	if err != nil {
		return nil, err
	}

	return &video.Asset{
		StorageKey:      key,
		Format:          ContentType,
		DurationSeconds: doc.DurationSeconds,
		Provider:        video.StrategySlideshow,
		Strategy:        video.StrategySlideshow,
		Data:            data,
	}, nil
}

// splitRequestID recovers the project id and segment index from the chain's
// request id, which the worker forms as "<project-id>:<segment-index>".
func splitRequestID(id string) (string, int) {
	parts := strings.SplitN(id, ":", 2)
	if len(parts) != 2 {
		return id, 0
	}
	idx, err := strconv.Atoi(parts[1])
	if err != nil {
		return parts[0], 0
	}
	return parts[0], idx
}

var _ video.Composer = (*SlideshowComposer)(nil)
