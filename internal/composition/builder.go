package composition

// SlideshowInput describes one degraded segment composition.
type SlideshowInput struct {
	ProjectID       string
	SegmentIndex    int
	AspectRatio     string
	ImageKeys       []string
	AudioKey        string
	Narration       string
	DurationSeconds float64
}

// BuildSlideshow lays the segment stills out evenly across the segment
// duration with crossfades, attaches the narration audio when present, and
// cues subtitles from the narration text.
func BuildSlideshow(in SlideshowInput) Document {
	duration := in.DurationSeconds
	if duration <= 0 {
		duration = NarrationDuration(in.Narration)
	}
	if duration <= 0 {
		duration = 5
	}

	doc := Document{
		Version:         DocumentVersion,
		ProjectID:       in.ProjectID,
		Kind:            KindSlideshow,
		SegmentIndex:    in.SegmentIndex,
		AspectRatio:     in.AspectRatio,
		DurationSeconds: round2(duration),
	}

	per := duration
	if len(in.ImageKeys) > 0 {
		per = duration / float64(len(in.ImageKeys))
	}
	at := 0.0
	for i, key := range in.ImageKeys {
		clip := Clip{
			ImageKey:        key,
			StartSeconds:    round2(at),
			DurationSeconds: round2(per),
		}
		if i > 0 {
			clip.Transition = "crossfade"
		}
		doc.Clips = append(doc.Clips, clip)
		at += per
	}

	if in.AudioKey != "" {
		doc.Audio = []AudioTrack{{AudioKey: in.AudioKey, StartSeconds: 0, DurationSeconds: round2(duration)}}
	}
	doc.Subtitles = CueNarration(in.Narration, 0, 0)

	return doc
}

// CompiledSegment is one finished segment feeding the final timeline.
type CompiledSegment struct {
	VideoURL        string
	ImageKey        string
	AudioKey        string
	Narration       string
	DurationSeconds float64
}

// BuildCompiled concatenates the per-segment videos into the final project
// timeline. Segments that only produced a still (a fully degraded run) are
// carried as image clips so the compiled document always covers every segment.
func BuildCompiled(projectID, aspectRatio string, segments []CompiledSegment) Document {
	doc := Document{
		Version:     DocumentVersion,
		ProjectID:   projectID,
		Kind:        KindCompiled,
		AspectRatio: aspectRatio,
	}

	at := 0.0
	cueIndex := 0
	for i, seg := range segments {
		dur := seg.DurationSeconds
		if dur <= 0 {
			dur = NarrationDuration(seg.Narration)
		}
		if dur <= 0 {
			dur = 5
		}

		clip := Clip{
			StartSeconds:    round2(at),
			DurationSeconds: round2(dur),
		}
		switch {
		case seg.VideoURL != "":
			clip.VideoURL = seg.VideoURL
		case seg.ImageKey != "":
			clip.ImageKey = seg.ImageKey
		default:
			clip.ColorHex = colorCardHex
		}
		if i > 0 {
			clip.Transition = "crossfade"
		}
		doc.Clips = append(doc.Clips, clip)

		if seg.AudioKey != "" {
			doc.Audio = append(doc.Audio, AudioTrack{
				AudioKey:        seg.AudioKey,
				StartSeconds:    round2(at),
				DurationSeconds: round2(dur),
			})
		}
		cues := CueNarration(seg.Narration, at, cueIndex)
		doc.Subtitles = append(doc.Subtitles, cues...)
		cueIndex += len(cues)

		at += dur
	}
	doc.DurationSeconds = round2(at)

	return doc
}
