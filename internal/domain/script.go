package domain

// Segment is one narrated beat of the script. Every segment eventually gets a
// still image, a narration clip, and a generated (or fallback) video.
type Segment struct {
	Index           int     `json:"index"`
	Narration       string  `json:"narration"`
	VisualPrompt    string  `json:"visual_prompt"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// Character is a recurring figure derived from the script.
type Character struct {
	Name             string `json:"name"`
	Role             string `json:"role"`
	AppearancePrompt string `json:"appearance_prompt"`
}

// Script is the structured output of the script step, stored as JSON on the
// project row and edited in place by the user before later steps run.
type Script struct {
	Title      string      `json:"title"`
	Theme      string      `json:"theme"`
	Locale     string      `json:"locale"`
	Segments   []Segment   `json:"segments"`
	Characters []Character `json:"characters,omitempty"`
}

// TotalDuration sums segment durations in seconds.
func (s *Script) TotalDuration() float64 {
	var total float64
	for _, seg := range s.Segments {
		total += seg.DurationSeconds
	}
	return total
}
