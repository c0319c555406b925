package script

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/animato-app/animato-server/internal/domain"
	"github.com/animato-app/animato-server/internal/domain/jsoncfg"
)

type modelScriptPayload struct {
	Title      string                  `json:"title"`
	Segments   []modelSegmentPayload   `json:"segments"`
	Characters []modelCharacterPayload `json:"characters"`
}

type modelSegmentPayload struct {
	Narration       string  `json:"narration"`
	VisualPrompt    string  `json:"visual_prompt"`
	DurationSeconds float64 `json:"duration_seconds"`
}

type modelCharacterPayload struct {
	Name             string `json:"name"`
	Role             string `json:"role"`
	AppearancePrompt string `json:"appearance_prompt"`
}

type modelCharactersPayload struct {
	Characters []modelCharacterPayload `json:"characters"`
}

func buildScriptPrompt(req WriteRequest) string {
	brief := req.Brief
	locale := req.Locale
	if locale == "" {
		locale = brief.Extras.Locale
	}
	if locale == "" {
		locale = jsoncfg.DefaultExtrasLocale
	}
	count := brief.SegmentCount
	if count <= 0 {
		count = jsoncfg.DefaultSegmentCount
	}

	sb := &strings.Builder{}
	sb.WriteString("You are a children's animated-short scriptwriter. Respond strictly with JSON matching this schema: ")
	sb.WriteString(`{"title":string,"segments":[{"narration":string,"visual_prompt":string,"duration_seconds":number}],"characters":[{"name":string,"role":string,"appearance_prompt":string}]}`)
	fmt.Fprintf(sb, ". Write exactly %d segments of 4-8 seconds each. Use locale '%s' for the narration language. Theme=%q, topic=%q, style=%q. Visual prompts must be self-contained image descriptions.",
		count, locale, brief.Theme, brief.Topic, brief.Style)
	return sb.String()
}

func buildCharactersPrompt(script domain.Script) string {
	sb := &strings.Builder{}
	sb.WriteString("Derive the recurring characters of this animated short. Respond strictly with JSON: ")
	sb.WriteString(`{"characters":[{"name":string,"role":string,"appearance_prompt":string}]}`)
	fmt.Fprintf(sb, ". Title=%q, theme=%q. Narration per segment:", script.Title, script.Theme)
	for _, seg := range script.Segments {
		fmt.Fprintf(sb, " [%d] %s", seg.Index, seg.Narration)
	}
	sb.WriteString(". Appearance prompts must be self-contained portrait descriptions.")
	return sb.String()
}

// payloadToScript normalizes a model payload into the domain script, clamping
// the segment list to the requested count and backfilling missing fields.
func payloadToScript(payload modelScriptPayload, req WriteRequest) (*domain.Script, error) {
	if len(payload.Segments) == 0 {
		return nil, errors.New("script: model returned no segments")
	}

	brief := req.Brief
	brief.Normalize(req.Locale)

	script := &domain.Script{
		Title:  coalesce(payload.Title, brief.Topic),
		Theme:  strings.ToLower(strings.TrimSpace(brief.Theme)),
		Locale: brief.Extras.Locale,
	}

	segments := payload.Segments
	if len(segments) > brief.SegmentCount {
		segments = segments[:brief.SegmentCount]
	}
	for i, seg := range segments {
		narration := strings.TrimSpace(seg.Narration)
		if narration == "" {
			return nil, fmt.Errorf("script: segment %d has no narration", i)
		}
		dur := seg.DurationSeconds
		if dur <= 0 {
			dur = defaultSegmentSeconds
		}
		script.Segments = append(script.Segments, domain.Segment{
			Index:           i,
			Narration:       narration,
			VisualPrompt:    coalesce(seg.VisualPrompt, narration),
			DurationSeconds: dur,
		})
	}

	for _, ch := range payload.Characters {
		name := strings.TrimSpace(ch.Name)
		if name == "" {
			continue
		}
		script.Characters = append(script.Characters, domain.Character{
			Name:             name,
			Role:             coalesce(ch.Role, "character"),
			AppearancePrompt: coalesce(ch.AppearancePrompt, name),
		})
	}

	return script, nil
}

func payloadToCharacters(payload modelCharactersPayload) ([]domain.Character, error) {
	var out []domain.Character
	for _, ch := range payload.Characters {
		name := strings.TrimSpace(ch.Name)
		if name == "" {
			continue
		}
		out = append(out, domain.Character{
			Name:             name,
			Role:             coalesce(ch.Role, "character"),
			AppearancePrompt: coalesce(ch.AppearancePrompt, name),
		})
	}
	if len(out) == 0 {
		return nil, errors.New("script: model returned no characters")
	}
	return out, nil
}

func coalesce(values ...string) string {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			return v
		}
	}
	return ""
}

func parseModelPayload[T any](raw string) (T, error) {
	var zero T
	cleaned := extractJSONFragment(raw)
	if cleaned == "" {
		return zero, errors.New("empty payload")
	}
	var decoded T
	if err := json.Unmarshal([]byte(cleaned), &decoded); err != nil {
		return zero, err
	}
	return decoded, nil
}

func extractJSONFragment(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}
	text = trimCodeFence(text)
	start := strings.IndexAny(text, "{[")
	end := strings.LastIndexAny(text, "]}")
	if start >= 0 && end >= start {
		text = text[start : end+1]
	}
	return strings.TrimSpace(text)
}

func trimCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```JSON")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}
