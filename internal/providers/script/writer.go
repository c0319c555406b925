package script

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/animato-app/animato-server/internal/domain"
	"github.com/animato-app/animato-server/internal/domain/jsoncfg"
)

// WriteRequest carries the project brief into a script writer.
type WriteRequest struct {
	Brief  jsoncfg.BriefJSON
	Locale string
}

// Writer produces a narrated script for a brief and derives the character
// roster from an existing script.
type Writer interface {
	WriteScript(ctx context.Context, req WriteRequest) (*domain.Script, error)
	DeriveCharacters(ctx context.Context, script domain.Script) ([]domain.Character, error)
}

const (
	staticProviderName = "static"
	geminiProviderName = "gemini"
	openAIProviderName = "openai"
)

// themeBeats are the narrative beats the static writer cycles through per
// theme. Each beat is a narration template with a %s slot for the topic.
var themeBeats = map[string][]string{
	"adventure": {
		"Our journey begins as %s comes into view on the horizon.",
		"The path grows steep, but %s is worth every step.",
		"Danger appears, and only quick thinking about %s saves the day.",
		"At last the summit, and %s reveals its secret.",
	},
	"fairytale": {
		"Once upon a time, in a land shaped by %s, a story began.",
		"A gentle magic woven from %s filled the kingdom.",
		"A shadow fell, threatening everything %s had built.",
		"With kindness and courage, %s restored the light.",
	},
	"mystery": {
		"It started with a strange clue about %s left at the door.",
		"Every lead about %s pointed somewhere darker.",
		"The truth about %s was hiding in plain sight.",
		"Case closed: %s was the answer all along.",
	},
	"scifi": {
		"In the year 3042, %s changed everything we knew.",
		"The crew charted a course straight into %s.",
		"Systems failed as %s pushed the ship to its limits.",
		"Humanity's future now depends on %s.",
	},
	"comedy": {
		"Nobody expected %s to show up like this.",
		"Things with %s went sideways immediately.",
		"Just when it could not get worse, %s doubled down.",
		"In the end, everyone agreed: %s stole the show.",
	},
	"nature": {
		"Dawn breaks over %s as the world wakes.",
		"Life gathers around %s in quiet abundance.",
		"A storm tests everything %s has grown.",
		"Calm returns, and %s endures as it always has.",
	},
}

var themeRoles = map[string][2]string{
	"adventure": {"explorer", "guide"},
	"fairytale": {"hero", "enchanter"},
	"mystery":   {"detective", "witness"},
	"scifi":     {"captain", "navigator"},
	"comedy":    {"lead", "sidekick"},
	"nature":    {"narrator", "ranger"},
}

const defaultSegmentSeconds = 5

// StaticWriter synthesizes a deterministic script from the brief alone. It is
// the terminal fallback so script generation never fails outright.
type StaticWriter struct{}

func NewStaticWriter() *StaticWriter {
	return &StaticWriter{}
}

func (s *StaticWriter) WriteScript(_ context.Context, req WriteRequest) (*domain.Script, error) {
	brief := req.Brief
	brief.Normalize(req.Locale)

	theme := strings.ToLower(strings.TrimSpace(brief.Theme))
	topic := strings.TrimSpace(brief.Topic)
	if topic == "" {
		topic = "our story"
	}

	beats, ok := themeBeats[theme]
	if !ok {
		beats = themeBeats["adventure"]
	}

	titleCaser := cases.Title(language.Und)
	script := &domain.Script{
		Title:  fmt.Sprintf("%s: %s", titleCaser.String(theme), titleCaser.String(topic)),
		Theme:  theme,
		Locale: brief.Extras.Locale,
	}

	for i := 0; i < brief.SegmentCount; i++ {
		beat := beats[i%len(beats)]
		script.Segments = append(script.Segments, domain.Segment{
			Index:           i,
			Narration:       fmt.Sprintf(beat, topic),
			VisualPrompt:    fmt.Sprintf("%s scene %d, %s, %s style", theme, i+1, topic, coalesce(brief.Style, "cinematic")),
			DurationSeconds: defaultSegmentSeconds,
		})
	}

	chars, err := s.DeriveCharacters(context.Background(), *script)
	if err != nil {
		return nil, err
	}
	script.Characters = chars

	return script, nil
}

// DeriveCharacters builds a two-character roster from the theme. Deterministic
// so retries of CHARACTER_GEN produce the same cast.
func (s *StaticWriter) DeriveCharacters(_ context.Context, script domain.Script) ([]domain.Character, error) {
	theme := strings.ToLower(strings.TrimSpace(script.Theme))
	roles, ok := themeRoles[theme]
	if !ok {
		roles = themeRoles["adventure"]
	}

	titleCaser := cases.Title(language.Und)
	subject := script.Title
	if subject == "" {
		subject = titleCaser.String(theme)
	}

	return []domain.Character{
		{
			Name:             fmt.Sprintf("The %s", titleCaser.String(roles[0])),
			Role:             roles[0],
			AppearancePrompt: fmt.Sprintf("portrait of the %s from \"%s\", %s mood, detailed illustration", roles[0], subject, theme),
		},
		{
			Name:             fmt.Sprintf("The %s", titleCaser.String(roles[1])),
			Role:             roles[1],
			AppearancePrompt: fmt.Sprintf("portrait of the %s from \"%s\", %s mood, detailed illustration", roles[1], subject, theme),
		},
	}, nil
}

var _ Writer = (*StaticWriter)(nil)
