package video

import (
	"hash/fnv"
	"strings"
)

// StockVideo is one fixed placeholder clip.
type StockVideo struct {
	URL             string
	DurationSeconds float64
}

// StockLibrary is the terminal fallback: a compiled-in table of placeholder
// clips keyed by theme. Selection is deterministic per request so retries of
// the same job pick the same clip.
type StockLibrary struct {
	byTheme map[string][]StockVideo
	generic []StockVideo
}

// DefaultStockLibrary returns the placeholder table the app ships with.
func DefaultStockLibrary() *StockLibrary {
	return &StockLibrary{
		byTheme: map[string][]StockVideo{
			"adventure": {
				{URL: "https://cdn.animato.dev/stock/adventure-ridge.mp4", DurationSeconds: 6},
				{URL: "https://cdn.animato.dev/stock/adventure-river.mp4", DurationSeconds: 5},
			},
			"fairytale": {
				{URL: "https://cdn.animato.dev/stock/fairytale-castle.mp4", DurationSeconds: 6},
				{URL: "https://cdn.animato.dev/stock/fairytale-forest.mp4", DurationSeconds: 5},
			},
			"mystery": {
				{URL: "https://cdn.animato.dev/stock/mystery-alley.mp4", DurationSeconds: 5},
				{URL: "https://cdn.animato.dev/stock/mystery-fog.mp4", DurationSeconds: 6},
			},
			"scifi": {
				{URL: "https://cdn.animato.dev/stock/scifi-orbit.mp4", DurationSeconds: 6},
				{URL: "https://cdn.animato.dev/stock/scifi-neon.mp4", DurationSeconds: 5},
			},
			"comedy": {
				{URL: "https://cdn.animato.dev/stock/comedy-confetti.mp4", DurationSeconds: 5},
			},
			"nature": {
				{URL: "https://cdn.animato.dev/stock/nature-meadow.mp4", DurationSeconds: 6},
				{URL: "https://cdn.animato.dev/stock/nature-shore.mp4", DurationSeconds: 5},
			},
		},
		generic: []StockVideo{
			{URL: "https://cdn.animato.dev/stock/generic-gradient.mp4", DurationSeconds: 5},
			{URL: "https://cdn.animato.dev/stock/generic-particles.mp4", DurationSeconds: 6},
		},
	}
}

// Pick selects a placeholder for the request. It always succeeds.
func (l *StockLibrary) Pick(req GenerateRequest) *Asset {
	pool := l.generic
	if clips, ok := l.byTheme[strings.ToLower(strings.TrimSpace(req.Theme))]; ok && len(clips) > 0 {
		pool = clips
	}
	if len(pool) == 0 {
		pool = []StockVideo{{URL: "https://cdn.animato.dev/stock/generic-gradient.mp4", DurationSeconds: 5}}
	}

	h := fnv.New32a()
	h.Write([]byte(req.RequestID))
	clip := pool[int(h.Sum32())%len(pool)]

	return &Asset{
		URL:             clip.URL,
		Format:          "video/mp4",
		DurationSeconds: clip.DurationSeconds,
		Provider:        "stock",
		Strategy:        StrategyStock,
	}
}
