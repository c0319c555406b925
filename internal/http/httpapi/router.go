package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/animato-app/animato-server/internal/http/handlers"
	"github.com/animato-app/animato-server/internal/middleware"
)

// Options tunes the middleware stack without threading every knob through
// main separately.
type Options struct {
	Logger         zerolog.Logger
	DefaultLocale  string
	CountryLookup  middleware.CountryLookup
	AllowedOrigins []string
	RateLimit      int
	RatePer        time.Duration
}

// NewRouter wires every API route behind the shared middleware stack. The
// health and documentation endpoints skip the device requirement so probes
// and browsers can reach them.
func NewRouter(app *handlers.App, opts Options) http.Handler {
	if opts.DefaultLocale == "" {
		opts.DefaultLocale = "en"
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 120
	}
	if opts.RatePer <= 0 {
		opts.RatePer = time.Minute
	}

	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(opts.Logger),
		middleware.CORS(opts.AllowedOrigins),
		middleware.RateLimit(opts.RateLimit, opts.RatePer),
		middleware.Locale(opts.DefaultLocale, opts.CountryLookup),
		middleware.Device("/v1/healthz", "/v1/openapi.json", "/v1/docs"),
	)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/healthz", app.Health)
		r.Get("/openapi.json", app.OpenAPIJSON)
		r.Get("/docs", app.OpenAPIDocs)

		r.Route("/projects", func(r chi.Router) {
			r.Post("/", app.ProjectsCreate)
			r.Get("/", app.ProjectsList)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", app.ProjectGet)
				r.Post("/script/generate", app.ScriptGenerate)
				r.Put("/script", app.ScriptEdit)
				r.Post("/characters/generate", app.CharactersGenerate)
				r.Post("/photos/generate", app.PhotosGenerate)
				r.Post("/speech/generate", app.SpeechGenerate)
				r.Post("/segments/{index}/video", app.SegmentVideoGenerate)
				r.Post("/compile", app.CompileVideo)
				r.Get("/assets", app.ProjectAssetsList)
				r.Get("/export", app.ProjectExport)
			})
		})

		r.Get("/assets/{id}/download", app.AssetDownload)
		r.Get("/jobs/{id}", app.JobGet)
		r.Get("/providers", app.ProvidersList)
		r.Get("/metrics/dashboard-24h", app.Dashboard24h)
	})

	return r
}
