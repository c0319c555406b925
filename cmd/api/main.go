package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/animato-app/animato-server/internal/adapter/repo"
	"github.com/animato-app/animato-server/internal/http/handlers"
	"github.com/animato-app/animato-server/internal/http/httpapi"
	"github.com/animato-app/animato-server/internal/infra"
	"github.com/animato-app/animato-server/internal/infra/credentials"
	"github.com/animato-app/animato-server/internal/infra/geoip"
	"github.com/animato-app/animato-server/internal/middleware"
	"github.com/animato-app/animato-server/internal/providers/video"
	"github.com/animato-app/animato-server/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("api: db connection failed")
	}
	defer pool.Close()

	runner := infra.NewSQLRunner(pool, logger)

	fileStore, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("api: failed to configure storage")
	}

	registry, err := loadVideoRegistry(ctx, cfg, runner, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("api: failed to load provider registry")
	}

	app := &handlers.App{
		SQL:            runner,
		Projects:       repo.NewProjectRepository(runner),
		Jobs:           repo.NewJobRepository(runner),
		Assets:         repo.NewAssetRepository(runner),
		Usage:          repo.NewUsageRepository(runner),
		Store:          fileStore,
		Registry:       registry,
		Prober:         video.NewProber(&http.Client{Timeout: 10 * time.Second}, 5*time.Second),
		StorageBaseURL: cfg.StorageBaseURL,
		Logger:         &logger,
	}

	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:         logger,
		DefaultLocale:  cfg.DefaultLocale,
		CountryLookup:  countryLookup(cfg, logger),
		AllowedOrigins: cfg.CORSOrigins,
		RateLimit:      cfg.RateLimitPerMin,
		RatePer:        time.Minute,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("api: http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("api: failed to shutdown server")
	}
	logger.Info().Msg("api: stopped")
}

// loadVideoRegistry resolves every provider key (credential store first, then
// environment) and builds the priority-ordered registry.
func loadVideoRegistry(ctx context.Context, cfg *infra.Config, runner *infra.SQLRunner, logger infra.Logger) (*video.Registry, error) {
	credStore := credentials.NewStore(runner)
	envKeys := map[string]string{
		video.ProviderShotstack:  cfg.ShotstackAPIKey,
		video.ProviderBannerbear: cfg.BannerbearAPIKey,
		video.ProviderCreatomate: cfg.CreatomateAPIKey,
		video.ProviderLuma:       cfg.LumaAPIKey,
		video.ProviderRunway:     cfg.RunwayAPIKey,
		video.ProviderKling:      cfg.KlingAPIKey,
		video.ProviderAIML:       cfg.AIMLAPIKey,
	}
	keys := make(map[string]string, len(envKeys))
	for provider, envValue := range envKeys {
		key, err := credStore.Resolve(ctx, provider, envValue)
		if err != nil {
			logger.Warn().Err(err).Str("provider", provider).Msg("api: credential lookup failed, using environment")
			key = strings.TrimSpace(envValue)
		}
		keys[provider] = key
	}
	return video.LoadRegistry(cfg.ProvidersConfigPath, keys)
}

// countryLookup returns the GeoIP country resolver, or nil when no database
// is configured. The locale middleware treats a nil lookup as unknown country.
func countryLookup(cfg *infra.Config, logger infra.Logger) middleware.CountryLookup {
	if strings.TrimSpace(cfg.GeoIPDBPath) == "" {
		return nil
	}
	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("api: geoip database unavailable, locale falls back to headers")
		return nil
	}
	return func(ip string) (string, error) {
		return resolver.CountryCode(ip)
	}
}
