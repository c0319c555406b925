package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/animato-app/animato-server/internal/infra"
	"github.com/animato-app/animato-server/internal/infra/credentials"
)

// envVars maps providers onto the environment variable consulted when -key is
// omitted.
var envVars = map[string]string{
	credentials.ProviderGemini:     "GEMINI_API_KEY",
	credentials.ProviderOpenAI:     "OPENAI_API_KEY",
	credentials.ProviderElevenLabs: "ELEVENLABS_API_KEY",
	credentials.ProviderShotstack:  "SHOTSTACK_API_KEY",
	credentials.ProviderBannerbear: "BANNERBEAR_API_KEY",
	credentials.ProviderCreatomate: "CREATOMATE_API_KEY",
	credentials.ProviderLuma:       "LUMA_API_KEY",
	credentials.ProviderRunway:     "RUNWAY_API_KEY",
	credentials.ProviderKling:      "KLING_API_KEY",
	credentials.ProviderAIML:       "AIML_API_KEY",
}

func main() {
	var (
		keyFlag      string
		providerFlag string
	)
	flag.StringVar(&keyFlag, "key", "", "API key for the selected provider (falls back to environment)")
	flag.StringVar(&providerFlag, "provider", "", "Provider to configure: "+strings.Join(credentials.Known(), ", "))
	flag.Parse()

	provider := strings.TrimSpace(strings.ToLower(providerFlag))
	if provider == "" {
		fmt.Fprintln(os.Stderr, "-provider is required")
		os.Exit(1)
	}
	if !credentials.IsKnown(provider) {
		fmt.Fprintf(os.Stderr, "unsupported provider %q\n", providerFlag)
		os.Exit(1)
	}

	key := strings.TrimSpace(keyFlag)
	if key == "" {
		key = strings.TrimSpace(os.Getenv(envVars[provider]))
	}
	if key == "" {
		fmt.Fprintf(os.Stderr, "%s API key is required via -key or %s\n", provider, envVars[provider])
		os.Exit(1)
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create pool: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	logger := infra.NewLogger("cli").With().Str("cmd", "providerkey").Str("provider", provider).Logger()
	store := credentials.NewStore(infra.NewSQLRunner(pool, logger))

	ctxExec, cancelExec := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelExec()
	if err := store.Set(ctxExec, provider, key); err != nil {
		fmt.Fprintf(os.Stderr, "failed to persist %s api key: %v\n", provider, err)
		os.Exit(1)
	}

	fmt.Printf("%s API key stored successfully\n", provider)
}
