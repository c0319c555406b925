package credentials

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/animato-app/animato-server/internal/infra"
	"github.com/animato-app/animato-server/internal/sqlinline"
)

// Providers whose API keys can be stored in the database instead of the
// environment. Video provider names mirror the registry.
const (
	ProviderGemini     = "gemini"
	ProviderOpenAI     = "openai"
	ProviderElevenLabs = "elevenlabs"
	ProviderShotstack  = "shotstack"
	ProviderBannerbear = "bannerbear"
	ProviderCreatomate = "creatomate"
	ProviderLuma       = "luma"
	ProviderRunway     = "runway"
	ProviderKling      = "kling"
	ProviderAIML       = "aimlapi"
)

// Known lists every provider accepted by the store.
func Known() []string {
	return []string{
		ProviderGemini, ProviderOpenAI, ProviderElevenLabs,
		ProviderShotstack, ProviderBannerbear, ProviderCreatomate,
		ProviderLuma, ProviderRunway, ProviderKling, ProviderAIML,
	}
}

// IsKnown reports whether the provider name is accepted by the store.
func IsKnown(provider string) bool {
	provider = strings.ToLower(strings.TrimSpace(provider))
	for _, known := range Known() {
		if provider == known {
			return true
		}
	}
	return false
}

// Store reads and writes provider API keys in Postgres. Database keys take
// precedence over environment variables so keys can be rotated without a
// redeploy.
type Store struct {
	sql infra.SQLExecutor
}

func NewStore(sql infra.SQLExecutor) *Store {
	return &Store{sql: sql}
}

// Token returns the stored key for the provider, or "" when none is stored.
func (s *Store) Token(ctx context.Context, provider string) (string, error) {
	row := s.sql.QueryRow(ctx, sqlinline.QSelectProviderKey, strings.ToLower(strings.TrimSpace(provider)))
	var token string
	if err := row.Scan(&token); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(token), nil
}

// Set upserts the key for a known provider.
func (s *Store) Set(ctx context.Context, provider, key string) error {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if !IsKnown(provider) {
		return errors.New("credentials: unknown provider " + provider)
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("credentials: api key is required")
	}
	_, err := s.sql.Exec(ctx, sqlinline.QUpsertProviderKey, provider, key)
	return err
}

// Resolve returns the database key when present, otherwise the env fallback.
func (s *Store) Resolve(ctx context.Context, provider, envValue string) (string, error) {
	token, err := s.Token(ctx, provider)
	if err != nil {
		return "", err
	}
	if token != "" {
		return token, nil
	}
	return strings.TrimSpace(envValue), nil
}
