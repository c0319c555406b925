package video

import (
	"context"
	"errors"
	"io"

	"github.com/rs/zerolog"

	"github.com/animato-app/animato-server/internal/infra"
)

// Composer builds a degraded slideshow composition when every remote provider
// has failed. The concrete implementation lives in the composition package.
type Composer interface {
	ComposeSlideshow(ctx context.Context, req GenerateRequest) (*Asset, error)
}

// FallbackFunc observes every degradation step: the provider (or strategy)
// that failed, a stable reason token, and the underlying error.
type FallbackFunc func(provider, reason string, err error)

// ChainOptions wires the fallback chain.
type ChainOptions struct {
	Adapters   []Generator
	Composer   Composer
	Stock      *StockLibrary
	OnFallback FallbackFunc
	Logger     *infra.Logger
}

// Chain tries providers in priority order, then the slideshow composer, then
// the stock library. Given a non-nil stock library it never returns an error
// for anything other than context cancellation.
type Chain struct {
	adapters   []Generator
	composer   Composer
	stock      *StockLibrary
	onFallback FallbackFunc
	logger     *infra.Logger
}

func NewChain(opts ChainOptions) *Chain {
	logger := opts.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	stock := opts.Stock
	if stock == nil {
		stock = DefaultStockLibrary()
	}
	return &Chain{
		adapters:   opts.Adapters,
		composer:   opts.Composer,
		stock:      stock,
		onFallback: opts.OnFallback,
		logger:     logger,
	}
}

// Generate runs the chain. The first successful strategy wins.
func (c *Chain) Generate(ctx context.Context, req GenerateRequest) (*Asset, error) {
	for _, adapter := range c.adapters {
		if !adapter.Ready() {
			c.logger.Debug().
				Str("provider", adapter.Name()).
				Str("request_id", req.RequestID).
				Msg("chain: provider skipped, no credentials")
			continue
		}

		asset, err := adapter.Generate(ctx, req)
		if err == nil && asset != nil {
			c.logger.Info().
				Str("provider", adapter.Name()).
				Str("request_id", req.RequestID).
				Msg("chain: provider succeeded")
			return asset, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.recordFallback(adapter.Name(), err, req.RequestID)
	}

	if c.composer != nil {
		asset, err := c.composer.ComposeSlideshow(ctx, req)
		if err == nil && asset != nil {
			c.logger.Info().
				Str("request_id", req.RequestID).
				Msg("chain: slideshow composition used")
			return asset, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.recordFallback(StrategySlideshow, err, req.RequestID)
	}

	asset := c.stock.Pick(req)
	c.logger.Warn().
		Str("request_id", req.RequestID).
		Str("url", asset.URL).
		Msg("chain: degraded to stock placeholder")
	return asset, nil
}

func (c *Chain) recordFallback(provider string, err error, requestID string) {
	reason := fallbackReason(err)
	c.logger.Warn().
		Err(err).
		Str("provider", provider).
		Str("reason", reason).
		Str("request_id", requestID).
		Msg("chain: strategy failed, falling through")
	if c.onFallback != nil {
		c.onFallback(provider, reason, err)
	}
}

// fallbackReason maps an adapter error to a stable token for callbacks and
// usage counters.
func fallbackReason(err error) string {
	switch {
	case err == nil:
		return "empty_result"
	case errors.Is(err, ErrNoCredentials):
		return "no_credentials"
	case errors.Is(err, ErrPollTimeout):
		return "poll_timeout"
	default:
		var failed *JobFailedError
		if errors.As(err, &failed) {
			return "job_failed"
		}
		var apiErr *apiStatusError
		if errors.As(err, &apiErr) {
			return "http_status"
		}
		return "http_request"
	}
}
