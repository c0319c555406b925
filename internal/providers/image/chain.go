package image

import (
	"context"
	"io"

	"github.com/rs/zerolog"

	"github.com/animato-app/animato-server/internal/infra"
)

// Chain tries image generators in order and falls back to the synthetic
// renderer, so the photo step never fails outright.
type Chain struct {
	generators []Generator
	terminal   *Synthetic
	onFallback func(provider, reason string, err error)
	logger     *infra.Logger
}

type ChainOptions struct {
	Generators []Generator
	OnFallback func(provider, reason string, err error)
	Logger     *infra.Logger
}

func NewChain(opts ChainOptions) *Chain {
	logger := opts.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Chain{
		generators: opts.Generators,
		terminal:   NewSynthetic(),
		onFallback: opts.OnFallback,
		logger:     logger,
	}
}

func (c *Chain) Name() string { return "chain" }

func (c *Chain) Generate(ctx context.Context, req GenerateRequest) (*Asset, error) {
	for _, gen := range c.generators {
		asset, err := gen.Generate(ctx, req)
		if err == nil && asset != nil {
			return asset, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.Warn().
			Err(err).
			Str("provider", gen.Name()).
			Str("request_id", req.RequestID).
			Msg("image: provider failed, falling through")
		if c.onFallback != nil {
			c.onFallback(gen.Name(), "generate_failed", err)
		}
	}
	return c.terminal.Generate(ctx, req)
}

var _ Generator = (*Chain)(nil)
