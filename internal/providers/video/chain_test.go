package video

import (
	"context"
	"errors"
	"testing"
)

type fakeGenerator struct {
	name  string
	ready bool
	asset *Asset
	err   error
	calls int
}

func (f *fakeGenerator) Name() string { return f.name }
func (f *fakeGenerator) Ready() bool  { return f.ready }
func (f *fakeGenerator) Generate(_ context.Context, _ GenerateRequest) (*Asset, error) {
	f.calls++
	return f.asset, f.err
}

type fakeComposer struct {
	asset *Asset
	err   error
	calls int
}

func (f *fakeComposer) ComposeSlideshow(_ context.Context, _ GenerateRequest) (*Asset, error) {
	f.calls++
	return f.asset, f.err
}

func TestChainFirstSuccessWins(t *testing.T) {
	first := &fakeGenerator{name: "alpha", ready: true, asset: &Asset{URL: "https://a/v.mp4", Provider: "alpha", Strategy: StrategyProvider}}
	second := &fakeGenerator{name: "beta", ready: true, asset: &Asset{URL: "https://b/v.mp4", Provider: "beta", Strategy: StrategyProvider}}

	chain := NewChain(ChainOptions{Adapters: []Generator{first, second}})

	asset, err := chain.Generate(context.Background(), GenerateRequest{RequestID: "req-1"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if asset.Provider != "alpha" {
		t.Fatalf("provider = %q, want alpha", asset.Provider)
	}
	if second.calls != 0 {
		t.Fatalf("second adapter was attempted %d times, want 0", second.calls)
	}
}

func TestChainSkipsAdaptersWithoutCredentials(t *testing.T) {
	skipped := &fakeGenerator{name: "alpha", ready: false, err: ErrNoCredentials}
	used := &fakeGenerator{name: "beta", ready: true, asset: &Asset{URL: "https://b/v.mp4", Provider: "beta", Strategy: StrategyProvider}}

	var fallbacks []string
	chain := NewChain(ChainOptions{
		Adapters: []Generator{skipped, used},
		OnFallback: func(provider, reason string, err error) {
			fallbacks = append(fallbacks, provider+":"+reason)
		},
	})

	asset, err := chain.Generate(context.Background(), GenerateRequest{RequestID: "req-2"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if asset.Provider != "beta" {
		t.Fatalf("provider = %q, want beta", asset.Provider)
	}
	if skipped.calls != 0 {
		t.Fatalf("unready adapter was attempted %d times, want 0", skipped.calls)
	}
	if len(fallbacks) != 0 {
		t.Fatalf("fallbacks = %v, want none for a skipped adapter", fallbacks)
	}
}

func TestChainDegradesToSlideshow(t *testing.T) {
	failing := &fakeGenerator{name: "alpha", ready: true, err: &JobFailedError{Provider: "alpha", Message: "render rejected"}}
	composer := &fakeComposer{asset: &Asset{StorageKey: "videos/slideshow.json", Strategy: StrategySlideshow}}

	var fallbacks []string
	chain := NewChain(ChainOptions{
		Adapters: []Generator{failing},
		Composer: composer,
		OnFallback: func(provider, reason string, err error) {
			fallbacks = append(fallbacks, provider+":"+reason)
		},
	})

	asset, err := chain.Generate(context.Background(), GenerateRequest{RequestID: "req-3", Theme: "scifi"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if asset.Strategy != StrategySlideshow {
		t.Fatalf("strategy = %q, want %q", asset.Strategy, StrategySlideshow)
	}
	if len(fallbacks) != 1 || fallbacks[0] != "alpha:job_failed" {
		t.Fatalf("fallbacks = %v, want [alpha:job_failed]", fallbacks)
	}
}

func TestChainExhaustionFallsBackToStock(t *testing.T) {
	failing := &fakeGenerator{name: "alpha", ready: true, err: ErrPollTimeout}
	composer := &fakeComposer{err: errors.New("no images on disk")}

	chain := NewChain(ChainOptions{
		Adapters: []Generator{failing},
		Composer: composer,
	})

	req := GenerateRequest{RequestID: "req-4", Theme: "nature"}
	asset, err := chain.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if asset.Strategy != StrategyStock {
		t.Fatalf("strategy = %q, want %q", asset.Strategy, StrategyStock)
	}
	if asset.URL == "" {
		t.Fatal("stock asset has no URL")
	}

	// Same request must pick the same clip.
	again, err := chain.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate again: %v", err)
	}
	if again.URL != asset.URL {
		t.Fatalf("stock pick not deterministic: %q vs %q", again.URL, asset.URL)
	}
}

func TestChainStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancelling := &fakeGenerator{name: "alpha", ready: true, err: context.Canceled}
	untouched := &fakeGenerator{name: "beta", ready: true, asset: &Asset{URL: "https://b/v.mp4"}}

	chain := NewChain(ChainOptions{Adapters: []Generator{cancelling, untouched}})

	cancel()
	if _, err := chain.Generate(ctx, GenerateRequest{RequestID: "req-5"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if untouched.calls != 0 {
		t.Fatalf("chain kept going after cancellation, beta called %d times", untouched.calls)
	}
}

func TestFallbackReason(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, "empty_result"},
		{ErrNoCredentials, "no_credentials"},
		{ErrPollTimeout, "poll_timeout"},
		{&JobFailedError{Provider: "alpha"}, "job_failed"},
		{&apiStatusError{provider: "alpha", status: 502}, "http_status"},
		{errors.New("dial tcp: connection refused"), "http_request"},
	}
	for _, tc := range cases {
		if got := fallbackReason(tc.err); got != tc.want {
			t.Errorf("fallbackReason(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestStockLibraryUnknownThemeUsesGenericPool(t *testing.T) {
	lib := DefaultStockLibrary()
	asset := lib.Pick(GenerateRequest{RequestID: "req-6", Theme: "opera"})
	if asset.Provider != "stock" || asset.Strategy != StrategyStock {
		t.Fatalf("unexpected asset %+v", asset)
	}
	if asset.URL == "" {
		t.Fatal("generic pool returned empty URL")
	}
}
