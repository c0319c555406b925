package video

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPollUntilStopsWhenDone(t *testing.T) {
	calls := 0
	err := pollUntil(context.Background(), time.Millisecond, time.Second, func(ctx context.Context) (bool, error) {
		calls++
		return calls >= 3, nil
	})
	if err != nil {
		t.Fatalf("pollUntil returned error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestPollUntilPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	err := pollUntil(context.Background(), time.Millisecond, time.Second, func(ctx context.Context) (bool, error) {
		return false, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("pollUntil error = %v, want %v", err, boom)
	}
}

func TestPollUntilDeadline(t *testing.T) {
	err := pollUntil(context.Background(), time.Millisecond, 10*time.Millisecond, func(ctx context.Context) (bool, error) {
		return false, nil
	})
	if !errors.Is(err, ErrPollTimeout) {
		t.Fatalf("pollUntil error = %v, want ErrPollTimeout", err)
	}
}

func TestPollUntilRespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := pollUntil(ctx, time.Millisecond, time.Second, func(ctx context.Context) (bool, error) {
		return false, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("pollUntil error = %v, want context.Canceled", err)
	}
}
