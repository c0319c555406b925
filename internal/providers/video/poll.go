package video

import (
	"context"
	"time"
)

// pollFunc checks an asynchronous job once. done=true stops the loop.
type pollFunc func(ctx context.Context) (done bool, err error)

// pollUntil invokes fn at a fixed interval until it reports done, returns an
// error, the deadline elapses, or the context is cancelled. The first check
// runs immediately so fast providers are not penalized by a full interval.
func pollUntil(ctx context.Context, interval, timeout time.Duration, fn pollFunc) error {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		done, err := fn(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}

		select {
		case <-ctx.Done():
			if ctx.Err() == context.DeadlineExceeded {
				return ErrPollTimeout
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
