package browser

import (
	"context"
	"time"
)

// Watch blocks until its condition holds or ctx is done.
type Watch func(ctx context.Context) error

// RaceFallback is returned by Race when the fallback delay elapses before
// any watch resolves.
const RaceFallback = -1

// Race runs every watch concurrently and returns the index of the first one
// to resolve without error; the rest are cancelled. If none resolves within
// fallback, RaceFallback is returned. None of the individual watches is
// reliable on its own, so losing the race is not an error.
func Race(ctx context.Context, fallback time.Duration, watches ...Watch) int {
	rctx, cancel := context.WithTimeout(ctx, fallback)
	defer cancel()

	winner := make(chan int, len(watches))
	for i, w := range watches {
		go func(i int, w Watch) {
			if err := w(rctx); err == nil {
				winner <- i
			}
		}(i, w)
	}

	select {
	case i := <-winner:
		return i
	case <-rctx.Done():
		return RaceFallback
	}
}

// PollUntil adapts a cheap boolean probe into a Watch by polling it at the
// given interval.
func PollUntil(interval time.Duration, probe func(ctx context.Context) bool) Watch {
	return func(ctx context.Context) error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			if probe(ctx) {
				return nil
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		}
	}
}
