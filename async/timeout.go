package async

import (
	"context"
	"errors"
	"time"
)

// ErrTimeout is returned by WithTimeout when the wrapped work missed its
// deadline.
var ErrTimeout = errors.New("deadline exceeded for wrapped work")

// WithTimeout races work against a deadline. The work receives a derived
// context that is cancelled on expiry; cancellation is cooperative, so work
// that ignores its context keeps running in the background after the
// wrapper has returned ErrTimeout.
//
// If the parent context ends first, its error is returned instead of
// ErrTimeout.
func WithTimeout(ctx context.Context, d time.Duration, work func(ctx context.Context) error) error {
	wctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- work(wctx)
	}()

	select {
	case err := <-done:
		return err
	case <-wctx.Done():
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrTimeout
	}
}
