package transport

import (
	"context"
	"fmt"
	"time"
)

// ImportAsync runs job on its own goroutine and delivers exactly one outcome
// on the returned channel. When ctx ends or budget (if positive) elapses
// first, the outcome is a canceled failure and job's late result is dropped.
// job receives a context that is canceled at that point so readers can stop.
func ImportAsync(ctx context.Context, budget time.Duration, job func(context.Context) ImportOutcome) <-chan ImportOutcome {
	out := make(chan ImportOutcome, 1)

	var (
		jobCtx context.Context
		cancel context.CancelFunc
	)
	if budget > 0 {
		jobCtx, cancel = context.WithTimeout(ctx, budget)
	} else {
		jobCtx, cancel = context.WithCancel(ctx)
	}

	done := make(chan ImportOutcome, 1)
	go func() {
		done <- job(jobCtx)
	}()

	go func() {
		defer cancel()
		select {
		case outcome := <-done:
			out <- outcome
		case <-jobCtx.Done():
			err := fmt.Errorf("%w: %w", ErrImportCanceled, jobCtx.Err())
			out <- ImportOutcome{Result: ResultFromError(err), Err: err}
		}
		close(out)
	}()

	return out
}
