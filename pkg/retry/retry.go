package retry

import (
	"context"
	"errors"
	"time"

	"github.com/adwkit/adw/pkg/models"
)

// Operation is one fallible unit of work driven by the executor.
type Operation func(ctx context.Context) (any, error)

// OnRetryFunc is invoked after a retryable failure, before the backoff sleep.
type OnRetryFunc func(attempt int, err error, delay time.Duration)

// Outcome is the terminal result of a retry loop: success, retries
// exhausted, a non-retryable failure, or an abort.
type Outcome struct {
	Success   bool
	Result    any
	Attempts  int
	Err       error
	Retryable bool
}

// Do runs op under cfg until it succeeds, the attempt budget is exhausted, a
// non-retryable error surfaces, or ctx is cancelled. A context that is done
// before the first attempt returns an aborted outcome with zero attempts and
// op is never invoked.
func Do(ctx context.Context, cfg models.RetryConfig, op Operation, onRetry OnRetryFunc) Outcome {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return Outcome{
				Attempts:  attempt - 1,
				Err:       abortCause(ctx),
				Retryable: false,
			}
		}

		result, err := op(ctx)
		if err == nil {
			return Outcome{Success: true, Result: result, Attempts: attempt}
		}

		// A cancellation or an elapsed budget surfaced through the
		// operation is terminal regardless of the retry budget.
		if errors.Is(err, models.ErrAborted) || errors.Is(err, models.ErrStepTimeout) ||
			errors.Is(err, models.ErrWorkflowTimeout) ||
			errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			if cause := abortCause(ctx); ctx.Err() != nil {
				err = cause
			}

			return Outcome{Attempts: attempt, Err: err, Retryable: false}
		}

		retryable := Retryable(err, cfg)
		if attempt >= cfg.MaxAttempts || !retryable {
			return Outcome{Attempts: attempt, Err: err, Retryable: retryable}
		}

		delay := Delay(attempt, cfg)
		if onRetry != nil {
			onRetry(attempt, err, delay)
		}

		if sleepErr := Sleep(ctx, delay); sleepErr != nil {
			return Outcome{Attempts: attempt, Err: sleepErr, Retryable: false}
		}
	}
}
