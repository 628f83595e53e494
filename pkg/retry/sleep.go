package retry

import (
	"context"
	"time"

	"github.com/adwkit/adw/pkg/models"
)

// Sleep waits for d, honoring cancellation. A non-positive duration returns
// immediately without starting a timer; a context that is already done fails
// fast the same way. Cancellation mid-wait stops the timer.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	if err := ctx.Err(); err != nil {
		return abortCause(ctx)
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return abortCause(ctx)
	}
}

// abortCause maps a done context to the engine's error taxonomy: an explicit
// cancel cause wins, a deadline becomes a timeout, everything else is an
// abort.
func abortCause(ctx context.Context) error {
	if cause := context.Cause(ctx); cause != nil && cause != ctx.Err() {
		return cause
	}

	if ctx.Err() == context.DeadlineExceeded {
		return models.ErrStepTimeout
	}

	return models.ErrAborted
}
