package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/adwkit/adw/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetryConfig(maxAttempts int) models.RetryConfig {
	return models.RetryConfig{
		MaxAttempts:       maxAttempts,
		InitialDelay:      time.Millisecond,
		MaxDelay:          5 * time.Millisecond,
		BackoffMultiplier: 2,
		JitterFactor:      0,
	}
}

func TestDo_SucceedsAfterOneFailure(t *testing.T) {
	calls := 0

	outcome := Do(context.Background(), fastRetryConfig(3), func(_ context.Context) (any, error) {
		calls++
		if calls == 1 {
			return nil, models.NewTransientError("rate_limit", "busy")
		}

		return "done", nil
	}, nil)

	assert.True(t, outcome.Success)
	assert.Equal(t, 2, outcome.Attempts)
	assert.Equal(t, "done", outcome.Result)
	assert.NoError(t, outcome.Err)
}

func TestDo_ExhaustsRetryBudget(t *testing.T) {
	calls := 0

	outcome := Do(context.Background(), fastRetryConfig(3), func(_ context.Context) (any, error) {
		calls++

		return nil, errors.New("transient glitch")
	}, nil)

	assert.False(t, outcome.Success)
	assert.Equal(t, 3, outcome.Attempts)
	assert.Equal(t, 3, calls)
	assert.True(t, outcome.Retryable)
}

func TestDo_NonRetryableErrorStopsImmediately(t *testing.T) {
	cfg := fastRetryConfig(3)
	cfg.NonRetryableErrors = []string{"auth"}

	calls := 0

	outcome := Do(context.Background(), cfg, func(_ context.Context) (any, error) {
		calls++

		return nil, models.NewPermanentError("auth", "invalid key")
	}, nil)

	assert.False(t, outcome.Success)
	assert.Equal(t, 1, outcome.Attempts)
	assert.Equal(t, 1, calls)
	assert.False(t, outcome.Retryable)
}

func TestDo_CancelledBeforeStartNeverInvokesOperation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	invoked := false

	outcome := Do(ctx, fastRetryConfig(3), func(_ context.Context) (any, error) {
		invoked = true

		return nil, nil
	}, nil)

	assert.False(t, outcome.Success)
	assert.False(t, invoked)
	assert.Zero(t, outcome.Attempts)
	assert.False(t, outcome.Retryable)
	assert.ErrorIs(t, outcome.Err, models.ErrAborted)
}

func TestDo_CancelledDuringBackoff(t *testing.T) {
	cfg := fastRetryConfig(3)
	cfg.InitialDelay = time.Hour // Force the cancellation to land mid-sleep

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	outcome := Do(ctx, cfg, func(_ context.Context) (any, error) {
		return nil, errors.New("transient glitch")
	}, nil)

	assert.False(t, outcome.Success)
	assert.Equal(t, 1, outcome.Attempts)
	assert.ErrorIs(t, outcome.Err, models.ErrAborted)
}

func TestDo_OnRetryCallbackObservesEachRetry(t *testing.T) {
	type retryEvent struct {
		attempt int
		delay   time.Duration
	}

	var events []retryEvent

	outcome := Do(context.Background(), fastRetryConfig(3), func(_ context.Context) (any, error) {
		return nil, errors.New("transient glitch")
	}, func(attempt int, err error, delay time.Duration) {
		require.Error(t, err)
		events = append(events, retryEvent{attempt: attempt, delay: delay})
	})

	assert.False(t, outcome.Success)
	require.Len(t, events, 2, "two retries for three attempts")
	assert.Equal(t, 1, events[0].attempt)
	assert.Equal(t, 2, events[1].attempt)
	assert.Equal(t, time.Millisecond, events[0].delay)
	assert.Equal(t, 2*time.Millisecond, events[1].delay)
}

func TestDo_ZeroMaxAttemptsRunsOnce(t *testing.T) {
	calls := 0

	outcome := Do(context.Background(), models.RetryConfig{}, func(_ context.Context) (any, error) {
		calls++

		return nil, errors.New("nope")
	}, nil)

	assert.False(t, outcome.Success)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, outcome.Attempts)
}
