package retry

import (
	"context"
	"testing"
	"time"

	"github.com/adwkit/adw/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSleep_WaitsFullDuration(t *testing.T) {
	started := time.Now()

	err := Sleep(context.Background(), 50*time.Millisecond)

	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(started), 50*time.Millisecond)
}

func TestSleep_NonPositiveDurationReturnsImmediately(t *testing.T) {
	started := time.Now()

	require.NoError(t, Sleep(context.Background(), 0))
	require.NoError(t, Sleep(context.Background(), -time.Second))

	assert.Less(t, time.Since(started), 20*time.Millisecond)
}

func TestSleep_AlreadyCancelledContextFailsFast(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	started := time.Now()
	err := Sleep(ctx, time.Hour)

	assert.ErrorIs(t, err, models.ErrAborted)
	assert.Less(t, time.Since(started), 20*time.Millisecond)
}

func TestSleep_CancelledMidWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	started := time.Now()
	err := Sleep(ctx, time.Hour)

	assert.ErrorIs(t, err, models.ErrAborted)
	assert.Less(t, time.Since(started), time.Second)
}

func TestSleep_DeadlineSurfacesTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := Sleep(ctx, time.Hour)

	assert.ErrorIs(t, err, models.ErrStepTimeout)
}

func TestSleep_ExplicitCauseWins(t *testing.T) {
	ctx, cancel := context.WithTimeoutCause(context.Background(), 20*time.Millisecond, models.ErrWorkflowTimeout)
	defer cancel()

	err := Sleep(ctx, time.Hour)

	assert.ErrorIs(t, err, models.ErrWorkflowTimeout)
}
