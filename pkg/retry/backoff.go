// Package retry implements the retry building blocks of the engine: the
// exponential backoff calculator, the fail-open error classifier, the
// cancellable sleep, and the retry executor composing the three around one
// fallible operation.
package retry

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/adwkit/adw/pkg/models"
)

// Delay computes the backoff delay before the given attempt (1-based):
// exponential growth from InitialDelay, capped at MaxDelay, then perturbed by
// a uniform jitter of ±JitterFactor. With JitterFactor zero the result is
// fully deterministic. Never negative.
func Delay(attempt int, cfg models.RetryConfig) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	base := float64(cfg.InitialDelay) * math.Pow(cfg.BackoffMultiplier, float64(attempt-1))
	if cfg.MaxDelay > 0 && base > float64(cfg.MaxDelay) {
		base = float64(cfg.MaxDelay)
	}

	if cfg.JitterFactor > 0 {
		base *= 1 + cfg.JitterFactor*(2*rand.Float64()-1)
	}

	if base < 0 {
		return 0
	}

	return time.Duration(base)
}
