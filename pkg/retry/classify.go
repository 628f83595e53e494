package retry

import (
	"errors"
	"strconv"
	"strings"

	"github.com/adwkit/adw/pkg/models"
)

// Retryable reports whether err should be retried under the given policy.
//
// Signals extracted from the error: the FlowError code, the stringified
// status, and the message text. NonRetryableErrors patterns are checked
// first so a specific denial always overrides a broader retry pattern; when
// neither list matches, the error is assumed transient (fail-open).
func Retryable(err error, cfg models.RetryConfig) bool {
	if err == nil {
		return false
	}

	signals := errorSignals(err)

	for _, pattern := range cfg.NonRetryableErrors {
		if matchesAny(signals, pattern) {
			return false
		}
	}

	for _, pattern := range cfg.RetryableErrors {
		if matchesAny(signals, pattern) {
			return true
		}
	}

	return true
}

// errorSignals collects the matchable facets of an error: code, stringified
// status, and message text.
func errorSignals(err error) []string {
	signals := make([]string, 0, 3)

	var flowErr *models.FlowError
	if errors.As(err, &flowErr) {
		if flowErr.Code != "" {
			signals = append(signals, flowErr.Code)
		}

		if flowErr.Status != 0 {
			signals = append(signals, strconv.Itoa(flowErr.Status))
		}
	}

	if msg := err.Error(); msg != "" {
		signals = append(signals, msg)
	}

	return signals
}

func matchesAny(signals []string, pattern string) bool {
	if pattern == "" {
		return false
	}

	for _, signal := range signals {
		if signal == pattern || strings.Contains(signal, pattern) {
			return true
		}
	}

	return false
}
