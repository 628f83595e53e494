package models

import "time"

// RetryConfig describes the retry policy applied around one step execution.
// Pattern entries in RetryableErrors and NonRetryableErrors are matched by
// equality or substring against an error's code, stringified status, and
// message text.
type RetryConfig struct {
	MaxAttempts        int           `json:"max_attempts"        validate:"min=1"`
	InitialDelay       time.Duration `json:"initial_delay"`
	MaxDelay           time.Duration `json:"max_delay"`
	BackoffMultiplier  float64       `json:"backoff_multiplier"`
	JitterFactor       float64       `json:"jitter_factor"       validate:"gte=0,lte=1"`
	RetryableErrors    []string      `json:"retryable_errors,omitempty"`
	NonRetryableErrors []string      `json:"non_retryable_errors,omitempty"`
}

// DefaultRetryConfig returns the library-level retry policy: three attempts
// with exponential backoff, a 10% jitter, and the usual transient/permanent
// signal lists.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		InitialDelay:      time.Second,
		MaxDelay:          30 * time.Second,
		BackoffMultiplier: 2,
		JitterFactor:      0.1,
		RetryableErrors: []string{
			"rate_limit", "timeout", "connection_reset", "overloaded",
			"408", "429", "503",
		},
		NonRetryableErrors: []string{
			"auth", "billing", "invalid_request",
			"401", "402", "403",
		},
	}
}

// MergeRetryConfig layers an override on top of a base policy. Zero-valued
// override fields inherit from the base, so a step can tighten MaxAttempts
// without restating the delay schedule. JitterFactor is always taken from the
// override: an explicit zero there means deterministic backoff.
func MergeRetryConfig(base RetryConfig, override *RetryConfig) RetryConfig {
	if override == nil {
		return base
	}

	merged := base

	if override.MaxAttempts > 0 {
		merged.MaxAttempts = override.MaxAttempts
	}

	if override.InitialDelay > 0 {
		merged.InitialDelay = override.InitialDelay
	}

	if override.MaxDelay > 0 {
		merged.MaxDelay = override.MaxDelay
	}

	if override.BackoffMultiplier > 0 {
		merged.BackoffMultiplier = override.BackoffMultiplier
	}

	merged.JitterFactor = override.JitterFactor

	if override.RetryableErrors != nil {
		merged.RetryableErrors = override.RetryableErrors
	}

	if override.NonRetryableErrors != nil {
		merged.NonRetryableErrors = override.NonRetryableErrors
	}

	return merged
}
