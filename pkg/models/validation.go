package models

import (
	"context"
	"time"
)

// ValidatorFunc checks a step's output. Implementations may block; the
// validation engine bounds them with the configured timeout.
type ValidatorFunc func(ctx context.Context, output any) (*ValidationResult, error)

// ValidationConfig gates a step's output after a successful execution.
// With Required false and neither Validator nor Schema set, every output
// passes.
type ValidationConfig struct {
	Required  bool
	Validator ValidatorFunc
	Schema    *Schema
	Timeout   time.Duration
}

// Configured reports whether any validation is actually wired up.
func (c *ValidationConfig) Configured() bool {
	return c != nil && (c.Required || c.Validator != nil || c.Schema != nil)
}

// ValidationResult is the outcome of a validation gate. Errors is non-empty
// exactly when Valid is false; Warnings never affect validity.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// ValidResult returns a passing result.
func ValidResult() *ValidationResult {
	return &ValidationResult{Valid: true}
}

// InvalidResult returns a failing result carrying the given errors.
func InvalidResult(errs ...string) *ValidationResult {
	return &ValidationResult{Valid: false, Errors: errs}
}

// Merge combines two results: validity is ANDed, errors and warnings are
// concatenated.
func (r *ValidationResult) Merge(other *ValidationResult) *ValidationResult {
	if other == nil {
		return r
	}

	return &ValidationResult{
		Valid:    r.Valid && other.Valid,
		Errors:   append(append([]string{}, r.Errors...), other.Errors...),
		Warnings: append(append([]string{}, r.Warnings...), other.Warnings...),
	}
}

// Schema is the structural validation subset understood by the engine.
// It deliberately diverges from draft JSON Schema in two places: Nullable
// lets null pass regardless of Type, and AdditionalProperties false surfaces
// extra keys as warnings rather than errors.
type Schema struct {
	Type        string             `json:"type,omitempty"`
	Nullable    bool               `json:"nullable,omitempty"`
	Description string             `json:"description,omitempty"`
	Enum        []any              `json:"enum,omitempty"`
	Pattern     string             `json:"pattern,omitempty"`
	MinLength   *int               `json:"minLength,omitempty"`
	MaxLength   *int               `json:"maxLength,omitempty"`
	Minimum     *float64           `json:"minimum,omitempty"`
	Maximum     *float64           `json:"maximum,omitempty"`
	MinItems    *int               `json:"minItems,omitempty"`
	MaxItems    *int               `json:"maxItems,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`

	// AdditionalProperties: nil or true allows extra keys silently; false
	// reports each extra key as a warning.
	AdditionalProperties *bool `json:"additionalProperties,omitempty"`
}
