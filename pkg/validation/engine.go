// Package validation implements the output gate of the engine: custom
// validator invocation with a timeout race, a structural JSON-Schema-subset
// validator, and composable validator combinators.
package validation

import (
	"context"
	"fmt"
	"time"

	"github.com/adwkit/adw/pkg/models"
)

// StepOutput runs the configured validation gate against a step's output.
// With Required false and neither a validator nor a schema configured, every
// output passes. The custom validator runs first, raced against cfg.Timeout
// when set; a schema then ANDs its verdict onto the result, concatenating
// errors and warnings.
func StepOutput(ctx context.Context, output any, cfg *models.ValidationConfig) *models.ValidationResult {
	if !cfg.Configured() {
		return models.ValidResult()
	}

	result := models.ValidResult()

	if cfg.Validator != nil {
		result = runValidator(ctx, output, cfg)
	}

	if cfg.Schema != nil {
		result = result.Merge(JSONSchema(output, cfg.Schema))
	}

	return result
}

// runValidator invokes the custom validator on its own goroutine so a stuck
// validator loses the race against the timeout instead of wedging the step.
func runValidator(ctx context.Context, output any, cfg *models.ValidationConfig) *models.ValidationResult {
	if cfg.Timeout <= 0 {
		return invokeValidator(ctx, output, cfg.Validator)
	}

	done := make(chan *models.ValidationResult, 1)

	go func() {
		done <- invokeValidator(ctx, output, cfg.Validator)
	}()

	timer := time.NewTimer(cfg.Timeout)
	defer timer.Stop()

	select {
	case result := <-done:
		return result
	case <-timer.C:
		return models.InvalidResult(fmt.Sprintf("custom validator timed out after %s", cfg.Timeout))
	case <-ctx.Done():
		return models.InvalidResult("custom validator aborted")
	}
}

// invokeValidator absorbs validator errors and panics into a failing result
// so a misbehaving validator never crashes the run.
func invokeValidator(ctx context.Context, output any, validator models.ValidatorFunc) (result *models.ValidationResult) {
	defer func() {
		if r := recover(); r != nil {
			result = models.InvalidResult(fmt.Sprintf("custom validator error: %v", r))
		}
	}()

	res, err := validator(ctx, output)
	if err != nil {
		return models.InvalidResult(fmt.Sprintf("custom validator error: %v", err))
	}

	if res == nil {
		return models.ValidResult()
	}

	if !res.Valid && len(res.Errors) == 0 {
		res.Errors = append(res.Errors, "validation failed")
	}

	return res
}
