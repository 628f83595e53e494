package validation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/adwkit/adw/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepOutput_UnconfiguredAlwaysValid(t *testing.T) {
	result := StepOutput(context.Background(), nil, &models.ValidationConfig{})

	assert.True(t, result.Valid)
}

func TestStepOutput_CustomValidator(t *testing.T) {
	positive := func(_ context.Context, output any) (*models.ValidationResult, error) {
		if n, ok := output.(int); ok && n > 0 {
			return models.ValidResult(), nil
		}

		return models.InvalidResult("output must be positive"), nil
	}

	cfg := &models.ValidationConfig{Required: true, Validator: positive}

	assert.True(t, StepOutput(context.Background(), 5, cfg).Valid)

	result := StepOutput(context.Background(), -5, cfg)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors, "output must be positive")
}

func TestStepOutput_ValidatorErrorSurfaced(t *testing.T) {
	cfg := &models.ValidationConfig{
		Required: true,
		Validator: func(_ context.Context, _ any) (*models.ValidationResult, error) {
			return nil, errors.New("boom")
		},
	}

	result := StepOutput(context.Background(), "x", cfg)

	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "custom validator error: boom")
}

func TestStepOutput_ValidatorPanicRecovered(t *testing.T) {
	cfg := &models.ValidationConfig{
		Required: true,
		Validator: func(_ context.Context, _ any) (*models.ValidationResult, error) {
			panic("validator bug")
		},
	}

	result := StepOutput(context.Background(), "x", cfg)

	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors[0], "custom validator error: validator bug")
}

func TestStepOutput_ValidatorLosesTimeoutRace(t *testing.T) {
	cfg := &models.ValidationConfig{
		Required: true,
		Timeout:  20 * time.Millisecond,
		Validator: func(_ context.Context, _ any) (*models.ValidationResult, error) {
			time.Sleep(time.Second)

			return models.ValidResult(), nil
		},
	}

	started := time.Now()
	result := StepOutput(context.Background(), "x", cfg)

	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors[0], "timed out")
	assert.Less(t, time.Since(started), 500*time.Millisecond)
}

func TestStepOutput_SchemaAndValidatorResultsCombined(t *testing.T) {
	cfg := &models.ValidationConfig{
		Required: true,
		Validator: func(_ context.Context, _ any) (*models.ValidationResult, error) {
			return models.InvalidResult("validator said no"), nil
		},
		Schema: &models.Schema{Type: "object", Required: []string{"name"}},
	}

	result := StepOutput(context.Background(), map[string]any{}, cfg)

	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "validator said no")
	assert.Contains(t, result.Errors[1], `"name"`)
}

func TestStepOutput_SchemaOnly(t *testing.T) {
	cfg := &models.ValidationConfig{
		Schema: &models.Schema{Type: "string"},
	}

	assert.True(t, StepOutput(context.Background(), "ok", cfg).Valid)
	assert.False(t, StepOutput(context.Background(), 42, cfg).Valid)
}

func TestStepOutput_InvalidWithoutErrorsGetsGenericMessage(t *testing.T) {
	cfg := &models.ValidationConfig{
		Required: true,
		Validator: func(_ context.Context, _ any) (*models.ValidationResult, error) {
			return &models.ValidationResult{Valid: false}, nil
		},
	}

	result := StepOutput(context.Background(), "x", cfg)

	assert.False(t, result.Valid)
	assert.NotEmpty(t, result.Errors, "errors must be non-empty whenever invalid")
}
