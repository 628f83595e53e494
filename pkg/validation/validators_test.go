package validation

import (
	"context"
	"regexp"
	"testing"

	"github.com/adwkit/adw/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotEmpty(t *testing.T) {
	validator := NotEmpty()

	tests := []struct {
		name  string
		value any
		valid bool
	}{
		{"nil", nil, false},
		{"empty string", "", false},
		{"whitespace string", "   \t\n", false},
		{"empty array", []any{}, false},
		{"empty object", map[string]any{}, false},
		{"numeric zero is not empty", 0, true},
		{"boolean false is not empty", false, true},
		{"non-empty string", "hello", true},
		{"non-empty array", []any{1}, true},
		{"non-empty object", map[string]any{"k": "v"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := validator(context.Background(), tt.value)

			require.NoError(t, err)
			assert.Equal(t, tt.valid, result.Valid)
		})
	}
}

func TestHasFields(t *testing.T) {
	validator := HasFields("name", "version")

	result, err := validator(context.Background(), map[string]any{"name": "x", "version": "1"})
	require.NoError(t, err)
	assert.True(t, result.Valid)

	result, err = validator(context.Background(), map[string]any{"name": "x"})
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors[0], `"version"`)

	result, err = validator(context.Background(), "not an object")
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors[0], "expected an object")
}

func TestPattern(t *testing.T) {
	validator := Pattern(regexp.MustCompile(`^v\d+$`), "must look like a version tag")

	result, err := validator(context.Background(), "v12")
	require.NoError(t, err)
	assert.True(t, result.Valid)

	result, err = validator(context.Background(), "release-12")
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, "must look like a version tag", result.Errors[0])

	result, err = validator(context.Background(), 12)
	require.NoError(t, err)
	assert.False(t, result.Valid)
}

func TestPattern_DefaultMessage(t *testing.T) {
	validator := Pattern(regexp.MustCompile(`^ok$`), "")

	result, err := validator(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors[0], "does not match pattern")
}

func TestAllOf_ConcatenatesAllErrors(t *testing.T) {
	validator := AllOf(NotEmpty(), HasFields("name"))

	result, err := validator(context.Background(), map[string]any{})
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Len(t, result.Errors, 2)

	result, err = validator(context.Background(), map[string]any{"name": "x"})
	require.NoError(t, err)
	assert.True(t, result.Valid)
}

func TestAnyOf_ShortCircuitsOnFirstPass(t *testing.T) {
	secondCalled := false
	second := func(ctx context.Context, output any) (*models.ValidationResult, error) {
		secondCalled = true

		return models.ValidResult(), nil
	}

	validator := AnyOf(NotEmpty(), second)

	result, err := validator(context.Background(), "something")
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.False(t, secondCalled, "AnyOf must stop at the first passing validator")
}

func TestAnyOf_ConcatenatesErrorsWhenNonePass(t *testing.T) {
	validator := AnyOf(NotEmpty(), HasFields("name"))

	result, err := validator(context.Background(), map[string]any{})
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Len(t, result.Errors, 2)
}
