package workflow

import (
	"context"
	"testing"
	"time"

	"github.com/adwkit/adw/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopStep(_ context.Context, _ *models.StepContext) (any, error) {
	return nil, nil
}

func TestBuild_AssemblesDefinition(t *testing.T) {
	retry := &models.RetryConfig{MaxAttempts: 2}
	hooks := &models.Hooks{}

	def, err := NewBuilder("pipeline", "Build Pipeline").
		Describe("builds and ships").
		SetVersion("0.3.1").
		WithRetry(retry).
		WithTimeout(time.Minute).
		WithHooks(hooks).
		AddStep("build", "Build", noopStep).
		AddStep("ship", "", noopStep).
		Build()
	require.NoError(t, err)

	assert.Equal(t, "pipeline", def.ID)
	assert.Equal(t, "Build Pipeline", def.Name)
	assert.Equal(t, "builds and ships", def.Description)
	assert.Equal(t, "0.3.1", def.Version)
	assert.Same(t, retry, def.DefaultRetry)
	assert.Equal(t, time.Minute, def.Timeout)
	assert.Same(t, hooks, def.Hooks)
	assert.True(t, def.AbortOnError, "halting on failure is the default")

	require.Len(t, def.Steps, 2)
	assert.Equal(t, "ship", def.Steps[1].Name, "empty step name defaults to the id")
}

func TestBuild_RejectsEmptyWorkflow(t *testing.T) {
	_, err := NewBuilder("empty", "Empty Workflow").Build()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid workflow definition")
}

func TestBuild_RejectsMissingIdentity(t *testing.T) {
	_, err := NewBuilder("", "Nameless").AddStep("a", "A", noopStep).Build()
	require.Error(t, err)

	_, err = NewBuilder("short-name", "ab").AddStep("a", "A", noopStep).Build()
	require.Error(t, err)
}

func TestBuild_RejectsStepWithoutIDOrExecute(t *testing.T) {
	_, err := NewBuilder("wf", "Workflow").AddStep("", "Anonymous", noopStep).Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step id is required")

	_, err = NewBuilder("wf", "Workflow").AddStep("hollow", "Hollow", nil).Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no execute function")
}

func TestBuild_FirstErrorSticks(t *testing.T) {
	_, err := NewBuilder("wf", "Workflow").
		AddStep("", "Broken", noopStep).
		AddStep("fine", "Fine", noopStep).
		Build()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "step id is required")
}

func TestBuild_RejectsDuplicateStepIDs(t *testing.T) {
	_, err := NewBuilder("wf", "Workflow").
		AddStep("twice", "Once", noopStep).
		AddStep("twice", "Again", noopStep).
		Build()

	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate step id "twice"`)
}

func TestBuild_RejectsForwardAndUnknownDependencies(t *testing.T) {
	_, err := NewBuilder("wf", "Workflow").
		AddStepDefinition(models.StepDefinition{
			ID:        "early",
			Execute:   noopStep,
			DependsOn: []string{"late"},
		}).
		AddStep("late", "Late", noopStep).
		Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `depends on "late"`)

	_, err = NewBuilder("wf", "Workflow").
		AddStepDefinition(models.StepDefinition{
			ID:        "lonely",
			Execute:   noopStep,
			DependsOn: []string{"ghost"},
		}).
		Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `depends on "ghost"`)
}

func TestBuild_AcceptsBackwardDependencies(t *testing.T) {
	def, err := NewBuilder("wf", "Workflow").
		AddStep("fetch", "Fetch", noopStep).
		AddStepDefinition(models.StepDefinition{
			ID:        "process",
			Execute:   noopStep,
			DependsOn: []string{"fetch"},
		}).
		Build()

	require.NoError(t, err)
	assert.Len(t, def.Steps, 2)
}

func TestBuild_ReturnsIndependentCopy(t *testing.T) {
	b := NewBuilder("wf", "Workflow").AddStep("a", "A", noopStep)

	first, err := b.Build()
	require.NoError(t, err)

	b.AddStep("b", "B", noopStep)

	second, err := b.Build()
	require.NoError(t, err)

	assert.Len(t, first.Steps, 1, "a built definition does not see later mutations")
	assert.Len(t, second.Steps, 2)
}

func TestAddValidation_GatesThePreviousOutput(t *testing.T) {
	def, err := NewBuilder("gated", "Gated Workflow").
		AddStep("produce", "Produce", func(_ context.Context, _ *models.StepContext) (any, error) {
			return 42, nil
		}).
		AddValidation("check", "Check", func(_ context.Context, output any) (*models.ValidationResult, error) {
			if output == 42 {
				return models.ValidResult(), nil
			}

			return models.InvalidResult("unexpected output"), nil
		}).
		Build()
	require.NoError(t, err)

	check, ok := def.Step("check")
	require.True(t, ok)
	require.NotNil(t, check.Validation)
	assert.True(t, check.Validation.Required)

	// The gate step passes the chained output through untouched.
	out, err := check.Execute(context.Background(), &models.StepContext{LastOutput: 42})
	require.NoError(t, err)
	assert.Equal(t, 42, out)

	// Before any step has produced output, the run input is chained instead.
	out, err = check.Execute(context.Background(), &models.StepContext{Input: "raw"})
	require.NoError(t, err)
	assert.Equal(t, "raw", out)
}

func TestAddConditionalStep_CarriesCondition(t *testing.T) {
	def, err := NewBuilder("wf", "Workflow").
		AddConditionalStep("gated", "Gated",
			func(_ context.Context, _ *models.StepContext) (bool, error) { return true, nil },
			noopStep).
		Build()
	require.NoError(t, err)

	step, ok := def.Step("gated")
	require.True(t, ok)
	require.NotNil(t, step.Condition)

	proceed, err := step.Condition(context.Background(), &models.StepContext{})
	require.NoError(t, err)
	assert.True(t, proceed)
}
