// Package models defines the core domain models for deterministic multi-step
// workflow orchestration: retry policies, validation gates, step and workflow
// definitions, run results and audit logs.
package models

import (
	"context"
	"log/slog"
	"time"
)

// WorkflowStatus represents the lifecycle state of a workflow run.
type WorkflowStatus string

const (
	WorkflowStatusPending   WorkflowStatus = "pending"
	WorkflowStatusRunning   WorkflowStatus = "running"
	WorkflowStatusSuccess   WorkflowStatus = "success"
	WorkflowStatusFailed    WorkflowStatus = "failed"
	WorkflowStatusCancelled WorkflowStatus = "cancelled"
)

// InitContextFunc computes the initial shared context from the run input
// before any step executes.
type InitContextFunc func(ctx context.Context, input any) (map[string]any, error)

// TransformFunc maps the completed step results to the workflow's declared
// output.
type TransformFunc func(ctx context.Context, results map[string]*StepResult) (any, error)

// Hooks bracket workflow and step execution. All hooks are awaited before the
// runner proceeds; a hook error is logged and swallowed, it never aborts the
// run.
type Hooks struct {
	OnWorkflowStart     func(ctx context.Context, workflowID string, initial map[string]any) error
	OnWorkflowEnd       func(ctx context.Context, log *WorkflowLog) error
	OnStepStart         func(ctx context.Context, log *StepLog) error
	OnStepEnd           func(ctx context.Context, log *StepLog) error
	OnRetry             func(ctx context.Context, stepID string, attempt int, err error) error
	OnValidationFailure func(ctx context.Context, stepID string, result *ValidationResult) error
}

// WorkflowDefinition is a declarative, immutable pipeline. Build one with the
// builder or a pattern factory; the same definition may be run concurrently
// by multiple runners because each run gets fresh per-run state.
type WorkflowDefinition struct {
	ID              string `validate:"required"`
	Name            string `validate:"required,min=3"`
	Description     string
	Version         string
	Steps           []StepDefinition `validate:"min=1"`
	DefaultRetry    *RetryConfig
	Timeout         time.Duration // Budget for the whole run, zero means unbounded
	AbortOnError    bool          // When false, failed steps record and the run proceeds
	InitContext     InitContextFunc
	TransformOutput TransformFunc
	Hooks           *Hooks
}

// Step returns the step definition with the given id.
func (d *WorkflowDefinition) Step(id string) (StepDefinition, bool) {
	for _, step := range d.Steps {
		if step.ID == id {
			return step, true
		}
	}

	return StepDefinition{}, false
}

// WorkflowResult is the outcome of one run of a definition.
type WorkflowResult struct {
	WorkflowID string                 `json:"workflow_id"`
	RunID      string                 `json:"run_id"`
	Status     WorkflowStatus         `json:"status"`
	Output     any                    `json:"output,omitempty"`
	Outputs    map[string]any         `json:"outputs"`
	Errors     []StepError            `json:"errors,omitempty"`
	Results    map[string]*StepResult `json:"-"`
	Log        *WorkflowLog           `json:"log"`
}

// RunOptions carries the per-run knobs accepted from the owning service.
type RunOptions struct {
	// Context seeds the run's shared context before InitContext runs.
	Context map[string]any

	// Retry overrides the definition's default retry policy for this run.
	Retry *RetryConfig

	// Timeout overrides the definition's run budget for this run.
	Timeout time.Duration

	Logger *slog.Logger

	// PersistLogs writes the run's WorkflowLog through the runner's store at
	// run end.
	PersistLogs bool

	// LogDir, when set, persists this run's log to a file store rooted
	// there instead of the runner's configured store.
	LogDir string
}
