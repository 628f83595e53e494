package models

import (
	"context"
	"log/slog"
	"time"
)

// StepFunc is the unit of work a step executes. The engine owns retries,
// timeouts and validation around it; the function itself only needs to honor
// ctx if it wants to be cancellable mid-flight.
type StepFunc func(ctx context.Context, sc *StepContext) (any, error)

// ConditionFunc decides whether a step runs at all. A false result skips the
// step without counting it as a failure.
type ConditionFunc func(ctx context.Context, sc *StepContext) (bool, error)

// StepStatus defines the possible states of a step execution.
type StepStatus string

const (
	StepStatusPending StepStatus = "pending"
	StepStatusRunning StepStatus = "running"
	StepStatusSuccess StepStatus = "success"
	StepStatusFailed  StepStatus = "failed"
	StepStatusSkipped StepStatus = "skipped"
)

// StepDefinition describes one unit of work inside a workflow.
type StepDefinition struct {
	ID                string   `validate:"required"`
	Name              string   `validate:"required"`
	Execute           StepFunc `validate:"required"`
	Retry             *RetryConfig      // Overrides the workflow default field-wise
	Validation        *ValidationConfig // Output gate, run after a successful execution
	Timeout           time.Duration     // Wall-clock budget for the step, retries included
	ContinueOnFailure bool
	DependsOn         []string // Must reference earlier steps; checked at build time
	Condition         ConditionFunc
}

// StepContext is the runtime information handed to Execute, Condition and the
// hooks. Everything except Shared is read-only from the step's point of view;
// Shared is the run-scoped mutable bag, written by one step at a time.
type StepContext struct {
	WorkflowID  string
	RunID       string
	StepID      string
	Attempt     int
	MaxAttempts int
	Input       any
	LastOutput  any // Output of the nearest earlier successful step, nil before the first
	Previous    map[string]*StepResult
	Shared      map[string]any
	Logger      *slog.Logger
}

// PreviousOutput returns the output of an earlier successful step, or nil.
func (sc *StepContext) PreviousOutput(stepID string) any {
	if res, ok := sc.Previous[stepID]; ok && res.Status == StepStatusSuccess {
		return res.Output
	}

	return nil
}

// StepResult is the terminal outcome of one step run.
type StepResult struct {
	StepID     string            `json:"step_id"`
	Status     StepStatus        `json:"status"`
	Output     any               `json:"output,omitempty"`
	Err        error             `json:"-"`
	Error      string            `json:"error,omitempty"`
	Validation *ValidationResult `json:"validation,omitempty"`
	Duration   time.Duration     `json:"duration"`
	Attempts   int               `json:"attempts"`
	Retryable  bool              `json:"retryable"`
}
