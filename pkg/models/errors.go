package models

import (
	"errors"
	"fmt"
)

// Kind classifies a workflow error for retry and reporting decisions.
type Kind string

const (
	KindTransient  Kind = "transient"  // Rate limits, timeouts, connection resets
	KindPermanent  Kind = "permanent"  // Auth, billing, anything a retry cannot fix
	KindValidation Kind = "validation" // Step output failed its validation gate
	KindTimeout    Kind = "timeout"    // Step or validator budget exceeded
	KindAbort      Kind = "abort"      // Cooperative cancellation
	KindUnknown    Kind = "unknown"    // Unclassified; treated as retryable
)

// Sentinel errors shared across the engine.
var (
	// ErrAborted indicates the run was cancelled cooperatively.
	ErrAborted = errors.New("aborted")

	// ErrStepTimeout indicates a step exceeded its wall-clock budget.
	ErrStepTimeout = errors.New("step timed out")

	// ErrWorkflowTimeout indicates the whole run exceeded its budget.
	ErrWorkflowTimeout = errors.New("workflow timed out")
)

// FlowError is a structured error carrying the classification signals the
// retry layer inspects: a machine code, an HTTP-ish status, and a message.
type FlowError struct {
	Kind    Kind
	Code    string
	Status  int
	Message string
	Err     error
}

func (e *FlowError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	if e.Err != nil {
		return e.Err.Error()
	}

	return string(e.Kind)
}

func (e *FlowError) Unwrap() error {
	return e.Err
}

// NewTransientError builds a retryable error with the given code.
func NewTransientError(code, message string) *FlowError {
	return &FlowError{Kind: KindTransient, Code: code, Message: message}
}

// NewPermanentError builds a non-retryable error with the given code.
func NewPermanentError(code, message string) *FlowError {
	return &FlowError{Kind: KindPermanent, Code: code, Message: message}
}

// NewStatusError builds an error from an upstream status code.
func NewStatusError(status int, message string) *FlowError {
	return &FlowError{Kind: KindUnknown, Status: status, Message: message}
}

// NewAbortError wraps ErrAborted with run context.
func NewAbortError(message string) *FlowError {
	return &FlowError{Kind: KindAbort, Message: message, Err: ErrAborted}
}

// StepError pairs a failed step with its terminal error for the run result.
type StepError struct {
	StepID  string `json:"step_id"`
	Message string `json:"error"`
	Err     error  `json:"-"`
}

func (e StepError) String() string {
	return fmt.Sprintf("step %s: %s", e.StepID, e.Message)
}
