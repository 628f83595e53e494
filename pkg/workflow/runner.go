// Package workflow implements the orchestration core: a step executor with
// retry, timeout and validation handling, a sequential runner driving a
// workflow definition to a terminal result, and a fluent builder producing
// immutable definitions.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/adwkit/adw/pkg/models"
	"github.com/adwkit/adw/pkg/otelhelper"
	"github.com/adwkit/adw/pkg/persistence"
	"github.com/adwkit/adw/pkg/persistence/file"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Runner executes workflow definitions. A single Runner may run many
// definitions, and the same definition may be run concurrently by multiple
// runners: all mutable state lives in the per-run structures.
type Runner struct {
	logger *slog.Logger
	tracer trace.Tracer
	store  persistence.Store
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the runner's base logger.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) { r.logger = logger }
}

// WithTracer enables per-run and per-step tracing spans.
func WithTracer(tracer trace.Tracer) RunnerOption {
	return func(r *Runner) { r.tracer = tracer }
}

// WithStore sets the store used when a run asks for log persistence.
func WithStore(store persistence.Store) RunnerOption {
	return func(r *Runner) { r.store = store }
}

// NewRunner creates a workflow runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{logger: slog.Default()}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Run executes def against input and drives it to a terminal status:
// success, failed, or cancelled. Cancellation is cooperative through ctx; a
// definition timeout (or opts.Timeout) bounds the whole run.
func (r *Runner) Run(ctx context.Context, def *models.WorkflowDefinition, input any, opts *models.RunOptions) (*models.WorkflowResult, error) {
	if def == nil || len(def.Steps) == 0 {
		return nil, fmt.Errorf("workflow has no steps to execute")
	}

	if opts == nil {
		opts = &models.RunOptions{}
	}

	runID := generateRunID()

	logger := r.logger
	if opts.Logger != nil {
		logger = opts.Logger
	}

	logger = logger.With("workflow_id", def.ID, "run_id", runID)

	timeout := def.Timeout
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}

	runCtx := ctx

	if timeout > 0 {
		var cancel context.CancelFunc

		runCtx, cancel = context.WithTimeoutCause(ctx, timeout, models.ErrWorkflowTimeout)
		defer cancel()
	}

	if r.tracer != nil {
		var span trace.Span

		runCtx, span = otelhelper.StartSpan(runCtx, r.tracer, "adw.workflow",
			attribute.String(otelhelper.WorkflowIDKey, def.ID),
			attribute.String(otelhelper.WorkflowNameKey, def.Name),
			attribute.String(otelhelper.RunIDKey, runID),
		)
		defer span.End()
	}

	shared, err := r.initialContext(runCtx, def, input, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize run context: %w", err)
	}

	started := time.Now()

	rs := &run{
		def:     def,
		runID:   runID,
		shared:  shared,
		results: make(map[string]*models.StepResult, len(def.Steps)),
		retry:   models.MergeRetryConfig(r.defaultRetry(def), opts.Retry),
		logger:  logger,
		hooks:   def.Hooks,
		log: &models.WorkflowLog{
			WorkflowID: def.ID,
			RunID:      runID,
			Name:       def.Name,
			Version:    def.Version,
			Status:     models.WorkflowStatusRunning,
			StartedAt:  started,
		},
	}

	executor := NewExecutor(logger, r.tracer)

	logger.Info("Starting workflow run", "steps", len(def.Steps))
	r.invokeHook(logger, "on_workflow_start", func() error {
		if def.Hooks == nil || def.Hooks.OnWorkflowStart == nil {
			return nil
		}

		return def.Hooks.OnWorkflowStart(runCtx, def.ID, shared)
	})

	status := models.WorkflowStatusSuccess
	errorsList := make([]models.StepError, 0)

	for _, step := range def.Steps {
		step.Execute = r.withInput(step.Execute, input)

		result := executor.ExecuteStep(runCtx, step, rs)
		rs.results[step.ID] = result

		if result.Status != models.StepStatusFailed {
			continue
		}

		errorsList = append(errorsList, models.StepError{
			StepID:  step.ID,
			Message: result.Error,
			Err:     result.Err,
		})

		if terminal, st := r.terminalStatus(runCtx, result.Err); terminal {
			status = st

			break
		}

		if def.AbortOnError && !step.ContinueOnFailure {
			status = models.WorkflowStatusFailed

			break
		}
	}

	// A run that proceeded past failures (AbortOnError false) still ends
	// failed unless every failed step opted into ContinueOnFailure.
	if status == models.WorkflowStatusSuccess {
		for _, step := range def.Steps {
			if res, ok := rs.results[step.ID]; ok &&
				res.Status == models.StepStatusFailed && !step.ContinueOnFailure {
				status = models.WorkflowStatusFailed

				break
			}
		}
	}

	result := r.finishRun(ctx, rs, status, started, errorsList, opts)

	return result, nil
}

// initialContext seeds the run's shared context from RunOptions.Context, then
// lets the definition's InitContext derive more from the run input.
func (r *Runner) initialContext(ctx context.Context, def *models.WorkflowDefinition, input any, opts *models.RunOptions) (map[string]any, error) {
	shared := make(map[string]any, len(opts.Context))

	for k, v := range opts.Context {
		shared[k] = v
	}

	if def.InitContext != nil {
		derived, err := def.InitContext(ctx, input)
		if err != nil {
			return nil, err
		}

		for k, v := range derived {
			shared[k] = v
		}
	}

	return shared, nil
}

func (r *Runner) defaultRetry(def *models.WorkflowDefinition) models.RetryConfig {
	return models.MergeRetryConfig(models.DefaultRetryConfig(), def.DefaultRetry)
}

// withInput threads the run input into every step context. Steps read it via
// sc.Input; later steps usually prefer sc.Previous.
func (r *Runner) withInput(execute models.StepFunc, input any) models.StepFunc {
	return func(ctx context.Context, sc *models.StepContext) (any, error) {
		sc.Input = input

		return execute(ctx, sc)
	}
}

// terminalStatus decides whether a step failure ends the run regardless of
// continuation policy: a fired cancellation token yields cancelled, an
// elapsed run budget yields failed.
func (r *Runner) terminalStatus(runCtx context.Context, stepErr error) (bool, models.WorkflowStatus) {
	if errors.Is(stepErr, models.ErrWorkflowTimeout) {
		return true, models.WorkflowStatusFailed
	}

	if runCtx.Err() != nil {
		if context.Cause(runCtx) == models.ErrWorkflowTimeout {
			return true, models.WorkflowStatusFailed
		}

		return true, models.WorkflowStatusCancelled
	}

	if errors.Is(stepErr, models.ErrAborted) {
		return true, models.WorkflowStatusCancelled
	}

	return false, models.WorkflowStatusSuccess
}

// finishRun seals the audit log, assembles the result, applies the output
// transform, runs the end hook and optionally persists the log.
func (r *Runner) finishRun(ctx context.Context, rs *run, status models.WorkflowStatus, started time.Time, stepErrors []models.StepError, opts *models.RunOptions) *models.WorkflowResult {
	rs.log.Status = status
	rs.log.EndedAt = time.Now()
	rs.log.Duration = time.Since(started)
	rs.log.Errors = stepErrors

	outputs := make(map[string]any)

	for id, res := range rs.results {
		if res.Status == models.StepStatusSuccess {
			outputs[id] = res.Output
		}
	}

	result := &models.WorkflowResult{
		WorkflowID: rs.def.ID,
		RunID:      rs.runID,
		Status:     status,
		Outputs:    outputs,
		Errors:     stepErrors,
		Results:    rs.results,
		Log:        rs.log,
	}

	if status == models.WorkflowStatusSuccess && rs.def.TransformOutput != nil {
		output, err := rs.def.TransformOutput(ctx, rs.results)
		if err != nil {
			rs.logger.Error("Output transform failed", "error", err)

			result.Status = models.WorkflowStatusFailed
			result.Errors = append(result.Errors, models.StepError{
				StepID:  "transform_output",
				Message: err.Error(),
				Err:     err,
			})
			rs.log.Status = models.WorkflowStatusFailed
		} else {
			result.Output = output
		}
	}

	rs.logger.Info("Workflow run finished",
		"status", result.Status, "duration", rs.log.Duration, "errors", len(result.Errors))

	r.invokeHook(rs.logger, "on_workflow_end", func() error {
		if rs.hooks == nil || rs.hooks.OnWorkflowEnd == nil {
			return nil
		}

		return rs.hooks.OnWorkflowEnd(ctx, rs.log)
	})

	if opts.PersistLogs {
		store := r.store
		if opts.LogDir != "" {
			store = file.NewStore(opts.LogDir)
		}

		if store == nil {
			rs.logger.Warn("Log persistence requested but no store configured")
		} else if err := store.SaveRunLog(ctx, rs.log); err != nil {
			rs.logger.Error("Failed to persist run log", "error", err)
		}
	}

	return result
}

func (r *Runner) invokeHook(logger *slog.Logger, name string, hook func() error) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("Hook panicked", "hook", name, "panic", rec)
		}
	}()

	if err := hook(); err != nil {
		logger.Error("Hook failed", "hook", name, "error", err)
	}
}

// generateRunID generates a unique run ID.
func generateRunID() string {
	return fmt.Sprintf("run-%s", uuid.New().String()[:8])
}
