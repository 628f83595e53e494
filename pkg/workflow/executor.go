package workflow

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/adwkit/adw/pkg/models"
	"github.com/adwkit/adw/pkg/otelhelper"
	"github.com/adwkit/adw/pkg/retry"
	"github.com/adwkit/adw/pkg/validation"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Executor runs a single step: condition gate, retry loop under the step's
// wall-clock budget, output validation, audit logging and hook bracketing.
type Executor struct {
	logger *slog.Logger
	tracer trace.Tracer
}

// NewExecutor creates a step executor. tracer may be nil.
func NewExecutor(logger *slog.Logger, tracer trace.Tracer) *Executor {
	return &Executor{
		logger: logger,
		tracer: tracer,
	}
}

// run is the per-run state the executor needs around a step: identity,
// accumulated results, the run-scoped shared bag and the audit log.
type run struct {
	def     *models.WorkflowDefinition
	runID   string
	shared  map[string]any
	results map[string]*models.StepResult
	retry   models.RetryConfig // Workflow-level policy, already merged with the run override
	log     *models.WorkflowLog
	logger  *slog.Logger
	hooks   *models.Hooks

	// lastOutput chains step outputs: each successful step's output becomes
	// the next step's StepContext.LastOutput.
	lastOutput any
}

// ExecuteStep runs one step to a terminal status. The returned result is
// never mutated afterwards; the matching StepLog entry has already been
// appended to the run's audit log.
func (e *Executor) ExecuteStep(ctx context.Context, step models.StepDefinition, rs *run) *models.StepResult {
	logger := rs.logger.With("step_id", step.ID)

	sc := &models.StepContext{
		WorkflowID:  rs.def.ID,
		RunID:       rs.runID,
		StepID:      step.ID,
		MaxAttempts: 1,
		LastOutput:  rs.lastOutput,
		Previous:    rs.results,
		Shared:      rs.shared,
		Logger:      logger,
	}

	if step.Condition != nil {
		proceed, err := step.Condition(ctx, sc)
		if err != nil {
			logger.Error("Condition evaluation failed", "error", err)

			result := &models.StepResult{
				StepID: step.ID,
				Status: models.StepStatusFailed,
				Err:    err,
				Error:  err.Error(),
			}
			rs.log.AppendStep(e.stepLogFor(rs, step, result, time.Now(), time.Now()))

			return result
		}

		if !proceed {
			logger.Info("Condition evaluated to false, skipping step")

			result := &models.StepResult{StepID: step.ID, Status: models.StepStatusSkipped}
			rs.log.AppendStep(e.stepLogFor(rs, step, result, time.Now(), time.Now()))

			return result
		}
	}

	merged := models.MergeRetryConfig(rs.retry, step.Retry)
	sc.MaxAttempts = merged.MaxAttempts

	stepCtx := ctx

	if step.Timeout > 0 {
		var cancel context.CancelFunc

		stepCtx, cancel = context.WithTimeoutCause(ctx, step.Timeout, models.ErrStepTimeout)
		defer cancel()
	}

	if e.tracer != nil {
		var span trace.Span

		stepCtx, span = otelhelper.StartSpan(stepCtx, e.tracer, "adw.step",
			attribute.String(otelhelper.WorkflowIDKey, rs.def.ID),
			attribute.String(otelhelper.RunIDKey, rs.runID),
			attribute.String(otelhelper.StepIDKey, step.ID),
			attribute.String(otelhelper.StepNameKey, step.Name),
		)
		defer span.End()
	}

	started := time.Now()

	entry := &models.StepLog{
		WorkflowID: rs.def.ID,
		RunID:      rs.runID,
		StepID:     step.ID,
		Name:       step.Name,
		Status:     models.StepStatusRunning,
		StartedAt:  started,
	}
	e.invokeHook(logger, "on_step_start", func() error {
		if rs.hooks == nil || rs.hooks.OnStepStart == nil {
			return nil
		}

		return rs.hooks.OnStepStart(ctx, entry)
	})

	logger.Info("Executing step", "max_attempts", merged.MaxAttempts)

	outcome := retry.Do(stepCtx, merged, func(opCtx context.Context) (any, error) {
		sc.Attempt++

		return step.Execute(opCtx, sc)
	}, func(attempt int, err error, delay time.Duration) {
		logger.Warn("Step attempt failed, retrying",
			"attempt", attempt, "delay", delay, "error", err)
		e.invokeHook(logger, "on_retry", func() error {
			if rs.hooks == nil || rs.hooks.OnRetry == nil {
				return nil
			}

			return rs.hooks.OnRetry(ctx, step.ID, attempt, err)
		})
	})

	result := e.finishStep(ctx, stepCtx, step, rs, sc, outcome, logger)
	result.Duration = time.Since(started)

	entry.Status = result.Status
	entry.EndedAt = time.Now()
	entry.Duration = result.Duration
	entry.Attempts = result.Attempts
	entry.Output = result.Output
	entry.Error = result.Error
	entry.Validation = result.Validation
	rs.log.AppendStep(entry)

	if e.tracer != nil && result.Err != nil {
		otelhelper.SetError(trace.SpanFromContext(stepCtx), result.Err,
			attribute.String(otelhelper.StepIDKey, step.ID),
			attribute.Int(otelhelper.AttemptKey, result.Attempts),
		)
	}

	if result.Status == models.StepStatusSuccess {
		rs.lastOutput = result.Output
	}

	e.invokeHook(logger, "on_step_end", func() error {
		if rs.hooks == nil || rs.hooks.OnStepEnd == nil {
			return nil
		}

		return rs.hooks.OnStepEnd(ctx, entry)
	})

	return result
}

// finishStep maps a retry outcome to a terminal step result, applying the
// validation gate on success.
func (e *Executor) finishStep(ctx, stepCtx context.Context, step models.StepDefinition, rs *run, sc *models.StepContext, outcome retry.Outcome, logger *slog.Logger) *models.StepResult {
	result := &models.StepResult{
		StepID:    step.ID,
		Attempts:  outcome.Attempts,
		Retryable: outcome.Retryable,
	}

	if !outcome.Success {
		result.Status = models.StepStatusFailed
		result.Err = outcome.Err
		result.Error = outcome.Err.Error()

		logger.Error("Step failed", "attempts", outcome.Attempts, "error", outcome.Err)

		return result
	}

	result.Status = models.StepStatusSuccess
	result.Output = outcome.Result

	if step.Validation.Configured() {
		vr := validation.StepOutput(stepCtx, outcome.Result, step.Validation)
		result.Validation = vr

		if !vr.Valid {
			e.invokeHook(logger, "on_validation_failure", func() error {
				if rs.hooks == nil || rs.hooks.OnValidationFailure == nil {
					return nil
				}

				return rs.hooks.OnValidationFailure(ctx, step.ID, vr)
			})

			message := strings.Join(vr.Errors, "; ")

			if step.Validation.Required {
				result.Status = models.StepStatusFailed
				result.Err = &models.FlowError{Kind: models.KindValidation, Message: message}
				result.Error = message
				result.Retryable = false

				logger.Error("Step output failed validation", "errors", message)
			} else {
				logger.Warn("Step output failed optional validation", "errors", message)
			}
		}
	}

	if result.Status == models.StepStatusSuccess {
		logger.Info("Step completed", "attempts", result.Attempts)
	}

	return result
}

// stepLogFor records a step that never reached the retry loop (skipped, or a
// failed condition): zero duration, zero attempts.
func (e *Executor) stepLogFor(rs *run, step models.StepDefinition, result *models.StepResult, started, ended time.Time) *models.StepLog {
	return &models.StepLog{
		WorkflowID: rs.def.ID,
		RunID:      rs.runID,
		StepID:     step.ID,
		Name:       step.Name,
		Status:     result.Status,
		StartedAt:  started,
		EndedAt:    ended,
		Error:      result.Error,
	}
}

// invokeHook awaits a hook and swallows its error. Hooks observe the run,
// they never steer it.
func (e *Executor) invokeHook(logger *slog.Logger, name string, hook func() error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Hook panicked", "hook", name, "panic", r)
		}
	}()

	if err := hook(); err != nil {
		logger.Error("Hook failed", "hook", name, "error", err)
	}
}
