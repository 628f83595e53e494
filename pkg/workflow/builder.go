package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/adwkit/adw/pkg/models"
	"github.com/go-playground/validator/v10"
)

// Builder accumulates a workflow definition through a fluent API:
//
//	def, err := workflow.NewBuilder("deploy", "Deploy Service").
//	    Describe("Builds and ships one service").
//	    WithRetry(&retryCfg).
//	    AddStep("build", "Build", buildStep).
//	    AddStep("ship", "Ship", shipStep).
//	    Build()
//
// Build returns an immutable definition; the builder itself is not
// executable and must not be reused after Build.
type Builder struct {
	def models.WorkflowDefinition
	err error
}

// NewBuilder creates a builder for a workflow with the given id and name.
func NewBuilder(id, name string) *Builder {
	return &Builder{
		def: models.WorkflowDefinition{
			ID:           id,
			Name:         name,
			AbortOnError: true,
			Steps:        make([]models.StepDefinition, 0),
		},
	}
}

// Describe sets the workflow description.
func (b *Builder) Describe(description string) *Builder {
	b.def.Description = description

	return b
}

// SetVersion sets the workflow version string.
func (b *Builder) SetVersion(version string) *Builder {
	b.def.Version = version

	return b
}

// WithRetry sets the workflow-level default retry policy. Step-level
// policies override it field-wise.
func (b *Builder) WithRetry(cfg *models.RetryConfig) *Builder {
	b.def.DefaultRetry = cfg

	return b
}

// WithTimeout bounds the whole run.
func (b *Builder) WithTimeout(timeout time.Duration) *Builder {
	b.def.Timeout = timeout

	return b
}

// ContinueOnError lets the run proceed past failed steps instead of halting.
// The run still ends failed when a step without ContinueOnFailure failed.
func (b *Builder) ContinueOnError() *Builder {
	b.def.AbortOnError = false

	return b
}

// InitContext computes the initial shared context from the run input before
// any step runs.
func (b *Builder) InitContext(fn models.InitContextFunc) *Builder {
	b.def.InitContext = fn

	return b
}

// WithHooks attaches lifecycle hooks to the definition.
func (b *Builder) WithHooks(hooks *models.Hooks) *Builder {
	b.def.Hooks = hooks

	return b
}

// AddStep appends a step executing fn.
func (b *Builder) AddStep(id, name string, fn models.StepFunc) *Builder {
	return b.addStep(models.StepDefinition{ID: id, Name: name, Execute: fn})
}

// AddStepDefinition appends a fully specified step, for callers that need
// per-step retry, validation, timeout or continuation policy.
func (b *Builder) AddStepDefinition(step models.StepDefinition) *Builder {
	return b.addStep(step)
}

// AddConditionalStep appends a step guarded by condition; a false condition
// skips the step without failing the run.
func (b *Builder) AddConditionalStep(id, name string, condition models.ConditionFunc, fn models.StepFunc) *Builder {
	return b.addStep(models.StepDefinition{ID: id, Name: name, Condition: condition, Execute: fn})
}

// AddValidation appends a pass-through gate: the step returns the previous
// step's output unchanged and fails when fn rejects it.
func (b *Builder) AddValidation(id, name string, fn models.ValidatorFunc) *Builder {
	return b.addStep(models.StepDefinition{
		ID:   id,
		Name: name,
		Execute: func(_ context.Context, sc *models.StepContext) (any, error) {
			return lastOutput(sc), nil
		},
		Validation: &models.ValidationConfig{Required: true, Validator: fn},
	})
}

// TransformOutput maps completed step results to the workflow's declared
// output type.
func (b *Builder) TransformOutput(fn models.TransformFunc) *Builder {
	b.def.TransformOutput = fn

	return b
}

func (b *Builder) addStep(step models.StepDefinition) *Builder {
	if b.err != nil {
		return b
	}

	if step.ID == "" {
		b.err = fmt.Errorf("step id is required")

		return b
	}

	if step.Execute == nil {
		b.err = fmt.Errorf("step %s has no execute function", step.ID)

		return b
	}

	if step.Name == "" {
		step.Name = step.ID
	}

	b.def.Steps = append(b.def.Steps, step)

	return b
}

// Build validates the accumulated definition and returns an immutable copy.
// Step ids must be unique, and DependsOn entries must reference steps
// declared earlier: the runner executes strictly in declaration order, so a
// forward dependency can never be satisfied.
func (b *Builder) Build() (*models.WorkflowDefinition, error) {
	if b.err != nil {
		return nil, b.err
	}

	if err := validate.Struct(&b.def); err != nil {
		return nil, fmt.Errorf("invalid workflow definition: %w", err)
	}

	seen := make(map[string]int, len(b.def.Steps))

	for i, step := range b.def.Steps {
		if _, dup := seen[step.ID]; dup {
			return nil, fmt.Errorf("duplicate step id %q", step.ID)
		}

		seen[step.ID] = i

		for _, dep := range step.DependsOn {
			pos, known := seen[dep]
			if !known || pos >= i {
				return nil, fmt.Errorf("step %q depends on %q, which is not declared earlier", step.ID, dep)
			}
		}
	}

	def := b.def
	def.Steps = make([]models.StepDefinition, len(b.def.Steps))
	copy(def.Steps, b.def.Steps)

	return &def, nil
}

// lastOutput returns the output of the nearest earlier successful step, or
// the run input when no step has produced anything yet.
func lastOutput(sc *models.StepContext) any {
	if sc.LastOutput != nil {
		return sc.LastOutput
	}

	return sc.Input
}

var validate = validator.New(validator.WithRequiredStructEnabled())
