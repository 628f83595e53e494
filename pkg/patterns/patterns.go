// Package patterns provides parameterized factories for the common
// multi-phase pipelines: plan/build, review/document, scout/plan/build,
// build/test/fix and candidate iteration. Each factory assembles a
// definition through the workflow builder; callers run the result with a
// workflow.Runner.
package patterns

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/adwkit/adw/pkg/models"
	"github.com/adwkit/adw/pkg/workflow"
)

// Options are the knobs shared by every pattern factory.
type Options struct {
	ID          string
	Name        string
	Description string
	Retry       *models.RetryConfig
	Timeout     time.Duration
	Hooks       *models.Hooks
}

func (o Options) builder(fallbackID, fallbackName string) *workflow.Builder {
	id := o.ID
	if id == "" {
		id = fallbackID
	}

	name := o.Name
	if name == "" {
		name = fallbackName
	}

	b := workflow.NewBuilder(id, name)

	if o.Description != "" {
		b.Describe(o.Description)
	}

	if o.Retry != nil {
		b.WithRetry(o.Retry)
	}

	if o.Timeout > 0 {
		b.WithTimeout(o.Timeout)
	}

	if o.Hooks != nil {
		b.WithHooks(o.Hooks)
	}

	return b
}

// PlanBuildConfig parameterizes a plan-then-build pipeline. ValidatePlan,
// when set, gates the transition: a rejected plan stops the run before build
// starts.
type PlanBuildConfig struct {
	Options
	Plan         models.StepFunc
	Build        models.StepFunc
	ValidatePlan models.ValidatorFunc
}

// PlanBuild assembles a plan→build workflow, optionally gated by a plan
// validator between the phases.
func PlanBuild(cfg PlanBuildConfig) (*models.WorkflowDefinition, error) {
	if cfg.Plan == nil || cfg.Build == nil {
		return nil, errors.New("plan and build steps are required")
	}

	b := cfg.builder("plan-build", "Plan and Build").
		AddStep("plan", "Plan", cfg.Plan)

	if cfg.ValidatePlan != nil {
		b.AddValidation("validate_plan", "Validate Plan", cfg.ValidatePlan)
	}

	return b.AddStep("build", "Build", cfg.Build).Build()
}

// ReviewDocumentConfig parameterizes a review-then-document pipeline.
type ReviewDocumentConfig struct {
	Options
	Review   models.StepFunc
	Document models.StepFunc
}

// ReviewDocument assembles a review→document workflow.
func ReviewDocument(cfg ReviewDocumentConfig) (*models.WorkflowDefinition, error) {
	if cfg.Review == nil || cfg.Document == nil {
		return nil, errors.New("review and document steps are required")
	}

	return cfg.builder("review-document", "Review and Document").
		AddStep("review", "Review", cfg.Review).
		AddStep("document", "Document", cfg.Document).
		Build()
}

// ScoutPlanBuildConfig parameterizes the three-phase scout→plan→build
// pipeline.
type ScoutPlanBuildConfig struct {
	Options
	Scout models.StepFunc
	Plan  models.StepFunc
	Build models.StepFunc
}

// ScoutPlanBuild assembles a scout→plan→build workflow.
func ScoutPlanBuild(cfg ScoutPlanBuildConfig) (*models.WorkflowDefinition, error) {
	if cfg.Scout == nil || cfg.Plan == nil || cfg.Build == nil {
		return nil, errors.New("scout, plan and build steps are required")
	}

	return cfg.builder("scout-plan-build", "Scout, Plan and Build").
		AddStep("scout", "Scout", cfg.Scout).
		AddStep("plan", "Plan", cfg.Plan).
		AddStep("build", "Build", cfg.Build).
		Build()
}

// BuildTestFixConfig parameterizes a build→test→fix pipeline where the fix
// phase only runs when ShouldFix accepts the test output. InitContext is
// required: the fix step usually needs run-scoped state seeded before build
// starts.
type BuildTestFixConfig struct {
	Options
	Build       models.StepFunc
	Test        models.StepFunc
	Fix         models.StepFunc
	ShouldFix   func(testResult any) bool
	InitContext models.InitContextFunc
}

// BuildTestFix assembles a build→test→conditional-fix workflow.
func BuildTestFix(cfg BuildTestFixConfig) (*models.WorkflowDefinition, error) {
	if cfg.Build == nil || cfg.Test == nil || cfg.Fix == nil {
		return nil, errors.New("build, test and fix steps are required")
	}

	if cfg.ShouldFix == nil {
		return nil, errors.New("a shouldFix predicate is required")
	}

	if cfg.InitContext == nil {
		return nil, errors.New("an init context function is required")
	}

	condition := func(_ context.Context, sc *models.StepContext) (bool, error) {
		return cfg.ShouldFix(sc.PreviousOutput("test")), nil
	}

	return cfg.builder("build-test-fix", "Build, Test and Fix").
		InitContext(cfg.InitContext).
		AddStep("build", "Build", cfg.Build).
		AddStep("test", "Test", cfg.Test).
		AddConditionalStep("fix", "Fix", condition, cfg.Fix).
		Build()
}

// IterationConfig parameterizes a generate→execute→select pipeline: Generate
// produces the candidates, Execute runs once per candidate strictly in
// order, Select reduces the candidate outputs to one winner.
type IterationConfig struct {
	Options
	Generate func(ctx context.Context, sc *models.StepContext) ([]any, error)
	Execute  func(ctx context.Context, sc *models.StepContext, candidate any) (any, error)
	Select   func(ctx context.Context, outputs []any) (any, error)
}

// Iteration assembles the candidate-iteration workflow. Candidates are
// processed sequentially, never concurrently.
func Iteration(cfg IterationConfig) (*models.WorkflowDefinition, error) {
	if cfg.Generate == nil || cfg.Execute == nil || cfg.Select == nil {
		return nil, errors.New("generate, execute and select functions are required")
	}

	return cfg.builder("iteration", "Candidate Iteration").
		AddStep("generate", "Generate Candidates", func(ctx context.Context, sc *models.StepContext) (any, error) {
			candidates, err := cfg.Generate(ctx, sc)
			if err != nil {
				return nil, err
			}

			if len(candidates) == 0 {
				return nil, errors.New("generate produced no candidates")
			}

			return candidates, nil
		}).
		AddStep("execute", "Execute Candidates", func(ctx context.Context, sc *models.StepContext) (any, error) {
			candidates, ok := sc.PreviousOutput("generate").([]any)
			if !ok {
				return nil, fmt.Errorf("unexpected candidate payload %T", sc.PreviousOutput("generate"))
			}

			outputs := make([]any, 0, len(candidates))

			for _, candidate := range candidates {
				output, err := cfg.Execute(ctx, sc, candidate)
				if err != nil {
					return nil, err
				}

				outputs = append(outputs, output)
			}

			return outputs, nil
		}).
		AddStep("select", "Select Winner", func(ctx context.Context, sc *models.StepContext) (any, error) {
			outputs, ok := sc.PreviousOutput("execute").([]any)
			if !ok {
				return nil, fmt.Errorf("unexpected execution payload %T", sc.PreviousOutput("execute"))
			}

			return cfg.Select(ctx, outputs)
		}).
		Build()
}
