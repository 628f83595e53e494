package patterns

import (
	"fmt"

	"github.com/adwkit/adw/pkg/models"
	"github.com/adwkit/adw/pkg/registry"
)

// Pipeline kinds registered by RegisterAll.
const (
	KindPlanBuild      = "plan_build"
	KindReviewDocument = "review_document"
	KindScoutPlanBuild = "scout_plan_build"
	KindBuildTestFix   = "build_test_fix"
	KindIteration      = "iteration"
)

// RegisterAll binds every built-in pattern factory to the given registry.
func RegisterAll(r *registry.Registry) {
	r.Register(KindPlanBuild, typed(PlanBuild))
	r.Register(KindReviewDocument, typed(ReviewDocument))
	r.Register(KindScoutPlanBuild, typed(ScoutPlanBuild))
	r.Register(KindBuildTestFix, typed(BuildTestFix))
	r.Register(KindIteration, typed(Iteration))
}

// typed adapts a pattern factory with a concrete config type to the
// registry's untyped Factory contract.
func typed[C any](factory func(C) (*models.WorkflowDefinition, error)) registry.Factory {
	return func(config any) (*models.WorkflowDefinition, error) {
		cfg, ok := config.(C)
		if !ok {
			return nil, fmt.Errorf("expected config type %T, got %T", *new(C), config)
		}

		return factory(cfg)
	}
}
