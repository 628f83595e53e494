// Package registry provides an explicit, injectable registry mapping
// pipeline kinds to workflow factories. It is constructed once at startup
// and passed by dependency injection to every call site; there is no
// package-level mutable default.
package registry

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/adwkit/adw/pkg/models"
)

// Factory builds a workflow definition from a pattern-specific config value.
// Implementations assert config to their own type and reject anything else.
type Factory func(config any) (*models.WorkflowDefinition, error)

type Registry struct {
	logger    *slog.Logger
	factories map[string]Factory
}

func NewRegistry(log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}

	return &Registry{
		logger:    log,
		factories: make(map[string]Factory),
	}
}

// Register binds a pipeline kind to its factory. Re-registering a kind
// replaces the previous factory.
func (r *Registry) Register(kind string, factory Factory) {
	r.factories[kind] = factory
	r.logger.Debug("Registered workflow factory", "kind", kind)
}

// Create builds a definition for the given pipeline kind.
func (r *Registry) Create(kind string, config any) (*models.WorkflowDefinition, error) {
	factory, ok := r.factories[kind]
	if !ok {
		return nil, fmt.Errorf("workflow kind '%s' not registered", kind)
	}

	return factory(config)
}

// Kinds returns the registered pipeline kinds, sorted.
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.factories))
	for kind := range r.factories {
		kinds = append(kinds, kind)
	}

	sort.Strings(kinds)

	return kinds
}
