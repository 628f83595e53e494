// Package persistence defines the run-log store contract and its
// standardized error types.
package persistence

import (
	"context"
	"errors"

	"github.com/adwkit/adw/pkg/models"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrRunLogNotFound indicates no run log exists for the given run id.
	ErrRunLogNotFound = errors.New("run log not found")
)

// Store persists workflow run logs: one document per run, written once at
// run end and never mutated afterwards.
type Store interface {
	// SaveRunLog writes the audit log of one completed run.
	SaveRunLog(ctx context.Context, log *models.WorkflowLog) error

	// RunLog loads a run's log by run id.
	RunLog(ctx context.Context, runID string) (*models.WorkflowLog, error)

	// ListRecent returns up to limit run logs, most recent first.
	ListRecent(ctx context.Context, limit int) ([]*models.WorkflowLog, error)

	// Close performs any necessary cleanup.
	Close(ctx context.Context) error

	// HealthCheck checks if the store is usable.
	HealthCheck(ctx context.Context) error
}
