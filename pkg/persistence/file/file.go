// Package file provides file-based persistence for workflow run logs: one
// JSON document per run under a configurable directory.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/adwkit/adw/pkg/models"
	"github.com/adwkit/adw/pkg/persistence"
)

const runsDir = "runs"

// Store implements persistence.Store on the local file system.
type Store struct {
	root string
}

// NewStore creates a file store rooted at the given directory. The runs
// subdirectory is created on first write.
func NewStore(root string) *Store {
	return &Store{root: strings.Replace(root, "file://", "", 1)}
}

// Close performs any necessary cleanup. For file-based persistence, there is
// nothing to clean up.
func (s *Store) Close(_ context.Context) error {
	return nil
}

// HealthCheck verifies the root directory exists.
func (s *Store) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(s.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// SaveRunLog writes one run's log, keyed by workflow id, start timestamp and
// run id so listings sort chronologically by name.
func (s *Store) SaveRunLog(_ context.Context, log *models.WorkflowLog) error {
	dir := filepath.Join(s.root, runsDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create runs directory: %w", err)
	}

	data, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run log %s: %w", log.RunID, err)
	}

	name := fmt.Sprintf("%s-%s-%s.json",
		log.WorkflowID, log.StartedAt.UTC().Format("20060102T150405"), log.RunID)

	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return fmt.Errorf("failed to write run log %s: %w", log.RunID, err)
	}

	return nil
}

// RunLog loads a run's log by run id.
func (s *Store) RunLog(_ context.Context, runID string) (*models.WorkflowLog, error) {
	files, err := s.runFiles()
	if err != nil {
		return nil, err
	}

	for _, file := range files {
		if strings.HasSuffix(file, "-"+runID+".json") {
			return s.readLog(file)
		}
	}

	return nil, persistence.ErrRunLogNotFound
}

// ListRecent returns up to limit run logs, most recent start time first.
func (s *Store) ListRecent(_ context.Context, limit int) ([]*models.WorkflowLog, error) {
	files, err := s.runFiles()
	if err != nil {
		return nil, err
	}

	logs := make([]*models.WorkflowLog, 0, len(files))

	for _, file := range files {
		log, err := s.readLog(file)
		if err != nil {
			return nil, err
		}

		logs = append(logs, log)
	}

	sort.Slice(logs, func(i, j int) bool {
		return logs[i].StartedAt.After(logs[j].StartedAt)
	})

	if limit > 0 && len(logs) > limit {
		logs = logs[:limit]
	}

	return logs, nil
}

func (s *Store) runFiles() ([]string, error) {
	dir := filepath.Join(s.root, runsDir)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}

	files, err := fs.Glob(os.DirFS(dir), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list run logs: %w", err)
	}

	return files, nil
}

func (s *Store) readLog(name string) (*models.WorkflowLog, error) {
	data, err := os.ReadFile(filepath.Join(s.root, runsDir, name))
	if err != nil {
		return nil, fmt.Errorf("failed to read run log %s: %w", name, err)
	}

	var log models.WorkflowLog
	if err := json.Unmarshal(data, &log); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run log %s: %w", name, err)
	}

	return &log, nil
}

// PruneOlderThan removes run logs whose start time is before cutoff and
// returns how many were deleted.
func (s *Store) PruneOlderThan(_ context.Context, cutoff time.Time) (int, error) {
	files, err := s.runFiles()
	if err != nil {
		return 0, err
	}

	pruned := 0

	for _, file := range files {
		log, err := s.readLog(file)
		if err != nil {
			return pruned, err
		}

		if log.StartedAt.Before(cutoff) {
			if err := os.Remove(filepath.Join(s.root, runsDir, file)); err != nil {
				return pruned, fmt.Errorf("failed to prune run log %s: %w", file, err)
			}

			pruned++
		}
	}

	return pruned, nil
}
