package models

import "time"

// StepLog is the audit entry for one step run. Entries are written once and
// never mutated after the step reaches a terminal status.
type StepLog struct {
	WorkflowID string            `json:"workflow_id"`
	RunID      string            `json:"run_id"`
	StepID     string            `json:"step_id"`
	Name       string            `json:"name"`
	Status     StepStatus        `json:"status"`
	StartedAt  time.Time         `json:"started_at"`
	EndedAt    time.Time         `json:"ended_at,omitempty"`
	Duration   time.Duration     `json:"duration"`
	Attempts   int               `json:"attempts"`
	Output     any               `json:"output,omitempty"`
	Error      string            `json:"error,omitempty"`
	Validation *ValidationResult `json:"validation,omitempty"`
}

// WorkflowLog is the append-only audit trail for one run: one document per
// run, nesting the step entries in execution order.
type WorkflowLog struct {
	WorkflowID string         `json:"workflow_id"`
	RunID      string         `json:"run_id"`
	Name       string         `json:"name"`
	Version    string         `json:"version,omitempty"`
	Status     WorkflowStatus `json:"status"`
	StartedAt  time.Time      `json:"started_at"`
	EndedAt    time.Time      `json:"ended_at,omitempty"`
	Duration   time.Duration  `json:"duration"`
	Steps      []*StepLog     `json:"steps"`
	Errors     []StepError    `json:"errors,omitempty"`
}

// AppendStep records a completed step entry.
func (l *WorkflowLog) AppendStep(entry *StepLog) {
	l.Steps = append(l.Steps, entry)
}
