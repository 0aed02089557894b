package model

import "time"

// PhaseStatus represents the outcome of one pipeline phase.
type PhaseStatus string

const (
	PhaseStatusComplete PhaseStatus = "complete"
	PhaseStatusFailed   PhaseStatus = "failed"
	PhaseStatusSkipped  PhaseStatus = "skipped"
)

// PhaseResult records the outcome of a single pipeline phase for the audit
// trail.
type PhaseResult struct {
	Name     string         `json:"name"`
	Status   PhaseStatus    `json:"status"`
	Duration int64          `json:"duration_ms"`
	Error    string         `json:"error,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// RunResult is the complete outcome of validating one candidate dossier.
// A run always carries a RiskAssessment, even when capabilities degraded.
type RunResult struct {
	RunID      string              `json:"run_id"`
	Candidate  string              `json:"candidate"`
	Golden     *GoldenRecord       `json:"-"`
	Verdicts   []ValidationVerdict `json:"verdicts"`
	Assessment RiskAssessment      `json:"assessment"`
	Summary    string              `json:"summary,omitempty"`
	Phases     []PhaseResult       `json:"phases"`
	Degraded   bool                `json:"degraded"` // similarity capability fell back to exact matching
	CreatedAt  time.Time           `json:"created_at"`
}
