// Package models defines data structures and domain types.
package models

import "time"

// Attempt outcome kinds recorded for each orchestrator trial.
const (
	AttemptSuccess   = "success"
	AttemptRetryable = "retryable"
	AttemptTerminal  = "terminal"
)

// AICall represents one logged (model, credential) attempt.
type AICall struct {
	Timestamp  time.Time
	Label      string
	Model      string
	Outcome    string
	Error      string
	RequestID  string
	ID         int64
	KeyIndex   int
	DurationMs int
}

// ModelStats aggregates attempt outcomes for a single model.
type ModelStats struct {
	LastUsed      time.Time
	Model         string
	Attempts      int
	Successes     int
	Retryable     int
	Terminal      int
	AvgDurationMs float64
}

// SuccessRate returns successes as a percentage of attempts.
func (m ModelStats) SuccessRate() float64 {
	if m.Attempts == 0 {
		return 0
	}
	return float64(m.Successes) / float64(m.Attempts) * 100
}
