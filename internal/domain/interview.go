package domain

import "time"

// Interview es el registro persistente de una entrevista.
type Interview struct {
	ID            string     `json:"id"`
	CandidateName string     `json:"candidate_name"`
	Stage         string     `json:"stage"`
	ExitReason    string     `json:"exit_reason,omitempty"`
	TimeboxMs     int64      `json:"timebox_ms"`
	StartedAt     *time.Time `json:"background_started_at,omitempty"`
	EndedAt       *time.Time `json:"ended_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
