package domain

import (
	"encoding/json"
	"time"
)

// ArchivedInterview guarda la foto final de la sesion cuando la entrevista termina o sale a coding.
type ArchivedInterview struct {
	InterviewID string          `json:"interview_id"`
	Stage       string          `json:"stage"`
	ExitReason  string          `json:"exit_reason,omitempty"`
	Snapshot    json.RawMessage `json:"snapshot"`
	ArchivedAt  time.Time       `json:"archived_at"`
}
