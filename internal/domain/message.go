package domain

import "time"

const (
	RoleAssistant = "assistant"
	RoleUser      = "user"
)

// Message es una frase finalizada del transcript de una entrevista.
type Message struct {
	ID          string    `json:"id"`
	InterviewID string    `json:"interview_id"`
	Role        string    `json:"role"`
	Content     string    `json:"content"`
	Stage       string    `json:"stage"`   // etapa resultante tras aplicar el evento
	Outcome     string    `json:"outcome"` // advanced | ignored | mismatch
	CreatedAt   time.Time `json:"created_at"`
}
