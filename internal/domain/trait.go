package domain

import "time"

// Observation persiste la evidencia de un turno para un rasgo.
type Observation struct {
	ID               string    `json:"id"`
	InterviewID      string    `json:"interview_id"`
	Turn             int       `json:"turn"`
	Trait            string    `json:"trait"`
	NormalizedRating float64   `json:"normalized_rating"`
	Weight           float64   `json:"weight"`
	CreatedAt        time.Time `json:"created_at"`
}
