package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sfinx/internal/domain"
)

// ObservationRepository guarda las observaciones por rasgo, solo agregando.
type ObservationRepository interface {
	InsertBatch(ctx context.Context, observations []domain.Observation) error
	ListByInterviewID(ctx context.Context, interviewID string) ([]domain.Observation, error)
}

type PgObservationRepository struct {
	pool pgxConn
}

func NewPgObservationRepository(pool *pgxpool.Pool) *PgObservationRepository {
	return &PgObservationRepository{pool: pool}
}

func (r *PgObservationRepository) InsertBatch(ctx context.Context, observations []domain.Observation) error {
	if len(observations) == 0 {
		return nil
	}
	const query = `
		INSERT INTO trait_observations (id, interview_id, turn, trait, normalized_rating, weight, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	batch := &pgx.Batch{}
	for _, o := range observations {
		batch.Queue(query,
			o.ID,
			o.InterviewID,
			o.Turn,
			o.Trait,
			o.NormalizedRating,
			o.Weight,
			o.CreatedAt,
		)
	}
	return r.pool.SendBatch(ctx, batch).Close()
}

func (r *PgObservationRepository) ListByInterviewID(ctx context.Context, interviewID string) ([]domain.Observation, error) {
	const query = `
		SELECT id, interview_id, turn, trait, normalized_rating, weight, created_at
		FROM trait_observations
		WHERE interview_id = $1
		ORDER BY turn, trait
	`

	rows, err := r.pool.Query(ctx, query, interviewID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var observations []domain.Observation
	for rows.Next() {
		var o domain.Observation
		if err := rows.Scan(
			&o.ID,
			&o.InterviewID,
			&o.Turn,
			&o.Trait,
			&o.NormalizedRating,
			&o.Weight,
			&o.CreatedAt,
		); err != nil {
			return nil, err
		}
		observations = append(observations, o)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return observations, nil
}
