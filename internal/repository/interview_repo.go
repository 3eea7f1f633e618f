package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sfinx/internal/domain"
)

type InterviewRepository interface {
	Create(ctx context.Context, interview domain.Interview) error
	GetByID(ctx context.Context, id string) (domain.Interview, error)
	UpdateProgress(ctx context.Context, interview domain.Interview) error
}

type PgInterviewRepository struct {
	pool pgxConn
}

func NewPgInterviewRepository(pool *pgxpool.Pool) *PgInterviewRepository {
	return &PgInterviewRepository{pool: pool}
}

func (r *PgInterviewRepository) Create(ctx context.Context, interview domain.Interview) error {
	const query = `
		INSERT INTO interviews (id, candidate_name, stage, exit_reason, timebox_ms, background_started_at, ended_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.pool.Exec(ctx, query,
		interview.ID,
		interview.CandidateName,
		interview.Stage,
		nullIfEmpty(interview.ExitReason),
		interview.TimeboxMs,
		interview.StartedAt,
		interview.EndedAt,
		interview.CreatedAt,
		interview.UpdatedAt,
	)
	return err
}

func (r *PgInterviewRepository) GetByID(ctx context.Context, id string) (domain.Interview, error) {
	const query = `
		SELECT id, candidate_name, stage, COALESCE(exit_reason, ''), timebox_ms, background_started_at, ended_at, created_at, updated_at
		FROM interviews
		WHERE id = $1
	`
	var interview domain.Interview
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&interview.ID,
		&interview.CandidateName,
		&interview.Stage,
		&interview.ExitReason,
		&interview.TimeboxMs,
		&interview.StartedAt,
		&interview.EndedAt,
		&interview.CreatedAt,
		&interview.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Interview{}, err
	}
	return interview, err
}

// UpdateProgress actualiza etapa, motivo de salida y marcas de tiempo.
func (r *PgInterviewRepository) UpdateProgress(ctx context.Context, interview domain.Interview) error {
	const query = `
		UPDATE interviews
		SET stage = $2,
			exit_reason = $3,
			background_started_at = $4,
			ended_at = $5,
			updated_at = $6
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		interview.ID,
		interview.Stage,
		nullIfEmpty(interview.ExitReason),
		interview.StartedAt,
		interview.EndedAt,
		interview.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
