package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sfinx/internal/domain"
)

// ArchiveRepository guarda la foto final de una entrevista.
type ArchiveRepository interface {
	Save(ctx context.Context, archive domain.ArchivedInterview) error
	Get(ctx context.Context, interviewID string) (domain.ArchivedInterview, error)
}

type PgArchiveRepository struct {
	pool pgxConn
}

func NewPgArchiveRepository(pool *pgxpool.Pool) *PgArchiveRepository {
	return &PgArchiveRepository{pool: pool}
}

func (r *PgArchiveRepository) Save(ctx context.Context, archive domain.ArchivedInterview) error {
	const query = `
		INSERT INTO interview_archives (interview_id, stage, exit_reason, snapshot, archived_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (interview_id)
		DO UPDATE SET
			stage = EXCLUDED.stage,
			exit_reason = EXCLUDED.exit_reason,
			snapshot = EXCLUDED.snapshot,
			archived_at = EXCLUDED.archived_at
	`
	_, err := r.pool.Exec(ctx, query,
		archive.InterviewID,
		archive.Stage,
		nullIfEmpty(archive.ExitReason),
		[]byte(archive.Snapshot),
		archive.ArchivedAt,
	)
	return err
}

func (r *PgArchiveRepository) Get(ctx context.Context, interviewID string) (domain.ArchivedInterview, error) {
	const query = `
		SELECT interview_id, stage, COALESCE(exit_reason, ''), snapshot, archived_at
		FROM interview_archives
		WHERE interview_id = $1
	`
	var (
		archive  domain.ArchivedInterview
		snapshot []byte
	)
	err := r.pool.QueryRow(ctx, query, interviewID).Scan(
		&archive.InterviewID,
		&archive.Stage,
		&archive.ExitReason,
		&snapshot,
		&archive.ArchivedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ArchivedInterview{}, err
	}
	archive.Snapshot = snapshot
	return archive, err
}
