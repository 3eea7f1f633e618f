package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"sfinx/internal/domain"
)

const sqliteArchiveSchema = `
CREATE TABLE IF NOT EXISTS interview_archives (
	interview_id TEXT PRIMARY KEY,
	stage        TEXT NOT NULL,
	exit_reason  TEXT,
	snapshot     TEXT NOT NULL,
	archived_at  TEXT NOT NULL
);
`

// ErrArchiveNotFound se devuelve cuando no hay foto guardada para la entrevista.
var ErrArchiveNotFound = errors.New("archive not found")

// SQLiteArchiveRepository archiva entrevistas en un archivo local; lo usa el simulador de CLI.
type SQLiteArchiveRepository struct {
	db *sql.DB
}

// NewSQLiteArchiveRepository abre (o crea) la base y aplica el schema.
func NewSQLiteArchiveRepository(path string) (*SQLiteArchiveRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(sqliteArchiveSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLiteArchiveRepository{db: db}, nil
}

func (r *SQLiteArchiveRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteArchiveRepository) Save(ctx context.Context, archive domain.ArchivedInterview) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO interview_archives (interview_id, stage, exit_reason, snapshot, archived_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (interview_id) DO UPDATE SET
			stage = excluded.stage,
			exit_reason = excluded.exit_reason,
			snapshot = excluded.snapshot,
			archived_at = excluded.archived_at`,
		archive.InterviewID,
		archive.Stage,
		nullIfEmpty(archive.ExitReason),
		string(archive.Snapshot),
		archive.ArchivedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save archive: %w", err)
	}
	return nil
}

func (r *SQLiteArchiveRepository) Get(ctx context.Context, interviewID string) (domain.ArchivedInterview, error) {
	var (
		archive    domain.ArchivedInterview
		exitReason sql.NullString
		snapshot   string
		archivedAt string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT interview_id, stage, exit_reason, snapshot, archived_at
		 FROM interview_archives WHERE interview_id = ?`,
		interviewID,
	).Scan(&archive.InterviewID, &archive.Stage, &exitReason, &snapshot, &archivedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ArchivedInterview{}, ErrArchiveNotFound
	}
	if err != nil {
		return domain.ArchivedInterview{}, fmt.Errorf("get archive: %w", err)
	}
	archive.ExitReason = exitReason.String
	archive.Snapshot = []byte(snapshot)
	archive.ArchivedAt, err = time.Parse(time.RFC3339Nano, archivedAt)
	if err != nil {
		return domain.ArchivedInterview{}, fmt.Errorf("parse archived_at: %w", err)
	}
	return archive, nil
}
