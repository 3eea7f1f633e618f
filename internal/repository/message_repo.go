package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"sfinx/internal/domain"
)

type MessageRepository interface {
	Create(ctx context.Context, message domain.Message) error
	ListByInterviewID(ctx context.Context, interviewID string) ([]domain.Message, error)
}

type PgMessageRepository struct {
	pool pgxConn
}

func NewPgMessageRepository(pool *pgxpool.Pool) *PgMessageRepository {
	return &PgMessageRepository{pool: pool}
}

func (r *PgMessageRepository) Create(ctx context.Context, message domain.Message) error {
	const query = `
		INSERT INTO interview_messages (id, interview_id, role, content, stage, outcome, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		message.ID,
		message.InterviewID,
		message.Role,
		message.Content,
		message.Stage,
		message.Outcome,
		message.CreatedAt,
	)
	return err
}

func (r *PgMessageRepository) ListByInterviewID(ctx context.Context, interviewID string) ([]domain.Message, error) {
	const query = `
		SELECT id, interview_id, role, content, stage, outcome, created_at
		FROM interview_messages
		WHERE interview_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, interviewID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(
			&msg.ID,
			&msg.InterviewID,
			&msg.Role,
			&msg.Content,
			&msg.Stage,
			&msg.Outcome,
			&msg.CreatedAt,
		); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return messages, nil
}
