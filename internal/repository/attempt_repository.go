package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/evaluia/examcore-backend/internal/model"
	"github.com/evaluia/examcore-backend/internal/store"
)

// AttemptRepository handles exam attempt data access.
type AttemptRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

const attemptColumns = `id, session_id, user_id, questions, answers, completed, completed_at, created_at`

func scanAttempt(row interface{ Scan(...any) error }) (*model.ExamAttempt, error) {
	a := &model.ExamAttempt{}
	err := row.Scan(&a.ID, &a.SessionID, &a.UserID, &a.Questions, &a.Answers, &a.Completed, &a.CompletedAt, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Create inserts a new attempt with its question and answer snapshots.
func (r *AttemptRepository) Create(ctx context.Context, a *model.ExamAttempt) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO exam_attempts (id, session_id, user_id, questions, answers, completed)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at`,
		a.ID, a.SessionID, a.UserID, a.Questions, a.Answers, a.Completed,
	).Scan(&a.CreatedAt)
	return store.Classify("attempt.create", err)
}

// UpdateAnswers overwrites the snapshots of an existing attempt.
func (r *AttemptRepository) UpdateAnswers(ctx context.Context, id uuid.UUID, questions, answers json.RawMessage) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE exam_attempts SET questions = $1, answers = $2 WHERE id = $3`,
		questions, answers, id)
	if err != nil {
		return store.Classify("attempt.update_answers", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// MarkCompleted stamps the attempt completed.
func (r *AttemptRepository) MarkCompleted(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE exam_attempts SET completed = TRUE, completed_at = CURRENT_TIMESTAMP WHERE id = $1`, id)
	if err != nil {
		return store.Classify("attempt.mark_completed", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListBySession retrieves a session's attempts, oldest first.
func (r *AttemptRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.ExamAttempt, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+attemptColumns+` FROM exam_attempts WHERE session_id = $1 ORDER BY created_at`, sessionID)
	if err != nil {
		return nil, store.Classify("attempt.list_by_session", err)
	}
	defer rows.Close()

	var attempts []model.ExamAttempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, store.Classify("attempt.list_by_session", err)
		}
		attempts = append(attempts, *a)
	}
	return attempts, store.Classify("attempt.list_by_session", rows.Err())
}
