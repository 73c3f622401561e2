package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/evaluia/examcore-backend/internal/model"
	"github.com/evaluia/examcore-backend/internal/store"
)

// SessionRepository handles exam session data access.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

const sessionColumns = `id, user_id, exam_id, test_id, kind, status, started_at, ends_at, attempts_taken, max_attempts, company, created_at, updated_at`

func scanSession(row interface{ Scan(...any) error }) (*model.ExamSession, error) {
	s := &model.ExamSession{}
	err := row.Scan(&s.ID, &s.UserID, &s.ExamID, &s.TestID, &s.Kind, &s.Status, &s.StartedAt, &s.EndsAt,
		&s.AttemptsTaken, &s.MaxAttempts, &s.Company, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Create inserts a new exam session.
func (r *SessionRepository) Create(ctx context.Context, s *model.ExamSession) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO exam_sessions (id, user_id, exam_id, test_id, kind, status, started_at, ends_at, attempts_taken, max_attempts, company)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING created_at, updated_at`,
		s.ID, s.UserID, s.ExamID, s.TestID, s.Kind, s.Status, s.StartedAt, s.EndsAt, s.AttemptsTaken, s.MaxAttempts, s.Company,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	return store.Classify("session.create", err)
}

// GetByID retrieves an exam session by ID.
func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ExamSession, error) {
	s, err := scanSession(r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM exam_sessions WHERE id = $1`, id))
	if err != nil {
		return nil, store.Classify("session.get", err)
	}
	return s, nil
}

// Update persists the session's lifecycle fields.
func (r *SessionRepository) Update(ctx context.Context, s *model.ExamSession) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE exam_sessions SET status = $1, started_at = $2, ends_at = $3, attempts_taken = $4, max_attempts = $5, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $6`,
		s.Status, s.StartedAt, s.EndsAt, s.AttemptsTaken, s.MaxAttempts, s.ID)
	if err != nil {
		return store.Classify("session.update", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// IncrementAttempts bumps the attempt counter atomically.
func (r *SessionRepository) IncrementAttempts(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE exam_sessions SET attempts_taken = attempts_taken + 1, updated_at = CURRENT_TIMESTAMP WHERE id = $1`, id)
	if err != nil {
		return store.Classify("session.increment_attempts", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// SetStatus moves the session to the given lifecycle state.
func (r *SessionRepository) SetStatus(ctx context.Context, id uuid.UUID, status model.SessionStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE exam_sessions SET status = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`, status, id)
	if err != nil {
		return store.Classify("session.set_status", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Delete removes a session.
func (r *SessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM exam_sessions WHERE id = $1`, id)
	if err != nil {
		return store.Classify("session.delete", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListByUser retrieves all sessions belonging to a user, newest first.
func (r *SessionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.ExamSession, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+sessionColumns+` FROM exam_sessions WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, store.Classify("session.list_by_user", err)
	}
	defer rows.Close()

	var sessions []model.ExamSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, store.Classify("session.list_by_user", err)
		}
		sessions = append(sessions, *s)
	}
	return sessions, store.Classify("session.list_by_user", rows.Err())
}

// ListByCompany retrieves all sessions within a tenant, newest first.
func (r *SessionRepository) ListByCompany(ctx context.Context, company string) ([]model.ExamSession, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+sessionColumns+` FROM exam_sessions WHERE company = $1 ORDER BY created_at DESC`, company)
	if err != nil {
		return nil, store.Classify("session.list_by_company", err)
	}
	defer rows.Close()

	var sessions []model.ExamSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, store.Classify("session.list_by_company", err)
		}
		sessions = append(sessions, *s)
	}
	return sessions, store.Classify("session.list_by_company", rows.Err())
}
