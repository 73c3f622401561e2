package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/evaluia/examcore-backend/internal/model"
	"github.com/evaluia/examcore-backend/internal/store"
)

// AssignmentRepository handles exam assignment data access.
type AssignmentRepository struct {
	pool *pgxpool.Pool
}

// NewAssignmentRepository creates a new AssignmentRepository.
func NewAssignmentRepository(pool *pgxpool.Pool) *AssignmentRepository {
	return &AssignmentRepository{pool: pool}
}

const assignmentColumns = `id, exam_id, user_id, status, company, kiosk_mode, created_at, updated_at`

func scanAssignment(row interface{ Scan(...any) error }) (*model.ExamAssignment, error) {
	a := &model.ExamAssignment{}
	err := row.Scan(&a.ID, &a.ExamID, &a.UserID, &a.Status, &a.Company, &a.KioskMode, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Create inserts a new assignment.
func (r *AssignmentRepository) Create(ctx context.Context, a *model.ExamAssignment) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO exam_assignments (id, exam_id, user_id, status, company, kiosk_mode)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at, updated_at`,
		a.ID, a.ExamID, a.UserID, a.Status, a.Company, a.KioskMode,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	return store.Classify("assignment.create", err)
}

// GetByUserAndExam retrieves the assignment linking a user to an exam.
func (r *AssignmentRepository) GetByUserAndExam(ctx context.Context, userID, examID uuid.UUID) (*model.ExamAssignment, error) {
	a, err := scanAssignment(r.pool.QueryRow(ctx,
		`SELECT `+assignmentColumns+` FROM exam_assignments WHERE user_id = $1 AND exam_id = $2`, userID, examID))
	if err != nil {
		return nil, store.Classify("assignment.get", err)
	}
	return a, nil
}

// SetStatus moves the assignment to the given state.
func (r *AssignmentRepository) SetStatus(ctx context.Context, id uuid.UUID, status model.AssignmentStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE exam_assignments SET status = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`, status, id)
	if err != nil {
		return store.Classify("assignment.set_status", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListByUser retrieves a user's assignments, newest first.
func (r *AssignmentRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.ExamAssignment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+assignmentColumns+` FROM exam_assignments WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, store.Classify("assignment.list_by_user", err)
	}
	defer rows.Close()

	var assignments []model.ExamAssignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, store.Classify("assignment.list_by_user", err)
		}
		assignments = append(assignments, *a)
	}
	return assignments, store.Classify("assignment.list_by_user", rows.Err())
}
