package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/evaluia/examcore-backend/internal/model"
	"github.com/evaluia/examcore-backend/internal/store"
)

// TestRepository handles psychometric test definition data access.
type TestRepository struct {
	pool *pgxpool.Pool
}

// NewTestRepository creates a new TestRepository.
func NewTestRepository(pool *pgxpool.Pool) *TestRepository {
	return &TestRepository{pool: pool}
}

const testColumns = `id, title, variant, company, duration_minutes, active, questions, created_at, updated_at`

func scanTest(row interface{ Scan(...any) error }) (*model.PsychometricTest, error) {
	t := &model.PsychometricTest{}
	err := row.Scan(&t.ID, &t.Title, &t.Variant, &t.Company, &t.DurationMinutes, &t.Active, &t.Questions, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Create inserts a new psychometric test.
func (r *TestRepository) Create(ctx context.Context, t *model.PsychometricTest) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO psychometric_tests (id, title, variant, company, duration_minutes, active, questions)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at, updated_at`,
		t.ID, t.Title, t.Variant, t.Company, t.DurationMinutes, t.Active, t.Questions,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
	return store.Classify("test.create", err)
}

// GetByID retrieves a psychometric test by ID.
func (r *TestRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.PsychometricTest, error) {
	t, err := scanTest(r.pool.QueryRow(ctx,
		`SELECT `+testColumns+` FROM psychometric_tests WHERE id = $1`, id))
	if err != nil {
		return nil, store.Classify("test.get", err)
	}
	return t, nil
}

// Update modifies a psychometric test definition.
func (r *TestRepository) Update(ctx context.Context, t *model.PsychometricTest) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE psychometric_tests SET title = $1, duration_minutes = $2, active = $3, questions = $4, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $5`,
		t.Title, t.DurationMinutes, t.Active, t.Questions, t.ID)
	if err != nil {
		return store.Classify("test.update", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// SetActive toggles whether sessions can run against this test.
func (r *TestRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE psychometric_tests SET active = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
		active, id)
	if err != nil {
		return store.Classify("test.set_active", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Delete removes a psychometric test definition.
func (r *TestRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM psychometric_tests WHERE id = $1`, id)
	if err != nil {
		return store.Classify("test.delete", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListByCompany retrieves all psychometric tests within a tenant.
func (r *TestRepository) ListByCompany(ctx context.Context, company string) ([]model.PsychometricTest, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+testColumns+` FROM psychometric_tests WHERE company = $1 ORDER BY created_at DESC`, company)
	if err != nil {
		return nil, store.Classify("test.list", err)
	}
	defer rows.Close()

	var tests []model.PsychometricTest
	for rows.Next() {
		t, err := scanTest(rows)
		if err != nil {
			return nil, store.Classify("test.list", err)
		}
		tests = append(tests, *t)
	}
	return tests, store.Classify("test.list", rows.Err())
}
