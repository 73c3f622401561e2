package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/evaluia/examcore-backend/internal/model"
	"github.com/evaluia/examcore-backend/internal/store"
)

// CredentialRepository handles issued exam credential data access.
type CredentialRepository struct {
	pool *pgxpool.Pool
}

// NewCredentialRepository creates a new CredentialRepository.
func NewCredentialRepository(pool *pgxpool.Pool) *CredentialRepository {
	return &CredentialRepository{pool: pool}
}

const credentialColumns = `id, exam_id, test_id, user_id, username, password_hash, single_use, expires_at, used_at, company, created_at`

func scanCredential(row interface{ Scan(...any) error }) (*model.ExamCredential, error) {
	c := &model.ExamCredential{}
	err := row.Scan(&c.ID, &c.ExamID, &c.TestID, &c.UserID, &c.Username, &c.PasswordHash,
		&c.SingleUse, &c.ExpiresAt, &c.UsedAt, &c.Company, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Create inserts a new credential.
func (r *CredentialRepository) Create(ctx context.Context, c *model.ExamCredential) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO exam_credentials (id, exam_id, test_id, user_id, username, password_hash, single_use, expires_at, company)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING created_at`,
		c.ID, c.ExamID, c.TestID, c.UserID, c.Username, c.PasswordHash, c.SingleUse, c.ExpiresAt, c.Company,
	).Scan(&c.CreatedAt)
	return store.Classify("credential.create", err)
}

// GetByUsername retrieves a credential by its generated username.
func (r *CredentialRepository) GetByUsername(ctx context.Context, username string) (*model.ExamCredential, error) {
	c, err := scanCredential(r.pool.QueryRow(ctx,
		`SELECT `+credentialColumns+` FROM exam_credentials WHERE username = $1`, username))
	if err != nil {
		return nil, store.Classify("credential.get", err)
	}
	return c, nil
}

// MarkUsed burns a single-use credential.
func (r *CredentialRepository) MarkUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE exam_credentials SET used_at = $1 WHERE id = $2 AND used_at IS NULL`, usedAt, id)
	if err != nil {
		return store.Classify("credential.mark_used", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListByCompany retrieves all credentials issued within a tenant.
func (r *CredentialRepository) ListByCompany(ctx context.Context, company string) ([]model.ExamCredential, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+credentialColumns+` FROM exam_credentials WHERE company = $1 ORDER BY created_at DESC`, company)
	if err != nil {
		return nil, store.Classify("credential.list", err)
	}
	defer rows.Close()

	var creds []model.ExamCredential
	for rows.Next() {
		c, err := scanCredential(rows)
		if err != nil {
			return nil, store.Classify("credential.list", err)
		}
		creds = append(creds, *c)
	}
	return creds, store.Classify("credential.list", rows.Err())
}
