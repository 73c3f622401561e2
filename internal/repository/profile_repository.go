package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/evaluia/examcore-backend/internal/model"
	"github.com/evaluia/examcore-backend/internal/store"
)

// ProfileRepository handles platform user data access.
type ProfileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository creates a new ProfileRepository.
func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

const profileColumns = `id, name, email, password_hash, role, company, can_login, created_at, updated_at`

func scanProfile(row interface{ Scan(...any) error }) (*model.Profile, error) {
	p := &model.Profile{}
	err := row.Scan(&p.ID, &p.Name, &p.Email, &p.PasswordHash, &p.Role, &p.Company, &p.CanLogin, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Create inserts a new profile.
func (r *ProfileRepository) Create(ctx context.Context, p *model.Profile) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO profiles (id, name, email, password_hash, role, company, can_login)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at, updated_at`,
		p.ID, p.Name, p.Email, p.PasswordHash, p.Role, p.Company, p.CanLogin,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	return store.Classify("profile.create", err)
}

// GetByID retrieves a profile by ID.
func (r *ProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	p, err := scanProfile(r.pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id))
	if err != nil {
		return nil, store.Classify("profile.get", err)
	}
	return p, nil
}

// GetByEmail retrieves a profile by email.
func (r *ProfileRepository) GetByEmail(ctx context.Context, email string) (*model.Profile, error) {
	p, err := scanProfile(r.pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE email = $1`, email))
	if err != nil {
		return nil, store.Classify("profile.get_by_email", err)
	}
	return p, nil
}

// SetCanLogin flips the login gate for a profile. Used by the kiosk lockout.
func (r *ProfileRepository) SetCanLogin(ctx context.Context, id uuid.UUID, canLogin bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE profiles SET can_login = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
		canLogin, id)
	if err != nil {
		return store.Classify("profile.set_can_login", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListByCompany retrieves all profiles within a tenant.
func (r *ProfileRepository) ListByCompany(ctx context.Context, company string) ([]model.Profile, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE company = $1 ORDER BY name`, company)
	if err != nil {
		return nil, store.Classify("profile.list", err)
	}
	defer rows.Close()

	var profiles []model.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, store.Classify("profile.list", err)
		}
		profiles = append(profiles, *p)
	}
	return profiles, store.Classify("profile.list", rows.Err())
}
