package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/evaluia/examcore-backend/internal/model"
	"github.com/evaluia/examcore-backend/internal/store"
)

// ReportRepository handles AI report data access.
type ReportRepository struct {
	pool *pgxpool.Pool
}

// NewReportRepository creates a new ReportRepository.
func NewReportRepository(pool *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{pool: pool}
}

const reportColumns = `id, session_id, user_id, kind, status, body, created_at, updated_at`

// Upsert writes a report, replacing any earlier one for the same session.
// Generation is retried by the worker, so the write must be idempotent.
func (r *ReportRepository) Upsert(ctx context.Context, rep *model.Report) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO reports (id, session_id, user_id, kind, status, body)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (session_id) DO UPDATE
		 SET status = EXCLUDED.status, body = EXCLUDED.body, updated_at = CURRENT_TIMESTAMP
		 RETURNING id, created_at, updated_at`,
		rep.ID, rep.SessionID, rep.UserID, rep.Kind, rep.Status, rep.Body,
	).Scan(&rep.ID, &rep.CreatedAt, &rep.UpdatedAt)
	return store.Classify("report.upsert", err)
}

// GetBySession retrieves the report for a session.
func (r *ReportRepository) GetBySession(ctx context.Context, sessionID uuid.UUID) (*model.Report, error) {
	rep := &model.Report{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+reportColumns+` FROM reports WHERE session_id = $1`, sessionID,
	).Scan(&rep.ID, &rep.SessionID, &rep.UserID, &rep.Kind, &rep.Status, &rep.Body, &rep.CreatedAt, &rep.UpdatedAt)
	if err != nil {
		return nil, store.Classify("report.get", err)
	}
	return rep, nil
}
