package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/evaluia/examcore-backend/internal/model"
)

// The store interfaces below are the service layer's view of persistence.
// They are implemented by the pgx repositories and by in-memory fakes in
// tests; all errors they return are classified by the store package.

// SessionStore persists exam sessions.
type SessionStore interface {
	Create(ctx context.Context, s *model.ExamSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.ExamSession, error)
	Update(ctx context.Context, s *model.ExamSession) error
	IncrementAttempts(ctx context.Context, id uuid.UUID) error
	SetStatus(ctx context.Context, id uuid.UUID, status model.SessionStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.ExamSession, error)
}

// ExamStore reads exam definitions.
type ExamStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error)
}

// TestStore reads psychometric test definitions.
type TestStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.PsychometricTest, error)
}

// ProfileStore persists platform users.
type ProfileStore interface {
	Create(ctx context.Context, p *model.Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Profile, error)
	GetByEmail(ctx context.Context, email string) (*model.Profile, error)
	SetCanLogin(ctx context.Context, id uuid.UUID, canLogin bool) error
}

// AttemptStore persists answer submissions within a session.
type AttemptStore interface {
	Create(ctx context.Context, a *model.ExamAttempt) error
	UpdateAnswers(ctx context.Context, id uuid.UUID, questions, answers json.RawMessage) error
	MarkCompleted(ctx context.Context, id uuid.UUID) error
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.ExamAttempt, error)
}

// AssignmentStore persists exam assignments.
type AssignmentStore interface {
	Create(ctx context.Context, a *model.ExamAssignment) error
	GetByUserAndExam(ctx context.Context, userID, examID uuid.UUID) (*model.ExamAssignment, error)
	SetStatus(ctx context.Context, id uuid.UUID, status model.AssignmentStatus) error
}

// CredentialStore persists issued exam credentials.
type CredentialStore interface {
	Create(ctx context.Context, c *model.ExamCredential) error
	GetByUsername(ctx context.Context, username string) (*model.ExamCredential, error)
	MarkUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) error
}

// ReportStore persists AI-generated reports.
type ReportStore interface {
	Upsert(ctx context.Context, r *model.Report) error
	GetBySession(ctx context.Context, sessionID uuid.UUID) (*model.Report, error)
}
