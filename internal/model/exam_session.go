package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus enumerates exam session lifecycle states. Transitions are
// monotonic forward, except that started sessions with zero real attempts
// may be re-started.
type SessionStatus string

const (
	SessionStatusPending             SessionStatus = "pending"
	SessionStatusStarted             SessionStatus = "started"
	SessionStatusCompleted           SessionStatus = "completed"
	SessionStatusExpired             SessionStatus = "expired"
	SessionStatusAttemptLimitReached SessionStatus = "attempt_limit_reached"
)

// DefaultMaxAttempts is applied to newly created sessions.
const DefaultMaxAttempts = 2

// DefaultPsychometricDuration is the exam window applied to psychometric
// kinds that carry no configured duration.
const DefaultPsychometricDuration = 30 * time.Minute

// ExamSession binds a user to one exam or psychometric test attempt context
// and its time window. Exactly one of ExamID/TestID is set.
type ExamSession struct {
	ID            uuid.UUID     `json:"id"`
	UserID        uuid.UUID     `json:"user_id"`
	ExamID        *uuid.UUID    `json:"exam_id,omitempty"`
	TestID        *uuid.UUID    `json:"test_id,omitempty"`
	Kind          TestKind      `json:"kind"`
	Status        SessionStatus `json:"status"`
	StartedAt     *time.Time    `json:"started_at,omitempty"`
	EndsAt        *time.Time    `json:"ends_at,omitempty"`
	AttemptsTaken int           `json:"attempts_taken"`
	MaxAttempts   int           `json:"max_attempts"`
	Company       string        `json:"company"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// SubjectID returns whichever of ExamID/TestID is set.
func (s *ExamSession) SubjectID() uuid.UUID {
	if s.ExamID != nil {
		return *s.ExamID
	}
	if s.TestID != nil {
		return *s.TestID
	}
	return uuid.Nil
}

// CreateSessionRequest is the payload for opening a session.
type CreateSessionRequest struct {
	ExamID *uuid.UUID `json:"exam_id" binding:"omitempty"`
	TestID *uuid.UUID `json:"test_id" binding:"omitempty"`
}
