package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/evaluia/examcore-backend/internal/model"
	"github.com/evaluia/examcore-backend/internal/store"
)

// OpError labels which lifecycle operation failed while preserving the
// classified cause for callers that unwrap it.
type OpError struct {
	Op  string
	Err error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("session %s: %v", e.Op, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

// SessionService owns all remote state transitions for exam sessions.
// Operations carry no internal retries beyond the configured policy; a
// surfaced failure means no partial state may be assumed committed.
type SessionService struct {
	sessions SessionStore
	exams    ExamStore
	tests    TestStore
	profiles ProfileStore
	retry    RetryPolicy
	log      zerolog.Logger
}

// NewSessionService creates a SessionService.
func NewSessionService(
	sessions SessionStore,
	exams ExamStore,
	tests TestStore,
	profiles ProfileStore,
	retry RetryPolicy,
	log zerolog.Logger,
) *SessionService {
	return &SessionService{
		sessions: sessions,
		exams:    exams,
		tests:    tests,
		profiles: profiles,
		retry:    retry,
		log:      log.With().Str("component", "session_service").Logger(),
	}
}

// Create opens a pending session for the user against exactly one exam or
// test, with the tenant binding copied from the user's profile.
func (s *SessionService) Create(ctx context.Context, userID uuid.UUID, req model.CreateSessionRequest) (*model.ExamSession, error) {
	if (req.ExamID == nil) == (req.TestID == nil) {
		return nil, &store.ValidationError{Reason: "exactly one of exam_id or test_id must be set"}
	}

	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, &OpError{Op: "create", Err: err}
	}

	var kind model.TestKind
	if req.ExamID != nil {
		exam, err := s.exams.GetByID(ctx, *req.ExamID)
		if err != nil {
			return nil, &OpError{Op: "create", Err: err}
		}
		kind = exam.Kind
	} else {
		if _, err := s.tests.GetByID(ctx, *req.TestID); err != nil {
			return nil, &OpError{Op: "create", Err: err}
		}
		kind = model.KindPsychometric
	}

	session := &model.ExamSession{
		ID:          uuid.New(),
		UserID:      userID,
		ExamID:      req.ExamID,
		TestID:      req.TestID,
		Kind:        kind,
		Status:      model.SessionStatusPending,
		MaxAttempts: model.DefaultMaxAttempts,
		Company:     profile.Company,
	}

	err = s.retry.Do(ctx, s.log, "create", func() error {
		return s.sessions.Create(ctx, session)
	})
	if err != nil {
		return nil, &OpError{Op: "create", Err: err}
	}

	s.log.Info().
		Str("session_id", session.ID.String()).
		Str("user_id", userID.String()).
		Str("kind", string(kind)).
		Msg("Session created")

	return session, nil
}

// Start transitions a session into its timed window. A session that has
// never actually started (no start time, or still pending) gets its start
// time stamped and, for non-psychometric kinds only, its attempt counter
// incremented. The end time is refreshed on every call. The session is
// persisted and reloaded before returning.
func (s *SessionService) Start(ctx context.Context, sessionID uuid.UUID) (*model.ExamSession, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, &OpError{Op: "start", Err: err}
	}

	duration, err := s.windowFor(ctx, session)
	if err != nil {
		return nil, &OpError{Op: "start", Err: err}
	}

	now := time.Now()
	if session.StartedAt == nil || session.Status == model.SessionStatusPending {
		session.StartedAt = &now
		session.Status = model.SessionStatusStarted
		if session.Kind != model.KindPsychometric {
			session.AttemptsTaken++
		}
	}
	endsAt := now.Add(duration)
	session.EndsAt = &endsAt

	err = s.retry.Do(ctx, s.log, "start", func() error {
		return s.sessions.Update(ctx, session)
	})
	if err != nil {
		return nil, &OpError{Op: "start", Err: err}
	}

	reloaded, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, &OpError{Op: "start", Err: err}
	}

	s.log.Info().
		Str("session_id", sessionID.String()).
		Int("attempts_taken", reloaded.AttemptsTaken).
		Time("ends_at", endsAt).
		Msg("Session started")

	return reloaded, nil
}

// IncrementAttempt unconditionally bumps the attempt counter. Used when a
// new attempt is explicitly begun outside the Start path.
func (s *SessionService) IncrementAttempt(ctx context.Context, sessionID uuid.UUID) error {
	err := s.retry.Do(ctx, s.log, "increment", func() error {
		return s.sessions.IncrementAttempts(ctx, sessionID)
	})
	if err != nil {
		return &OpError{Op: "increment", Err: err}
	}
	return nil
}

// Complete marks a session completed. On failure the caller must not assume
// the exam was recorded and should rely on the submission queue.
func (s *SessionService) Complete(ctx context.Context, sessionID uuid.UUID) error {
	err := s.retry.Do(ctx, s.log, "complete", func() error {
		return s.sessions.SetStatus(ctx, sessionID, model.SessionStatusCompleted)
	})
	if err != nil {
		return &OpError{Op: "complete", Err: err}
	}
	return nil
}

// Get loads a session by id.
func (s *SessionService) Get(ctx context.Context, sessionID uuid.UUID) (*model.ExamSession, error) {
	return s.sessions.GetByID(ctx, sessionID)
}

// ListByUser returns all sessions owned by a user.
func (s *SessionService) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.ExamSession, error) {
	return s.sessions.ListByUser(ctx, userID)
}

// Purge hard-deletes a session. Administrative use only.
func (s *SessionService) Purge(ctx context.Context, sessionID uuid.UUID) error {
	return s.sessions.Delete(ctx, sessionID)
}

// SubjectActive loads the active flag of the session's exam or test.
func (s *SessionService) SubjectActive(ctx context.Context, session *model.ExamSession) (bool, error) {
	if session.ExamID != nil {
		exam, err := s.exams.GetByID(ctx, *session.ExamID)
		if err != nil {
			return false, err
		}
		return exam.Active, nil
	}
	if session.TestID != nil {
		test, err := s.tests.GetByID(ctx, *session.TestID)
		if err != nil {
			return false, err
		}
		return test.Active, nil
	}
	return false, nil
}

// windowFor resolves the exam window: the exam's configured duration, or
// the psychometric default when the test carries none.
func (s *SessionService) windowFor(ctx context.Context, session *model.ExamSession) (time.Duration, error) {
	if session.Kind == model.KindPsychometric {
		if session.TestID != nil {
			test, err := s.tests.GetByID(ctx, *session.TestID)
			if err != nil {
				return 0, err
			}
			if test.DurationMinutes > 0 {
				return time.Duration(test.DurationMinutes) * time.Minute, nil
			}
		}
		return model.DefaultPsychometricDuration, nil
	}

	if session.ExamID == nil {
		return 0, &store.ValidationError{Reason: "session has no exam reference"}
	}
	exam, err := s.exams.GetByID(ctx, *session.ExamID)
	if err != nil {
		return 0, err
	}
	return time.Duration(exam.DurationMinutes) * time.Minute, nil
}
