package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/evaluia/examcore-backend/internal/model"
	"github.com/evaluia/examcore-backend/internal/netmon"
	"github.com/evaluia/examcore-backend/internal/queue"
	"github.com/evaluia/examcore-backend/internal/store"
)

// Outcome describes how a submission ended up.
type Outcome string

const (
	// OutcomeCommitted means the submission reached the store.
	OutcomeCommitted Outcome = "committed"
	// OutcomeQueued means the submission is preserved locally and will be
	// replayed when connectivity returns. Presented to the user the same
	// as a committed submission.
	OutcomeQueued Outcome = "queued"
)

// ReportDispatcher schedules AI report generation for a completed session.
type ReportDispatcher interface {
	Dispatch(ctx context.Context, sessionID uuid.UUID) error
}

// SubmissionService is the single decision point for whether a submission
// can reach the store now and, if not, how it is preserved.
//
// Per submission: offline → enqueue; online → attempt the ordered commit;
// network failure mid-commit → enqueue; any other failure → surfaced.
type SubmissionService struct {
	monitor     *netmon.Monitor
	queue       *queue.DurableQueue
	sessions    SessionStore
	attempts    AttemptStore
	assignments AssignmentStore
	profiles    ProfileStore
	reports     ReportDispatcher // nil disables report scheduling
	log         zerolog.Logger
}

// NewSubmissionService creates a SubmissionService.
func NewSubmissionService(
	monitor *netmon.Monitor,
	q *queue.DurableQueue,
	sessions SessionStore,
	attempts AttemptStore,
	assignments AssignmentStore,
	profiles ProfileStore,
	reports ReportDispatcher,
	log zerolog.Logger,
) *SubmissionService {
	return &SubmissionService{
		monitor:     monitor,
		queue:       q,
		sessions:    sessions,
		attempts:    attempts,
		assignments: assignments,
		profiles:    profiles,
		reports:     reports,
		log:         log.With().Str("component", "submission_service").Logger(),
	}
}

// Submit runs the coordinator state machine for one submission.
func (s *SubmissionService) Submit(ctx context.Context, sub model.PendingSubmission) (Outcome, error) {
	if err := s.validate(&sub); err != nil {
		return "", err
	}

	sub.CreatedAt = time.Now()
	sub.ID = model.SubmissionID(sub.ExamID, sub.UserID, sub.CreatedAt)
	sub.MaxRetries = model.DefaultQueueMaxRetries

	if !s.monitor.Status().IsOnline {
		// No remote write is attempted while offline.
		if err := s.queue.Enqueue(sub); err != nil {
			return "", err
		}
		s.log.Info().Str("submission_id", sub.ID).Msg("Offline, submission queued")
		return OutcomeQueued, nil
	}

	if err := s.commit(ctx, &sub); err != nil {
		if store.IsNetwork(err) {
			s.monitor.SetOffline()
			if qerr := s.queue.Enqueue(sub); qerr != nil {
				return "", qerr
			}
			s.log.Warn().
				Err(err).
				Str("submission_id", sub.ID).
				Msg("Store write failed, submission queued")
			return OutcomeQueued, nil
		}
		return "", err
	}

	return OutcomeCommitted, nil
}

// validate is the data-integrity gate for anonymous submissions: missing
// preconditions are fatal, never retried, never queued.
func (s *SubmissionService) validate(sub *model.PendingSubmission) error {
	if !sub.Anonymous {
		return nil
	}
	switch {
	case sub.SessionID == nil:
		return &store.ValidationError{Reason: "anonymous submission requires a session id"}
	case sub.UserID == uuid.Nil:
		return &store.ValidationError{Reason: "anonymous submission requires a user reference"}
	case len(sub.Questions) == 0:
		return &store.ValidationError{Reason: "anonymous submission requires a question snapshot"}
	case len(sub.Answers) == 0:
		return &store.ValidationError{Reason: "anonymous submission requires an answer snapshot"}
	}
	return nil
}

// commit applies the strictly ordered side effects:
// data write → attempt completion → session completion → kiosk lockout.
// Failures in the first two steps are returned (the submission is then
// queued or surfaced); failures in the later steps are logged only and
// caught up by Reconcile. Nothing is rolled back.
func (s *SubmissionService) commit(ctx context.Context, sub *model.PendingSubmission) error {
	// 1. Data write.
	if sub.AttemptID != nil {
		if err := s.attempts.UpdateAnswers(ctx, *sub.AttemptID, sub.Questions, sub.Answers); err != nil {
			return err
		}
	} else {
		attempt := &model.ExamAttempt{
			ID:        uuid.New(),
			UserID:    sub.UserID,
			Questions: sub.Questions,
			Answers:   sub.Answers,
		}
		if sub.SessionID != nil {
			attempt.SessionID = *sub.SessionID
		}
		if err := s.attempts.Create(ctx, attempt); err != nil {
			return err
		}
		sub.AttemptID = &attempt.ID
	}

	// 2. Attempt completion.
	if err := s.attempts.MarkCompleted(ctx, *sub.AttemptID); err != nil {
		return err
	}

	// 3. Session completion.
	if sub.SessionID != nil {
		if err := s.sessions.SetStatus(ctx, *sub.SessionID, model.SessionStatusCompleted); err != nil {
			s.log.Error().
				Err(err).
				Str("session_id", sub.SessionID.String()).
				Str("step", "session_completion").
				Msg("Step failed, continuing; reconcile will catch up")
		} else if s.reports != nil {
			if err := s.reports.Dispatch(ctx, *sub.SessionID); err != nil {
				s.log.Error().
					Err(err).
					Str("session_id", sub.SessionID.String()).
					Str("step", "report_dispatch").
					Msg("Step failed, continuing")
			}
		}
	}

	// 4. Kiosk lockout: one shot, prevents retakes from the same terminal.
	if sub.KioskMode && sub.AssignmentID != nil {
		if err := s.assignments.SetStatus(ctx, *sub.AssignmentID, model.AssignmentStatusCompleted); err != nil {
			s.log.Error().
				Err(err).
				Str("assignment_id", sub.AssignmentID.String()).
				Str("step", "assignment_completion").
				Msg("Step failed, continuing; reconcile will catch up")
		}
		if err := s.profiles.SetCanLogin(ctx, sub.UserID, false); err != nil {
			s.log.Error().
				Err(err).
				Str("user_id", sub.UserID.String()).
				Str("step", "kiosk_lockout").
				Msg("Step failed, continuing; reconcile will catch up")
		}
	}

	s.log.Info().
		Str("submission_id", sub.ID).
		Str("attempt_id", sub.AttemptID.String()).
		Msg("Submission committed")

	return nil
}

// Replay pushes retryable queued submissions through the normal commit
// path, FIFO. A network failure stops the pass (still offline); rejections
// burn a retry and move on. Returns how many submissions were committed.
func (s *SubmissionService) Replay(ctx context.Context) (int, error) {
	replayed := 0

	for _, item := range s.queue.Retryable() {
		err := s.commit(ctx, &item)
		if err == nil {
			if derr := s.queue.DequeueOnSuccess(item.ID); derr != nil {
				s.log.Error().Err(derr).Str("submission_id", item.ID).Msg("Dequeue failed after replay")
			}
			replayed++
			continue
		}

		// commit may have created the attempt row before failing; persist
		// the assigned id so the next pass updates that row instead of
		// creating a duplicate.
		if uerr := s.queue.Update(item.ID, item); uerr != nil {
			s.log.Error().Err(uerr).Str("submission_id", item.ID).Msg("Queue update failed")
		}
		if ierr := s.queue.IncrementRetry(item.ID); ierr != nil {
			s.log.Error().Err(ierr).Str("submission_id", item.ID).Msg("Retry bump failed")
		}

		if store.IsNetwork(err) {
			s.monitor.SetOffline()
			s.log.Warn().Err(err).Msg("Replay hit a network failure, stopping pass")
			return replayed, err
		}

		s.log.Error().
			Err(err).
			Str("submission_id", item.ID).
			Msg("Replay rejected by store")
	}

	if replayed > 0 {
		s.log.Info().Int("count", replayed).Msg("Replayed queued submissions")
	}
	return replayed, nil
}

// Reconcile is the idempotent catch-up step for partially completed
// submissions: any completed attempt implies a completed session, and a
// completed kiosk assignment implies the lockout. Safe to re-run.
func (s *SubmissionService) Reconcile(ctx context.Context, sessionID uuid.UUID) error {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return err
	}

	attempts, err := s.attempts.ListBySession(ctx, sessionID)
	if err != nil {
		return err
	}

	anyCompleted := false
	for _, a := range attempts {
		if a.Completed {
			anyCompleted = true
			break
		}
	}

	if anyCompleted && session.Status != model.SessionStatusCompleted {
		if err := s.sessions.SetStatus(ctx, sessionID, model.SessionStatusCompleted); err != nil {
			return err
		}
		session.Status = model.SessionStatusCompleted
		s.log.Info().Str("session_id", sessionID.String()).Msg("Reconciled session completion")
	}

	if session.Status == model.SessionStatusCompleted && session.ExamID != nil {
		assignment, err := s.assignments.GetByUserAndExam(ctx, session.UserID, *session.ExamID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil
			}
			return err
		}
		if assignment.KioskMode && assignment.Status != model.AssignmentStatusCompleted {
			if err := s.assignments.SetStatus(ctx, assignment.ID, model.AssignmentStatusCompleted); err != nil {
				return err
			}
			if err := s.profiles.SetCanLogin(ctx, session.UserID, false); err != nil {
				return err
			}
			s.log.Info().
				Str("assignment_id", assignment.ID.String()).
				Msg("Reconciled kiosk lockout")
		}
	}

	return nil
}
