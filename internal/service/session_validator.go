package service

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/evaluia/examcore-backend/internal/model"
)

// Verdict is the result of a session usability check.
type Verdict struct {
	IsValid bool   `json:"is_valid"`
	Message string `json:"message,omitempty"`
}

// SessionValidator decides whether a fully loaded session is still usable.
// Pure decision logic: no I/O, no mutation; callers act on the verdict.
type SessionValidator struct {
	log zerolog.Logger
}

// NewSessionValidator creates a SessionValidator.
func NewSessionValidator(log zerolog.Logger) *SessionValidator {
	return &SessionValidator{
		log: log.With().Str("component", "session_validator").Logger(),
	}
}

// Validate applies the usability rules in order. subjectActive is the
// active flag of the associated exam or test; now is injected so callers
// and tests control the clock.
func (v *SessionValidator) Validate(s *model.ExamSession, subjectActive bool, now time.Time) Verdict {
	if !subjectActive {
		return Verdict{IsValid: false, Message: "exam not active"}
	}

	switch s.Status {
	case model.SessionStatusCompleted:
		return Verdict{IsValid: false, Message: "already completed"}
	case model.SessionStatusExpired:
		return Verdict{IsValid: false, Message: "session expired"}
	case model.SessionStatusAttemptLimitReached:
		return Verdict{IsValid: false, Message: "attempt limit reached"}
	}

	// Attempts at or over the limit do not invalidate on their own. This is
	// a deliberately permissive legacy policy: warn and continue.
	if s.AttemptsTaken >= s.MaxAttempts {
		v.log.Warn().
			Str("session_id", s.ID.String()).
			Int("attempts_taken", s.AttemptsTaken).
			Int("max_attempts", s.MaxAttempts).
			Msg("Session at attempt limit, continuing anyway")
	}

	if s.EndsAt != nil && now.After(*s.EndsAt) {
		// Psychometric sessions that never produced a real attempt may
		// still be restarted after their window lapses.
		if s.Kind == model.KindPsychometric && s.AttemptsTaken == 0 {
			return Verdict{IsValid: true}
		}
		return Verdict{IsValid: false, Message: "time expired"}
	}

	return Verdict{IsValid: true}
}
