package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/evaluia/examcore-backend/internal/model"
)

func validatorSession(mutate func(*model.ExamSession)) *model.ExamSession {
	examID := uuid.New()
	s := &model.ExamSession{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		ExamID:      &examID,
		Kind:        model.KindReliability,
		Status:      model.SessionStatusStarted,
		MaxAttempts: model.DefaultMaxAttempts,
	}
	if mutate != nil {
		mutate(s)
	}
	return s
}

func TestSessionValidatorRules(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	tests := []struct {
		name          string
		mutate        func(*model.ExamSession)
		subjectActive bool
		wantValid     bool
		wantMessage   string
	}{
		{
			name:          "inactive subject rejected first",
			mutate:        func(s *model.ExamSession) { s.Status = model.SessionStatusCompleted },
			subjectActive: false,
			wantValid:     false,
			wantMessage:   "exam not active",
		},
		{
			name:          "completed session",
			mutate:        func(s *model.ExamSession) { s.Status = model.SessionStatusCompleted },
			subjectActive: true,
			wantValid:     false,
			wantMessage:   "already completed",
		},
		{
			name:          "expired session",
			mutate:        func(s *model.ExamSession) { s.Status = model.SessionStatusExpired },
			subjectActive: true,
			wantValid:     false,
			wantMessage:   "session expired",
		},
		{
			name:          "attempt limit status",
			mutate:        func(s *model.ExamSession) { s.Status = model.SessionStatusAttemptLimitReached },
			subjectActive: true,
			wantValid:     false,
			wantMessage:   "attempt limit reached",
		},
		{
			name: "attempts at max only warns",
			mutate: func(s *model.ExamSession) {
				s.AttemptsTaken = s.MaxAttempts
				s.EndsAt = &future
			},
			subjectActive: true,
			wantValid:     true,
		},
		{
			name: "attempts over max only warns",
			mutate: func(s *model.ExamSession) {
				s.AttemptsTaken = s.MaxAttempts + 3
				s.EndsAt = &future
			},
			subjectActive: true,
			wantValid:     true,
		},
		{
			name: "time expired",
			mutate: func(s *model.ExamSession) {
				s.AttemptsTaken = 1
				s.EndsAt = &past
			},
			subjectActive: true,
			wantValid:     false,
			wantMessage:   "time expired",
		},
		{
			name: "psychometric with no attempts survives lapsed window",
			mutate: func(s *model.ExamSession) {
				testID := uuid.New()
				s.ExamID = nil
				s.TestID = &testID
				s.Kind = model.KindPsychometric
				s.AttemptsTaken = 0
				s.EndsAt = &past
			},
			subjectActive: true,
			wantValid:     true,
		},
		{
			name: "psychometric with an attempt does not",
			mutate: func(s *model.ExamSession) {
				testID := uuid.New()
				s.ExamID = nil
				s.TestID = &testID
				s.Kind = model.KindPsychometric
				s.AttemptsTaken = 1
				s.EndsAt = &past
			},
			subjectActive: true,
			wantValid:     false,
			wantMessage:   "time expired",
		},
		{
			name:          "no end time is usable",
			mutate:        nil,
			subjectActive: true,
			wantValid:     true,
		},
	}

	v := NewSessionValidator(zerolog.Nop())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := v.Validate(validatorSession(tt.mutate), tt.subjectActive, now)
			if got.IsValid != tt.wantValid {
				t.Fatalf("IsValid = %v, want %v (message %q)", got.IsValid, tt.wantValid, got.Message)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestSessionValidatorRuleOrder(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)

	// A session that trips every rule at once must report the status rule
	// before the clock rule.
	s := validatorSession(func(s *model.ExamSession) {
		s.Status = model.SessionStatusCompleted
		s.AttemptsTaken = 99
		s.EndsAt = &past
	})

	v := NewSessionValidator(zerolog.Nop())

	got := v.Validate(s, true, now)
	if got.IsValid {
		t.Fatal("expected invalid verdict")
	}
	if got.Message != "already completed" {
		t.Errorf("Message = %q, want %q", got.Message, "already completed")
	}

	// And the inactive-subject rule beats everything.
	got = v.Validate(s, false, now)
	if got.Message != "exam not active" {
		t.Errorf("Message = %q, want %q", got.Message, "exam not active")
	}
}
