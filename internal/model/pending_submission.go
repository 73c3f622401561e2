package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DefaultQueueMaxRetries bounds replay attempts for a queued submission.
// Once exceeded the record becomes inert: kept for diagnostics, excluded
// from replay.
const DefaultQueueMaxRetries = 5

// PendingSubmission is a locally durable record of exam answers that could
// not be committed to the store. The question and answer snapshots are kept
// as raw JSON so replay writes exactly what the user submitted.
type PendingSubmission struct {
	ID           string          `json:"id"`
	ExamID       uuid.UUID       `json:"exam_id"`
	UserID       uuid.UUID       `json:"user_id"`
	SessionID    *uuid.UUID      `json:"session_id,omitempty"`
	AttemptID    *uuid.UUID      `json:"attempt_id,omitempty"`
	Anonymous    bool            `json:"anonymous"`
	KioskMode    bool            `json:"kiosk_mode"`
	AssignmentID *uuid.UUID      `json:"assignment_id,omitempty"`
	Questions    json.RawMessage `json:"questions"`
	Answers      json.RawMessage `json:"answers"`
	CreatedAt    time.Time       `json:"created_at"`
	RetryCount   int             `json:"retry_count"`
	MaxRetries   int             `json:"max_retries"`
}

// SubmissionID builds the synthetic queue key for an exam/user pair.
func SubmissionID(examID, userID uuid.UUID, at time.Time) string {
	return fmt.Sprintf("%s:%s:%d", examID, userID, at.UnixNano())
}

// Exhausted reports whether the record has used all of its retries.
func (p *PendingSubmission) Exhausted() bool {
	return p.RetryCount >= p.MaxRetries
}

// SubmitRequest is the participant payload for submitting a finished exam.
type SubmitRequest struct {
	ExamID       uuid.UUID       `json:"exam_id" binding:"required"`
	SessionID    *uuid.UUID      `json:"session_id" binding:"omitempty"`
	AttemptID    *uuid.UUID      `json:"attempt_id" binding:"omitempty"`
	Anonymous    bool            `json:"anonymous"`
	KioskMode    bool            `json:"kiosk_mode"`
	AssignmentID *uuid.UUID      `json:"assignment_id" binding:"omitempty"`
	Questions    json.RawMessage `json:"questions" binding:"required"`
	Answers      json.RawMessage `json:"answers" binding:"required"`
}
