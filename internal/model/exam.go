package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TestKind distinguishes the assessment families the platform runs.
type TestKind string

const (
	KindReliability  TestKind = "reliability"
	KindPsychometric TestKind = "psychometric"
	KindTurnover     TestKind = "turnover"
)

// Exam represents a reliability or turnover exam definition.
type Exam struct {
	ID              uuid.UUID       `json:"id"`
	Title           string          `json:"title"`
	Kind            TestKind        `json:"kind"`
	Company         string          `json:"company"`
	DurationMinutes int             `json:"duration_minutes"`
	Active          bool            `json:"active"`
	Questions       json.RawMessage `json:"questions"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// CreateExamRequest is the payload for creating a new exam.
type CreateExamRequest struct {
	Title           string          `json:"title" binding:"required,min=3,max=255"`
	Kind            TestKind        `json:"kind" binding:"required,oneof=reliability turnover"`
	DurationMinutes int             `json:"duration_minutes" binding:"required,min=1,max=480"`
	Questions       json.RawMessage `json:"questions" binding:"required"`
}

// UpdateExamRequest is the payload for updating an existing exam.
type UpdateExamRequest struct {
	Title           string          `json:"title" binding:"omitempty,min=3,max=255"`
	DurationMinutes int             `json:"duration_minutes" binding:"omitempty,min=1,max=480"`
	Active          *bool           `json:"active" binding:"omitempty"`
	Questions       json.RawMessage `json:"questions" binding:"omitempty"`
}
