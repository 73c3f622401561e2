package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ExamAttempt is one concrete submission of answers within a session.
type ExamAttempt struct {
	ID          uuid.UUID       `json:"id"`
	SessionID   uuid.UUID       `json:"session_id"`
	UserID      uuid.UUID       `json:"user_id"`
	Questions   json.RawMessage `json:"questions"`
	Answers     json.RawMessage `json:"answers"`
	Completed   bool            `json:"completed"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}
