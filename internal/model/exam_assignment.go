package model

import (
	"time"

	"github.com/google/uuid"
)

// AssignmentStatus enumerates exam assignment states.
type AssignmentStatus string

const (
	AssignmentStatusAssigned  AssignmentStatus = "assigned"
	AssignmentStatusCompleted AssignmentStatus = "completed"
)

// ExamAssignment links a user to an exam they are expected to take.
// Kiosk-mode completion marks the assignment completed as part of the
// one-shot terminal lockout.
type ExamAssignment struct {
	ID        uuid.UUID        `json:"id"`
	ExamID    uuid.UUID        `json:"exam_id"`
	UserID    uuid.UUID        `json:"user_id"`
	Status    AssignmentStatus `json:"status"`
	Company   string           `json:"company"`
	KioskMode bool             `json:"kiosk_mode"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// CreateAssignmentRequest is the admin payload for assigning an exam.
type CreateAssignmentRequest struct {
	ExamID    uuid.UUID `json:"exam_id" binding:"required"`
	UserID    uuid.UUID `json:"user_id" binding:"required"`
	KioskMode bool      `json:"kiosk_mode"`
}
