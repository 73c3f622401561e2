package model

import (
	"time"

	"github.com/google/uuid"
)

// ReportStatus enumerates AI report generation states.
type ReportStatus string

const (
	ReportStatusPending ReportStatus = "pending"
	ReportStatusReady   ReportStatus = "ready"
	ReportStatusFailed  ReportStatus = "failed"
)

// Report is an AI-generated narrative for a completed session.
type Report struct {
	ID        uuid.UUID    `json:"id"`
	SessionID uuid.UUID    `json:"session_id"`
	UserID    uuid.UUID    `json:"user_id"`
	Kind      TestKind     `json:"kind"`
	Status    ReportStatus `json:"status"`
	Body      string       `json:"body,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}
