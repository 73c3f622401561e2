package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// PsychometricVariant identifies the instrument behind a psychometric test.
type PsychometricVariant string

const (
	VariantOcean PsychometricVariant = "ocean"
	VariantHTP   PsychometricVariant = "htp"
)

// PsychometricTest represents an OCEAN or HTP projective test definition.
// Psychometric sessions fall back to a 30 minute window when
// DurationMinutes is zero.
type PsychometricTest struct {
	ID              uuid.UUID           `json:"id"`
	Title           string              `json:"title"`
	Variant         PsychometricVariant `json:"variant"`
	Company         string              `json:"company"`
	DurationMinutes int                 `json:"duration_minutes"`
	Active          bool                `json:"active"`
	Questions       json.RawMessage     `json:"questions"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// CreateTestRequest is the payload for creating a psychometric test.
type CreateTestRequest struct {
	Title           string              `json:"title" binding:"required,min=3,max=255"`
	Variant         PsychometricVariant `json:"variant" binding:"required,oneof=ocean htp"`
	DurationMinutes int                 `json:"duration_minutes" binding:"omitempty,min=1,max=480"`
	Questions       json.RawMessage     `json:"questions" binding:"required"`
}

// UpdateTestRequest is the payload for updating a psychometric test.
type UpdateTestRequest struct {
	Title           string          `json:"title" binding:"omitempty,min=3,max=255"`
	DurationMinutes int             `json:"duration_minutes" binding:"omitempty,min=1,max=480"`
	Active          *bool           `json:"active" binding:"omitempty"`
	Questions       json.RawMessage `json:"questions" binding:"omitempty"`
}
