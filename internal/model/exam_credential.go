package model

import (
	"time"

	"github.com/google/uuid"
)

// ExamCredential is a username/password pair bound to one exam or test.
// The lifecycle treats it as an opaque gate that must be validated before a
// session may start.
type ExamCredential struct {
	ID           uuid.UUID  `json:"id"`
	ExamID       *uuid.UUID `json:"exam_id,omitempty"`
	TestID       *uuid.UUID `json:"test_id,omitempty"`
	UserID       uuid.UUID  `json:"user_id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	SingleUse    bool       `json:"single_use"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	UsedAt       *time.Time `json:"used_at,omitempty"`
	Company      string     `json:"company"`
	CreatedAt    time.Time  `json:"created_at"`
}

// IssueCredentialRequest is the admin payload for issuing a credential.
// When UserID is omitted a placeholder participant profile is created for
// anonymous walk-up use.
type IssueCredentialRequest struct {
	ExamID         *uuid.UUID `json:"exam_id" binding:"omitempty"`
	TestID         *uuid.UUID `json:"test_id" binding:"omitempty"`
	UserID         *uuid.UUID `json:"user_id" binding:"omitempty"`
	SingleUse      bool       `json:"single_use"`
	ExpiresInHours int        `json:"expires_in_hours" binding:"omitempty,min=1,max=8760"`
	NotifyEmail    string     `json:"notify_email" binding:"omitempty,email"`
	NotifyName     string     `json:"notify_name" binding:"omitempty,max=120"`
}

// CredentialLoginRequest exchanges an issued credential for a session.
type CredentialLoginRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Password string `json:"password" binding:"required,min=4,max=64"`
}
