package model

import (
	"time"

	"github.com/google/uuid"
)

// Role enumerates platform user roles.
type Role string

const (
	RoleSuperAdmin  Role = "super_admin"
	RoleExaminer    Role = "examiner"
	RoleParticipant Role = "participant"
)

// Profile represents a platform user within a tenant company.
type Profile struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	Company      string     `json:"company"`
	// CanLogin is cleared by the kiosk lockout after a completed walk-up
	// submission so the terminal cannot be reused for a retake.
	CanLogin  bool      `json:"can_login"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateProfileRequest is the admin payload for creating a platform user.
type CreateProfileRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=120"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Role     Role   `json:"role" binding:"required,oneof=super_admin examiner participant"`
	Company  string `json:"company" binding:"required,min=2,max=120"`
}

// LoginRequest is the payload for admin and participant logins.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
