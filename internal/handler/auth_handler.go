package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/evaluia/examcore-backend/internal/middleware"
	"github.com/evaluia/examcore-backend/internal/model"
	"github.com/evaluia/examcore-backend/internal/repository"
	"github.com/evaluia/examcore-backend/internal/response"
	"github.com/evaluia/examcore-backend/internal/service"
	"github.com/evaluia/examcore-backend/internal/validator"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService       *service.AuthService
	credentialService *service.CredentialService
	profiles          *repository.ProfileRepository
	log               zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(
	authService *service.AuthService,
	credentialService *service.CredentialService,
	profiles *repository.ProfileRepository,
	log zerolog.Logger,
) *AuthHandler {
	return &AuthHandler{
		authService:       authService,
		credentialService: credentialService,
		profiles:          profiles,
		log:               log.With().Str("component", "auth_handler").Logger(),
	}
}

// AdminLogin godoc
// POST /api/v1/auth/admin/login
// Validates email + password for an admin role, returns JWT with permissions.
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req model.LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	profile, err := h.profiles.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		return
	}

	if profile.Role != model.RoleSuperAdmin && profile.Role != model.RoleExaminer {
		response.Fail(c, http.StatusForbidden, response.ErrAdminAccessOnly)
		return
	}

	if err := h.authService.CheckPassword(profile.PasswordHash, req.Password); err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		return
	}

	permissions := model.PermissionsFor(profile.Role)
	token, err := h.authService.GenerateAdminToken(profile.ID, profile.Company, permissions)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"token": token,
		"admin": gin.H{
			"id":      profile.ID,
			"name":    profile.Name,
			"email":   profile.Email,
			"role":    profile.Role,
			"company": profile.Company,
		},
		"permissions": permissions,
	})
}

// ParticipantLogin godoc
// POST /api/v1/auth/participant/login
// Validates email + password for a participant, enforces the login gate and
// single-device policy, returns JWT.
func (h *AuthHandler) ParticipantLogin(c *gin.Context) {
	var req model.LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	profile, err := h.profiles.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		return
	}

	if profile.Role != model.RoleParticipant {
		response.Fail(c, http.StatusForbidden, response.ErrParticipantAccessOnly)
		return
	}

	if !profile.CanLogin {
		response.Fail(c, http.StatusForbidden, response.ErrLoginDisabled)
		return
	}

	if err := h.authService.CheckPassword(profile.PasswordHash, req.Password); err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		return
	}

	token, err := h.authService.GenerateParticipantToken(c.Request.Context(), profile.ID, profile.Company)
	if err != nil {
		if errors.Is(err, service.ErrSessionAlreadyActive) {
			response.Fail(c, http.StatusConflict, response.ErrLoginActive)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"token": token,
		"participant": gin.H{
			"id":      profile.ID,
			"name":    profile.Name,
			"company": profile.Company,
		},
	})
}

// CredentialLogin godoc
// POST /api/v1/auth/credential/login
// Exchanges an issued exam credential for a participant JWT bound to the
// credential's user. Single-use credentials are burned once a token has been
// issued, so a failed login does not waste them.
func (h *AuthHandler) CredentialLogin(c *gin.Context) {
	var req model.CredentialLoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	cred, err := h.credentialService.Validate(c.Request.Context(), req.Username, req.Password, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCredentialExpired):
			response.Fail(c, http.StatusUnauthorized, response.ErrCredentialExpired)
		case errors.Is(err, service.ErrCredentialUsed):
			response.Fail(c, http.StatusUnauthorized, response.ErrCredentialUsed)
		case errors.Is(err, service.ErrCredentialInvalid):
			response.Fail(c, http.StatusUnauthorized, response.ErrCredentialInvalid)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	profile, err := h.profiles.GetByID(c.Request.Context(), cred.UserID)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrCredentialInvalid)
		return
	}

	if !profile.CanLogin {
		response.Fail(c, http.StatusForbidden, response.ErrLoginDisabled)
		return
	}

	token, err := h.authService.GenerateParticipantToken(c.Request.Context(), profile.ID, profile.Company)
	if err != nil {
		if errors.Is(err, service.ErrSessionAlreadyActive) {
			response.Fail(c, http.StatusConflict, response.ErrLoginActive)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	// The token is already issued, so a consume failure must not lock the
	// participant out; the credential stays burnable on the next login,
	// which an operator will want to know about.
	if err := h.credentialService.Consume(c.Request.Context(), cred, time.Now()); err != nil {
		h.log.Error().
			Err(err).
			Str("credential_id", cred.ID.String()).
			Str("username", cred.Username).
			Msg("Single-use credential not consumed after login")
	}

	response.Success(c, http.StatusOK, gin.H{
		"token":      token,
		"exam_id":    cred.ExamID,
		"test_id":    cred.TestID,
		"credential": gin.H{"id": cred.ID, "single_use": cred.SingleUse},
	})
}

// ParticipantLogout godoc
// POST /api/v1/auth/participant/logout
// Releases the participant's single-device login.
func (h *AuthHandler) ParticipantLogout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	if err := h.authService.ResetParticipantLogin(c.Request.Context(), claims.UserID); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// Me godoc
// GET /api/v1/auth/me
// Returns the profile of the currently authenticated user.
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	profile, err := h.profiles.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"user": gin.H{
			"id":      profile.ID,
			"name":    profile.Name,
			"email":   profile.Email,
			"role":    profile.Role,
			"company": profile.Company,
		},
	})
}
