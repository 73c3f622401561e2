package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/evaluia/examcore-backend/internal/middleware"
	"github.com/evaluia/examcore-backend/internal/model"
	"github.com/evaluia/examcore-backend/internal/repository"
	"github.com/evaluia/examcore-backend/internal/response"
	"github.com/evaluia/examcore-backend/internal/service"
	"github.com/evaluia/examcore-backend/internal/store"
	"github.com/evaluia/examcore-backend/internal/validator"
)

// AdminUserHandler handles platform user and assignment management.
type AdminUserHandler struct {
	profiles    *repository.ProfileRepository
	assignments *repository.AssignmentRepository
	authService *service.AuthService
}

// NewAdminUserHandler creates a new AdminUserHandler.
func NewAdminUserHandler(
	profiles *repository.ProfileRepository,
	assignments *repository.AssignmentRepository,
	authService *service.AuthService,
) *AdminUserHandler {
	return &AdminUserHandler{
		profiles:    profiles,
		assignments: assignments,
		authService: authService,
	}
}

// Create godoc
// POST /api/v1/admin/users
func (h *AdminUserHandler) Create(c *gin.Context) {
	var req model.CreateProfileRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	hash, err := h.authService.HashPassword(req.Password)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	profile := &model.Profile{
		ID:           uuid.New(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
		Company:      req.Company,
		CanLogin:     true,
	}

	if err := h.profiles.Create(c.Request.Context(), profile); err != nil {
		if store.IsRejection(err) {
			response.Fail(c, http.StatusConflict, response.ErrConflict)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"user": profile})
}

// List godoc
// GET /api/v1/admin/users
func (h *AdminUserHandler) List(c *gin.Context) {
	claims := middleware.GetClaims(c)

	profiles, err := h.profiles.ListByCompany(c.Request.Context(), claims.Company)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"users": profiles})
}

// ResetLogin godoc
// POST /api/v1/admin/users/:user_id/reset-login
// Releases a participant's single-device login so they can sign in again.
func (h *AdminUserHandler) ResetLogin(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.authService.ResetParticipantLogin(c.Request.Context(), userID); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// EnableLogin godoc
// POST /api/v1/admin/users/:user_id/enable-login
// Restores the login gate after a kiosk lockout.
func (h *AdminUserHandler) EnableLogin(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.profiles.SetCanLogin(c.Request.Context(), userID, true); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// Assign godoc
// POST /api/v1/admin/assignments
func (h *AdminUserHandler) Assign(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.CreateAssignmentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	assignment := &model.ExamAssignment{
		ID:        uuid.New(),
		ExamID:    req.ExamID,
		UserID:    req.UserID,
		Status:    model.AssignmentStatusAssigned,
		Company:   claims.Company,
		KioskMode: req.KioskMode,
	}

	if err := h.assignments.Create(c.Request.Context(), assignment); err != nil {
		if store.IsRejection(err) {
			response.Fail(c, http.StatusConflict, response.ErrConflict)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"assignment": assignment})
}
