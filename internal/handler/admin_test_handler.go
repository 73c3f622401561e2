package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/evaluia/examcore-backend/internal/middleware"
	"github.com/evaluia/examcore-backend/internal/model"
	"github.com/evaluia/examcore-backend/internal/repository"
	"github.com/evaluia/examcore-backend/internal/response"
	"github.com/evaluia/examcore-backend/internal/store"
	"github.com/evaluia/examcore-backend/internal/validator"
)

// AdminTestHandler handles psychometric test definition management.
type AdminTestHandler struct {
	tests *repository.TestRepository
}

// NewAdminTestHandler creates a new AdminTestHandler.
func NewAdminTestHandler(tests *repository.TestRepository) *AdminTestHandler {
	return &AdminTestHandler{tests: tests}
}

// Create godoc
// POST /api/v1/admin/tests
func (h *AdminTestHandler) Create(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.CreateTestRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	test := &model.PsychometricTest{
		ID:              uuid.New(),
		Title:           req.Title,
		Variant:         req.Variant,
		Company:         claims.Company,
		DurationMinutes: req.DurationMinutes,
		Questions:       req.Questions,
	}

	if err := h.tests.Create(c.Request.Context(), test); err != nil {
		if store.IsRejection(err) {
			response.Fail(c, http.StatusConflict, response.ErrConflict)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"test": test})
}

// List godoc
// GET /api/v1/admin/tests
func (h *AdminTestHandler) List(c *gin.Context) {
	claims := middleware.GetClaims(c)

	tests, err := h.tests.ListByCompany(c.Request.Context(), claims.Company)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"tests": tests})
}

// Get godoc
// GET /api/v1/admin/tests/:test_id
func (h *AdminTestHandler) Get(c *gin.Context) {
	test, ok := h.load(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, gin.H{"test": test})
}

// Update godoc
// PUT /api/v1/admin/tests/:test_id
func (h *AdminTestHandler) Update(c *gin.Context) {
	test, ok := h.load(c)
	if !ok {
		return
	}

	var req model.UpdateTestRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if req.Title != "" {
		test.Title = req.Title
	}
	if req.DurationMinutes > 0 {
		test.DurationMinutes = req.DurationMinutes
	}
	if req.Active != nil {
		test.Active = *req.Active
	}
	if len(req.Questions) > 0 {
		test.Questions = req.Questions
	}

	if err := h.tests.Update(c.Request.Context(), test); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"test": test})
}

// Activate godoc
// POST /api/v1/admin/tests/:test_id/activate
func (h *AdminTestHandler) Activate(c *gin.Context) {
	h.setActive(c, true)
}

// Deactivate godoc
// POST /api/v1/admin/tests/:test_id/deactivate
func (h *AdminTestHandler) Deactivate(c *gin.Context) {
	h.setActive(c, false)
}

// Delete godoc
// DELETE /api/v1/admin/tests/:test_id
func (h *AdminTestHandler) Delete(c *gin.Context) {
	test, ok := h.load(c)
	if !ok {
		return
	}

	if err := h.tests.Delete(c.Request.Context(), test.ID); err != nil {
		if store.IsRejection(err) {
			response.Fail(c, http.StatusConflict, response.ErrConflict)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

func (h *AdminTestHandler) setActive(c *gin.Context, active bool) {
	test, ok := h.load(c)
	if !ok {
		return
	}

	if err := h.tests.SetActive(c.Request.Context(), test.ID, active); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	test.Active = active

	response.Success(c, http.StatusOK, gin.H{"test": test})
}

func (h *AdminTestHandler) load(c *gin.Context) (*model.PsychometricTest, bool) {
	claims := middleware.GetClaims(c)

	testID, err := uuid.Parse(c.Param("test_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return nil, false
	}

	test, err := h.tests.GetByID(c.Request.Context(), testID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return nil, false
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return nil, false
	}

	if test.Company != claims.Company {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return nil, false
	}

	return test, true
}
