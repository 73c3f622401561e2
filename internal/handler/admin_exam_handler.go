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

// AdminExamHandler handles exam definition management.
type AdminExamHandler struct {
	exams *repository.ExamRepository
}

// NewAdminExamHandler creates a new AdminExamHandler.
func NewAdminExamHandler(exams *repository.ExamRepository) *AdminExamHandler {
	return &AdminExamHandler{exams: exams}
}

// Create godoc
// POST /api/v1/admin/exams
func (h *AdminExamHandler) Create(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.CreateExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exam := &model.Exam{
		ID:              uuid.New(),
		Title:           req.Title,
		Kind:            req.Kind,
		Company:         claims.Company,
		DurationMinutes: req.DurationMinutes,
		Questions:       req.Questions,
	}

	if err := h.exams.Create(c.Request.Context(), exam); err != nil {
		if store.IsRejection(err) {
			response.Fail(c, http.StatusConflict, response.ErrConflict)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"exam": exam})
}

// List godoc
// GET /api/v1/admin/exams
func (h *AdminExamHandler) List(c *gin.Context) {
	claims := middleware.GetClaims(c)

	exams, err := h.exams.ListByCompany(c.Request.Context(), claims.Company)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exams": exams})
}

// Get godoc
// GET /api/v1/admin/exams/:exam_id
func (h *AdminExamHandler) Get(c *gin.Context) {
	exam, ok := h.load(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, gin.H{"exam": exam})
}

// Update godoc
// PUT /api/v1/admin/exams/:exam_id
func (h *AdminExamHandler) Update(c *gin.Context) {
	exam, ok := h.load(c)
	if !ok {
		return
	}

	var req model.UpdateExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if req.Title != "" {
		exam.Title = req.Title
	}
	if req.DurationMinutes > 0 {
		exam.DurationMinutes = req.DurationMinutes
	}
	if req.Active != nil {
		exam.Active = *req.Active
	}
	if len(req.Questions) > 0 {
		exam.Questions = req.Questions
	}

	if err := h.exams.Update(c.Request.Context(), exam); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exam": exam})
}

// Activate godoc
// POST /api/v1/admin/exams/:exam_id/activate
func (h *AdminExamHandler) Activate(c *gin.Context) {
	h.setActive(c, true)
}

// Deactivate godoc
// POST /api/v1/admin/exams/:exam_id/deactivate
func (h *AdminExamHandler) Deactivate(c *gin.Context) {
	h.setActive(c, false)
}

// Delete godoc
// DELETE /api/v1/admin/exams/:exam_id
func (h *AdminExamHandler) Delete(c *gin.Context) {
	exam, ok := h.load(c)
	if !ok {
		return
	}

	if err := h.exams.Delete(c.Request.Context(), exam.ID); err != nil {
		if store.IsRejection(err) {
			response.Fail(c, http.StatusConflict, response.ErrConflict)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

func (h *AdminExamHandler) setActive(c *gin.Context, active bool) {
	exam, ok := h.load(c)
	if !ok {
		return
	}

	if err := h.exams.SetActive(c.Request.Context(), exam.ID, active); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	exam.Active = active

	response.Success(c, http.StatusOK, gin.H{"exam": exam})
}

// load parses the exam id, fetches the exam and enforces tenant isolation.
func (h *AdminExamHandler) load(c *gin.Context) (*model.Exam, bool) {
	claims := middleware.GetClaims(c)

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return nil, false
	}

	exam, err := h.exams.GetByID(c.Request.Context(), examID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return nil, false
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return nil, false
	}

	if exam.Company != claims.Company {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return nil, false
	}

	return exam, true
}
