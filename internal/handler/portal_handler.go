package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/evaluia/examcore-backend/internal/middleware"
	"github.com/evaluia/examcore-backend/internal/model"
	"github.com/evaluia/examcore-backend/internal/response"
	"github.com/evaluia/examcore-backend/internal/service"
	"github.com/evaluia/examcore-backend/internal/store"
	"github.com/evaluia/examcore-backend/internal/validator"
)

// PortalHandler handles the participant-facing exam flow: opening and
// starting sessions, and submitting answers.
type PortalHandler struct {
	sessionService    *service.SessionService
	sessionValidator  *service.SessionValidator
	submissionService *service.SubmissionService
}

// NewPortalHandler creates a new PortalHandler.
func NewPortalHandler(
	sessionService *service.SessionService,
	sessionValidator *service.SessionValidator,
	submissionService *service.SubmissionService,
) *PortalHandler {
	return &PortalHandler{
		sessionService:    sessionService,
		sessionValidator:  sessionValidator,
		submissionService: submissionService,
	}
}

// CreateSession godoc
// POST /api/v1/portal/sessions
func (h *PortalHandler) CreateSession(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.CreateSessionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	session, err := h.sessionService.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		h.failLifecycle(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"session": session})
}

// StartSession godoc
// POST /api/v1/portal/sessions/:session_id/start
// Validates the session's usability, then stamps its start and refreshes its
// window. An invalid verdict is returned with the lifecycle's own message.
func (h *PortalHandler) StartSession(c *gin.Context) {
	claims := middleware.GetClaims(c)

	session, ok := h.loadOwned(c, claims.UserID)
	if !ok {
		return
	}

	subjectActive, err := h.sessionService.SubjectActive(c.Request.Context(), session)
	if err != nil {
		h.failLifecycle(c, err)
		return
	}

	verdict := h.sessionValidator.Validate(session, subjectActive, time.Now())
	if !verdict.IsValid {
		code, status := verdictErrCode(verdict.Message)
		response.FailWithMessage(c, status, code, verdict.Message)
		return
	}

	started, err := h.sessionService.Start(c.Request.Context(), session.ID)
	if err != nil {
		h.failLifecycle(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": started})
}

// GetSession godoc
// GET /api/v1/portal/sessions/:session_id
// Returns the session together with its current usability verdict.
func (h *PortalHandler) GetSession(c *gin.Context) {
	claims := middleware.GetClaims(c)

	session, ok := h.loadOwned(c, claims.UserID)
	if !ok {
		return
	}

	subjectActive, err := h.sessionService.SubjectActive(c.Request.Context(), session)
	if err != nil {
		h.failLifecycle(c, err)
		return
	}

	verdict := h.sessionValidator.Validate(session, subjectActive, time.Now())

	response.Success(c, http.StatusOK, gin.H{
		"session": session,
		"verdict": verdict,
	})
}

// ListSessions godoc
// GET /api/v1/portal/sessions
func (h *PortalHandler) ListSessions(c *gin.Context) {
	claims := middleware.GetClaims(c)

	sessions, err := h.sessionService.ListByUser(c.Request.Context(), claims.UserID)
	if err != nil {
		h.failLifecycle(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"sessions": sessions})
}

// Submit godoc
// POST /api/v1/portal/submissions
// Commits a finished exam, or preserves it for replay when the store is
// unreachable. A queued submission is reported as saved: from the
// participant's side the exam is done either way.
func (h *PortalHandler) Submit(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.SubmitRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sub := model.PendingSubmission{
		ExamID:       req.ExamID,
		UserID:       claims.UserID,
		SessionID:    req.SessionID,
		AttemptID:    req.AttemptID,
		Anonymous:    req.Anonymous,
		KioskMode:    req.KioskMode,
		AssignmentID: req.AssignmentID,
		Questions:    req.Questions,
		Answers:      req.Answers,
	}

	outcome, err := h.submissionService.Submit(c.Request.Context(), sub)
	if err != nil {
		if store.IsValidation(err) {
			response.FailWithMessage(c, http.StatusBadRequest, response.ErrValidation, err.Error())
			return
		}
		if store.IsRejection(err) {
			response.Fail(c, http.StatusUnprocessableEntity, response.ErrSubmissionRejected)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"saved":   true,
		"outcome": outcome,
		"message": "Your answers have been saved.",
	})
}

// loadOwned parses the session id, fetches the session and checks ownership.
func (h *PortalHandler) loadOwned(c *gin.Context, userID uuid.UUID) (*model.ExamSession, bool) {
	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return nil, false
	}

	session, err := h.sessionService.Get(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return nil, false
		}
		h.failLifecycle(c, err)
		return nil, false
	}

	if session.UserID != userID {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return nil, false
	}

	return session, true
}

// failLifecycle maps lifecycle and store errors onto the response envelope.
func (h *PortalHandler) failLifecycle(c *gin.Context, err error) {
	switch {
	case store.IsValidation(err):
		response.FailWithMessage(c, http.StatusBadRequest, response.ErrValidation, err.Error())
	case errors.Is(err, store.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case store.IsNetwork(err):
		response.Fail(c, http.StatusServiceUnavailable, response.ErrInternal)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// verdictErrCode maps a validator verdict message onto an error code and
// HTTP status.
func verdictErrCode(message string) (response.ErrCode, int) {
	switch message {
	case "exam not active":
		return response.ErrExamNotActive, http.StatusConflict
	case "already completed":
		return response.ErrSessionCompleted, http.StatusConflict
	case "session expired":
		return response.ErrSessionExpired, http.StatusConflict
	case "attempt limit reached":
		return response.ErrAttemptLimitReached, http.StatusConflict
	case "time expired":
		return response.ErrTimeExpired, http.StatusConflict
	default:
		return response.ErrValidation, http.StatusBadRequest
	}
}
