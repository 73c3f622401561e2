package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/evaluia/examcore-backend/internal/middleware"
	"github.com/evaluia/examcore-backend/internal/model"
	"github.com/evaluia/examcore-backend/internal/repository"
	"github.com/evaluia/examcore-backend/internal/response"
	"github.com/evaluia/examcore-backend/internal/service"
	"github.com/evaluia/examcore-backend/internal/store"
	"github.com/evaluia/examcore-backend/internal/validator"
)

// CredentialHandler handles exam credential issuance.
type CredentialHandler struct {
	credentialService *service.CredentialService
	credentials       *repository.CredentialRepository
}

// NewCredentialHandler creates a new CredentialHandler.
func NewCredentialHandler(
	credentialService *service.CredentialService,
	credentials *repository.CredentialRepository,
) *CredentialHandler {
	return &CredentialHandler{
		credentialService: credentialService,
		credentials:       credentials,
	}
}

// Issue godoc
// POST /api/v1/admin/credentials
// Issues a credential for one exam or test. The plaintext password appears
// only in this response (and the optional notification email).
func (h *CredentialHandler) Issue(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.IssueCredentialRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	cred, password, err := h.credentialService.Issue(c.Request.Context(), claims.Company, req)
	if err != nil {
		if store.IsValidation(err) {
			response.FailWithMessage(c, http.StatusBadRequest, response.ErrValidation, err.Error())
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"credential": cred,
		"password":   password,
	})
}

// List godoc
// GET /api/v1/admin/credentials
func (h *CredentialHandler) List(c *gin.Context) {
	claims := middleware.GetClaims(c)

	creds, err := h.credentials.ListByCompany(c.Request.Context(), claims.Company)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"credentials": creds})
}
