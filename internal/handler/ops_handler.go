package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/evaluia/examcore-backend/internal/netmon"
	"github.com/evaluia/examcore-backend/internal/queue"
	"github.com/evaluia/examcore-backend/internal/response"
	"github.com/evaluia/examcore-backend/internal/service"
)

// OpsHandler exposes the operational surface: the submission queue, the
// network monitor and manual reconciliation.
type OpsHandler struct {
	monitor           *netmon.Monitor
	queue             *queue.DurableQueue
	submissionService *service.SubmissionService
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(
	monitor *netmon.Monitor,
	q *queue.DurableQueue,
	submissionService *service.SubmissionService,
) *OpsHandler {
	return &OpsHandler{
		monitor:           monitor,
		queue:             q,
		submissionService: submissionService,
	}
}

// NetworkStatus godoc
// GET /api/v1/admin/ops/network
func (h *OpsHandler) NetworkStatus(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{
		"network":     h.monitor.Status(),
		"queue_depth": h.queue.Len(),
	})
}

// SetOnline godoc
// POST /api/v1/admin/ops/network/online
// Manual override, normally driven by the probe.
func (h *OpsHandler) SetOnline(c *gin.Context) {
	h.monitor.SetOnline()
	response.Success(c, http.StatusOK, gin.H{"network": h.monitor.Status()})
}

// SetOffline godoc
// POST /api/v1/admin/ops/network/offline
func (h *OpsHandler) SetOffline(c *gin.Context) {
	h.monitor.SetOffline()
	response.Success(c, http.StatusOK, gin.H{"network": h.monitor.Status()})
}

// ListQueue godoc
// GET /api/v1/admin/ops/queue
// Returns every queued submission, exhausted records included.
func (h *OpsHandler) ListQueue(c *gin.Context) {
	items := h.queue.Items()
	response.Success(c, http.StatusOK, gin.H{
		"submissions": items,
		"total":       len(items),
	})
}

// Replay godoc
// POST /api/v1/admin/ops/queue/replay
// Forces a replay pass outside the worker's schedule.
func (h *OpsHandler) Replay(c *gin.Context) {
	replayed, err := h.submissionService.Replay(c.Request.Context())
	if err != nil {
		// A partial pass is still useful information for the operator.
		response.Success(c, http.StatusOK, gin.H{
			"replayed": replayed,
			"stopped":  err.Error(),
		})
		return
	}

	response.Success(c, http.StatusOK, gin.H{"replayed": replayed})
}

// PurgeExhausted godoc
// DELETE /api/v1/admin/ops/queue/exhausted
func (h *OpsHandler) PurgeExhausted(c *gin.Context) {
	removed, err := h.queue.PurgeExhausted()
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"removed": removed})
}

// PurgeAll godoc
// DELETE /api/v1/admin/ops/queue
func (h *OpsHandler) PurgeAll(c *gin.Context) {
	removed, err := h.queue.PurgeAll()
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"removed": removed})
}

// Reconcile godoc
// POST /api/v1/admin/ops/sessions/:session_id/reconcile
// Idempotent catch-up for partially completed submissions.
func (h *OpsHandler) Reconcile(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.submissionService.Reconcile(c.Request.Context(), sessionID); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"reconciled": true})
}
