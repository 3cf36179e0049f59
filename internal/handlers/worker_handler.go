package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "cakebook/internal/errors"
	"cakebook/internal/offline"
)

// OfflineWorker is the part of the offline worker exposed to client pages.
type OfflineWorker interface {
	HandleMessage(ctx context.Context, msg offline.Message) error
	State() offline.State
}

// WorkerHandler relays client messages to the offline worker.
type WorkerHandler struct {
	worker OfflineWorker
}

// NewWorkerHandler creates a new WorkerHandler.
func NewWorkerHandler(worker OfflineWorker) *WorkerHandler {
	return &WorkerHandler{worker: worker}
}

// PostMessage delivers a control message to the offline worker
// @Summary     Post a worker message
// @Description SKIP_WAITING activates a waiting worker. Other messages are ignored
// @Tags        offline
// @Accept      json
// @Produce     json
// @Param       request body offline.Message true "Message"
// @Success     200 {object} map[string]string "Worker state after the message"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Activation failed"
// @Router      /sw/message [post]
func (h *WorkerHandler) PostMessage(c *gin.Context) {
	var msg offline.Message
	if err := c.ShouldBindJSON(&msg); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	if err := h.worker.HandleMessage(c.Request.Context(), msg); err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"state": h.worker.State().String()})
}

// Status returns the worker lifecycle phase
// @Summary     Worker status
// @Tags        offline
// @Produce     json
// @Success     200 {object} map[string]string "Worker state"
// @Router      /sw/status [get]
func (h *WorkerHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"state": h.worker.State().String()})
}
