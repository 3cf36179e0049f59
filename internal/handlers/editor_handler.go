package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "cakebook/internal/errors"
	"cakebook/internal/middleware"
	"cakebook/internal/services"
)

// EditorHandler handles entering and leaving editor mode.
type EditorHandler struct {
	store        services.StateServicer
	auditService services.AuditServicer
}

// NewEditorHandler creates a new EditorHandler.
func NewEditorHandler(store services.StateServicer, auditService services.AuditServicer) *EditorHandler {
	return &EditorHandler{store: store, auditService: auditService}
}

// EditorLoginRequest represents the request body for entering editor mode.
type EditorLoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// EditorLoginResponse represents the response body for entering editor mode.
type EditorLoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login turns editor mode on and issues an editor token
// @Summary     Enter editor mode
// @Description Checks the editor password. Tokens stop working once editor mode is turned off
// @Tags        editor
// @Accept      json
// @Produce     json
// @Param       request body EditorLoginRequest true "Editor password"
// @Success     200 {object} EditorLoginResponse "Editor token"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid editor password"
// @Failure     503 {object} ErrorResponse "Applied but not saved"
// @Router      /editor/login [post]
func (h *EditorHandler) Login(c *gin.Context) {
	var req EditorLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	ok, err := h.store.EnterEditorMode(req.Password)
	if !ok {
		h.auditService.Log("EDITOR_LOGIN_FAILED", "editor", "", c.ClientIP(), nil)
		respondWithError(c, apperrors.ErrInvalidEditorSecret)
		return
	}
	if err != nil {
		respondWithError(c, err)
		return
	}

	token, expires, err := middleware.GenerateEditorToken()
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	h.auditService.Log("EDITOR_LOGIN", "editor", "", c.ClientIP(), nil)

	c.JSON(http.StatusOK, EditorLoginResponse{Token: token, ExpiresAt: expires})
}

// Logout turns editor mode off
// @Summary     Leave editor mode
// @Tags        editor
// @Produce     json
// @Success     200 {object} map[string]string "Editor mode off"
// @Failure     503 {object} ErrorResponse "Applied but not saved"
// @Router      /editor/logout [post]
func (h *EditorHandler) Logout(c *gin.Context) {
	if err := h.store.ExitEditorMode(); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("EDITOR_LOGOUT", "editor", "", c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Editor mode disabled"})
}

// Status reports whether editor mode is on
// @Summary     Editor mode status
// @Tags        editor
// @Produce     json
// @Success     200 {object} map[string]bool "Editor mode"
// @Router      /editor [get]
func (h *EditorHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"isEditorMode": h.store.IsEditorMode()})
}
