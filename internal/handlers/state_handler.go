package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cakebook/internal/services"
)

// StateHandler handles the view state: filter, search term and theme.
type StateHandler struct {
	store services.StateServicer
}

// NewStateHandler creates a new StateHandler.
func NewStateHandler(store services.StateServicer) *StateHandler {
	return &StateHandler{store: store}
}

// CategoryFilterRequest represents the request body for selecting a category filter.
type CategoryFilterRequest struct {
	Category string `json:"category" binding:"required"`
}

// SearchTermRequest represents the request body for setting the search term.
type SearchTermRequest struct {
	Term string `json:"term" binding:"max=200"`
}

// GetState returns the whole application state
// @Summary     Get application state
// @Description Recipes with their favorite flag, categories, favorites and view state
// @Tags        state
// @Produce     json
// @Success     200 {object} models.AppState "Application state"
// @Router      /state [get]
func (h *StateHandler) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"state": h.store.State()})
}

// GetStats returns the dashboard totals
// @Summary     Get catalog totals
// @Tags        state
// @Produce     json
// @Success     200 {object} services.Stats "Totals"
// @Router      /stats [get]
func (h *StateHandler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"stats": h.store.Stats()})
}

// SetCategoryFilter selects the category shown in the recipe list
// @Summary     Set category filter
// @Description Any string is accepted; "Todas" shows every recipe
// @Tags        state
// @Accept      json
// @Produce     json
// @Param       request body CategoryFilterRequest true "Category"
// @Success     200 {object} map[string]string "Active category"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     503 {object} ErrorResponse "Applied but not saved"
// @Router      /state/category [put]
func (h *StateHandler) SetCategoryFilter(c *gin.Context) {
	var req CategoryFilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	if err := h.store.SetCategoryFilter(req.Category); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"category": req.Category})
}

// SetSearchTerm sets the free-text search term
// @Summary     Set search term
// @Tags        state
// @Accept      json
// @Produce     json
// @Param       request body SearchTermRequest true "Search term"
// @Success     200 {object} map[string]string "Active search term"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     503 {object} ErrorResponse "Applied but not saved"
// @Router      /state/search [put]
func (h *StateHandler) SetSearchTerm(c *gin.Context) {
	var req SearchTermRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	if err := h.store.SetSearchTerm(req.Term); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"term": req.Term})
}

// ToggleTheme switches between light and dark mode
// @Summary     Toggle dark mode
// @Tags        state
// @Produce     json
// @Success     200 {object} map[string]bool "New theme"
// @Failure     503 {object} ErrorResponse "Applied but not saved"
// @Router      /state/theme [post]
func (h *StateHandler) ToggleTheme(c *gin.Context) {
	dark, err := h.store.ToggleTheme()
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"isDarkMode": dark})
}
