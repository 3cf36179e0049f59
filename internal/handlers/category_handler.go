package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"cakebook/internal/services"
)

// CategoryHandler handles category-related requests.
type CategoryHandler struct {
	store        services.StateServicer
	auditService services.AuditServicer
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(store services.StateServicer, auditService services.AuditServicer) *CategoryHandler {
	return &CategoryHandler{store: store, auditService: auditService}
}

// CategoryRequest represents the request body for creating or renaming a
// category. Names may not contain "/" since they are addressed by path.
type CategoryRequest struct {
	Name string `json:"name" binding:"notblank,max=100,excludes=/"`
}

// ListCategories returns every category with its recipe count
// @Summary     List categories
// @Description Categories in display order. "Todas" counts every recipe
// @Tags        categories
// @Produce     json
// @Success     200 {array} services.CategoryCount "Categories"
// @Router      /categories [get]
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": h.store.CategoryCounts()})
}

// CreateCategory adds a category
// @Summary     Create a category
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CategoryRequest true "Category"
// @Success     201 {object} map[string]string "Category created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Editor mode is off"
// @Failure     409 {object} ErrorResponse "Category already exists"
// @Failure     503 {object} ErrorResponse "Applied but not saved"
// @Router      /categories [post]
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	name := strings.TrimSpace(req.Name)

	if err := h.store.AddCategory(name); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("ADD_CATEGORY", "category", name, c.ClientIP(), nil)

	c.JSON(http.StatusCreated, gin.H{"category": name})
}

// RenameCategory renames a category and moves its recipes
// @Summary     Rename a category
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       name    path string          true "Current name"
// @Param       request body CategoryRequest true "New name"
// @Success     200 {object} map[string]string "Category renamed"
// @Failure     400 {object} ErrorResponse "Invalid input or reserved category"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Editor mode is off"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     409 {object} ErrorResponse "Category already exists"
// @Failure     503 {object} ErrorResponse "Applied but not saved"
// @Router      /categories/{name} [put]
func (h *CategoryHandler) RenameCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	oldName := c.Param("name")
	newName := strings.TrimSpace(req.Name)

	if err := h.store.RenameCategory(oldName, newName); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("RENAME_CATEGORY", "category", oldName, c.ClientIP(),
		map[string]interface{}{"new_name": newName})

	c.JSON(http.StatusOK, gin.H{"category": newName})
}

// DeleteCategory removes a category that no recipe uses
// @Summary     Delete a category
// @Tags        categories
// @Produce     json
// @Security    BearerAuth
// @Param       name path string true "Category name"
// @Success     200 {object} map[string]string "Category deleted"
// @Failure     400 {object} ErrorResponse "Reserved category"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Editor mode is off"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     409 {object} ErrorResponse "Category still has recipes"
// @Failure     503 {object} ErrorResponse "Applied but not saved"
// @Router      /categories/{name} [delete]
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	name := c.Param("name")
	if err := h.store.DeleteCategory(name); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("DELETE_CATEGORY", "category", name, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
}
