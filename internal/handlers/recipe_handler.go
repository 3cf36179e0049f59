package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"cakebook/internal/models"
	"cakebook/internal/pagination"
	"cakebook/internal/services"
)

// RecipeHandler handles recipe-related requests.
type RecipeHandler struct {
	store        services.StateServicer
	auditService services.AuditServicer
	shareURL     string
}

// NewRecipeHandler creates a new RecipeHandler. shareURL is the page that
// shared recipes link to.
func NewRecipeHandler(store services.StateServicer, auditService services.AuditServicer, shareURL string) *RecipeHandler {
	return &RecipeHandler{store: store, auditService: auditService, shareURL: shareURL}
}

// RecipeRequest is the recipe form. Blank ingredient and step lines are
// dropped before the recipe is stored.
type RecipeRequest struct {
	Title       string            `json:"titulo" binding:"notblank,max=200"`
	Category    string            `json:"categoria" binding:"notblank"`
	Image       string            `json:"imagem" binding:"max=2048"`
	Description string            `json:"descricao" binding:"notblank"`
	Ingredients []string          `json:"ingredientes" binding:"any_filled"`
	Steps       []string          `json:"preparo" binding:"any_filled"`
	Time        string            `json:"tempo" binding:"notblank,max=100"`
	Yield       string            `json:"rendimento" binding:"notblank,max=100"`
	Difficulty  models.Difficulty `json:"dificuldade" binding:"omitempty,difficulty"`
}

// SearchQuery holds the advanced search parameters.
type SearchQuery struct {
	Term        string            `form:"q"`
	Category    string            `form:"category"`
	Difficulty  models.Difficulty `form:"difficulty" binding:"omitempty,difficulty"`
	MaxMinutes  int               `form:"max_minutes" binding:"omitempty,min=1"`
	MinServings int               `form:"min_servings" binding:"omitempty,min=1"`
	MaxServings int               `form:"max_servings" binding:"omitempty,min=1"`
}

// normalize trims the form and fills in the default difficulty.
func (r *RecipeRequest) normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Category = strings.TrimSpace(r.Category)
	r.Image = strings.TrimSpace(r.Image)
	r.Description = strings.TrimSpace(r.Description)
	r.Time = strings.TrimSpace(r.Time)
	r.Yield = strings.TrimSpace(r.Yield)
	r.Ingredients = compact(r.Ingredients)
	r.Steps = compact(r.Steps)
	if r.Difficulty == "" {
		r.Difficulty = models.DifficultyEasy
	}
}

// checkCategory rejects categories that are not listed, and "Todas", before
// the store is asked to write. The store repeats the check under its lock.
func (h *RecipeHandler) checkCategory(category string) error {
	return services.CheckFiling(h.store.State(), category)
}

// ListRecipes returns the recipes matching the active filter and search term
// @Summary     List recipes
// @Description Recipes matching the active category filter and search term, in creation order
// @Tags        recipes
// @Produce     json
// @Param       page      query int false "Page number"
// @Param       page_size query int false "Items per page (max 100)"
// @Success     200 {object} pagination.PageResponse[models.Recipe] "Recipes"
// @Failure     400 {object} ErrorResponse "Invalid pagination"
// @Router      /recipes [get]
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	c.JSON(http.StatusOK, pagination.Slice(h.store.FilteredRecipes(), page))
}

// SearchRecipes runs an advanced search
// @Summary     Search recipes
// @Description Match a term against title, ingredients and description, with optional difficulty, time and yield filters
// @Tags        recipes
// @Produce     json
// @Param       q            query string false "Search term"
// @Param       category     query string false "Category"
// @Param       difficulty   query string false "Fácil, Médio or Difícil"
// @Param       max_minutes  query int    false "Maximum preparation time in minutes"
// @Param       min_servings query int    false "Minimum yield"
// @Param       max_servings query int    false "Maximum yield"
// @Success     200 {array}  models.Recipe "Matching recipes"
// @Failure     400 {object} ErrorResponse "Invalid filter"
// @Router      /recipes/search [get]
func (h *RecipeHandler) SearchRecipes(c *gin.Context) {
	var q SearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	recipes := h.store.SearchRecipes(services.SearchFilter{
		Term:        strings.TrimSpace(q.Term),
		Category:    q.Category,
		Difficulty:  q.Difficulty,
		MaxMinutes:  q.MaxMinutes,
		MinServings: q.MinServings,
		MaxServings: q.MaxServings,
	})
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

// FavoriteRecipes returns the favorited recipes
// @Summary     List favorite recipes
// @Tags        recipes
// @Produce     json
// @Success     200 {array} models.Recipe "Favorite recipes"
// @Router      /recipes/favorites [get]
func (h *RecipeHandler) FavoriteRecipes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"recipes": h.store.FavoriteRecipes()})
}

// GetRecipe returns a single recipe
// @Summary     Get recipe by ID
// @Tags        recipes
// @Produce     json
// @Param       id path string true "Recipe ID"
// @Success     200 {object} models.Recipe "Recipe"
// @Failure     404 {object} ErrorResponse "Recipe not found"
// @Router      /recipes/{id} [get]
func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	recipe, err := h.store.Recipe(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipe": recipe})
}

// ShareRecipe returns the share sheet payload for a recipe
// @Summary     Share a recipe
// @Description Text for the native share sheet, with a clipboard fallback
// @Tags        recipes
// @Produce     json
// @Param       id path string true "Recipe ID"
// @Success     200 {object} services.SharePayload "Share payload"
// @Failure     404 {object} ErrorResponse "Recipe not found"
// @Router      /recipes/{id}/share [get]
func (h *RecipeHandler) ShareRecipe(c *gin.Context) {
	recipe, err := h.store.Recipe(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, services.BuildSharePayload(*recipe, h.shareURL))
}

// ToggleFavorite flips the favorite flag of a recipe
// @Summary     Toggle favorite
// @Tags        recipes
// @Produce     json
// @Param       id path string true "Recipe ID"
// @Success     200 {object} map[string]bool "New favorite state"
// @Failure     404 {object} ErrorResponse "Recipe not found"
// @Failure     503 {object} ErrorResponse "Applied but not saved"
// @Router      /recipes/{id}/favorite [post]
func (h *RecipeHandler) ToggleFavorite(c *gin.Context) {
	favorite, err := h.store.ToggleFavorite(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"favorite": favorite})
}

// CreateRecipe adds a recipe
// @Summary     Create a recipe
// @Tags        recipes
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body RecipeRequest true "Recipe"
// @Success     201 {object} models.Recipe "Recipe created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Editor mode is off"
// @Failure     503 {object} ErrorResponse "Applied but not saved"
// @Router      /recipes [post]
func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	req.normalize()

	if err := h.checkCategory(req.Category); err != nil {
		respondWithError(c, err)
		return
	}

	recipe, err := h.store.AddRecipe(models.RecipeDraft{
		Title:       req.Title,
		Category:    req.Category,
		Image:       req.Image,
		Description: req.Description,
		Ingredients: req.Ingredients,
		Steps:       req.Steps,
		Time:        req.Time,
		Yield:       req.Yield,
		Difficulty:  req.Difficulty,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("CREATE_RECIPE", "recipe", recipe.ID, c.ClientIP(),
		map[string]interface{}{"title": recipe.Title, "category": recipe.Category})

	c.JSON(http.StatusCreated, gin.H{"recipe": recipe})
}

// UpdateRecipe replaces the editable fields of a recipe
// @Summary     Update a recipe
// @Tags        recipes
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string        true "Recipe ID"
// @Param       request body RecipeRequest true "Recipe"
// @Success     200 {object} models.Recipe "Updated recipe"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Editor mode is off"
// @Failure     404 {object} ErrorResponse "Recipe not found"
// @Failure     503 {object} ErrorResponse "Applied but not saved"
// @Router      /recipes/{id} [put]
func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	req.normalize()

	if err := h.checkCategory(req.Category); err != nil {
		respondWithError(c, err)
		return
	}

	recipe, err := h.store.UpdateRecipe(c.Param("id"), models.RecipePatch{
		Title:       &req.Title,
		Category:    &req.Category,
		Image:       &req.Image,
		Description: &req.Description,
		Ingredients: req.Ingredients,
		Steps:       req.Steps,
		Time:        &req.Time,
		Yield:       &req.Yield,
		Difficulty:  &req.Difficulty,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("UPDATE_RECIPE", "recipe", recipe.ID, c.ClientIP(),
		map[string]interface{}{"title": recipe.Title, "category": recipe.Category})

	c.JSON(http.StatusOK, gin.H{"recipe": recipe})
}

// DeleteRecipe removes a recipe
// @Summary     Delete a recipe
// @Tags        recipes
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Recipe ID"
// @Success     200 {object} map[string]string "Recipe deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Editor mode is off"
// @Failure     404 {object} ErrorResponse "Recipe not found"
// @Failure     503 {object} ErrorResponse "Applied but not saved"
// @Router      /recipes/{id} [delete]
func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id := c.Param("id")
	if err := h.store.DeleteRecipe(id); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("DELETE_RECIPE", "recipe", id, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Recipe deleted successfully"})
}
