package services

import (
	"cakebook/internal/models"
	"cakebook/internal/pagination"
)

// SearchFilter holds the advanced search parameters. Zero values disable
// the corresponding filter.
type SearchFilter struct {
	Term        string
	Category    string
	Difficulty  models.Difficulty
	MaxMinutes  int
	MinServings int
	MaxServings int
}

// CategoryCount pairs a category with the number of recipes it matches.
type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Stats contains the catalog totals shown on the dashboard.
type Stats struct {
	Recipes    int `json:"recipes"`
	Favorites  int `json:"favorites"`
	Categories int `json:"categories"`
}

// StateServicer owns the application state. Every mutation goes through it
// and is written to durable storage before it returns.
type StateServicer interface {
	// Reads
	State() models.AppState
	Recipe(id string) (*models.Recipe, error)
	FilteredRecipes() []models.Recipe
	SearchRecipes(filter SearchFilter) []models.Recipe
	FavoriteRecipes() []models.Recipe
	CategoryCounts() []CategoryCount
	Stats() Stats

	// Recipes
	AddRecipe(draft models.RecipeDraft) (*models.Recipe, error)
	UpdateRecipe(id string, patch models.RecipePatch) (*models.Recipe, error)
	DeleteRecipe(id string) error
	ToggleFavorite(id string) (bool, error)

	// View state
	SetCategoryFilter(category string) error
	SetSearchTerm(term string) error
	ToggleTheme() (bool, error)

	// Editor mode
	EnterEditorMode(secret string) (bool, error)
	ExitEditorMode() error
	IsEditorMode() bool

	// Categories
	AddCategory(name string) error
	RenameCategory(oldName, newName string) error
	DeleteCategory(name string) error
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
	ListLogs(page pagination.PageRequest) (*pagination.PageResponse[models.AuditLog], error)
}
