package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"cakebook/internal/models"
	"cakebook/internal/pagination"
	"cakebook/internal/services"
	"cakebook/internal/validator"
)

// --- mock state service ---

type mockStateService struct {
	stateFn             func() models.AppState
	recipeFn            func(id string) (*models.Recipe, error)
	filteredRecipesFn   func() []models.Recipe
	searchRecipesFn     func(filter services.SearchFilter) []models.Recipe
	favoriteRecipesFn   func() []models.Recipe
	categoryCountsFn    func() []services.CategoryCount
	statsFn             func() services.Stats
	addRecipeFn         func(draft models.RecipeDraft) (*models.Recipe, error)
	updateRecipeFn      func(id string, patch models.RecipePatch) (*models.Recipe, error)
	deleteRecipeFn      func(id string) error
	toggleFavoriteFn    func(id string) (bool, error)
	setCategoryFilterFn func(category string) error
	setSearchTermFn     func(term string) error
	toggleThemeFn       func() (bool, error)
	enterEditorModeFn   func(secret string) (bool, error)
	exitEditorModeFn    func() error
	isEditorModeFn      func() bool
	addCategoryFn       func(name string) error
	renameCategoryFn    func(oldName, newName string) error
	deleteCategoryFn    func(name string) error
}

func (m *mockStateService) State() models.AppState {
	if m.stateFn != nil {
		return m.stateFn()
	}
	return models.AppState{
		CurrentCategory: models.AllCategory,
		Categories:      []string{models.AllCategory, "Bolos Simples", "Cupcakes"},
	}
}

func (m *mockStateService) Recipe(id string) (*models.Recipe, error) {
	if m.recipeFn != nil {
		return m.recipeFn(id)
	}
	return &models.Recipe{ID: id}, nil
}

func (m *mockStateService) FilteredRecipes() []models.Recipe {
	if m.filteredRecipesFn != nil {
		return m.filteredRecipesFn()
	}
	return []models.Recipe{}
}

func (m *mockStateService) SearchRecipes(filter services.SearchFilter) []models.Recipe {
	if m.searchRecipesFn != nil {
		return m.searchRecipesFn(filter)
	}
	return []models.Recipe{}
}

func (m *mockStateService) FavoriteRecipes() []models.Recipe {
	if m.favoriteRecipesFn != nil {
		return m.favoriteRecipesFn()
	}
	return []models.Recipe{}
}

func (m *mockStateService) CategoryCounts() []services.CategoryCount {
	if m.categoryCountsFn != nil {
		return m.categoryCountsFn()
	}
	return []services.CategoryCount{}
}

func (m *mockStateService) Stats() services.Stats {
	if m.statsFn != nil {
		return m.statsFn()
	}
	return services.Stats{}
}

func (m *mockStateService) AddRecipe(draft models.RecipeDraft) (*models.Recipe, error) {
	if m.addRecipeFn != nil {
		return m.addRecipeFn(draft)
	}
	return &models.Recipe{ID: "1", Title: draft.Title, Category: draft.Category}, nil
}

func (m *mockStateService) UpdateRecipe(id string, patch models.RecipePatch) (*models.Recipe, error) {
	if m.updateRecipeFn != nil {
		return m.updateRecipeFn(id, patch)
	}
	return &models.Recipe{ID: id}, nil
}

func (m *mockStateService) DeleteRecipe(id string) error {
	if m.deleteRecipeFn != nil {
		return m.deleteRecipeFn(id)
	}
	return nil
}

func (m *mockStateService) ToggleFavorite(id string) (bool, error) {
	if m.toggleFavoriteFn != nil {
		return m.toggleFavoriteFn(id)
	}
	return true, nil
}

func (m *mockStateService) SetCategoryFilter(category string) error {
	if m.setCategoryFilterFn != nil {
		return m.setCategoryFilterFn(category)
	}
	return nil
}

func (m *mockStateService) SetSearchTerm(term string) error {
	if m.setSearchTermFn != nil {
		return m.setSearchTermFn(term)
	}
	return nil
}

func (m *mockStateService) ToggleTheme() (bool, error) {
	if m.toggleThemeFn != nil {
		return m.toggleThemeFn()
	}
	return true, nil
}

func (m *mockStateService) EnterEditorMode(secret string) (bool, error) {
	if m.enterEditorModeFn != nil {
		return m.enterEditorModeFn(secret)
	}
	return true, nil
}

func (m *mockStateService) ExitEditorMode() error {
	if m.exitEditorModeFn != nil {
		return m.exitEditorModeFn()
	}
	return nil
}

func (m *mockStateService) IsEditorMode() bool {
	if m.isEditorModeFn != nil {
		return m.isEditorModeFn()
	}
	return false
}

func (m *mockStateService) AddCategory(name string) error {
	if m.addCategoryFn != nil {
		return m.addCategoryFn(name)
	}
	return nil
}

func (m *mockStateService) RenameCategory(oldName, newName string) error {
	if m.renameCategoryFn != nil {
		return m.renameCategoryFn(oldName, newName)
	}
	return nil
}

func (m *mockStateService) DeleteCategory(name string) error {
	if m.deleteCategoryFn != nil {
		return m.deleteCategoryFn(name)
	}
	return nil
}

var _ services.StateServicer = (*mockStateService)(nil)

// --- mock audit service ---

type auditCall struct {
	action, resourceType, resourceID string
	changes                          map[string]interface{}
}

type mockAuditService struct {
	calls      []auditCall
	listLogsFn func(page pagination.PageRequest) (*pagination.PageResponse[models.AuditLog], error)
}

func (m *mockAuditService) Log(action, resourceType, resourceID, _ string, changes map[string]interface{}) {
	m.calls = append(m.calls, auditCall{action: action, resourceType: resourceType, resourceID: resourceID, changes: changes})
}

func (m *mockAuditService) ListLogs(page pagination.PageRequest) (*pagination.PageResponse[models.AuditLog], error) {
	if m.listLogsFn != nil {
		return m.listLogsFn(page)
	}
	resp := pagination.NewPageResponse([]models.AuditLog{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockAuditService) actions() []string {
	out := make([]string, len(m.calls))
	for i, c := range m.calls {
		out[i] = c.action
	}
	return out
}

var _ services.AuditServicer = (*mockAuditService)(nil)

// --- test helpers ---

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}
