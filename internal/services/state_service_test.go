package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	apperrors "cakebook/internal/errors"
	"cakebook/internal/models"
	"cakebook/internal/storage"
	"cakebook/internal/testutil"
)

const testKey = "cake-recipe-app"

// --- in-memory snapshot repository ---

type memorySnapshots struct {
	docs    map[string][]byte
	saves   int
	loadErr error
	saveErr error
}

func newMemorySnapshots() *memorySnapshots {
	return &memorySnapshots{docs: make(map[string][]byte)}
}

func (m *memorySnapshots) Load(key string) ([]byte, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	doc, ok := m.docs[key]
	if !ok {
		return nil, storage.ErrSnapshotNotFound
	}
	return doc, nil
}

func (m *memorySnapshots) Save(key string, document []byte) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.docs[key] = append([]byte(nil), document...)
	return nil
}

var _ storage.SnapshotRepository = (*memorySnapshots)(nil)

type fataler interface {
	Helper()
	Fatalf(format string, args ...any)
}

var testClock = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

func newTestStore(t fataler, repo storage.SnapshotRepository) StateServicer {
	t.Helper()
	svc, err := NewStateService(repo, StateOptions{
		StorageKey:       testKey,
		EditorSecret:     "admin123",
		PlaceholderImage: "/placeholder.svg",
		SecretCost:       bcrypt.MinCost,
		Now:              testClock,
	})
	if err != nil {
		t.Fatalf("failed to create state service: %v", err)
	}
	return svc
}

func savedState(t *testing.T, repo *memorySnapshots) models.AppState {
	t.Helper()
	var st models.AppState
	if err := json.Unmarshal(repo.docs[testKey], &st); err != nil {
		t.Fatalf("failed to decode saved snapshot: %v", err)
	}
	return st
}

func countFor(counts []CategoryCount, name string) int {
	for _, c := range counts {
		if c.Name == name {
			return c.Count
		}
	}
	return -1
}

// --- initialization ---

func TestNewStateService(t *testing.T) {
	t.Run("missing_snapshot_uses_seed", func(t *testing.T) {
		repo := newMemorySnapshots()
		svc := newTestStore(t, repo)

		st := svc.State()
		if len(st.Recipes) != 3 {
			t.Fatalf("expected 3 seed recipes, got %d", len(st.Recipes))
		}
		if len(st.Categories) != 7 {
			t.Fatalf("expected 7 categories, got %d", len(st.Categories))
		}
		if st.CurrentCategory != models.AllCategory {
			t.Errorf("expected filter %q, got %q", models.AllCategory, st.CurrentCategory)
		}
		if repo.saves != 1 {
			t.Errorf("expected initial state to be written once, got %d writes", repo.saves)
		}
	})

	t.Run("corrupt_snapshot_uses_seed", func(t *testing.T) {
		repo := newMemorySnapshots()
		repo.docs[testKey] = []byte("{not json")
		svc := newTestStore(t, repo)

		if n := len(svc.State().Recipes); n != 3 {
			t.Fatalf("expected seed recipes, got %d", n)
		}
	})

	t.Run("unreadable_storage_uses_seed", func(t *testing.T) {
		repo := newMemorySnapshots()
		repo.loadErr = errors.New("disk on fire")
		svc := newTestStore(t, repo)

		if n := len(svc.State().Recipes); n != 3 {
			t.Fatalf("expected seed recipes, got %d", n)
		}
	})

	t.Run("merges_snapshot_over_defaults", func(t *testing.T) {
		repo := newMemorySnapshots()
		repo.docs[testKey] = []byte(`{
			"recipes": [{"id":"a","titulo":"Bolo de Fubá","categoria":"Bolos Simples","ingredientes":["fubá"],"preparo":["asse"],"dificuldade":"Fácil"}],
			"isDarkMode": true,
			"favorites": ["a"]
		}`)
		svc := newTestStore(t, repo)

		st := svc.State()
		if len(st.Recipes) != 1 || st.Recipes[0].ID != "a" {
			t.Fatalf("expected the saved recipe, got %+v", st.Recipes)
		}
		if !st.IsDarkMode {
			t.Error("expected dark mode from snapshot")
		}
		if st.IsEditorMode {
			t.Error("expected editor mode default false")
		}
		if len(st.Categories) != 7 {
			t.Errorf("expected default categories when absent, got %v", st.Categories)
		}
		if !st.Recipes[0].Favorite {
			t.Error("expected favorite flag to follow the favorites set")
		}
	})

	t.Run("empty_recipes_substitutes_seed", func(t *testing.T) {
		repo := newMemorySnapshots()
		repo.docs[testKey] = []byte(`{"recipes":[],"searchTerm":"chocolate","categories":["Todas","Tortas"]}`)
		svc := newTestStore(t, repo)

		st := svc.State()
		if len(st.Recipes) != 3 {
			t.Fatalf("expected seed recipes to replace empty list, got %d", len(st.Recipes))
		}
		if st.SearchTerm != "chocolate" {
			t.Errorf("expected search term to survive, got %q", st.SearchTerm)
		}
		// Seed recipe categories are added back so every recipe has a listed category.
		for _, r := range st.Recipes {
			if !st.HasCategory(r.Category) {
				t.Errorf("recipe %s category %q not listed", r.ID, r.Category)
			}
		}
	})

	t.Run("drops_dangling_favorites", func(t *testing.T) {
		repo := newMemorySnapshots()
		repo.docs[testKey] = []byte(`{"favorites":["1","ghost","1"]}`)
		svc := newTestStore(t, repo)

		testutil.AssertStrings(t, svc.State().Favorites, []string{"1"})
	})

	t.Run("drops_recipes_filed_under_all", func(t *testing.T) {
		repo := newMemorySnapshots()
		repo.docs[testKey] = []byte(`{
			"recipes": [
				{"id":"9","titulo":"Bolo Perdido","categoria":"Todas"},
				{"id":"a","titulo":"Bolo de Fubá","categoria":"Bolos Simples"}
			],
			"favorites": ["9","a"]
		}`)
		svc := newTestStore(t, repo)

		st := svc.State()
		if len(st.Recipes) != 1 || st.Recipes[0].ID != "a" {
			t.Fatalf("expected only recipe a, got %+v", st.Recipes)
		}
		testutil.AssertStrings(t, st.Favorites, []string{"a"})
		for _, r := range savedState(t, repo).Recipes {
			if r.Category == models.AllCategory {
				t.Errorf("recipe %s still filed under %q in storage", r.ID, r.Category)
			}
		}
	})

	t.Run("recovers_creation_time_from_id", func(t *testing.T) {
		repo := newMemorySnapshots()
		id := "01890a5d-ac96-774b-bcce-b302099a8057"
		repo.docs[testKey] = []byte(fmt.Sprintf(`{"recipes":[
			{"id":%q,"titulo":"Bolo de Milho","categoria":"Bolos Simples"},
			{"id":"7","titulo":"Bolo de Coco","categoria":"Bolos Simples"}
		]}`, id))
		svc := newTestStore(t, repo)

		st := svc.State()
		if st.Recipes[0].CreatedAt != "2023-06-30T03:34:18.518Z" {
			t.Errorf("expected creation time from id, got %q", st.Recipes[0].CreatedAt)
		}
		if st.Recipes[1].CreatedAt != "" {
			t.Errorf("expected no creation time for a numeric id, got %q", st.Recipes[1].CreatedAt)
		}
	})

	t.Run("restores_reserved_category", func(t *testing.T) {
		repo := newMemorySnapshots()
		repo.docs[testKey] = []byte(`{"categories":["Cupcakes","Bolos Simples","Bolos Veganos","Cupcakes"]}`)
		svc := newTestStore(t, repo)

		testutil.AssertStrings(t, svc.State().Categories,
			[]string{models.AllCategory, "Cupcakes", "Bolos Simples", "Bolos Veganos"})
	})

	t.Run("requires_storage_key", func(t *testing.T) {
		_, err := NewStateService(newMemorySnapshots(), StateOptions{})
		if err == nil {
			t.Fatal("expected error without storage key")
		}
	})
}

func TestRoundTrip(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	repo := storage.NewSnapshotRepository(db)

	svc := newTestStore(t, repo)
	_, err := svc.AddRecipe(testutil.NewRecipeDraft("Cupcakes"))
	testutil.AssertNoError(t, err)
	_, err = svc.ToggleFavorite("2")
	testutil.AssertNoError(t, err)
	testutil.AssertNoError(t, svc.AddCategory("Tortas"))
	testutil.AssertNoError(t, svc.SetCategoryFilter("Cupcakes"))
	testutil.AssertNoError(t, svc.SetSearchTerm("baunilha"))
	_, err = svc.ToggleTheme()
	testutil.AssertNoError(t, err)

	reloaded := newTestStore(t, repo)
	if !reflect.DeepEqual(svc.State(), reloaded.State()) {
		t.Fatalf("state changed across reload:\nbefore: %+v\nafter:  %+v", svc.State(), reloaded.State())
	}
}

// --- recipes ---

func TestAddRecipe(t *testing.T) {
	// Scenario A
	t.Run("appends_to_seed", func(t *testing.T) {
		repo := newMemorySnapshots()
		svc := newTestStore(t, repo)
		before := countFor(svc.CategoryCounts(), "Cupcakes")

		draft := testutil.NewRecipeDraft("Cupcakes")
		draft.Title = "Bolo Teste"
		r, err := svc.AddRecipe(draft)
		testutil.AssertNoError(t, err)

		st := svc.State()
		if len(st.Recipes) != 4 {
			t.Fatalf("expected 4 recipes, got %d", len(st.Recipes))
		}
		if r.Favorite {
			t.Error("new recipe should not be a favorite")
		}
		for _, other := range st.Recipes[:3] {
			if other.ID == r.ID {
				t.Fatalf("id %q is not unique", r.ID)
			}
		}
		if st.Recipes[3].ID != r.ID {
			t.Errorf("expected new recipe last, got %s", st.Recipes[3].ID)
		}
		if after := countFor(svc.CategoryCounts(), "Cupcakes"); after != before+1 {
			t.Errorf("expected Cupcakes count %d, got %d", before+1, after)
		}
		if r.CreatedAt != "2024-05-01T12:00:00Z" {
			t.Errorf("unexpected creation time %q", r.CreatedAt)
		}

		saved := savedState(t, repo)
		if len(saved.Recipes) != 4 {
			t.Errorf("expected the write to contain 4 recipes, got %d", len(saved.Recipes))
		}
	})

	t.Run("placeholder_image", func(t *testing.T) {
		svc := newTestStore(t, newMemorySnapshots())

		r, err := svc.AddRecipe(testutil.NewRecipeDraft("Cupcakes"))
		testutil.AssertNoError(t, err)
		if r.Image != "/placeholder.svg" {
			t.Errorf("expected placeholder image, got %q", r.Image)
		}
	})

	t.Run("no_validation_at_store_layer", func(t *testing.T) {
		svc := newTestStore(t, newMemorySnapshots())

		_, err := svc.AddRecipe(models.RecipeDraft{})
		testutil.AssertNoError(t, err)
		if n := len(svc.State().Recipes); n != 4 {
			t.Errorf("expected empty draft to be stored, got %d recipes", n)
		}
	})

	t.Run("draft_slices_are_copied", func(t *testing.T) {
		svc := newTestStore(t, newMemorySnapshots())

		draft := testutil.NewRecipeDraft("Cupcakes")
		r, err := svc.AddRecipe(draft)
		testutil.AssertNoError(t, err)
		draft.Ingredients[0] = "changed"

		stored, err := svc.Recipe(r.ID)
		testutil.AssertNoError(t, err)
		if stored.Ingredients[0] == "changed" {
			t.Error("store aliases caller slices")
		}
	})
}

func TestUpdateRecipe(t *testing.T) {
	t.Run("merges_fields", func(t *testing.T) {
		svc := newTestStore(t, newMemorySnapshots())
		title := "Bolo de Chocolate Duplo"
		hard := models.DifficultyHard

		r, err := svc.UpdateRecipe("1", models.RecipePatch{Title: &title, Difficulty: &hard})
		testutil.AssertNoError(t, err)

		if r.Title != title || r.Difficulty != hard {
			t.Errorf("patch not applied: %+v", r)
		}
		if r.Category != "Bolos Simples" {
			t.Errorf("untouched field changed: %s", r.Category)
		}
		if r.ID != "1" || r.CreatedAt == "" {
			t.Errorf("identity fields changed: %+v", r)
		}
	})

	t.Run("keeps_favorite_flag", func(t *testing.T) {
		svc := newTestStore(t, newMemorySnapshots())
		_, err := svc.ToggleFavorite("1")
		testutil.AssertNoError(t, err)

		r, err := svc.UpdateRecipe("1", models.RecipePatch{Ingredients: []string{"farinha"}})
		testutil.AssertNoError(t, err)
		if !r.Favorite {
			t.Error("expected favorite flag to survive update")
		}
		testutil.AssertStrings(t, r.Ingredients, []string{"farinha"})
	})

	t.Run("unknown_id", func(t *testing.T) {
		repo := newMemorySnapshots()
		svc := newTestStore(t, repo)
		before := svc.State()
		title := "x"

		_, err := svc.UpdateRecipe("missing", models.RecipePatch{Title: &title})
		testutil.AssertAppError(t, err, "RECIPE_NOT_FOUND")
		if !reflect.DeepEqual(before, svc.State()) {
			t.Error("state changed on unknown id")
		}
		if repo.saves != 1 {
			t.Errorf("expected no write for a no-op, got %d writes", repo.saves)
		}
	})
}

func TestDeleteRecipe(t *testing.T) {
	t.Run("removes_recipe_and_favorite", func(t *testing.T) {
		svc := newTestStore(t, newMemorySnapshots())
		_, err := svc.ToggleFavorite("2")
		testutil.AssertNoError(t, err)

		testutil.AssertNoError(t, svc.DeleteRecipe("2"))

		st := svc.State()
		if st.RecipeIndex("2") >= 0 {
			t.Error("recipe 2 still present")
		}
		if st.IsFavorite("2") {
			t.Error("deleted recipe still in favorites")
		}
	})

	t.Run("unknown_id", func(t *testing.T) {
		svc := newTestStore(t, newMemorySnapshots())

		testutil.AssertAppError(t, svc.DeleteRecipe("missing"), "RECIPE_NOT_FOUND")
		if n := len(svc.State().Recipes); n != 3 {
			t.Errorf("expected 3 recipes, got %d", n)
		}
	})
}

func TestToggleFavorite(t *testing.T) {
	// Scenario B
	t.Run("toggle_twice_restores", func(t *testing.T) {
		svc := newTestStore(t, newMemorySnapshots())

		fav, err := svc.ToggleFavorite("1")
		testutil.AssertNoError(t, err)
		if !fav {
			t.Error("expected recipe to become a favorite")
		}
		st := svc.State()
		testutil.AssertStrings(t, st.Favorites, []string{"1"})
		if !st.Recipes[0].Favorite {
			t.Error("expected recipe 1 favorite flag")
		}

		fav, err = svc.ToggleFavorite("1")
		testutil.AssertNoError(t, err)
		if fav {
			t.Error("expected recipe to stop being a favorite")
		}
		st = svc.State()
		testutil.AssertStrings(t, st.Favorites, []string{})
		if st.Recipes[0].Favorite {
			t.Error("expected recipe 1 favorite flag cleared")
		}
	})

	t.Run("unknown_id_never_enters_favorites", func(t *testing.T) {
		svc := newTestStore(t, newMemorySnapshots())

		_, err := svc.ToggleFavorite("ghost")
		testutil.AssertAppError(t, err, "RECIPE_NOT_FOUND")
		if favs := svc.State().Favorites; len(favs) != 0 {
			t.Errorf("expected no favorites, got %v", favs)
		}
	})

	t.Run("favorite_view", func(t *testing.T) {
		svc := newTestStore(t, newMemorySnapshots())
		_, _ = svc.ToggleFavorite("3")
		_, _ = svc.ToggleFavorite("1")

		favs := svc.FavoriteRecipes()
		if len(favs) != 2 || favs[0].ID != "1" || favs[1].ID != "3" {
			t.Errorf("expected favorites 1 and 3 in creation order, got %+v", favs)
		}
	})
}

// --- view state and editor mode ---

func TestViewState(t *testing.T) {
	t.Run("category_filter_is_not_validated", func(t *testing.T) {
		svc := newTestStore(t, newMemorySnapshots())

		testutil.AssertNoError(t, svc.SetCategoryFilter("Inexistente"))
		if got := svc.State().CurrentCategory; got != "Inexistente" {
			t.Errorf("expected filter to be stored as given, got %q", got)
		}
		if n := len(svc.FilteredRecipes()); n != 0 {
			t.Errorf("expected no matches, got %d", n)
		}
	})

	t.Run("toggle_theme", func(t *testing.T) {
		repo := newMemorySnapshots()
		svc := newTestStore(t, repo)

		dark, err := svc.ToggleTheme()
		testutil.AssertNoError(t, err)
		if !dark || !savedState(t, repo).IsDarkMode {
			t.Error("expected dark mode on and persisted")
		}
		dark, err = svc.ToggleTheme()
		testutil.AssertNoError(t, err)
		if dark {
			t.Error("expected dark mode off")
		}
	})
}

func TestEditorMode(t *testing.T) {
	// Scenario E
	t.Run("wrong_secret", func(t *testing.T) {
		repo := newMemorySnapshots()
		svc := newTestStore(t, repo)

		ok, err := svc.EnterEditorMode("wrong")
		testutil.AssertNoError(t, err)
		if ok {
			t.Error("expected failure for wrong secret")
		}
		if svc.IsEditorMode() {
			t.Error("editor mode should stay off")
		}
		if repo.saves != 1 {
			t.Errorf("expected no write on failure, got %d writes", repo.saves)
		}
	})

	t.Run("configured_secret", func(t *testing.T) {
		repo := newMemorySnapshots()
		svc := newTestStore(t, repo)

		ok, err := svc.EnterEditorMode("admin123")
		testutil.AssertNoError(t, err)
		if !ok {
			t.Fatal("expected success for configured secret")
		}
		if !svc.IsEditorMode() || !savedState(t, repo).IsEditorMode {
			t.Error("expected editor mode on and persisted")
		}

		testutil.AssertNoError(t, svc.ExitEditorMode())
		if svc.IsEditorMode() {
			t.Error("expected editor mode off after exit")
		}
	})
}

// --- categories ---

func TestAddCategory(t *testing.T) {
	t.Run("appends_trimmed", func(t *testing.T) {
		svc := newTestStore(t, newMemorySnapshots())

		testutil.AssertNoError(t, svc.AddCategory("  Tortas "))
		cats := svc.State().Categories
		if cats[len(cats)-1] != "Tortas" {
			t.Errorf("expected Tortas last, got %v", cats)
		}
	})

	t.Run("duplicate_is_noop", func(t *testing.T) {
		svc := newTestStore(t, newMemorySnapshots())

		testutil.AssertAppError(t, svc.AddCategory("Cupcakes"), "CATEGORY_EXISTS")
		testutil.AssertAppError(t, svc.AddCategory(models.AllCategory), "CATEGORY_EXISTS")
		if n := len(svc.State().Categories); n != 7 {
			t.Errorf("expected 7 categories, got %d", n)
		}
	})

	t.Run("blank_name", func(t *testing.T) {
		svc := newTestStore(t, newMemorySnapshots())
		testutil.AssertAppError(t, svc.AddCategory("   "), "INVALID_INPUT")
	})
}

func TestRenameCategory(t *testing.T) {
	// Scenario C
	t.Run("cascades_to_recipes_and_filter", func(t *testing.T) {
		svc := newTestStore(t, newMemorySnapshots())
		testutil.AssertNoError(t, svc.SetCategoryFilter("Cupcakes"))

		testutil.AssertNoError(t, svc.RenameCategory("Cupcakes", "Cupcakes Especiais"))

		st := svc.State()
		if st.HasCategory("Cupcakes") {
			t.Error("old name still listed")
		}
		if !st.HasCategory("Cupcakes Especiais") {
			t.Error("new name not listed")
		}
		if st.Categories[6] != "Cupcakes Especiais" {
			t.Errorf("expected rename in place, got %v", st.Categories)
		}
		if st.Recipes[1].Category != "Cupcakes Especiais" {
			t.Errorf("recipe 2 category not updated: %s", st.Recipes[1].Category)
		}
		if st.CurrentCategory != "Cupcakes Especiais" {
			t.Errorf("active filter not updated: %s", st.CurrentCategory)
		}
	})

	t.Run("filter_on_other_category_untouched", func(t *testing.T) {
		svc := newTestStore(t, newMemorySnapshots())
		testutil.AssertNoError(t, svc.SetCategoryFilter("Bolos Simples"))

		testutil.AssertNoError(t, svc.RenameCategory("Cupcakes", "Mini Bolos"))
		if got := svc.State().CurrentCategory; got != "Bolos Simples" {
			t.Errorf("expected filter unchanged, got %s", got)
		}
	})

	t.Run("guards", func(t *testing.T) {
		svc := newTestStore(t, newMemorySnapshots())

		testutil.AssertAppError(t, svc.RenameCategory(models.AllCategory, "Tudo"), "RESERVED_CATEGORY")
		testutil.AssertAppError(t, svc.RenameCategory("Tortas", "Tortas Doces"), "CATEGORY_NOT_FOUND")
		testutil.AssertAppError(t, svc.RenameCategory("Cupcakes", "Bolos Simples"), "CATEGORY_EXISTS")
		testutil.AssertAppError(t, svc.RenameCategory("Cupcakes", " Cupcakes "), "CATEGORY_EXISTS")
		testutil.AssertAppError(t, svc.RenameCategory("Cupcakes", models.AllCategory), "CATEGORY_EXISTS")
		testutil.AssertAppError(t, svc.RenameCategory("Cupcakes", " "), "INVALID_INPUT")

		if svc.State().Recipes[1].Category != "Cupcakes" {
			t.Error("failed renames must not touch recipes")
		}
	})
}

func TestDeleteCategory(t *testing.T) {
	t.Run("in_use_is_noop", func(t *testing.T) {
		svc := newTestStore(t, newMemorySnapshots())

		testutil.AssertAppError(t, svc.DeleteCategory("Cupcakes"), "CATEGORY_IN_USE")
		if !svc.State().HasCategory("Cupcakes") {
			t.Error("category in use was removed")
		}
	})

	t.Run("unused_resets_filter", func(t *testing.T) {
		svc := newTestStore(t, newMemorySnapshots())
		testutil.AssertNoError(t, svc.SetCategoryFilter("Bolos de Festa"))

		testutil.AssertNoError(t, svc.DeleteCategory("Bolos de Festa"))

		st := svc.State()
		if st.HasCategory("Bolos de Festa") {
			t.Error("category not removed")
		}
		if st.CurrentCategory != models.AllCategory {
			t.Errorf("expected filter reset to %s, got %s", models.AllCategory, st.CurrentCategory)
		}
	})

	t.Run("after_last_recipe_removed", func(t *testing.T) {
		svc := newTestStore(t, newMemorySnapshots())

		testutil.AssertNoError(t, svc.DeleteRecipe("2"))
		testutil.AssertNoError(t, svc.DeleteCategory("Cupcakes"))
	})

	t.Run("reserved_and_unknown", func(t *testing.T) {
		svc := newTestStore(t, newMemorySnapshots())

		testutil.AssertAppError(t, svc.DeleteCategory(models.AllCategory), "RESERVED_CATEGORY")
		testutil.AssertAppError(t, svc.DeleteCategory("Tortas"), "CATEGORY_NOT_FOUND")
	})
}

// --- persistence failures ---

func TestPersistenceFailure(t *testing.T) {
	repo := newMemorySnapshots()
	svc := newTestStore(t, repo)
	repo.saveErr = fmt.Errorf("quota exceeded")

	r, err := svc.AddRecipe(testutil.NewRecipeDraft("Cupcakes"))
	testutil.AssertAppError(t, err, "PERSISTENCE_FAILED")
	if !errors.Is(err, apperrors.ErrPersistenceFailed) {
		t.Error("expected errors.Is to match the sentinel")
	}
	if r == nil {
		t.Fatal("expected the recipe even when the write fails")
	}
	if svc.State().RecipeIndex(r.ID) < 0 {
		t.Error("state should stay live after a failed write")
	}

	fav, err := svc.ToggleFavorite(r.ID)
	testutil.AssertAppError(t, err, "PERSISTENCE_FAILED")
	if !fav {
		t.Error("expected toggle result even when the write fails")
	}

	repo.saveErr = nil
	testutil.AssertNoError(t, svc.SetSearchTerm(""))
	if saved := savedState(t, repo); len(saved.Recipes) != 4 || len(saved.Favorites) != 1 {
		t.Errorf("expected next write to carry the live state, got %d recipes %v favorites",
			len(saved.Recipes), saved.Favorites)
	}
}

func TestSavedDocumentShape(t *testing.T) {
	repo := newMemorySnapshots()
	svc := newTestStore(t, repo)
	_, err := svc.ToggleFavorite("1")
	testutil.AssertNoError(t, err)

	var doc map[string]any
	if err := json.Unmarshal(repo.docs[testKey], &doc); err != nil {
		t.Fatalf("failed to decode document: %v", err)
	}
	for _, key := range []string{"recipes", "isEditorMode", "isDarkMode", "currentCategory", "searchTerm", "favorites", "categories"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("document missing %q", key)
		}
	}
	first := doc["recipes"].([]any)[0].(map[string]any)
	if first["favorito"] != true {
		t.Errorf("expected mirrored favorite flag in document, got %v", first["favorito"])
	}
}

func TestRequireListedCategory(t *testing.T) {
	newStrictStore := func(t *testing.T) StateServicer {
		t.Helper()
		svc, err := NewStateService(newMemorySnapshots(), StateOptions{
			StorageKey:            testKey,
			EditorSecret:          "admin123",
			SecretCost:            bcrypt.MinCost,
			Now:                   testClock,
			RequireListedCategory: true,
		})
		if err != nil {
			t.Fatalf("failed to create state service: %v", err)
		}
		return svc
	}

	t.Run("add_after_category_removed", func(t *testing.T) {
		svc := newStrictStore(t)
		testutil.AssertNoError(t, svc.AddCategory("Tortas"))
		testutil.AssertNoError(t, svc.DeleteCategory("Tortas"))

		_, err := svc.AddRecipe(testutil.NewRecipeDraft("Tortas"))
		testutil.AssertAppError(t, err, "INVALID_INPUT")
		if n := len(svc.State().Recipes); n != 3 {
			t.Errorf("expected no recipe to be added, got %d recipes", n)
		}
	})

	t.Run("update_into_all", func(t *testing.T) {
		svc := newStrictStore(t)
		all := models.AllCategory
		_, err := svc.UpdateRecipe("1", models.RecipePatch{Category: &all})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("update_without_category_change", func(t *testing.T) {
		svc := newStrictStore(t)
		title := "Bolo Renomeado"
		r, err := svc.UpdateRecipe("1", models.RecipePatch{Title: &title})
		testutil.AssertNoError(t, err)
		if r.Title != title {
			t.Errorf("expected title %q, got %q", title, r.Title)
		}
	})

	t.Run("concurrent_add_and_delete", func(t *testing.T) {
		svc := newStrictStore(t)
		testutil.AssertNoError(t, svc.AddCategory("Tortas"))

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				_, _ = svc.AddRecipe(testutil.NewRecipeDraft("Tortas"))
			}()
			go func() {
				defer wg.Done()
				_ = svc.DeleteCategory("Tortas")
			}()
		}
		wg.Wait()

		st := svc.State()
		for _, r := range st.Recipes {
			if !st.HasCategory(r.Category) {
				t.Fatalf("recipe %s filed under unlisted category %q", r.ID, r.Category)
			}
		}
	})
}
