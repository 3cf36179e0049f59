package services

import (
	"time"

	apperrors "cakebook/internal/errors"
	"cakebook/internal/models"
)

// Recipe returns the recipe with the given id.
func (s *stateService) Recipe(id string) (*models.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.state.RecipeIndex(id)
	if i < 0 {
		return nil, apperrors.ErrRecipeNotFound
	}
	r := s.state.Recipes[i].Clone()
	r.Favorite = s.state.IsFavorite(id)
	return &r, nil
}

// AddRecipe appends a new recipe built from draft. Fields are stored as
// given: required-field checks belong to the caller. The category is only
// checked when the store was built with RequireListedCategory.
func (s *stateService) AddRecipe(draft models.RecipeDraft) (*models.Recipe, error) {
	recipe := models.Recipe{
		ID:          s.newID(),
		Title:       draft.Title,
		Category:    draft.Category,
		Image:       draft.Image,
		Description: draft.Description,
		Ingredients: append([]string{}, draft.Ingredients...),
		Steps:       append([]string{}, draft.Steps...),
		Time:        draft.Time,
		Yield:       draft.Yield,
		Difficulty:  draft.Difficulty,
		CreatedAt:   s.now().UTC().Format(time.RFC3339Nano),
	}
	if recipe.Image == "" {
		recipe.Image = s.placeholder
	}

	err := s.mutate(func(st *models.AppState) error {
		if s.strictCats {
			if err := CheckFiling(*st, recipe.Category); err != nil {
				return err
			}
		}
		st.Recipes = append(st.Recipes, recipe)
		return nil
	})
	if err != nil && !isPersistenceError(err) {
		return nil, err
	}
	out := recipe.Clone()
	return &out, err
}

// UpdateRecipe merges the non-nil fields of patch into the recipe.
// The id and creation time never change.
func (s *stateService) UpdateRecipe(id string, patch models.RecipePatch) (*models.Recipe, error) {
	var updated models.Recipe
	err := s.mutate(func(st *models.AppState) error {
		i := st.RecipeIndex(id)
		if i < 0 {
			return apperrors.ErrRecipeNotFound
		}
		r := &st.Recipes[i]
		if patch.Title != nil {
			r.Title = *patch.Title
		}
		if patch.Category != nil {
			if s.strictCats {
				if err := CheckFiling(*st, *patch.Category); err != nil {
					return err
				}
			}
			r.Category = *patch.Category
		}
		if patch.Image != nil {
			r.Image = *patch.Image
			if r.Image == "" {
				r.Image = s.placeholder
			}
		}
		if patch.Description != nil {
			r.Description = *patch.Description
		}
		if patch.Ingredients != nil {
			r.Ingredients = append([]string{}, patch.Ingredients...)
		}
		if patch.Steps != nil {
			r.Steps = append([]string{}, patch.Steps...)
		}
		if patch.Time != nil {
			r.Time = *patch.Time
		}
		if patch.Yield != nil {
			r.Yield = *patch.Yield
		}
		if patch.Difficulty != nil {
			r.Difficulty = *patch.Difficulty
		}
		updated = r.Clone()
		updated.Favorite = st.IsFavorite(id)
		return nil
	})
	if err != nil && !isPersistenceError(err) {
		return nil, err
	}
	return &updated, err
}

// DeleteRecipe removes the recipe and its favorite entry.
func (s *stateService) DeleteRecipe(id string) error {
	return s.mutate(func(st *models.AppState) error {
		i := st.RecipeIndex(id)
		if i < 0 {
			return apperrors.ErrRecipeNotFound
		}
		st.Recipes = append(st.Recipes[:i], st.Recipes[i+1:]...)
		st.Favorites = without(st.Favorites, id)
		return nil
	})
}

// ToggleFavorite flips the favorite membership of a recipe and returns the
// new membership. Unknown ids never enter the favorites set.
func (s *stateService) ToggleFavorite(id string) (bool, error) {
	var favorite bool
	err := s.mutate(func(st *models.AppState) error {
		if st.RecipeIndex(id) < 0 {
			return apperrors.ErrRecipeNotFound
		}
		if st.IsFavorite(id) {
			st.Favorites = without(st.Favorites, id)
		} else {
			st.Favorites = append(st.Favorites, id)
			favorite = true
		}
		return nil
	})
	if err != nil && !isPersistenceError(err) {
		return false, err
	}
	return favorite, err
}

// CheckFiling reports whether a recipe may be filed under category in st:
// it must be listed and must not be "Todas".
func CheckFiling(st models.AppState, category string) error {
	if category == models.AllCategory {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "a recipe cannot be filed under "+models.AllCategory)
	}
	if !st.HasCategory(category) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown category: "+category)
	}
	return nil
}

// without returns list with every occurrence of v removed.
func without(list []string, v string) []string {
	out := list[:0]
	for _, item := range list {
		if item != v {
			out = append(out, item)
		}
	}
	return out
}
