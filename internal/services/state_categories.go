package services

import (
	"errors"
	"strings"

	apperrors "cakebook/internal/errors"
	"cakebook/internal/models"
)

// AddCategory appends a category. Names are trimmed and must be unique.
func (s *stateService) AddCategory(name string) error {
	name = strings.TrimSpace(name)
	return s.mutate(func(st *models.AppState) error {
		if name == "" {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
		}
		if st.HasCategory(name) {
			return apperrors.ErrCategoryExists
		}
		st.Categories = append(st.Categories, name)
		return nil
	})
}

// RenameCategory renames a category in place and moves every recipe and the
// active filter that referenced the old name.
func (s *stateService) RenameCategory(oldName, newName string) error {
	newName = strings.TrimSpace(newName)
	return s.mutate(func(st *models.AppState) error {
		if oldName == models.AllCategory {
			return apperrors.ErrReservedCategory
		}
		if !st.HasCategory(oldName) {
			return apperrors.ErrCategoryNotFound
		}
		if newName == "" {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
		}
		if newName == oldName || st.HasCategory(newName) {
			return apperrors.ErrCategoryExists
		}

		for i, c := range st.Categories {
			if c == oldName {
				st.Categories[i] = newName
			}
		}
		for i := range st.Recipes {
			if st.Recipes[i].Category == oldName {
				st.Recipes[i].Category = newName
			}
		}
		if st.CurrentCategory == oldName {
			st.CurrentCategory = newName
		}
		return nil
	})
}

// DeleteCategory removes a category that no recipe uses. The active filter
// falls back to "Todas" when it pointed at the removed category.
func (s *stateService) DeleteCategory(name string) error {
	return s.mutate(func(st *models.AppState) error {
		if name == models.AllCategory {
			return apperrors.ErrReservedCategory
		}
		if !st.HasCategory(name) {
			return apperrors.ErrCategoryNotFound
		}
		for _, r := range st.Recipes {
			if r.Category == name {
				return apperrors.ErrCategoryInUse
			}
		}

		st.Categories = without(st.Categories, name)
		if st.CurrentCategory == name {
			st.CurrentCategory = models.AllCategory
		}
		return nil
	})
}

// isPersistenceError reports whether err means the change is live but was
// not written to storage.
func isPersistenceError(err error) bool {
	return errors.Is(err, apperrors.ErrPersistenceFailed)
}
