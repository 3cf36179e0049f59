package services

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"cakebook/internal/models"
)

var firstNumber = regexp.MustCompile(`\d+`)

// leadingNumber returns the first integer found in free text such as
// "40 minutos" or "12 cupcakes", or 0 when there is none.
func leadingNumber(s string) int {
	m := firstNumber.FindString(s)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return n
}

// matcher tests recipes against a search term with Unicode case folding.
type matcher struct {
	fold cases.Caser
	term string
}

func newMatcher(term string) *matcher {
	fold := cases.Fold()
	return &matcher{fold: fold, term: fold.String(term)}
}

func (m *matcher) contains(s string) bool {
	return strings.Contains(m.fold.String(s), m.term)
}

// matches reports whether the term occurs in the title, any ingredient or
// the description. An empty term matches everything.
func (m *matcher) matches(r models.Recipe) bool {
	if m.term == "" {
		return true
	}
	if m.contains(r.Title) || m.contains(r.Description) {
		return true
	}
	for _, ing := range r.Ingredients {
		if m.contains(ing) {
			return true
		}
	}
	return false
}

func inCategory(r models.Recipe, category string) bool {
	return category == "" || category == models.AllCategory || r.Category == category
}

// FilteredRecipes returns the recipes matching the active category filter
// and search term, in creation order.
func (s *stateService) FilteredRecipes() []models.Recipe {
	st := s.State()

	m := newMatcher(st.SearchTerm)
	out := []models.Recipe{}
	for _, r := range st.Recipes {
		if inCategory(r, st.CurrentCategory) && m.matches(r) {
			out = append(out, r)
		}
	}
	return out
}

// SearchRecipes applies the advanced search filters. It ignores the stored
// category filter and search term.
func (s *stateService) SearchRecipes(filter SearchFilter) []models.Recipe {
	st := s.State()

	m := newMatcher(filter.Term)
	out := []models.Recipe{}
	for _, r := range st.Recipes {
		if !m.matches(r) || !inCategory(r, filter.Category) {
			continue
		}
		if filter.Difficulty != "" && r.Difficulty != filter.Difficulty {
			continue
		}
		if filter.MaxMinutes > 0 && leadingNumber(r.Time) > filter.MaxMinutes {
			continue
		}
		servings := leadingNumber(r.Yield)
		if filter.MinServings > 0 && servings < filter.MinServings {
			continue
		}
		if filter.MaxServings > 0 && servings > filter.MaxServings {
			continue
		}
		out = append(out, r)
	}
	return out
}

// FavoriteRecipes returns the favorited recipes in creation order.
func (s *stateService) FavoriteRecipes() []models.Recipe {
	st := s.State()

	out := []models.Recipe{}
	for _, r := range st.Recipes {
		if r.Favorite {
			out = append(out, r)
		}
	}
	return out
}

// CategoryCounts returns the number of recipes per category, in category
// order. "Todas" counts every recipe.
func (s *stateService) CategoryCounts() []CategoryCount {
	s.mu.Lock()
	defer s.mu.Unlock()

	perCategory := make(map[string]int, len(s.state.Categories))
	for _, r := range s.state.Recipes {
		perCategory[r.Category]++
	}

	out := make([]CategoryCount, 0, len(s.state.Categories))
	for _, c := range s.state.Categories {
		n := perCategory[c]
		if c == models.AllCategory {
			n = len(s.state.Recipes)
		}
		out = append(out, CategoryCount{Name: c, Count: n})
	}
	return out
}

// Stats returns the catalog totals.
func (s *stateService) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Stats{
		Recipes:    len(s.state.Recipes),
		Favorites:  len(s.state.Favorites),
		Categories: len(s.state.Categories),
	}
}
