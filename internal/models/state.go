package models

// AppState is the aggregate root persisted as one document per storage key.
type AppState struct {
	Recipes         []Recipe `json:"recipes"`
	IsEditorMode    bool     `json:"isEditorMode"`
	IsDarkMode      bool     `json:"isDarkMode"`
	CurrentCategory string   `json:"currentCategory"`
	SearchTerm      string   `json:"searchTerm"`
	Favorites       []string `json:"favorites"`
	Categories      []string `json:"categories"`
}

// Clone returns a deep copy of the state.
func (s AppState) Clone() AppState {
	out := s
	out.Recipes = make([]Recipe, len(s.Recipes))
	for i, r := range s.Recipes {
		out.Recipes[i] = r.Clone()
	}
	out.Favorites = append([]string{}, s.Favorites...)
	out.Categories = append([]string{}, s.Categories...)
	return out
}

// IsFavorite reports whether id is in the favorites set.
func (s AppState) IsFavorite(id string) bool {
	for _, fav := range s.Favorites {
		if fav == id {
			return true
		}
	}
	return false
}

// RecipeIndex returns the position of the recipe with the given id, or -1.
func (s AppState) RecipeIndex(id string) int {
	for i := range s.Recipes {
		if s.Recipes[i].ID == id {
			return i
		}
	}
	return -1
}

// HasCategory reports whether name is in the category list.
func (s AppState) HasCategory(name string) bool {
	for _, c := range s.Categories {
		if c == name {
			return true
		}
	}
	return false
}
