package models

// Difficulty is the preparation difficulty of a recipe.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Fácil"
	DifficultyMedium Difficulty = "Médio"
	DifficultyHard   Difficulty = "Difícil"
)

// DifficultyLevels lists the difficulties in display order.
var DifficultyLevels = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// Valid reports whether d is one of the known difficulty levels.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// AllCategory is the synthetic category that matches every recipe.
// It is never stored on a recipe and cannot be renamed or deleted.
const AllCategory = "Todas"

// Recipe represents a single cake recipe.
//
// JSON names follow the durable document written by earlier versions of the
// app so existing snapshots keep loading.
type Recipe struct {
	ID          string     `json:"id" yaml:"id"`
	Title       string     `json:"titulo" yaml:"titulo"`
	Category    string     `json:"categoria" yaml:"categoria"`
	Image       string     `json:"imagem" yaml:"imagem"`
	Description string     `json:"descricao" yaml:"descricao"`
	Ingredients []string   `json:"ingredientes" yaml:"ingredientes"`
	Steps       []string   `json:"preparo" yaml:"preparo"`
	Time        string     `json:"tempo" yaml:"tempo"`
	Yield       string     `json:"rendimento" yaml:"rendimento"`
	Difficulty  Difficulty `json:"dificuldade" yaml:"dificuldade"`
	// Favorite mirrors membership in AppState.Favorites. It is filled in on
	// read and ignored when a snapshot is loaded.
	Favorite  bool   `json:"favorito" yaml:"-"`
	CreatedAt string `json:"dataCriacao" yaml:"-"`
}

// Clone returns a deep copy of the recipe.
func (r Recipe) Clone() Recipe {
	r.Ingredients = append([]string(nil), r.Ingredients...)
	r.Steps = append([]string(nil), r.Steps...)
	return r
}

// RecipeDraft holds the caller-supplied fields of a new recipe.
type RecipeDraft struct {
	Title       string
	Category    string
	Image       string
	Description string
	Ingredients []string
	Steps       []string
	Time        string
	Yield       string
	Difficulty  Difficulty
}

// RecipePatch holds the fields to merge into an existing recipe.
// Nil fields are left untouched.
type RecipePatch struct {
	Title       *string
	Category    *string
	Image       *string
	Description *string
	Ingredients []string
	Steps       []string
	Time        *string
	Yield       *string
	Difficulty  *Difficulty
}
