// Package seed provides the built-in recipe catalog used when no valid
// snapshot exists yet.
package seed

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"cakebook/internal/models"
)

//go:embed seed.yaml
var builtin []byte

// Dataset is the initial set of recipes and categories.
type Dataset struct {
	Categories []string        `yaml:"categories"`
	Recipes    []models.Recipe `yaml:"recipes"`
}

// Default returns the embedded dataset. Creation timestamps are set to now,
// matching recipes that were "just created" on first launch.
func Default(now time.Time) (*Dataset, error) {
	return Parse(builtin, now)
}

// LoadFile parses a dataset from a YAML file on disk.
func LoadFile(path string, now time.Time) (*Dataset, error) {
	//nolint:gosec // G304: path comes from operator configuration
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file %s: %w", path, err)
	}
	return Parse(data, now)
}

// Parse decodes a YAML dataset and checks it is usable as initial state.
func Parse(data []byte, now time.Time) (*Dataset, error) {
	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("failed to parse seed data: %w", err)
	}

	if len(ds.Recipes) == 0 {
		return nil, fmt.Errorf("seed data has no recipes")
	}

	createdAt := now.UTC().Format(time.RFC3339Nano)
	seen := make(map[string]bool, len(ds.Recipes))
	for i := range ds.Recipes {
		r := &ds.Recipes[i]
		if r.ID == "" {
			return nil, fmt.Errorf("seed recipe %d has no id", i)
		}
		if seen[r.ID] {
			return nil, fmt.Errorf("duplicate seed recipe id %q", r.ID)
		}
		seen[r.ID] = true
		if r.Category == models.AllCategory {
			return nil, fmt.Errorf("seed recipe %q uses the reserved category", r.ID)
		}
		if !r.Difficulty.Valid() {
			return nil, fmt.Errorf("seed recipe %q has unknown difficulty %q", r.ID, r.Difficulty)
		}
		r.CreatedAt = createdAt
	}

	return &ds, nil
}

// State builds the initial application state from the dataset.
func (ds *Dataset) State() models.AppState {
	state := models.AppState{
		CurrentCategory: models.AllCategory,
		Favorites:       []string{},
		Categories:      append([]string{}, ds.Categories...),
		Recipes:         make([]models.Recipe, len(ds.Recipes)),
	}
	for i, r := range ds.Recipes {
		state.Recipes[i] = r.Clone()
	}
	return state
}
