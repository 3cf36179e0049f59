package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	apperrors "cakebook/internal/errors"
	"cakebook/internal/logger"
	"cakebook/internal/models"
	"cakebook/internal/seed"
	"cakebook/internal/storage"
	"cakebook/internal/uuid"
)

// StateOptions configures a state service.
type StateOptions struct {
	StorageKey       string
	EditorSecret     string
	PlaceholderImage string

	// Seed is the dataset used when no valid snapshot exists. Nil means the
	// embedded default catalog.
	Seed *seed.Dataset
	// SecretCost is the bcrypt cost used to hash EditorSecret. Zero means
	// bcrypt.DefaultCost.
	SecretCost int
	// RequireListedCategory makes AddRecipe and UpdateRecipe reject a
	// category that is not listed, or "Todas", in the same critical section
	// as the write.
	RequireListedCategory bool

	Now   func() time.Time
	NewID func() string
}

// stateService is the single owner of the application state.
type stateService struct {
	mu    sync.Mutex
	state models.AppState

	repo        storage.SnapshotRepository
	key         string
	secretHash  []byte
	placeholder string
	strictCats  bool
	seed        *seed.Dataset
	now         func() time.Time
	newID       func() string
	log         *zap.SugaredLogger
}

// NewStateService builds the state from the snapshot stored under
// opts.StorageKey, falling back to the seed dataset, and writes the result
// back once.
func NewStateService(repo storage.SnapshotRepository, opts StateOptions) (StateServicer, error) {
	if opts.StorageKey == "" {
		return nil, fmt.Errorf("storage key is required")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.New
	}
	if opts.SecretCost == 0 {
		opts.SecretCost = bcrypt.DefaultCost
	}
	if opts.Seed == nil {
		ds, err := seed.Default(opts.Now())
		if err != nil {
			return nil, fmt.Errorf("failed to load seed data: %w", err)
		}
		opts.Seed = ds
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(opts.EditorSecret), opts.SecretCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash editor secret: %w", err)
	}

	s := &stateService{
		repo:        repo,
		key:         opts.StorageKey,
		secretHash:  hash,
		placeholder: opts.PlaceholderImage,
		strictCats:  opts.RequireListedCategory,
		seed:        opts.Seed,
		now:         opts.Now,
		newID:       opts.NewID,
		log:         logger.Named("store"),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	loaded := s.load()
	initial := normalize(loaded)
	if dropped := len(loaded.Recipes) - len(initial.Recipes); dropped > 0 {
		s.log.Warnw("dropped invalid recipes from snapshot", "count", dropped)
	}
	if err := s.commit(initial); err != nil {
		s.log.Warnw("initial state is not durable", "error", err)
	}
	return s, nil
}

// snapshotDocument mirrors models.AppState with pointer fields so absent
// keys can be told apart from zero values when merging.
type snapshotDocument struct {
	Recipes         *[]models.Recipe `json:"recipes"`
	IsEditorMode    *bool            `json:"isEditorMode"`
	IsDarkMode      *bool            `json:"isDarkMode"`
	CurrentCategory *string          `json:"currentCategory"`
	SearchTerm      *string          `json:"searchTerm"`
	Favorites       *[]string        `json:"favorites"`
	Categories      *[]string        `json:"categories"`
}

// load reads the stored snapshot. Any failure degrades to the seed state.
func (s *stateService) load() models.AppState {
	initial := s.seed.State()

	doc, err := s.repo.Load(s.key)
	if err != nil {
		if errors.Is(err, storage.ErrSnapshotNotFound) {
			s.log.Infow("no snapshot found, starting from seed data", "key", s.key)
		} else {
			s.log.Warnw("failed to read snapshot, starting from seed data", "key", s.key, "error", err)
		}
		return initial
	}

	var saved snapshotDocument
	if err := json.Unmarshal(doc, &saved); err != nil {
		s.log.Warnw("corrupt snapshot, starting from seed data", "key", s.key, "error", err)
		return initial
	}

	return merge(initial, saved)
}

// merge overlays the fields present in saved onto the defaults. An empty
// recipe list keeps the seed recipes so the catalog never starts empty.
func merge(defaults models.AppState, saved snapshotDocument) models.AppState {
	out := defaults
	if saved.Recipes != nil && len(*saved.Recipes) > 0 {
		out.Recipes = *saved.Recipes
	}
	if saved.IsEditorMode != nil {
		out.IsEditorMode = *saved.IsEditorMode
	}
	if saved.IsDarkMode != nil {
		out.IsDarkMode = *saved.IsDarkMode
	}
	if saved.CurrentCategory != nil {
		out.CurrentCategory = *saved.CurrentCategory
	}
	if saved.SearchTerm != nil {
		out.SearchTerm = *saved.SearchTerm
	}
	if saved.Favorites != nil {
		out.Favorites = *saved.Favorites
	}
	if saved.Categories != nil {
		out.Categories = *saved.Categories
	}
	return out
}

// normalize restores the structural invariants on a merged state: unique
// recipe ids, no recipe filed under "Todas", creation times recovered from time-ordered ids, "Todas" first among unique categories, every recipe category
// listed, and favorites limited to existing recipes.
func normalize(st models.AppState) models.AppState {
	recipes := make([]models.Recipe, 0, len(st.Recipes))
	ids := make(map[string]bool, len(st.Recipes))
	for _, r := range st.Recipes {
		if r.ID == "" || ids[r.ID] || r.Category == models.AllCategory {
			continue
		}
		ids[r.ID] = true
		r.Favorite = false
		if r.CreatedAt == "" {
			if ts, ok := uuid.Time(r.ID); ok {
				r.CreatedAt = ts.UTC().Format(time.RFC3339Nano)
			}
		}
		recipes = append(recipes, r.Clone())
	}
	st.Recipes = recipes

	categories := []string{models.AllCategory}
	seen := map[string]bool{models.AllCategory: true}
	for _, c := range st.Categories {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		categories = append(categories, c)
	}
	for _, r := range st.Recipes {
		if r.Category != "" && !seen[r.Category] {
			seen[r.Category] = true
			categories = append(categories, r.Category)
		}
	}
	st.Categories = categories

	favorites := []string{}
	favSeen := make(map[string]bool, len(st.Favorites))
	for _, id := range st.Favorites {
		if ids[id] && !favSeen[id] {
			favSeen[id] = true
			favorites = append(favorites, id)
		}
	}
	st.Favorites = favorites

	if st.CurrentCategory == "" {
		st.CurrentCategory = models.AllCategory
	}
	return st
}

// commit makes next the live state and writes it to durable storage. The
// state stays live even when the write fails.
func (s *stateService) commit(next models.AppState) error {
	s.state = next

	doc, err := json.Marshal(decorate(next))
	if err != nil {
		s.log.Errorw("failed to serialize state", "key", s.key, "error", err)
		return apperrors.Wrap(apperrors.ErrPersistenceFailed, err)
	}
	if err := s.repo.Save(s.key, doc); err != nil {
		s.log.Errorw("failed to persist state", "key", s.key, "error", err)
		return apperrors.Wrap(apperrors.ErrPersistenceFailed, err)
	}
	return nil
}

// mutate applies fn to a copy of the state and commits it. When fn returns
// an error the state is left untouched and nothing is written.
func (s *stateService) mutate(fn func(st *models.AppState) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.Clone()
	if err := fn(&next); err != nil {
		return err
	}
	return s.commit(next)
}

// decorate returns a deep copy of st with favorite flags computed from the
// favorites set.
func decorate(st models.AppState) models.AppState {
	out := st.Clone()
	favs := make(map[string]bool, len(out.Favorites))
	for _, id := range out.Favorites {
		favs[id] = true
	}
	for i := range out.Recipes {
		out.Recipes[i].Favorite = favs[out.Recipes[i].ID]
	}
	return out
}

// State returns a copy of the current state.
func (s *stateService) State() models.AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return decorate(s.state)
}

// SetCategoryFilter replaces the active category filter. The category is
// not checked against the category list.
func (s *stateService) SetCategoryFilter(category string) error {
	return s.mutate(func(st *models.AppState) error {
		st.CurrentCategory = category
		return nil
	})
}

// SetSearchTerm replaces the active search term.
func (s *stateService) SetSearchTerm(term string) error {
	return s.mutate(func(st *models.AppState) error {
		st.SearchTerm = term
		return nil
	})
}

// ToggleTheme flips dark mode and returns the new value.
func (s *stateService) ToggleTheme() (bool, error) {
	var dark bool
	err := s.mutate(func(st *models.AppState) error {
		st.IsDarkMode = !st.IsDarkMode
		dark = st.IsDarkMode
		return nil
	})
	return dark, err
}

// EnterEditorMode turns editor mode on when secret matches the configured
// editor secret. This is a convenience gate for a single local user, not
// access control: the secret and the flag both live on the user's machine.
func (s *stateService) EnterEditorMode(secret string) (bool, error) {
	if bcrypt.CompareHashAndPassword(s.secretHash, []byte(secret)) != nil {
		return false, nil
	}
	err := s.mutate(func(st *models.AppState) error {
		st.IsEditorMode = true
		return nil
	})
	return true, err
}

// ExitEditorMode turns editor mode off.
func (s *stateService) ExitEditorMode() error {
	return s.mutate(func(st *models.AppState) error {
		st.IsEditorMode = false
		return nil
	})
}

// IsEditorMode reports whether editor mode is on.
func (s *stateService) IsEditorMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.IsEditorMode
}
