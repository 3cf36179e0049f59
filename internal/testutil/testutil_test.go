package testutil_test

import (
	"testing"

	"cakebook/internal/errors"
	"cakebook/internal/models"
	"cakebook/internal/testutil"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	// Verify all tables exist by doing a simple count query on each model.
	var count int64
	for _, table := range []string{"snapshots", "cache_entries", "audit_logs"} {
		if err := db.Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}
}

func TestFixtures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	snap := testutil.CreateTestSnapshot(t, db, "cake-recipe-app", `{"recipes":[]}`)
	if snap.Key != "cake-recipe-app" {
		t.Errorf("expected key cake-recipe-app, got %s", snap.Key)
	}

	entry := testutil.CreateTestCacheEntry(t, db, "receitas-bolo-v1", "http://shell/", "<html></html>")
	if entry.ID == "" {
		t.Fatal("cache entry should have an ID")
	}

	a := testutil.NewRecipeDraft("Cupcakes")
	b := testutil.NewRecipeDraft("Cupcakes")
	if a.Title == b.Title {
		t.Errorf("expected unique draft titles, got %q twice", a.Title)
	}
	if a.Difficulty != models.DifficultyEasy {
		t.Errorf("expected Fácil, got %s", a.Difficulty)
	}
}

func TestAssertAppError(t *testing.T) {
	err := errors.WithMessage(errors.ErrRecipeNotFound, "custom message")
	testutil.AssertAppError(t, err, "RECIPE_NOT_FOUND")
}

func TestAssertNoError(t *testing.T) {
	testutil.AssertNoError(t, nil)
}
