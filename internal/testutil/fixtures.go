package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"cakebook/internal/models"

	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// NewRecipeDraft returns a complete draft in the given category with a unique title.
func NewRecipeDraft(category string) models.RecipeDraft {
	return models.RecipeDraft{
		Title:       fmt.Sprintf("Bolo Teste %d", nextID()),
		Category:    category,
		Description: "Bolo usado nos testes",
		Ingredients: []string{"2 xícaras de farinha", "3 ovos"},
		Steps:       []string{"Misture tudo", "Asse por 30 minutos"},
		Time:        "30 minutos",
		Yield:       "6 porções",
		Difficulty:  models.DifficultyEasy,
	}
}

// CreateTestSnapshot stores a raw document under key.
func CreateTestSnapshot(t *testing.T, db *gorm.DB, key, document string) *models.Snapshot {
	t.Helper()

	snap := &models.Snapshot{Key: key, Document: []byte(document)}
	if err := db.Create(snap).Error; err != nil {
		t.Fatalf("failed to create test snapshot: %v", err)
	}
	return snap
}

// CreateTestCacheEntry stores a 200 response body for url in the named cache.
func CreateTestCacheEntry(t *testing.T, db *gorm.DB, cacheName, url, body string) *models.CacheEntry {
	t.Helper()

	entry := &models.CacheEntry{
		CacheName:  cacheName,
		URL:        url,
		StatusCode: 200,
		Header:     []byte(`{"Content-Type":["text/plain"]}`),
		Body:       []byte(body),
	}
	if err := db.Create(entry).Error; err != nil {
		t.Fatalf("failed to create test cache entry: %v", err)
	}
	return entry
}
