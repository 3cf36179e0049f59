// Package storage provides the durable key-value store that holds state
// snapshots.
package storage

import (
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cakebook/internal/models"
)

// ErrSnapshotNotFound is returned by Load when no document exists for a key.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// SnapshotRepository reads and writes whole documents by key.
type SnapshotRepository interface {
	Load(key string) ([]byte, error)
	Save(key string, document []byte) error
}

// Compile-time interface check.
var _ SnapshotRepository = (*GormSnapshotRepository)(nil)

// GormSnapshotRepository stores snapshots in the snapshots table.
type GormSnapshotRepository struct {
	db *gorm.DB
}

// NewSnapshotRepository creates a snapshot repository on top of db.
func NewSnapshotRepository(db *gorm.DB) *GormSnapshotRepository {
	return &GormSnapshotRepository{db: db}
}

// Load returns the raw document stored under key.
func (r *GormSnapshotRepository) Load(key string) ([]byte, error) {
	var snap models.Snapshot
	if err := r.db.Where(&models.Snapshot{Key: key}).First(&snap).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to load snapshot %q: %w", key, err)
	}
	return []byte(snap.Document), nil
}

// Save overwrites the document stored under key.
func (r *GormSnapshotRepository) Save(key string, document []byte) error {
	snap := models.Snapshot{Key: key, Document: datatypes.JSON(document)}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"document", "updated_at"}),
	}).Create(&snap).Error
	if err != nil {
		return fmt.Errorf("failed to save snapshot %q: %w", key, err)
	}
	return nil
}
