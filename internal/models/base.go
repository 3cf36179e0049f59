package models

import (
	"time"

	"cakebook/internal/uuid"

	"gorm.io/gorm"
)

// Base is embedded by the row-per-record tables, cache_entries and
// audit_logs. Snapshots are keyed by storage key and carry their own columns.
type Base struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// BeforeCreate assigns a UUIDv7 and stamps both timestamps in UTC so rows
// written by sqlite and postgres order the same way.
func (b *Base) BeforeCreate(*gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New()
	}
	now := time.Now().UTC()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
	return nil
}
