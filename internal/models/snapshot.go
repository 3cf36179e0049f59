package models

import (
	"time"

	"gorm.io/datatypes"
)

// Snapshot is one entry of the durable key-value store. The whole
// application state lives in a single row keyed by the storage key.
type Snapshot struct {
	Key       string         `gorm:"primaryKey;size:191" json:"key"`
	Document  datatypes.JSON `gorm:"not null" json:"document"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// All lists every persisted model in migration order.
func All() []interface{} {
	return []interface{}{&Snapshot{}, &CacheEntry{}, &AuditLog{}}
}
