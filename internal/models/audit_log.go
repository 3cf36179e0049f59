package models

import "gorm.io/datatypes"

// AuditLog records editor-mode operations.
type AuditLog struct {
	Base
	Action       string         `gorm:"not null" json:"action"`
	ResourceType string         `gorm:"not null" json:"resource_type"`
	ResourceID   string         `json:"resource_id"`
	IPAddress    string         `json:"ip_address"`
	Changes      datatypes.JSON `json:"changes,omitempty"`
}
