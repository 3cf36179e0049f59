package services

import (
	"encoding/json"

	"gorm.io/gorm"

	apperrors "cakebook/internal/errors"
	"cakebook/internal/logger"
	"cakebook/internal/models"
	"cakebook/internal/pagination"
)

// auditService records editor operations in the audit_logs table.
type auditService struct {
	db *gorm.DB
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(db *gorm.DB) AuditServicer {
	return &auditService{db: db}
}

// Log records an audit event. Errors are logged but never propagate
// so a failed audit write never undoes the edit it describes.
func (s *auditService) Log(action, resourceType, resourceID, ipAddress string, changes map[string]interface{}) {
	var changesJSON []byte
	if changes != nil {
		data, err := json.Marshal(changes)
		if err != nil {
			logger.Get().Errorw("failed to marshal audit log changes", "error", err, "action", action)
			changesJSON = []byte("{}")
		} else {
			changesJSON = data
		}
	}

	entry := &models.AuditLog{
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    ipAddress,
		Changes:      changesJSON,
	}

	if err := s.db.Create(entry).Error; err != nil {
		logger.Get().Errorw("failed to create audit log entry",
			"error", err,
			"action", action,
			"resource_type", resourceType,
			"resource_id", resourceID,
		)
	}
}

// ListLogs returns audit entries, newest first.
func (s *auditService) ListLogs(page pagination.PageRequest) (*pagination.PageResponse[models.AuditLog], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.AuditLog{})
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var logs []models.AuditLog
	if err := base.Order("created_at DESC").Scopes(pagination.Paginate(page)).Find(&logs).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	resp := pagination.NewPageResponse(logs, page.Page, page.PageSize, totalItems)
	return &resp, nil
}
