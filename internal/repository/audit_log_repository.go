package repository

import (
	"github.com/hash066/bcm-approval/internal/model"
	"gorm.io/gorm"
)

// AuditLogRepository persists audit trail rows. Rows are append-only.
type AuditLogRepository interface {
	Save(log *model.AuditLogModel) error
	FindByResourceID(resourceID string) ([]*model.AuditLogModel, error)
	FindByUserID(userID string, limit int) ([]*model.AuditLogModel, error)
}

type auditLogRepository struct {
	db *gorm.DB
}

// NewAuditLogRepository creates the gorm-backed audit log repository.
func NewAuditLogRepository(db *gorm.DB) AuditLogRepository {
	return &auditLogRepository{db: db}
}

func (r *auditLogRepository) Save(log *model.AuditLogModel) error {
	if err := log.Validate(); err != nil {
		return err
	}
	return r.db.Create(log).Error
}

func (r *auditLogRepository) FindByResourceID(resourceID string) ([]*model.AuditLogModel, error) {
	var logs []*model.AuditLogModel
	err := r.db.
		Where("resource_id = ?", resourceID).
		Order("created_at ASC").
		Find(&logs).Error
	return logs, err
}

func (r *auditLogRepository) FindByUserID(userID string, limit int) ([]*model.AuditLogModel, error) {
	if limit <= 0 {
		limit = 100
	}
	var logs []*model.AuditLogModel
	err := r.db.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
