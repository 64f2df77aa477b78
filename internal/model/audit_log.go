package model

import (
	"errors"
	"time"
)

// AuditLogModel records every mutation on audited resources. Rows are never
// deleted.
type AuditLogModel struct {
	ID           string    `gorm:"primaryKey;type:varchar(64)"`
	UserID       string    `gorm:"type:varchar(64);not null;index"`
	Action       string    `gorm:"type:varchar(64);not null;index"` // submit/approve/reject/license_update
	ResourceType string    `gorm:"type:varchar(32);not null"`       // approval_request/module_license
	ResourceID   string    `gorm:"type:varchar(128);not null;index"`
	RequestID    string    `gorm:"type:varchar(64);index"` // HTTP request ID
	IP           string    `gorm:"type:varchar(45)"`
	UserAgent    string    `gorm:"type:text"`
	Details      []byte    `gorm:"type:jsonb"`
	CreatedAt    time.Time `gorm:"not null;index"`
}

// TableName sets the table name.
func (AuditLogModel) TableName() string {
	return "audit_logs"
}

// Validate checks the audit log model before persistence.
func (m *AuditLogModel) Validate() error {
	if m.ID == "" {
		return errors.New("audit log ID is required")
	}
	if m.UserID == "" {
		return errors.New("user ID is required")
	}
	if m.Action == "" {
		return errors.New("action is required")
	}
	if m.ResourceType == "" {
		return errors.New("resource type is required")
	}
	if m.ResourceID == "" {
		return errors.New("resource ID is required")
	}
	return nil
}
