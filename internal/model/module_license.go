package model

import (
	"errors"
	"time"
)

// ModuleLicenseModel is an organization-scoped grant for one product module.
// One row per (org, module).
type ModuleLicenseModel struct {
	ID         string     `gorm:"primaryKey;type:varchar(64)"`
	OrgID      string     `gorm:"type:varchar(64);not null;uniqueIndex:idx_org_module"`
	ModuleID   string     `gorm:"type:varchar(64);not null;uniqueIndex:idx_org_module"`
	IsLicensed bool       `gorm:"not null"`
	StartDate  time.Time  `gorm:"not null"`
	ExpiryDate *time.Time `gorm:""`
	CreatedAt  time.Time  `gorm:"not null"`
	UpdatedAt  time.Time  `gorm:"not null"`
}

// TableName sets the table name.
func (ModuleLicenseModel) TableName() string {
	return "module_licenses"
}

// Validate checks the license model before persistence. An expiry earlier
// than the start date is rejected at the data layer.
func (m *ModuleLicenseModel) Validate() error {
	if m.ID == "" {
		return errors.New("license ID is required")
	}
	if m.OrgID == "" {
		return errors.New("org ID is required")
	}
	if m.ModuleID == "" {
		return errors.New("module ID is required")
	}
	if m.StartDate.IsZero() {
		return errors.New("start date is required")
	}
	if m.ExpiryDate != nil && m.ExpiryDate.Before(m.StartDate) {
		return errors.New("expiry date must not be earlier than start date")
	}
	return nil
}

// IsActive reports whether the grant is licensed and unexpired at the given
// instant.
func (m *ModuleLicenseModel) IsActive(now time.Time) bool {
	if !m.IsLicensed {
		return false
	}
	if now.Before(m.StartDate) {
		return false
	}
	if m.ExpiryDate != nil && now.After(*m.ExpiryDate) {
		return false
	}
	return true
}
