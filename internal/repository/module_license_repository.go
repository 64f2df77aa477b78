package repository

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/hash066/bcm-approval/internal/model"
	"gorm.io/gorm"
)

// ModuleLicenseRepository persists per-organization module license grants.
type ModuleLicenseRepository interface {
	// Upsert creates or replaces the grant for (org, module).
	Upsert(grant *model.ModuleLicenseModel) error
	FindByOrg(orgID string) ([]*model.ModuleLicenseModel, error)
	FindByOrgAndModule(orgID, moduleID string) (*model.ModuleLicenseModel, error)
}

// ErrLicenseNotFound indicates no grant exists for the org/module pair.
var ErrLicenseNotFound = errors.New("module license not found")

type moduleLicenseRepository struct {
	db *gorm.DB
}

// NewModuleLicenseRepository creates the gorm-backed license repository.
func NewModuleLicenseRepository(db *gorm.DB) ModuleLicenseRepository {
	return &moduleLicenseRepository{db: db}
}

func (r *moduleLicenseRepository) Upsert(grant *model.ModuleLicenseModel) error {
	if grant.ID == "" {
		grant.ID = uuid.New().String()
	}
	if err := grant.Validate(); err != nil {
		return err
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		var existing model.ModuleLicenseModel
		err := tx.Where("org_id = ? AND module_id = ?", grant.OrgID, grant.ModuleID).
			First(&existing).Error
		switch {
		case err == nil:
			grant.ID = existing.ID
			grant.CreatedAt = existing.CreatedAt
			grant.UpdatedAt = time.Now()
			return tx.Save(grant).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			now := time.Now()
			grant.CreatedAt = now
			grant.UpdatedAt = now
			return tx.Create(grant).Error
		default:
			return err
		}
	})
}

func (r *moduleLicenseRepository) FindByOrg(orgID string) ([]*model.ModuleLicenseModel, error) {
	var grants []*model.ModuleLicenseModel
	err := r.db.
		Where("org_id = ?", orgID).
		Order("module_id ASC").
		Find(&grants).Error
	return grants, err
}

func (r *moduleLicenseRepository) FindByOrgAndModule(orgID, moduleID string) (*model.ModuleLicenseModel, error) {
	var grant model.ModuleLicenseModel
	err := r.db.Where("org_id = ? AND module_id = ?", orgID, moduleID).First(&grant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLicenseNotFound
		}
		return nil, err
	}
	return &grant, nil
}
