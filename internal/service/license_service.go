package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hash066/bcm-approval/internal/model"
	"github.com/hash066/bcm-approval/internal/payload"
	"github.com/hash066/bcm-approval/internal/repository"
)

// LicenseService manages per-organization module license grants.
type LicenseService interface {
	Upsert(orgID string, grant *GrantRequest) (*model.ModuleLicenseModel, error)
	ListByOrg(orgID string) ([]*model.ModuleLicenseModel, error)
	Get(orgID, moduleID string) (*model.ModuleLicenseModel, error)
	// ApplyChange applies an approved module-license-change payload.
	ApplyChange(p *payload.ModuleLicenseChangePayload) (*model.ModuleLicenseModel, error)
	// ExportOrg serializes an organization's grants as the wire-format
	// JSON array, one object per licensed module.
	ExportOrg(orgID string) ([]byte, error)
	// ImportOrg loads grants from the wire-format JSON array.
	ImportOrg(orgID string, data []byte) (int, error)
}

// GrantRequest is the write shape for a module license grant. Dates are
// ISO-8601 strings.
type GrantRequest struct {
	ModuleID   string `json:"module_id" binding:"required"`
	IsLicensed bool   `json:"is_licensed"`
	StartDate  string `json:"start_date" binding:"required"`
	ExpiryDate string `json:"expiry_date,omitempty"`
}

// grantRecord is the wire format for one grant in the per-org JSON array.
type grantRecord struct {
	ModuleID   string `json:"module_id"`
	IsLicensed bool   `json:"is_licensed"`
	StartDate  string `json:"start_date"`
	ExpiryDate string `json:"expiry_date,omitempty"`
}

type licenseService struct {
	licenseRepo repository.ModuleLicenseRepository
}

// NewLicenseService creates the license service.
func NewLicenseService(licenseRepo repository.ModuleLicenseRepository) LicenseService {
	return &licenseService{licenseRepo: licenseRepo}
}

func (s *licenseService) Upsert(orgID string, grant *GrantRequest) (*model.ModuleLicenseModel, error) {
	if orgID == "" {
		return nil, errors.New("org ID is required")
	}
	m, err := grantToModel(orgID, grant)
	if err != nil {
		return nil, err
	}
	if err := s.licenseRepo.Upsert(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *licenseService) ListByOrg(orgID string) ([]*model.ModuleLicenseModel, error) {
	return s.licenseRepo.FindByOrg(orgID)
}

func (s *licenseService) Get(orgID, moduleID string) (*model.ModuleLicenseModel, error) {
	return s.licenseRepo.FindByOrgAndModule(orgID, moduleID)
}

func (s *licenseService) ApplyChange(p *payload.ModuleLicenseChangePayload) (*model.ModuleLicenseModel, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return s.Upsert(p.OrgID, &GrantRequest{
		ModuleID:   p.ModuleID,
		IsLicensed: p.IsLicensed,
		StartDate:  p.StartDate,
		ExpiryDate: p.ExpiryDate,
	})
}

func (s *licenseService) ExportOrg(orgID string) ([]byte, error) {
	grants, err := s.licenseRepo.FindByOrg(orgID)
	if err != nil {
		return nil, err
	}
	records := make([]grantRecord, 0, len(grants))
	for _, g := range grants {
		rec := grantRecord{
			ModuleID:   g.ModuleID,
			IsLicensed: g.IsLicensed,
			StartDate:  g.StartDate.Format("2006-01-02"),
		}
		if g.ExpiryDate != nil {
			rec.ExpiryDate = g.ExpiryDate.Format("2006-01-02")
		}
		records = append(records, rec)
	}
	return json.Marshal(records)
}

func (s *licenseService) ImportOrg(orgID string, data []byte) (int, error) {
	var records []grantRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return 0, fmt.Errorf("malformed license array: %w", err)
	}
	imported := 0
	for _, rec := range records {
		m, err := grantToModel(orgID, &GrantRequest{
			ModuleID:   rec.ModuleID,
			IsLicensed: rec.IsLicensed,
			StartDate:  rec.StartDate,
			ExpiryDate: rec.ExpiryDate,
		})
		if err != nil {
			return imported, fmt.Errorf("module %s: %w", rec.ModuleID, err)
		}
		if err := s.licenseRepo.Upsert(m); err != nil {
			return imported, fmt.Errorf("module %s: %w", rec.ModuleID, err)
		}
		imported++
	}
	return imported, nil
}

func grantToModel(orgID string, grant *GrantRequest) (*model.ModuleLicenseModel, error) {
	if grant.ModuleID == "" {
		return nil, errors.New("module ID is required")
	}
	start, err := parseLicenseDate(grant.StartDate)
	if err != nil {
		return nil, fmt.Errorf("start_date: %w", err)
	}
	m := &model.ModuleLicenseModel{
		OrgID:      orgID,
		ModuleID:   grant.ModuleID,
		IsLicensed: grant.IsLicensed,
		StartDate:  start,
	}
	if grant.ExpiryDate != "" {
		expiry, err := parseLicenseDate(grant.ExpiryDate)
		if err != nil {
			return nil, fmt.Errorf("expiry_date: %w", err)
		}
		if expiry.Before(start) {
			return nil, errors.New("expiry_date must not be earlier than start_date")
		}
		m.ExpiryDate = &expiry
	}
	// The repository assigns the row ID and runs the full model validation
	// on upsert.
	return m, nil
}

func parseLicenseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("is required")
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, errors.New("must be ISO-8601")
	}
	return t, nil
}
