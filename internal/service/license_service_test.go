package service_test

import (
	"encoding/json"
	"testing"

	"github.com/hash066/bcm-approval/internal/payload"
	"github.com/hash066/bcm-approval/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLicenseService_UpsertAndGet(t *testing.T) {
	env := setupTestEnv(t)

	grant, err := env.licenseSvc.Upsert("org-1", &service.GrantRequest{
		ModuleID:   "risk",
		IsLicensed: true,
		StartDate:  "2026-01-01",
		ExpiryDate: "2026-12-31",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, grant.ID)
	require.NotNil(t, grant.ExpiryDate)

	found, err := env.licenseSvc.Get("org-1", "risk")
	require.NoError(t, err)
	assert.True(t, found.IsLicensed)
}

func TestLicenseService_Upsert_Validation(t *testing.T) {
	env := setupTestEnv(t)

	_, err := env.licenseSvc.Upsert("", &service.GrantRequest{ModuleID: "risk", StartDate: "2026-01-01"})
	assert.Error(t, err)

	_, err = env.licenseSvc.Upsert("org-1", &service.GrantRequest{StartDate: "2026-01-01"})
	assert.Error(t, err)

	_, err = env.licenseSvc.Upsert("org-1", &service.GrantRequest{ModuleID: "risk", StartDate: "whenever"})
	assert.Error(t, err)

	_, err = env.licenseSvc.Upsert("org-1", &service.GrantRequest{
		ModuleID:   "risk",
		StartDate:  "2026-06-01",
		ExpiryDate: "2026-01-01",
	})
	assert.ErrorContains(t, err, "expiry_date")
}

func TestLicenseService_ApplyChange(t *testing.T) {
	env := setupTestEnv(t)

	grant, err := env.licenseSvc.ApplyChange(&payload.ModuleLicenseChangePayload{
		OrgID:      "org-1",
		ModuleID:   "risk",
		IsLicensed: true,
		StartDate:  "2026-01-01",
	})
	require.NoError(t, err)
	assert.True(t, grant.IsLicensed)

	// A revocation flips the same row.
	grant, err = env.licenseSvc.ApplyChange(&payload.ModuleLicenseChangePayload{
		OrgID:      "org-1",
		ModuleID:   "risk",
		IsLicensed: false,
		StartDate:  "2026-01-01",
	})
	require.NoError(t, err)
	assert.False(t, grant.IsLicensed)

	grants, err := env.licenseSvc.ListByOrg("org-1")
	require.NoError(t, err)
	assert.Len(t, grants, 1)
}

// Export and import speak the same per-org JSON array, so a round trip
// reproduces the grants in another environment.
func TestLicenseService_ExportImportRoundTrip(t *testing.T) {
	env := setupTestEnv(t)

	_, err := env.licenseSvc.Upsert("org-1", &service.GrantRequest{
		ModuleID:   "risk",
		IsLicensed: true,
		StartDate:  "2026-01-01",
		ExpiryDate: "2026-12-31",
	})
	require.NoError(t, err)
	_, err = env.licenseSvc.Upsert("org-1", &service.GrantRequest{
		ModuleID:   "audit",
		IsLicensed: false,
		StartDate:  "2026-03-01",
	})
	require.NoError(t, err)

	data, err := env.licenseSvc.ExportOrg("org-1")
	require.NoError(t, err)

	var records []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &records))
	assert.Len(t, records, 2)

	imported, err := env.licenseSvc.ImportOrg("org-2", data)
	require.NoError(t, err)
	assert.Equal(t, 2, imported)

	grants, err := env.licenseSvc.ListByOrg("org-2")
	require.NoError(t, err)
	require.Len(t, grants, 2)

	copied, err := env.licenseSvc.Get("org-2", "risk")
	require.NoError(t, err)
	assert.True(t, copied.IsLicensed)
	require.NotNil(t, copied.ExpiryDate)
	assert.Equal(t, "2026-12-31", copied.ExpiryDate.Format("2006-01-02"))
}

func TestLicenseService_Import_Malformed(t *testing.T) {
	env := setupTestEnv(t)

	_, err := env.licenseSvc.ImportOrg("org-1", []byte(`{not an array`))
	assert.Error(t, err)

	// A bad record stops the import and reports the module.
	imported, err := env.licenseSvc.ImportOrg("org-1", []byte(`[
		{"module_id": "risk", "is_licensed": true, "start_date": "2026-01-01"},
		{"module_id": "audit", "is_licensed": true, "start_date": "someday"}
	]`))
	assert.Error(t, err)
	assert.Equal(t, 1, imported)
	assert.ErrorContains(t, err, "audit")
}
