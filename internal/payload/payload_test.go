package payload_test

import (
	"encoding/json"
	"testing"

	"github.com/hash066/bcm-approval/internal/payload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_ClauseEdit(t *testing.T) {
	raw := json.RawMessage(`{
		"job_id": "job-42",
		"control_id": "A.5.1",
		"remedy": "tighten access reviews",
		"justification": "audit finding",
		"clause_data": {"text": "revised clause text"}
	}`)

	p, err := payload.Decode(payload.TypeClauseEdit, raw)
	require.NoError(t, err)

	clause, ok := p.(*payload.ClauseEditPayload)
	require.True(t, ok)
	assert.Equal(t, "job-42", clause.JobID)
	assert.Equal(t, "A.5.1", clause.ControlID)
	assert.Equal(t, "A.5.1", p.EntityRef())
}

func TestDecode_ClauseEdit_MissingFields(t *testing.T) {
	_, err := payload.Decode(payload.TypeClauseEdit, json.RawMessage(`{"control_id": "A.5.1"}`))
	assert.ErrorContains(t, err, "job_id")

	_, err = payload.Decode(payload.TypeClauseEdit, json.RawMessage(`{"job_id": "j", "control_id": "c"}`))
	assert.ErrorContains(t, err, "clause_data")
}

func TestDecode_FrameworkAddition(t *testing.T) {
	raw := json.RawMessage(`{
		"framework_name": "ISO 22301",
		"framework_code": "iso-22301",
		"description": "business continuity management",
		"clauses": [{"id": "4.1"}]
	}`)

	p, err := payload.Decode(payload.TypeFrameworkAddition, raw)
	require.NoError(t, err)
	assert.Equal(t, "iso-22301", p.EntityRef())
}

func TestDecode_ModuleLicenseChange(t *testing.T) {
	raw := json.RawMessage(`{
		"org_id": "org-1",
		"module_id": "risk",
		"is_licensed": true,
		"start_date": "2026-01-01",
		"expiry_date": "2026-12-31"
	}`)

	p, err := payload.Decode(payload.TypeModuleLicenseChange, raw)
	require.NoError(t, err)
	assert.Equal(t, "org-1/risk", p.EntityRef())
}

func TestDecode_ModuleLicenseChange_DateValidation(t *testing.T) {
	// Expiry before start.
	_, err := payload.Decode(payload.TypeModuleLicenseChange, json.RawMessage(`{
		"org_id": "org-1", "module_id": "risk", "is_licensed": true,
		"start_date": "2026-06-01", "expiry_date": "2026-01-01"
	}`))
	assert.ErrorContains(t, err, "expiry_date")

	// Not a date at all.
	_, err = payload.Decode(payload.TypeModuleLicenseChange, json.RawMessage(`{
		"org_id": "org-1", "module_id": "risk", "is_licensed": true,
		"start_date": "soon"
	}`))
	assert.ErrorContains(t, err, "start_date")

	// RFC 3339 timestamps are accepted too.
	_, err = payload.Decode(payload.TypeModuleLicenseChange, json.RawMessage(`{
		"org_id": "org-1", "module_id": "risk", "is_licensed": false,
		"start_date": "2026-01-01T00:00:00Z"
	}`))
	assert.NoError(t, err)
}

func TestDecode_UnknownType(t *testing.T) {
	_, err := payload.Decode("budget_change", json.RawMessage(`{}`))
	assert.ErrorIs(t, err, payload.ErrUnknownRequestType)
}

func TestDecode_UnknownFieldsRejected(t *testing.T) {
	_, err := payload.Decode(payload.TypeClauseEdit, json.RawMessage(`{
		"job_id": "j", "control_id": "c", "clause_data": {},
		"unexpected": true
	}`))
	assert.Error(t, err)
}

func TestDecode_MalformedJSON(t *testing.T) {
	_, err := payload.Decode(payload.TypeClauseEdit, json.RawMessage(`{not json`))
	assert.ErrorIs(t, err, payload.ErrInvalidPayload)
}

func TestIsValidType(t *testing.T) {
	assert.True(t, payload.IsValidType(payload.TypeClauseEdit))
	assert.True(t, payload.IsValidType(payload.TypeFrameworkAddition))
	assert.True(t, payload.IsValidType(payload.TypeModuleLicenseChange))
	assert.False(t, payload.IsValidType("budget_change"))
}
