package utils_test

import (
	"strings"
	"testing"

	"github.com/hash066/bcm-approval/internal/utils"
	"github.com/stretchr/testify/assert"
)

func TestValidateRequestID(t *testing.T) {
	assert.NoError(t, utils.ValidateRequestID("a1b2c3"))
	assert.NoError(t, utils.ValidateRequestID("550e8400-e29b-41d4-a716-446655440000"))
	assert.NoError(t, utils.ValidateRequestID("req_001"))

	assert.ErrorIs(t, utils.ValidateRequestID(""), utils.ErrEmptyID)
	assert.ErrorIs(t, utils.ValidateRequestID("id with spaces"), utils.ErrInvalidIDFormat)
	assert.ErrorIs(t, utils.ValidateRequestID("id;DROP TABLE"), utils.ErrInvalidIDFormat)
	assert.ErrorIs(t, utils.ValidateRequestID("../etc/passwd"), utils.ErrInvalidIDFormat)
	assert.ErrorIs(t, utils.ValidateRequestID(strings.Repeat("a", 65)), utils.ErrIDTooLong)
}

func TestValidateRoleParam(t *testing.T) {
	assert.NoError(t, utils.ValidateRoleParam("department_head"))
	assert.ErrorIs(t, utils.ValidateRoleParam(""), utils.ErrEmptyRole)
	assert.ErrorIs(t, utils.ValidateRoleParam("role!"), utils.ErrInvalidIDFormat)
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "&lt;script&gt;alert(1)&lt;/script&gt;", utils.SanitizeString("<script>alert(1)</script>"))
	assert.Equal(t, "plain comment", utils.SanitizeString("plain comment"))

	// Newlines and tabs survive, other control characters are stripped.
	assert.Equal(t, "line1\nline2\ttab", utils.SanitizeString("line1\nline2\ttab"))
	assert.Equal(t, "ab", utils.SanitizeString("a\x00\x1bb"))
}

func TestValidateSortField(t *testing.T) {
	assert.NoError(t, utils.ValidateSortField("created_at"))
	assert.NoError(t, utils.ValidateSortField("status"))
	assert.ErrorIs(t, utils.ValidateSortField("payload"), utils.ErrInvalidSortField)
	assert.ErrorIs(t, utils.ValidateSortField("created_at; DROP TABLE"), utils.ErrInvalidSortField)
}

func TestValidateSortOrder(t *testing.T) {
	assert.NoError(t, utils.ValidateSortOrder("asc"))
	assert.NoError(t, utils.ValidateSortOrder("DESC"))
	assert.ErrorIs(t, utils.ValidateSortOrder("sideways"), utils.ErrInvalidSortOrder)
}
