package utils

import (
	"errors"
	"strings"
)

// Sortable columns on the approval_requests table. Anything outside this
// whitelist is rejected before it can reach an ORDER BY clause.
var allowedSortFields = map[string]bool{
	"created_at":   true,
	"updated_at":   true,
	"status":       true,
	"request_type": true,
	"entity_ref":   true,
}

// ErrInvalidSortField indicates a sort field outside the whitelist.
var ErrInvalidSortField = errors.New("invalid sort field")

// ErrInvalidSortOrder indicates a sort order other than asc/desc.
var ErrInvalidSortOrder = errors.New("invalid sort order")

// ValidateSortField checks the field against the whitelist.
func ValidateSortField(field string) error {
	if !allowedSortFields[field] {
		return ErrInvalidSortField
	}
	return nil
}

// ValidateSortOrder accepts asc or desc, case-insensitive.
func ValidateSortOrder(order string) error {
	switch strings.ToLower(order) {
	case "asc", "desc":
		return nil
	}
	return ErrInvalidSortOrder
}
