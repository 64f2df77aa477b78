package utils

import (
	"errors"
	"html"
	"regexp"
	"strings"
	"unicode"
)

// Validation errors.
var (
	ErrEmptyID         = errors.New("ID is empty")
	ErrInvalidIDFormat = errors.New("ID contains invalid characters")
	ErrIDTooLong       = errors.New("ID is too long")
	ErrEmptyRole       = errors.New("role is empty")
)

var idPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateRequestID validates an approval request ID path parameter.
func ValidateRequestID(id string) error {
	if id == "" {
		return ErrEmptyID
	}
	if !idPattern.MatchString(id) {
		return ErrInvalidIDFormat
	}
	if len(id) > 64 {
		return ErrIDTooLong
	}
	return nil
}

// ValidateRoleParam validates a role query parameter before it reaches the
// registry lookup.
func ValidateRoleParam(role string) error {
	if role == "" {
		return ErrEmptyRole
	}
	if !idPattern.MatchString(role) {
		return ErrInvalidIDFormat
	}
	return nil
}

// SanitizeString escapes HTML and strips control characters from free-text
// input such as approval comments.
func SanitizeString(input string) string {
	sanitized := html.EscapeString(input)

	var result strings.Builder
	for _, r := range sanitized {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		result.WriteRune(r)
	}

	return result.String()
}
