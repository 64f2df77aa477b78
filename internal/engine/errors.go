package engine

import (
	"errors"
	"fmt"

	"github.com/hash066/bcm-approval/internal/hierarchy"
)

// ErrNotFound indicates an unknown request ID.
var ErrNotFound = errors.New("approval request not found")

// RequestAlreadyFinalizedError is returned when a decision targets a request
// that is no longer pending. It carries the actual status so callers can
// refresh instead of retrying blindly.
type RequestAlreadyFinalizedError struct {
	RequestID string
	Status    string
}

func (e *RequestAlreadyFinalizedError) Error() string {
	return fmt.Sprintf("request %s is already finalized with status %s", e.RequestID, e.Status)
}

// WrongApproverRoleError is returned when the acting role is not the
// request's current approver and is not the admin override.
type WrongApproverRoleError struct {
	RequestID string
	Required  hierarchy.Role
	Actual    hierarchy.Role
}

func (e *WrongApproverRoleError) Error() string {
	return fmt.Sprintf("request %s requires approval by %s, got %s", e.RequestID, e.Required, e.Actual)
}

// InvalidDecisionError is returned for a decision value outside
// approved/rejected.
type InvalidDecisionError struct {
	Decision string
}

func (e *InvalidDecisionError) Error() string {
	return fmt.Sprintf("invalid decision: %q", e.Decision)
}

// NoApproverAvailableError is returned when the configured chain cannot
// route a request: its recorded approver slot no longer exists in the
// hierarchy, so no regular approver can ever match it.
type NoApproverAvailableError struct {
	RequestID string
	Role      hierarchy.Role
}

func (e *NoApproverAvailableError) Error() string {
	return fmt.Sprintf("request %s waits on role %s which is not in the configured hierarchy", e.RequestID, e.Role)
}

// ConflictError is returned when a decision loses an optimistic-concurrency
// race. Callers must re-read the request before retrying.
type ConflictError struct {
	RequestID string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("concurrent update detected on request %s, re-read and retry", e.RequestID)
}
