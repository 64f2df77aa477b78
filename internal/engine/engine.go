package engine

import (
	"github.com/hash066/bcm-approval/internal/hierarchy"
	"github.com/hash066/bcm-approval/internal/model"
)

// Engine validates and applies decisions on approval requests. It is a pure
// state machine over the role hierarchy: persistence and audit emission stay
// with the caller.
type Engine struct {
	registry *hierarchy.Registry
}

// NewEngine creates an engine over the given role hierarchy.
func NewEngine(registry *hierarchy.Registry) *Engine {
	return &Engine{registry: registry}
}

// Registry exposes the role hierarchy the engine routes over.
func (e *Engine) Registry() *hierarchy.Registry {
	return e.registry
}

// InitialState is the routing outcome for a fresh submission.
type InitialState struct {
	Status              string
	CurrentApproverRole hierarchy.Role
	// AutoApproved is set when the submitter is the top role and the
	// request resolves immediately with a synthetic self-approval step.
	AutoApproved bool
}

// RouteSubmission computes the state a new request starts in. Submissions by
// the top role auto-approve; everyone else routes to their immediate
// successor.
func (e *Engine) RouteSubmission(submitterRole hierarchy.Role) (*InitialState, error) {
	if !e.registry.Contains(submitterRole) {
		return nil, &hierarchy.UnknownRoleError{Role: submitterRole}
	}
	next, ok, err := e.registry.NextApprover(submitterRole)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &InitialState{Status: model.StatusApproved, AutoApproved: true}, nil
	}
	return &InitialState{Status: model.StatusPending, CurrentApproverRole: next}, nil
}

// Transition is the before/after record of one applied decision.
type Transition struct {
	RequestID    string
	FromStatus   string
	ToStatus     string
	FromApprover hierarchy.Role
	ToApprover   hierarchy.Role
	Decision     string
	ActingRole   hierarchy.Role
	ActorID      string
	Terminal     bool
}

// Decide validates one decision against the request's current state and
// returns the resulting transition. Validation rules run in order; the first
// failure wins:
//
//  1. the request must still be pending
//  2. the request's approver slot must still exist in the hierarchy
//  3. the acting role must match the current approver role, unless the
//     actor holds the top role (admin override)
//  4. the decision must be approved or rejected
func (e *Engine) Decide(req *model.ApprovalRequestModel, actingRole hierarchy.Role, actorID string, decision string) (*Transition, error) {
	if req.Status != model.StatusPending {
		return nil, &RequestAlreadyFinalizedError{RequestID: req.ID, Status: req.Status}
	}

	if !e.registry.Contains(actingRole) {
		return nil, &hierarchy.UnknownRoleError{Role: actingRole}
	}
	required := hierarchy.Role(req.CurrentApproverRole)
	if !e.registry.Contains(required) {
		// The request was routed under a hierarchy that no longer lists
		// this role; only reconfiguration can unblock it.
		return nil, &NoApproverAvailableError{RequestID: req.ID, Role: required}
	}
	if actingRole != required && !e.registry.IsAdmin(actingRole) {
		return nil, &WrongApproverRoleError{RequestID: req.ID, Required: required, Actual: actingRole}
	}

	if decision != model.DecisionApproved && decision != model.DecisionRejected {
		return nil, &InvalidDecisionError{Decision: decision}
	}

	t := &Transition{
		RequestID:    req.ID,
		FromStatus:   req.Status,
		FromApprover: required,
		Decision:     decision,
		ActingRole:   actingRole,
		ActorID:      actorID,
	}

	if decision == model.DecisionRejected {
		t.ToStatus = model.StatusRejected
		t.Terminal = true
		return t, nil
	}

	// A regular approval advances the chain from the slot being decided.
	// An admin override advances from the admin's own position, so it
	// always finalizes: nobody sits above the top role.
	advanceFrom := required
	if e.registry.IsAdmin(actingRole) {
		advanceFrom = actingRole
	}
	next, ok, err := e.registry.NextApprover(advanceFrom)
	if err != nil {
		return nil, err
	}
	if !ok {
		t.ToStatus = model.StatusApproved
		t.Terminal = true
		return t, nil
	}
	t.ToStatus = model.StatusPending
	t.ToApprover = next
	return t, nil
}
