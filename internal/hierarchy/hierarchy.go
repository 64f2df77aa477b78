package hierarchy

import (
	"fmt"
)

// Role is an approver role in the escalation chain.
type Role string

// Built-in escalation chain, lowest privilege first.
const (
	RoleProcessOwner     Role = "process_owner"
	RoleDepartmentHead   Role = "department_head"
	RoleOrganizationHead Role = "organization_head"
	RoleAdmin            Role = "admin"
)

// UnknownRoleError indicates a role that is not part of the registry.
type UnknownRoleError struct {
	Role Role
}

func (e *UnknownRoleError) Error() string {
	return fmt.Sprintf("unknown role: %s", e.Role)
}

// Registry holds the ordered escalation chain. It is built once at startup
// and never mutated afterwards, so lookups need no locking.
type Registry struct {
	chain []Role
	rank  map[Role]int
}

// DefaultChain returns the standard BCM escalation chain.
func DefaultChain() []Role {
	return []Role{RoleProcessOwner, RoleDepartmentHead, RoleOrganizationHead, RoleAdmin}
}

// NewRegistry builds a registry from an ordered chain, lowest role first.
func NewRegistry(chain []Role) (*Registry, error) {
	if len(chain) < 2 {
		return nil, fmt.Errorf("escalation chain requires at least two roles, got %d", len(chain))
	}
	rank := make(map[Role]int, len(chain))
	for i, r := range chain {
		if r == "" {
			return nil, fmt.Errorf("escalation chain contains an empty role at position %d", i)
		}
		if _, dup := rank[r]; dup {
			return nil, fmt.Errorf("duplicate role in escalation chain: %s", r)
		}
		rank[r] = i
	}
	registry := &Registry{
		chain: append([]Role(nil), chain...),
		rank:  rank,
	}
	return registry, nil
}

// NewDefaultRegistry builds a registry with the standard chain.
func NewDefaultRegistry() *Registry {
	r, _ := NewRegistry(DefaultChain())
	return r
}

// Contains reports whether the role is part of the chain.
func (r *Registry) Contains(role Role) bool {
	_, ok := r.rank[role]
	return ok
}

// NextApprover returns the immediate successor of the given role. The second
// return value is false when the role is already at the top of the chain.
func (r *Registry) NextApprover(role Role) (Role, bool, error) {
	idx, ok := r.rank[role]
	if !ok {
		return "", false, &UnknownRoleError{Role: role}
	}
	if idx == len(r.chain)-1 {
		return "", false, nil
	}
	return r.chain[idx+1], true, nil
}

// CanApprove reports whether role is at or above the required role.
func (r *Registry) CanApprove(role Role, required Role) (bool, error) {
	roleIdx, ok := r.rank[role]
	if !ok {
		return false, &UnknownRoleError{Role: role}
	}
	requiredIdx, ok := r.rank[required]
	if !ok {
		return false, &UnknownRoleError{Role: required}
	}
	return roleIdx >= requiredIdx, nil
}

// IsAdmin reports whether the role is the top of the chain.
func (r *Registry) IsAdmin(role Role) bool {
	idx, ok := r.rank[role]
	return ok && idx == len(r.chain)-1
}

// Roles returns the chain in escalation order, lowest first.
func (r *Registry) Roles() []Role {
	return append([]Role(nil), r.chain...)
}

// Bottom returns the lowest role in the chain.
func (r *Registry) Bottom() Role {
	return r.chain[0]
}

// Top returns the highest role in the chain.
func (r *Registry) Top() Role {
	return r.chain[len(r.chain)-1]
}
