package payload

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// RequestType identifies the kind of change a request carries.
type RequestType string

const (
	TypeClauseEdit          RequestType = "clause_edit"
	TypeFrameworkAddition   RequestType = "framework_addition"
	TypeModuleLicenseChange RequestType = "module_license_change"
)

// ErrUnknownRequestType is returned when a submission names a type the
// engine does not know.
var ErrUnknownRequestType = errors.New("unknown request type")

// ErrInvalidPayload wraps every schema failure Decode reports, so callers
// can classify without matching message text.
var ErrInvalidPayload = errors.New("invalid payload")

// Payload is the typed content of an approval request. Each request type has
// its own schema validated at the boundary instead of an untyped blob.
type Payload interface {
	// Validate checks the payload schema before the request is persisted.
	Validate() error
	// EntityRef returns the business entity the payload targets, used for
	// per-entity pending lookups (e.g. a control ID).
	EntityRef() string
}

// ClauseEditPayload is a proposed change to compliance-control clause text.
type ClauseEditPayload struct {
	JobID         string          `json:"job_id"`
	ControlID     string          `json:"control_id"`
	Remedy        string          `json:"remedy"`
	Justification string          `json:"justification"`
	ClauseData    json.RawMessage `json:"clause_data"`
}

func (p *ClauseEditPayload) Validate() error {
	if p.JobID == "" {
		return errors.New("job_id is required")
	}
	if p.ControlID == "" {
		return errors.New("control_id is required")
	}
	if len(p.ClauseData) == 0 {
		return errors.New("clause_data is required")
	}
	if !json.Valid(p.ClauseData) {
		return errors.New("clause_data is not valid JSON")
	}
	return nil
}

func (p *ClauseEditPayload) EntityRef() string {
	return p.ControlID
}

// FrameworkAdditionPayload proposes a new compliance framework document.
type FrameworkAdditionPayload struct {
	FrameworkName string          `json:"framework_name"`
	FrameworkCode string          `json:"framework_code"`
	Description   string          `json:"description"`
	Clauses       json.RawMessage `json:"clauses"`
}

func (p *FrameworkAdditionPayload) Validate() error {
	if p.FrameworkName == "" {
		return errors.New("framework_name is required")
	}
	if p.FrameworkCode == "" {
		return errors.New("framework_code is required")
	}
	if len(p.Clauses) > 0 && !json.Valid(p.Clauses) {
		return errors.New("clauses is not valid JSON")
	}
	return nil
}

func (p *FrameworkAdditionPayload) EntityRef() string {
	return p.FrameworkCode
}

// ModuleLicenseChangePayload requests a change to an organization's module
// license grant. Dates are ISO-8601 (RFC 3339 date) strings.
type ModuleLicenseChangePayload struct {
	OrgID      string `json:"org_id"`
	ModuleID   string `json:"module_id"`
	IsLicensed bool   `json:"is_licensed"`
	StartDate  string `json:"start_date"`
	ExpiryDate string `json:"expiry_date,omitempty"`
}

func (p *ModuleLicenseChangePayload) Validate() error {
	if p.OrgID == "" {
		return errors.New("org_id is required")
	}
	if p.ModuleID == "" {
		return errors.New("module_id is required")
	}
	start, err := parseDate(p.StartDate, true)
	if err != nil {
		return fmt.Errorf("start_date: %w", err)
	}
	if p.ExpiryDate != "" {
		expiry, err := parseDate(p.ExpiryDate, false)
		if err != nil {
			return fmt.Errorf("expiry_date: %w", err)
		}
		if expiry.Before(start) {
			return errors.New("expiry_date must not be earlier than start_date")
		}
	}
	return nil
}

func (p *ModuleLicenseChangePayload) EntityRef() string {
	return p.OrgID + "/" + p.ModuleID
}

// Decode parses and validates a raw payload for the given request type.
func Decode(requestType RequestType, raw json.RawMessage) (Payload, error) {
	var p Payload
	switch requestType {
	case TypeClauseEdit:
		p = &ClauseEditPayload{}
	case TypeFrameworkAddition:
		p = &FrameworkAdditionPayload{}
	case TypeModuleLicenseChange:
		p = &ModuleLicenseChangePayload{}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownRequestType, requestType)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(p); err != nil {
		return nil, fmt.Errorf("%w: malformed %s payload: %v", ErrInvalidPayload, requestType, err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPayload, requestType, err)
	}
	return p, nil
}

// IsValidType reports whether the request type is known.
func IsValidType(requestType RequestType) bool {
	switch requestType {
	case TypeClauseEdit, TypeFrameworkAddition, TypeModuleLicenseChange:
		return true
	}
	return false
}

func parseDate(value string, required bool) (time.Time, error) {
	if value == "" {
		if required {
			return time.Time{}, errors.New("is required")
		}
		return time.Time{}, nil
	}
	// Accept both plain dates and full RFC 3339 timestamps.
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, errors.New("must be ISO-8601")
	}
	return t, nil
}
