package model

import (
	"errors"
	"time"
)

// Request status values.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// ApprovalRequestModel is one unit of work requiring sign-off. The payload
// column carries the typed request content; entity_ref mirrors the payload's
// business key so per-entity lookups stay indexable.
type ApprovalRequestModel struct {
	ID                  string    `gorm:"primaryKey;type:varchar(64)"`
	RequestType         string    `gorm:"type:varchar(32);not null;index"`
	Payload             []byte    `gorm:"type:jsonb;not null"`
	EntityRef           string    `gorm:"type:varchar(128);index"`
	SubmitterID         string    `gorm:"type:varchar(64);not null;index"`
	SubmitterRole       string    `gorm:"type:varchar(32);not null"`
	Status              string    `gorm:"type:varchar(16);not null;index"`
	CurrentApproverRole string    `gorm:"type:varchar(32);index"`
	Version             int64     `gorm:"not null;default:1"` // optimistic lock counter
	CreatedAt           time.Time `gorm:"not null;index"`
	UpdatedAt           time.Time `gorm:"not null"`
}

// TableName sets the table name.
func (ApprovalRequestModel) TableName() string {
	return "approval_requests"
}

// IsTerminal reports whether the request has reached a final status.
func (m *ApprovalRequestModel) IsTerminal() bool {
	return m.Status == StatusApproved || m.Status == StatusRejected
}

// Validate checks the request model before persistence.
func (m *ApprovalRequestModel) Validate() error {
	if m.ID == "" {
		return errors.New("request ID is required")
	}
	if m.RequestType == "" {
		return errors.New("request type is required")
	}
	if len(m.Payload) == 0 {
		return errors.New("request payload is required")
	}
	if m.SubmitterID == "" {
		return errors.New("submitter ID is required")
	}
	if m.SubmitterRole == "" {
		return errors.New("submitter role is required")
	}
	switch m.Status {
	case StatusPending, StatusApproved, StatusRejected:
	default:
		return errors.New("invalid request status")
	}
	if m.Status == StatusPending && m.CurrentApproverRole == "" {
		return errors.New("pending request requires a current approver role")
	}
	return nil
}
