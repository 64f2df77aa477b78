package model

import (
	"errors"
	"time"
)

// Decision values recorded on a step.
const (
	DecisionApproved = "approved"
	DecisionRejected = "rejected"
)

// ApprovalStepModel is one decision event on a request. Steps are append-only
// and ordered by sequence within a request.
type ApprovalStepModel struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)"`
	RequestID string    `gorm:"type:varchar(64);not null;index"`
	Role      string    `gorm:"type:varchar(32);not null"`
	ActorID   string    `gorm:"type:varchar(64);not null;index"`
	Decision  string    `gorm:"type:varchar(16);not null"`
	Comment   string    `gorm:"type:text"`
	Sequence  int       `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null;index"`
}

// TableName sets the table name.
func (ApprovalStepModel) TableName() string {
	return "approval_steps"
}

// Validate checks the step model before persistence.
func (m *ApprovalStepModel) Validate() error {
	if m.ID == "" {
		return errors.New("step ID is required")
	}
	if m.RequestID == "" {
		return errors.New("request ID is required")
	}
	if m.Role == "" {
		return errors.New("deciding role is required")
	}
	if m.ActorID == "" {
		return errors.New("actor ID is required")
	}
	if m.Decision != DecisionApproved && m.Decision != DecisionRejected {
		return errors.New("invalid decision")
	}
	return nil
}
