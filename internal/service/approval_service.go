package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hash066/bcm-approval/internal/engine"
	"github.com/hash066/bcm-approval/internal/hierarchy"
	"github.com/hash066/bcm-approval/internal/metrics"
	"github.com/hash066/bcm-approval/internal/model"
	"github.com/hash066/bcm-approval/internal/notify"
	"github.com/hash066/bcm-approval/internal/payload"
	"github.com/hash066/bcm-approval/internal/repository"
)

// ApprovalService drives the approval request lifecycle: submission routing,
// decision application, audit and notification fan-out.
type ApprovalService interface {
	Create(ctx context.Context, req *CreateRequest) (*RequestView, error)
	Decide(ctx context.Context, requestID string, req *DecideRequest) (*RequestView, error)
	Get(requestID string) (*RequestView, error)
}

// CreateRequest is the submission shape for a new approval request.
type CreateRequest struct {
	RequestType   payload.RequestType `json:"request_type"`
	Payload       json.RawMessage     `json:"payload"`
	SubmitterID   string              `json:"submitter_id"`
	SubmitterRole hierarchy.Role      `json:"submitter_role"`
}

// DecideRequest is one approve/reject decision on a pending request.
type DecideRequest struct {
	Decision  string         `json:"decision"`
	Comment   string         `json:"comments"`
	ActorID   string         `json:"-"`
	ActorRole hierarchy.Role `json:"-"`
}

// RequestView is the wire representation of a request plus its history.
type RequestView struct {
	ID                  string          `json:"approval_request_id"`
	RequestType         string          `json:"request_type"`
	Payload             json.RawMessage `json:"payload"`
	EntityRef           string          `json:"entity_ref,omitempty"`
	SubmitterID         string          `json:"submitter_id"`
	SubmitterRole       string          `json:"submitter_role"`
	Status              string          `json:"status"`
	CurrentApproverRole string          `json:"current_approver_role,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
	Steps               []*StepView     `json:"steps,omitempty"`
}

// StepView is the wire representation of one decision event.
type StepView struct {
	ID        string    `json:"id"`
	RequestID string    `json:"request_id"`
	Role      string    `json:"role"`
	ActorID   string    `json:"actor_id"`
	Decision  string    `json:"decision"`
	Comment   string    `json:"comment,omitempty"`
	Sequence  int       `json:"sequence"`
	CreatedAt time.Time `json:"created_at"`
}

type approvalService struct {
	eng         *engine.Engine
	requestRepo repository.ApprovalRequestRepository
	stepRepo    repository.ApprovalStepRepository
	auditSvc    AuditLogService
	licenseSvc  LicenseService
	hub         *notify.Hub
}

// NewApprovalService creates the approval service. hub may be nil when no
// websocket fan-out is wanted (tests, migrations).
func NewApprovalService(
	eng *engine.Engine,
	requestRepo repository.ApprovalRequestRepository,
	stepRepo repository.ApprovalStepRepository,
	auditSvc AuditLogService,
	licenseSvc LicenseService,
	hub *notify.Hub,
) ApprovalService {
	return &approvalService{
		eng:         eng,
		requestRepo: requestRepo,
		stepRepo:    stepRepo,
		auditSvc:    auditSvc,
		licenseSvc:  licenseSvc,
		hub:         hub,
	}
}

func (s *approvalService) Create(ctx context.Context, req *CreateRequest) (*RequestView, error) {
	if req.SubmitterID == "" {
		return nil, errors.New("submitter ID is required")
	}

	p, err := payload.Decode(req.RequestType, req.Payload)
	if err != nil {
		return nil, err
	}

	route, err := s.eng.RouteSubmission(req.SubmitterRole)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	m := &model.ApprovalRequestModel{
		ID:            uuid.New().String(),
		RequestType:   string(req.RequestType),
		Payload:       req.Payload,
		EntityRef:     p.EntityRef(),
		SubmitterID:   req.SubmitterID,
		SubmitterRole: string(req.SubmitterRole),
		Status:        route.Status,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	var steps []*model.ApprovalStepModel
	if route.AutoApproved {
		// Top-role submissions resolve immediately; the synthetic step
		// keeps the audit history complete.
		steps = append(steps, &model.ApprovalStepModel{
			ID:        uuid.New().String(),
			RequestID: m.ID,
			Role:      string(req.SubmitterRole),
			ActorID:   req.SubmitterID,
			Decision:  model.DecisionApproved,
			Comment:   "auto-approved: submitter holds the top role",
			Sequence:  1,
			CreatedAt: now,
		})
	} else {
		m.CurrentApproverRole = string(route.CurrentApproverRole)
	}

	if err := s.requestRepo.Create(m, steps...); err != nil {
		return nil, fmt.Errorf("failed to create approval request: %w", err)
	}

	metrics.RecordRequestCreated(m.RequestType)
	_ = s.auditSvc.RecordAction(ctx, req.SubmitterID, "submit", "approval_request", m.ID, map[string]interface{}{
		"request_type": m.RequestType,
		"entity_ref":   m.EntityRef,
		"status":       m.Status,
	})
	s.publish(m, "")

	if route.AutoApproved {
		if err := s.applySideEffects(m); err != nil {
			return nil, err
		}
	}

	return s.toView(m, steps), nil
}

func (s *approvalService) Decide(ctx context.Context, requestID string, req *DecideRequest) (*RequestView, error) {
	m, err := s.requestRepo.FindByID(requestID)
	if err != nil {
		return nil, err
	}

	transition, err := s.eng.Decide(m, req.ActorRole, req.ActorID, req.Decision)
	if err != nil {
		return nil, err
	}

	count, err := s.stepRepo.CountByRequestID(requestID)
	if err != nil {
		return nil, err
	}

	step := &model.ApprovalStepModel{
		ID:        uuid.New().String(),
		RequestID: m.ID,
		Role:      string(req.ActorRole),
		ActorID:   req.ActorID,
		Decision:  req.Decision,
		Comment:   req.Comment,
		Sequence:  int(count) + 1,
		CreatedAt: time.Now(),
	}

	auditRow, err := s.auditSvc.BuildRow(ctx, req.ActorID, req.Decision, "approval_request", m.ID, map[string]interface{}{
		"from_status":   transition.FromStatus,
		"to_status":     transition.ToStatus,
		"from_approver": string(transition.FromApprover),
		"to_approver":   string(transition.ToApprover),
		"acting_role":   string(req.ActorRole),
	})
	if err != nil {
		return nil, err
	}

	update := &repository.DecisionUpdate{
		Step:            step,
		NewStatus:       transition.ToStatus,
		NewApproverRole: string(transition.ToApprover),
		ExpectedVersion: m.Version,
		AuditRow:        auditRow,
	}

	if err := s.requestRepo.ApplyDecision(m, update); err != nil {
		var conflict *engine.ConflictError
		if errors.As(err, &conflict) {
			metrics.RecordConflict()
			// Re-read so the caller sees why the race was lost: a
			// finalized request surfaces rule 1, anything else stays a
			// conflict the caller can retry against fresh state.
			fresh, ferr := s.requestRepo.FindByID(requestID)
			if ferr == nil && fresh.IsTerminal() {
				return nil, &engine.RequestAlreadyFinalizedError{RequestID: requestID, Status: fresh.Status}
			}
			return nil, conflict
		}
		return nil, err
	}

	m.Status = transition.ToStatus
	m.CurrentApproverRole = string(transition.ToApprover)
	m.Version++

	metrics.RecordDecision(req.Decision)
	s.publish(m, req.Decision)

	if m.Status == model.StatusApproved {
		if err := s.applySideEffects(m); err != nil {
			return nil, err
		}
	}

	return s.Get(requestID)
}

func (s *approvalService) Get(requestID string) (*RequestView, error) {
	m, err := s.requestRepo.FindByID(requestID)
	if err != nil {
		return nil, err
	}
	steps, err := s.stepRepo.FindByRequestID(requestID)
	if err != nil {
		return nil, err
	}
	return s.toView(m, steps), nil
}

// applySideEffects executes what a fully approved request stands for.
// Module license changes materialize as grants; clause edits and framework
// additions are picked up by the document pipeline from the approved
// request itself.
func (s *approvalService) applySideEffects(m *model.ApprovalRequestModel) error {
	if payload.RequestType(m.RequestType) != payload.TypeModuleLicenseChange || s.licenseSvc == nil {
		return nil
	}
	p, err := payload.Decode(payload.TypeModuleLicenseChange, m.Payload)
	if err != nil {
		return err
	}
	change := p.(*payload.ModuleLicenseChangePayload)
	if _, err := s.licenseSvc.ApplyChange(change); err != nil {
		return fmt.Errorf("failed to apply license change for request %s: %w", m.ID, err)
	}
	return nil
}

func (s *approvalService) publish(m *model.ApprovalRequestModel, decision string) {
	if s.hub == nil {
		return
	}
	s.hub.PublishEvent(&notify.Event{
		RequestID:           m.ID,
		RequestType:         m.RequestType,
		Status:              m.Status,
		CurrentApproverRole: m.CurrentApproverRole,
		Decision:            decision,
		OccurredAt:          time.Now(),
	})
}

func (s *approvalService) toView(m *model.ApprovalRequestModel, steps []*model.ApprovalStepModel) *RequestView {
	view := &RequestView{
		ID:                  m.ID,
		RequestType:         m.RequestType,
		Payload:             json.RawMessage(m.Payload),
		EntityRef:           m.EntityRef,
		SubmitterID:         m.SubmitterID,
		SubmitterRole:       m.SubmitterRole,
		Status:              m.Status,
		CurrentApproverRole: m.CurrentApproverRole,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
	for _, step := range steps {
		view.Steps = append(view.Steps, &StepView{
			ID:        step.ID,
			RequestID: step.RequestID,
			Role:      step.Role,
			ActorID:   step.ActorID,
			Decision:  step.Decision,
			Comment:   step.Comment,
			Sequence:  step.Sequence,
			CreatedAt: step.CreatedAt,
		})
	}
	return view
}
