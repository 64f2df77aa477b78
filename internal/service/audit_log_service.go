package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/hash066/bcm-approval/internal/model"
	"github.com/hash066/bcm-approval/internal/repository"
)

// AuditLogService records who did what to which resource.
type AuditLogService interface {
	RecordAction(ctx context.Context, userID string, action string, resourceType string, resourceID string, details interface{}) error
	// BuildRow assembles an audit row without persisting it, for callers
	// that write it inside their own transaction.
	BuildRow(ctx context.Context, userID string, action string, resourceType string, resourceID string, details interface{}) (*model.AuditLogModel, error)
}

type auditLogService struct {
	auditRepo repository.AuditLogRepository
}

// NewAuditLogService creates the audit log service.
func NewAuditLogService(auditRepo repository.AuditLogRepository) AuditLogService {
	return &auditLogService{
		auditRepo: auditRepo,
	}
}

func (s *auditLogService) RecordAction(
	ctx context.Context,
	userID string,
	action string,
	resourceType string,
	resourceID string,
	details interface{},
) error {
	row, err := s.BuildRow(ctx, userID, action, resourceType, resourceID, details)
	if err != nil {
		return err
	}
	return s.auditRepo.Save(row)
}

func (s *auditLogService) BuildRow(
	ctx context.Context,
	userID string,
	action string,
	resourceType string,
	resourceID string,
	details interface{},
) (*model.AuditLogModel, error) {
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		return nil, err
	}

	requestID := ""
	if v := ctx.Value("request_id"); v != nil {
		requestID, _ = v.(string)
	}

	ip := ""
	if v := ctx.Value("ip"); v != nil {
		ip, _ = v.(string)
	}

	userAgent := ""
	if v := ctx.Value("user_agent"); v != nil {
		userAgent, _ = v.(string)
	}

	return &model.AuditLogModel{
		ID:           uuid.New().String(),
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		RequestID:    requestID,
		IP:           ip,
		UserAgent:    userAgent,
		Details:      detailsJSON,
		CreatedAt:    time.Now(),
	}, nil
}
