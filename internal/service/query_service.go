package service

import (
	"fmt"
	"strings"

	"github.com/hash066/bcm-approval/internal/hierarchy"
	"github.com/hash066/bcm-approval/internal/model"
	"github.com/hash066/bcm-approval/internal/repository"
	"github.com/hash066/bcm-approval/internal/utils"
)

// QueryService is the read side consumed by approver dashboards. Queries
// read the store's current snapshot without locking; they may trail a
// concurrent write but never show a state that did not exist.
type QueryService interface {
	// ListPending returns the requests waiting on the role, oldest first.
	ListPending(role hierarchy.Role) ([]*RequestView, error)
	ListRequests(filter *ListRequestsFilter) ([]*RequestView, int64, error)
	GetSteps(requestID string) ([]*StepView, error)
	// HasPendingForEntity reports whether the business entity (control,
	// framework, org/module pair) has an undecided request against it.
	HasPendingForEntity(entityRef string) (bool, error)
}

// ListRequestsFilter narrows and pages request listings.
type ListRequestsFilter struct {
	Status      *string
	RequestType *string
	SubmitterID *string
	EntityRef   *string
	Page        int
	PageSize    int
	SortBy      string
	Order       string
}

type queryService struct {
	registry    *hierarchy.Registry
	requestRepo repository.ApprovalRequestRepository
	stepRepo    repository.ApprovalStepRepository
}

// NewQueryService creates the query service.
func NewQueryService(
	registry *hierarchy.Registry,
	requestRepo repository.ApprovalRequestRepository,
	stepRepo repository.ApprovalStepRepository,
) QueryService {
	return &queryService{
		registry:    registry,
		requestRepo: requestRepo,
		stepRepo:    stepRepo,
	}
}

func (s *queryService) ListPending(role hierarchy.Role) ([]*RequestView, error) {
	if !s.registry.Contains(role) {
		return nil, &hierarchy.UnknownRoleError{Role: role}
	}
	models, err := s.requestRepo.FindPendingByRole(string(role))
	if err != nil {
		return nil, fmt.Errorf("failed to list pending requests: %w", err)
	}
	views := make([]*RequestView, 0, len(models))
	for _, m := range models {
		views = append(views, requestModelToView(m))
	}
	return views, nil
}

func (s *queryService) ListRequests(filter *ListRequestsFilter) ([]*RequestView, int64, error) {
	repoFilter := &repository.RequestFilter{}
	if filter != nil {
		repoFilter.Status = filter.Status
		repoFilter.RequestType = filter.RequestType
		repoFilter.SubmitterID = filter.SubmitterID
		repoFilter.EntityRef = filter.EntityRef
		repoFilter.Page = filter.Page
		repoFilter.PageSize = filter.PageSize

		sortBy := filter.SortBy
		if sortBy == "" {
			sortBy = "created_at"
		}
		if err := utils.ValidateSortField(sortBy); err != nil {
			return nil, 0, fmt.Errorf("invalid sort field: %w", err)
		}
		order := filter.Order
		if order == "" {
			order = "desc"
		}
		if err := utils.ValidateSortOrder(order); err != nil {
			return nil, 0, fmt.Errorf("invalid sort order: %w", err)
		}
		repoFilter.SortBy = sortBy
		repoFilter.Order = strings.ToUpper(order)
	}

	models, total, err := s.requestRepo.FindByFilter(repoFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list requests: %w", err)
	}
	views := make([]*RequestView, 0, len(models))
	for _, m := range models {
		views = append(views, requestModelToView(m))
	}
	return views, total, nil
}

func (s *queryService) GetSteps(requestID string) ([]*StepView, error) {
	// Surface not-found for unknown requests instead of an empty history.
	if _, err := s.requestRepo.FindByID(requestID); err != nil {
		return nil, err
	}
	steps, err := s.stepRepo.FindByRequestID(requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get steps: %w", err)
	}
	views := make([]*StepView, 0, len(steps))
	for _, step := range steps {
		views = append(views, &StepView{
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
	return views, nil
}

func (s *queryService) HasPendingForEntity(entityRef string) (bool, error) {
	count, err := s.requestRepo.CountPendingByEntityRef(entityRef)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func requestModelToView(m *model.ApprovalRequestModel) *RequestView {
	return &RequestView{
		ID:                  m.ID,
		RequestType:         m.RequestType,
		Payload:             m.Payload,
		EntityRef:           m.EntityRef,
		SubmitterID:         m.SubmitterID,
		SubmitterRole:       m.SubmitterRole,
		Status:              m.Status,
		CurrentApproverRole: m.CurrentApproverRole,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}
