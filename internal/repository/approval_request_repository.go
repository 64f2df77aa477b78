package repository

import (
	"errors"
	"time"

	"github.com/hash066/bcm-approval/internal/engine"
	"github.com/hash066/bcm-approval/internal/model"
	"gorm.io/gorm"
)

// ApprovalRequestRepository persists approval requests and applies decisions
// atomically.
type ApprovalRequestRepository interface {
	Create(req *model.ApprovalRequestModel, steps ...*model.ApprovalStepModel) error
	FindByID(id string) (*model.ApprovalRequestModel, error)
	// FindPendingByRole returns pending requests waiting on the role,
	// oldest first.
	FindPendingByRole(role string) ([]*model.ApprovalRequestModel, error)
	FindByFilter(filter *RequestFilter) ([]*model.ApprovalRequestModel, int64, error)
	// ApplyDecision persists the step and the request's new state in one
	// transaction, guarded by a compare-and-swap on the version column.
	// Losing the race returns engine.ConflictError without any write.
	ApplyDecision(req *model.ApprovalRequestModel, t *DecisionUpdate) error
	CountPendingByEntityRef(entityRef string) (int64, error)
}

// RequestFilter narrows request listings.
type RequestFilter struct {
	Status      *string
	RequestType *string
	SubmitterID *string
	EntityRef   *string
	Page        int
	PageSize    int
	SortBy      string
	Order       string
}

// DecisionUpdate is the state change ApplyDecision writes.
type DecisionUpdate struct {
	Step            *model.ApprovalStepModel
	NewStatus       string
	NewApproverRole string
	ExpectedVersion int64
	AuditRow        *model.AuditLogModel
}

type approvalRequestRepository struct {
	db *gorm.DB
}

// NewApprovalRequestRepository creates the gorm-backed request repository.
func NewApprovalRequestRepository(db *gorm.DB) ApprovalRequestRepository {
	return &approvalRequestRepository{db: db}
}

// Create inserts the request together with any bootstrap steps (a top-role
// self-submission writes its synthetic approval step in the same
// transaction).
func (r *approvalRequestRepository) Create(req *model.ApprovalRequestModel, steps ...*model.ApprovalStepModel) error {
	if err := req.Validate(); err != nil {
		return err
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(req).Error; err != nil {
			return err
		}
		for _, step := range steps {
			if err := step.Validate(); err != nil {
				return err
			}
			if err := tx.Create(step).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *approvalRequestRepository) FindByID(id string) (*model.ApprovalRequestModel, error) {
	var req model.ApprovalRequestModel
	if err := r.db.Where("id = ?", id).First(&req).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, engine.ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (r *approvalRequestRepository) FindPendingByRole(role string) ([]*model.ApprovalRequestModel, error) {
	var reqs []*model.ApprovalRequestModel
	err := r.db.
		Where("status = ? AND current_approver_role = ?", model.StatusPending, role).
		Order("created_at ASC").
		Find(&reqs).Error
	return reqs, err
}

func (r *approvalRequestRepository) FindByFilter(filter *RequestFilter) ([]*model.ApprovalRequestModel, int64, error) {
	query := r.db.Model(&model.ApprovalRequestModel{})

	if filter != nil {
		if filter.Status != nil {
			query = query.Where("status = ?", *filter.Status)
		}
		if filter.RequestType != nil {
			query = query.Where("request_type = ?", *filter.RequestType)
		}
		if filter.SubmitterID != nil {
			query = query.Where("submitter_id = ?", *filter.SubmitterID)
		}
		if filter.EntityRef != nil {
			query = query.Where("entity_ref = ?", *filter.EntityRef)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortBy := "created_at"
	order := "DESC"
	page := 1
	pageSize := 20
	if filter != nil {
		if filter.SortBy != "" {
			sortBy = filter.SortBy
		}
		if filter.Order != "" {
			order = filter.Order
		}
		if filter.Page > 0 {
			page = filter.Page
		}
		if filter.PageSize > 0 {
			pageSize = filter.PageSize
		}
	}

	var reqs []*model.ApprovalRequestModel
	err := query.
		Order(sortBy + " " + order).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&reqs).Error
	return reqs, total, err
}

func (r *approvalRequestRepository) ApplyDecision(req *model.ApprovalRequestModel, u *DecisionUpdate) error {
	if err := u.Step.Validate(); err != nil {
		return err
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.ApprovalRequestModel{}).
			Where("id = ? AND version = ? AND status = ?", req.ID, u.ExpectedVersion, model.StatusPending).
			Updates(map[string]interface{}{
				"status":                u.NewStatus,
				"current_approver_role": u.NewApproverRole,
				"version":               u.ExpectedVersion + 1,
				"updated_at":            time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Someone else decided first; no partial write escapes the
			// transaction.
			return &engine.ConflictError{RequestID: req.ID}
		}
		if err := tx.Create(u.Step).Error; err != nil {
			return err
		}
		if u.AuditRow != nil {
			if err := u.AuditRow.Validate(); err != nil {
				return err
			}
			if err := tx.Create(u.AuditRow).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *approvalRequestRepository) CountPendingByEntityRef(entityRef string) (int64, error) {
	var count int64
	err := r.db.Model(&model.ApprovalRequestModel{}).
		Where("status = ? AND entity_ref = ?", model.StatusPending, entityRef).
		Count(&count).Error
	return count, err
}
