package repository

import (
	"github.com/hash066/bcm-approval/internal/model"
	"gorm.io/gorm"
)

// ApprovalStepRepository reads the append-only decision history.
type ApprovalStepRepository interface {
	FindByRequestID(requestID string) ([]*model.ApprovalStepModel, error)
	CountByRequestID(requestID string) (int64, error)
}

type approvalStepRepository struct {
	db *gorm.DB
}

// NewApprovalStepRepository creates the gorm-backed step repository.
func NewApprovalStepRepository(db *gorm.DB) ApprovalStepRepository {
	return &approvalStepRepository{db: db}
}

// FindByRequestID returns the request's steps in decision order.
func (r *approvalStepRepository) FindByRequestID(requestID string) ([]*model.ApprovalStepModel, error) {
	var steps []*model.ApprovalStepModel
	err := r.db.
		Where("request_id = ?", requestID).
		Order("sequence ASC").
		Find(&steps).Error
	return steps, err
}

// CountByRequestID returns how many steps the request has accumulated.
func (r *approvalStepRepository) CountByRequestID(requestID string) (int64, error) {
	var count int64
	err := r.db.Model(&model.ApprovalStepModel{}).
		Where("request_id = ?", requestID).
		Count(&count).Error
	return count, err
}
