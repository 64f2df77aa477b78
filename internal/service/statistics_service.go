package service

import (
	"fmt"

	"github.com/hash066/bcm-approval/internal/hierarchy"
	"github.com/hash066/bcm-approval/internal/model"
	"gorm.io/gorm"
)

// StatisticsService computes the dashboard aggregates. Like the rest of the
// read side it works over the store's current snapshot without locking.
type StatisticsService interface {
	GetDashboardStats() (*DashboardStats, error)
	GetStatsByType() ([]*TypeStats, error)
	GetPendingByRole() ([]*RoleQueueStats, error)
	GetDecisionsByDay(days int) ([]*DailyStats, error)
}

// DashboardStats is the headline aggregate for the compliance dashboard.
type DashboardStats struct {
	Total         int64   `json:"total"`
	PendingCount  int64   `json:"pending"`
	ApprovedCount int64   `json:"approved"`
	RejectedCount int64   `json:"rejected"`
	ApprovalRate  float64 `json:"approval_rate"`
}

// TypeStats breaks counts down per request type and status.
type TypeStats struct {
	RequestType string `json:"request_type"`
	Pending     int64  `json:"pending"`
	Approved    int64  `json:"approved"`
	Rejected    int64  `json:"rejected"`
}

// RoleQueueStats is the pending-queue depth for one approver role.
type RoleQueueStats struct {
	Role    string `json:"role"`
	Pending int64  `json:"pending"`
}

// DailyStats counts decisions per calendar day.
type DailyStats struct {
	Date      string `json:"date"`
	Decisions int64  `json:"decisions"`
}

type statisticsService struct {
	db       *gorm.DB
	registry *hierarchy.Registry
}

// NewStatisticsService creates the statistics service.
func NewStatisticsService(db *gorm.DB, registry *hierarchy.Registry) StatisticsService {
	return &statisticsService{db: db, registry: registry}
}

func (s *statisticsService) GetDashboardStats() (*DashboardStats, error) {
	var results []struct {
		Status string
		Count  int64
	}

	err := s.db.Model(&model.ApprovalRequestModel{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&results).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get dashboard stats: %w", err)
	}

	stats := &DashboardStats{}
	for _, r := range results {
		stats.Total += r.Count
		switch r.Status {
		case model.StatusPending:
			stats.PendingCount = r.Count
		case model.StatusApproved:
			stats.ApprovedCount = r.Count
		case model.StatusRejected:
			stats.RejectedCount = r.Count
		}
	}
	decided := stats.ApprovedCount + stats.RejectedCount
	if decided > 0 {
		stats.ApprovalRate = float64(stats.ApprovedCount) / float64(decided)
	}

	return stats, nil
}

func (s *statisticsService) GetStatsByType() ([]*TypeStats, error) {
	var results []struct {
		RequestType string
		Status      string
		Count       int64
	}

	err := s.db.Model(&model.ApprovalRequestModel{}).
		Select("request_type, status, COUNT(*) as count").
		Group("request_type, status").
		Scan(&results).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get stats by type: %w", err)
	}

	byType := make(map[string]*TypeStats)
	order := make([]string, 0)
	for _, r := range results {
		entry, ok := byType[r.RequestType]
		if !ok {
			entry = &TypeStats{RequestType: r.RequestType}
			byType[r.RequestType] = entry
			order = append(order, r.RequestType)
		}
		switch r.Status {
		case model.StatusPending:
			entry.Pending = r.Count
		case model.StatusApproved:
			entry.Approved = r.Count
		case model.StatusRejected:
			entry.Rejected = r.Count
		}
	}

	stats := make([]*TypeStats, 0, len(order))
	for _, t := range order {
		stats = append(stats, byType[t])
	}
	return stats, nil
}

func (s *statisticsService) GetPendingByRole() ([]*RoleQueueStats, error) {
	stats := make([]*RoleQueueStats, 0, len(s.registry.Roles()))
	for _, role := range s.registry.Roles() {
		var count int64
		err := s.db.Model(&model.ApprovalRequestModel{}).
			Where("status = ? AND current_approver_role = ?", model.StatusPending, string(role)).
			Count(&count).Error
		if err != nil {
			return nil, fmt.Errorf("failed to count pending for role %s: %w", role, err)
		}
		stats = append(stats, &RoleQueueStats{Role: string(role), Pending: count})
	}
	return stats, nil
}

func (s *statisticsService) GetDecisionsByDay(days int) ([]*DailyStats, error) {
	if days <= 0 {
		days = 30
	}
	var results []struct {
		Date  string
		Count int64
	}

	// DATE() works on both PostgreSQL and the SQLite test database.
	err := s.db.Model(&model.ApprovalStepModel{}).
		Select("DATE(created_at) as date, COUNT(*) as count").
		Group("DATE(created_at)").
		Order("date DESC").
		Limit(days).
		Scan(&results).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get decisions by day: %w", err)
	}

	stats := make([]*DailyStats, 0, len(results))
	for _, r := range results {
		stats = append(stats, &DailyStats{Date: r.Date, Decisions: r.Count})
	}
	return stats, nil
}
