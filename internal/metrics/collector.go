package metrics

import (
	"context"
	"time"

	"github.com/hash066/bcm-approval/internal/model"
	"gorm.io/gorm"
)

// Collector periodically refreshes the gauges derived from database state:
// DB pool usage and the pending-queue depth per approver role.
type Collector struct {
	db       *gorm.DB
	roles    []string
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewCollector creates a collector over the given roles.
func NewCollector(db *gorm.DB, roles []string, interval time.Duration) *Collector {
	ctx, cancel := context.WithCancel(context.Background())
	return &Collector{
		db:       db,
		roles:    roles,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// Start begins collecting in the background.
func (c *Collector) Start() {
	go c.collect()
}

// Stop stops the collector and waits for the loop to exit.
func (c *Collector) Stop() {
	c.cancel()
	<-c.done
}

func (c *Collector) collect() {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	defer close(c.done)

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.updatePoolGauges()
			c.updatePendingGauges()
		}
	}
}

func (c *Collector) updatePoolGauges() {
	sqlDB, err := c.db.DB()
	if err != nil {
		return
	}
	stats := sqlDB.Stats()
	SetDatabaseConnections(stats.InUse, stats.Idle)
}

func (c *Collector) updatePendingGauges() {
	for _, role := range c.roles {
		var count int64
		err := c.db.Model(&model.ApprovalRequestModel{}).
			Where("status = ? AND current_approver_role = ?", model.StatusPending, role).
			Count(&count).Error
		if err != nil {
			continue
		}
		SetPendingByRole(role, float64(count))
	}
}
