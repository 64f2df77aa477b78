package container

import (
	"fmt"
	"time"

	"github.com/hash066/bcm-approval/internal/config"
	"github.com/hash066/bcm-approval/internal/database"
	"github.com/hash066/bcm-approval/internal/engine"
	"github.com/hash066/bcm-approval/internal/hierarchy"
	"github.com/hash066/bcm-approval/internal/metrics"
	"github.com/hash066/bcm-approval/internal/notify"
	"github.com/hash066/bcm-approval/internal/repository"
	"github.com/hash066/bcm-approval/internal/service"
	"gorm.io/gorm"
)

// Container wires the application dependencies: database, role hierarchy,
// engine, repositories, services, notification hub and metrics collector.
type Container struct {
	db        *gorm.DB
	registry  *hierarchy.Registry
	eng       *engine.Engine
	hub       *notify.Hub
	collector *metrics.Collector

	approvalSvc service.ApprovalService
	querySvc    service.QueryService
	statsSvc    service.StatisticsService
	licenseSvc  service.LicenseService
	auditSvc    service.AuditLogService
}

// NewContainer initializes all dependencies from config.
func NewContainer(cfg *config.Config) (*Container, error) {
	// Database, with retry and exponential backoff.
	db, err := database.ConnectWithRetry(cfg.Database, 3, time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	// Role hierarchy, loaded once and immutable afterwards.
	chain := make([]hierarchy.Role, 0, len(cfg.Hierarchy.Roles))
	for _, r := range cfg.Hierarchy.Roles {
		chain = append(chain, hierarchy.Role(r))
	}
	registry, err := hierarchy.NewRegistry(chain)
	if err != nil {
		return nil, fmt.Errorf("failed to build role hierarchy: %w", err)
	}

	eng := engine.NewEngine(registry)

	hub := notify.NewHub()
	go hub.Run()

	requestRepo := repository.NewApprovalRequestRepository(db)
	stepRepo := repository.NewApprovalStepRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	licenseRepo := repository.NewModuleLicenseRepository(db)

	auditSvc := service.NewAuditLogService(auditRepo)
	licenseSvc := service.NewLicenseService(licenseRepo)
	approvalSvc := service.NewApprovalService(eng, requestRepo, stepRepo, auditSvc, licenseSvc, hub)
	querySvc := service.NewQueryService(registry, requestRepo, stepRepo)
	statsSvc := service.NewStatisticsService(db, registry)

	roles := make([]string, 0, len(cfg.Hierarchy.Roles))
	roles = append(roles, cfg.Hierarchy.Roles...)
	collector := metrics.NewCollector(db, roles, 15*time.Second)
	collector.Start()

	return &Container{
		db:          db,
		registry:    registry,
		eng:         eng,
		hub:         hub,
		collector:   collector,
		approvalSvc: approvalSvc,
		querySvc:    querySvc,
		statsSvc:    statsSvc,
		licenseSvc:  licenseSvc,
		auditSvc:    auditSvc,
	}, nil
}

// DB returns the database handle.
func (c *Container) DB() *gorm.DB {
	return c.db
}

// Registry returns the role hierarchy.
func (c *Container) Registry() *hierarchy.Registry {
	return c.registry
}

// Engine returns the approval engine.
func (c *Container) Engine() *engine.Engine {
	return c.eng
}

// Hub returns the notification hub.
func (c *Container) Hub() *notify.Hub {
	return c.hub
}

// ApprovalService returns the approval service.
func (c *Container) ApprovalService() service.ApprovalService {
	return c.approvalSvc
}

// QueryService returns the query service.
func (c *Container) QueryService() service.QueryService {
	return c.querySvc
}

// StatisticsService returns the statistics service.
func (c *Container) StatisticsService() service.StatisticsService {
	return c.statsSvc
}

// LicenseService returns the license service.
func (c *Container) LicenseService() service.LicenseService {
	return c.licenseSvc
}

// AuditLogService returns the audit log service.
func (c *Container) AuditLogService() service.AuditLogService {
	return c.auditSvc
}

// Close releases container resources.
func (c *Container) Close() error {
	if c.collector != nil {
		c.collector.Stop()
	}
	if c.db != nil {
		sqlDB, err := c.db.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
	return nil
}
