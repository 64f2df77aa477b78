package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hash066/bcm-approval/internal/database"
	"gorm.io/gorm"
)

// HealthController reports service and dependency health.
type HealthController struct {
	db *gorm.DB
}

// NewHealthController creates the health controller.
func NewHealthController(db *gorm.DB) *HealthController {
	return &HealthController{db: db}
}

// Check reports overall health with a per-dependency breakdown.
func (c *HealthController) Check(ctx *gin.Context) {
	status := "healthy"
	checks := make(map[string]string)

	if database.CheckHealth(c.db) {
		checks["database"] = "ok"
	} else {
		checks["database"] = "unreachable"
		status = "unhealthy"
	}

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}

	ctx.JSON(code, gin.H{
		"status": status,
		"checks": checks,
	})
}
