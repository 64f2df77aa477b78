package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hash066/bcm-approval/internal/config"
	"github.com/hash066/bcm-approval/internal/hierarchy"
	"github.com/hash066/bcm-approval/internal/notify"
	"gorm.io/gorm"
)

// RouterDeps bundles what SetupRoutes needs.
type RouterDeps struct {
	DB       *gorm.DB
	Registry *hierarchy.Registry
	Hub      *notify.Hub

	ApprovalController *ApprovalController
	QueryController    *QueryController
	LicenseController  *LicenseController
}

// SetupRoutes builds the gin engine with the full middleware chain and all
// routes.
func SetupRoutes(cfg *config.Config, deps *RouterDeps) *gin.Engine {
	if config.IsProduction(cfg) {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(RequestIDMiddleware())
	router.Use(RequestLogMiddleware())
	router.Use(SecurityHeadersMiddleware())
	router.Use(CORSMiddleware(cfg.CORS.AllowedOrigins))
	router.Use(ErrorHandlerMiddleware())
	if cfg.RateLimit.Enabled {
		router.Use(RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
	}

	healthController := NewHealthController(deps.DB)
	router.GET("/health", healthController.Check)

	router.GET("/metrics", MetricsHandler)

	// Websocket subscription for approver dashboards.
	if deps.Hub != nil {
		router.GET("/ws/approvals", ActorMiddleware(), notify.WebSocketHandler(deps.Hub))
	}

	v1 := router.Group("/api/v1")
	v1.Use(ActorMiddleware())
	{
		approval := v1.Group("/approval")
		{
			approval.POST("/clause-edit", deps.ApprovalController.SubmitClauseEdit)
			approval.POST("/framework-addition", deps.ApprovalController.SubmitFrameworkAddition)
			approval.POST("/module-license-change", deps.ApprovalController.SubmitModuleLicenseChange)

			approval.GET("/pending", deps.QueryController.ListPending)
			approval.GET("/requests", deps.QueryController.ListRequests)
			approval.GET("/requests/:id", deps.ApprovalController.Get)
			approval.POST("/requests/:id/approve", deps.ApprovalController.Decide)
			approval.GET("/requests/:id/steps", deps.QueryController.GetSteps)

			approval.GET("/entities/:ref/status", deps.QueryController.EntityStatus)
			approval.GET("/dashboard/stats", deps.QueryController.DashboardStats)
		}

		licenses := v1.Group("/licenses")
		{
			licenses.GET("/:org", deps.LicenseController.List)
			licenses.GET("/:org/export", deps.LicenseController.Export)
			licenses.GET("/:org/modules/:module", deps.LicenseController.Get)

			// Direct grant mutation bypasses the approval chain and is
			// reserved for the top role.
			admin := licenses.Group("")
			admin.Use(RequireAdmin(deps.Registry))
			{
				admin.PUT("/:org/modules/:module", deps.LicenseController.Upsert)
				admin.POST("/:org/import", deps.LicenseController.Import)
			}
		}
	}

	// Unmatched routes answer JSON, not HTML.
	router.NoRoute(func(c *gin.Context) {
		Error(c, http.StatusNotFound, "route not found", "the requested route does not exist")
	})

	return router
}

// RequireAdmin rejects callers whose role is not the top of the hierarchy.
func RequireAdmin(registry *hierarchy.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := GetActor(c)
		if actor == nil || !registry.IsAdmin(hierarchy.Role(actor.Role)) {
			Error(c, http.StatusForbidden, "admin role required", "")
			c.Abort()
			return
		}
		c.Next()
	}
}
