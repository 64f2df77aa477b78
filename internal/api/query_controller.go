package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hash066/bcm-approval/internal/hierarchy"
	"github.com/hash066/bcm-approval/internal/service"
	"github.com/hash066/bcm-approval/internal/utils"
)

// QueryController serves the read-side projections for the UI.
type QueryController struct {
	queryService service.QueryService
	statsService service.StatisticsService
}

// NewQueryController creates the query controller.
func NewQueryController(queryService service.QueryService, statsService service.StatisticsService) *QueryController {
	return &QueryController{
		queryService: queryService,
		statsService: statsService,
	}
}

// ListPending returns the FIFO pending queue for a role.
func (c *QueryController) ListPending(ctx *gin.Context) {
	role := ctx.Query("role")
	if err := utils.ValidateRoleParam(role); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid role", err.Error())
		return
	}

	views, err := c.queryService.ListPending(hierarchy.Role(role))
	if err != nil {
		EngineError(ctx, err)
		return
	}

	Success(ctx, views)
}

// ListRequests returns a filtered, paginated request listing.
func (c *QueryController) ListRequests(ctx *gin.Context) {
	filter := &service.ListRequestsFilter{
		SortBy: ctx.Query("sort_by"),
		Order:  ctx.Query("order"),
	}

	if v := ctx.Query("status"); v != "" {
		filter.Status = &v
	}
	if v := ctx.Query("type"); v != "" {
		filter.RequestType = &v
	}
	if v := ctx.Query("submitter"); v != "" {
		filter.SubmitterID = &v
	}
	if v := ctx.Query("entity_ref"); v != "" {
		filter.EntityRef = &v
	}
	filter.Page, _ = strconv.Atoi(ctx.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(ctx.DefaultQuery("page_size", "20"))

	views, total, err := c.queryService.ListRequests(filter)
	if err != nil {
		Error(ctx, http.StatusBadRequest, "failed to list requests", err.Error())
		return
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	totalPage := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPage++
	}

	Paginated(ctx, views, PaginationInfo{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: totalPage,
	})
}

// GetSteps returns the full audit history of a request.
func (c *QueryController) GetSteps(ctx *gin.Context) {
	id := ctx.Param("id")
	if err := utils.ValidateRequestID(id); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request ID", err.Error())
		return
	}

	steps, err := c.queryService.GetSteps(id)
	if err != nil {
		EngineError(ctx, err)
		return
	}

	Success(ctx, steps)
}

// EntityStatus reports whether a business entity has a pending request.
func (c *QueryController) EntityStatus(ctx *gin.Context) {
	ref := ctx.Param("ref")
	if ref == "" {
		Error(ctx, http.StatusBadRequest, "invalid entity ref", "entity ref is required")
		return
	}

	pending, err := c.queryService.HasPendingForEntity(ref)
	if err != nil {
		Error(ctx, http.StatusInternalServerError, "failed to check entity status", err.Error())
		return
	}

	Success(ctx, gin.H{
		"entity_ref":  ref,
		"has_pending": pending,
	})
}

// DashboardStats returns the aggregate counters for the dashboard.
func (c *QueryController) DashboardStats(ctx *gin.Context) {
	stats, err := c.statsService.GetDashboardStats()
	if err != nil {
		Error(ctx, http.StatusInternalServerError, "failed to get dashboard stats", err.Error())
		return
	}

	byType, err := c.statsService.GetStatsByType()
	if err != nil {
		Error(ctx, http.StatusInternalServerError, "failed to get stats by type", err.Error())
		return
	}

	byRole, err := c.statsService.GetPendingByRole()
	if err != nil {
		Error(ctx, http.StatusInternalServerError, "failed to get pending by role", err.Error())
		return
	}

	Success(ctx, gin.H{
		"totals":          stats,
		"by_type":         byType,
		"pending_by_role": byRole,
	})
}
