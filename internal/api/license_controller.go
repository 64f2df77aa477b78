package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hash066/bcm-approval/internal/repository"
	"github.com/hash066/bcm-approval/internal/service"
)

// LicenseController manages per-organization module license grants.
type LicenseController struct {
	licenseService service.LicenseService
}

// NewLicenseController creates the license controller.
func NewLicenseController(licenseService service.LicenseService) *LicenseController {
	return &LicenseController{
		licenseService: licenseService,
	}
}

// List returns all grants for an organization.
func (c *LicenseController) List(ctx *gin.Context) {
	orgID := ctx.Param("org")
	grants, err := c.licenseService.ListByOrg(orgID)
	if err != nil {
		Error(ctx, http.StatusInternalServerError, "failed to list licenses", err.Error())
		return
	}

	Success(ctx, grants)
}

// Get returns one grant.
func (c *LicenseController) Get(ctx *gin.Context) {
	orgID := ctx.Param("org")
	moduleID := ctx.Param("module")

	grant, err := c.licenseService.Get(orgID, moduleID)
	if err != nil {
		if errors.Is(err, repository.ErrLicenseNotFound) {
			Error(ctx, http.StatusNotFound, "license not found", err.Error())
			return
		}
		Error(ctx, http.StatusInternalServerError, "failed to get license", err.Error())
		return
	}

	Success(ctx, grant)
}

// Upsert creates or replaces a grant directly, bypassing the approval
// chain. Routes using it are restricted to the admin role.
func (c *LicenseController) Upsert(ctx *gin.Context) {
	orgID := ctx.Param("org")

	var body service.GrantRequest
	if err := ctx.ShouldBindJSON(&body); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	if moduleID := ctx.Param("module"); moduleID != "" {
		body.ModuleID = moduleID
	}

	grant, err := c.licenseService.Upsert(orgID, &body)
	if err != nil {
		Error(ctx, http.StatusBadRequest, "failed to save license", err.Error())
		return
	}

	Success(ctx, grant)
}

// Export returns the organization's grants as the wire-format JSON array.
func (c *LicenseController) Export(ctx *gin.Context) {
	orgID := ctx.Param("org")

	data, err := c.licenseService.ExportOrg(orgID)
	if err != nil {
		Error(ctx, http.StatusInternalServerError, "failed to export licenses", err.Error())
		return
	}

	ctx.Data(http.StatusOK, "application/json", data)
}

// Import loads grants from the wire-format JSON array.
func (c *LicenseController) Import(ctx *gin.Context) {
	orgID := ctx.Param("org")

	body, err := ctx.GetRawData()
	if err != nil || len(body) == 0 {
		Error(ctx, http.StatusBadRequest, "invalid request", "request body is required")
		return
	}

	imported, err := c.licenseService.ImportOrg(orgID, body)
	if err != nil {
		Error(ctx, http.StatusBadRequest, "failed to import licenses", err.Error())
		return
	}

	Success(ctx, gin.H{"imported": imported})
}
