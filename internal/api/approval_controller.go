package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hash066/bcm-approval/internal/hierarchy"
	"github.com/hash066/bcm-approval/internal/payload"
	"github.com/hash066/bcm-approval/internal/service"
	"github.com/hash066/bcm-approval/internal/utils"
)

// ApprovalController handles request submission and decisions.
type ApprovalController struct {
	approvalService service.ApprovalService
}

// NewApprovalController creates the approval controller.
func NewApprovalController(approvalService service.ApprovalService) *ApprovalController {
	return &ApprovalController{
		approvalService: approvalService,
	}
}

// SubmitClauseEdit creates a clause-edit approval request from the posted
// clause payload.
func (c *ApprovalController) SubmitClauseEdit(ctx *gin.Context) {
	c.submit(ctx, payload.TypeClauseEdit)
}

// SubmitFrameworkAddition creates a framework-addition approval request.
func (c *ApprovalController) SubmitFrameworkAddition(ctx *gin.Context) {
	c.submit(ctx, payload.TypeFrameworkAddition)
}

// SubmitModuleLicenseChange creates a module-license-change approval
// request.
func (c *ApprovalController) SubmitModuleLicenseChange(ctx *gin.Context) {
	c.submit(ctx, payload.TypeModuleLicenseChange)
}

func (c *ApprovalController) submit(ctx *gin.Context, requestType payload.RequestType) {
	actor := GetActor(ctx)
	if actor == nil {
		Error(ctx, http.StatusUnauthorized, "missing actor identity", "")
		return
	}

	body, err := ctx.GetRawData()
	if err != nil || len(body) == 0 {
		Error(ctx, http.StatusBadRequest, "invalid request", "request body is required")
		return
	}

	view, err := c.approvalService.Create(ctx.Request.Context(), &service.CreateRequest{
		RequestType:   requestType,
		Payload:       body,
		SubmitterID:   actor.ID,
		SubmitterRole: hierarchy.Role(actor.Role),
	})
	if err != nil {
		EngineError(ctx, err)
		return
	}

	Success(ctx, view)
}

// decideBody is the approve/reject request body.
type decideBody struct {
	Decision string `json:"decision" binding:"required"`
	Comments string `json:"comments"`
}

// Decide applies one approve/reject decision to a pending request.
func (c *ApprovalController) Decide(ctx *gin.Context) {
	id := ctx.Param("id")
	if err := utils.ValidateRequestID(id); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request ID", err.Error())
		return
	}

	actor := GetActor(ctx)
	if actor == nil {
		Error(ctx, http.StatusUnauthorized, "missing actor identity", "")
		return
	}

	var body decideBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	view, err := c.approvalService.Decide(ctx.Request.Context(), id, &service.DecideRequest{
		Decision:  body.Decision,
		Comment:   utils.SanitizeString(body.Comments),
		ActorID:   actor.ID,
		ActorRole: hierarchy.Role(actor.Role),
	})
	if err != nil {
		EngineError(ctx, err)
		return
	}

	Success(ctx, view)
}

// Get returns a request with its full decision history.
func (c *ApprovalController) Get(ctx *gin.Context) {
	id := ctx.Param("id")
	if err := utils.ValidateRequestID(id); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request ID", err.Error())
		return
	}

	view, err := c.approvalService.Get(id)
	if err != nil {
		EngineError(ctx, err)
		return
	}

	Success(ctx, view)
}
