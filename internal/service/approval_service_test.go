package service_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/hash066/bcm-approval/internal/engine"
	"github.com/hash066/bcm-approval/internal/hierarchy"
	"github.com/hash066/bcm-approval/internal/model"
	"github.com/hash066/bcm-approval/internal/payload"
	"github.com/hash066/bcm-approval/internal/repository"
	"github.com/hash066/bcm-approval/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testEnv struct {
	db          *gorm.DB
	approvalSvc service.ApprovalService
	querySvc    service.QueryService
	licenseSvc  service.LicenseService
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&model.ApprovalRequestModel{},
		&model.ApprovalStepModel{},
		&model.AuditLogModel{},
		&model.ModuleLicenseModel{},
	)
	require.NoError(t, err)

	registry := hierarchy.NewDefaultRegistry()
	eng := engine.NewEngine(registry)
	requestRepo := repository.NewApprovalRequestRepository(db)
	stepRepo := repository.NewApprovalStepRepository(db)
	auditSvc := service.NewAuditLogService(repository.NewAuditLogRepository(db))
	licenseSvc := service.NewLicenseService(repository.NewModuleLicenseRepository(db))

	return &testEnv{
		db:          db,
		approvalSvc: service.NewApprovalService(eng, requestRepo, stepRepo, auditSvc, licenseSvc, nil),
		querySvc:    service.NewQueryService(registry, requestRepo, stepRepo),
		licenseSvc:  licenseSvc,
	}
}

func clauseEditPayload() json.RawMessage {
	return json.RawMessage(`{
		"job_id": "job-1",
		"control_id": "A.5.1",
		"remedy": "tighten reviews",
		"justification": "audit finding",
		"clause_data": {"text": "revised"}
	}`)
}

func submitClauseEdit(t *testing.T, env *testEnv, submitterRole hierarchy.Role) *service.RequestView {
	t.Helper()
	view, err := env.approvalSvc.Create(context.Background(), &service.CreateRequest{
		RequestType:   payload.TypeClauseEdit,
		Payload:       clauseEditPayload(),
		SubmitterID:   "user-1",
		SubmitterRole: submitterRole,
	})
	require.NoError(t, err)
	return view
}

func TestApprovalService_Create(t *testing.T) {
	env := setupTestEnv(t)

	view := submitClauseEdit(t, env, hierarchy.RoleProcessOwner)

	assert.NotEmpty(t, view.ID)
	assert.Equal(t, model.StatusPending, view.Status)
	assert.Equal(t, string(hierarchy.RoleDepartmentHead), view.CurrentApproverRole)
	assert.Equal(t, "A.5.1", view.EntityRef)
	assert.Empty(t, view.Steps)
}

func TestApprovalService_Create_UnknownType(t *testing.T) {
	env := setupTestEnv(t)

	_, err := env.approvalSvc.Create(context.Background(), &service.CreateRequest{
		RequestType:   "budget_change",
		Payload:       json.RawMessage(`{}`),
		SubmitterID:   "user-1",
		SubmitterRole: hierarchy.RoleProcessOwner,
	})
	assert.ErrorIs(t, err, payload.ErrUnknownRequestType)
}

func TestApprovalService_Create_InvalidPayload(t *testing.T) {
	env := setupTestEnv(t)

	_, err := env.approvalSvc.Create(context.Background(), &service.CreateRequest{
		RequestType:   payload.TypeClauseEdit,
		Payload:       json.RawMessage(`{"control_id": "A.5.1"}`),
		SubmitterID:   "user-1",
		SubmitterRole: hierarchy.RoleProcessOwner,
	})
	assert.Error(t, err)
}

func TestApprovalService_Create_UnknownSubmitterRole(t *testing.T) {
	env := setupTestEnv(t)

	_, err := env.approvalSvc.Create(context.Background(), &service.CreateRequest{
		RequestType:   payload.TypeClauseEdit,
		Payload:       clauseEditPayload(),
		SubmitterID:   "user-1",
		SubmitterRole: "intern",
	})
	var unknownErr *hierarchy.UnknownRoleError
	assert.ErrorAs(t, err, &unknownErr)
}

// A top-role submission resolves immediately with a synthetic self-approval
// step so the history stays complete.
func TestApprovalService_Create_TopRoleAutoApproves(t *testing.T) {
	env := setupTestEnv(t)

	view := submitClauseEdit(t, env, hierarchy.RoleAdmin)

	assert.Equal(t, model.StatusApproved, view.Status)
	assert.Empty(t, view.CurrentApproverRole)
	require.Len(t, view.Steps, 1)
	assert.Equal(t, model.DecisionApproved, view.Steps[0].Decision)
	assert.Equal(t, string(hierarchy.RoleAdmin), view.Steps[0].Role)
	assert.Equal(t, 1, view.Steps[0].Sequence)
}

// A process owner's request climbs the whole chain: department head, then
// organization head, then admin, accumulating one step per decision.
func TestApprovalService_Decide_FullChain(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	view := submitClauseEdit(t, env, hierarchy.RoleProcessOwner)

	view, err := env.approvalSvc.Decide(ctx, view.ID, &service.DecideRequest{
		Decision:  model.DecisionApproved,
		Comment:   "looks right",
		ActorID:   "dh-1",
		ActorRole: hierarchy.RoleDepartmentHead,
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, view.Status)
	assert.Equal(t, string(hierarchy.RoleOrganizationHead), view.CurrentApproverRole)

	view, err = env.approvalSvc.Decide(ctx, view.ID, &service.DecideRequest{
		Decision:  model.DecisionApproved,
		ActorID:   "oh-1",
		ActorRole: hierarchy.RoleOrganizationHead,
	})
	require.NoError(t, err)
	assert.Equal(t, string(hierarchy.RoleAdmin), view.CurrentApproverRole)

	view, err = env.approvalSvc.Decide(ctx, view.ID, &service.DecideRequest{
		Decision:  model.DecisionApproved,
		ActorID:   "admin-1",
		ActorRole: hierarchy.RoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, view.Status)
	assert.Empty(t, view.CurrentApproverRole)

	require.Len(t, view.Steps, 3)
	for i, step := range view.Steps {
		assert.Equal(t, i+1, step.Sequence)
		assert.Equal(t, model.DecisionApproved, step.Decision)
	}
	assert.Equal(t, "looks right", view.Steps[0].Comment)
}

func TestApprovalService_Decide_RejectIsTerminal(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	view := submitClauseEdit(t, env, hierarchy.RoleProcessOwner)

	view, err := env.approvalSvc.Decide(ctx, view.ID, &service.DecideRequest{
		Decision:  model.DecisionRejected,
		Comment:   "needs rework",
		ActorID:   "dh-1",
		ActorRole: hierarchy.RoleDepartmentHead,
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected, view.Status)

	// A late admin approval cannot reopen it.
	_, err = env.approvalSvc.Decide(ctx, view.ID, &service.DecideRequest{
		Decision:  model.DecisionApproved,
		ActorID:   "admin-1",
		ActorRole: hierarchy.RoleAdmin,
	})
	var finalizedErr *engine.RequestAlreadyFinalizedError
	assert.ErrorAs(t, err, &finalizedErr)
}

func TestApprovalService_Decide_WrongRole(t *testing.T) {
	env := setupTestEnv(t)

	view := submitClauseEdit(t, env, hierarchy.RoleProcessOwner)

	_, err := env.approvalSvc.Decide(context.Background(), view.ID, &service.DecideRequest{
		Decision:  model.DecisionApproved,
		ActorID:   "oh-1",
		ActorRole: hierarchy.RoleOrganizationHead,
	})
	var wrongRole *engine.WrongApproverRoleError
	assert.ErrorAs(t, err, &wrongRole)
}

func TestApprovalService_Decide_AdminOverride(t *testing.T) {
	env := setupTestEnv(t)

	view := submitClauseEdit(t, env, hierarchy.RoleProcessOwner)

	view, err := env.approvalSvc.Decide(context.Background(), view.ID, &service.DecideRequest{
		Decision:  model.DecisionApproved,
		ActorID:   "admin-1",
		ActorRole: hierarchy.RoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, view.Status)
	require.Len(t, view.Steps, 1)
	assert.Equal(t, string(hierarchy.RoleAdmin), view.Steps[0].Role)
}

func TestApprovalService_Decide_NotFound(t *testing.T) {
	env := setupTestEnv(t)

	_, err := env.approvalSvc.Decide(context.Background(), "missing", &service.DecideRequest{
		Decision:  model.DecisionApproved,
		ActorID:   "dh-1",
		ActorRole: hierarchy.RoleDepartmentHead,
	})
	assert.ErrorIs(t, err, engine.ErrNotFound)
}

func TestApprovalService_Decide_InvalidDecision(t *testing.T) {
	env := setupTestEnv(t)

	view := submitClauseEdit(t, env, hierarchy.RoleProcessOwner)

	_, err := env.approvalSvc.Decide(context.Background(), view.ID, &service.DecideRequest{
		Decision:  "maybe",
		ActorID:   "dh-1",
		ActorRole: hierarchy.RoleDepartmentHead,
	})
	var invalidErr *engine.InvalidDecisionError
	assert.ErrorAs(t, err, &invalidErr)
}

// A fully approved module license change materializes as a grant.
func TestApprovalService_LicenseChangeAppliedOnFinalApproval(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	view, err := env.approvalSvc.Create(ctx, &service.CreateRequest{
		RequestType: payload.TypeModuleLicenseChange,
		Payload: json.RawMessage(`{
			"org_id": "org-1",
			"module_id": "risk",
			"is_licensed": true,
			"start_date": "2026-01-01",
			"expiry_date": "2026-12-31"
		}`),
		SubmitterID:   "oh-1",
		SubmitterRole: hierarchy.RoleOrganizationHead,
	})
	require.NoError(t, err)
	assert.Equal(t, "org-1/risk", view.EntityRef)

	// No grant before the final approval.
	_, err = env.licenseSvc.Get("org-1", "risk")
	assert.ErrorIs(t, err, repository.ErrLicenseNotFound)

	view, err = env.approvalSvc.Decide(ctx, view.ID, &service.DecideRequest{
		Decision:  model.DecisionApproved,
		ActorID:   "admin-1",
		ActorRole: hierarchy.RoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, view.Status)

	grant, err := env.licenseSvc.Get("org-1", "risk")
	require.NoError(t, err)
	assert.True(t, grant.IsLicensed)
}

func TestApprovalService_LicenseChangeAppliedOnAutoApproval(t *testing.T) {
	env := setupTestEnv(t)

	_, err := env.approvalSvc.Create(context.Background(), &service.CreateRequest{
		RequestType: payload.TypeModuleLicenseChange,
		Payload: json.RawMessage(`{
			"org_id": "org-2",
			"module_id": "audit",
			"is_licensed": true,
			"start_date": "2026-01-01"
		}`),
		SubmitterID:   "admin-1",
		SubmitterRole: hierarchy.RoleAdmin,
	})
	require.NoError(t, err)

	grant, err := env.licenseSvc.Get("org-2", "audit")
	require.NoError(t, err)
	assert.True(t, grant.IsLicensed)
}

func TestApprovalService_Get(t *testing.T) {
	env := setupTestEnv(t)

	created := submitClauseEdit(t, env, hierarchy.RoleProcessOwner)

	view, err := env.approvalSvc.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, view.ID)
	assert.JSONEq(t, string(clauseEditPayload()), string(view.Payload))

	_, err = env.approvalSvc.Get("missing")
	assert.ErrorIs(t, err, engine.ErrNotFound)
}

func TestApprovalService_AuditTrailWritten(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	view := submitClauseEdit(t, env, hierarchy.RoleProcessOwner)
	_, err := env.approvalSvc.Decide(ctx, view.ID, &service.DecideRequest{
		Decision:  model.DecisionApproved,
		ActorID:   "dh-1",
		ActorRole: hierarchy.RoleDepartmentHead,
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, env.db.Model(&model.AuditLogModel{}).
		Where("resource_id = ?", view.ID).
		Count(&count).Error)
	assert.Equal(t, int64(2), count) // one for submit, one for the decision
}
