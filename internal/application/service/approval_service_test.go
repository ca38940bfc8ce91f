package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/traveldesk/reisekosten/internal/application/port"
	"github.com/traveldesk/reisekosten/internal/domain/approval"
	"github.com/traveldesk/reisekosten/internal/domain/claim"
	"github.com/traveldesk/reisekosten/internal/domain/workflow"
)

func testPolicy() ChainPolicy {
	return ChainPolicy{
		FinanceThreshold: decimal.RequireFromString("500"),
		HRThreshold:      decimal.RequireFromString("2000"),
	}
}

func seedClaim(repo *mockClaimRepo, id, amount string) {
	repo.claims[id] = &claim.Claim{
		ID:         id,
		CompanyID:  "acme",
		EmployeeID: "emp-1",
		Kind:       claim.KindPerDiem,
		Category:   claim.CategoryPerDiem,
		Amount:     decimal.RequireFromString(amount),
		Currency:   "EUR",
		Status:     claim.StatusDraft,
	}
}

func newTestApprovalService(claimRepo *mockClaimRepo, approvalRepo *mockApprovalRepo) ApprovalService {
	return NewApprovalService(approvalRepo, claimRepo, &mockTxManager{}, testPolicy(), nopLogger{})
}

func TestChainPolicy_BuildChain(t *testing.T) {
	tests := []struct {
		name      string
		amount    string
		wantRoles []string
	}{
		{"small amount needs only the manager", "120", []string{approval.RoleManager}},
		{"mid amount adds finance", "750", []string{approval.RoleManager, approval.RoleFinance}},
		{"large amount adds finance and hr", "2500", []string{approval.RoleManager, approval.RoleFinance, approval.RoleHR}},
		{"threshold boundary is inclusive", "500", []string{approval.RoleManager, approval.RoleFinance}},
	}

	policy := testPolicy()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chain := policy.BuildChain(decimal.RequireFromString(tt.amount))
			require.Len(t, chain, len(tt.wantRoles))
			for i, role := range tt.wantRoles {
				assert.Equal(t, role, chain[i].Role)
			}
		})
	}
}

func TestApprovalService_Submit(t *testing.T) {
	claimRepo := newMockClaimRepo()
	approvalRepo := newMockApprovalRepo()
	seedClaim(claimRepo, "c1", "400.00")
	seedClaim(claimRepo, "c2", "350.00")

	svc := newTestApprovalService(claimRepo, approvalRepo)

	r, err := svc.Submit(context.Background(), SubmitInput{
		CompanyID:  "acme",
		EmployeeID: "emp-1",
		Title:      "Trade fair Munich",
		ClaimIDs:   []string{"c1", "c2"},
		Priority:   approval.PriorityHigh,
		TravelDate: time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.True(t, r.TotalAmount.Equal(decimal.RequireFromString("750.00")))
	assert.Equal(t, workflow.StatePending, r.Status)
	// 750 crosses the finance threshold
	require.Len(t, r.Steps, 2)
	assert.Equal(t, approval.StepPending, r.Steps[0].Status)
	assert.Equal(t, approval.StepWaiting, r.Steps[1].Status)

	for _, id := range []string{"c1", "c2"} {
		c, err := claimRepo.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, claim.StatusSubmitted, c.Status)
	}
}

func TestApprovalService_Submit_RejectsMixedCurrencies(t *testing.T) {
	claimRepo := newMockClaimRepo()
	approvalRepo := newMockApprovalRepo()
	seedClaim(claimRepo, "c1", "100.00")
	seedClaim(claimRepo, "c2", "100.00")
	claimRepo.claims["c2"].Currency = "USD"

	svc := newTestApprovalService(claimRepo, approvalRepo)

	_, err := svc.Submit(context.Background(), SubmitInput{
		CompanyID:  "acme",
		EmployeeID: "emp-1",
		ClaimIDs:   []string{"c1", "c2"},
	})
	require.ErrorIs(t, err, claim.ErrInvalidInput)
	assert.Empty(t, approvalRepo.requests)
}

func TestApprovalService_Submit_UnknownClaim(t *testing.T) {
	claimRepo := newMockClaimRepo()
	seedClaim(claimRepo, "c1", "100.00")

	svc := newTestApprovalService(claimRepo, newMockApprovalRepo())

	_, err := svc.Submit(context.Background(), SubmitInput{
		CompanyID:  "acme",
		EmployeeID: "emp-1",
		ClaimIDs:   []string{"c1", "missing"},
	})
	require.ErrorIs(t, err, claim.ErrInvalidInput)
}

func submitTestRequest(t *testing.T, svc ApprovalService, claimRepo *mockClaimRepo, amount string) *approval.Request {
	t.Helper()
	seedClaim(claimRepo, "c1", amount)
	r, err := svc.Submit(context.Background(), SubmitInput{
		CompanyID:  "acme",
		EmployeeID: "emp-1",
		Title:      "Client visit",
		ClaimIDs:   []string{"c1"},
		TravelDate: time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return r
}

func TestApprovalService_ApproveWholeChain(t *testing.T) {
	claimRepo := newMockClaimRepo()
	approvalRepo := newMockApprovalRepo()
	svc := newTestApprovalService(claimRepo, approvalRepo)

	// 750 -> manager + finance
	r := submitTestRequest(t, svc, claimRepo, "750.00")

	r1, err := svc.ApproveStep(context.Background(), r.ID, 0, "Alice Manager")
	require.NoError(t, err)
	assert.Equal(t, workflow.StatePending, r1.Status)
	assert.Equal(t, approval.StepPending, r1.Steps[1].Status)

	r2, err := svc.ApproveStep(context.Background(), r.ID, 1, "Bob Finance")
	require.NoError(t, err)
	assert.Equal(t, workflow.StateApproved, r2.Status)
	assert.NotNil(t, r2.DecidedAt)
}

func TestApprovalService_RejectStep(t *testing.T) {
	claimRepo := newMockClaimRepo()
	approvalRepo := newMockApprovalRepo()
	svc := newTestApprovalService(claimRepo, approvalRepo)

	r := submitTestRequest(t, svc, claimRepo, "100.00")

	rejected, err := svc.RejectStep(context.Background(), r.ID, 0, "Alice Manager", "not a business trip")
	require.NoError(t, err)
	assert.Equal(t, workflow.StateRejected, rejected.Status)
	assert.Equal(t, "not a business trip", rejected.Steps[0].Comment)

	// terminal: no further transitions
	_, err = svc.ApproveStep(context.Background(), r.ID, 0, "Alice Manager")
	require.ErrorIs(t, err, workflow.ErrInvalidTransition)
}

func TestApprovalService_RejectRequest(t *testing.T) {
	claimRepo := newMockClaimRepo()
	approvalRepo := newMockApprovalRepo()
	svc := newTestApprovalService(claimRepo, approvalRepo)

	// 750 -> manager + finance; reject after the manager approved
	r := submitTestRequest(t, svc, claimRepo, "750.00")

	_, err := svc.ApproveStep(context.Background(), r.ID, 0, "Alice Manager")
	require.NoError(t, err)

	rejected, err := svc.RejectRequest(context.Background(), r.ID, "Bob Finance", "missing receipts")
	require.NoError(t, err)
	assert.Equal(t, workflow.StateRejected, rejected.Status)
	assert.Equal(t, approval.StepApproved, rejected.Steps[0].Status)
	assert.Equal(t, approval.StepRejected, rejected.Steps[1].Status)
}

func TestApprovalService_OutOfOrderApproval(t *testing.T) {
	claimRepo := newMockClaimRepo()
	approvalRepo := newMockApprovalRepo()
	svc := newTestApprovalService(claimRepo, approvalRepo)

	r := submitTestRequest(t, svc, claimRepo, "750.00")

	_, err := svc.ApproveStep(context.Background(), r.ID, 1, "Bob Finance")
	require.ErrorIs(t, err, workflow.ErrInvalidTransition)

	// nothing was committed
	stored, err := svc.GetRequest(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Version)
}

func TestApprovalService_ConcurrentModification(t *testing.T) {
	claimRepo := newMockClaimRepo()
	approvalRepo := newMockApprovalRepo()
	svc := newTestApprovalService(claimRepo, approvalRepo)

	r := submitTestRequest(t, svc, claimRepo, "100.00")

	// Another approver commits between this caller's read and write.
	approvalRepo.updateWithVersionFunc = func(ctx context.Context, req *approval.Request, expectedVersion int64) error {
		return port.ErrConcurrentModification
	}

	_, err := svc.ApproveStep(context.Background(), r.ID, 0, "Alice Manager")
	require.ErrorIs(t, err, port.ErrConcurrentModification)
}

func TestApprovalService_ListOverdue(t *testing.T) {
	claimRepo := newMockClaimRepo()
	approvalRepo := newMockApprovalRepo()
	svc := newTestApprovalService(claimRepo, approvalRepo)

	r := submitTestRequest(t, svc, claimRepo, "100.00")

	asOf := r.TravelDate.AddDate(0, 0, 3)
	overdue, err := svc.ListOverdue(context.Background(), "acme", asOf)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, r.ID, overdue[0].ID)

	// a decided request is never overdue
	_, err = svc.ApproveStep(context.Background(), r.ID, 0, "Alice Manager")
	require.NoError(t, err)

	overdue, err = svc.ListOverdue(context.Background(), "acme", asOf)
	require.NoError(t, err)
	assert.Empty(t, overdue)
}
