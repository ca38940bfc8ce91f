package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/traveldesk/reisekosten/internal/domain/approval"
	"github.com/traveldesk/reisekosten/internal/domain/claim"
)

func TestReportService_Summary(t *testing.T) {
	claimRepo := newMockClaimRepo()
	approvalRepo := newMockApprovalRepo()

	claimRepo.claims["c1"] = &claim.Claim{
		ID: "c1", CompanyID: "acme", Category: claim.CategoryPerDiem,
		Amount: decimal.RequireFromString("70.00"), Currency: "EUR",
	}
	claimRepo.claims["c2"] = &claim.Claim{
		ID: "c2", CompanyID: "acme", Category: claim.CategoryPerDiem,
		Amount: decimal.RequireFromString("28.00"), Currency: "EUR",
	}
	claimRepo.claims["c3"] = &claim.Claim{
		ID: "c3", CompanyID: "acme", Category: claim.CategoryMileage,
		Amount: decimal.RequireFromString("36.00"), Currency: "EUR",
	}
	claimRepo.claims["other-company"] = &claim.Claim{
		ID: "other-company", CompanyID: "globex", Category: claim.CategoryMileage,
		Amount: decimal.RequireFromString("99.00"), Currency: "EUR",
	}

	now := time.Date(2025, time.July, 15, 0, 0, 0, 0, time.UTC)

	pending, err := approval.NewRequest("acme", "emp-1", "overdue trip",
		[]approval.ChainStep{{Role: approval.RoleManager}}, approval.PriorityNormal,
		decimal.RequireFromString("70.00"), "EUR", now.AddDate(0, 0, -7), now.AddDate(0, 0, -10))
	require.NoError(t, err)
	require.NoError(t, approvalRepo.Create(context.Background(), pending))

	decided, err := approval.NewRequest("acme", "emp-2", "decided trip",
		[]approval.ChainStep{{Role: approval.RoleManager}}, approval.PriorityNormal,
		decimal.RequireFromString("36.00"), "EUR", now.AddDate(0, 0, -3), now.AddDate(0, 0, -5))
	require.NoError(t, err)
	require.NoError(t, approval.ApproveStep(decided, 0, "manager", now))
	require.NoError(t, approvalRepo.Create(context.Background(), decided))

	svc := NewReportService(claimRepo, approvalRepo, nopLogger{})
	summary, err := svc.Summary(context.Background(), "acme", now)
	require.NoError(t, err)

	totals := make(map[string]CategoryTotal)
	for _, ct := range summary.CategoryTotals {
		totals[ct.Category] = ct
	}
	require.Len(t, totals, 2)
	assert.Equal(t, 2, totals[claim.CategoryPerDiem].Count)
	assert.True(t, totals[claim.CategoryPerDiem].Total.Equal(decimal.RequireFromString("98.00")))
	assert.True(t, totals[claim.CategoryMileage].Total.Equal(decimal.RequireFromString("36.00")))

	assert.Equal(t, 1, summary.StatusDistribution["PENDING"])
	assert.Equal(t, 1, summary.StatusDistribution["APPROVED"])
	assert.Equal(t, 1, summary.OverdueRequests)
}

func TestReportService_EmptyCompany(t *testing.T) {
	svc := NewReportService(newMockClaimRepo(), newMockApprovalRepo(), nopLogger{})

	summary, err := svc.Summary(context.Background(), "empty", time.Now())
	require.NoError(t, err)

	assert.Empty(t, summary.CategoryTotals)
	assert.Empty(t, summary.StatusDistribution)
	assert.Zero(t, summary.OverdueRequests)
}
