package export

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/traveldesk/reisekosten/internal/domain/approval"
	"github.com/traveldesk/reisekosten/internal/domain/claim"
	"github.com/traveldesk/reisekosten/internal/domain/workflow"
)

type stubApprovalRepo struct {
	requests []*approval.Request
}

func (s *stubApprovalRepo) Create(ctx context.Context, r *approval.Request) error { return nil }

func (s *stubApprovalRepo) GetByID(ctx context.Context, id string) (*approval.Request, error) {
	return nil, nil
}

func (s *stubApprovalRepo) List(ctx context.Context, companyID, status string, limit, offset int) ([]*approval.Request, error) {
	var out []*approval.Request
	for _, r := range s.requests {
		if r.CompanyID == companyID && (status == "" || r.Status.String() == status) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *stubApprovalRepo) UpdateWithVersion(ctx context.Context, r *approval.Request, expectedVersion int64) error {
	return nil
}

type stubClaimRepo struct {
	claims map[string]*claim.Claim
}

func (s *stubClaimRepo) Create(ctx context.Context, c *claim.Claim) error { return nil }

func (s *stubClaimRepo) GetByID(ctx context.Context, id string) (*claim.Claim, error) {
	return s.claims[id], nil
}

func (s *stubClaimRepo) GetByIDs(ctx context.Context, ids []string) ([]*claim.Claim, error) {
	var out []*claim.Claim
	for _, id := range ids {
		if c, ok := s.claims[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *stubClaimRepo) ListByEmployee(ctx context.Context, companyID, employeeID string, limit, offset int) ([]*claim.Claim, error) {
	return nil, nil
}

func (s *stubClaimRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*claim.Claim, error) {
	return nil, nil
}

func (s *stubClaimRepo) UpdateStatus(ctx context.Context, id, status string) error { return nil }

func TestSettlementExporter_Export(t *testing.T) {
	travelDate := time.Date(2025, 5, 12, 0, 0, 0, 0, time.UTC)
	decidedAt := travelDate.AddDate(0, 0, 3)

	claimRepo := &stubClaimRepo{claims: map[string]*claim.Claim{
		"c-1": {
			ID: "c-1", CompanyID: "acme", EmployeeID: "emp-1",
			Kind: claim.KindPerDiem, Category: claim.CategoryPerDiem,
			Description: "Per diem Berlin", TravelDate: travelDate,
			Amount: decimal.RequireFromString("70.00"), Currency: "EUR",
			Status: claim.StatusSubmitted,
		},
		"c-2": {
			ID: "c-2", CompanyID: "acme", EmployeeID: "emp-1",
			Kind: claim.KindMileage, Category: claim.CategoryMileage,
			Description: "Car 120 km", TravelDate: travelDate,
			Amount: decimal.RequireFromString("36.00"), Currency: "EUR",
			Status: claim.StatusSubmitted,
		},
	}}

	approvalRepo := &stubApprovalRepo{requests: []*approval.Request{
		{
			ID: "req-1", CompanyID: "acme", EmployeeID: "emp-1",
			ClaimIDs: []string{"c-1", "c-2"}, Title: "Berlin trip",
			Status:      workflow.StateApproved,
			TotalAmount: decimal.RequireFromString("106.00"), Currency: "EUR",
			TravelDate: travelDate, SubmittedAt: travelDate,
			DecidedAt: &decidedAt, Version: 3,
		},
		{
			ID: "req-2", CompanyID: "acme", EmployeeID: "emp-2",
			ClaimIDs: []string{}, Title: "Pending trip",
			Status:      workflow.StatePending,
			TotalAmount: decimal.RequireFromString("999.00"), Currency: "EUR",
			TravelDate: travelDate, SubmittedAt: travelDate, Version: 1,
		},
	}}

	dir := t.TempDir()
	exporter := NewSettlementExporter(approvalRepo, claimRepo, dir, "Traveldesk GmbH", zap.NewNop())

	asOf := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	path, err := exporter.Export(context.Background(), "acme", asOf)
	require.NoError(t, err)
	require.FileExists(t, path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	sheet := f.GetSheetName(0)

	company, err := f.GetCellValue(sheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Traveldesk GmbH", company)

	// Only the approved request's claims appear, one row per claim.
	title, err := f.GetCellValue(sheet, "A5")
	require.NoError(t, err)
	assert.Equal(t, "Berlin trip", title)

	desc, err := f.GetCellValue(sheet, "D6")
	require.NoError(t, err)
	assert.Equal(t, "Car 120 km", desc)

	next, err := f.GetCellValue(sheet, "A7")
	require.NoError(t, err)
	assert.Empty(t, next)

	total, err := f.GetCellValue(sheet, "F8")
	require.NoError(t, err)
	assert.Equal(t, "106", total)
}
