package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/traveldesk/reisekosten/internal/application/port"
)

// CategoryTotal is one row of the category breakdown.
type CategoryTotal struct {
	Category string          `json:"category"`
	Count    int             `json:"count"`
	Total    decimal.Decimal `json:"total"`
	Currency string          `json:"currency"`
}

// ReportSummary is the aggregate view the reporting UI renders.
type ReportSummary struct {
	CategoryTotals     []CategoryTotal `json:"category_totals"`
	StatusDistribution map[string]int  `json:"status_distribution"`
	OverdueRequests    int             `json:"overdue_requests"`
}

// ReportService aggregates claims and requests for reporting views. It is
// plain reduction over records the calculators and the approval workflow
// already produced.
type ReportService interface {
	Summary(ctx context.Context, companyID string, asOf time.Time) (*ReportSummary, error)
}

type reportServiceImpl struct {
	claimRepo    port.ClaimRepository
	approvalRepo port.ApprovalRepository
	logger       Logger
}

// NewReportService creates a new ReportService
func NewReportService(claimRepo port.ClaimRepository, approvalRepo port.ApprovalRepository, logger Logger) ReportService {
	return &reportServiceImpl{
		claimRepo:    claimRepo,
		approvalRepo: approvalRepo,
		logger:       logger,
	}
}

// Summary computes category totals, the request status distribution and the
// overdue count for a company.
func (s *reportServiceImpl) Summary(ctx context.Context, companyID string, asOf time.Time) (*ReportSummary, error) {
	claims, err := s.claimRepo.ListByCompany(ctx, companyID, 0, 0)
	if err != nil {
		s.logger.Error("Failed to load claims for summary", "error", err, "company_id", companyID)
		return nil, err
	}

	byCategory := make(map[string]*CategoryTotal)
	var order []string
	for _, c := range claims {
		entry, ok := byCategory[c.Category]
		if !ok {
			entry = &CategoryTotal{Category: c.Category, Currency: c.Currency, Total: decimal.Zero}
			byCategory[c.Category] = entry
			order = append(order, c.Category)
		}
		entry.Count++
		entry.Total = entry.Total.Add(c.Amount)
	}

	totals := make([]CategoryTotal, 0, len(order))
	for _, category := range order {
		totals = append(totals, *byCategory[category])
	}

	requests, err := s.approvalRepo.List(ctx, companyID, "", 0, 0)
	if err != nil {
		s.logger.Error("Failed to load requests for summary", "error", err, "company_id", companyID)
		return nil, err
	}

	distribution := make(map[string]int)
	overdue := 0
	for _, r := range requests {
		distribution[r.Status.String()]++
		if r.IsOverdue(asOf) {
			overdue++
		}
	}

	return &ReportSummary{
		CategoryTotals:     totals,
		StatusDistribution: distribution,
		OverdueRequests:    overdue,
	}, nil
}
