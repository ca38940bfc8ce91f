package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/traveldesk/reisekosten/internal/application/port"
	"github.com/traveldesk/reisekosten/internal/domain/claim"
	"github.com/traveldesk/reisekosten/internal/domain/rate"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// PerDiemClaimInput carries everything needed to compute a per-diem claim.
type PerDiemClaimInput struct {
	CompanyID   string
	EmployeeID  string
	CountryCode string
	City        string
	TravelDate  time.Time
	Description string
	Period      claim.PerDiemInput
}

// MileageClaimInput carries everything needed to compute a mileage claim.
type MileageClaimInput struct {
	CompanyID   string
	EmployeeID  string
	VehicleType string
	TravelDate  time.Time
	Description string
	Journey     claim.MileageInput
}

// ClaimService computes and stores reimbursement claims.
type ClaimService interface {
	QuotePerDiem(ctx context.Context, in PerDiemClaimInput) (*claim.PerDiemResult, error)
	CreatePerDiemClaim(ctx context.Context, in PerDiemClaimInput) (*claim.Claim, error)
	QuoteMileage(ctx context.Context, in MileageClaimInput) (*claim.MileageResult, error)
	CreateMileageClaim(ctx context.Context, in MileageClaimInput) (*claim.Claim, error)
	GetClaim(ctx context.Context, id string) (*claim.Claim, error)
	ListClaims(ctx context.Context, companyID, employeeID string, limit, offset int) ([]*claim.Claim, error)
}

type claimServiceImpl struct {
	rateRepo  port.RateRepository
	claimRepo port.ClaimRepository
	logger    Logger
}

// NewClaimService creates a new ClaimService
func NewClaimService(rateRepo port.RateRepository, claimRepo port.ClaimRepository, logger Logger) ClaimService {
	return &claimServiceImpl{
		rateRepo:  rateRepo,
		claimRepo: claimRepo,
		logger:    logger,
	}
}

// catalog loads the company's rate records into a lookup catalog.
func (s *claimServiceImpl) catalog(ctx context.Context, companyID string) (*rate.Catalog, error) {
	perDiem, err := s.rateRepo.ListPerDiemRates(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("load per-diem rates: %w", err)
	}
	vehicle, err := s.rateRepo.ListVehicleRates(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("load vehicle rates: %w", err)
	}
	return rate.NewCatalog(perDiem, vehicle), nil
}

// QuotePerDiem computes a per-diem amount without persisting anything.
func (s *claimServiceImpl) QuotePerDiem(ctx context.Context, in PerDiemClaimInput) (*claim.PerDiemResult, error) {
	catalog, err := s.catalog(ctx, in.CompanyID)
	if err != nil {
		return nil, err
	}

	r, err := catalog.FindPerDiemRate(in.CountryCode, in.City, in.TravelDate)
	if err != nil {
		return nil, err
	}

	return claim.CalculatePerDiem(r, in.Period)
}

// CreatePerDiemClaim computes and stores a per-diem claim. The claim
// snapshots the rate values used so later catalog edits cannot change it.
func (s *claimServiceImpl) CreatePerDiemClaim(ctx context.Context, in PerDiemClaimInput) (*claim.Claim, error) {
	catalog, err := s.catalog(ctx, in.CompanyID)
	if err != nil {
		return nil, err
	}

	r, err := catalog.FindPerDiemRate(in.CountryCode, in.City, in.TravelDate)
	if err != nil {
		s.logger.Error("Per-diem rate lookup failed", "error", err,
			"country", in.CountryCode, "city", in.City)
		return nil, err
	}

	result, err := claim.CalculatePerDiem(r, in.Period)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	c := &claim.Claim{
		ID:            uuid.NewString(),
		CompanyID:     in.CompanyID,
		EmployeeID:    in.EmployeeID,
		Kind:          claim.KindPerDiem,
		Category:      claim.CategoryPerDiem,
		Description:   in.Description,
		TravelDate:    in.TravelDate,
		Amount:        result.Amount,
		Currency:      result.Currency,
		Status:        claim.StatusDraft,
		RateSnapshot:  claim.PerDiemSnapshot(r),
		PerDiemDetail: result,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.claimRepo.Create(ctx, c); err != nil {
		s.logger.Error("Failed to store per-diem claim", "error", err, "employee_id", in.EmployeeID)
		return nil, err
	}

	s.logger.Info("Per-diem claim created", "claim_id", c.ID,
		"employee_id", in.EmployeeID, "amount", c.Amount.String())
	return c, nil
}

// QuoteMileage computes a mileage amount without persisting anything.
func (s *claimServiceImpl) QuoteMileage(ctx context.Context, in MileageClaimInput) (*claim.MileageResult, error) {
	catalog, err := s.catalog(ctx, in.CompanyID)
	if err != nil {
		return nil, err
	}

	r, err := catalog.FindVehicleRate(in.VehicleType)
	if err != nil {
		return nil, err
	}

	return claim.CalculateMileage(r, in.Journey)
}

// CreateMileageClaim computes and stores a mileage claim.
func (s *claimServiceImpl) CreateMileageClaim(ctx context.Context, in MileageClaimInput) (*claim.Claim, error) {
	catalog, err := s.catalog(ctx, in.CompanyID)
	if err != nil {
		return nil, err
	}

	r, err := catalog.FindVehicleRate(in.VehicleType)
	if err != nil {
		s.logger.Error("Vehicle rate lookup failed", "error", err, "vehicle_type", in.VehicleType)
		return nil, err
	}

	result, err := claim.CalculateMileage(r, in.Journey)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	c := &claim.Claim{
		ID:            uuid.NewString(),
		CompanyID:     in.CompanyID,
		EmployeeID:    in.EmployeeID,
		Kind:          claim.KindMileage,
		Category:      claim.CategoryMileage,
		Description:   in.Description,
		TravelDate:    in.TravelDate,
		Amount:        result.Amount,
		Currency:      result.Currency,
		Status:        claim.StatusDraft,
		RateSnapshot:  claim.MileageSnapshot(r),
		MileageDetail: result,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.claimRepo.Create(ctx, c); err != nil {
		s.logger.Error("Failed to store mileage claim", "error", err, "employee_id", in.EmployeeID)
		return nil, err
	}

	s.logger.Info("Mileage claim created", "claim_id", c.ID,
		"employee_id", in.EmployeeID, "amount", c.Amount.String())
	return c, nil
}

// GetClaim retrieves a claim by ID.
func (s *claimServiceImpl) GetClaim(ctx context.Context, id string) (*claim.Claim, error) {
	c, err := s.claimRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get claim", "error", err, "claim_id", id)
		return nil, err
	}
	return c, nil
}

// ListClaims retrieves a paginated list of an employee's claims.
func (s *claimServiceImpl) ListClaims(ctx context.Context, companyID, employeeID string, limit, offset int) ([]*claim.Claim, error) {
	claims, err := s.claimRepo.ListByEmployee(ctx, companyID, employeeID, limit, offset)
	if err != nil {
		s.logger.Error("Failed to list claims", "error", err, "employee_id", employeeID)
		return nil, err
	}
	return claims, nil
}
