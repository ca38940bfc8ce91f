package service

import (
	"context"
	"fmt"
	"time"

	"github.com/traveldesk/reisekosten/internal/application/port"
	"github.com/traveldesk/reisekosten/internal/domain/claim"
	"github.com/traveldesk/reisekosten/internal/domain/rate"
)

// RateService manages the company's rate reference data.
type RateService interface {
	ListPerDiemRates(ctx context.Context, companyID string) ([]*rate.PerDiemRate, error)
	ListVehicleRates(ctx context.Context, companyID string) ([]*rate.VehicleRate, error)
	CreatePerDiemRate(ctx context.Context, companyID string, r *rate.PerDiemRate) error
	CreateVehicleRate(ctx context.Context, companyID string, r *rate.VehicleRate) error
	DeactivateVehicleRate(ctx context.Context, companyID string, id int64) error
}

type rateServiceImpl struct {
	rateRepo port.RateRepository
	logger   Logger
}

// NewRateService creates a new RateService
func NewRateService(rateRepo port.RateRepository, logger Logger) RateService {
	return &rateServiceImpl{
		rateRepo: rateRepo,
		logger:   logger,
	}
}

func (s *rateServiceImpl) ListPerDiemRates(ctx context.Context, companyID string) ([]*rate.PerDiemRate, error) {
	return s.rateRepo.ListPerDiemRates(ctx, companyID)
}

func (s *rateServiceImpl) ListVehicleRates(ctx context.Context, companyID string) ([]*rate.VehicleRate, error) {
	return s.rateRepo.ListVehicleRates(ctx, companyID)
}

// CreatePerDiemRate validates and stores a new per-diem rate.
func (s *rateServiceImpl) CreatePerDiemRate(ctx context.Context, companyID string, r *rate.PerDiemRate) error {
	if r.CountryCode == "" {
		return fmt.Errorf("%w: country code is required", claim.ErrInvalidInput)
	}
	if r.Currency == "" {
		return fmt.Errorf("%w: currency is required", claim.ErrInvalidInput)
	}
	if r.FullDayRate.IsNegative() || r.HalfDayRate.IsNegative() {
		return fmt.Errorf("%w: rates must not be negative", claim.ErrInvalidInput)
	}
	if r.ValidFrom.IsZero() {
		return fmt.Errorf("%w: valid_from is required", claim.ErrInvalidInput)
	}
	if r.ValidTo != nil && r.ValidTo.Before(r.ValidFrom) {
		return fmt.Errorf("%w: valid_to precedes valid_from", claim.ErrInvalidInput)
	}

	now := time.Now()
	r.Active = true
	r.CreatedAt = now
	r.UpdatedAt = now

	if err := s.rateRepo.CreatePerDiemRate(ctx, companyID, r); err != nil {
		s.logger.Error("Failed to create per-diem rate", "error", err,
			"country", r.CountryCode, "city", r.City)
		return err
	}

	s.logger.Info("Per-diem rate created", "country", r.CountryCode,
		"city", r.City, "full_day_rate", r.FullDayRate.String())
	return nil
}

// CreateVehicleRate validates and stores a new vehicle rate.
func (s *rateServiceImpl) CreateVehicleRate(ctx context.Context, companyID string, r *rate.VehicleRate) error {
	if r.VehicleType == "" {
		return fmt.Errorf("%w: vehicle type is required", claim.ErrInvalidInput)
	}
	if r.Currency == "" {
		return fmt.Errorf("%w: currency is required", claim.ErrInvalidInput)
	}
	if r.RatePerKilometer.IsNegative() || r.CO2GramsPerKilometer.IsNegative() {
		return fmt.Errorf("%w: rates must not be negative", claim.ErrInvalidInput)
	}

	now := time.Now()
	r.Active = true
	r.CreatedAt = now
	r.UpdatedAt = now

	if err := s.rateRepo.CreateVehicleRate(ctx, companyID, r); err != nil {
		s.logger.Error("Failed to create vehicle rate", "error", err,
			"vehicle_type", r.VehicleType)
		return err
	}

	s.logger.Info("Vehicle rate created", "vehicle_type", r.VehicleType,
		"rate_per_km", r.RatePerKilometer.String())
	return nil
}

// DeactivateVehicleRate retires a vehicle rate. Rates referenced by claims
// are never edited or deleted; deactivation removes them from future
// lookups while snapshots keep history intact.
func (s *rateServiceImpl) DeactivateVehicleRate(ctx context.Context, companyID string, id int64) error {
	if err := s.rateRepo.SetVehicleRateActive(ctx, companyID, id, false); err != nil {
		s.logger.Error("Failed to deactivate vehicle rate", "error", err, "rate_id", id)
		return err
	}
	s.logger.Info("Vehicle rate deactivated", "rate_id", id)
	return nil
}
