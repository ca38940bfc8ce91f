package claim

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/traveldesk/reisekosten/internal/domain/rate"
)

// MileageInput describes a single reimbursable journey. Distance is the
// already-recorded trip distance in kilometers; no trajectory data is
// processed here.
type MileageInput struct {
	Origin      string          `json:"origin"`
	Destination string          `json:"destination"`
	DistanceKm  decimal.Decimal `json:"distance_km"`
}

// MileageResult is the computed amount plus the breakdown needed to audit it.
type MileageResult struct {
	Origin      string          `json:"origin"`
	Destination string          `json:"destination"`
	DistanceKm  decimal.Decimal `json:"distance_km"`
	RatePerKm   decimal.Decimal `json:"rate_per_km"`
	Amount      decimal.Decimal `json:"amount"`
	CO2Grams    decimal.Decimal `json:"co2_grams"`
	Currency    string          `json:"currency"`
}

// CalculateMileage computes the reimbursable amount for a journey.
// The caller must have resolved an active vehicle rate through the catalog;
// there is no default rate here, a missing rate fails the calculation.
func CalculateMileage(r *rate.VehicleRate, in MileageInput) (*MileageResult, error) {
	if in.DistanceKm.IsNegative() {
		return nil, fmt.Errorf("%w: distance must not be negative (got %s)",
			ErrInvalidInput, in.DistanceKm)
	}

	return &MileageResult{
		Origin:      in.Origin,
		Destination: in.Destination,
		DistanceKm:  in.DistanceKm,
		RatePerKm:   r.RatePerKilometer,
		Amount:      in.DistanceKm.Mul(r.RatePerKilometer).Round(currencyMinorUnits),
		CO2Grams:    in.DistanceKm.Mul(r.CO2GramsPerKilometer),
		Currency:    r.Currency,
	}, nil
}

// MileageSnapshot captures the rate values used for a mileage calculation.
func MileageSnapshot(r *rate.VehicleRate) RateSnapshot {
	return RateSnapshot{
		RateID:               r.ID,
		Currency:             r.Currency,
		RatePerKilometer:     r.RatePerKilometer,
		CO2GramsPerKilometer: r.CO2GramsPerKilometer,
	}
}
