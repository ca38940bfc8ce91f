package rate

import (
	"time"

	"github.com/shopspring/decimal"
)

// PerDiemRate is a per-diem allowance rate for a destination.
// HalfDayRate is stored independently of FullDayRate and must be used as-is;
// policy overrides may set it to something other than half the full-day rate.
type PerDiemRate struct {
	ID          int64           `json:"id"`
	CountryCode string          `json:"country_code"`
	City        string          `json:"city,omitempty"` // empty means country-wide
	FullDayRate decimal.Decimal `json:"full_day_rate"`
	HalfDayRate decimal.Decimal `json:"half_day_rate"`
	Currency    string          `json:"currency"`
	ValidFrom   time.Time       `json:"valid_from"`
	ValidTo     *time.Time      `json:"valid_to,omitempty"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// AppliesOn reports whether the rate's validity window covers the given date.
func (r *PerDiemRate) AppliesOn(onDate time.Time) bool {
	if onDate.Before(r.ValidFrom) {
		return false
	}
	if r.ValidTo != nil && onDate.After(*r.ValidTo) {
		return false
	}
	return true
}

// VehicleRate is a mileage reimbursement rate for a vehicle type.
// Once a finalized claim references a rate, the record is only ever
// deactivated, never edited in place; historical claims keep a snapshot of
// the values that were active at calculation time.
type VehicleRate struct {
	ID                   int64           `json:"id"`
	VehicleType          string          `json:"vehicle_type"`
	RatePerKilometer     decimal.Decimal `json:"rate_per_kilometer"`
	Currency             string          `json:"currency"`
	CO2GramsPerKilometer decimal.Decimal `json:"co2_grams_per_kilometer"`
	Active               bool            `json:"active"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// Vehicle type constants
const (
	VehicleTypeCar        = "CAR"
	VehicleTypeMotorcycle = "MOTORCYCLE"
	VehicleTypeBicycle    = "BICYCLE"
)
