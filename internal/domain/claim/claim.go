package claim

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind distinguishes the two claim variants.
type Kind string

const (
	KindPerDiem Kind = "PER_DIEM"
	KindMileage Kind = "MILEAGE"
)

// Claim status constants
const (
	StatusDraft     = "DRAFT"
	StatusSubmitted = "SUBMITTED"
	StatusSettled   = "SETTLED"
)

// Category constants for reporting
const (
	CategoryPerDiem        = "PER_DIEM"
	CategoryMileage        = "MILEAGE"
	CategoryAccommodation  = "ACCOMMODATION"
	CategoryTransportation = "TRANSPORTATION"
	CategoryOther          = "OTHER"
)

// RateSnapshot freezes the rate values a claim was computed against.
// Later edits to the rate catalog must never change a historical
// reimbursement amount, so finalized claims carry the values, not a
// live reference.
type RateSnapshot struct {
	RateID               int64           `json:"rate_id"`
	Currency             string          `json:"currency"`
	FullDayRate          decimal.Decimal `json:"full_day_rate,omitempty"`
	HalfDayRate          decimal.Decimal `json:"half_day_rate,omitempty"`
	RatePerKilometer     decimal.Decimal `json:"rate_per_kilometer,omitempty"`
	CO2GramsPerKilometer decimal.Decimal `json:"co2_grams_per_kilometer,omitempty"`
}

// Claim is a single monetary reimbursement claim, either a per-diem period
// or a mileage journey. The claim is owned by the submitting employee until
// a decision is recorded; after that it is an append-only audit record.
type Claim struct {
	ID             string          `json:"id"`
	CompanyID      string          `json:"company_id"`
	EmployeeID     string          `json:"employee_id"`
	Kind           Kind            `json:"kind"`
	Category       string          `json:"category"`
	Description    string          `json:"description,omitempty"`
	TravelDate     time.Time       `json:"travel_date"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	Status         string          `json:"status"`
	RateSnapshot   RateSnapshot    `json:"rate_snapshot"`
	PerDiemDetail  *PerDiemResult  `json:"per_diem_detail,omitempty"`
	MileageDetail  *MileageResult  `json:"mileage_detail,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
