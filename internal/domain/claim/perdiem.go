package claim

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/traveldesk/reisekosten/internal/domain/rate"
)

// Meal deduction shares of the full-day portion. The shares are applied
// independently and additively; with all three meals provided they remove
// 105% of the full-day portion before the clamp to zero. That is the
// policy as written, not an arithmetic bug.
var (
	breakfastShare = decimal.RequireFromString("0.25")
	lunchShare     = decimal.RequireFromString("0.40")
	dinnerShare    = decimal.RequireFromString("0.40")
)

// currencyMinorUnits is the rounding precision for computed amounts.
const currencyMinorUnits = 2

// PerDiemInput describes a per-diem entitlement period.
type PerDiemInput struct {
	FullDays           int  `json:"full_days"`
	HalfDays           int  `json:"half_days"`
	BreakfastProvided  bool `json:"breakfast_provided"`
	LunchProvided      bool `json:"lunch_provided"`
	DinnerProvided     bool `json:"dinner_provided"`
}

// PerDiemResult is the computed amount plus the breakdown needed to audit it.
type PerDiemResult struct {
	Base               decimal.Decimal `json:"base"`
	FullDayPortion     decimal.Decimal `json:"full_day_portion"`
	BreakfastDeduction decimal.Decimal `json:"breakfast_deduction"`
	LunchDeduction     decimal.Decimal `json:"lunch_deduction"`
	DinnerDeduction    decimal.Decimal `json:"dinner_deduction"`
	TotalDeductions    decimal.Decimal `json:"total_deductions"`
	Amount             decimal.Decimal `json:"amount"`
	Currency           string          `json:"currency"`
}

// CalculatePerDiem computes the reimbursable per-diem amount for a trip.
//
// Deductions for employer-provided meals are taken only against the
// full-day portion of the base amount; half days are never reduced.
// The result is clamped at zero and rounded to the currency minor unit.
func CalculatePerDiem(r *rate.PerDiemRate, in PerDiemInput) (*PerDiemResult, error) {
	if in.FullDays < 0 || in.HalfDays < 0 {
		return nil, fmt.Errorf("%w: day counts must not be negative (full=%d, half=%d)",
			ErrInvalidInput, in.FullDays, in.HalfDays)
	}

	fullDayPortion := r.FullDayRate.Mul(decimal.NewFromInt(int64(in.FullDays)))
	halfDayPortion := r.HalfDayRate.Mul(decimal.NewFromInt(int64(in.HalfDays)))
	base := fullDayPortion.Add(halfDayPortion)

	result := &PerDiemResult{
		Base:           base,
		FullDayPortion: fullDayPortion,
		Currency:       r.Currency,
	}

	if in.BreakfastProvided {
		result.BreakfastDeduction = fullDayPortion.Mul(breakfastShare)
	}
	if in.LunchProvided {
		result.LunchDeduction = fullDayPortion.Mul(lunchShare)
	}
	if in.DinnerProvided {
		result.DinnerDeduction = fullDayPortion.Mul(dinnerShare)
	}

	result.TotalDeductions = result.BreakfastDeduction.
		Add(result.LunchDeduction).
		Add(result.DinnerDeduction)

	amount := base.Sub(result.TotalDeductions)
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	result.Amount = amount.Round(currencyMinorUnits)

	return result, nil
}

// PerDiemSnapshot captures the rate values used for a per-diem calculation.
func PerDiemSnapshot(r *rate.PerDiemRate) RateSnapshot {
	return RateSnapshot{
		RateID:      r.ID,
		Currency:    r.Currency,
		FullDayRate: r.FullDayRate,
		HalfDayRate: r.HalfDayRate,
	}
}
