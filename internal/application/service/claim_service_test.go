package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/traveldesk/reisekosten/internal/domain/claim"
	"github.com/traveldesk/reisekosten/internal/domain/rate"
)

func testRates() *mockRateRepo {
	validFrom := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	return &mockRateRepo{
		perDiemRates: []*rate.PerDiemRate{
			{
				ID:          1,
				CountryCode: "DE",
				FullDayRate: decimal.RequireFromString("28"),
				HalfDayRate: decimal.RequireFromString("14"),
				Currency:    "EUR",
				ValidFrom:   validFrom,
				Active:      true,
			},
		},
		vehicleRates: []*rate.VehicleRate{
			{
				ID:                   1,
				VehicleType:          rate.VehicleTypeCar,
				RatePerKilometer:     decimal.RequireFromString("0.30"),
				Currency:             "EUR",
				CO2GramsPerKilometer: decimal.RequireFromString("147"),
				Active:               true,
			},
		},
	}
}

func TestClaimService_CreatePerDiemClaim(t *testing.T) {
	claimRepo := newMockClaimRepo()
	svc := NewClaimService(testRates(), claimRepo, nopLogger{})

	c, err := svc.CreatePerDiemClaim(context.Background(), PerDiemClaimInput{
		CompanyID:   "acme",
		EmployeeID:  "emp-1",
		CountryCode: "DE",
		TravelDate:  time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC),
		Period: claim.PerDiemInput{
			FullDays:          2,
			HalfDays:          2,
			BreakfastProvided: true,
		},
	})
	require.NoError(t, err)

	assert.True(t, c.Amount.Equal(decimal.RequireFromString("70")),
		"amount = %s, want 70", c.Amount)
	assert.Equal(t, claim.KindPerDiem, c.Kind)
	assert.Equal(t, claim.StatusDraft, c.Status)
	assert.Equal(t, "EUR", c.Currency)
	require.NotNil(t, c.PerDiemDetail)
	assert.True(t, c.PerDiemDetail.BreakfastDeduction.Equal(decimal.RequireFromString("14")))

	// The claim must snapshot the rate values, not reference them.
	assert.Equal(t, int64(1), c.RateSnapshot.RateID)
	assert.True(t, c.RateSnapshot.FullDayRate.Equal(decimal.RequireFromString("28")))

	stored, err := claimRepo.GetByID(context.Background(), c.ID)
	require.NoError(t, err)
	assert.True(t, stored.Amount.Equal(c.Amount))
}

func TestClaimService_CreateMileageClaim(t *testing.T) {
	claimRepo := newMockClaimRepo()
	svc := NewClaimService(testRates(), claimRepo, nopLogger{})

	c, err := svc.CreateMileageClaim(context.Background(), MileageClaimInput{
		CompanyID:   "acme",
		EmployeeID:  "emp-1",
		VehicleType: rate.VehicleTypeCar,
		TravelDate:  time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC),
		Journey: claim.MileageInput{
			Origin:      "Hamburg",
			Destination: "Bremen",
			DistanceKm:  decimal.RequireFromString("120"),
		},
	})
	require.NoError(t, err)

	assert.True(t, c.Amount.Equal(decimal.RequireFromString("36.00")),
		"amount = %s, want 36.00", c.Amount)
	require.NotNil(t, c.MileageDetail)
	assert.True(t, c.MileageDetail.CO2Grams.Equal(decimal.RequireFromString("17640")))
	assert.True(t, c.RateSnapshot.RatePerKilometer.Equal(decimal.RequireFromString("0.30")))
}

func TestClaimService_MileageFailsClosedWithoutRate(t *testing.T) {
	claimRepo := newMockClaimRepo()
	svc := NewClaimService(testRates(), claimRepo, nopLogger{})

	_, err := svc.CreateMileageClaim(context.Background(), MileageClaimInput{
		CompanyID:   "acme",
		EmployeeID:  "emp-1",
		VehicleType: "TRUCK",
		Journey:     claim.MileageInput{DistanceKm: decimal.RequireFromString("10")},
	})

	require.ErrorIs(t, err, rate.ErrRateNotFound)
	assert.Empty(t, claimRepo.claims, "no claim may be persisted on a failed lookup")
}

func TestClaimService_QuoteDoesNotPersist(t *testing.T) {
	claimRepo := newMockClaimRepo()
	svc := NewClaimService(testRates(), claimRepo, nopLogger{})

	result, err := svc.QuotePerDiem(context.Background(), PerDiemClaimInput{
		CompanyID:   "acme",
		CountryCode: "DE",
		TravelDate:  time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC),
		Period:      claim.PerDiemInput{FullDays: 1},
	})
	require.NoError(t, err)

	assert.True(t, result.Amount.Equal(decimal.RequireFromString("28")))
	assert.Empty(t, claimRepo.claims)
}

func TestClaimService_InvalidInputRejectedBeforePersist(t *testing.T) {
	claimRepo := newMockClaimRepo()
	svc := NewClaimService(testRates(), claimRepo, nopLogger{})

	_, err := svc.CreatePerDiemClaim(context.Background(), PerDiemClaimInput{
		CompanyID:   "acme",
		EmployeeID:  "emp-1",
		CountryCode: "DE",
		TravelDate:  time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC),
		Period:      claim.PerDiemInput{FullDays: -1},
	})

	require.ErrorIs(t, err, claim.ErrInvalidInput)
	assert.Empty(t, claimRepo.claims)
}
