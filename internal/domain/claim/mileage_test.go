package claim

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/traveldesk/reisekosten/internal/domain/rate"
)

func testVehicleRate(perKm, co2 string) *rate.VehicleRate {
	return &rate.VehicleRate{
		ID:                   7,
		VehicleType:          rate.VehicleTypeCar,
		RatePerKilometer:     decimal.RequireFromString(perKm),
		Currency:             "EUR",
		CO2GramsPerKilometer: decimal.RequireFromString(co2),
		Active:               true,
	}
}

func TestCalculateMileage(t *testing.T) {
	tests := []struct {
		name       string
		perKm      string
		co2        string
		distance   string
		wantAmount string
		wantCO2    string
	}{
		{
			name:  "120 km at 0.30 per km",
			perKm: "0.30", co2: "147",
			distance:   "120",
			wantAmount: "36.00",
			wantCO2:    "17640",
		},
		{
			name:  "zero distance",
			perKm: "0.30", co2: "147",
			distance:   "0",
			wantAmount: "0",
			wantCO2:    "0",
		},
		{
			name:  "fractional distance rounds to minor unit",
			perKm: "0.30", co2: "147",
			distance:   "33.333",
			wantAmount: "10.00",
			wantCO2:    "4899.951",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := CalculateMileage(testVehicleRate(tt.perKm, tt.co2), MileageInput{
				Origin:      "Hamburg",
				Destination: "Bremen",
				DistanceKm:  decimal.RequireFromString(tt.distance),
			})
			if err != nil {
				t.Fatalf("CalculateMileage() unexpected error: %v", err)
			}

			if !result.Amount.Equal(decimal.RequireFromString(tt.wantAmount)) {
				t.Errorf("CalculateMileage() amount = %s, want %s", result.Amount, tt.wantAmount)
			}
			if !result.CO2Grams.Equal(decimal.RequireFromString(tt.wantCO2)) {
				t.Errorf("CalculateMileage() co2 = %s, want %s", result.CO2Grams, tt.wantCO2)
			}
		})
	}
}

func TestCalculateMileage_Linearity(t *testing.T) {
	r := testVehicleRate("0.28", "147")

	single, err := CalculateMileage(r, MileageInput{DistanceKm: decimal.RequireFromString("57")})
	if err != nil {
		t.Fatalf("CalculateMileage() unexpected error: %v", err)
	}
	double, err := CalculateMileage(r, MileageInput{DistanceKm: decimal.RequireFromString("114")})
	if err != nil {
		t.Fatalf("CalculateMileage() unexpected error: %v", err)
	}

	if !double.Amount.Equal(single.Amount.Mul(decimal.NewFromInt(2))) {
		t.Errorf("doubling distance should double the amount: %s vs %s", single.Amount, double.Amount)
	}
}

func TestCalculateMileage_NegativeDistance(t *testing.T) {
	_, err := CalculateMileage(testVehicleRate("0.30", "147"), MileageInput{
		DistanceKm: decimal.RequireFromString("-5"),
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("CalculateMileage() error = %v, want ErrInvalidInput", err)
	}
}

func TestMileageSnapshot(t *testing.T) {
	r := testVehicleRate("0.30", "147")
	snap := MileageSnapshot(r)

	if snap.RateID != r.ID {
		t.Errorf("snapshot rate ID = %d, want %d", snap.RateID, r.ID)
	}
	if !snap.RatePerKilometer.Equal(r.RatePerKilometer) {
		t.Error("snapshot must carry the per-kilometer rate used")
	}
	if !snap.CO2GramsPerKilometer.Equal(r.CO2GramsPerKilometer) {
		t.Error("snapshot must carry the CO2 factor used")
	}
}
