package rate

import (
	"fmt"
	"strings"
	"time"
)

// Catalog performs rate lookups over an in-memory set of rate records.
// It is a pure read structure; the records are loaded by the caller
// (typically from the rates repository) and never mutated here.
type Catalog struct {
	perDiemRates []*PerDiemRate
	vehicleRates []*VehicleRate
}

// NewCatalog creates a catalog over the given rate records.
func NewCatalog(perDiemRates []*PerDiemRate, vehicleRates []*VehicleRate) *Catalog {
	return &Catalog{
		perDiemRates: perDiemRates,
		vehicleRates: vehicleRates,
	}
}

// FindPerDiemRate returns the per-diem rate for a destination on a date.
// Only active records whose validity window covers onDate are considered.
// A city-specific record wins over a country-wide one; if more than one
// record remains at the same specificity the catalog data is broken and
// ErrAmbiguousRate is returned.
func (c *Catalog) FindPerDiemRate(countryCode, city string, onDate time.Time) (*PerDiemRate, error) {
	var cityMatches, countryMatches []*PerDiemRate

	for _, r := range c.perDiemRates {
		if !r.Active || !r.AppliesOn(onDate) {
			continue
		}
		if !strings.EqualFold(r.CountryCode, countryCode) {
			continue
		}
		switch {
		case r.City == "":
			countryMatches = append(countryMatches, r)
		case city != "" && strings.EqualFold(r.City, city):
			cityMatches = append(cityMatches, r)
		}
	}

	matches := cityMatches
	if len(matches) == 0 {
		matches = countryMatches
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: no per-diem rate for %s/%s on %s",
			ErrRateNotFound, countryCode, city, onDate.Format("2006-01-02"))
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%w: %d per-diem rates match %s/%s on %s",
			ErrAmbiguousRate, len(matches), countryCode, city, onDate.Format("2006-01-02"))
	}
}

// FindVehicleRate returns the active mileage rate for a vehicle type.
// There is deliberately no fallback rate: a claim computed against a wrong
// default would become a real payment.
func (c *Catalog) FindVehicleRate(vehicleType string) (*VehicleRate, error) {
	var matches []*VehicleRate

	for _, r := range c.vehicleRates {
		if r.Active && strings.EqualFold(r.VehicleType, vehicleType) {
			matches = append(matches, r)
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: no active vehicle rate for type %s", ErrRateNotFound, vehicleType)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%w: %d active vehicle rates for type %s", ErrAmbiguousRate, len(matches), vehicleType)
	}
}
