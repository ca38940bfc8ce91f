package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/traveldesk/reisekosten/internal/application/port"
	"github.com/traveldesk/reisekosten/internal/domain/rate"
	"github.com/traveldesk/reisekosten/internal/infrastructure/persistence/sqlite"
)

// RateRepository implements port.RateRepository over sqlite. Monetary
// columns are stored as TEXT and scanned into decimals to avoid binary
// float drift.
type RateRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewRateRepository creates a new rate repository
func NewRateRepository(db *sqlite.DB, logger *zap.Logger) port.RateRepository {
	return &RateRepository{
		db:     db,
		logger: logger,
	}
}

// ListPerDiemRates returns all per-diem rate records of a company.
// Filtering by date and specificity is the catalog's job, not SQL's.
func (r *RateRepository) ListPerDiemRates(ctx context.Context, companyID string) ([]*rate.PerDiemRate, error) {
	query := `
		SELECT id, country_code, city, full_day_rate, half_day_rate,
			currency, valid_from, valid_to, active, created_at, updated_at
		FROM per_diem_rates
		WHERE company_id = ?
		ORDER BY country_code, city
	`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, companyID)
	if err != nil {
		r.logger.Error("Failed to list per-diem rates", zap.Error(err))
		return nil, fmt.Errorf("failed to list per-diem rates: %w", err)
	}
	defer rows.Close()

	var rates []*rate.PerDiemRate
	for rows.Next() {
		var pd rate.PerDiemRate
		var validTo sql.NullTime

		err := rows.Scan(
			&pd.ID,
			&pd.CountryCode,
			&pd.City,
			&pd.FullDayRate,
			&pd.HalfDayRate,
			&pd.Currency,
			&pd.ValidFrom,
			&validTo,
			&pd.Active,
			&pd.CreatedAt,
			&pd.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan per-diem rate: %w", err)
		}
		if validTo.Valid {
			pd.ValidTo = &validTo.Time
		}
		rates = append(rates, &pd)
	}

	return rates, rows.Err()
}

// ListVehicleRates returns all vehicle rate records of a company.
func (r *RateRepository) ListVehicleRates(ctx context.Context, companyID string) ([]*rate.VehicleRate, error) {
	query := `
		SELECT id, vehicle_type, rate_per_km, currency, co2_grams_per_km,
			active, created_at, updated_at
		FROM vehicle_rates
		WHERE company_id = ?
		ORDER BY vehicle_type
	`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, companyID)
	if err != nil {
		r.logger.Error("Failed to list vehicle rates", zap.Error(err))
		return nil, fmt.Errorf("failed to list vehicle rates: %w", err)
	}
	defer rows.Close()

	var rates []*rate.VehicleRate
	for rows.Next() {
		var vr rate.VehicleRate
		err := rows.Scan(
			&vr.ID,
			&vr.VehicleType,
			&vr.RatePerKilometer,
			&vr.Currency,
			&vr.CO2GramsPerKilometer,
			&vr.Active,
			&vr.CreatedAt,
			&vr.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vehicle rate: %w", err)
		}
		rates = append(rates, &vr)
	}

	return rates, rows.Err()
}

// CreatePerDiemRate stores a new per-diem rate record.
func (r *RateRepository) CreatePerDiemRate(ctx context.Context, companyID string, pd *rate.PerDiemRate) error {
	query := `
		INSERT INTO per_diem_rates (
			company_id, country_code, city, full_day_rate, half_day_rate,
			currency, valid_from, valid_to, active, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var validTo interface{}
	if pd.ValidTo != nil {
		validTo = *pd.ValidTo
	}

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		companyID, pd.CountryCode, pd.City, pd.FullDayRate, pd.HalfDayRate,
		pd.Currency, pd.ValidFrom, validTo, pd.Active, pd.CreatedAt, pd.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create per-diem rate", zap.Error(err))
		return fmt.Errorf("failed to create per-diem rate: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	pd.ID = id
	return nil
}

// CreateVehicleRate stores a new vehicle rate record.
func (r *RateRepository) CreateVehicleRate(ctx context.Context, companyID string, vr *rate.VehicleRate) error {
	query := `
		INSERT INTO vehicle_rates (
			company_id, vehicle_type, rate_per_km, currency,
			co2_grams_per_km, active, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		companyID, vr.VehicleType, vr.RatePerKilometer, vr.Currency,
		vr.CO2GramsPerKilometer, vr.Active, vr.CreatedAt, vr.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create vehicle rate", zap.Error(err))
		return fmt.Errorf("failed to create vehicle rate: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	vr.ID = id
	return nil
}

// SetVehicleRateActive toggles a vehicle rate. Deactivation is the only
// permitted change once a rate has been referenced by a finalized claim.
func (r *RateRepository) SetVehicleRateActive(ctx context.Context, companyID string, id int64, active bool) error {
	query := `
		UPDATE vehicle_rates
		SET active = ?, updated_at = CURRENT_TIMESTAMP
		WHERE company_id = ? AND id = ?
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query, active, companyID, id)
	if err != nil {
		r.logger.Error("Failed to toggle vehicle rate", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to toggle vehicle rate: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: vehicle rate %d", rate.ErrRateNotFound, id)
	}
	return nil
}

// Verify interface compliance
var _ port.RateRepository = (*RateRepository)(nil)
