package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/traveldesk/reisekosten/internal/application/port"
	"github.com/traveldesk/reisekosten/internal/domain/claim"
	"github.com/traveldesk/reisekosten/internal/infrastructure/persistence/sqlite"
)

// claimDetail is the JSON layout of the claims.detail column; exactly one
// of the two fields is set depending on the claim kind.
type claimDetail struct {
	PerDiem *claim.PerDiemResult `json:"per_diem,omitempty"`
	Mileage *claim.MileageResult `json:"mileage,omitempty"`
}

// ClaimRepository implements port.ClaimRepository
type ClaimRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewClaimRepository creates a new claim repository
func NewClaimRepository(db *sqlite.DB, logger *zap.Logger) port.ClaimRepository {
	return &ClaimRepository{
		db:     db,
		logger: logger,
	}
}

const claimColumns = `
	id, company_id, employee_id, kind, category, description, travel_date,
	amount, currency, status, rate_snapshot, detail, created_at, updated_at
`

// Create stores a computed claim together with its rate snapshot and
// audit breakdown.
func (r *ClaimRepository) Create(ctx context.Context, c *claim.Claim) error {
	snapshot, err := json.Marshal(c.RateSnapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal rate snapshot: %w", err)
	}
	detail, err := json.Marshal(claimDetail{PerDiem: c.PerDiemDetail, Mileage: c.MileageDetail})
	if err != nil {
		return fmt.Errorf("failed to marshal claim detail: %w", err)
	}

	query := `
		INSERT INTO claims (` + claimColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Executor(ctx).ExecContext(ctx, query,
		c.ID, c.CompanyID, c.EmployeeID, string(c.Kind), c.Category,
		c.Description, c.TravelDate, c.Amount, c.Currency, c.Status,
		string(snapshot), string(detail), c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create claim", zap.String("claim_id", c.ID), zap.Error(err))
		return fmt.Errorf("failed to create claim: %w", err)
	}
	return nil
}

// GetByID retrieves a claim by ID.
func (r *ClaimRepository) GetByID(ctx context.Context, id string) (*claim.Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM claims WHERE id = ?`

	c, err := scanClaim(r.db.Executor(ctx).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get claim", zap.String("claim_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get claim: %w", err)
	}
	return c, nil
}

// GetByIDs retrieves the claims whose IDs are in the given set.
func (r *ClaimRepository) GetByIDs(ctx context.Context, ids []string) ([]*claim.Claim, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	query := `SELECT ` + claimColumns + ` FROM claims WHERE id IN (` + placeholders + `)`

	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	return r.queryClaims(ctx, query, args...)
}

// ListByEmployee retrieves a paginated list of an employee's claims.
func (r *ClaimRepository) ListByEmployee(ctx context.Context, companyID, employeeID string, limit, offset int) ([]*claim.Claim, error) {
	query := `
		SELECT ` + claimColumns + `
		FROM claims
		WHERE company_id = ? AND employee_id = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`
	return r.queryClaims(ctx, query, companyID, employeeID, normalizeLimit(limit), offset)
}

// ListByCompany retrieves a paginated list of a company's claims.
func (r *ClaimRepository) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*claim.Claim, error) {
	query := `
		SELECT ` + claimColumns + `
		FROM claims
		WHERE company_id = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`
	return r.queryClaims(ctx, query, companyID, normalizeLimit(limit), offset)
}

// UpdateStatus moves a claim through its submission lifecycle.
func (r *ClaimRepository) UpdateStatus(ctx context.Context, id, status string) error {
	query := `UPDATE claims SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

	_, err := r.db.Executor(ctx).ExecContext(ctx, query, status, id)
	if err != nil {
		r.logger.Error("Failed to update claim status",
			zap.String("claim_id", id), zap.String("status", status), zap.Error(err))
		return fmt.Errorf("failed to update claim status: %w", err)
	}
	return nil
}

func (r *ClaimRepository) queryClaims(ctx context.Context, query string, args ...interface{}) ([]*claim.Claim, error) {
	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query claims", zap.Error(err))
		return nil, fmt.Errorf("failed to query claims: %w", err)
	}
	defer rows.Close()

	var claims []*claim.Claim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan claim: %w", err)
		}
		claims = append(claims, c)
	}
	return claims, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanClaim(row rowScanner) (*claim.Claim, error) {
	var c claim.Claim
	var kind, snapshot, detail string

	err := row.Scan(
		&c.ID, &c.CompanyID, &c.EmployeeID, &kind, &c.Category,
		&c.Description, &c.TravelDate, &c.Amount, &c.Currency, &c.Status,
		&snapshot, &detail, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.Kind = claim.Kind(kind)
	if err := json.Unmarshal([]byte(snapshot), &c.RateSnapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rate snapshot: %w", err)
	}

	var d claimDetail
	if err := json.Unmarshal([]byte(detail), &d); err != nil {
		return nil, fmt.Errorf("failed to unmarshal claim detail: %w", err)
	}
	c.PerDiemDetail = d.PerDiem
	c.MileageDetail = d.Mileage

	return &c, nil
}

// normalizeLimit maps "no limit" (zero or negative) to sqlite's unbounded
// LIMIT value.
func normalizeLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}

// Verify interface compliance
var _ port.ClaimRepository = (*ClaimRepository)(nil)
