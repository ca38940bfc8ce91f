package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/traveldesk/reisekosten/internal/application/port"
	"github.com/traveldesk/reisekosten/internal/domain/approval"
	"github.com/traveldesk/reisekosten/internal/domain/workflow"
	"github.com/traveldesk/reisekosten/internal/infrastructure/persistence/sqlite"
)

// ApprovalRepository implements port.ApprovalRepository. The approval
// chain is stored as a JSON column; the version column carries the
// optimistic concurrency check.
type ApprovalRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewApprovalRepository creates a new approval repository
func NewApprovalRepository(db *sqlite.DB, logger *zap.Logger) port.ApprovalRepository {
	return &ApprovalRepository{
		db:     db,
		logger: logger,
	}
}

const requestColumns = `
	id, company_id, employee_id, claim_ids, title, status, steps, priority,
	total_amount, currency, travel_date, submitted_at, decided_at, version,
	created_at, updated_at
`

// Create stores a new approval request.
func (r *ApprovalRepository) Create(ctx context.Context, req *approval.Request) error {
	steps, err := json.Marshal(req.Steps)
	if err != nil {
		return fmt.Errorf("failed to marshal steps: %w", err)
	}
	claimIDs, err := json.Marshal(req.ClaimIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal claim ids: %w", err)
	}

	query := `
		INSERT INTO approval_requests (` + requestColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var decidedAt interface{}
	if req.DecidedAt != nil {
		decidedAt = *req.DecidedAt
	}

	_, err = r.db.Executor(ctx).ExecContext(ctx, query,
		req.ID, req.CompanyID, req.EmployeeID, string(claimIDs), req.Title,
		req.Status.String(), string(steps), string(req.Priority),
		req.TotalAmount, req.Currency, req.TravelDate, req.SubmittedAt,
		decidedAt, req.Version, req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create request", zap.String("request_id", req.ID), zap.Error(err))
		return fmt.Errorf("failed to create request: %w", err)
	}
	return nil
}

// GetByID retrieves an approval request by ID.
func (r *ApprovalRepository) GetByID(ctx context.Context, id string) (*approval.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM approval_requests WHERE id = ?`

	req, err := scanRequest(r.db.Executor(ctx).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get request", zap.String("request_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	return req, nil
}

// List retrieves requests of a company, optionally filtered by status.
func (r *ApprovalRepository) List(ctx context.Context, companyID, status string, limit, offset int) ([]*approval.Request, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM approval_requests
		WHERE company_id = ? AND (? = '' OR status = ?)
		ORDER BY submitted_at DESC
		LIMIT ? OFFSET ?
	`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query,
		companyID, status, status, normalizeLimit(limit), offset)
	if err != nil {
		r.logger.Error("Failed to list requests", zap.Error(err))
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	defer rows.Close()

	var requests []*approval.Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

// UpdateWithVersion persists a transitioned request if and only if the
// stored version still matches the version the caller read. A lost race
// surfaces as ErrConcurrentModification; the transition was validated
// against state that no longer exists and must not be committed.
func (r *ApprovalRepository) UpdateWithVersion(ctx context.Context, req *approval.Request, expectedVersion int64) error {
	steps, err := json.Marshal(req.Steps)
	if err != nil {
		return fmt.Errorf("failed to marshal steps: %w", err)
	}

	query := `
		UPDATE approval_requests
		SET status = ?, steps = ?, decided_at = ?, version = ?, updated_at = ?
		WHERE id = ? AND version = ?
	`

	var decidedAt interface{}
	if req.DecidedAt != nil {
		decidedAt = *req.DecidedAt
	}

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		req.Status.String(), string(steps), decidedAt, req.Version,
		req.UpdatedAt, req.ID, expectedVersion,
	)
	if err != nil {
		r.logger.Error("Failed to update request", zap.String("request_id", req.ID), zap.Error(err))
		return fmt.Errorf("failed to update request: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		r.logger.Error("Version conflict on request update",
			zap.String("request_id", req.ID),
			zap.Int64("expected_version", expectedVersion))
		return fmt.Errorf("%w: request %s version %d",
			port.ErrConcurrentModification, req.ID, expectedVersion)
	}
	return nil
}

func scanRequest(row rowScanner) (*approval.Request, error) {
	var req approval.Request
	var status, steps, claimIDs, priority string
	var decidedAt sql.NullTime

	err := row.Scan(
		&req.ID, &req.CompanyID, &req.EmployeeID, &claimIDs, &req.Title,
		&status, &steps, &priority, &req.TotalAmount, &req.Currency,
		&req.TravelDate, &req.SubmittedAt, &decidedAt, &req.Version,
		&req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	req.Status = workflow.State(status)
	req.Priority = approval.Priority(priority)
	if decidedAt.Valid {
		req.DecidedAt = &decidedAt.Time
	}
	if err := json.Unmarshal([]byte(steps), &req.Steps); err != nil {
		return nil, fmt.Errorf("failed to unmarshal steps: %w", err)
	}
	if err := json.Unmarshal([]byte(claimIDs), &req.ClaimIDs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal claim ids: %w", err)
	}

	return &req, nil
}

// Verify interface compliance
var _ port.ApprovalRepository = (*ApprovalRepository)(nil)
