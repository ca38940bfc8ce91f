package port

import (
	"context"
	"errors"

	"github.com/traveldesk/reisekosten/internal/domain/approval"
	"github.com/traveldesk/reisekosten/internal/domain/claim"
	"github.com/traveldesk/reisekosten/internal/domain/rate"
)

// ErrConcurrentModification is returned when the persisted state changed
// between read and write of an approval transition. The caller should
// re-read and retry against the fresh state, never re-apply blindly.
var ErrConcurrentModification = errors.New("concurrent modification detected")

// RateRepository provides access to the organization's rate reference data.
type RateRepository interface {
	ListPerDiemRates(ctx context.Context, companyID string) ([]*rate.PerDiemRate, error)
	ListVehicleRates(ctx context.Context, companyID string) ([]*rate.VehicleRate, error)
	CreatePerDiemRate(ctx context.Context, companyID string, r *rate.PerDiemRate) error
	CreateVehicleRate(ctx context.Context, companyID string, r *rate.VehicleRate) error
	SetVehicleRateActive(ctx context.Context, companyID string, id int64, active bool) error
}

// ClaimRepository stores computed reimbursement claims.
type ClaimRepository interface {
	Create(ctx context.Context, c *claim.Claim) error
	GetByID(ctx context.Context, id string) (*claim.Claim, error)
	GetByIDs(ctx context.Context, ids []string) ([]*claim.Claim, error)
	ListByEmployee(ctx context.Context, companyID, employeeID string, limit, offset int) ([]*claim.Claim, error)
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*claim.Claim, error)
	UpdateStatus(ctx context.Context, id, status string) error
}

// ApprovalRepository stores approval requests and enforces optimistic
// concurrency on updates.
type ApprovalRepository interface {
	Create(ctx context.Context, r *approval.Request) error
	GetByID(ctx context.Context, id string) (*approval.Request, error)
	List(ctx context.Context, companyID, status string, limit, offset int) ([]*approval.Request, error)
	// UpdateWithVersion persists the request only if the stored version
	// still equals expectedVersion; otherwise it returns
	// ErrConcurrentModification.
	UpdateWithVersion(ctx context.Context, r *approval.Request, expectedVersion int64) error
}

// TransactionManager provides transaction boundaries for operations
// spanning multiple repository calls.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
