package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/traveldesk/reisekosten/internal/application/port"
	"github.com/traveldesk/reisekosten/internal/domain/approval"
	"github.com/traveldesk/reisekosten/internal/domain/claim"
)

// ChainPolicy decides which approver roles a request needs based on its
// total amount. Every request starts with the employee's manager; larger
// amounts pull in finance and HR.
type ChainPolicy struct {
	FinanceThreshold decimal.Decimal
	HRThreshold      decimal.Decimal
}

// BuildChain returns the ordered approval chain for a total amount.
func (p ChainPolicy) BuildChain(totalAmount decimal.Decimal) []approval.ChainStep {
	chain := []approval.ChainStep{{Role: approval.RoleManager}}
	if totalAmount.GreaterThanOrEqual(p.FinanceThreshold) {
		chain = append(chain, approval.ChainStep{Role: approval.RoleFinance})
	}
	if totalAmount.GreaterThanOrEqual(p.HRThreshold) {
		chain = append(chain, approval.ChainStep{Role: approval.RoleHR})
	}
	return chain
}

// SubmitInput bundles the claims of one trip or expense report for approval.
type SubmitInput struct {
	CompanyID  string
	EmployeeID string
	Title      string
	ClaimIDs   []string
	Priority   approval.Priority
	TravelDate time.Time
}

// ApprovalService drives requests through the approval chain. Transitions
// are validated against the persisted state inside a transaction and
// committed with an optimistic version check, so two approvers can never
// both act on the same step.
type ApprovalService interface {
	Submit(ctx context.Context, in SubmitInput) (*approval.Request, error)
	ApproveStep(ctx context.Context, requestID string, stepIndex int, approverName string) (*approval.Request, error)
	RejectStep(ctx context.Context, requestID string, stepIndex int, approverName, reason string) (*approval.Request, error)
	RejectRequest(ctx context.Context, requestID string, approverName, reason string) (*approval.Request, error)
	GetRequest(ctx context.Context, id string) (*approval.Request, error)
	ListRequests(ctx context.Context, companyID, status string, limit, offset int) ([]*approval.Request, error)
	ListOverdue(ctx context.Context, companyID string, asOf time.Time) ([]*approval.Request, error)
}

type approvalServiceImpl struct {
	approvalRepo port.ApprovalRepository
	claimRepo    port.ClaimRepository
	txManager    port.TransactionManager
	policy       ChainPolicy
	logger       Logger
	now          func() time.Time
}

// NewApprovalService creates a new ApprovalService
func NewApprovalService(
	approvalRepo port.ApprovalRepository,
	claimRepo port.ClaimRepository,
	txManager port.TransactionManager,
	policy ChainPolicy,
	logger Logger,
) ApprovalService {
	return &approvalServiceImpl{
		approvalRepo: approvalRepo,
		claimRepo:    claimRepo,
		txManager:    txManager,
		policy:       policy,
		logger:       logger,
		now:          time.Now,
	}
}

// Submit creates an approval request covering the given claims. The total
// amount is the sum of the already-computed claim amounts; the chain is
// derived from the total via the chain policy.
func (s *approvalServiceImpl) Submit(ctx context.Context, in SubmitInput) (*approval.Request, error) {
	if len(in.ClaimIDs) == 0 {
		return nil, fmt.Errorf("%w: no claims to submit", claim.ErrInvalidInput)
	}

	claims, err := s.claimRepo.GetByIDs(ctx, in.ClaimIDs)
	if err != nil {
		s.logger.Error("Failed to load claims for submission", "error", err)
		return nil, err
	}
	if len(claims) != len(in.ClaimIDs) {
		return nil, fmt.Errorf("%w: %d of %d claims not found",
			claim.ErrInvalidInput, len(in.ClaimIDs)-len(claims), len(in.ClaimIDs))
	}

	total := decimal.Zero
	currency := ""
	for _, c := range claims {
		if currency == "" {
			currency = c.Currency
		} else if c.Currency != currency {
			return nil, fmt.Errorf("%w: claims mix currencies %s and %s",
				claim.ErrInvalidInput, currency, c.Currency)
		}
		total = total.Add(c.Amount)
	}

	request, err := approval.NewRequest(in.CompanyID, in.EmployeeID, in.Title,
		s.policy.BuildChain(total), in.Priority, total, currency, in.TravelDate, s.now())
	if err != nil {
		return nil, err
	}
	request.ClaimIDs = in.ClaimIDs

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.approvalRepo.Create(txCtx, request); err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		for _, c := range claims {
			if err := s.claimRepo.UpdateStatus(txCtx, c.ID, claim.StatusSubmitted); err != nil {
				return fmt.Errorf("mark claim submitted: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to submit request", "error", err, "employee_id", in.EmployeeID)
		return nil, err
	}

	s.logger.Info("Request submitted", "request_id", request.ID,
		"steps", len(request.Steps), "total_amount", total.String())
	return request, nil
}

// ApproveStep records an approval decision on a step. The read, domain
// transition and versioned write happen inside one transaction; a stale
// version surfaces as ErrConcurrentModification for the caller to retry
// against fresh state.
func (s *approvalServiceImpl) ApproveStep(ctx context.Context, requestID string, stepIndex int, approverName string) (*approval.Request, error) {
	return s.transition(ctx, requestID, func(r *approval.Request) error {
		return approval.ApproveStep(r, stepIndex, approverName, s.now())
	})
}

// RejectStep records a rejection on a step, terminating the request.
func (s *approvalServiceImpl) RejectStep(ctx context.Context, requestID string, stepIndex int, approverName, reason string) (*approval.Request, error) {
	return s.transition(ctx, requestID, func(r *approval.Request) error {
		return approval.RejectStep(r, stepIndex, approverName, reason, s.now())
	})
}

// RejectRequest rejects the request at whatever step is currently awaiting
// a decision.
func (s *approvalServiceImpl) RejectRequest(ctx context.Context, requestID string, approverName, reason string) (*approval.Request, error) {
	return s.transition(ctx, requestID, func(r *approval.Request) error {
		return approval.RejectRequest(r, approverName, reason, s.now())
	})
}

// transition applies a single state transition with read-modify-write
// atomicity at the storage boundary.
func (s *approvalServiceImpl) transition(ctx context.Context, requestID string, apply func(*approval.Request) error) (*approval.Request, error) {
	var request *approval.Request

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		r, err := s.approvalRepo.GetByID(txCtx, requestID)
		if err != nil {
			return err
		}
		if r == nil {
			return fmt.Errorf("%w: request %s not found", claim.ErrInvalidInput, requestID)
		}

		expectedVersion := r.Version
		if err := apply(r); err != nil {
			return err
		}

		if err := s.approvalRepo.UpdateWithVersion(txCtx, r, expectedVersion); err != nil {
			return err
		}

		request = r
		return nil
	})
	if err != nil {
		s.logger.Error("Transition failed", "error", err, "request_id", requestID)
		return nil, err
	}

	s.logger.Info("Transition committed", "request_id", requestID,
		"status", request.Status.String(), "version", request.Version)
	return request, nil
}

// GetRequest retrieves a request by ID.
func (s *approvalServiceImpl) GetRequest(ctx context.Context, id string) (*approval.Request, error) {
	r, err := s.approvalRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get request", "error", err, "request_id", id)
		return nil, err
	}
	return r, nil
}

// ListRequests retrieves a paginated list of requests, optionally filtered
// by status.
func (s *approvalServiceImpl) ListRequests(ctx context.Context, companyID, status string, limit, offset int) ([]*approval.Request, error) {
	requests, err := s.approvalRepo.List(ctx, companyID, status, limit, offset)
	if err != nil {
		s.logger.Error("Failed to list requests", "error", err, "company_id", companyID)
		return nil, err
	}
	return requests, nil
}

// ListOverdue returns pending requests whose travel date has passed.
func (s *approvalServiceImpl) ListOverdue(ctx context.Context, companyID string, asOf time.Time) ([]*approval.Request, error) {
	pending, err := s.approvalRepo.List(ctx, companyID, "PENDING", 0, 0)
	if err != nil {
		s.logger.Error("Failed to list pending requests", "error", err, "company_id", companyID)
		return nil, err
	}

	var overdue []*approval.Request
	for _, r := range pending {
		if r.IsOverdue(asOf) {
			overdue = append(overdue, r)
		}
	}
	return overdue, nil
}
