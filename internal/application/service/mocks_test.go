package service

import (
	"context"
	"fmt"

	"github.com/traveldesk/reisekosten/internal/application/port"
	"github.com/traveldesk/reisekosten/internal/domain/approval"
	"github.com/traveldesk/reisekosten/internal/domain/claim"
	"github.com/traveldesk/reisekosten/internal/domain/rate"
)

// Mock repositories

type mockRateRepo struct {
	perDiemRates []*rate.PerDiemRate
	vehicleRates []*rate.VehicleRate
	err          error
}

func (m *mockRateRepo) ListPerDiemRates(ctx context.Context, companyID string) ([]*rate.PerDiemRate, error) {
	return m.perDiemRates, m.err
}

func (m *mockRateRepo) ListVehicleRates(ctx context.Context, companyID string) ([]*rate.VehicleRate, error) {
	return m.vehicleRates, m.err
}

func (m *mockRateRepo) CreatePerDiemRate(ctx context.Context, companyID string, r *rate.PerDiemRate) error {
	m.perDiemRates = append(m.perDiemRates, r)
	return m.err
}

func (m *mockRateRepo) CreateVehicleRate(ctx context.Context, companyID string, r *rate.VehicleRate) error {
	m.vehicleRates = append(m.vehicleRates, r)
	return m.err
}

func (m *mockRateRepo) SetVehicleRateActive(ctx context.Context, companyID string, id int64, active bool) error {
	return m.err
}

type mockClaimRepo struct {
	claims           map[string]*claim.Claim
	createFunc       func(ctx context.Context, c *claim.Claim) error
	updateStatusFunc func(ctx context.Context, id, status string) error
}

func newMockClaimRepo() *mockClaimRepo {
	return &mockClaimRepo{claims: make(map[string]*claim.Claim)}
}

func (m *mockClaimRepo) Create(ctx context.Context, c *claim.Claim) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, c)
	}
	m.claims[c.ID] = c
	return nil
}

func (m *mockClaimRepo) GetByID(ctx context.Context, id string) (*claim.Claim, error) {
	c, ok := m.claims[id]
	if !ok {
		return nil, fmt.Errorf("claim %s not found", id)
	}
	return c, nil
}

func (m *mockClaimRepo) GetByIDs(ctx context.Context, ids []string) ([]*claim.Claim, error) {
	var out []*claim.Claim
	for _, id := range ids {
		if c, ok := m.claims[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockClaimRepo) ListByEmployee(ctx context.Context, companyID, employeeID string, limit, offset int) ([]*claim.Claim, error) {
	var out []*claim.Claim
	for _, c := range m.claims {
		if c.CompanyID == companyID && c.EmployeeID == employeeID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockClaimRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*claim.Claim, error) {
	var out []*claim.Claim
	for _, c := range m.claims {
		if c.CompanyID == companyID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockClaimRepo) UpdateStatus(ctx context.Context, id, status string) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, status)
	}
	if c, ok := m.claims[id]; ok {
		c.Status = status
	}
	return nil
}

type mockApprovalRepo struct {
	requests              map[string]*approval.Request
	updateWithVersionFunc func(ctx context.Context, r *approval.Request, expectedVersion int64) error
}

func newMockApprovalRepo() *mockApprovalRepo {
	return &mockApprovalRepo{requests: make(map[string]*approval.Request)}
}

func (m *mockApprovalRepo) Create(ctx context.Context, r *approval.Request) error {
	m.requests[r.ID] = r
	return nil
}

func (m *mockApprovalRepo) GetByID(ctx context.Context, id string) (*approval.Request, error) {
	r, ok := m.requests[id]
	if !ok {
		return nil, fmt.Errorf("request %s not found", id)
	}
	copied := *r
	copied.Steps = append([]approval.Step(nil), r.Steps...)
	return &copied, nil
}

func (m *mockApprovalRepo) List(ctx context.Context, companyID, status string, limit, offset int) ([]*approval.Request, error) {
	var out []*approval.Request
	for _, r := range m.requests {
		if r.CompanyID != companyID {
			continue
		}
		if status != "" && r.Status.String() != status {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *mockApprovalRepo) UpdateWithVersion(ctx context.Context, r *approval.Request, expectedVersion int64) error {
	if m.updateWithVersionFunc != nil {
		return m.updateWithVersionFunc(ctx, r, expectedVersion)
	}
	stored, ok := m.requests[r.ID]
	if !ok {
		return fmt.Errorf("request %s not found", r.ID)
	}
	if stored.Version != expectedVersion {
		return port.ErrConcurrentModification
	}
	m.requests[r.ID] = r
	return nil
}

type mockTxManager struct{}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type nopLogger struct{}

func (nopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Error(msg string, keysAndValues ...interface{}) {}
