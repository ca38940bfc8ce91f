package approval

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/traveldesk/reisekosten/internal/domain/workflow"
)

// Step is one entry in the ordered approval chain.
type Step struct {
	Role         string     `json:"role"`
	ApproverName string     `json:"approver_name"`
	Status       StepStatus `json:"status"`
	ApprovedAt   *time.Time `json:"approved_at,omitempty"`
	Comment      string     `json:"comment,omitempty"`
}

// Request is a travel or expense report moving through the approval chain.
// Once decided it becomes an organization-owned audit record and accepts
// no further transitions.
type Request struct {
	ID          string          `json:"id"`
	CompanyID   string          `json:"company_id"`
	EmployeeID  string          `json:"employee_id"`
	ClaimIDs    []string        `json:"claim_ids"`
	Title       string          `json:"title"`
	Status      workflow.State  `json:"status"`
	Steps       []Step          `json:"steps"`
	Priority    Priority        `json:"priority"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Currency    string          `json:"currency"`
	TravelDate  time.Time       `json:"travel_date"`
	SubmittedAt time.Time       `json:"submitted_at"`
	DecidedAt   *time.Time      `json:"decided_at,omitempty"`

	// Version is bumped on every committed transition; the persistence
	// layer uses it for optimistic concurrency control.
	Version int64 `json:"version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChainStep names a role and approver for building a chain.
type ChainStep struct {
	Role         string
	ApproverName string
}

// NewRequest creates a pending request with step 0 awaiting a decision and
// every later step waiting on its predecessors.
func NewRequest(companyID, employeeID, title string, chain []ChainStep, priority Priority, totalAmount decimal.Decimal, currency string, travelDate time.Time, now time.Time) (*Request, error) {
	if len(chain) == 0 {
		return nil, ErrEmptyChain
	}
	if !priority.IsValid() {
		priority = PriorityNormal
	}

	steps := make([]Step, len(chain))
	for i, cs := range chain {
		status := StepWaiting
		if i == 0 {
			status = StepPending
		}
		steps[i] = Step{
			Role:         cs.Role,
			ApproverName: cs.ApproverName,
			Status:       status,
		}
	}

	return &Request{
		ID:          uuid.NewString(),
		CompanyID:   companyID,
		EmployeeID:  employeeID,
		Title:       title,
		Status:      workflow.StatePending,
		Steps:       steps,
		Priority:    priority,
		TotalAmount: totalAmount,
		Currency:    currency,
		TravelDate:  travelDate,
		SubmittedAt: now,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// CurrentStepIndex returns the index of the step currently awaiting a
// decision, or -1 if the request is decided.
func (r *Request) CurrentStepIndex() int {
	for i := range r.Steps {
		if r.Steps[i].Status == StepPending {
			return i
		}
	}
	return -1
}

// ApprovedSteps returns how many steps have been approved so far.
func (r *Request) ApprovedSteps() int {
	n := 0
	for i := range r.Steps {
		if r.Steps[i].Status == StepApproved {
			n++
		}
	}
	return n
}

// IsOverdue reports whether a still-pending request covers travel that has
// already happened. Reporting only; not a state transition.
func (r *Request) IsOverdue(asOf time.Time) bool {
	return r.Status == workflow.StatePending && r.TravelDate.Before(asOf)
}
