package approval

// StepStatus is the state of a single chain step.
type StepStatus string

const (
	// StepWaiting means earlier steps are not yet approved.
	StepWaiting StepStatus = "WAITING"
	// StepPending means the step is the one currently awaiting a decision.
	StepPending StepStatus = "PENDING"
	StepApproved StepStatus = "APPROVED"
	StepRejected StepStatus = "REJECTED"
)

// String returns the string representation of the step status.
func (s StepStatus) String() string {
	return string(s)
}

// Priority of an approval request, used for ordering in review queues.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityNormal Priority = "NORMAL"
	PriorityHigh   Priority = "HIGH"
)

// IsValid returns true if the priority is a known value.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh:
		return true
	}
	return false
}

// Approver role constants
const (
	RoleManager = "MANAGER"
	RoleFinance = "FINANCE"
	RoleHR      = "HR"
)
