package approval

import (
	"fmt"
	"time"

	"github.com/traveldesk/reisekosten/internal/domain/workflow"
)

// lifecycle builds the request-level state machine positioned at the
// request's current status. Terminal states have no outgoing transitions,
// so firing anything on a decided request fails with ErrInvalidTransition.
func lifecycle(r *Request) *workflow.Machine {
	return workflow.NewBuilder().
		PermitIf(workflow.StatePending, workflow.TriggerApprove, workflow.StateApproved, func() bool {
			return r.ApprovedSteps() == len(r.Steps)
		}).
		Permit(workflow.StatePending, workflow.TriggerReject, workflow.StateRejected).
		Build(r.Status)
}

// ApproveStep records an approval decision on the given step.
//
// The step must be the lowest-indexed step that is not yet approved, with
// every earlier step approved; anything else is an out-of-order approval
// and fails with ErrInvalidTransition. Approving the last step moves the
// request to APPROVED; otherwise the next step moves from WAITING to
// PENDING.
//
// The transition is a pure function of (current state, action); the caller
// is responsible for serializing concurrent transitions on the same request
// before committing the result.
func ApproveStep(r *Request, stepIndex int, approverName string, at time.Time) error {
	machine := lifecycle(r)
	if !machine.CanFire(workflow.TriggerApprove) {
		return fmt.Errorf("%w: request %s is already %s",
			workflow.ErrInvalidTransition, r.ID, r.Status)
	}

	if stepIndex < 0 || stepIndex >= len(r.Steps) {
		return fmt.Errorf("%w: step %d of %d", ErrStepOutOfRange, stepIndex, len(r.Steps))
	}
	if current := r.CurrentStepIndex(); stepIndex != current {
		return fmt.Errorf("%w: step %d is not the next eligible step (current is %d)",
			workflow.ErrInvalidTransition, stepIndex, current)
	}

	step := &r.Steps[stepIndex]
	step.Status = StepApproved
	step.ApprovedAt = &at
	if approverName != "" {
		step.ApproverName = approverName
	}

	if stepIndex == len(r.Steps)-1 {
		if err := machine.Fire(workflow.TriggerApprove); err != nil {
			return err
		}
		r.Status = machine.State()
		r.DecidedAt = &at
	} else {
		r.Steps[stepIndex+1].Status = StepPending
	}

	r.Version++
	r.UpdatedAt = at
	return nil
}

// RejectStep records a rejection on the given step. Rejection is terminal:
// the request moves to REJECTED immediately and every other step keeps its
// last recorded state. Only the step currently awaiting a decision can be
// rejected; steps still waiting on their predecessors cannot be acted on.
func RejectStep(r *Request, stepIndex int, approverName, reason string, at time.Time) error {
	machine := lifecycle(r)
	if !machine.CanFire(workflow.TriggerReject) {
		return fmt.Errorf("%w: request %s is already %s",
			workflow.ErrInvalidTransition, r.ID, r.Status)
	}

	if stepIndex < 0 || stepIndex >= len(r.Steps) {
		return fmt.Errorf("%w: step %d of %d", ErrStepOutOfRange, stepIndex, len(r.Steps))
	}
	if current := r.CurrentStepIndex(); stepIndex != current {
		return fmt.Errorf("%w: step %d is not the next eligible step (current is %d)",
			workflow.ErrInvalidTransition, stepIndex, current)
	}

	if err := machine.Fire(workflow.TriggerReject); err != nil {
		return err
	}

	step := &r.Steps[stepIndex]
	step.Status = StepRejected
	step.Comment = reason
	if approverName != "" {
		step.ApproverName = approverName
	}

	r.Status = machine.State()
	r.DecidedAt = &at
	r.Version++
	r.UpdatedAt = at
	return nil
}

// RejectRequest rejects the request at whatever step is currently awaiting
// a decision.
func RejectRequest(r *Request, approverName, reason string, at time.Time) error {
	current := r.CurrentStepIndex()
	if current < 0 {
		return fmt.Errorf("%w: request %s is already %s",
			workflow.ErrInvalidTransition, r.ID, r.Status)
	}
	return RejectStep(r, current, approverName, reason, at)
}
