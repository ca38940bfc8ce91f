package workflow

import (
	"fmt"
)

// GuardFunc evaluates whether a transition should be allowed.
type GuardFunc func() bool

// Machine tracks a current state and validates transitions against a
// configured transition table. It is a pure in-memory structure; the caller
// is responsible for serializing concurrent transitions on the same record
// and for persisting the resulting state.
type Machine struct {
	current     State
	transitions map[State]map[Trigger][]transition
}

type transition struct {
	to    State
	guard GuardFunc
}

// Builder configures the transition table for a Machine.
type Builder struct {
	transitions map[State]map[Trigger][]transition
}

// NewBuilder creates an empty machine builder.
func NewBuilder() *Builder {
	return &Builder{transitions: make(map[State]map[Trigger][]transition)}
}

// Permit allows a trigger to transition from one state to another.
func (b *Builder) Permit(from State, trigger Trigger, to State) *Builder {
	return b.PermitIf(from, trigger, to, nil)
}

// PermitIf allows a trigger to transition when the guard passes.
func (b *Builder) PermitIf(from State, trigger Trigger, to State, guard GuardFunc) *Builder {
	if !from.IsValid() {
		panic(fmt.Sprintf("invalid source state: %s", from))
	}
	if !to.IsValid() {
		panic(fmt.Sprintf("invalid target state: %s", to))
	}

	if b.transitions[from] == nil {
		b.transitions[from] = make(map[Trigger][]transition)
	}
	b.transitions[from][trigger] = append(b.transitions[from][trigger], transition{to: to, guard: guard})
	return b
}

// Build creates a machine at the given initial state. The transition table
// is copied so later builder mutations cannot affect built machines.
func (b *Builder) Build(initial State) *Machine {
	if !initial.IsValid() {
		panic(fmt.Sprintf("invalid initial state: %s", initial))
	}

	copied := make(map[State]map[Trigger][]transition, len(b.transitions))
	for from, byTrigger := range b.transitions {
		copied[from] = make(map[Trigger][]transition, len(byTrigger))
		for trigger, ts := range byTrigger {
			copied[from][trigger] = append([]transition(nil), ts...)
		}
	}

	return &Machine{current: initial, transitions: copied}
}

// State returns the current state.
func (m *Machine) State() State {
	return m.current
}

// CanFire returns true if at least one transition is configured for the
// trigger in the current state. Guards are not evaluated here.
func (m *Machine) CanFire(trigger Trigger) bool {
	return len(m.transitions[m.current][trigger]) > 0
}

// Fire executes the trigger, moving to the first permitted target state.
// Firing from a state with no configured transition (terminal states
// included) fails with ErrInvalidTransition.
func (m *Machine) Fire(trigger Trigger) error {
	ts := m.transitions[m.current][trigger]
	if len(ts) == 0 {
		return fmt.Errorf("%w: cannot fire %s from state %s", ErrInvalidTransition, trigger, m.current)
	}

	for _, t := range ts {
		if t.guard == nil || t.guard() {
			m.current = t.to
			return nil
		}
	}

	return fmt.Errorf("%w: trigger %s from state %s", ErrGuardFailed, trigger, m.current)
}

// PermittedTriggers returns the triggers that have transitions configured
// in the current state.
func (m *Machine) PermittedTriggers() []Trigger {
	byTrigger := m.transitions[m.current]
	triggers := make([]Trigger, 0, len(byTrigger))
	for trigger := range byTrigger {
		triggers = append(triggers, trigger)
	}
	return triggers
}
