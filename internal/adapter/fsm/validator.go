package fsm

import (
	"context"
	"errors"

	loopfsm "github.com/looplab/fsm"

	"github.com/neomorfeo/nettap/internal/domain"
)

// Compile-time check: Validator implements domain.TransitionValidator.
var _ domain.TransitionValidator = (*Validator)(nil)

// events turns domain.Transitions into looplab/fsm events. Each target
// status is an event named after it, reachable from every listed source.
var events = buildEvents()

func buildEvents() []loopfsm.EventDesc {
	grouped := make(map[domain.Status][]string)
	order := make([]domain.Status, 0)

	for _, t := range domain.Transitions {
		if _, exists := grouped[t.Dst]; !exists {
			order = append(order, t.Dst)
		}
		grouped[t.Dst] = append(grouped[t.Dst], string(t.Src))
	}

	out := make([]loopfsm.EventDesc, 0, len(order))
	for _, dst := range order {
		out = append(out, loopfsm.EventDesc{
			Name: string(dst),
			Src:  grouped[dst],
			Dst:  string(dst),
		})
	}
	return out
}

// Validator checks lead transitions with a short-lived looplab/fsm machine
// started at the lead's current status.
type Validator struct{}

// New creates an FSM-backed transition validator.
func New() *Validator {
	return &Validator{}
}

// Validate returns a *domain.TransitionError when requested is not reachable
// from current in one step.
func (v *Validator) Validate(ctx context.Context, current, requested domain.Status) error {
	machine := loopfsm.NewFSM(string(current), events, nil)

	err := machine.Event(ctx, string(requested))
	if err == nil {
		return nil
	}

	var invalidEvent loopfsm.InvalidEventError
	var unknownEvent loopfsm.UnknownEventError
	var noTransition loopfsm.NoTransitionError
	if errors.As(err, &invalidEvent) || errors.As(err, &unknownEvent) || errors.As(err, &noTransition) {
		return &domain.TransitionError{
			Current:   current,
			Requested: requested,
			Allowed:   domain.AllowedTargets(current),
		}
	}
	return err
}
