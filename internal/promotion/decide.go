package promotion

import "fmt"

// Outcome is the result of a promotion decision.
type Outcome int

const (
	// TriggerLegacy hands the event to the legacy reporting pipeline.
	TriggerLegacy Outcome = iota
	// Promote raises the event as a PromotedException.
	Promote
)

func (o Outcome) String() string {
	switch o {
	case TriggerLegacy:
		return "legacy"
	case Promote:
		return "promote"
	default:
		return fmt.Sprintf("invalid(%d)", int(o))
	}
}

// Reason records which rule produced a decision.
type Reason int

const (
	// ReasonUncatchable means the category can never be promoted.
	ReasonUncatchable Reason = iota + 1
	// ReasonOutOfContext means the event was raised outside runtime execution.
	ReasonOutOfContext
	// ReasonMasked means the category is in the scope's mask.
	ReasonMasked
	// ReasonNotMasked means the category is not in the scope's mask.
	ReasonNotMasked
)

func (r Reason) String() string {
	switch r {
	case ReasonUncatchable:
		return "uncatchable"
	case ReasonOutOfContext:
		return "out_of_context"
	case ReasonMasked:
		return "masked"
	case ReasonNotMasked:
		return "not_masked"
	default:
		return fmt.Sprintf("invalid(%d)", int(r))
	}
}

// Decision is the value returned by Decide. Exception is non-nil exactly when
// Outcome is Promote.
type Decision struct {
	Outcome   Outcome
	Reason    Reason
	Exception *PromotedException
}

// Err returns the exception as an error, or nil when the event stays on the
// legacy path.
func (d Decision) Err() error {
	if d.Exception == nil {
		return nil
	}
	return d.Exception
}

// Decide chooses between the legacy path and promotion. Rules are evaluated
// in order and the first match wins:
//
//  1. uncatchable categories always trigger the legacy path;
//  2. events raised outside runtime context trigger the legacy path;
//  3. categories in the mask are promoted;
//  4. everything else triggers the legacy path.
//
// Reporting filters and suppression are deliberately absent from the inputs.
func Decide(event Event, mask Mask) Decision {
	if !event.Category.Catchable() {
		return Decision{Outcome: TriggerLegacy, Reason: ReasonUncatchable}
	}
	if !event.InRuntimeContext {
		return Decision{Outcome: TriggerLegacy, Reason: ReasonOutOfContext}
	}
	if mask.Contains(event.Category) {
		return Decision{
			Outcome:   Promote,
			Reason:    ReasonMasked,
			Exception: newPromotedException(event),
		}
	}
	return Decision{Outcome: TriggerLegacy, Reason: ReasonNotMasked}
}
