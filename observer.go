package symbolic

import "time"

// Outcome classifies the result of a reduction request.
type Outcome uint8

const (
	// OutcomeChanged means the tree was rewritten.
	OutcomeChanged Outcome = iota
	// OutcomeUnchanged means the tree was already in reduced form.
	OutcomeUnchanged
	OutcomeInterrupted
	OutcomeExhausted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeChanged:
		return "changed"
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeInterrupted:
		return "interrupted"
	case OutcomeExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Observer receives engine events. Implementations must be fast; they are
// called synchronously on the engine's goroutine.
type Observer interface {
	// ObserveReduction is called once per Reduce, Beautify, or Simplify.
	ObserveReduction(outcome Outcome, elapsed time.Duration)
	// ObserveApproximation is called once per Approximate.
	ObserveApproximation(undefined bool, elapsed time.Duration)
	// ObservePool reports pool occupancy after each top-level operation.
	ObservePool(live, capacity int)
}

type nopObserver struct{}

func (nopObserver) ObserveReduction(Outcome, time.Duration)  {}
func (nopObserver) ObserveApproximation(bool, time.Duration) {}
func (nopObserver) ObservePool(int, int)                     {}
