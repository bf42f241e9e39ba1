package contagiongo

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error message constants for the event-driven kernel, following the same
// sentinel-format-string convention as errors.go.
const (
	// NegativeTimeIntervalError is used when a hazard solver returns a
	// negative dt, which can only mean a programming mistake in the
	// concrete event's hazard math.
	NegativeTimeIntervalError = "event %d produced a negative time interval %f"

	// AgentIndexMismatchError fires when an agent's cached registry index
	// does not match its actual position.
	AgentIndexMismatchError = "agent %d has list index %d, expected %d"

	// DeadAgentReuseError fires when MarkDied is called on an agent that is
	// already dead.
	DeadAgentReuseError = "agent %d is already marked dead"

	// DuplicateEventRegistrationError fires when OnNewEvent is called twice
	// for the same event.
	DuplicateEventRegistrationError = "event %d is already registered"

	// DeadParticipantFireError fires when the dispatch loop is asked to
	// fire an event one of whose participants has already died.
	DeadParticipantFireError = "event %d cannot fire: participant %d is dead"
)

// ProgrammerError marks an invariant violation that indicates a bug in the
// kernel or in a concrete event implementation rather than a condition the
// simulation can recover from. Code that detects one should panic with it;
// the dispatch loop never tries to continue past one.
type ProgrammerError struct {
	cause error
}

// NewProgrammerError wraps msg (and optional Sprintf args) as a ProgrammerError.
func NewProgrammerError(format string, args ...interface{}) *ProgrammerError {
	return &ProgrammerError{cause: errors.Wrap(fmt.Errorf(format, args...), "programmer error")}
}

func (e *ProgrammerError) Error() string {
	return e.cause.Error()
}

func (e *ProgrammerError) Unwrap() error {
	return e.cause
}

// NumericalFailure marks a hazard computation that could not produce a
// usable result. A +Inf SolveForRealTimeInterval result is NOT a
// NumericalFailure (it means "never fires" and is handled silently); this
// type is reserved for results the kernel cannot interpret at all, such as
// NaN. A negative interval is not a NumericalFailure either: the kernel
// panics with a ProgrammerError for it. The dispatch loop itself never
// constructs a NumericalFailure.
type NumericalFailure struct {
	EventID int64
	cause   error
}

// NewNumericalFailure builds a NumericalFailure for the given event.
func NewNumericalFailure(eventID int64, format string, args ...interface{}) *NumericalFailure {
	return &NumericalFailure{
		EventID: eventID,
		cause:   errors.Wrapf(fmt.Errorf(format, args...), "event %d", eventID),
	}
}

func (e *NumericalFailure) Error() string {
	return e.cause.Error()
}

func (e *NumericalFailure) Unwrap() error {
	return e.cause
}

// TerminationReason explains why Algorithm.Run stopped. It is returned
// alongside a nil error on any non-failure stop.
type TerminationReason int

const (
	// StillRunning is the zero value. Run returns it only together with a
	// non-nil error, when the run failed before any stop reason applied.
	StillRunning TerminationReason = iota
	// NoEventsRemain means the dispatch loop found no schedulable event.
	NoEventsRemain
	// UntilFnSatisfied means the caller-supplied stop predicate returned true.
	UntilFnSatisfied
	// ContextCancelled means ctx.Err() was non-nil at an iteration boundary.
	ContextCancelled
)

func (r TerminationReason) String() string {
	switch r {
	case NoEventsRemain:
		return "no events remain"
	case UntilFnSatisfied:
		return "stop condition satisfied"
	case ContextCancelled:
		return "context cancelled"
	default:
		return "still running"
	}
}
