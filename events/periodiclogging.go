package events

import (
	kernel "github.com/kentwait/epinrm"
)

// PeriodicLoggingEvent is a zero-participant (global) event that fires on a
// fixed interval and reschedules itself by registering a fresh instance —
// grounded on EventPeriodicLogging, which uses a constant internal time
// difference (s_loggingInterval) rather than a drawn exponential, and
// creates a brand-new event object on every fire rather than re-arming
// itself.
type PeriodicLoggingEvent struct {
	interval float64
	disabled bool

	onTick func(pop *kernel.Population, t float64)
}

// NewPeriodicLoggingEvent builds a global event that fires every interval
// units of real time until Disable is called on the instance that is about
// to fire. Each fire registers a fresh instance that does not inherit the
// disabled flag, so Disable on an instance that has already fired does not
// stop the chain.
func NewPeriodicLoggingEvent(interval float64, onTick func(pop *kernel.Population, t float64)) *PeriodicLoggingEvent {
	return &PeriodicLoggingEvent{interval: interval, onTick: onTick}
}

// Disable stops this event from rescheduling itself on its next fire, the
// same "loggingInterval <= 0" escape hatch an intervention event uses in
// the source to turn off periodic logging mid-run.
func (e *PeriodicLoggingEvent) Disable() { e.disabled = true }

func (e *PeriodicLoggingEvent) NumParticipants() int            { return 0 }
func (e *PeriodicLoggingEvent) Participant(i int) *kernel.Agent { return nil }

func (e *PeriodicLoggingEvent) IsUseless(pop *kernel.Population) bool { return false }

func (e *PeriodicLoggingEvent) AffectsEveryone() bool                    { return false }
func (e *PeriodicLoggingEvent) AffectsGlobals() bool                     { return false }
func (e *PeriodicLoggingEvent) MarkOtherAffected(pop *kernel.Population) {}

// DrawInternalTarget returns the fixed interval directly: this event has no
// randomness, only a constant period.
func (e *PeriodicLoggingEvent) DrawInternalTarget(rng kernel.RandomSource) float64 {
	return e.interval
}

// CalculateInternalTimeInterval and SolveForRealTimeInterval implement a
// unit hazard, so a tau of `interval` translates directly into a `dt` of
// `interval`: the event fires at a perfectly regular cadence.
func (e *PeriodicLoggingEvent) CalculateInternalTimeInterval(pop *kernel.Population, t0, dt float64) float64 {
	return dt
}

func (e *PeriodicLoggingEvent) SolveForRealTimeInterval(pop *kernel.Population, deltaTau, t0 float64) float64 {
	return deltaTau
}

func (e *PeriodicLoggingEvent) Fire(pop *kernel.Population, t float64) error {
	if e.onTick != nil {
		e.onTick(pop, t)
	}
	if !e.disabled {
		next := NewPeriodicLoggingEvent(e.interval, e.onTick)
		pop.OnNewEvent(next)
	}
	return nil
}
