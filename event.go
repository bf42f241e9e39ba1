package contagiongo

// EventContract is the interface every concrete event (birth, transmission,
// mortality, periodic logging, ...) implements to participate in the
// dispatch loop. The kernel never inspects a hazard's internals; it only
// ever calls through this contract.
type EventContract interface {
	// NumParticipants returns 0, 1, or 2.
	NumParticipants() int
	// Participant returns the i'th participant agent, 0 <= i < NumParticipants().
	Participant(i int) *Agent

	// IsUseless reports whether this event can never meaningfully fire
	// again (e.g. a participant has died). The kernel calls this on the event
	// it has selected to fire next and, if true, discards it without firing.
	IsUseless(pop *Population) bool

	// AffectsEveryone reports whether firing this event requires every
	// alive agent's events to be retimed.
	AffectsEveryone() bool
	// AffectsGlobals reports whether firing this event requires every
	// global-dummy event to be retimed.
	AffectsGlobals() bool
	// MarkOtherAffected is called instead of a full population sweep when
	// AffectsEveryone is false; it must call pop.MarkAffected for every
	// agent (other than its own participants) whose hazards changed.
	MarkOtherAffected(pop *Population)

	// DrawInternalTarget draws this event's internal deadline tau. Most
	// events should return rng.DrawExp(1); this is exposed for events
	// whose internal clock needs a different distribution.
	DrawInternalTarget(rng RandomSource) float64

	// CalculateInternalTimeInterval integrates this event's hazard over
	// the real-time window [t0, t0+dt] and returns the integral.
	CalculateInternalTimeInterval(pop *Population, t0, dt float64) float64
	// SolveForRealTimeInterval inverts the hazard integral: given a target
	// integrated hazard deltaTau starting at real time t0, return the dt
	// at which that target is reached. Returns +Inf if the event can never
	// accumulate deltaTau of hazard (i.e. it will never fire).
	SolveForRealTimeInterval(pop *Population, deltaTau, t0 float64) float64

	// Fire applies the event's domain effect at real time t. It may add or
	// kill agents and schedule new events through pop.
	Fire(pop *Population, t float64) error
}

// PopulationEvent is the kernel's wrapper around a concrete EventContract,
// carrying the bookkeeping fields the dispatch loop needs: identity, the
// mNRM internal clock, and removal state.
type PopulationEvent struct {
	eventID int64
	impl    EventContract

	tauInternal  float64 // total internal target, drawn once
	tauRemaining float64 // remaining internal budget
	lastRef      float64 // real time tauRemaining was last measured from
	tFire        float64 // real time this event is currently slated to fire at

	initialized         bool
	scheduledForRemoval bool
}

// ID returns the event's process-unique, monotonically assigned identifier.
func (e *PopulationEvent) ID() int64 { return e.eventID }

// Impl returns the concrete event this wrapper carries.
func (e *PopulationEvent) Impl() EventContract { return e.impl }

// FireTime returns the real time this event is currently slated to fire at.
// Only meaningful once Initialized is true.
func (e *PopulationEvent) FireTime() float64 { return e.tFire }

// Initialized reports whether tauInternal has been drawn and an initial
// tFire computed.
func (e *PopulationEvent) Initialized() bool { return e.initialized }

// ScheduledForRemoval reports whether the dispatch loop has already queued
// this event for deferred deletion. The flag is monotone: once true, it
// never reverts to false.
func (e *PopulationEvent) ScheduledForRemoval() bool { return e.scheduledForRemoval }

// NumParticipants, Participant expose the wrapped contract's arity directly,
// saving callers an Impl().NumParticipants() round trip.
func (e *PopulationEvent) NumParticipants() int       { return e.impl.NumParticipants() }
func (e *PopulationEvent) Participant(i int) *Agent   { return e.impl.Participant(i) }
