package contagiongo

import "math"

// AgentKind distinguishes the registry partitions an agent can occupy.
type AgentKind int

const (
	// GlobalDummy agents carry no biology; they are the attachment point
	// for zero-participant events (periodic logging, global interventions).
	GlobalDummy AgentKind = iota
	Male
	Female
)

func (k AgentKind) String() string {
	switch k {
	case Male:
		return "male"
	case Female:
		return "female"
	default:
		return "dummy"
	}
}

// Agent is a single member of the population, or a global dummy slot.
// Agent is always referenced by pointer; its ID is stable for its lifetime
// and also keys lock sharding. Compare agents by pointer or by ID, not by
// value.
type Agent struct {
	id   int64
	kind AgentKind

	// listIndex is this agent's current position in Population.members, or
	// -1 once the agent has died and left the registry.
	listIndex int

	dead        bool
	timeOfDeath float64

	events AgentEventSet
}

// ID returns the agent's process-unique, monotonically assigned identifier.
func (a *Agent) ID() int64 { return a.id }

// Kind reports which registry partition the agent belongs to.
func (a *Agent) Kind() AgentKind { return a.kind }

// ListIndex returns the agent's current registry slot, or -1 if deceased.
func (a *Agent) ListIndex() int { return a.listIndex }

// IsDead reports whether the agent has been removed from the registry.
func (a *Agent) IsDead() bool { return a.dead }

// TimeOfDeath returns the simulated time at which the agent died. Only
// meaningful when IsDead is true.
func (a *Agent) TimeOfDeath() float64 { return a.timeOfDeath }

// AgentEventSet indexes the events attached to a single agent. Events move
// from unsorted to timed exactly once, the first time ProcessUnsorted
// observes them; after that they are only ever re-timed in place.
type AgentEventSet struct {
	unsorted []*PopulationEvent
	timed    []*PopulationEvent
}

// stage appends a freshly attached event to the unsorted staging list. Called
// by Population.OnNewEvent for every participant of a new event.
func (s *AgentEventSet) stage(e *PopulationEvent) {
	s.unsorted = append(s.unsorted, e)
}

// ProcessUnsorted moves every staged event into the timed list, computing
// its internal target and initial firing time on first sight. Safe to call
// repeatedly; events already initialized are left untouched.
func (s *AgentEventSet) ProcessUnsorted(pop *Population, now float64) {
	if len(s.unsorted) == 0 {
		return
	}
	for _, e := range s.unsorted {
		pop.LockEvent(e)
		if !e.initialized {
			pop.initializeEvent(e, now)
		}
		pop.UnlockEvent(e)
		s.timed = append(s.timed, e)
	}
	s.unsorted = s.unsorted[:0]
}

// Earliest returns the timed event with the smallest firing time, breaking
// ties by event ID for determinism. Events whose firing time is +Inf are
// never returned. Returns (nil, false) if no timed event has a finite
// firing time.
func (s *AgentEventSet) Earliest() (*PopulationEvent, bool) {
	var best *PopulationEvent
	for _, e := range s.timed {
		if math.IsInf(e.tFire, 1) {
			continue
		}
		if best == nil || e.tFire < best.tFire ||
			(e.tFire == best.tFire && e.eventID < best.eventID) {
			best = e
		}
	}
	if best == nil {
		return nil, false
	}
	return best, true
}

// RemoveTimed unlinks e from the timed list. A no-op if e is already absent,
// which happens routinely when both participants of a binary event detach it
// in the same dispatch step.
func (s *AgentEventSet) RemoveTimed(e *PopulationEvent) {
	for i, cur := range s.timed {
		if cur == e {
			last := len(s.timed) - 1
			s.timed[i] = s.timed[last]
			s.timed[last] = nil
			s.timed = s.timed[:last]
			return
		}
	}
}

// AdvanceEventTimes recomputes every event's remaining internal time and
// firing time relative to newRef, the real time the previous event fired at.
func (s *AgentEventSet) AdvanceEventTimes(pop *Population, newRef float64) {
	for _, e := range s.timed {
		pop.LockEvent(e)
		pop.retimeEvent(e, newRef)
		pop.UnlockEvent(e)
	}
}
