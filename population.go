package contagiongo

import (
	"math"
	"sync"
)

// EngineConfig holds the kernel-level tunables loaded from TOML (see
// config.go for the loader). It configures the dispatch loop and its
// concurrency, never the biology of any concrete event.
type EngineConfig struct {
	Parallel             bool `toml:"parallel"`
	NumWorkers           int  `toml:"num_workers"`
	EventShardCount      int  `toml:"event_shard_count"`
	AgentShardCount      int  `toml:"agent_shard_count"`
	DeletionBatchSize    int  `toml:"deletion_batch_size"`
	NumGlobalDummies     int  `toml:"num_global_dummies"`
}

// DefaultEngineConfig mirrors the constants the original population kernel
// hard-coded (a single dummy, 256-way mutex sharding, a 10,000-event
// deferred-deletion batch).
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Parallel:          false,
		NumWorkers:        4,
		EventShardCount:   256,
		AgentShardCount:   256,
		DeletionBatchSize: 10000,
		NumGlobalDummies:  1,
	}
}

// Population is the agent registry: a single contiguous slice partitioned as
// [dummies | males | females], plus the deceased list and the deferred
// event-deletion queue. It is the only type concrete events are handed for
// mutation (through Fire, IsUseless, MarkOtherAffected, ...).
type Population struct {
	cfg EngineConfig
	rng RandomSource

	members []*Agent // [0:numDummies] | [numDummies:numDummies+numMales] | males-end:

	numDummies int
	numMales   int
	numFemales int

	deceased []*Agent

	nextAgentID int64
	nextEventID int64

	pendingDeletion []*PopulationEvent

	eventShards []sync.Mutex
	agentShards []sync.Mutex
	deletionMu  sync.Mutex

	// affected accumulates agents marked by MarkOtherAffected during the
	// "mark other affected" phase of a dispatch step; see MarkAffected.
	affected []*Agent
}

// NewPopulation constructs an empty registry seeded with cfg.NumGlobalDummies
// dummy agents (minimum 1) and no living agents.
func NewPopulation(cfg EngineConfig, rng RandomSource) *Population {
	if cfg.EventShardCount <= 0 {
		cfg.EventShardCount = 256
	}
	if cfg.AgentShardCount <= 0 {
		cfg.AgentShardCount = 256
	}
	if cfg.DeletionBatchSize <= 0 {
		cfg.DeletionBatchSize = 10000
	}
	if cfg.NumGlobalDummies <= 0 {
		cfg.NumGlobalDummies = 1
	}
	p := &Population{
		cfg:         cfg,
		rng:         rng,
		eventShards: make([]sync.Mutex, cfg.EventShardCount),
		agentShards: make([]sync.Mutex, cfg.AgentShardCount),
	}
	for i := 0; i < cfg.NumGlobalDummies; i++ {
		d := &Agent{id: p.nextAgentID, kind: GlobalDummy, listIndex: len(p.members)}
		p.nextAgentID++
		p.members = append(p.members, d)
		p.numDummies++
	}
	return p
}

// AddAgent inserts a into the registry, assigning its ID and list index.
// Adding a male when females are already present requires moving the first
// female to the new tail slot so the [dummies|males|females] partition
// stays contiguous; adding a female is a plain append.
func (p *Population) AddAgent(kind AgentKind) *Agent {
	if kind == GlobalDummy {
		panic(NewProgrammerError("AddAgent cannot add a GlobalDummy after construction"))
	}
	a := &Agent{id: p.nextAgentID, kind: kind}
	p.nextAgentID++

	if kind == Male {
		insertAt := p.numDummies + p.numMales
		if p.numFemales > 0 {
			// Move the first female out to the tail to make room.
			firstFemaleIdx := insertAt
			firstFemale := p.members[firstFemaleIdx]
			p.members = append(p.members, firstFemale)
			firstFemale.listIndex = len(p.members) - 1
			p.members[firstFemaleIdx] = a
			a.listIndex = firstFemaleIdx
		} else {
			p.members = append(p.members, a)
			a.listIndex = insertAt
		}
		p.numMales++
	} else {
		a.listIndex = len(p.members)
		p.members = append(p.members, a)
		p.numFemales++
	}
	return a
}

// MarkDied removes a from the registry by swapping it with the last member
// of its gender partition, then (if a was male) swapping the last female
// into the vacated male-tail slot to keep the partition contiguous. a itself
// survives as a Go object — in-flight events may still reference it — and is
// appended to the deceased list.
func (p *Population) MarkDied(a *Agent, t float64) {
	if a.dead {
		panic(NewProgrammerError(DeadAgentReuseError, a.id))
	}
	if a.listIndex < 0 || a.listIndex >= len(p.members) || p.members[a.listIndex] != a {
		panic(NewProgrammerError(AgentIndexMismatchError, a.id, a.listIndex, -1))
	}

	idx := a.listIndex
	maleEnd := p.numDummies + p.numMales // exclusive
	switch a.kind {
	case Male:
		lastMaleIdx := maleEnd - 1
		if idx != lastMaleIdx {
			p.members[idx] = p.members[lastMaleIdx]
			p.members[idx].listIndex = idx
		}
		if p.numFemales > 0 {
			lastFemaleIdx := len(p.members) - 1
			p.members[lastMaleIdx] = p.members[lastFemaleIdx]
			p.members[lastMaleIdx].listIndex = lastMaleIdx
			p.members = p.members[:lastFemaleIdx]
		} else {
			p.members = p.members[:lastMaleIdx]
		}
		p.numMales--
	case Female:
		lastFemaleIdx := len(p.members) - 1
		if idx != lastFemaleIdx {
			p.members[idx] = p.members[lastFemaleIdx]
			p.members[idx].listIndex = idx
		}
		p.members = p.members[:lastFemaleIdx]
		p.numFemales--
	default:
		panic(NewProgrammerError("MarkDied called on a GlobalDummy agent %d", a.id))
	}

	a.dead = true
	a.listIndex = -1
	a.timeOfDeath = t
	p.deceased = append(p.deceased, a)
}

// IterateAlive returns the contiguous slice of living agents (males and
// females, dummies excluded). Callers must not mutate the registry while
// holding this slice across a parallel region.
func (p *Population) IterateAlive() []*Agent {
	return p.members[p.numDummies:]
}

// IterateDummies returns the contiguous slice of global-dummy agents.
func (p *Population) IterateDummies() []*Agent {
	return p.members[:p.numDummies]
}

// GetMen returns the contiguous male partition.
func (p *Population) GetMen() []*Agent {
	return p.members[p.numDummies : p.numDummies+p.numMales]
}

// GetWomen returns the contiguous female partition.
func (p *Population) GetWomen() []*Agent {
	return p.members[p.numDummies+p.numMales:]
}

// Deceased returns the append-only list of former members.
func (p *Population) Deceased() []*Agent {
	return p.deceased
}

// OnNewEvent registers impl with the kernel: it assigns the event a fresh
// ID and stages it on every participant's event set (or on the first
// global dummy, for a zero-participant event). The event's internal clock
// is not drawn until ProcessUnsorted first observes it.
func (p *Population) OnNewEvent(impl EventContract) *PopulationEvent {
	e := &PopulationEvent{eventID: p.nextEventID, impl: impl}
	for _, a := range registeredAgents(p, e) {
		for _, list := range [][]*PopulationEvent{a.events.unsorted, a.events.timed} {
			for _, x := range list {
				if x.impl == impl {
					panic(NewProgrammerError(DuplicateEventRegistrationError, x.eventID))
				}
			}
		}
	}
	p.nextEventID++

	n := impl.NumParticipants()
	if n == 0 {
		p.members[0].events.stage(e)
		return e
	}
	for i := 0; i < n; i++ {
		impl.Participant(i).events.stage(e)
	}
	return e
}

// initializeEvent draws tau and computes the first firing time for e,
// relative to reference time now. Called once per event, from
// AgentEventSet.ProcessUnsorted.
func (p *Population) initializeEvent(e *PopulationEvent, now float64) {
	e.tauInternal = e.impl.DrawInternalTarget(p.rng)
	e.tauRemaining = e.tauInternal
	e.lastRef = now
	e.initialized = true
	p.retimeEvent(e, now)
}

// retimeEvent recomputes e's remaining internal budget by subtracting the
// hazard integrated since e.lastRef, then inverts the hazard forward from
// newRef to produce a fresh firing time.
func (p *Population) retimeEvent(e *PopulationEvent, newRef float64) {
	if newRef > e.lastRef {
		consumed := e.impl.CalculateInternalTimeInterval(p, e.lastRef, newRef-e.lastRef)
		e.tauRemaining -= consumed
		if e.tauRemaining < 0 {
			e.tauRemaining = 0
		}
	}
	e.lastRef = newRef
	dt := e.impl.SolveForRealTimeInterval(p, e.tauRemaining, newRef)
	if dt < 0 {
		panic(NewProgrammerError(NegativeTimeIntervalError, e.eventID, dt))
	}
	if math.IsInf(dt, 1) {
		e.tFire = math.Inf(1)
		return
	}
	e.tFire = newRef + dt
}

// MarkAffected records that agent's events must be retimed as part of the
// current dispatch step's "mark other affected" phase (see Algorithm.step).
// Only valid to call from within EventContract.MarkOtherAffected.
func (p *Population) MarkAffected(agent *Agent) {
	p.affected = append(p.affected, agent)
}

// enqueueDeletion queues e for batched destruction and flushes the queue if
// it has crossed the configured threshold.
func (p *Population) enqueueDeletion(e *PopulationEvent) {
	p.deletionMu.Lock()
	p.pendingDeletion = append(p.pendingDeletion, e)
	flush := len(p.pendingDeletion) > p.cfg.DeletionBatchSize
	p.deletionMu.Unlock()
	if flush {
		p.FlushDeletions()
	}
}

// FlushDeletions drops the kernel's references to every event queued for
// removal. enqueueDeletion calls it from inside a dispatch step once the
// queue has crossed the threshold; it only drops the queue itself and leaves
// agents' event sets untouched.
func (p *Population) FlushDeletions() {
	p.deletionMu.Lock()
	p.pendingDeletion = nil
	p.deletionMu.Unlock()
}

// LockEvent acquires the shard mutex for e's ID. A no-op in sequential mode.
func (p *Population) LockEvent(e *PopulationEvent) {
	if !p.cfg.Parallel {
		return
	}
	p.eventShards[shardIndex(e.eventID, len(p.eventShards))].Lock()
}

// UnlockEvent releases the shard mutex for e's ID. A no-op in sequential mode.
func (p *Population) UnlockEvent(e *PopulationEvent) {
	if !p.cfg.Parallel {
		return
	}
	p.eventShards[shardIndex(e.eventID, len(p.eventShards))].Unlock()
}

// LockAgent acquires the shard mutex for a's ID. A no-op in sequential mode.
func (p *Population) LockAgent(a *Agent) {
	if !p.cfg.Parallel {
		return
	}
	p.agentShards[shardIndex(a.id, len(p.agentShards))].Lock()
}

// UnlockAgent releases the shard mutex for a's ID. A no-op in sequential mode.
func (p *Population) UnlockAgent(a *Agent) {
	if !p.cfg.Parallel {
		return
	}
	p.agentShards[shardIndex(a.id, len(p.agentShards))].Unlock()
}

func shardIndex(id int64, numShards int) int {
	idx := id % int64(numShards)
	if idx < 0 {
		idx += int64(numShards)
	}
	return int(idx)
}
