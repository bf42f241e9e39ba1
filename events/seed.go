package events

import (
	kernel "github.com/kentwait/epinrm"
)

// SeedEvent fires exactly once, at a configured real time, to seed an
// initial infection into Target without any source agent — grounded on
// EventHCVSeed, which is a zero-or-one-participant event whose internal
// clock is a fixed (non-random) offset rather than an exponential draw.
type SeedEvent struct {
	target *kernel.Agent
	at     float64
	fired  bool

	onSeed func(target *kernel.Agent, t float64)
}

// NewSeedEvent builds a seed event that infects target at real time at.
func NewSeedEvent(target *kernel.Agent, at float64) *SeedEvent {
	return &SeedEvent{target: target, at: at}
}

// SetOnSeed installs a callback invoked after Fire seeds Target.
func (e *SeedEvent) SetOnSeed(fn func(target *kernel.Agent, t float64)) { e.onSeed = fn }

func (e *SeedEvent) NumParticipants() int            { return 1 }
func (e *SeedEvent) Participant(i int) *kernel.Agent { return e.target }

func (e *SeedEvent) IsUseless(pop *kernel.Population) bool {
	return e.fired || e.target.IsDead()
}

func (e *SeedEvent) AffectsEveryone() bool                    { return false }
func (e *SeedEvent) AffectsGlobals() bool                     { return false }
func (e *SeedEvent) MarkOtherAffected(pop *kernel.Population) {}

// DrawInternalTarget returns a fixed value; a seed event has no randomness,
// only a scheduled real time.
func (e *SeedEvent) DrawInternalTarget(rng kernel.RandomSource) float64 {
	return 1
}

// CalculateInternalTimeInterval and SolveForRealTimeInterval together model
// a cumulative hazard that stays 0 before e.at and jumps to 1 (the fixed
// internal target) at e.at, so the event fires at exactly that real time
// regardless of when it was registered.
func (e *SeedEvent) CalculateInternalTimeInterval(pop *kernel.Population, t0, dt float64) float64 {
	if t0+dt < e.at {
		return 0
	}
	return 1
}

func (e *SeedEvent) SolveForRealTimeInterval(pop *kernel.Population, deltaTau, t0 float64) float64 {
	if t0 >= e.at {
		return 0
	}
	return e.at - t0
}

func (e *SeedEvent) Fire(pop *kernel.Population, t float64) error {
	e.fired = true
	if e.onSeed != nil {
		e.onSeed(e.target, t)
	}
	return nil
}
