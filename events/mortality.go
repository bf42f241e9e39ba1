// Package events supplies a small set of concrete epidemic events —
// mortality, transmission, seeding, and periodic logging — that satisfy the
// kernel's EventContract. None of their hazard math is meant to be
// epidemiologically authoritative; they exist to exercise the dispatch loop
// end to end and to give the demonstration CLI something to run.
package events

import (
	"math"

	kernel "github.com/kentwait/epinrm"
	"github.com/pkg/errors"
)

// MortalityConfig holds the Weibull hazard shape/scale this demonstration
// uses in place of the set-point-viral-load survival model the original
// AIDS mortality event derives its hazard from (that derivation depends on
// HIV disease-progression state this kernel does not model).
type MortalityConfig struct {
	// Shape is the Weibull shape parameter k. k=1 reduces to a constant
	// hazard (exponential survival); k>1 models an accelerating hazard.
	Shape float64
	// Scale is the characteristic survival time lambda, analogous to the
	// getExpectedSurvivalTime() value derived from set-point viral load.
	Scale float64
}

// MortalityEvent is a unary event whose hazard is a Weibull survival curve
// anchored at the infectionTime passed to NewMortalityEvent. It is grounded on the shape of eventaidsmortality's survival
// time derivation, with the viral-load-dependent scale replaced by a
// configured constant per-agent scale.
type MortalityEvent struct {
	agent     *kernel.Agent
	cfg       MortalityConfig
	infection float64 // real time the hazard clock is anchored at

	onDeath func(agent *kernel.Agent)
}

// NewMortalityEvent builds a mortality event for agent, anchored at
// infectionTime. It rejects a non-positive Shape or Scale, since either
// produces a hazard integral that never increases.
func NewMortalityEvent(agent *kernel.Agent, cfg MortalityConfig, infectionTime float64) (*MortalityEvent, error) {
	if cfg.Shape <= 0 {
		return nil, errors.Errorf(kernel.InvalidFloatParameterError, "shape", cfg.Shape, "must be positive")
	}
	if cfg.Scale <= 0 {
		return nil, errors.Errorf(kernel.InvalidFloatParameterError, "scale", cfg.Scale, "must be positive")
	}
	return &MortalityEvent{agent: agent, cfg: cfg, infection: infectionTime}, nil
}

// SetOnDeath installs a callback invoked after Fire marks the agent dead.
func (e *MortalityEvent) SetOnDeath(fn func(agent *kernel.Agent)) { e.onDeath = fn }

func (e *MortalityEvent) NumParticipants() int         { return 1 }
func (e *MortalityEvent) Participant(i int) *kernel.Agent { return e.agent }

func (e *MortalityEvent) IsUseless(pop *kernel.Population) bool {
	return e.agent.IsDead()
}

func (e *MortalityEvent) AffectsEveryone() bool { return false }
func (e *MortalityEvent) AffectsGlobals() bool  { return false }
func (e *MortalityEvent) MarkOtherAffected(pop *kernel.Population) {}

func (e *MortalityEvent) DrawInternalTarget(rng kernel.RandomSource) float64 {
	return rng.DrawExp(1)
}

// CalculateInternalTimeInterval integrates the Weibull hazard
// h(t) = (k/lambda) * ((t-t_infection)/lambda)^(k-1)
// over [t0, t0+dt], which has the closed form
// H(t0,dt) = ((t0+dt-t_infection)/lambda)^k - ((t0-t_infection)/lambda)^k.
func (e *MortalityEvent) CalculateInternalTimeInterval(pop *kernel.Population, t0, dt float64) float64 {
	u0 := (t0 - e.infection) / e.cfg.Scale
	u1 := (t0 + dt - e.infection) / e.cfg.Scale
	return math.Pow(math.Max(u1, 0), e.cfg.Shape) - math.Pow(math.Max(u0, 0), e.cfg.Shape)
}

// SolveForRealTimeInterval inverts the same cumulative hazard for dt.
func (e *MortalityEvent) SolveForRealTimeInterval(pop *kernel.Population, deltaTau, t0 float64) float64 {
	u0 := math.Max((t0-e.infection)/e.cfg.Scale, 0)
	target := math.Pow(u0, e.cfg.Shape) + deltaTau
	u1 := math.Pow(target, 1/e.cfg.Shape)
	dt := u1*e.cfg.Scale - (t0 - e.infection)
	if dt < 0 {
		dt = 0
	}
	return dt
}

func (e *MortalityEvent) Fire(pop *kernel.Population, t float64) error {
	pop.MarkDied(e.agent, t)
	if e.onDeath != nil {
		e.onDeath(e.agent)
	}
	return nil
}
