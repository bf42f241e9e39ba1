package events

import (
	"math"

	kernel "github.com/kentwait/epinrm"
	"github.com/pkg/errors"
)

// TransmissionConfig mirrors the hazard parameters EventHCVTransmission
// loads from "hcvtransmission.hazard.*": h(t) = exp(a + b*(t-t0)), a
// log-linear hazard in time since the source agent's own infection. The
// source's original config loader writes its c2 key into the same static
// as c1 (s_c1 is assigned twice, s_c2 never); this demonstration has no
// c1/c2 pair at all (its parameters are A, B and TMax, each its own field),
// so that mixup has no counterpart here.
type TransmissionConfig struct {
	A float64 // baseline log-hazard
	B float64 // time-dependence slope
	// TMax bounds how long after the source's infection transmission can
	// still occur; past it the hazard is treated as zero.
	TMax float64
}

// TransmissionEvent models transmission from an infected Source to a
// susceptible Target, grounded on EventHCVTransmission: a binary event
// whose hazard depends on time since Source's infection and which becomes
// useless as soon as Target is no longer a valid recipient.
type TransmissionEvent struct {
	source, target *kernel.Agent
	cfg             TransmissionConfig
	sourceInfection float64

	infected bool // tracks whether target has already been infected by another path

	onTransmit func(source, target *kernel.Agent, t float64)
}

// NewTransmissionEvent builds a transmission event from source to target.
// It rejects a non-positive TMax, which would make every window empty.
func NewTransmissionEvent(source, target *kernel.Agent, cfg TransmissionConfig, sourceInfectionTime float64) (*TransmissionEvent, error) {
	if cfg.TMax <= 0 {
		return nil, errors.Errorf(kernel.InvalidFloatParameterError, "tmax", cfg.TMax, "must be positive")
	}
	return &TransmissionEvent{source: source, target: target, cfg: cfg, sourceInfection: sourceInfectionTime}, nil
}

// MarkInfected flags that Target has been infected through some other event
// (e.g. a competing transmission), which makes this one useless.
func (e *TransmissionEvent) MarkInfected() { e.infected = true }

// SetOnTransmit installs a callback invoked after Fire transmits to Target.
func (e *TransmissionEvent) SetOnTransmit(fn func(source, target *kernel.Agent, t float64)) {
	e.onTransmit = fn
}

func (e *TransmissionEvent) NumParticipants() int { return 2 }
func (e *TransmissionEvent) Participant(i int) *kernel.Agent {
	if i == 0 {
		return e.source
	}
	return e.target
}

func (e *TransmissionEvent) IsUseless(pop *kernel.Population) bool {
	return e.source.IsDead() || e.target.IsDead() || e.infected
}

func (e *TransmissionEvent) AffectsEveryone() bool { return false }
func (e *TransmissionEvent) AffectsGlobals() bool  { return false }
func (e *TransmissionEvent) MarkOtherAffected(pop *kernel.Population) {}

func (e *TransmissionEvent) DrawInternalTarget(rng kernel.RandomSource) float64 {
	return rng.DrawExp(1)
}

// window returns the interval [t0, t0+dt] measured in time since the
// source's infection, with both ends clamped to TMax.
func (e *TransmissionEvent) window(t0, dt float64) (lo, hi float64) {
	lo = t0 - e.sourceInfection
	hi = t0 + dt - e.sourceInfection
	if lo > e.cfg.TMax {
		lo = e.cfg.TMax
	}
	if hi > e.cfg.TMax {
		hi = e.cfg.TMax
	}
	return lo, hi
}

// CalculateInternalTimeInterval integrates exp(A + B*u) du over the window,
// clamped to TMax: a closed-form exponential integral.
func (e *TransmissionEvent) CalculateInternalTimeInterval(pop *kernel.Population, t0, dt float64) float64 {
	lo, hi := e.window(t0, dt)
	if hi <= lo {
		return 0
	}
	a, b := e.cfg.A, e.cfg.B
	if b == 0 {
		return math.Exp(a) * (hi - lo)
	}
	return (math.Exp(a+b*hi) - math.Exp(a+b*lo)) / b
}

// SolveForRealTimeInterval inverts the same integral for dt; returns +Inf
// when the target cannot be reached before TMax.
func (e *TransmissionEvent) SolveForRealTimeInterval(pop *kernel.Population, deltaTau, t0 float64) float64 {
	a, b := e.cfg.A, e.cfg.B
	lo := t0 - e.sourceInfection
	if lo > e.cfg.TMax {
		return math.Inf(1)
	}
	if b == 0 {
		rate := math.Exp(a)
		if rate <= 0 {
			return math.Inf(1)
		}
		dt := deltaTau / rate
		if t0+dt-e.sourceInfection > e.cfg.TMax {
			return math.Inf(1)
		}
		return dt
	}
	target := math.Exp(a+b*lo) + deltaTau*b
	if target <= 0 {
		return math.Inf(1)
	}
	hi := (math.Log(target) - a) / b
	dt := hi - lo
	if dt < 0 || t0+dt-e.sourceInfection > e.cfg.TMax {
		return math.Inf(1)
	}
	return dt
}

func (e *TransmissionEvent) Fire(pop *kernel.Population, t float64) error {
	e.infected = true
	if e.onTransmit != nil {
		e.onTransmit(e.source, e.target, t)
	}
	return nil
}
