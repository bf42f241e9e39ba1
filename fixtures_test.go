package contagiongo

import "math"

// constantHazardEvent is a minimal EventContract used to exercise the
// kernel's dispatch loop in isolation from any concrete disease model.
// Its hazard is a constant rate over all time, so the internal time
// interval is just rate*dt and its inverse is deltaTau/rate.
type constantHazardEvent struct {
	participants  []*Agent
	rate          float64
	useless       bool
	everyone      bool
	globals       bool
	fireCount     int
	otherAffected []*Agent
	onFire        func(pop *Population, t float64) error
}

func newConstantHazardEvent(rate float64, participants ...*Agent) *constantHazardEvent {
	return &constantHazardEvent{participants: participants, rate: rate}
}

func (e *constantHazardEvent) NumParticipants() int     { return len(e.participants) }
func (e *constantHazardEvent) Participant(i int) *Agent { return e.participants[i] }

func (e *constantHazardEvent) IsUseless(pop *Population) bool {
	if e.useless {
		return true
	}
	for _, p := range e.participants {
		if p.IsDead() {
			return true
		}
	}
	return false
}

func (e *constantHazardEvent) AffectsEveryone() bool { return e.everyone }
func (e *constantHazardEvent) AffectsGlobals() bool  { return e.globals }

func (e *constantHazardEvent) MarkOtherAffected(pop *Population) {
	for _, a := range e.otherAffected {
		pop.MarkAffected(a)
	}
}

func (e *constantHazardEvent) DrawInternalTarget(rng RandomSource) float64 {
	return rng.DrawExp(1)
}

func (e *constantHazardEvent) CalculateInternalTimeInterval(pop *Population, t0, dt float64) float64 {
	return e.rate * dt
}

func (e *constantHazardEvent) SolveForRealTimeInterval(pop *Population, deltaTau, t0 float64) float64 {
	if e.rate <= 0 {
		return math.Inf(1)
	}
	return deltaTau / e.rate
}

func (e *constantHazardEvent) Fire(pop *Population, t float64) error {
	e.fireCount++
	if e.onFire != nil {
		return e.onFire(pop, t)
	}
	return nil
}

// fixedSeedRNG returns a canned exponential draw regardless of rate, used to
// make dispatch-order tests deterministic without touching the real RNG.
type fixedSeedRNG struct {
	exp       float64
	uniform01 float64
	poisson   int
}

func (r fixedSeedRNG) DrawExp(rate float64) float64   { return r.exp }
func (r fixedSeedRNG) DrawUniform01() float64         { return r.uniform01 }
func (r fixedSeedRNG) DrawPoisson(lambda float64) int { return r.poisson }
