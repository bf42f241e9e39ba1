package contagiongo

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Algorithm drives the modified Next Reaction Method dispatch loop over a
// Population. It owns no state beyond its logger; all mutable state lives
// in the Population it is handed at Run time.
type Algorithm struct {
	log *zap.Logger
}

// NewAlgorithm builds an Algorithm that reports operational events through
// log. A nil logger is replaced with zap.NewNop().
func NewAlgorithm(log *zap.Logger) *Algorithm {
	if log == nil {
		log = zap.NewNop()
	}
	return &Algorithm{log: log}
}

// UntilFn is a caller-supplied stop predicate, checked once per iteration
// after housekeeping. Returning true ends the run with UntilFnSatisfied.
type UntilFn func(pop *Population) bool

// Run executes the dispatch loop against pop until no event remains, ctx is
// cancelled, or untilFn (if non-nil) returns true. It never rolls back a
// partially applied Fire: any error returned from a concrete event's Fire
// ends the run immediately.
func (alg *Algorithm) Run(ctx context.Context, pop *Population, untilFn UntilFn) (TerminationReason, float64, error) {
	tNow := 0.0
	for {
		if err := ctx.Err(); err != nil {
			alg.log.Info("run cancelled", zap.Float64("t_now", tNow))
			return ContextCancelled, tNow, nil
		}

		winner, dt, err := alg.step(ctx, pop, tNow)
		if err != nil {
			alg.log.Error("run failed", zap.Float64("t_now", tNow), zap.Error(err))
			return StillRunning, tNow, err
		}
		if winner == nil {
			alg.log.Info("no events remain", zap.Float64("t_now", tNow))
			return NoEventsRemain, tNow, nil
		}
		tNow += dt

		if untilFn != nil && untilFn(pop) {
			alg.log.Info("stop condition satisfied", zap.Float64("t_now", tNow))
			return UntilFnSatisfied, tNow, nil
		}
	}
}

// step performs one full dispatch-loop iteration — initialize, select,
// detach, fire, advance times, enqueue deletion — and returns the event
// that fired (nil if none was found) and the elapsed dt.
func (alg *Algorithm) step(ctx context.Context, pop *Population, tNow float64) (*PopulationEvent, float64, error) {
	// Step 1: initialize unsorted events across all alive agents and dummies.
	all := append(append([]*Agent{}, pop.IterateDummies()...), pop.IterateAlive()...)
	err := parallelForAgents(ctx, pop, all, func(_ int, chunk []*Agent) error {
		for _, a := range chunk {
			pop.LockAgent(a)
			a.events.ProcessUnsorted(pop, tNow)
			pop.UnlockAgent(a)
		}
		return nil
	})
	if err != nil {
		return nil, 0, errors.Wrap(err, "initializing unsorted events")
	}

	// Step 2: select the earliest event across the whole population.
	winner, err := reduceEarliest(ctx, pop, all)
	if err != nil {
		return nil, 0, errors.Wrap(err, "selecting earliest event")
	}
	for winner != nil && winner.impl.IsUseless(pop) {
		alg.detach(pop, winner)
		winner.scheduledForRemoval = true
		pop.enqueueDeletion(winner)
		winner, err = reduceEarliest(ctx, pop, all)
		if err != nil {
			return nil, 0, errors.Wrap(err, "selecting earliest event")
		}
	}
	if winner == nil {
		return nil, 0, nil
	}

	dt := winner.tFire - tNow
	if dt < 0 {
		panic(NewProgrammerError(NegativeTimeIntervalError, winner.eventID, dt))
	}

	// Step 3: detach from every participant.
	alg.detach(pop, winner)

	// Step 5: fire.
	fireTime := tNow + dt
	for _, p := range participantsOf(winner) {
		if p.IsDead() {
			panic(NewProgrammerError(DeadParticipantFireError, winner.eventID, p.id))
		}
	}
	if err := winner.impl.Fire(pop, fireTime); err != nil {
		return nil, 0, errors.Wrapf(err, "firing event %d", winner.eventID)
	}

	// Step 6: advance times.
	winner.scheduledForRemoval = true
	pop.enqueueDeletion(winner)

	for _, p := range participantsOf(winner) {
		p.events.AdvanceEventTimes(pop, fireTime)
	}

	if winner.impl.AffectsEveryone() {
		err = parallelForAgents(ctx, pop, pop.IterateAlive(), func(_ int, chunk []*Agent) error {
			for _, a := range chunk {
				a.events.AdvanceEventTimes(pop, fireTime)
			}
			return nil
		})
		if err != nil {
			return nil, 0, errors.Wrap(err, "advancing all agents after affects-everyone event")
		}
	} else {
		pop.affected = pop.affected[:0]
		winner.impl.MarkOtherAffected(pop)
		for _, a := range pop.affected {
			a.events.AdvanceEventTimes(pop, fireTime)
		}
	}

	if winner.impl.AffectsGlobals() {
		for _, d := range pop.IterateDummies() {
			d.events.AdvanceEventTimes(pop, fireTime)
		}
	}

	return winner, dt, nil
}

// detach removes e from every agent it is registered against: its own
// participants, or the first global dummy for a zero-participant event.
func (alg *Algorithm) detach(pop *Population, e *PopulationEvent) {
	for _, p := range registeredAgents(pop, e) {
		p.events.RemoveTimed(e)
	}
}

// registeredAgents returns the agents an event is registered against: its
// own participants, or the first global dummy for a zero-participant event.
func registeredAgents(pop *Population, e *PopulationEvent) []*Agent {
	n := e.NumParticipants()
	if n == 0 {
		return pop.IterateDummies()[:1]
	}
	out := make([]*Agent, n)
	for i := 0; i < n; i++ {
		out[i] = e.Participant(i)
	}
	return out
}

// participantsOf returns an event's own participants (empty for a
// zero-participant event), distinct from registeredAgents which also
// includes the global dummy attachment point.
func participantsOf(e *PopulationEvent) []*Agent {
	n := e.NumParticipants()
	out := make([]*Agent, n)
	for i := 0; i < n; i++ {
		out[i] = e.Participant(i)
	}
	return out
}
