package contagiongo

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAlgorithm_EmptySimulation_TerminatesImmediately(t *testing.T) {
	pop := NewPopulation(DefaultEngineConfig(), NewRandomSource())
	alg := NewAlgorithm(zap.NewNop())

	reason, tNow, err := alg.Run(context.Background(), pop, nil)
	require.NoError(t, err)
	require.Equal(t, NoEventsRemain, reason, UnequalIntParameterError, "termination reason", NoEventsRemain, reason)
	require.Equal(t, 0.0, tNow, UnequalFloatParameterError, "t_now", 0.0, tNow)
}

func TestAlgorithm_SingleMortality_FiresAtExpectedTime(t *testing.T) {
	cfg := DefaultEngineConfig()
	rng := fixedSeedRNG{exp: 0.693}
	pop := NewPopulation(cfg, rng)
	a := pop.AddAgent(Male)

	ev := newConstantHazardEvent(1.0, a)
	ev.onFire = func(pop *Population, t float64) error {
		pop.MarkDied(a, t)
		return nil
	}
	pop.OnNewEvent(ev)

	alg := NewAlgorithm(zap.NewNop())
	reason, tNow, err := alg.Run(context.Background(), pop, nil)
	require.NoError(t, err)
	require.Equal(t, NoEventsRemain, reason)
	require.InDelta(t, 0.693, tNow, 1e-9)
	require.Equal(t, 1, ev.fireCount)
	require.True(t, a.IsDead())
	require.Contains(t, pop.Deceased(), a)
}

func TestAlgorithm_BinaryEvent_BecomesUselessWhenParticipantDies(t *testing.T) {
	cfg := DefaultEngineConfig()
	pop := NewPopulation(cfg, nil)

	a := pop.AddAgent(Male)
	b := pop.AddAgent(Female)

	transmission := newConstantHazardEvent(0.1, a, b)
	mortality := newConstantHazardEvent(1.0, b)
	mortality.onFire = func(pop *Population, t float64) error {
		pop.MarkDied(b, t)
		return nil
	}

	// Seed deterministic firing order: mortality first, then transmission
	// would be next but b is already dead by then.
	pop.rng = fixedSeedRNG{exp: 0.1}
	te := pop.OnNewEvent(transmission)
	me := pop.OnNewEvent(mortality)

	alg := NewAlgorithm(zap.NewNop())
	_, _, err := alg.Run(context.Background(), pop, nil)
	require.NoError(t, err)

	require.Equal(t, 1, mortality.fireCount)
	require.Equal(t, 0, transmission.fireCount, "transmission must never fire once its participant died")
	_ = te
	_ = me
}

func TestAlgorithm_AffectsEveryone_RetimesAllAgents(t *testing.T) {
	cfg := DefaultEngineConfig()
	rng := fixedSeedRNG{exp: 1.0}
	pop := NewPopulation(cfg, rng)

	m1 := pop.AddAgent(Male)
	m2 := pop.AddAgent(Male)
	m3 := pop.AddAgent(Female)

	global := newConstantHazardEvent(2.0)
	global.everyone = true
	ge := pop.OnNewEvent(global)

	hz := []*constantHazardEvent{
		newConstantHazardEvent(1.0, m1),
		newConstantHazardEvent(1.0, m2),
		newConstantHazardEvent(1.0, m3),
	}
	for _, e := range hz {
		pop.OnNewEvent(e)
	}

	alg := NewAlgorithm(zap.NewNop())
	_, _, err := alg.Run(context.Background(), pop, func(p *Population) bool {
		return global.fireCount >= 1
	})
	require.NoError(t, err)
	require.Equal(t, 1, global.fireCount)

	for _, a := range []*Agent{m1, m2, m3} {
		e, ok := a.events.Earliest()
		require.True(t, ok)
		require.Equal(t, ge.tFire, e.lastRef, "retimed events must have lastRef at the firing time of the global event")
	}
}

func TestAlgorithm_SolveForRealTimeInterval_InfinityNeverFires(t *testing.T) {
	pop := NewPopulation(DefaultEngineConfig(), NewRandomSource())
	a := pop.AddAgent(Male)
	ev := newConstantHazardEvent(0, a) // rate 0 => hazard never accumulates
	e := pop.OnNewEvent(ev)
	a.events.ProcessUnsorted(pop, 0)

	require.True(t, math.IsInf(e.tFire, 1))
}

func TestReduceEarliest_SequentialAndParallelAgreeOnFirstPick(t *testing.T) {
	build := func(parallel bool) (*Population, []*constantHazardEvent) {
		cfg := DefaultEngineConfig()
		cfg.Parallel = parallel
		cfg.NumWorkers = 4
		pop := NewPopulation(cfg, NewRandomSource())
		var evs []*constantHazardEvent
		for i := 0; i < 20; i++ {
			a := pop.AddAgent(Male)
			ev := newConstantHazardEvent(1.0, a)
			e := pop.OnNewEvent(ev)
			e.initialized = true
			e.tFire = float64(20 - i) // deterministic, decreasing so last agent wins
			e.lastRef = 0
			a.events.unsorted = a.events.unsorted[:0]
			a.events.timed = append(a.events.timed, e)
			evs = append(evs, ev)
		}
		return pop, evs
	}

	seqPop, _ := build(false)
	parPop, _ := build(true)

	seqWinner, err := reduceEarliest(context.Background(), seqPop, seqPop.IterateAlive())
	require.NoError(t, err)
	parWinner, err := reduceEarliest(context.Background(), parPop, parPop.IterateAlive())
	require.NoError(t, err)

	require.Equal(t, seqWinner.tFire, parWinner.tFire)
}
