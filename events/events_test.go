package events

import (
	"context"
	"testing"

	kernel "github.com/kentwait/epinrm"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMortalityEvent_FiresAndRemovesAgent(t *testing.T) {
	pop := kernel.NewPopulation(kernel.DefaultEngineConfig(), kernel.NewRandomSource())
	a := pop.AddAgent(kernel.Male)

	died := false
	ev, err := NewMortalityEvent(a, MortalityConfig{Shape: 1, Scale: 1}, 0)
	require.NoError(t, err)
	ev.onDeath = func(agent *kernel.Agent) { died = true }
	pop.OnNewEvent(ev)

	alg := kernel.NewAlgorithm(zap.NewNop())
	reason, _, err := alg.Run(context.Background(), pop, nil)
	require.NoError(t, err)
	require.Equal(t, kernel.NoEventsRemain, reason, kernel.UnequalIntParameterError, "termination reason", kernel.NoEventsRemain, reason)
	require.True(t, a.IsDead())
	require.True(t, died)
}

func TestNewMortalityEvent_RejectsNonPositiveShape(t *testing.T) {
	pop := kernel.NewPopulation(kernel.DefaultEngineConfig(), kernel.NewRandomSource())
	a := pop.AddAgent(kernel.Male)

	_, err := NewMortalityEvent(a, MortalityConfig{Shape: 0, Scale: 1}, 0)
	require.Error(t, err, kernel.ExpectedErrorWhileError, "constructing a mortality event with a zero shape")
}

func TestTransmissionEvent_BecomesUselessAfterTargetInfectedElsewhere(t *testing.T) {
	pop := kernel.NewPopulation(kernel.DefaultEngineConfig(), kernel.NewRandomSource())
	src := pop.AddAgent(kernel.Male)
	tgt := pop.AddAgent(kernel.Female)

	ev, err := NewTransmissionEvent(src, tgt, TransmissionConfig{A: -2, B: 0, TMax: 100}, 0)
	require.NoError(t, err)
	require.False(t, ev.IsUseless(pop))

	ev.MarkInfected()
	require.True(t, ev.IsUseless(pop))
}

func TestTransmissionEvent_IntervalInverseRoundTrips(t *testing.T) {
	pop := kernel.NewPopulation(kernel.DefaultEngineConfig(), kernel.NewRandomSource())
	src := pop.AddAgent(kernel.Male)
	tgt := pop.AddAgent(kernel.Female)

	ev, err := NewTransmissionEvent(src, tgt, TransmissionConfig{A: -1, B: 0.05, TMax: 200}, 0)
	require.NoError(t, err)
	deltaTau := ev.CalculateInternalTimeInterval(pop, 0, 10)
	dt := ev.SolveForRealTimeInterval(pop, deltaTau, 0)
	require.InDelta(t, 10, dt, 1e-6)
}

func TestNewTransmissionEvent_RejectsNonPositiveTMax(t *testing.T) {
	pop := kernel.NewPopulation(kernel.DefaultEngineConfig(), kernel.NewRandomSource())
	src := pop.AddAgent(kernel.Male)
	tgt := pop.AddAgent(kernel.Female)

	_, err := NewTransmissionEvent(src, tgt, TransmissionConfig{A: -1, B: 0, TMax: 0}, 0)
	require.Error(t, err, kernel.ExpectedErrorWhileError, "constructing a transmission event with a zero tmax")
}

func TestSeedEvent_FiresAtConfiguredTime(t *testing.T) {
	pop := kernel.NewPopulation(kernel.DefaultEngineConfig(), kernel.NewRandomSource())
	a := pop.AddAgent(kernel.Male)

	var seededAt float64
	ev := NewSeedEvent(a, 5.0)
	ev.onSeed = func(target *kernel.Agent, t float64) { seededAt = t }
	pop.OnNewEvent(ev)

	alg := kernel.NewAlgorithm(zap.NewNop())
	_, tNow, err := alg.Run(context.Background(), pop, nil)
	require.NoError(t, err)
	require.InDelta(t, 5.0, tNow, 1e-9)
	require.InDelta(t, 5.0, seededAt, 1e-9)
}

func TestPeriodicLoggingEvent_ReschedulesAfterEachTick(t *testing.T) {
	pop := kernel.NewPopulation(kernel.DefaultEngineConfig(), kernel.NewRandomSource())

	ticks := 0
	onTick := func(pop *kernel.Population, t float64) {
		ticks++
	}
	ev := NewPeriodicLoggingEvent(1.0, onTick)
	pop.OnNewEvent(ev)

	alg := kernel.NewAlgorithm(zap.NewNop())
	_, _, err := alg.Run(context.Background(), pop, func(p *kernel.Population) bool {
		return ticks >= 3
	})
	require.NoError(t, err)
	require.GreaterOrEqual(t, ticks, 3)
}
