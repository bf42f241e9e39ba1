package contagiongo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPopulation_AddAgent_PartitionsStayContiguous(t *testing.T) {
	pop := NewPopulation(DefaultEngineConfig(), NewRandomSource())

	m1 := pop.AddAgent(Male)
	m2 := pop.AddAgent(Male)
	w1 := pop.AddAgent(Female)
	m3 := pop.AddAgent(Male)
	w2 := pop.AddAgent(Female)

	require.Equal(t, 3, pop.numMales, UnequalIntParameterError, "male count", 3, pop.numMales)
	require.Equal(t, 2, pop.numFemales, UnequalIntParameterError, "female count", 2, pop.numFemales)
	for _, a := range []*Agent{m1, m2, m3} {
		require.Equal(t, Male, pop.members[a.listIndex].kind)
	}
	for _, a := range []*Agent{w1, w2} {
		require.Equal(t, Female, pop.members[a.listIndex].kind)
	}
	for i, a := range pop.members {
		require.Equal(t, i, a.listIndex, "agent %d", a.id)
	}
}

func TestPopulation_MarkDied_SwapWithLast(t *testing.T) {
	pop := NewPopulation(DefaultEngineConfig(), NewRandomSource())

	m1 := pop.AddAgent(Male)
	pop.AddAgent(Male)
	pop.AddAgent(Male)
	pop.AddAgent(Female)
	pop.AddAgent(Female)

	pop.MarkDied(m1, 1.0)

	require.Equal(t, 2, pop.numMales)
	require.Equal(t, 2, pop.numFemales)
	require.True(t, m1.IsDead())
	require.Equal(t, -1, m1.listIndex)
	require.Equal(t, 1.0, m1.TimeOfDeath())

	for i, a := range pop.members {
		require.Equal(t, i, a.listIndex)
	}
	require.Contains(t, pop.Deceased(), m1)
}

func TestPopulation_MarkDied_AlreadyDeadPanics(t *testing.T) {
	pop := NewPopulation(DefaultEngineConfig(), NewRandomSource())
	m1 := pop.AddAgent(Male)
	pop.MarkDied(m1, 1.0)

	require.Panics(t, func() {
		pop.MarkDied(m1, 2.0)
	})
}

func TestAgentEventSet_Earliest_BreaksTiesByID(t *testing.T) {
	pop := NewPopulation(DefaultEngineConfig(), NewRandomSource())
	a := pop.AddAgent(Male)

	e1 := pop.OnNewEvent(newConstantHazardEvent(1, a))
	e2 := pop.OnNewEvent(newConstantHazardEvent(1, a))
	a.events.ProcessUnsorted(pop, 0)
	e1.tFire, e2.tFire = 5.0, 5.0

	earliest, ok := a.events.Earliest()
	require.True(t, ok)
	require.Equal(t, e1.eventID, earliest.eventID)
	require.Less(t, e1.eventID, e2.eventID)
}

func TestConstantHazardEvent_IntervalInverseRoundTrips(t *testing.T) {
	pop := NewPopulation(DefaultEngineConfig(), NewRandomSource())
	a := pop.AddAgent(Male)
	impl := newConstantHazardEvent(2.0, a)

	deltaTau := impl.CalculateInternalTimeInterval(pop, 0, 3.0)
	dt := impl.SolveForRealTimeInterval(pop, deltaTau, 0)
	require.InDelta(t, 3.0, dt, 1e-9)
}
