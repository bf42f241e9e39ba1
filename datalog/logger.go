// Package datalog provides channel-fed CSV/SQLite sinks for the kernel's
// domain: agent lifecycle and event-firing rows, keyed by a per-run KSUID.
package datalog

import "github.com/segmentio/ksuid"

// BirthRecord is emitted when an agent enters the population.
type BirthRecord struct {
	RunID   ksuid.KSUID
	AgentID int64
	Kind    string
	At      float64
}

// DeathRecord is emitted when MarkDied removes an agent from the registry.
type DeathRecord struct {
	RunID   ksuid.KSUID
	AgentID int64
	At      float64
}

// TransmissionRecord is emitted when a transmission event fires.
type TransmissionRecord struct {
	RunID    ksuid.KSUID
	SourceID int64
	TargetID int64
	At       float64
}

// PeriodicRecord is emitted by a periodic logging event's tick.
type PeriodicRecord struct {
	RunID          ksuid.KSUID
	At             float64
	PopulationSize int
}

// DataLogger is the sink concrete events write rows to: one channel-
// consuming Write* method per record kind.
type DataLogger interface {
	WriteBirths(c <-chan BirthRecord)
	WriteDeaths(c <-chan DeathRecord)
	WriteTransmissions(c <-chan TransmissionRecord)
	WritePeriodic(c <-chan PeriodicRecord)
}
