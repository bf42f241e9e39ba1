package datalog

import (
	"bytes"
	"fmt"
	"os"
	"strings"
)

// CSVLogger is a DataLogger that appends comma-delimited rows to a set of
// per-kind files: one bytes.Buffer built up per channel drain, then
// flushed with AppendToFile.
type CSVLogger struct {
	birthPath        string
	deathPath        string
	transmissionPath string
	periodicPath     string
}

// NewCSVLogger builds a CSVLogger whose four file paths are derived from
// basepath by SetBasePath.
func NewCSVLogger(basepath string, run int) *CSVLogger {
	l := new(CSVLogger)
	l.SetBasePath(basepath, run)
	return l
}

// SetBasePath (re)derives this logger's four file paths from basepath.
func (l *CSVLogger) SetBasePath(basepath string, run int) {
	if info, err := os.Stat(basepath); err == nil && info.IsDir() {
		basepath += fmt.Sprintf("run.%03d", run)
	}
	trimmed := strings.TrimSuffix(basepath, ".")
	l.birthPath = trimmed + fmt.Sprintf(".%03d.%s.csv", run, "birth")
	l.deathPath = trimmed + fmt.Sprintf(".%03d.%s.csv", run, "death")
	l.transmissionPath = trimmed + fmt.Sprintf(".%03d.%s.csv", run, "trans")
	l.periodicPath = trimmed + fmt.Sprintf(".%03d.%s.csv", run, "periodic")
}

// WriteBirths drains c, writing <runID>,<agentID>,<kind>,<time> rows.
func (l *CSVLogger) WriteBirths(c <-chan BirthRecord) {
	const template = "%s,%d,%s,%f\n"
	var b bytes.Buffer
	for r := range c {
		b.WriteString(fmt.Sprintf(template, r.RunID.String(), r.AgentID, r.Kind, r.At))
	}
	AppendToFile(l.birthPath, b.Bytes())
}

// WriteDeaths drains c, writing <runID>,<agentID>,<time> rows.
func (l *CSVLogger) WriteDeaths(c <-chan DeathRecord) {
	const template = "%s,%d,%f\n"
	var b bytes.Buffer
	for r := range c {
		b.WriteString(fmt.Sprintf(template, r.RunID.String(), r.AgentID, r.At))
	}
	AppendToFile(l.deathPath, b.Bytes())
}

// WriteTransmissions drains c, writing <runID>,<sourceID>,<targetID>,<time> rows.
func (l *CSVLogger) WriteTransmissions(c <-chan TransmissionRecord) {
	const template = "%s,%d,%d,%f\n"
	var b bytes.Buffer
	for r := range c {
		b.WriteString(fmt.Sprintf(template, r.RunID.String(), r.SourceID, r.TargetID, r.At))
	}
	AppendToFile(l.transmissionPath, b.Bytes())
}

// WritePeriodic drains c, writing <runID>,<time>,<popSize> rows.
func (l *CSVLogger) WritePeriodic(c <-chan PeriodicRecord) {
	const template = "%s,%f,%d\n"
	var b bytes.Buffer
	for r := range c {
		b.WriteString(fmt.Sprintf(template, r.RunID.String(), r.At, r.PopulationSize))
	}
	AppendToFile(l.periodicPath, b.Bytes())
}

// AppendToFile creates path if needed and appends b to the end of it,
// syncing before returning.
func AppendToFile(path string, b []byte) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write(b); err != nil {
		return err
	}
	return f.Sync()
}
