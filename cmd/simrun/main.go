// Command simrun loads an engine configuration, builds a small
// demonstration population wired up with mortality, transmission, seed, and
// periodic-logging events, and runs the dispatch loop to termination,
// draining birth/death/transmission/periodic records into a DataLogger as
// it goes.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	kernel "github.com/kentwait/epinrm"
	"github.com/kentwait/epinrm/datalog"
	"github.com/kentwait/epinrm/events"
	"github.com/segmentio/ksuid"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML engine config (defaults baked in if omitted)")
	population := flag.Int("population", 50, "number of agents to seed the run with")
	debugLog := flag.Bool("debug", false, "use a development (console) logger instead of JSON")
	loggerType := flag.String("logger", "csv", "data logger to record births/deaths/transmissions/periodic ticks to: csv or sqlite")
	logPath := flag.String("logpath", "simrun-log", "base path for the data logger's output files")
	flag.Parse()

	log, err := kernel.NewLogger(*debugLog)
	if err != nil {
		fmt.Fprintln(os.Stderr, "building logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg := kernel.DefaultEngineConfig()
	if *configPath != "" {
		cfg, err = kernel.LoadEngineConfig(*configPath)
		if err != nil {
			log.Fatal("loading engine config", zap.Error(err))
		}
	}

	runID := ksuid.New()
	log.Info("starting run", zap.String("run_id", runID.String()), zap.Int("population", *population))

	dataLogger, err := newDataLogger(*loggerType, *logPath, log)
	if err != nil {
		log.Fatal("building data logger", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		log.Warn("received shutdown signal")
		cancel()
	}()

	births := make(chan datalog.BirthRecord, 64)
	deaths := make(chan datalog.DeathRecord, 64)
	transmissions := make(chan datalog.TransmissionRecord, 64)
	periodics := make(chan datalog.PeriodicRecord, 64)

	var writers sync.WaitGroup
	writers.Add(4)
	go func() { defer writers.Done(); dataLogger.WriteBirths(births) }()
	go func() { defer writers.Done(); dataLogger.WriteDeaths(deaths) }()
	go func() { defer writers.Done(); dataLogger.WriteTransmissions(transmissions) }()
	go func() { defer writers.Done(); dataLogger.WritePeriodic(periodics) }()

	pop := kernel.NewPopulation(cfg, kernel.NewRandomSource())
	if err := seedDemoPopulation(pop, *population, runID, births, deaths, transmissions); err != nil {
		log.Fatal("seeding demonstration population", zap.Error(err))
	}

	logTick := events.NewPeriodicLoggingEvent(5.0, func(pop *kernel.Population, t float64) {
		alive := len(pop.IterateAlive())
		log.Info("tick", zap.Float64("t", t), zap.Int("alive", alive))
		periodics <- datalog.PeriodicRecord{RunID: runID, At: t, PopulationSize: alive}
	})
	pop.OnNewEvent(logTick)

	alg := kernel.NewAlgorithm(log)
	reason, tNow, err := alg.Run(ctx, pop, func(p *kernel.Population) bool {
		return len(p.IterateAlive()) == 0
	})

	close(births)
	close(deaths)
	close(transmissions)
	close(periodics)
	writers.Wait()

	if err != nil {
		log.Fatal("run failed", zap.Error(err))
	}
	log.Info("run finished", zap.String("reason", reason.String()), zap.Float64("t_now", tNow))
}

// newDataLogger builds the concrete DataLogger named by kind, rooted at
// basepath. An sqlite logger has its per-run tables created up front.
func newDataLogger(kind, basepath string, log *zap.Logger) (datalog.DataLogger, error) {
	switch kind {
	case "csv":
		return datalog.NewCSVLogger(basepath, 0), nil
	case "sqlite":
		l := datalog.NewSQLiteLogger(basepath, 0, log)
		if err := l.Init(); err != nil {
			return nil, err
		}
		return l, nil
	default:
		return nil, fmt.Errorf("unknown logger %q: want csv or sqlite", kind)
	}
}

// seedDemoPopulation adds n agents, alternating gender, each with a
// mortality event, and infects the first one with a seed event followed by
// a transmission event aimed at its successor. Every birth, death,
// transmission, and seed is recorded onto the given channels.
func seedDemoPopulation(
	pop *kernel.Population,
	n int,
	runID ksuid.KSUID,
	births chan<- datalog.BirthRecord,
	deaths chan<- datalog.DeathRecord,
	transmissions chan<- datalog.TransmissionRecord,
) error {
	agents := make([]*kernel.Agent, 0, n)
	for i := 0; i < n; i++ {
		kind := kernel.Male
		if i%2 == 1 {
			kind = kernel.Female
		}
		a := pop.AddAgent(kind)
		agents = append(agents, a)
		births <- datalog.BirthRecord{RunID: runID, AgentID: a.ID(), Kind: kind.String(), At: 0}

		mortality, err := events.NewMortalityEvent(a, events.MortalityConfig{Shape: 1.5, Scale: 40}, 0)
		if err != nil {
			return err
		}
		mortality.SetOnDeath(func(agent *kernel.Agent) {
			deaths <- datalog.DeathRecord{RunID: runID, AgentID: agent.ID(), At: agent.TimeOfDeath()}
		})
		pop.OnNewEvent(mortality)
	}
	if len(agents) >= 2 {
		seed := events.NewSeedEvent(agents[0], 0)
		seed.SetOnSeed(func(target *kernel.Agent, t float64) {
			transmissions <- datalog.TransmissionRecord{RunID: runID, SourceID: -1, TargetID: target.ID(), At: t}
		})
		pop.OnNewEvent(seed)

		transmission, err := events.NewTransmissionEvent(agents[0], agents[1], events.TransmissionConfig{A: -2, B: 0.02, TMax: 200}, 0)
		if err != nil {
			return err
		}
		transmission.SetOnTransmit(func(source, target *kernel.Agent, t float64) {
			transmissions <- datalog.TransmissionRecord{RunID: runID, SourceID: source.ID(), TargetID: target.ID(), At: t}
		})
		pop.OnNewEvent(transmission)
	}
	return nil
}
