package datalog

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// SQLiteLogger is a DataLogger that writes each record kind to its own
// SQLite database: one table per run (suffixed with the run number so
// successive runs don't collide), opened with a WAL + EXCLUSIVE locking
// connection string and written inside a single transaction per channel
// drain.
type SQLiteLogger struct {
	birthPath        string
	deathPath        string
	transmissionPath string
	periodicPath     string
	run              int
	log              *zap.Logger
}

// NewSQLiteLogger builds a SQLiteLogger whose four database files are
// derived from basepath, the same way CSVLogger derives its file set.
func NewSQLiteLogger(basepath string, run int, log *zap.Logger) *SQLiteLogger {
	l := &SQLiteLogger{run: run, log: log}
	l.SetBasePath(basepath, run)
	return l
}

// SetBasePath (re)derives this logger's four database paths from basepath.
func (l *SQLiteLogger) SetBasePath(basepath string, run int) {
	if info, err := os.Stat(basepath); err == nil && info.IsDir() {
		basepath += fmt.Sprintf("run.%03d", run)
	}
	trimmed := strings.TrimSuffix(basepath, ".")
	l.birthPath = trimmed + fmt.Sprintf(".%s.db", "birth")
	l.deathPath = trimmed + fmt.Sprintf(".%s.db", "death")
	l.transmissionPath = trimmed + fmt.Sprintf(".%s.db", "trans")
	l.periodicPath = trimmed + fmt.Sprintf(".%s.db", "periodic")
	l.run = run
}

// Init creates this run's table in each of the four databases.
func (l *SQLiteLogger) Init() error {
	newTable := func(path, tableName, cols string) error {
		db, err := OpenSQLiteDBOptimized(path)
		if err != nil {
			return err
		}
		defer db.Close()
		fullTableName := fmt.Sprintf("%s%03d", tableName, l.run)
		stmt := fmt.Sprintf("create table %s %s;", fullTableName, cols)
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("%q: %s", err, stmt)
		}
		return nil
	}

	if err := newTable(l.birthPath, "Birth", "(id integer not null primary key, agentID integer, kind text, t real)"); err != nil {
		return err
	}
	if err := newTable(l.deathPath, "Death", "(id integer not null primary key, agentID integer, t real)"); err != nil {
		return err
	}
	if err := newTable(l.transmissionPath, "Transmission", "(id integer not null primary key, sourceID integer, targetID integer, t real)"); err != nil {
		return err
	}
	if err := newTable(l.periodicPath, "Periodic", "(id integer not null primary key, t real, popSize integer)"); err != nil {
		return err
	}
	return nil
}

func (l *SQLiteLogger) WriteBirths(c <-chan BirthRecord) {
	tableName := fmt.Sprintf("Birth%03d", l.run)
	db, err := OpenSQLiteDBOptimized(l.birthPath)
	if err != nil {
		l.log.Error("opening birth database", zap.Error(err))
		return
	}
	defer db.Close()
	tx, err := db.Begin()
	if err != nil {
		l.log.Error("beginning birth transaction", zap.Error(err))
		return
	}
	stmt, err := tx.Prepare("insert into " + tableName + "(agentID, kind, t) values(?, ?, ?)")
	if err != nil {
		l.log.Error("preparing birth statement", zap.Error(err))
		return
	}
	defer stmt.Close()
	for r := range c {
		if _, err := stmt.Exec(r.AgentID, r.Kind, r.At); err != nil {
			l.log.Error("writing birth row", zap.Error(err))
			return
		}
	}
	tx.Commit()
}

func (l *SQLiteLogger) WriteDeaths(c <-chan DeathRecord) {
	tableName := fmt.Sprintf("Death%03d", l.run)
	db, err := OpenSQLiteDBOptimized(l.deathPath)
	if err != nil {
		l.log.Error("opening death database", zap.Error(err))
		return
	}
	defer db.Close()
	tx, err := db.Begin()
	if err != nil {
		l.log.Error("beginning death transaction", zap.Error(err))
		return
	}
	stmt, err := tx.Prepare("insert into " + tableName + "(agentID, t) values(?, ?)")
	if err != nil {
		l.log.Error("preparing death statement", zap.Error(err))
		return
	}
	defer stmt.Close()
	for r := range c {
		if _, err := stmt.Exec(r.AgentID, r.At); err != nil {
			l.log.Error("writing death row", zap.Error(err))
			return
		}
	}
	tx.Commit()
}

func (l *SQLiteLogger) WriteTransmissions(c <-chan TransmissionRecord) {
	tableName := fmt.Sprintf("Transmission%03d", l.run)
	db, err := OpenSQLiteDBOptimized(l.transmissionPath)
	if err != nil {
		l.log.Error("opening transmission database", zap.Error(err))
		return
	}
	defer db.Close()
	tx, err := db.Begin()
	if err != nil {
		l.log.Error("beginning transmission transaction", zap.Error(err))
		return
	}
	stmt, err := tx.Prepare("insert into " + tableName + "(sourceID, targetID, t) values(?, ?, ?)")
	if err != nil {
		l.log.Error("preparing transmission statement", zap.Error(err))
		return
	}
	defer stmt.Close()
	for r := range c {
		if _, err := stmt.Exec(r.SourceID, r.TargetID, r.At); err != nil {
			l.log.Error("writing transmission row", zap.Error(err))
			return
		}
	}
	tx.Commit()
}

func (l *SQLiteLogger) WritePeriodic(c <-chan PeriodicRecord) {
	tableName := fmt.Sprintf("Periodic%03d", l.run)
	db, err := OpenSQLiteDBOptimized(l.periodicPath)
	if err != nil {
		l.log.Error("opening periodic database", zap.Error(err))
		return
	}
	defer db.Close()
	tx, err := db.Begin()
	if err != nil {
		l.log.Error("beginning periodic transaction", zap.Error(err))
		return
	}
	stmt, err := tx.Prepare("insert into " + tableName + "(t, popSize) values(?, ?)")
	if err != nil {
		l.log.Error("preparing periodic statement", zap.Error(err))
		return
	}
	defer stmt.Close()
	for r := range c {
		if _, err := stmt.Exec(r.At, r.PopulationSize); err != nil {
			l.log.Error("writing periodic row", zap.Error(err))
			return
		}
	}
	tx.Commit()
}

// OpenSQLiteDBOptimized establishes a database connection using WAL
// journaling and exclusive locking, tuned for single-writer simulation
// output.
func OpenSQLiteDBOptimized(path string) (*sql.DB, error) {
	return OpenSQLiteDB(path, "?_journal=WAL&_locking=EXCLUSIVE&_sync=NORMAL")
}

// OpenSQLiteDB opens path with the given sqlite3 connection string suffix.
func OpenSQLiteDB(path, connectionString string) (*sql.DB, error) {
	return sql.Open("sqlite3", path+connectionString)
}
