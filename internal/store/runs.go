// Package store persists learning-run history to SQLite: one row per run
// with its configuration and final weights, one row per cutting-plane
// iteration with loss, error and slack. The learner reports through the
// narrow learn.Recorder interface so the core never touches SQL.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// RunStore keeps learning-run history in a SQLite file.
type RunStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open opens (and if needed initializes) the run store.
func Open(path string, logger *zap.Logger) (*RunStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	s := &RunStore{db: db, logger: logger}
	if err := s.initializeSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *RunStore) initializeSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL,
		finished_at INTEGER,
		config TEXT NOT NULL,
		outcome TEXT,
		weights TEXT
	);
	CREATE TABLE IF NOT EXISTS iterations (
		run_id TEXT NOT NULL REFERENCES runs(id),
		iter INTEGER NOT NULL,
		loss REAL NOT NULL,
		error REAL NOT NULL,
		slack REAL NOT NULL,
		PRIMARY KEY (run_id, iter)
	);`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("store: initialize schema: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *RunStore) Close() error { return s.db.Close() }

// Run is one recorded learning run. It implements learn.Recorder.
type Run struct {
	store *RunStore
	id    string
}

// ID returns the run's identifier.
func (r *Run) ID() string { return r.id }

// BeginRun inserts a new run row and returns its recorder.
func (s *RunStore) BeginRun(cfg any) (*Run, error) {
	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("store: marshal config: %w", err)
	}
	id := uuid.NewString()
	_, err = s.db.Exec(`INSERT INTO runs (id, started_at, config) VALUES (?, ?, ?)`,
		id, time.Now().UnixMilli(), string(cfgJSON))
	if err != nil {
		return nil, fmt.Errorf("store: begin run: %w", err)
	}
	s.logger.Debug("run started", zap.String("run_id", id))
	return &Run{store: s, id: id}, nil
}

// RecordIteration stores one cutting-plane iteration. Storage failures are
// logged and swallowed: history is best effort and must not abort a
// learning run.
func (r *Run) RecordIteration(iter int, loss, errVal, slack float64) {
	_, err := r.store.db.Exec(
		`INSERT INTO iterations (run_id, iter, loss, error, slack) VALUES (?, ?, ?, ?, ?)`,
		r.id, iter, loss, errVal, slack)
	if err != nil {
		r.store.logger.Warn("failed to record iteration",
			zap.String("run_id", r.id),
			zap.Int("iter", iter),
			zap.Error(err))
	}
}

// Finish marks the run complete with its outcome and final weights.
func (r *Run) Finish(outcome string, weights []float64) error {
	wJSON, err := json.Marshal(weights)
	if err != nil {
		return fmt.Errorf("store: marshal weights: %w", err)
	}
	_, err = r.store.db.Exec(
		`UPDATE runs SET finished_at = ?, outcome = ?, weights = ? WHERE id = ?`,
		time.Now().UnixMilli(), outcome, string(wJSON), r.id)
	if err != nil {
		return fmt.Errorf("store: finish run: %w", err)
	}
	return nil
}

// IterationCount returns how many iterations were recorded for a run.
func (s *RunStore) IterationCount(runID string) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM iterations WHERE run_id = ?`, runID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("store: count iterations: %w", err)
	}
	return n, nil
}
