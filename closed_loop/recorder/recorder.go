// Package recorder stores a per-tick diagnostic trace of a run in SQLite.
package recorder

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"

	// SQLite driver.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// TickRow is one control tick.
type TickRow struct {
	Tick        int
	DebugStep   int
	RateLimited bool
	Accel       float64
	Steer       float64
	Pending     string
	Messages    int
}

// MessageRow is one emitted frame.
type MessageRow struct {
	Tick  int
	Seq   int
	Kind  string
	Bus   int
	CANID uint32
}

const defaultBatchSize = 10000

// Recorder buffers rows and writes them in batches. It is flushed on
// process exit through atexit.
type Recorder struct {
	mu sync.Mutex
	db *sql.DB

	path      string
	runID     string
	batchSize int
	ticks     []TickRow
	messages  []MessageRow
}

// Open creates <prefix>_<run id>.sqlite3. The file must not exist yet.
func Open(prefix string) (*Recorder, error) {
	runID := xid.New().String()
	if prefix == "" {
		prefix = "scc_trace"
	}
	path := prefix + "_" + runID + ".sqlite3"
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("file %s already exists", path)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	r := &Recorder{db: db, path: path, runID: runID, batchSize: defaultBatchSize}
	if err := r.createTables(); err != nil {
		_ = db.Close()
		return nil, err
	}

	atexit.Register(func() { _ = r.Flush() })
	return r, nil
}

func (r *Recorder) createTables() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS ticks (
	run_id TEXT,
	tick INTEGER,
	debug_step INTEGER,
	rate_limited INTEGER,
	accel REAL,
	steer REAL,
	pending TEXT,
	messages INTEGER
);`,
		`CREATE TABLE IF NOT EXISTS messages (
	run_id TEXT,
	tick INTEGER,
	seq INTEGER,
	kind TEXT,
	bus INTEGER,
	can_id INTEGER
);`,
	}
	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	return nil
}

func (r *Recorder) RunID() string { return r.runID }
func (r *Recorder) Path() string  { return r.path }

// DB exposes the connection for readers.
func (r *Recorder) DB() *sql.DB { return r.db }

// Record buffers one tick and its frames.
func (r *Recorder) Record(tick TickRow, msgs []MessageRow) error {
	r.mu.Lock()
	r.ticks = append(r.ticks, tick)
	r.messages = append(r.messages, msgs...)
	full := len(r.ticks)+len(r.messages) >= r.batchSize
	r.mu.Unlock()

	if full {
		return r.Flush()
	}
	return nil
}

// Flush writes all buffered rows in one transaction.
func (r *Recorder) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.db == nil || (len(r.ticks) == 0 && len(r.messages) == 0) {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := r.write(tx); err != nil {
		return errors.Join(err, tx.Rollback())
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	r.ticks = r.ticks[:0]
	r.messages = r.messages[:0]
	return nil
}

func (r *Recorder) write(tx *sql.Tx) error {
	tickStmt, err := tx.Prepare(`INSERT INTO ticks VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare ticks: %w", err)
	}
	defer tickStmt.Close()

	for _, t := range r.ticks {
		_, err := tickStmt.Exec(r.runID, t.Tick, t.DebugStep, t.RateLimited, t.Accel, t.Steer, t.Pending, t.Messages)
		if err != nil {
			return fmt.Errorf("insert tick %d: %w", t.Tick, err)
		}
	}

	msgStmt, err := tx.Prepare(`INSERT INTO messages VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare messages: %w", err)
	}
	defer msgStmt.Close()

	for _, m := range r.messages {
		_, err := msgStmt.Exec(r.runID, m.Tick, m.Seq, m.Kind, m.Bus, int64(m.CANID))
		if err != nil {
			return fmt.Errorf("insert message %d/%d: %w", m.Tick, m.Seq, err)
		}
	}
	return nil
}

// Close flushes and closes the database.
func (r *Recorder) Close() error {
	ferr := r.Flush()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.db == nil {
		return ferr
	}
	cerr := r.db.Close()
	r.db = nil
	return errors.Join(ferr, cerr)
}
