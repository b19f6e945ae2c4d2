package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists analysis runs to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger zerolog.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so external tooling can read while the bot writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: logger.With().Str("component", "recorder").Logger()}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS analysis_runs (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id        TEXT NOT NULL,
			timestamp     INTEGER NOT NULL,
			mode          TEXT,
			symbol        TEXT,
			vs_currency   TEXT,
			current_price REAL,
			trend         TEXT,
			range_status  TEXT,
			action        TEXT,
			strategy_type TEXT,
			range_low     REAL,
			range_high    REAL,
			grid_count    INTEGER,
			capital       REAL,
			delivered     INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON analysis_runs(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_symbol ON analysis_runs(symbol)`,
	}
	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun inserts one analysis run. Nil numeric fields are stored as
// SQL NULL.
func (r *SQLiteRecorder) RecordRun(run *AnalysisRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := run.CreatedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := r.db.Exec(`INSERT INTO analysis_runs
		(run_id, timestamp, mode, symbol, vs_currency, current_price, trend,
		 range_status, action, strategy_type, range_low, range_high, grid_count, capital, delivered)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		run.RunID, ts.Unix(), run.Mode, run.Symbol, run.VsCurrency,
		run.CurrentPrice, run.Trend, run.RangeStatus, run.Action, run.StrategyType,
		nullFloat(run.RangeLow), nullFloat(run.RangeHigh), nullInt(run.GridCount),
		nullFloat(run.Capital), run.Delivered,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
