package recorder

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestSQLiteRecorderRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	r, err := NewSQLiteRecorder(dbPath, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewSQLiteRecorder: %v", err)
	}
	defer r.Close()

	low, high := 60000.0, 70000.0
	grids := 15
	if err := r.RecordRun(&AnalysisRun{
		RunID:        "run-1",
		Mode:         "new_bot",
		Symbol:       "bitcoin",
		VsCurrency:   "usdt",
		CurrentPrice: 65000,
		Trend:        "up",
		Action:       "giảm số lưới",
		RangeLow:     &low,
		RangeHigh:    &high,
		GridCount:    &grids,
		Delivered:    true,
		CreatedAt:    time.Now(),
	}); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}

	// A run with every optional field absent must store NULLs.
	if err := r.RecordRun(&AnalysisRun{RunID: "run-2", Mode: "existing_bot", Symbol: "ethereum"}); err != nil {
		t.Fatalf("RecordRun sparse: %v", err)
	}

	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM analysis_runs").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("rows = %d, want 2", count)
	}

	var gridCount sql.NullInt64
	var capital sql.NullFloat64
	if err := r.db.QueryRow("SELECT grid_count, capital FROM analysis_runs WHERE run_id = 'run-2'").Scan(&gridCount, &capital); err != nil {
		t.Fatalf("query sparse row: %v", err)
	}
	if gridCount.Valid || capital.Valid {
		t.Error("absent optional fields should be NULL")
	}

	var symbol string
	var storedGrids int
	if err := r.db.QueryRow("SELECT symbol, grid_count FROM analysis_runs WHERE run_id = 'run-1'").Scan(&symbol, &storedGrids); err != nil {
		t.Fatalf("query full row: %v", err)
	}
	if symbol != "bitcoin" || storedGrids != 15 {
		t.Errorf("stored row mismatch: symbol=%q grids=%d", symbol, storedGrids)
	}
}
