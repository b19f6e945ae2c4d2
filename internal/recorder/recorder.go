package recorder

import "time"

// AnalysisRun is the audit record of one pipeline invocation. It is
// write-only history: no later run reads it back.
type AnalysisRun struct {
	RunID        string
	Mode         string
	Symbol       string
	VsCurrency   string
	CurrentPrice float64
	Trend        string
	RangeStatus  string
	Action       string
	StrategyType string
	RangeLow     *float64
	RangeHigh    *float64
	GridCount    *int
	Capital      *float64
	Delivered    bool
	CreatedAt    time.Time
}

// Recorder persists analysis history for offline inspection.
type Recorder interface {
	RecordRun(run *AnalysisRun) error
	Close() error
}

// NoopRecorder is used when no database path is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRun(_ *AnalysisRun) error { return nil }
func (n *NoopRecorder) Close() error                   { return nil }
