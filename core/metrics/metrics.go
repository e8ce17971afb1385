package metrics

import "time"

// SolveEvent summarizes one finished solver run.
type SolveEvent struct {
	RunID    string
	Instance string
	Status   string
	Profit   float64
	Makespan int
	// OvertimeCost is the overtime part of the objective.
	OvertimeCost float64
	Nodes        int64
	Bounded      int64
	Duration     time.Duration
	Time         time.Time
}

// MetricsSink records solver runs for observability purposes.
type MetricsSink interface {
	RecordSolve(ev SolveEvent) error
}

// ProgressEvent is a snapshot of a running search.
type ProgressEvent struct {
	RunID    string
	Instance string
	Nodes    int64
	Bounded  int64
	// Incumbent is the best profit so far, -Inf before the first schedule.
	Incumbent float64
	Elapsed   time.Duration
	Time      time.Time
}

// ProgressRecorder is implemented by sinks able to follow a running search.
type ProgressRecorder interface {
	RecordProgress(ev ProgressEvent) error
}

// Closer is implemented by sinks holding connections.
type Closer interface {
	Close() error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordSolve(SolveEvent) error       { return nil }
func (NopSink) RecordProgress(ProgressEvent) error { return nil }
