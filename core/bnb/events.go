package bnb

import "time"

// EventKind tags the events a running search publishes.
type EventKind string

const (
	EventProgress  EventKind = "progress"
	EventIncumbent EventKind = "incumbent"
	EventDone      EventKind = "done"
)

// Event is published on the solver's event bus while a search runs.
type Event struct {
	RunID    string
	Instance string
	Kind     EventKind
	Nodes    int64
	Bounded  int64
	// Profit is the incumbent profit, NoSolution before the first leaf.
	Profit  float64
	Elapsed time.Duration
}
