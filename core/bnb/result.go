package bnb

import (
	"math"
	"time"

	"github.com/kilianp07/rcpspoc/core/project"
)

// NoSolution is the profit reported when the search found no feasible
// schedule. It differs from the internal starting lower bound.
var NoSolution = math.Inf(-1)

// initialLowerBound is the incumbent profit before any leaf was reached.
const initialLowerBound = -math.MaxFloat64

// Status classifies how a search ended.
type Status int

const (
	// StatusOptimal means the tree was fully explored.
	StatusOptimal Status = iota
	// StatusTruncated means a node or time budget stopped the search.
	StatusTruncated
	// StatusInfeasible means the tree was fully explored without a leaf.
	StatusInfeasible
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusTruncated:
		return "truncated"
	case StatusInfeasible:
		return "infeasible"
	default:
		return "unknown"
	}
}

// Result is the outcome of one branch-and-bound run.
type Result struct {
	RunID    string
	Instance string
	Schedule project.Schedule
	Profit   float64
	Status   Status
	// Nodes counts visited search nodes, Bounded the fathomed branches.
	Nodes    int64
	Bounded  int64
	Duration time.Duration
}

// Found reports whether the result carries a schedule.
func (r Result) Found() bool { return r.Schedule != nil }
