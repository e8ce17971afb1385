package bnb

import (
	"fmt"
	"time"
)

// Options tunes a branch-and-bound run.
type Options struct {
	// NodeLimit stops the search after this many nodes. Zero means no limit.
	NodeLimit int64 `json:"node_limit"`
	// TimeLimit stops the search after this wall-clock duration. Zero means
	// no limit beyond the caller's context.
	TimeLimit time.Duration `json:"time_limit"`
	// Fathoming skips candidate start times earlier than the latest start
	// already committed. Without overtime this keeps every active schedule
	// reachable. The rule filters single candidates, not whole jobs whose
	// earliest feasible start lies before that latest start, and candidates
	// of all eligible jobs are ordered together. Node and bounded counts
	// therefore differ from a per-job filter on the same instance.
	Fathoming bool `json:"fathoming"`
	// TightBound evaluates the missing-demand bound at every inner node.
	TightBound bool `json:"tight_bound"`
	// WarmStart seeds the incumbent with the better of the plain and the
	// overtime serial SGS on the topological order.
	WarmStart bool `json:"warm_start"`
	// ProgressInterval publishes a progress event every this many nodes.
	// Zero disables progress events.
	ProgressInterval int64 `json:"progress_interval"`
}

// DefaultOptions enables fathoming with the cheap bound only and sets no
// limits.
func DefaultOptions() Options {
	return Options{Fathoming: true, ProgressInterval: 100000}
}

// Validate rejects negative limits.
func (o Options) Validate() error {
	if o.NodeLimit < 0 {
		return fmt.Errorf("node_limit must be >= 0 (got %d)", o.NodeLimit)
	}
	if o.TimeLimit < 0 {
		return fmt.Errorf("time_limit must be >= 0 (got %s)", o.TimeLimit)
	}
	if o.ProgressInterval < 0 {
		return fmt.Errorf("progress_interval must be >= 0 (got %d)", o.ProgressInterval)
	}
	return nil
}
