// Package bnb finds profit-maximizing schedules for projects with overtime
// by depth-first branch and bound over partial schedules.
package bnb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/rcpspoc/core/logger"
	"github.com/kilianp07/rcpspoc/core/overtime"
	"github.com/kilianp07/rcpspoc/core/project"
	"github.com/kilianp07/rcpspoc/internal/eventbus"
)

// ErrNoEligibleJob is returned when a node has unscheduled jobs but none of
// them has all predecessors scheduled.
var ErrNoEligibleJob = project.ErrNoEligibleJob

// ErrNilModel is returned by Solve when no model is given.
var ErrNilModel = errors.New("bnb: nil model")

// Solver runs branch-and-bound searches. A Solver keeps no state between
// runs and can be shared by concurrent callers.
type Solver struct {
	opts Options
	log  logger.Logger
	bus  *eventbus.TypedBus[Event]
}

// New creates a solver. A nil logger discards output.
func New(opts Options, log logger.Logger) *Solver {
	if log == nil {
		log = logger.Nop{}
	}
	return &Solver{opts: opts, log: log}
}

// SetEventBus attaches a bus receiving progress, incumbent and completion
// events. Delivery is non-blocking so a slow subscriber never stalls the
// search.
func (s *Solver) SetEventBus(bus *eventbus.TypedBus[Event]) { s.bus = bus }

// Options returns the options the solver was created with.
func (s *Solver) Options() Options { return s.opts }

// Solve searches for the schedule of maximum profit. The result carries the
// best schedule found and StatusTruncated when a node limit, the time limit
// or ctx stopped the search early.
func (s *Solver) Solve(ctx context.Context, m *overtime.Model) (Result, error) {
	if m == nil {
		return Result{}, ErrNilModel
	}
	if err := s.opts.Validate(); err != nil {
		return Result{}, fmt.Errorf("bnb: %w", err)
	}
	if s.opts.TimeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.TimeLimit)
		defer cancel()
	}

	st := &search{
		m:     m,
		opts:  s.opts,
		ctx:   ctx,
		zmax:  m.ZMaxes(),
		sink:  m.Sink(),
		runID: uuid.NewString(),
		lb:    initialLowerBound,
		start: time.Now(),
		log:   s.log,
	}
	if s.bus != nil {
		st.publish = s.bus.Publish
	}
	if s.opts.WarmStart {
		s.warmStart(st)
	}

	s.log.Infof("bnb: solving %s (%d jobs, %d resources, horizon %d)", m.Name(), m.NumJobs(), m.NumRes(), m.Horizon())
	sts := project.NewPartial(m.NumJobs())
	sts[0] = 0
	rr := m.NewResidual()
	err := st.node(sts, rr)
	st.emit(EventDone)

	res := Result{
		RunID:    st.runID,
		Instance: m.Name(),
		Nodes:    st.nodes,
		Bounded:  st.bounded,
		Duration: time.Since(st.start),
		Profit:   NoSolution,
	}
	if st.candidate != nil {
		res.Schedule = st.candidate
		res.Profit = st.lb
	}
	switch {
	case st.truncated:
		res.Status = StatusTruncated
	case st.candidate == nil:
		res.Status = StatusInfeasible
	default:
		res.Status = StatusOptimal
	}
	if err != nil {
		return res, fmt.Errorf("bnb: %w", err)
	}
	s.log.Debugw("bnb: search finished", map[string]any{
		"run_id":   res.RunID,
		"instance": res.Instance,
		"status":   res.Status.String(),
		"profit":   res.Profit,
		"nodes":    res.Nodes,
		"bounded":  res.Bounded,
		"duration": res.Duration.String(),
	})
	s.log.Infof("bnb: %s %s profit=%.4f nodes=%d bounded=%d in %s",
		m.Name(), res.Status, res.Profit, res.Nodes, res.Bounded, res.Duration)
	return res, nil
}

// warmStart seeds the incumbent with serial SGS schedules on the
// topological order.
func (s *Solver) warmStart(st *search) {
	order := st.m.TopologicalOrder()
	decoders := []func([]int) (project.SGSResult, error){
		st.m.SerialSGS,
		st.m.SerialSGSWithOvertime,
	}
	for _, decode := range decoders {
		res, err := decode(order)
		if err != nil {
			s.log.Debugf("bnb: warm start skipped: %v", err)
			continue
		}
		if profit := st.m.ProfitOf(res.Schedule, res.Residual); profit > st.lb {
			st.lb = profit
			st.candidate = res.Schedule
		}
	}
}
