package bnb

import (
	"context"
	"sort"
	"time"

	"github.com/kilianp07/rcpspoc/core/logger"
	"github.com/kilianp07/rcpspoc/core/overtime"
	"github.com/kilianp07/rcpspoc/core/project"
)

// search holds the state of one run. The partial schedule and residual
// profile are shared by every node: a child commits its job before
// recursing and releases it on return.
type search struct {
	m     *overtime.Model
	opts  Options
	ctx   context.Context
	zmax  []int
	sink  int
	runID string

	lb        float64
	candidate project.Schedule

	nodes     int64
	bounded   int64
	truncated bool
	start     time.Time

	log     logger.Logger
	publish func(Event)
}

// branch is one child of a node: job j started at t.
type branch struct {
	j, t  int
	bound float64
}

func (s *search) exhausted() bool {
	if s.truncated {
		return true
	}
	if s.opts.NodeLimit > 0 && s.nodes >= s.opts.NodeLimit {
		s.truncated = true
		return true
	}
	if s.nodes&0xff == 0 && s.ctx.Err() != nil {
		s.truncated = true
		return true
	}
	return false
}

func (s *search) node(sts project.Schedule, rr *project.Residual) error {
	if s.exhausted() {
		return nil
	}
	s.nodes++
	if s.opts.ProgressInterval > 0 && s.nodes%s.opts.ProgressInterval == 0 {
		s.log.Debugw("bnb: progress", map[string]any{
			"run_id":    s.runID,
			"nodes":     s.nodes,
			"bounded":   s.bounded,
			"incumbent": s.lb,
		})
		s.emit(EventProgress)
	}

	eligible, onlySink, err := s.eligible(sts)
	if err != nil {
		return err
	}
	if onlySink {
		s.leaf(sts, rr)
		return nil
	}
	if s.opts.TightBound && s.m.TightBound(sts, rr) <= s.lb {
		s.bounded++
		return nil
	}

	branches := s.branches(sts, rr, eligible)
	sort.SliceStable(branches, func(a, b int) bool {
		return branches[a].bound > branches[b].bound
	})
	for _, br := range branches {
		// the incumbent may have improved since the bound was computed
		if br.bound <= s.lb {
			s.bounded++
			continue
		}
		sts[br.j] = br.t
		s.m.Commit(rr, br.j, br.t)
		err := s.node(sts, rr)
		s.m.Release(rr, br.j, br.t)
		sts[br.j] = project.Unscheduled
		if err != nil {
			return err
		}
		if s.truncated {
			return nil
		}
	}
	return nil
}

// eligible lists the unscheduled jobs whose predecessors are all scheduled.
// onlySink is set when the sink is the last job left.
func (s *search) eligible(sts project.Schedule) (jobs []int, onlySink bool, err error) {
	remaining := 0
	for j, t := range sts {
		if t != project.Unscheduled {
			continue
		}
		remaining++
		if s.m.AllPredsScheduled(sts, j) {
			jobs = append(jobs, j)
		}
	}
	if len(jobs) == 0 {
		return nil, false, ErrNoEligibleJob
	}
	return jobs, remaining == 1 && jobs[0] == s.sink, nil
}

func (s *search) leaf(sts project.Schedule, rr *project.Residual) {
	ms := s.m.LastFinish(sts)
	profit := s.m.Revenue(ms) - s.m.TotalCosts(rr)
	if profit <= s.lb {
		return
	}
	s.lb = profit
	s.candidate = sts.Clone()
	s.candidate[s.sink] = ms
	s.log.Infof("bnb: %s new incumbent profit=%.4f makespan=%d after %d nodes", s.m.Name(), profit, ms, s.nodes)
	s.emit(EventIncumbent)
}

// branches enumerates the start times of every eligible job. Start times run
// from the last predecessor finish until the job fits in normal capacity or
// reaches the last finish of the scheduled jobs. With fathoming a start
// earlier than the latest committed start is skipped.
func (s *search) branches(sts project.Schedule, rr *project.Residual, eligible []int) []branch {
	latest, hasLatest := project.LatestStart(sts)
	lastFinish := s.m.LastFinish(sts)
	var out []branch
	for _, j := range eligible {
		open, skipped := 0, false
		for t := s.m.LastPredFinish(sts, j); ; t++ {
			withOT, normal := s.m.CheckFit(rr, j, t, s.zmax)
			dominated := s.opts.Fathoming && hasLatest && t < latest
			if withOT && dominated {
				skipped = true
			}
			if withOT && !dominated {
				open++
				sts[j] = t
				s.m.Commit(rr, j, t)
				bound := s.m.CheapBound(sts, rr)
				s.m.Release(rr, j, t)
				sts[j] = project.Unscheduled
				if bound > s.lb {
					out = append(out, branch{j: j, t: t, bound: bound})
				} else {
					s.bounded++
				}
			}
			if normal || t >= lastFinish {
				break
			}
		}
		if open == 0 && skipped {
			s.bounded++
		}
	}
	return out
}

func (s *search) emit(kind EventKind) {
	if s.publish == nil {
		return
	}
	profit := s.lb
	if s.candidate == nil {
		profit = NoSolution
	}
	s.publish(Event{
		RunID:    s.runID,
		Instance: s.m.Name(),
		Kind:     kind,
		Nodes:    s.nodes,
		Bounded:  s.bounded,
		Profit:   profit,
		Elapsed:  time.Since(s.start),
	})
}
