package project

import (
	"errors"
	"fmt"
)

// ErrInfeasibleSchedule reports a complete schedule that violates precedence
// or resource constraints.
var ErrInfeasibleSchedule = errors.New("infeasible schedule")

// IsScheduleFeasible re-verifies precedence and normal-capacity resource
// constraints of a complete schedule from scratch.
func (p *Project) IsScheduleFeasible(sts Schedule) bool {
	return p.CheckSchedule(sts, nil) == nil
}

// CheckSchedule validates a complete schedule against precedence and resource
// constraints where each resource may exceed its capacity by slack[r]. A nil
// slack means normal capacity only. The returned error names the first
// violation found.
func (p *Project) CheckSchedule(sts Schedule, slack []int) error {
	if len(sts) != p.numJobs {
		return fmt.Errorf("%w: length must be %d (got %d)", ErrInfeasibleSchedule, p.numJobs, len(sts))
	}
	for j, t := range sts {
		if t < 0 {
			return fmt.Errorf("%w: job %d has no valid start time (%d)", ErrInfeasibleSchedule, j, t)
		}
	}
	for i := 0; i < p.numJobs; i++ {
		for _, j := range p.succs[i] {
			if sts[i]+p.durations[i] > sts[j] {
				return fmt.Errorf("%w: job %d finishes at %d after successor %d starts at %d",
					ErrInfeasibleSchedule, i, sts[i]+p.durations[i], j, sts[j])
			}
		}
	}
	usage := p.ResourceProfile(sts)
	for r := 0; r < p.numRes; r++ {
		limit := p.capacities[r]
		if slack != nil {
			limit += slack[r]
		}
		for t, u := range usage[r] {
			if u > limit {
				return fmt.Errorf("%w: resource %d uses %d > %d in period %d", ErrInfeasibleSchedule, r, u, limit, t)
			}
		}
	}
	return nil
}

// ResourceProfile returns the demand in use per resource and period for the
// scheduled jobs of sts. Rows span periods 0..LastFinish(sts).
func (p *Project) ResourceProfile(sts Schedule) [][]int {
	last := p.LastFinish(sts)
	usage := make([][]int, p.numRes)
	for r := range usage {
		usage[r] = make([]int, last+1)
	}
	for j, t := range sts {
		if t == Unscheduled {
			continue
		}
		for r := 0; r < p.numRes; r++ {
			k := p.demands[j][r]
			if k == 0 {
				continue
			}
			for tau := t + 1; tau <= t+p.durations[j]; tau++ {
				usage[r][tau] += k
			}
		}
	}
	return usage
}
