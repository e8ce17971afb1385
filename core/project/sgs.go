package project

import (
	"errors"
	"fmt"
)

var (
	// ErrNoEligibleJob is returned by the robust SGS when no remaining job has
	// all predecessors scheduled. It indicates a malformed precedence graph.
	ErrNoEligibleJob = errors.New("no eligible job")
	// ErrOrderInfeasible reports an order that is not a permutation of the jobs
	// respecting precedence.
	ErrOrderInfeasible = errors.New("order violates precedence")
	// ErrDemandExceedsCapacity reports a job that can never be placed because
	// its demand exceeds the usable capacity of a resource.
	ErrDemandExceedsCapacity = errors.New("demand exceeds capacity")
)

// SGSResult is a schedule together with the residual profile it leaves.
type SGSResult struct {
	Schedule Schedule
	Residual *Residual
}

// SerialSGS places the jobs of a precedence-feasible order one after another
// at their earliest precedence- and resource-feasible start using normal
// capacity only.
func (p *Project) SerialSGS(order []int) (SGSResult, error) {
	return p.serialSGS(order, nil, false)
}

// SerialSGSRobust decodes an arbitrary job order: at each step it takes the
// first not yet scheduled job of order whose predecessors are all scheduled.
func (p *Project) SerialSGSRobust(order []int) (SGSResult, error) {
	return p.serialSGS(order, nil, true)
}

// SerialSGSWithSlack is the serial SGS allowing each resource to drop to
// -slack[r] below its normal capacity. It backs the overtime SGS variant.
func (p *Project) SerialSGSWithSlack(order []int, slack []int, robust bool) (SGSResult, error) {
	if len(slack) != p.numRes {
		return SGSResult{}, fmt.Errorf("%w: slack length must be %d (got %d)", ErrMalformed, p.numRes, len(slack))
	}
	return p.serialSGS(order, slack, robust)
}

func (p *Project) serialSGS(order []int, slack []int, robust bool) (SGSResult, error) {
	if len(order) != p.numJobs {
		return SGSResult{}, fmt.Errorf("%w: order length must be %d (got %d)", ErrOrderInfeasible, p.numJobs, len(order))
	}
	if err := p.checkPlaceable(slack); err != nil {
		return SGSResult{}, err
	}
	sts := NewPartial(p.numJobs)
	rr := p.NewResidual()
	for step := 0; step < p.numJobs; step++ {
		var j int
		if robust {
			var ok bool
			if j, ok = p.nextEligible(order, sts); !ok {
				return SGSResult{}, fmt.Errorf("%w at step %d", ErrNoEligibleJob, step)
			}
		} else {
			j = order[step]
			if j < 0 || j >= p.numJobs || sts[j] != Unscheduled || !p.AllPredsScheduled(sts, j) {
				return SGSResult{}, fmt.Errorf("%w: job %d at position %d", ErrOrderInfeasible, j, step)
			}
		}
		t := p.LastPredFinish(sts, j)
		for !p.Fits(rr, j, t, slack) {
			t++
		}
		sts[j] = t
		p.Commit(rr, j, t)
	}
	return SGSResult{Schedule: sts, Residual: rr}, nil
}

// nextEligible returns the first job of order that is unscheduled and has all
// predecessors scheduled.
func (p *Project) nextEligible(order []int, sts Schedule) (int, bool) {
	for _, j := range order {
		if j >= 0 && j < p.numJobs && sts[j] == Unscheduled && p.AllPredsScheduled(sts, j) {
			return j, true
		}
	}
	return 0, false
}

// checkPlaceable guarantees the SGS search loop terminates: a job whose
// demand fits the usable capacity always fits once every scheduled job has
// finished.
func (p *Project) checkPlaceable(slack []int) error {
	for j := 0; j < p.numJobs; j++ {
		if p.durations[j] == 0 {
			continue
		}
		for r := 0; r < p.numRes; r++ {
			usable := p.capacities[r]
			if slack != nil {
				usable += slack[r]
			}
			if p.demands[j][r] > usable {
				return fmt.Errorf("%w: job %d needs %d of resource %d (usable %d)",
					ErrDemandExceedsCapacity, j, p.demands[j][r], r, usable)
			}
		}
	}
	return nil
}
