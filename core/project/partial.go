package project

// EarliestStartsPartial returns, for a partial schedule, the precedence-only
// earliest start of every job. Scheduled jobs keep their start times; an
// unscheduled job starts no earlier than the finish of each predecessor,
// fixed or estimated.
func (p *Project) EarliestStartsPartial(sts Schedule) []int {
	ests := make([]int, p.numJobs)
	for _, j := range p.topOrder {
		if sts[j] != Unscheduled {
			ests[j] = sts[j]
			continue
		}
		es := 0
		for _, i := range p.preds[j] {
			if f := ests[i] + p.durations[i]; f > es {
				es = f
			}
		}
		ests[j] = es
	}
	return ests
}

// LatestFinishesPartial returns, for a partial schedule, the latest finish of
// every job that still lets the sink finish by deadline. Scheduled jobs report
// their fixed finish times.
func (p *Project) LatestFinishesPartial(sts Schedule, deadline int) []int {
	lfts := make([]int, p.numJobs)
	for _, j := range p.revTopOrder {
		if sts[j] != Unscheduled {
			lfts[j] = sts[j] + p.durations[j]
			continue
		}
		lf := deadline
		for _, k := range p.succs[j] {
			if ls := lfts[k] - p.durations[k]; ls < lf {
				lf = ls
			}
		}
		lfts[j] = lf
	}
	return lfts
}

// MinMakespanPartial is the resource-unconstrained makespan reachable from a
// partial schedule.
func (p *Project) MinMakespanPartial(sts Schedule) int {
	ests := p.EarliestStartsPartial(sts)
	return ests[p.numJobs-1]
}

// MissingDemand returns per resource the demand area sum d_j*k_jr of the
// jobs not yet scheduled.
func (p *Project) MissingDemand(sts Schedule) []int {
	missing := make([]int, p.numRes)
	for j, t := range sts {
		if t != Unscheduled {
			continue
		}
		for r := 0; r < p.numRes; r++ {
			missing[r] += p.durations[j] * p.demands[j][r]
		}
	}
	return missing
}
