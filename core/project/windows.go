package project

// TimeWindow holds per-job start and finish times of a precedence-only pass.
type TimeWindow struct {
	Start  []int
	Finish []int
}

func (w TimeWindow) clone() TimeWindow {
	return TimeWindow{
		Start:  append([]int(nil), w.Start...),
		Finish: append([]int(nil), w.Finish...),
	}
}

// Slack returns LS-ES per job for the given earliest and latest windows.
func Slack(earliest, latest TimeWindow) []int {
	slack := make([]int, len(earliest.Start))
	for j := range slack {
		slack[j] = latest.Start[j] - earliest.Start[j]
	}
	return slack
}

func (p *Project) forwardPass() TimeWindow {
	w := TimeWindow{Start: make([]int, p.numJobs), Finish: make([]int, p.numJobs)}
	for _, j := range p.topOrder {
		es := 0
		for _, i := range p.preds[j] {
			if w.Finish[i] > es {
				es = w.Finish[i]
			}
		}
		w.Start[j] = es
		w.Finish[j] = es + p.durations[j]
	}
	return w
}

func (p *Project) backwardPass(deadline int) TimeWindow {
	w := TimeWindow{Start: make([]int, p.numJobs), Finish: make([]int, p.numJobs)}
	for _, j := range p.revTopOrder {
		lf := deadline
		for _, k := range p.succs[j] {
			if w.Start[k] < lf {
				lf = w.Start[k]
			}
		}
		w.Finish[j] = lf
		w.Start[j] = lf - p.durations[j]
	}
	return w
}

// EarliestTimeWindow returns earliest start and finish times ignoring
// resource constraints.
func (p *Project) EarliestTimeWindow() TimeWindow {
	return p.earliest.clone()
}

// LatestTimeWindow returns the latest start and finish times that still let
// the sink finish by deadline, ignoring resource constraints.
func (p *Project) LatestTimeWindow(deadline int) TimeWindow {
	if deadline == p.earliest.Finish[p.numJobs-1] {
		return p.latest.clone()
	}
	return p.backwardPass(deadline)
}

// CriticalPathLength is the resource-unconstrained minimum makespan.
func (p *Project) CriticalPathLength() int {
	return p.earliest.Finish[p.numJobs-1]
}

// CriticalJobs returns the zero-slack jobs in topological order.
func (p *Project) CriticalJobs() []int {
	var jobs []int
	for _, j := range p.topOrder {
		if p.latest.Start[j] == p.earliest.Start[j] {
			jobs = append(jobs, j)
		}
	}
	return jobs
}
