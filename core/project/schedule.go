package project

// Unscheduled marks a job without a start time in a partial schedule.
const Unscheduled = -1

// Schedule is a start time per job, indexed by job id.
type Schedule []int

// NewPartial returns a schedule of n unscheduled jobs.
func NewPartial(n int) Schedule {
	sts := make(Schedule, n)
	for j := range sts {
		sts[j] = Unscheduled
	}
	return sts
}

// Clone returns a copy of the schedule.
func (s Schedule) Clone() Schedule {
	return append(Schedule(nil), s...)
}

// Makespan is the start time of the dummy sink.
func (s Schedule) Makespan() int {
	return s[len(s)-1]
}

// Scheduled reports whether job j has a start time.
func (s Schedule) Scheduled(j int) bool {
	return s[j] != Unscheduled
}

// Complete reports whether every job has a start time.
func (s Schedule) Complete() bool {
	for _, t := range s {
		if t == Unscheduled {
			return false
		}
	}
	return true
}

// FinishTimes returns start plus duration per scheduled job and Unscheduled
// for the others.
func (p *Project) FinishTimes(sts Schedule) []int {
	fts := make([]int, len(sts))
	for j, t := range sts {
		if t == Unscheduled {
			fts[j] = Unscheduled
			continue
		}
		fts[j] = t + p.durations[j]
	}
	return fts
}

// LastFinish returns the latest finish time among scheduled jobs, 0 if none.
func (p *Project) LastFinish(sts Schedule) int {
	last := 0
	for j, t := range sts {
		if t != Unscheduled && t+p.durations[j] > last {
			last = t + p.durations[j]
		}
	}
	return last
}

// LatestStart returns the latest start among scheduled jobs and false if no
// job is scheduled.
func LatestStart(sts Schedule) (int, bool) {
	latest, found := 0, false
	for _, t := range sts {
		if t != Unscheduled && (!found || t > latest) {
			latest, found = t, true
		}
	}
	return latest, found
}

// AllPredsScheduled reports whether every predecessor of j has a start time.
func (p *Project) AllPredsScheduled(sts Schedule, j int) bool {
	for _, i := range p.preds[j] {
		if sts[i] == Unscheduled {
			return false
		}
	}
	return true
}

// LastPredFinish returns the latest finish among the scheduled predecessors
// of j, 0 if there are none.
func (p *Project) LastPredFinish(sts Schedule, j int) int {
	t := 0
	for _, i := range p.preds[j] {
		if sts[i] != Unscheduled && sts[i]+p.durations[i] > t {
			t = sts[i] + p.durations[i]
		}
	}
	return t
}
