package app

import (
	"math/rand"

	"github.com/kilianp07/rcpspoc/core/bnb"
	"github.com/kilianp07/rcpspoc/core/overtime"
	"github.com/kilianp07/rcpspoc/core/project"
)

// SGSRun is the best schedule one SGS variant produced.
type SGSRun struct {
	Schedule project.Schedule
	Profit   float64
	// Err is the last decoding error when no priority produced a schedule.
	Err error
}

// SGSReport compares the plain and the overtime serial SGS on one instance.
type SGSReport struct {
	Instance string
	Plain    SGSRun
	Overtime SGSRun
	// Priorities counts the decoded priority representations.
	Priorities int
}

// RunSGS decodes the topological order and samples random-key priorities
// with both SGS variants, keeping the most profitable schedule of each.
func RunSGS(m *overtime.Model, samples int, rng *rand.Rand) SGSReport {
	providers := []project.PriorityProvider{project.ActivityList(m.TopologicalOrder())}
	if rng != nil {
		for i := 0; i < samples; i++ {
			keys := make(project.RandomKeys, m.NumJobs())
			for j := range keys {
				keys[j] = rng.Float64()
			}
			providers = append(providers, keys)
		}
	}

	rep := SGSReport{
		Instance:   m.Name(),
		Plain:      SGSRun{Profit: bnb.NoSolution},
		Overtime:   SGSRun{Profit: bnb.NoSolution},
		Priorities: len(providers),
	}
	for _, pp := range providers {
		keep(m, &rep.Plain, pp, m.Decode)
		keep(m, &rep.Overtime, pp, m.DecodeWithOvertime)
	}
	return rep
}

func keep(m *overtime.Model, best *SGSRun, pp project.PriorityProvider, decode func(project.PriorityProvider) (project.SGSResult, error)) {
	res, err := decode(pp)
	if err != nil {
		if best.Schedule == nil {
			best.Err = err
		}
		return
	}
	if profit := m.ProfitOf(res.Schedule, res.Residual); best.Schedule == nil || profit > best.Profit {
		best.Schedule = res.Schedule
		best.Profit = profit
		best.Err = nil
	}
}
