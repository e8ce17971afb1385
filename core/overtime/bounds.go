package overtime

import (
	"math"

	"github.com/kilianp07/rcpspoc/core/project"
)

// CheapBound is an upper bound on the profit of any completion of the partial
// schedule sts with residual profile rr: the revenue at the
// resource-unconstrained makespan minus the costs already committed.
func (m *Model) CheapBound(sts project.Schedule, rr *project.Residual) float64 {
	return m.Revenue(m.MinMakespanPartial(sts)) - m.TotalCosts(rr)
}

// TightBound refines CheapBound with a lower bound on the overtime still
// needed: for a makespan ms the unscheduled demand area that does not fit the
// unused normal capacity up to ms must be processed as overtime.
func (m *Model) TightBound(sts project.Schedule, rr *project.Residual) float64 {
	msMin := m.MinMakespanPartial(sts)
	committed := m.TotalCosts(rr)
	missing := m.MissingDemand(sts)
	free := make([]int, m.NumRes())
	for r := range free {
		for t := 1; t <= msMin; t++ {
			if rem := rr.At(r, t); rem > 0 {
				free[r] += rem
			}
		}
	}
	msMax := m.Horizon()
	if msMax < msMin {
		msMax = msMin
	}
	best := math.Inf(-1)
	for ms := msMin; ms <= msMax; ms++ {
		lb := m.costLowerBound(missing, free, ms-msMin)
		if v := m.Revenue(ms) - committed - lb; v > best {
			best = v
		}
		if lb == 0 {
			// revenue does not increase, later makespans cannot do better
			break
		}
	}
	return best
}

func (m *Model) costLowerBound(missing, free []int, extraPeriods int) float64 {
	lb := 0.0
	for r, need := range missing {
		if over := need - (free[r] + extraPeriods*m.Capacity(r)); over > 0 {
			lb += m.kappa[r] * float64(over)
		}
	}
	return lb
}
