package overtime

import (
	"gonum.org/v1/gonum/floats"

	"github.com/kilianp07/rcpspoc/core/project"
)

// OvertimeUnits returns per resource the total overtime units drawn in the
// residual profile, summed over all periods.
func (m *Model) OvertimeUnits(rr *project.Residual) []float64 {
	units := make([]float64, m.NumRes())
	periods := rr.Periods()
	for r := range units {
		sum := 0
		for t := 1; t < periods; t++ {
			if rem := rr.At(r, t); rem < 0 {
				sum -= rem
			}
		}
		units[r] = float64(sum)
	}
	return units
}

// TotalCosts sums kappa[r] times the overtime drawn on resource r.
func (m *Model) TotalCosts(rr *project.Residual) float64 {
	if m.NumRes() == 0 {
		return 0
	}
	return floats.Dot(m.kappa, m.OvertimeUnits(rr))
}

// TotalCostsOf computes the overtime costs of the scheduled jobs of sts.
func (m *Model) TotalCostsOf(sts project.Schedule) float64 {
	return m.TotalCosts(m.ResidualFromPartial(sts))
}

// Profit is the revenue at the makespan of sts minus its overtime costs.
func (m *Model) Profit(sts project.Schedule) float64 {
	return m.Revenue(sts.Makespan()) - m.TotalCostsOf(sts)
}

// ProfitOf scores a complete schedule whose residual profile is known.
func (m *Model) ProfitOf(sts project.Schedule, rr *project.Residual) float64 {
	return m.Revenue(sts.Makespan()) - m.TotalCosts(rr)
}

// Overtime returns the overtime units per resource and period for sts.
func (m *Model) Overtime(sts project.Schedule) [][]int {
	usage := m.ResourceProfile(sts)
	ot := make([][]int, len(usage))
	for r, row := range usage {
		ot[r] = make([]int, len(row))
		for t, u := range row {
			if over := u - m.Capacity(r); over > 0 {
				ot[r][t] = over
			}
		}
	}
	return ot
}
