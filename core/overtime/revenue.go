package overtime

import (
	"errors"
	"fmt"
	"math"

	"github.com/kilianp07/rcpspoc/core/project"
)

// ErrRevenueNotMonotone reports a revenue function that increases with the
// makespan, which would make the solver bounds unsound.
var ErrRevenueNotMonotone = errors.New("revenue function must be non-increasing")

const revenueTolerance = 1e-9

// MakespanRange returns the minimal makespan, the larger of the critical path
// length and the resource-utilisation bound tkappa, and the maximal makespan
// of the serial SGS on the topological order without overtime.
func (m *Model) MakespanRange() (minMs, maxMs int, err error) {
	minMs = m.CriticalPathLength()
	if tk := m.tkappa(); tk > minMs {
		minMs = tk
	}
	order := m.TopologicalOrder()
	res, err := m.SerialSGS(order)
	if errors.Is(err, project.ErrDemandExceedsCapacity) {
		res, err = m.SerialSGSWithOvertime(order)
	}
	if err != nil {
		return 0, 0, fmt.Errorf("maximal makespan: %w", err)
	}
	maxMs = res.Schedule.Makespan()
	if maxMs < minMs {
		maxMs = minMs
	}
	return minMs, maxMs, nil
}

// tkappa is the largest number of periods any resource needs to process its
// total demand at full capacity plus overtime.
func (m *Model) tkappa() int {
	tk := 0
	for r := 0; r < m.NumRes(); r++ {
		usable := m.Capacity(r) + m.zmax[r]
		if usable == 0 {
			continue
		}
		need := int(math.Ceil(float64(m.TotalDemand(r)) / float64(usable)))
		if need > tk {
			tk = need
		}
	}
	return tk
}

// peakRevenue is the cost of drawing the full overtime allowance of every
// resource over the minimal makespan.
func (m *Model) peakRevenue(minMs int) float64 {
	peak := 0.0
	for r := 0; r < m.NumRes(); r++ {
		peak += m.kappa[r] * float64(m.zmax[r]) * float64(minMs)
	}
	if peak <= 0 {
		peak = 1
	}
	return peak
}

// ComputeRevenueFunction derives the default revenue per makespan: the peak
// value up to the minimal makespan, a quadratic decline to zero at the
// maximal makespan and zero afterwards.
func (m *Model) ComputeRevenueFunction() ([]float64, error) {
	minMs, maxMs, err := m.MakespanRange()
	if err != nil {
		return nil, err
	}
	peak := m.peakRevenue(minMs)
	rev := make([]float64, m.Horizon()+1)
	for t := range rev {
		switch {
		case t <= minMs:
			rev[t] = peak
		case t >= maxMs:
			rev[t] = 0
		default:
			x := float64(t-minMs) / float64(maxMs-minMs)
			rev[t] = peak * (1 - x*x)
		}
	}
	return rev, nil
}

// ResetRevenue replaces the revenue function with the derived default.
func (m *Model) ResetRevenue() error {
	rev, err := m.ComputeRevenueFunction()
	if err != nil {
		return err
	}
	m.revenue = rev
	return nil
}

// SetRevenue overrides the revenue function. rev[t] is the revenue for a
// makespan of t; makespans past the end keep the last value.
func (m *Model) SetRevenue(rev []float64) error {
	if len(rev) == 0 {
		return fmt.Errorf("%w: empty revenue function", ErrRevenueNotMonotone)
	}
	for t := 1; t < len(rev); t++ {
		if math.IsNaN(rev[t]) || rev[t] > rev[t-1]+revenueTolerance {
			return fmt.Errorf("%w: revenue[%d]=%v > revenue[%d]=%v", ErrRevenueNotMonotone, t, rev[t], t-1, rev[t-1])
		}
	}
	m.revenue = append([]float64(nil), rev...)
	return nil
}

// StepRevenue returns a revenue function paying value for makespans up to
// deadline and nothing afterwards, sized for makespans 0..horizon.
func StepRevenue(value float64, deadline, horizon int) []float64 {
	if horizon < deadline {
		horizon = deadline
	}
	rev := make([]float64, horizon+2)
	for t := 0; t <= deadline; t++ {
		rev[t] = value
	}
	return rev
}

// Revenue returns the revenue for completing the project at makespan ms.
func (m *Model) Revenue(ms int) float64 {
	switch {
	case ms < 0:
		return m.revenue[0]
	case ms >= len(m.revenue):
		return m.revenue[len(m.revenue)-1]
	}
	return m.revenue[ms]
}

// RevenueFunction returns a copy of the revenue per makespan.
func (m *Model) RevenueFunction() []float64 {
	return append([]float64(nil), m.revenue...)
}
