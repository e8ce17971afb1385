// Package overtime adds the profit objective of the resource-constrained
// project scheduling problem with overtime to a project network: per-resource
// overtime ceilings and costs, a completion-time dependent revenue, and the
// upper bounds used by the branch-and-bound solver.
package overtime

import (
	"errors"
	"fmt"
	"math"

	"github.com/kilianp07/rcpspoc/core/model"
	"github.com/kilianp07/rcpspoc/core/project"
)

var (
	// ErrDemandExceedsCapacity reports a job whose demand on some resource is
	// larger than capacity plus overtime ceiling.
	ErrDemandExceedsCapacity = errors.New("demand exceeds capacity plus overtime")
	// ErrInvalidOvertime reports malformed overtime parameters.
	ErrInvalidOvertime = errors.New("invalid overtime parameters")
)

// Defaults are applied to instances that carry no overtime parameters.
type Defaults struct {
	// ZMaxRatio sets zmax[r] to ceil(ratio * capacity[r]).
	ZMaxRatio float64 `json:"zmax_ratio"`
	// Kappa is the cost of one overtime unit per period for every resource.
	Kappa float64 `json:"kappa"`
}

// Model is a project network with overtime parameters and a revenue function.
// The network is immutable; overtime parameters and revenue may be replaced
// between solver runs but not during one.
type Model struct {
	*project.Project
	zmax    []int
	kappa   []float64
	revenue []float64
}

// New attaches overtime parameters to p and derives the default revenue.
func New(p *project.Project, zmax []int, kappa []float64) (*Model, error) {
	m := &Model{Project: p}
	if err := m.SetOvertime(zmax, kappa); err != nil {
		return nil, err
	}
	rev, err := m.ComputeRevenueFunction()
	if err != nil {
		return nil, err
	}
	m.revenue = rev
	return m, nil
}

// FromInstance builds the project network and overtime model of inst, falling
// back to defaults when the instance has no overtime parameters.
func FromInstance(inst *model.Instance, def Defaults) (*Model, error) {
	p, err := project.New(inst)
	if err != nil {
		return nil, err
	}
	zmax, kappa := inst.ZMax, inst.Kappa
	if !inst.HasOvertime() {
		zmax = make([]int, inst.NumRes)
		kappa = make([]float64, inst.NumRes)
		for r := range zmax {
			zmax[r] = int(math.Ceil(def.ZMaxRatio * float64(inst.Capacities[r])))
			kappa[r] = def.Kappa
		}
	}
	return New(p, zmax, kappa)
}

// SetOvertime replaces the overtime ceilings and unit costs. The revenue
// function is kept; call ResetRevenue to derive it again.
func (m *Model) SetOvertime(zmax []int, kappa []float64) error {
	n := m.NumRes()
	if len(zmax) != n || len(kappa) != n {
		return fmt.Errorf("%w: zmax and kappa need %d entries (got %d, %d)", ErrInvalidOvertime, n, len(zmax), len(kappa))
	}
	for r := 0; r < n; r++ {
		if zmax[r] < 0 || kappa[r] < 0 || math.IsNaN(kappa[r]) {
			return fmt.Errorf("%w: resource %d has zmax %d kappa %v", ErrInvalidOvertime, r, zmax[r], kappa[r])
		}
	}
	for j := 0; j < m.NumJobs(); j++ {
		if m.Duration(j) == 0 {
			continue
		}
		for r := 0; r < n; r++ {
			if m.Demand(j, r) > m.Capacity(r)+zmax[r] {
				return fmt.Errorf("%w: job %d needs %d of resource %d (capacity %d, zmax %d)",
					ErrDemandExceedsCapacity, j, m.Demand(j, r), r, m.Capacity(r), zmax[r])
			}
		}
	}
	m.zmax = append([]int(nil), zmax...)
	m.kappa = append([]float64(nil), kappa...)
	return nil
}

// ZMax returns the overtime ceiling of resource r.
func (m *Model) ZMax(r int) int { return m.zmax[r] }

// Kappa returns the cost per overtime unit and period of resource r.
func (m *Model) Kappa(r int) float64 { return m.kappa[r] }

// ZMaxes returns a copy of all overtime ceilings.
func (m *Model) ZMaxes() []int { return append([]int(nil), m.zmax...) }

// Kappas returns a copy of all overtime unit costs.
func (m *Model) Kappas() []float64 { return append([]float64(nil), m.kappa...) }

// SerialSGSWithOvertime places the jobs of a precedence-feasible order at the
// earliest start where demand stays within capacity plus zmax.
func (m *Model) SerialSGSWithOvertime(order []int) (project.SGSResult, error) {
	return m.SerialSGSWithSlack(order, m.zmax, false)
}

// SerialSGSWithOvertimeRobust is the overtime SGS decoding arbitrary orders.
func (m *Model) SerialSGSWithOvertimeRobust(order []int) (project.SGSResult, error) {
	return m.SerialSGSWithSlack(order, m.zmax, true)
}

// DecodeWithOvertime decodes a priority representation with the robust
// overtime SGS.
func (m *Model) DecodeWithOvertime(pp project.PriorityProvider) (project.SGSResult, error) {
	if pp == nil {
		return project.SGSResult{}, fmt.Errorf("%w: nil priority provider", project.ErrMalformed)
	}
	return m.SerialSGSWithOvertimeRobust(pp.Order(m.Project))
}

// IsOvertimeFeasible verifies precedence and that no resource exceeds capacity
// plus zmax in any period.
func (m *Model) IsOvertimeFeasible(sts project.Schedule) bool {
	return m.CheckSchedule(sts, m.zmax) == nil
}
