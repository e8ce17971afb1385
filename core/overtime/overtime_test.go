package overtime

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/rcpspoc/core/model"
	"github.com/kilianp07/rcpspoc/core/project"
)

func exampleInstance(successors [][]int) *model.Instance {
	return &model.Instance{
		Name:       "example",
		NumJobs:    8,
		NumRes:     1,
		Durations:  []int{0, 3, 2, 2, 3, 1, 2, 0},
		Demands:    [][]int{{0}, {3}, {2}, {2}, {1}, {2}, {1}, {0}},
		Successors: successors,
		Capacities: []int{4},
		ZMax:       []int{2},
		Kappa:      []float64{10},
	}
}

// chainSuccessors is the network 1->{2,3}, 2->4, 3->5, 4->6, 5->6, 6->7.
func chainSuccessors() [][]int {
	return [][]int{{1}, {2, 3}, {4}, {5}, {6}, {6}, {7}, {}}
}

// forkSuccessors lets jobs 1 and 2 start in parallel: 0->{1,2}, 1->3, 2->4,
// 3->5, 4->6, 5->6, 6->7.
func forkSuccessors() [][]int {
	return [][]int{{1, 2}, {3}, {4}, {5}, {6}, {6}, {7}, {}}
}

func mustModel(t *testing.T, inst *model.Instance) *Model {
	t.Helper()
	m, err := FromInstance(inst, Defaults{})
	require.NoError(t, err)
	return m
}

func TestScenario_NoOvertimeSchedule(t *testing.T) {
	m := mustModel(t, exampleInstance(chainSuccessors()))
	require.NoError(t, m.SetRevenue(StepRevenue(10, 11, m.Horizon())))

	sts := project.Schedule{0, 0, 3, 3, 5, 5, 8, 10}
	assert.True(t, m.IsScheduleFeasible(sts))
	assert.True(t, m.IsOvertimeFeasible(sts))
	assert.Equal(t, 0.0, m.TotalCostsOf(sts))
	assert.Equal(t, 10.0, m.Profit(sts))
}

func TestScenario_OvertimeSchedule(t *testing.T) {
	m := mustModel(t, exampleInstance(forkSuccessors()))
	require.NoError(t, m.SetRevenue(StepRevenue(10, 11, m.Horizon())))

	sts := project.Schedule{0, 0, 0, 3, 3, 5, 6, 8}
	assert.True(t, m.IsOvertimeFeasible(sts))
	assert.False(t, m.IsScheduleFeasible(sts))
	assert.Equal(t, 20.0, m.TotalCostsOf(sts))
	assert.Equal(t, -10.0, m.Profit(sts))

	ot := m.Overtime(sts)
	assert.Equal(t, []int{0, 1, 1, 0, 0, 0, 0, 0, 0}, ot[0])
	assert.Equal(t, []float64{2}, m.OvertimeUnits(m.ResidualFromPartial(sts)))

	// Under the chain network job 2 would start before job 1 finishes.
	chain := mustModel(t, exampleInstance(chainSuccessors()))
	assert.False(t, chain.IsOvertimeFeasible(sts))
}

func TestSerialSGSWithOvertime(t *testing.T) {
	m := mustModel(t, exampleInstance(forkSuccessors()))
	res, err := m.SerialSGSWithOvertime(m.TopologicalOrder())
	require.NoError(t, err)
	// jobs 1 and 2 run in parallel drawing one overtime unit in periods 1 and 2
	assert.Equal(t, project.Schedule{0, 0, 0, 3, 2, 5, 6, 8}, res.Schedule)
	assert.True(t, m.IsOvertimeFeasible(res.Schedule))
	assert.Equal(t, 20.0, m.TotalCosts(res.Residual))

	plain, err := m.SerialSGS(m.TopologicalOrder())
	require.NoError(t, err)
	assert.Equal(t, 0.0, m.TotalCosts(plain.Residual))
	assert.GreaterOrEqual(t, plain.Schedule.Makespan(), res.Schedule.Makespan())

	dec, err := m.DecodeWithOvertime(project.ActivityList{7, 6, 5, 4, 3, 2, 1, 0})
	require.NoError(t, err)
	assert.True(t, m.IsOvertimeFeasible(dec.Schedule))
}

func TestFromInstance_Defaults(t *testing.T) {
	inst := exampleInstance(chainSuccessors())
	inst.ZMax, inst.Kappa = nil, nil
	m, err := FromInstance(inst, Defaults{ZMaxRatio: 0.5, Kappa: 2})
	require.NoError(t, err)
	assert.Equal(t, []int{2}, m.ZMaxes())
	assert.Equal(t, []float64{2}, m.Kappas())
}

func TestSetOvertime_Errors(t *testing.T) {
	m := mustModel(t, exampleInstance(chainSuccessors()))
	assert.ErrorIs(t, m.SetOvertime([]int{1, 2}, []float64{1}), ErrInvalidOvertime)
	assert.ErrorIs(t, m.SetOvertime([]int{-1}, []float64{1}), ErrInvalidOvertime)

	inst := exampleInstance(chainSuccessors())
	inst.Demands[1] = []int{7}
	_, err := FromInstance(inst, Defaults{})
	assert.ErrorIs(t, err, ErrDemandExceedsCapacity)
}

func TestComputeRevenueFunction(t *testing.T) {
	m := mustModel(t, exampleInstance(chainSuccessors()))
	minMs, maxMs, err := m.MakespanRange()
	require.NoError(t, err)
	assert.Equal(t, 10, minMs)
	assert.Equal(t, 10, maxMs)
	assert.Equal(t, 4, m.tkappa())
	rev := m.RevenueFunction()
	require.Len(t, rev, m.Horizon()+1)
	assert.Equal(t, 200.0, rev[10])
	assert.Equal(t, 0.0, rev[11])
	assert.Equal(t, 0.0, m.Revenue(100))
	assert.Equal(t, 200.0, m.Revenue(-1))
}

func TestComputeRevenueFunction_Decline(t *testing.T) {
	inst := exampleInstance(forkSuccessors())
	inst.Demands[2] = []int{4}
	m := mustModel(t, inst)
	minMs, maxMs, err := m.MakespanRange()
	require.NoError(t, err)
	require.Less(t, minMs, maxMs)
	rev := m.RevenueFunction()
	for t2 := 1; t2 < len(rev); t2++ {
		assert.LessOrEqual(t, rev[t2], rev[t2-1])
	}
	assert.Equal(t, rev[0], rev[minMs])
	assert.Equal(t, 0.0, rev[maxMs])
	assert.Greater(t, rev[minMs], rev[minMs+1])
}

func TestSetRevenue(t *testing.T) {
	m := mustModel(t, exampleInstance(chainSuccessors()))
	assert.ErrorIs(t, m.SetRevenue([]float64{1, 2}), ErrRevenueNotMonotone)
	assert.ErrorIs(t, m.SetRevenue(nil), ErrRevenueNotMonotone)
	require.NoError(t, m.SetRevenue([]float64{5, 5, 3}))
	assert.Equal(t, 3.0, m.Revenue(40))
	require.NoError(t, m.ResetRevenue())
	assert.Equal(t, 200.0, m.Revenue(0))
}

func TestStepRevenue(t *testing.T) {
	rev := StepRevenue(10, 11, 13)
	assert.Len(t, rev, 15)
	assert.Equal(t, 10.0, rev[11])
	assert.Equal(t, 0.0, rev[12])
	assert.Len(t, StepRevenue(1, 5, 2), 7)
}

func TestBounds_Example(t *testing.T) {
	m := mustModel(t, exampleInstance(forkSuccessors()))
	require.NoError(t, m.SetRevenue(StepRevenue(10, 11, m.Horizon())))
	sts := project.NewPartial(m.NumJobs())
	sts[0], sts[1], sts[2] = 0, 0, 0
	rr := m.ResidualFromPartial(sts)
	assert.Equal(t, 10.0-20.0, m.CheapBound(sts, rr))
	assert.LessOrEqual(t, m.TightBound(sts, rr), m.CheapBound(sts, rr))

	empty := project.NewPartial(m.NumJobs())
	assert.Equal(t, 10.0, m.CheapBound(empty, m.NewResidual()))
}

func TestTightBound_ForcedOvertime(t *testing.T) {
	// Two parallel jobs of demand 3 on capacity 4 and zmax 2 must overlap to
	// finish within the critical path, forcing 2*2 units of overtime.
	inst := &model.Instance{
		NumJobs:    4,
		NumRes:     1,
		Durations:  []int{0, 2, 2, 0},
		Demands:    [][]int{{0}, {3}, {3}, {0}},
		Successors: [][]int{{1, 2}, {3}, {3}, {}},
		Capacities: []int{4},
		ZMax:       []int{2},
		Kappa:      []float64{1},
	}
	m := mustModel(t, inst)
	require.NoError(t, m.SetRevenue(StepRevenue(10, 2, m.Horizon())))
	empty := project.NewPartial(4)
	rr := m.NewResidual()
	assert.Equal(t, 10.0, m.CheapBound(empty, rr))
	assert.Equal(t, 6.0, m.TightBound(empty, rr))
}

func TestBounds_RandomCompletions(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 30; i++ {
		inst := model.RandomInstance(rng, 3+rng.Intn(8), 1+rng.Intn(2), 4, 5)
		m, err := FromInstance(inst, Defaults{ZMaxRatio: 0.5, Kappa: 1})
		require.NoError(t, err)
		keys := make(project.RandomKeys, m.NumJobs())
		for j := range keys {
			keys[j] = rng.Float64()
		}
		order := keys.Order(m.Project)
		full, err := m.SerialSGSWithOvertime(order)
		require.NoError(t, err)
		assert.True(t, m.IsOvertimeFeasible(full.Schedule))
		for r, row := range m.ResourceProfile(full.Schedule) {
			for _, u := range row {
				assert.LessOrEqual(t, u, m.Capacity(r)+m.ZMax(r))
			}
		}
		assert.LessOrEqual(t, full.Schedule.Makespan(), m.Horizon())
		profit := m.ProfitOf(full.Schedule, full.Residual)
		assert.InDelta(t, m.Profit(full.Schedule), profit, 1e-9)

		partial := project.NewPartial(m.NumJobs())
		for k := 0; k < len(order); k++ {
			rr := m.ResidualFromPartial(partial)
			cheap := m.CheapBound(partial, rr)
			tight := m.TightBound(partial, rr)
			assert.GreaterOrEqual(t, cheap+1e-9, tight)
			assert.GreaterOrEqual(t, tight+1e-9, profit)
			j := order[k]
			partial[j] = full.Schedule[j]
		}
	}
}
