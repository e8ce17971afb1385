package model

import (
	"fmt"
	"math/rand"
)

// RandomInstance generates a valid project with jobs real jobs (plus the two
// dummies) and res renewable resources. Durations lie in [1,maxDur], demands
// in [0,capacity], so every instance is solvable without overtime. It backs
// randomized tests and benchmarks.
func RandomInstance(rng *rand.Rand, jobs, res, maxDur, capacity int) *Instance {
	if rng == nil {
		panic("random instance: nil rng")
	}
	if jobs < 1 || res < 0 || maxDur < 1 || capacity < 1 {
		panic("random instance: invalid bounds")
	}
	n := jobs + 2
	inst := &Instance{
		Name:       fmt.Sprintf("random-%d-%d", jobs, res),
		NumJobs:    n,
		NumRes:     res,
		Durations:  make([]int, n),
		Demands:    make([][]int, n),
		Successors: make([][]int, n),
		Capacities: make([]int, res),
	}
	for r := range inst.Capacities {
		inst.Capacities[r] = capacity
	}
	for j := 0; j < n; j++ {
		inst.Demands[j] = make([]int, res)
		if j == 0 || j == n-1 {
			continue
		}
		inst.Durations[j] = 1 + rng.Intn(maxDur)
		for r := 0; r < res; r++ {
			inst.Demands[j][r] = rng.Intn(capacity + 1)
		}
	}
	hasPred := make([]bool, n)
	for j := 2; j < n-1; j++ {
		for i := 1; i < j; i++ {
			if rng.Intn(4) == 0 {
				inst.Successors[i] = append(inst.Successors[i], j)
				hasPred[j] = true
			}
		}
	}
	for j := 1; j < n-1; j++ {
		if !hasPred[j] {
			inst.Successors[0] = append(inst.Successors[0], j)
		}
		if len(inst.Successors[j]) == 0 {
			inst.Successors[j] = append(inst.Successors[j], n-1)
		}
	}
	return inst
}
