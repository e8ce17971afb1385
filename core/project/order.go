package project

// computeTopOrder repeatedly places the lowest-id job whose blockers (the
// predecessors, or the successors for the reverse order) are already placed.
// The network is validated as acyclic before this is called.
func (p *Project) computeTopOrder(blockers [][]int) []int {
	order := make([]int, 0, p.numJobs)
	placed := make([]bool, p.numJobs)
	for len(order) < p.numJobs {
		for j := 0; j < p.numJobs; j++ {
			if placed[j] || !allPlaced(blockers[j], placed) {
				continue
			}
			placed[j] = true
			order = append(order, j)
			break
		}
	}
	return order
}

func allPlaced(jobs []int, placed []bool) bool {
	for _, i := range jobs {
		if !placed[i] {
			return false
		}
	}
	return true
}

// TopologicalOrder returns a copy of the precedence-consistent job order with
// ties broken by ascending job id.
func (p *Project) TopologicalOrder() []int {
	return append([]int(nil), p.topOrder...)
}

// ReverseTopologicalOrder returns a copy of the order in which every job comes
// after all of its successors, ties broken by ascending job id.
func (p *Project) ReverseTopologicalOrder() []int {
	return append([]int(nil), p.revTopOrder...)
}

// IsPrecedenceFeasibleOrder reports whether every job in order appears after
// all of its predecessors and every job appears exactly once.
func (p *Project) IsPrecedenceFeasibleOrder(order []int) bool {
	if len(order) != p.numJobs {
		return false
	}
	placed := make([]bool, p.numJobs)
	for _, j := range order {
		if j < 0 || j >= p.numJobs || placed[j] || !allPlaced(p.preds[j], placed) {
			return false
		}
		placed[j] = true
	}
	return true
}
