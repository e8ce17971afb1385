package project

import "fmt"

// PriorityProvider turns a solution representation into a job order that the
// robust serial SGS can decode.
type PriorityProvider interface {
	Order(p *Project) []int
}

// ActivityList is a job order used as is.
type ActivityList []int

// Order implements PriorityProvider.
func (a ActivityList) Order(*Project) []int {
	return append([]int(nil), a...)
}

// RandomKeys assigns a priority to each job. Among the eligible jobs the one
// with the highest key goes first, ties broken by ascending job id.
type RandomKeys []float64

// Order implements PriorityProvider. The returned order is precedence feasible.
func (k RandomKeys) Order(p *Project) []int {
	n := p.NumJobs()
	order := make([]int, 0, n)
	placed := make([]bool, n)
	for len(order) < n {
		best := -1
		for j := 0; j < n; j++ {
			if placed[j] || !allPlaced(p.preds[j], placed) {
				continue
			}
			if best < 0 || k.key(j) > k.key(best) {
				best = j
			}
		}
		placed[best] = true
		order = append(order, best)
	}
	return order
}

func (k RandomKeys) key(j int) float64 {
	if j < len(k) {
		return k[j]
	}
	return 0
}

// Decode builds a schedule from a priority representation with the robust
// serial SGS using normal capacity only.
func (p *Project) Decode(pp PriorityProvider) (SGSResult, error) {
	if pp == nil {
		return SGSResult{}, fmt.Errorf("%w: nil priority provider", ErrMalformed)
	}
	return p.SerialSGSRobust(pp.Order(p))
}
