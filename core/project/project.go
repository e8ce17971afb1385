// Package project models the precedence and resource network of a project and
// turns job orderings into concrete schedules with the serial schedule
// generation scheme (SGS).
//
// Periods are 1-based: a job started at s with duration d occupies the periods
// s+1..s+d. A residual profile therefore has Horizon()+1 columns with column 0
// unused.
package project

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/graph/traverse"

	"github.com/kilianp07/rcpspoc/core/model"
)

var (
	// ErrMalformed reports an instance that violates the project network invariants.
	ErrMalformed = errors.New("malformed project")
	// ErrCyclic reports a precedence relation containing a cycle.
	ErrCyclic = errors.New("cyclic precedence graph")
)

// Project is the immutable precedence/resource network of one instance.
type Project struct {
	name       string
	numJobs    int
	numRes     int
	durations  []int
	demands    [][]int
	capacities []int

	adj   [][]bool
	preds [][]int
	succs [][]int

	topOrder    []int
	revTopOrder []int
	horizon     int

	earliest TimeWindow
	latest   TimeWindow
}

// New validates the instance and derives the precedence structures and time
// windows. The instance is copied; later changes to it have no effect.
func New(inst *model.Instance) (*Project, error) {
	if err := inst.CheckShape(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	n := inst.NumJobs
	p := &Project{
		name:       inst.Name,
		numJobs:    n,
		numRes:     inst.NumRes,
		durations:  append([]int(nil), inst.Durations...),
		capacities: append([]int(nil), inst.Capacities...),
		demands:    make([][]int, n),
		adj:        make([][]bool, n),
		preds:      make([][]int, n),
		succs:      make([][]int, n),
	}
	for j := 0; j < n; j++ {
		p.demands[j] = append([]int(nil), inst.Demands[j]...)
		p.adj[j] = make([]bool, n)
	}
	if err := p.validateAttributes(); err != nil {
		return nil, err
	}
	for i, succs := range inst.Successors {
		for _, j := range succs {
			if j < 0 || j >= n {
				return nil, fmt.Errorf("%w: successor %d of job %d out of range", ErrMalformed, j, i)
			}
			if i == j {
				return nil, fmt.Errorf("%w: job %d precedes itself", ErrCyclic, i)
			}
			p.adj[i][j] = true
		}
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if p.adj[i][j] {
				p.succs[i] = append(p.succs[i], j)
				p.preds[j] = append(p.preds[j], i)
			}
		}
	}
	if err := p.validateNetwork(); err != nil {
		return nil, err
	}
	for _, d := range p.durations {
		p.horizon += d
	}
	p.topOrder = p.computeTopOrder(p.preds)
	p.revTopOrder = p.computeTopOrder(p.succs)
	p.earliest = p.forwardPass()
	p.latest = p.backwardPass(p.earliest.Finish[n-1])
	return p, nil
}

func (p *Project) validateAttributes() error {
	last := p.numJobs - 1
	for j, d := range p.durations {
		if d < 0 {
			return fmt.Errorf("%w: durations[%d] must be >= 0 (got %d)", ErrMalformed, j, d)
		}
		for r, k := range p.demands[j] {
			if k < 0 {
				return fmt.Errorf("%w: demands[%d][%d] must be >= 0 (got %d)", ErrMalformed, j, r, k)
			}
			if (j == 0 || j == last) && k != 0 {
				return fmt.Errorf("%w: dummy job %d has demand on resource %d", ErrMalformed, j, r)
			}
		}
	}
	if p.durations[0] != 0 || p.durations[last] != 0 {
		return fmt.Errorf("%w: dummy source and sink must have zero duration", ErrMalformed)
	}
	for r, c := range p.capacities {
		if c < 0 {
			return fmt.Errorf("%w: capacities[%d] must be >= 0 (got %d)", ErrMalformed, r, c)
		}
	}
	return nil
}

// validateNetwork checks acyclicity and that every job lies on a path from
// the source to the sink.
func (p *Project) validateNetwork() error {
	g := simple.NewDirectedGraph()
	rev := simple.NewDirectedGraph()
	for j := 0; j < p.numJobs; j++ {
		g.AddNode(simple.Node(j))
		rev.AddNode(simple.Node(j))
	}
	for i, succs := range p.succs {
		for _, j := range succs {
			g.SetEdge(g.NewEdge(simple.Node(i), simple.Node(j)))
			rev.SetEdge(rev.NewEdge(simple.Node(j), simple.Node(i)))
		}
	}
	if _, err := topo.Sort(g); err != nil {
		return fmt.Errorf("%w: %v", ErrCyclic, err)
	}
	last := p.numJobs - 1
	if len(p.preds[0]) > 0 {
		return fmt.Errorf("%w: source job 0 has predecessors", ErrMalformed)
	}
	if len(p.succs[last]) > 0 {
		return fmt.Errorf("%w: sink job %d has successors", ErrMalformed, last)
	}
	fromSource := reachable(g, 0)
	toSink := reachable(rev, int64(last))
	for j := 0; j < p.numJobs; j++ {
		if !fromSource[int64(j)] {
			return fmt.Errorf("%w: job %d is not reachable from the source", ErrMalformed, j)
		}
		if !toSink[int64(j)] {
			return fmt.Errorf("%w: job %d does not reach the sink", ErrMalformed, j)
		}
	}
	return nil
}

func reachable(g graph.Directed, from int64) map[int64]bool {
	seen := make(map[int64]bool)
	bf := traverse.BreadthFirst{
		Visit: func(n graph.Node) { seen[n.ID()] = true },
	}
	bf.Walk(g, g.Node(from), nil)
	return seen
}

// Name returns the instance name.
func (p *Project) Name() string { return p.name }

// NumJobs returns the number of jobs including both dummies.
func (p *Project) NumJobs() int { return p.numJobs }

// NumRes returns the number of renewable resources.
func (p *Project) NumRes() int { return p.numRes }

// Sink returns the id of the dummy sink job.
func (p *Project) Sink() int { return p.numJobs - 1 }

// Duration returns the duration of job j.
func (p *Project) Duration(j int) int { return p.durations[j] }

// Demand returns the per-period demand of job j on resource r.
func (p *Project) Demand(j, r int) int { return p.demands[j][r] }

// Capacity returns the normal per-period capacity of resource r.
func (p *Project) Capacity(r int) int { return p.capacities[r] }

// Precedes reports whether i is an immediate predecessor of j.
func (p *Project) Precedes(i, j int) bool { return p.adj[i][j] }

// Preds returns the immediate predecessors of j in ascending order. The slice
// must not be modified.
func (p *Project) Preds(j int) []int { return p.preds[j] }

// Succs returns the immediate successors of j in ascending order. The slice
// must not be modified.
func (p *Project) Succs(j int) []int { return p.succs[j] }

// Horizon is the sum of all durations, an upper bound on the makespan of any
// schedule produced by the serial SGS.
func (p *Project) Horizon() int { return p.horizon }

// TotalDemand returns the demand area sum_j d_j*k_jr of resource r.
func (p *Project) TotalDemand(r int) int {
	total := 0
	for j := 0; j < p.numJobs; j++ {
		total += p.durations[j] * p.demands[j][r]
	}
	return total
}
