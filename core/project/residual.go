package project

// Residual tracks the remaining normal capacity per resource and period.
// Values below zero mean the period draws overtime. Periods beyond the
// allocated range hold the full capacity.
type Residual struct {
	caps []int
	rem  [][]int
}

// NewResidual returns an empty profile spanning the project horizon.
func (p *Project) NewResidual() *Residual {
	rr := &Residual{caps: p.capacities, rem: make([][]int, p.numRes)}
	for r := range rr.rem {
		row := make([]int, p.horizon+1)
		for t := range row {
			row[t] = p.capacities[r]
		}
		rr.rem[r] = row
	}
	return rr
}

// At returns the residual capacity of resource r in period t.
func (rr *Residual) At(r, t int) int {
	if t < len(rr.rem[r]) {
		return rr.rem[r][t]
	}
	return rr.caps[r]
}

// Periods returns the number of allocated periods including the unused
// column 0.
func (rr *Residual) Periods() int {
	if len(rr.rem) == 0 {
		return 0
	}
	return len(rr.rem[0])
}

// NumRes returns the number of resources tracked.
func (rr *Residual) NumRes() int { return len(rr.rem) }

// Clone returns a deep copy of the profile.
func (rr *Residual) Clone() *Residual {
	cp := &Residual{caps: rr.caps, rem: make([][]int, len(rr.rem))}
	for r, row := range rr.rem {
		cp.rem[r] = append([]int(nil), row...)
	}
	return cp
}

// Equal reports whether both profiles hold the same residual values.
func (rr *Residual) Equal(other *Residual) bool {
	if len(rr.rem) != len(other.rem) {
		return false
	}
	n := rr.Periods()
	if other.Periods() > n {
		n = other.Periods()
	}
	for r := range rr.rem {
		for t := 1; t < n; t++ {
			if rr.At(r, t) != other.At(r, t) {
				return false
			}
		}
	}
	return true
}

func (rr *Residual) grow(last int) {
	for r, row := range rr.rem {
		for len(row) <= last {
			row = append(row, rr.caps[r])
		}
		rr.rem[r] = row
	}
}

func (rr *Residual) add(r, from, to, delta int) {
	if to >= len(rr.rem[r]) {
		rr.grow(to)
	}
	row := rr.rem[r]
	for t := from; t <= to; t++ {
		row[t] += delta
	}
}

// Fits reports whether job j can start at t without any resource dropping
// below -slack[r]. A nil slack checks normal capacity only.
func (p *Project) Fits(rr *Residual, j, t int, slack []int) bool {
	d := p.durations[j]
	for r := 0; r < p.numRes; r++ {
		k := p.demands[j][r]
		if k == 0 {
			continue
		}
		floor := 0
		if slack != nil {
			floor = -slack[r]
		}
		for tau := t + 1; tau <= t+d; tau++ {
			if rr.At(r, tau)-k < floor {
				return false
			}
		}
	}
	return true
}

// CheckFit evaluates in one sweep whether job j fits at t using up to slack
// extra units per resource and whether it fits in normal capacity alone.
func (p *Project) CheckFit(rr *Residual, j, t int, slack []int) (withSlack, normal bool) {
	withSlack, normal = true, true
	d := p.durations[j]
	for r := 0; r < p.numRes; r++ {
		k := p.demands[j][r]
		if k == 0 {
			continue
		}
		allowance := 0
		if slack != nil {
			allowance = slack[r]
		}
		for tau := t + 1; tau <= t+d; tau++ {
			left := rr.At(r, tau) - k
			if left < 0 {
				normal = false
				if left < -allowance {
					return false, false
				}
			}
		}
	}
	return withSlack, normal
}

// Commit consumes the demand of job j started at t.
func (p *Project) Commit(rr *Residual, j, t int) {
	d := p.durations[j]
	if d == 0 {
		return
	}
	for r := 0; r < p.numRes; r++ {
		if k := p.demands[j][r]; k != 0 {
			rr.add(r, t+1, t+d, -k)
		}
	}
}

// Release returns the demand of job j started at t.
func (p *Project) Release(rr *Residual, j, t int) {
	d := p.durations[j]
	if d == 0 {
		return
	}
	for r := 0; r < p.numRes; r++ {
		if k := p.demands[j][r]; k != 0 {
			rr.add(r, t+1, t+d, k)
		}
	}
}

// ResidualFromPartial builds the residual profile implied by the scheduled
// jobs of sts.
func (p *Project) ResidualFromPartial(sts Schedule) *Residual {
	rr := p.NewResidual()
	for j, t := range sts {
		if t != Unscheduled {
			p.Commit(rr, j, t)
		}
	}
	return rr
}
