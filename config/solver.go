package config

import (
	"fmt"
	"time"

	"github.com/kilianp07/rcpspoc/core/bnb"
	"github.com/kilianp07/rcpspoc/core/overtime"
)

// SolverConfig tunes the branch-and-bound search.
type SolverConfig struct {
	// NodeLimit stops a search after this many nodes, 0 for no limit.
	NodeLimit int64 `json:"node_limit"`
	// TimeLimitSeconds bounds the wall-clock time of one search, 0 for no limit.
	TimeLimitSeconds float64 `json:"time_limit_seconds"`
	Fathoming        bool    `json:"fathoming"`
	TightBound       bool    `json:"tight_bound"`
	WarmStart        bool    `json:"warm_start"`
	ProgressInterval int64   `json:"progress_interval"`
}

// DefaultSolverConfig matches bnb.DefaultOptions.
func DefaultSolverConfig() SolverConfig {
	o := bnb.DefaultOptions()
	return SolverConfig{
		Fathoming:        o.Fathoming,
		TightBound:       o.TightBound,
		WarmStart:        o.WarmStart,
		ProgressInterval: o.ProgressInterval,
	}
}

// Validate rejects negative limits.
func (c SolverConfig) Validate() error {
	if c.TimeLimitSeconds < 0 {
		return fmt.Errorf("time_limit_seconds must be >= 0 (got %g)", c.TimeLimitSeconds)
	}
	return c.Options().Validate()
}

// TimeLimit converts TimeLimitSeconds to a duration.
func (c SolverConfig) TimeLimit() time.Duration {
	return time.Duration(c.TimeLimitSeconds * float64(time.Second))
}

// Options returns the search options described by c.
func (c SolverConfig) Options() bnb.Options {
	return bnb.Options{
		NodeLimit:        c.NodeLimit,
		TimeLimit:        c.TimeLimit(),
		Fathoming:        c.Fathoming,
		TightBound:       c.TightBound,
		WarmStart:        c.WarmStart,
		ProgressInterval: c.ProgressInterval,
	}
}

// OvertimeConfig holds the overtime parameters applied to instances that
// carry none, which is the case for every PSPLIB file.
type OvertimeConfig struct {
	ZMaxRatio float64 `json:"zmax_ratio"`
	Kappa     float64 `json:"kappa"`
}

// DefaultOvertimeConfig allows half the capacity as overtime at unit cost.
func DefaultOvertimeConfig() OvertimeConfig {
	return OvertimeConfig{ZMaxRatio: 0.5, Kappa: 1}
}

// Validate rejects negative parameters.
func (c OvertimeConfig) Validate() error {
	if c.ZMaxRatio < 0 {
		return fmt.Errorf("zmax_ratio must be >= 0 (got %g)", c.ZMaxRatio)
	}
	if c.Kappa < 0 {
		return fmt.Errorf("kappa must be >= 0 (got %g)", c.Kappa)
	}
	return nil
}

// Defaults converts c for overtime.FromInstance.
func (c OvertimeConfig) Defaults() overtime.Defaults {
	return overtime.Defaults{ZMaxRatio: c.ZMaxRatio, Kappa: c.Kappa}
}
