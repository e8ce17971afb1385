package model

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Instance is the pre-parsed representation of a project with overtime.
// Job 0 is the dummy source and job NumJobs-1 the dummy sink.
type Instance struct {
	Name       string  `json:"name" yaml:"name"`
	NumJobs    int     `json:"num_jobs" yaml:"num_jobs"`
	NumRes     int     `json:"num_res" yaml:"num_res"`
	Durations  []int   `json:"durations" yaml:"durations"`
	Demands    [][]int `json:"demands" yaml:"demands"`
	Successors [][]int `json:"successors" yaml:"successors"`
	Capacities []int   `json:"capacities" yaml:"capacities"`
	// ZMax and Kappa are optional. When empty the configured defaults apply.
	ZMax  []int     `json:"zmax,omitempty" yaml:"zmax,omitempty"`
	Kappa []float64 `json:"kappa,omitempty" yaml:"kappa,omitempty"`
}

// HasOvertime reports whether the instance carries its own overtime parameters.
func (in *Instance) HasOvertime() bool {
	return len(in.ZMax) == in.NumRes && len(in.Kappa) == in.NumRes && in.NumRes > 0
}

// CheckShape verifies that all vectors are sized consistently with NumJobs and NumRes.
func (in *Instance) CheckShape() error {
	if in == nil {
		return fmt.Errorf("instance is nil")
	}
	if in.NumJobs < 2 {
		return fmt.Errorf("num_jobs must be >= 2 (got %d)", in.NumJobs)
	}
	if in.NumRes < 0 {
		return fmt.Errorf("num_res must be >= 0 (got %d)", in.NumRes)
	}
	if len(in.Durations) != in.NumJobs {
		return fmt.Errorf("durations length must be %d (got %d)", in.NumJobs, len(in.Durations))
	}
	if len(in.Demands) != in.NumJobs {
		return fmt.Errorf("demands length must be %d (got %d)", in.NumJobs, len(in.Demands))
	}
	for j, row := range in.Demands {
		if len(row) != in.NumRes {
			return fmt.Errorf("demands[%d] length must be %d (got %d)", j, in.NumRes, len(row))
		}
	}
	if len(in.Successors) != in.NumJobs {
		return fmt.Errorf("successors length must be %d (got %d)", in.NumJobs, len(in.Successors))
	}
	if len(in.Capacities) != in.NumRes {
		return fmt.Errorf("capacities length must be %d (got %d)", in.NumRes, len(in.Capacities))
	}
	if len(in.ZMax) != 0 && len(in.ZMax) != in.NumRes {
		return fmt.Errorf("zmax length must be %d (got %d)", in.NumRes, len(in.ZMax))
	}
	if len(in.Kappa) != 0 && len(in.Kappa) != in.NumRes {
		return fmt.Errorf("kappa length must be %d (got %d)", in.NumRes, len(in.Kappa))
	}
	return nil
}

// LoadInstance reads an instance from a JSON or YAML file.
func LoadInstance(path string) (*Instance, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	inst, err := DecodeInstance(f, ext)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if inst.Name == "" {
		inst.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return inst, nil
}

// DecodeInstance decodes an instance from r in the given format.
func DecodeInstance(r io.Reader, format string) (*Instance, error) {
	var inst Instance
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&inst); err != nil {
			return nil, err
		}
	case "json":
		if err := json.NewDecoder(r).Decode(&inst); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported instance format: %s", format)
	}
	if err := inst.CheckShape(); err != nil {
		return nil, err
	}
	return &inst, nil
}
