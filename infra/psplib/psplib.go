// Package psplib reads project instances from the PSPLIB single-mode (.sm)
// and Patterson (.rcp) formats.
package psplib

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kilianp07/rcpspoc/core/model"
)

// ErrFormat is returned for input that does not follow the expected layout.
var ErrFormat = errors.New("psplib: malformed instance")

// LoadFile parses the instance at path, choosing the format by extension.
// The instance is named after the file.
func LoadFile(path string) (*model.Instance, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var inst *model.Instance
	switch strings.ToLower(filepath.Ext(path)) {
	case ".sm":
		inst, err = ParseSM(f)
	case ".rcp":
		inst, err = ParseRCP(f)
	default:
		return nil, fmt.Errorf("psplib: unsupported extension %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	inst.Name = filepath.Base(path)
	return inst, nil
}

// IsInstanceFile reports whether path has an extension LoadFile understands.
func IsInstanceFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".sm", ".rcp":
		return true
	}
	return false
}

type smSection int

const (
	smHeader smSection = iota
	smPrecedence
	smRequests
	smAvailability
)

// ParseSM reads the PSPLIB single-mode format. Only renewable resources are
// kept; nonrenewable and doubly constrained columns are ignored.
func ParseSM(r io.Reader) (*model.Instance, error) {
	inst := &model.Instance{}
	section := smHeader
	availHeader := false
	seenPrec, seenReq := 0, 0
	sc := bufio.NewScanner(r)
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		switch {
		case text == "" || strings.HasPrefix(text, "***") || strings.HasPrefix(text, "---"):
			continue
		case strings.HasPrefix(text, "jobs (incl. supersource/sink"):
			n, err := valueAfterColon(text)
			if err != nil {
				return nil, lineErr(line, err)
			}
			if n <= 0 {
				return nil, lineErr(line, fmt.Errorf("job count %d", n))
			}
			inst.NumJobs = n
			inst.Durations = make([]int, n)
			inst.Demands = make([][]int, n)
			inst.Successors = make([][]int, n)
			continue
		case strings.HasPrefix(text, "- renewable"):
			n, err := valueAfterColon(text)
			if err != nil {
				return nil, lineErr(line, err)
			}
			if n < 0 {
				return nil, lineErr(line, fmt.Errorf("renewable resource count %d", n))
			}
			inst.NumRes = n
			continue
		case strings.HasPrefix(text, "PRECEDENCE RELATIONS"):
			section = smPrecedence
			continue
		case strings.HasPrefix(text, "REQUESTS/DURATIONS"):
			section = smRequests
			continue
		case strings.HasPrefix(text, "RESOURCEAVAILABILITIES"):
			section = smAvailability
			continue
		case strings.HasPrefix(text, "jobnr."):
			continue
		}
		if inst.NumJobs == 0 && section != smHeader {
			return nil, lineErr(line, errors.New("job count missing"))
		}

		switch section {
		case smPrecedence:
			f, err := ints(text)
			if err != nil || len(f) < 3 || len(f) != 3+f[2] {
				return nil, lineErr(line, errors.New("bad precedence row"))
			}
			j := f[0] - 1
			if j < 0 || j >= inst.NumJobs {
				return nil, lineErr(line, fmt.Errorf("job %d out of range", f[0]))
			}
			succ := make([]int, 0, f[2])
			for _, s := range f[3:] {
				succ = append(succ, s-1)
			}
			inst.Successors[j] = succ
			seenPrec++
		case smRequests:
			f, err := ints(text)
			if err != nil || len(f) < 3+inst.NumRes {
				return nil, lineErr(line, errors.New("bad request row"))
			}
			j := f[0] - 1
			if j < 0 || j >= inst.NumJobs {
				return nil, lineErr(line, fmt.Errorf("job %d out of range", f[0]))
			}
			inst.Durations[j] = f[2]
			inst.Demands[j] = append([]int(nil), f[3:3+inst.NumRes]...)
			seenReq++
		case smAvailability:
			if !availHeader {
				// "R 1  R 2 ..." labels
				availHeader = true
				continue
			}
			f, err := ints(text)
			if err != nil || len(f) < inst.NumRes {
				return nil, lineErr(line, errors.New("bad availability row"))
			}
			inst.Capacities = append([]int(nil), f[:inst.NumRes]...)
			section = smHeader
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if inst.NumJobs == 0 || seenPrec != inst.NumJobs || seenReq != inst.NumJobs || inst.Capacities == nil {
		return nil, fmt.Errorf("%w: incomplete file (%d jobs, %d precedence rows, %d request rows)",
			ErrFormat, inst.NumJobs, seenPrec, seenReq)
	}
	return inst, nil
}

// ParseRCP reads the Patterson format: job and resource counts, the
// capacities, then per job its duration, demands, successor count and
// successors.
func ParseRCP(r io.Reader) (*model.Instance, error) {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)
	next := func() (int, error) {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return 0, err
			}
			return 0, fmt.Errorf("%w: unexpected end of input", ErrFormat)
		}
		v, err := strconv.Atoi(sc.Text())
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrFormat, err)
		}
		return v, nil
	}
	var err error
	inst := &model.Instance{}
	if inst.NumJobs, err = next(); err != nil {
		return nil, err
	}
	if inst.NumRes, err = next(); err != nil {
		return nil, err
	}
	if inst.NumJobs <= 0 || inst.NumRes < 0 {
		return nil, fmt.Errorf("%w: %d jobs, %d resources", ErrFormat, inst.NumJobs, inst.NumRes)
	}
	inst.Capacities = make([]int, inst.NumRes)
	for k := range inst.Capacities {
		if inst.Capacities[k], err = next(); err != nil {
			return nil, err
		}
	}
	inst.Durations = make([]int, inst.NumJobs)
	inst.Demands = make([][]int, inst.NumJobs)
	inst.Successors = make([][]int, inst.NumJobs)
	for j := 0; j < inst.NumJobs; j++ {
		if inst.Durations[j], err = next(); err != nil {
			return nil, err
		}
		inst.Demands[j] = make([]int, inst.NumRes)
		for k := range inst.Demands[j] {
			if inst.Demands[j][k], err = next(); err != nil {
				return nil, err
			}
		}
		ns, err := next()
		if err != nil {
			return nil, err
		}
		if ns < 0 {
			return nil, fmt.Errorf("%w: job %d has %d successors", ErrFormat, j+1, ns)
		}
		inst.Successors[j] = make([]int, ns)
		for s := range inst.Successors[j] {
			v, err := next()
			if err != nil {
				return nil, err
			}
			inst.Successors[j][s] = v - 1
		}
	}
	return inst, nil
}

func valueAfterColon(text string) (int, error) {
	i := strings.LastIndex(text, ":")
	if i < 0 {
		return 0, errors.New("missing ':'")
	}
	fields := strings.Fields(text[i+1:])
	if len(fields) == 0 {
		return 0, errors.New("missing value")
	}
	return strconv.Atoi(fields[0])
}

func ints(text string) ([]int, error) {
	fields := strings.Fields(text)
	out := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func lineErr(line int, err error) error {
	return fmt.Errorf("%w: line %d: %v", ErrFormat, line, err)
}
