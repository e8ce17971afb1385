package export

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/kilianp07/rcpspoc/core/bnb"
	"github.com/kilianp07/rcpspoc/core/model"
	"github.com/kilianp07/rcpspoc/core/overtime"
	"github.com/kilianp07/rcpspoc/core/project"
)

func forkModel(t *testing.T) *overtime.Model {
	t.Helper()
	m, err := overtime.FromInstance(&model.Instance{
		Name:       "fork",
		NumJobs:    8,
		NumRes:     1,
		Durations:  []int{0, 3, 2, 2, 3, 1, 2, 0},
		Demands:    [][]int{{0}, {3}, {2}, {2}, {1}, {2}, {1}, {0}},
		Successors: [][]int{{1, 2}, {3}, {4}, {5}, {6}, {6}, {7}, {}},
		Capacities: []int{4},
		ZMax:       []int{2},
		Kappa:      []float64{10},
	}, overtime.Defaults{})
	require.NoError(t, err)
	require.NoError(t, m.SetRevenue(overtime.StepRevenue(10, 11, m.Horizon())))
	return m
}

var overtimeSchedule = project.Schedule{0, 0, 0, 3, 3, 5, 6, 8}

func TestNewSolution(t *testing.T) {
	m := forkModel(t)
	res := bnb.Result{
		RunID:    "r1",
		Instance: "fork",
		Schedule: overtimeSchedule,
		Profit:   -10,
		Status:   bnb.StatusOptimal,
		Nodes:    5,
		Duration: 3 * time.Millisecond,
	}
	sol := NewSolution(m, res)
	require.NotNil(t, sol.Profit)
	assert.Equal(t, -10.0, *sol.Profit)
	assert.Equal(t, 8, sol.Makespan)
	assert.Equal(t, 10.0, sol.Revenue)
	assert.Equal(t, 20.0, sol.OvertimeCost)
	assert.Equal(t, []int{0, 3, 2, 5, 6, 6, 8, 8}, sol.Finish)
	assert.Equal(t, "optimal", sol.Status)
	assert.Equal(t, int64(3), sol.DurationMS)

	empty := NewSolution(m, bnb.Result{Instance: "fork", Status: bnb.StatusTruncated, Profit: bnb.NoSolution})
	assert.Nil(t, empty.Profit)
	assert.Empty(t, empty.Start)
}

func TestWriteJSON_NoSolution(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, Solution{Instance: "x", Status: "truncated"}))
	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Nil(t, got["profit"])
	assert.NotContains(t, got, "start")
}

func TestWriteYAML(t *testing.T) {
	m := forkModel(t)
	sol := NewSolution(m, bnb.Result{Instance: "fork", Schedule: overtimeSchedule, Profit: -10})
	var buf bytes.Buffer
	require.NoError(t, WriteYAML(&buf, sol))
	assert.Contains(t, buf.String(), "start: [0, 0, 0, 3, 3, 5, 6, 8]")

	var back Solution
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, sol.Start, back.Start)
	assert.Equal(t, *sol.Profit, *back.Profit)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	rows := []Row{{"j301_1.sm", 12.5}, {"j301_2.sm", 0}, {"j301_3.sm", math.Inf(-1)}}
	require.NoError(t, WriteCSV(&buf, rows))
	assert.Equal(t, "j301_1.sm;12.5\nj301_2.sm;0\nj301_3.sm;\n", buf.String())
}

func TestWriteProfileChart(t *testing.T) {
	m := forkModel(t)
	var buf bytes.Buffer
	require.NoError(t, WriteProfileChart(&buf, m, overtimeSchedule))
	html := buf.String()
	assert.True(t, strings.Contains(html, "Resource 0"))
	assert.Contains(t, html, "overtime")

	bad := project.Schedule{0, 0, 0, 0, 0, 0, 0, 0}
	assert.Error(t, WriteProfileChart(&buf, m, bad))
}
