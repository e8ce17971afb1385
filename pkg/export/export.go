// Package export writes solver results as JSON, YAML, CSV and HTML charts.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/rcpspoc/core/bnb"
	"github.com/kilianp07/rcpspoc/core/overtime"
)

// Solution is the exported view of a solver result.
type Solution struct {
	Instance string `json:"instance" yaml:"instance"`
	RunID    string `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Status   string `json:"status" yaml:"status"`
	// Profit is nil when no schedule was found.
	Profit       *float64 `json:"profit" yaml:"profit"`
	Makespan     int      `json:"makespan" yaml:"makespan"`
	Revenue      float64  `json:"revenue" yaml:"revenue"`
	OvertimeCost float64  `json:"overtime_cost" yaml:"overtime_cost"`
	Start        []int    `json:"start,omitempty" yaml:"start,omitempty,flow"`
	Finish       []int    `json:"finish,omitempty" yaml:"finish,omitempty,flow"`
	Nodes        int64    `json:"nodes" yaml:"nodes"`
	Bounded      int64    `json:"bounded" yaml:"bounded"`
	DurationMS   int64    `json:"duration_ms" yaml:"duration_ms"`
}

// NewSolution summarizes res for the model it was computed on.
func NewSolution(m *overtime.Model, res bnb.Result) Solution {
	sol := Solution{
		Instance:   res.Instance,
		RunID:      res.RunID,
		Status:     res.Status.String(),
		Nodes:      res.Nodes,
		Bounded:    res.Bounded,
		DurationMS: res.Duration.Milliseconds(),
	}
	if !res.Found() {
		return sol
	}
	profit := res.Profit
	sol.Profit = &profit
	sol.Makespan = res.Schedule.Makespan()
	sol.Revenue = m.Revenue(sol.Makespan)
	sol.OvertimeCost = m.TotalCostsOf(res.Schedule)
	sol.Start = append([]int(nil), res.Schedule...)
	sol.Finish = m.FinishTimes(res.Schedule)
	return sol
}

// WriteJSON writes the solution to w in indented JSON format.
func WriteJSON(w io.Writer, sol Solution) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(sol)
}

// WriteYAML writes the solution to w in YAML format.
func WriteYAML(w io.Writer, sol Solution) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(sol); err != nil {
		return err
	}
	return enc.Close()
}

// Row is one line of a batch summary.
type Row struct {
	Instance string
	Profit   float64
}

// WriteCSV writes one "instance;profit" line per row without a header.
// Instances without a schedule get an empty profit.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	for _, r := range rows {
		profit := ""
		if !math.IsInf(r.Profit, 0) && !math.IsNaN(r.Profit) {
			profit = strconv.FormatFloat(r.Profit, 'f', -1, 64)
		}
		if err := cw.Write([]string{r.Instance, profit}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
