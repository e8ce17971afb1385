package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/rcpspoc/app"
	"github.com/kilianp07/rcpspoc/config"
	"github.com/kilianp07/rcpspoc/pkg/export"
)

var solveFlags struct {
	timeLimit   time.Duration
	nodeLimit   int64
	noFathoming bool
	tightBound  bool
	warmStart   bool
	format      string
	chart       string
}

var solveCmd = &cobra.Command{
	Use:   "solve <instance>",
	Short: "Solve one instance with branch and bound",
	Long: `Solve reads a PSPLIB (.sm, .rcp), JSON or YAML instance and prints the
best schedule found. Flags override the solver section of the configuration.`,
	Args: cobra.ExactArgs(1),
	RunE: runSolve,
}

func init() {
	f := solveCmd.Flags()
	f.DurationVar(&solveFlags.timeLimit, "time-limit", 0, "stop the search after this duration")
	f.Int64Var(&solveFlags.nodeLimit, "node-limit", 0, "stop the search after this many nodes")
	f.BoolVar(&solveFlags.noFathoming, "no-fathoming", false, "disable the active-schedule dominance rule")
	f.BoolVar(&solveFlags.tightBound, "tight-bound", false, "evaluate the missing-demand bound at every node")
	f.BoolVar(&solveFlags.warmStart, "warm-start", false, "seed the incumbent with serial SGS schedules")
	f.StringVarP(&solveFlags.format, "output", "o", "json", "output format: json or yaml")
	f.StringVar(&solveFlags.chart, "chart", "", "write an HTML resource profile chart to this file")
	rootCmd.AddCommand(solveCmd)
}

// applySolverFlags copies the flags the user set onto the solver section.
func applySolverFlags(cmd *cobra.Command) func(*config.Config) {
	return func(cfg *config.Config) {
		f := cmd.Flags()
		if f.Changed("time-limit") {
			cfg.Solver.TimeLimitSeconds = solveFlags.timeLimit.Seconds()
		}
		if f.Changed("node-limit") {
			cfg.Solver.NodeLimit = solveFlags.nodeLimit
		}
		if f.Changed("no-fathoming") {
			cfg.Solver.Fathoming = !solveFlags.noFathoming
		}
		if f.Changed("tight-bound") {
			cfg.Solver.TightBound = solveFlags.tightBound
		}
		if f.Changed("warm-start") {
			cfg.Solver.WarmStart = solveFlags.warmStart
		}
	}
}

func runSolve(cmd *cobra.Command, args []string) error {
	write, err := solutionWriter(solveFlags.format)
	if err != nil {
		return err
	}
	return withService(applySolverFlags(cmd), func(ctx context.Context, svc *app.Service) error {
		run, err := svc.Solve(ctx, args[0])
		if err != nil {
			return err
		}
		if err := write(cmd.OutOrStdout(), export.NewSolution(run.Model, run.Result)); err != nil {
			return err
		}
		if solveFlags.chart == "" {
			return nil
		}
		if !run.Result.Found() {
			return fmt.Errorf("no schedule to chart for %s", run.Result.Instance)
		}
		f, err := os.Create(solveFlags.chart)
		if err != nil {
			return err
		}
		if err := export.WriteProfileChart(f, run.Model, run.Result.Schedule); err != nil {
			_ = f.Close()
			return err
		}
		return f.Close()
	})
}

func solutionWriter(format string) (func(io.Writer, export.Solution) error, error) {
	switch format {
	case "json":
		return export.WriteJSON, nil
	case "yaml", "yml":
		return export.WriteYAML, nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}
