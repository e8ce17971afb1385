package cmd

import (
	"context"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/kilianp07/rcpspoc/app"
	"github.com/kilianp07/rcpspoc/pkg/export"
)

var batchParallel int

var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Solve every instance of a directory",
	Long: `Batch solves the instance files of a directory and prints one
"instance;profit" line per file in name order. Instances without a schedule
get an empty profit.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	f := batchCmd.Flags()
	f.IntVarP(&batchParallel, "parallel", "p", runtime.NumCPU(), "number of concurrent searches")
	f.DurationVar(&solveFlags.timeLimit, "time-limit", 0, "stop each search after this duration")
	f.Int64Var(&solveFlags.nodeLimit, "node-limit", 0, "stop each search after this many nodes")
	f.BoolVar(&solveFlags.noFathoming, "no-fathoming", false, "disable the active-schedule dominance rule")
	f.BoolVar(&solveFlags.tightBound, "tight-bound", false, "evaluate the missing-demand bound at every node")
	f.BoolVar(&solveFlags.warmStart, "warm-start", false, "seed the incumbent with serial SGS schedules")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	return withService(applySolverFlags(cmd), func(ctx context.Context, svc *app.Service) error {
		rows, err := svc.Batch(ctx, args[0], batchParallel)
		if err != nil {
			return err
		}
		return export.WriteCSV(cmd.OutOrStdout(), rows)
	})
}
