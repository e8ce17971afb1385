package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kilianp07/rcpspoc/app"
	"github.com/kilianp07/rcpspoc/core/results"
)

var resultsFlags struct {
	instance string
	status   string
	since    time.Duration
}

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "List stored solver runs",
	Args:  cobra.NoArgs,
	RunE:  runResults,
}

func init() {
	f := resultsCmd.Flags()
	f.StringVar(&resultsFlags.instance, "instance", "", "only runs of this instance")
	f.StringVar(&resultsFlags.status, "status", "", "only runs with this status (optimal, truncated, infeasible)")
	f.DurationVar(&resultsFlags.since, "since", 0, "only runs newer than this duration")
	rootCmd.AddCommand(resultsCmd)
}

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
)

func colorStatus(status string) string {
	switch status {
	case "optimal":
		return green(status)
	case "truncated":
		return yellow(status)
	case "infeasible":
		return red(status)
	default:
		return status
	}
}

func runResults(cmd *cobra.Command, _ []string) error {
	q := results.Query{Instance: resultsFlags.instance, Status: resultsFlags.status}
	if resultsFlags.since > 0 {
		q.Start = time.Now().Add(-resultsFlags.since)
	}
	return withService(nil, func(ctx context.Context, svc *app.Service) error {
		recs, err := svc.Store().Query(ctx, q)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "TIME\tINSTANCE\tSTATUS\tPROFIT\tMAKESPAN\tOVERTIME\tNODES\tMS")
		for _, r := range recs {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%g\t%d\t%g\t%d\t%d\n",
				r.Timestamp.Format(time.RFC3339), r.Instance, colorStatus(r.Status),
				r.Profit, r.Makespan, r.Overtime, r.Nodes, r.DurationMS)
		}
		return tw.Flush()
	})
}
