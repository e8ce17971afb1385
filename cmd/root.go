package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/rcpspoc/app"
	"github.com/kilianp07/rcpspoc/config"
	"github.com/kilianp07/rcpspoc/infra/logger"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "rcpspoc",
	Short: "Profit-maximizing project scheduling with overtime",
	Long: `rcpspoc schedules resource-constrained projects where overtime can be
bought per resource and period, maximizing revenue minus overtime cost with
an exact branch-and-bound search.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (yaml or json)")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// withService loads the configuration, lets override adjust it and runs fn
// with a service that is closed afterwards.
func withService(override func(*config.Config), fn func(context.Context, *app.Service) error) error {
	ctx, stop := signalContext()
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if override != nil {
		override(cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	svc.ServeMetrics(ctx)
	return fn(ctx, svc)
}
