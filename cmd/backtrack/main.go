package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/walteh/backtrack/cmd/backtrack/commands"
	"github.com/walteh/backtrack/cmd/backtrack/opts"
	"github.com/walteh/backtrack/pkg/log"
)

func main() {
	// Create root command
	rootCmd := &cobra.Command{
		Use:   "backtrack",
		Short: "A tool for digesting and snapshotting backtest run artifacts",
		Long: `backtrack works on a trading-backtest workspace: it concatenates a
run's log, trade history and partial-conditions statistics into one
report, regenerates the trade analysis, and snapshots tracked files
into timestamped backup directories when their content changes.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging()
		},
	}

	// Add shared flags
	addRootFlags(rootCmd)

	// Create root options
	console := log.New(os.Stdout, zerolog.InfoLevel)
	rootOpts := &opts.RootOpts{}
	cobra.OnInitialize(func() {
		rootOpts.ConfigFile = configFile
	})

	// Add commands
	rootCmd.AddCommand(
		commands.NewReportCmd(rootOpts),
		commands.NewAnalyzeCmd(rootOpts),
		commands.NewBackupCmd(rootOpts),
	)

	ctx := zlog.Logger.WithContext(context.Background())
	ctx = log.NewContext(ctx, console)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		console.Errorf("command failed: %v", err)
		os.Exit(1)
	}
}
