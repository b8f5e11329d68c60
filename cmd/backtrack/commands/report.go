package commands

import (
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/backtrack/cmd/backtrack/opts"
	"github.com/walteh/backtrack/pkg/log"
	"github.com/walteh/backtrack/pkg/report"
)

// NewReportCmd creates a new report command
func NewReportCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Compose the backtest report digest",
		Long: `Report reads the backtest log, the trade history CSV and the
partial-conditions log, computes the indicator statistics, and writes
a single composed report, fully overwriting the previous one.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			console := log.FromContext(ctx)

			cfg, err := opts.LoadConfig(ctx)
			if err != nil {
				return err
			}

			console.Header("building report")

			builder := report.NewBuilder(report.Options{
				LogFile:      cfg.Report.LogFile,
				TradeHistory: cfg.Report.TradeHistory,
				Conditions:   cfg.Report.Conditions,
				Analysis:     cfg.Report.Analysis,
				Output:       cfg.Report.Output,
			})

			if err := builder.Write(ctx); err != nil {
				return errors.Errorf("building report: %w", err)
			}

			console.Successf("report written to %s", cfg.Report.Output)
			return nil
		},
	}

	return cmd
}
