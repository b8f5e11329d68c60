package commands

import (
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/backtrack/cmd/backtrack/opts"
	"github.com/walteh/backtrack/pkg/fsutil"
	"github.com/walteh/backtrack/pkg/log"
	"github.com/walteh/backtrack/pkg/trades"
)

// NewAnalyzeCmd creates a new analyze command
func NewAnalyzeCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Regenerate the trade analysis from the trade history",
		Long: `Analyze loads the trade history CSV and writes the full trade
analysis digest: win rate, profit/loss by exit type, durations,
hourly distribution, indicator means at entry and profit factor.
The report command embeds this file when present.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			console := log.FromContext(ctx)

			cfg, err := opts.LoadConfig(ctx)
			if err != nil {
				return err
			}

			console.Header("analyzing trade history")

			history, err := trades.Load(ctx, cfg.Analyze.TradeHistory)
			if err != nil {
				return errors.Errorf("loading trade history: %w", err)
			}

			text := trades.Analyze(history)
			if err := fsutil.WriteFileAtomic(cfg.Analyze.Output, []byte(text)); err != nil {
				return errors.Errorf("writing analysis: %w", err)
			}

			console.Successf("analysis of %d trades written to %s", len(history.Trades), cfg.Analyze.Output)
			return nil
		},
	}

	return cmd
}
