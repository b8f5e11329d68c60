// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package report composes a single text digest out of a backtest run's
// artifacts: the run log, the trade history CSV, the partial-conditions
// log and, when present, the generated trade analysis.
package report

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/backtrack/pkg/conditions"
	"github.com/walteh/backtrack/pkg/fsutil"
	"github.com/walteh/backtrack/pkg/stats"
	"github.com/walteh/backtrack/pkg/trades"
)

// Report excerpt shape: header plus the first and last data rows
const (
	excerptHead = 4
	excerptTail = 5
	sampleCount = 5
)

// summaryLabels are the run log lines lifted verbatim into the report
var summaryLabels = []string{
	"Total Trades:",
	"Win Rate (%):",
	"Final Balance (USDT):",
	"Total Return (%):",
	"Max Drawdown (%):",
	"Sharpe Ratio:",
	"Profit Factor:",
	"RSI <",
	"Partial Condition Logs:",
}

// analysisPlaceholder stands in when no analysis file has been generated
const analysisPlaceholder = "Trade analysis not available (run `backtrack analyze` to generate it)"

// 📋 Options are the input and output paths for one report run
type Options struct {
	LogFile      string // Backtest run log (required)
	TradeHistory string // Trade history CSV (required)
	Conditions   string // Partial conditions log (required)
	Analysis     string // Trade analysis text (optional)
	Output       string // Destination, fully overwritten each run
}

// 🔨 Builder produces the composed report
type Builder struct {
	opts Options
}

// 🏭 NewBuilder creates a report builder
func NewBuilder(opts Options) *Builder {
	return &Builder{opts: opts}
}

// 📝 Build assembles the report text. Every required input that is
// missing is a hard failure; only the analysis file degrades to a
// placeholder.
func (b *Builder) Build(ctx context.Context) (string, error) {
	logger := zerolog.Ctx(ctx)

	summary, err := scanSummaryLines(b.opts.LogFile)
	if err != nil {
		return "", errors.Errorf("scanning backtest log: %w", err)
	}

	history, err := trades.Load(ctx, b.opts.TradeHistory)
	if err != nil {
		return "", errors.Errorf("loading trade history: %w", err)
	}

	records, err := conditions.ReadFile(ctx, b.opts.Conditions)
	if err != nil {
		return "", errors.Errorf("loading partial conditions: %w", err)
	}

	analysis, found, err := readAnalysis(b.opts.Analysis)
	if err != nil {
		return "", errors.Errorf("reading analysis file: %w", err)
	}
	if !found {
		logger.Warn().Str("path", b.opts.Analysis).Msg("analysis file missing, using placeholder")
	}

	var out strings.Builder

	out.WriteString("=== Backtest Summary ===\n")
	if len(summary) == 0 {
		out.WriteString("No summary lines found in log\n")
	}
	for _, line := range summary {
		out.WriteString(line)
		out.WriteByte('\n')
	}

	fmt.Fprintf(&out, "\n=== Trade History (first %d / last %d of %d) ===\n", excerptHead, excerptTail, len(history.Trades))
	out.WriteString(history.Header())
	out.WriteByte('\n')
	for _, row := range history.ExcerptRows(excerptHead, excerptTail) {
		out.WriteString(row)
		out.WriteByte('\n')
	}

	out.WriteString("\n=== Trade Analysis ===\n")
	if found {
		out.WriteString(strings.TrimRight(analysis, "\n"))
	} else {
		out.WriteString(analysisPlaceholder)
	}
	out.WriteByte('\n')

	out.WriteString("\n=== Partial Conditions ===\n")
	fmt.Fprintf(&out, "Total Partial Conditions: %d\n", len(records))

	for _, block := range [][]string{
		stats.SummarizeRSI(records).Lines(),
		stats.SummarizeMACD(records).Lines(),
		stats.SummarizeHist(records).Lines(),
	} {
		out.WriteByte('\n')
		for _, line := range block {
			out.WriteString(line)
			out.WriteByte('\n')
		}
	}

	fmt.Fprintf(&out, "\nSample Partial Conditions (First %d):\n", sampleCount)
	for i, rec := range records {
		if i >= sampleCount {
			break
		}
		out.WriteString(rec.Format())
		out.WriteByte('\n')
	}

	return out.String(), nil
}

// 💾 Write builds the report and overwrites the output file in full
func (b *Builder) Write(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)

	text, err := b.Build(ctx)
	if err != nil {
		return err
	}

	if err := fsutil.WriteFileAtomic(b.opts.Output, []byte(text)); err != nil {
		return errors.Errorf("writing report: %w", err)
	}

	logger.Info().Str("path", b.opts.Output).Int("bytes", len(text)).Msg("report written")
	return nil
}

// scanSummaryLines lifts the log lines matching a known summary label
func scanSummaryLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Errorf("opening log file: %w", err)
	}
	defer f.Close()

	var matched []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		for _, label := range summaryLabels {
			if strings.Contains(line, label) {
				matched = append(matched, line)
				break
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Errorf("reading log file: %w", err)
	}

	return matched, nil
}

// readAnalysis reads the optional analysis file; absence is not an error
func readAnalysis(path string) (string, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return string(data), true, nil
}
