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

// Package trades loads and analyzes the trade history CSV written by
// the backtest. Money columns are parsed as decimals so sums and
// ratios stay exact; indicator columns stay float64.
package trades

import (
	"context"
	"encoding/csv"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gitlab.com/tozd/go/errors"
)

// 🕐 TimeLayout is the timestamp layout of the CSV's timestamp column
const TimeLayout = "2006-01-02 15:04:05"

// 💱 Trade is one closed position from trade_history.csv
type Trade struct {
	Timestamp     time.Time
	Side          string
	EntryPrice    decimal.Decimal
	ExitPrice     decimal.Decimal
	Size          decimal.Decimal
	ProfitLoss    decimal.Decimal
	WinLoss       string // "Win" or "Loss"
	USDTBalance   decimal.Decimal
	SOLBalance    decimal.Decimal
	ExitType      string // "Stop Loss", "Take Profit" or "Time Exit"
	SLDistance    decimal.Decimal
	TPDistance    decimal.Decimal
	MACDAtEntry   float64
	SignalAtEntry float64
	HistAtEntry   float64
	ATRAtEntry    float64
	CandlesHeld   int
}

// IsWin reports whether the trade closed profitably
func (t Trade) IsWin() bool {
	return t.WinLoss == "Win"
}

// 📒 History is the parsed trade history plus the verbatim CSV lines
type History struct {
	Trades []Trade
	Raw    []string // Raw CSV lines, header first, for verbatim excerpts
}

// Header returns the verbatim CSV header line
func (h *History) Header() string {
	if len(h.Raw) == 0 {
		return ""
	}
	return h.Raw[0]
}

// ExcerptRows returns the raw data rows for the report excerpt: the
// first `head` and last `tail` rows, deduplicated when they overlap.
func (h *History) ExcerptRows(head, tail int) []string {
	rows := h.Raw
	if len(rows) > 0 {
		rows = rows[1:] // drop header
	}
	if len(rows) <= head+tail {
		return rows
	}
	out := make([]string, 0, head+tail)
	out = append(out, rows[:head]...)
	out = append(out, rows[len(rows)-tail:]...)
	return out
}

// ExitTypes returns the distinct exit types in first-appearance order
func (h *History) ExitTypes() []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range h.Trades {
		if !seen[t.ExitType] {
			seen[t.ExitType] = true
			out = append(out, t.ExitType)
		}
	}
	return out
}

// ByExitType returns the trades closed with the given exit type
func (h *History) ByExitType(exitType string) []Trade {
	var out []Trade
	for _, t := range h.Trades {
		if t.ExitType == exitType {
			out = append(out, t)
		}
	}
	return out
}

// Wins returns the winning trades
func (h *History) Wins() []Trade {
	var out []Trade
	for _, t := range h.Trades {
		if t.IsWin() {
			out = append(out, t)
		}
	}
	return out
}

// Losses returns the losing trades
func (h *History) Losses() []Trade {
	var out []Trade
	for _, t := range h.Trades {
		if !t.IsWin() {
			out = append(out, t)
		}
	}
	return out
}

// 📖 Load reads and parses the trade history CSV. A missing file is a
// hard error; a row that fails to parse names the offending row.
func Load(ctx context.Context, path string) (*History, error) {
	logger := zerolog.Ctx(ctx)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading trade history: %w", err)
	}

	raw := splitLines(string(data))
	if len(raw) == 0 {
		return nil, errors.Errorf("trade history %s is empty", path)
	}

	reader := csv.NewReader(strings.NewReader(string(data)))
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Errorf("parsing trade history: %w", err)
	}

	cols := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		cols[strings.TrimSpace(name)] = i
	}

	h := &History{Raw: raw}
	for i, row := range rows[1:] {
		t, err := parseRow(cols, row)
		if err != nil {
			return nil, errors.Errorf("parsing trade row %d: %w", i+1, err)
		}
		h.Trades = append(h.Trades, t)
	}

	logger.Debug().Str("path", path).Int("trades", len(h.Trades)).Msg("loaded trade history")
	return h, nil
}

func splitLines(data string) []string {
	var out []string
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimRight(line, "\r")
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func parseRow(cols map[string]int, row []string) (Trade, error) {
	get := func(name string) (string, error) {
		i, ok := cols[name]
		if !ok {
			return "", errors.Errorf("missing column %q", name)
		}
		if i >= len(row) {
			return "", errors.Errorf("row too short for column %q", name)
		}
		return row[i], nil
	}
	getDecimal := func(name string) (decimal.Decimal, error) {
		s, err := get(name)
		if err != nil {
			return decimal.Zero, err
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, errors.Errorf("column %q: %w", name, err)
		}
		return d, nil
	}
	getFloat := func(name string) (float64, error) {
		s, err := get(name)
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, errors.Errorf("column %q: %w", name, err)
		}
		return v, nil
	}

	var t Trade
	var err error

	rawTS, err := get("timestamp")
	if err != nil {
		return t, err
	}
	t.Timestamp, err = time.Parse(TimeLayout, rawTS)
	if err != nil {
		return t, errors.Errorf("column \"timestamp\": %w", err)
	}

	if t.Side, err = get("side"); err != nil {
		return t, err
	}
	if t.WinLoss, err = get("win_loss"); err != nil {
		return t, err
	}
	if t.ExitType, err = get("exit_type"); err != nil {
		return t, err
	}

	if t.EntryPrice, err = getDecimal("entry_price"); err != nil {
		return t, err
	}
	if t.ExitPrice, err = getDecimal("exit_price"); err != nil {
		return t, err
	}
	if t.Size, err = getDecimal("size"); err != nil {
		return t, err
	}
	if t.ProfitLoss, err = getDecimal("profit_loss"); err != nil {
		return t, err
	}
	if t.USDTBalance, err = getDecimal("usdt_balance"); err != nil {
		return t, err
	}
	if t.SOLBalance, err = getDecimal("sol_balance"); err != nil {
		return t, err
	}
	if t.SLDistance, err = getDecimal("sl_distance"); err != nil {
		return t, err
	}
	if t.TPDistance, err = getDecimal("tp_distance"); err != nil {
		return t, err
	}

	if t.MACDAtEntry, err = getFloat("macd_at_entry"); err != nil {
		return t, err
	}
	if t.SignalAtEntry, err = getFloat("signal_at_entry"); err != nil {
		return t, err
	}
	if t.HistAtEntry, err = getFloat("hist_at_entry"); err != nil {
		return t, err
	}
	if t.ATRAtEntry, err = getFloat("atr_at_entry"); err != nil {
		return t, err
	}

	rawHeld, err := get("candles_held")
	if err != nil {
		return t, err
	}
	if t.CandlesHeld, err = strconv.Atoi(rawHeld); err != nil {
		return t, errors.Errorf("column \"candles_held\": %w", err)
	}

	return t, nil
}
