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

package trades

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/walteh/backtrack/pkg/stats"
)

// candleMinutes is the strategy's candle interval
const candleMinutes = 5

// WinRate returns the percentage of winning trades, 0 when empty
func (h *History) WinRate() float64 {
	if len(h.Trades) == 0 {
		return 0.0
	}
	return float64(len(h.Wins())) / float64(len(h.Trades)) * 100
}

// TotalProfitLoss sums profit/loss over every trade
func (h *History) TotalProfitLoss() decimal.Decimal {
	total := decimal.Zero
	for _, t := range h.Trades {
		total = total.Add(t.ProfitLoss)
	}
	return total
}

// ProfitFactor returns gross profit over gross loss and whether the
// ratio is defined (false when there are no losing trades).
func (h *History) ProfitFactor() (decimal.Decimal, bool) {
	grossProfit := decimal.Zero
	grossLoss := decimal.Zero
	for _, t := range h.Trades {
		if t.ProfitLoss.IsPositive() {
			grossProfit = grossProfit.Add(t.ProfitLoss)
		} else if t.ProfitLoss.IsNegative() {
			grossLoss = grossLoss.Add(t.ProfitLoss.Abs())
		}
	}
	if grossLoss.IsZero() {
		return decimal.Zero, false
	}
	return grossProfit.DivRound(grossLoss, 8), true
}

// TradesByHour counts trades per entry hour, indexed 0..23
func (h *History) TradesByHour() [24]int {
	var byHour [24]int
	for _, t := range h.Trades {
		byHour[t.Timestamp.Hour()]++
	}
	return byHour
}

// 📊 Analyze renders the full trade analysis digest: summary, per-exit
// breakdowns, durations, hourly distribution, indicator means at entry
// and the aggregate money metrics.
func Analyze(h *History) string {
	var b strings.Builder

	if len(h.Trades) == 0 {
		b.WriteString("No trade data to analyze\n")
		return b.String()
	}

	wins := h.Wins()
	losses := h.Losses()

	fmt.Fprintf(&b, "Trade Summary:\n")
	fmt.Fprintf(&b, "Total Trades: %d\n", len(h.Trades))
	fmt.Fprintf(&b, "Wins: %d\n", len(wins))
	fmt.Fprintf(&b, "Losses: %d\n", len(losses))
	fmt.Fprintf(&b, "Win Rate (%%): %.2f\n", h.WinRate())

	fmt.Fprintf(&b, "\nMean Profit/Loss by Exit Type (USDT):\n")
	for _, exitType := range h.ExitTypes() {
		subset := h.ByExitType(exitType)
		fmt.Fprintf(&b, "%s: %s (Trades: %d)\n", exitType, meanDecimal(subset, 6, func(t Trade) decimal.Decimal { return t.ProfitLoss }), len(subset))
	}

	held := func(t Trade) float64 { return float64(t.CandlesHeld) }
	fmt.Fprintf(&b, "\nAverage Trade Duration (Candles):\n")
	fmt.Fprintf(&b, "Overall: %s\n", meanFloat(h.Trades, 2, held))
	fmt.Fprintf(&b, "Wins: %s\n", meanFloat(wins, 2, held))
	fmt.Fprintf(&b, "Losses: %s\n", meanFloat(losses, 2, held))
	if avg, ok := meanOf(h.Trades, held); ok {
		fmt.Fprintf(&b, "Average Trade Duration (Minutes): %.2f\n", avg*candleMinutes)
	}

	fmt.Fprintf(&b, "\nCandles Held by Exit Type:\n")
	for _, exitType := range h.ExitTypes() {
		fmt.Fprintf(&b, "%s: %s candles\n", exitType, meanFloat(h.ByExitType(exitType), 2, held))
	}

	fmt.Fprintf(&b, "\nTrades by Hour:\n")
	byHour := h.TradesByHour()
	for hour, n := range byHour {
		if n > 0 {
			fmt.Fprintf(&b, "  %02d: %d\n", hour, n)
		}
	}

	fmt.Fprintf(&b, "\nMean ATR at Entry:\n")
	atr := func(t Trade) float64 { return t.ATRAtEntry }
	fmt.Fprintf(&b, "  Overall: %s\n", meanFloat(h.Trades, 4, atr))
	fmt.Fprintf(&b, "  Wins: %s\n", meanFloat(wins, 4, atr))
	fmt.Fprintf(&b, "  Losses: %s\n", meanFloat(losses, 4, atr))

	indicators := []struct {
		name  string
		value func(Trade) float64
	}{
		{"macd_at_entry", func(t Trade) float64 { return t.MACDAtEntry }},
		{"signal_at_entry", func(t Trade) float64 { return t.SignalAtEntry }},
		{"hist_at_entry", func(t Trade) float64 { return t.HistAtEntry }},
	}
	for _, ind := range indicators {
		fmt.Fprintf(&b, "\n%s:\n", ind.name)
		fmt.Fprintf(&b, "  Overall: %s\n", meanFloat(h.Trades, 6, ind.value))
		fmt.Fprintf(&b, "  Wins: %s\n", meanFloat(wins, 6, ind.value))
		fmt.Fprintf(&b, "  Losses: %s\n", meanFloat(losses, 6, ind.value))
	}

	fmt.Fprintf(&b, "\nMean SL/TP Distances (USDT):\n")
	slMean := meanDecimal(h.Trades, 4, func(t Trade) decimal.Decimal { return t.SLDistance })
	tpMean := meanDecimal(h.Trades, 4, func(t Trade) decimal.Decimal { return t.TPDistance })
	fmt.Fprintf(&b, "Stop Loss Distance: %s\n", slMean)
	fmt.Fprintf(&b, "Take Profit Distance: %s\n", tpMean)
	fmt.Fprintf(&b, "SL:TP Ratio: %s:1\n", slTPRatio(h.Trades))

	fmt.Fprintf(&b, "\nAdditional Metrics:\n")
	fmt.Fprintf(&b, "Total Profit/Loss (USDT): %s\n", h.TotalProfitLoss().StringFixed(4))
	if pf, ok := h.ProfitFactor(); ok {
		fmt.Fprintf(&b, "Profit Factor: %s\n", pf.StringFixed(2))
	} else {
		fmt.Fprintf(&b, "Profit Factor: inf\n")
	}
	fmt.Fprintf(&b, "Average Trade Size (SOL): %s\n", meanDecimal(h.Trades, 4, func(t Trade) decimal.Decimal { return t.Size }))

	return b.String()
}

// meanOf computes the mean of a projection, false when undefined
func meanOf(ts []Trade, f func(Trade) float64) (float64, bool) {
	var acc stats.Accumulator
	for _, t := range ts {
		acc.Add(f(t))
	}
	return acc.Mean()
}

// meanFloat renders a projection's mean, or the sentinel when empty
func meanFloat(ts []Trade, precision int, f func(Trade) float64) string {
	m, ok := meanOf(ts, f)
	if !ok {
		return stats.Sentinel
	}
	return fmt.Sprintf("%.*f", precision, m)
}

// meanDecimal renders a decimal projection's mean, sentinel when empty
func meanDecimal(ts []Trade, places int32, f func(Trade) decimal.Decimal) string {
	if len(ts) == 0 {
		return stats.Sentinel
	}
	sum := decimal.Zero
	for _, t := range ts {
		sum = sum.Add(f(t))
	}
	return sum.DivRound(decimal.NewFromInt(int64(len(ts))), places+4).StringFixed(places)
}

// slTPRatio renders mean SL distance over mean TP distance
func slTPRatio(ts []Trade) string {
	if len(ts) == 0 {
		return stats.Sentinel
	}
	slSum := decimal.Zero
	tpSum := decimal.Zero
	for _, t := range ts {
		slSum = slSum.Add(t.SLDistance)
		tpSum = tpSum.Add(t.TPDistance)
	}
	if tpSum.IsZero() {
		return "inf"
	}
	return slSum.DivRound(tpSum, 8).StringFixed(2)
}
