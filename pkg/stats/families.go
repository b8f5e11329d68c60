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

package stats

import (
	"fmt"

	"github.com/walteh/backtrack/pkg/conditions"
)

// Conditional-count thresholds, matching the strategy's analysis
const (
	rsiLowWatermark = 25    // RSI considered deeply oversold below this
	histEpsilon     = 0.001 // Hist considered meaningfully positive above this
)

// 📈 RSISummary aggregates the RSI family over a conditions run
type RSISummary struct {
	Acc     Accumulator
	Below25 int // Values under the low watermark
}

// 📈 MACDSummary aggregates MACD-vs-Signal comparisons
type MACDSummary struct {
	Total       int // Records seen
	AboveSignal int // Records where MACD > Signal (Hist > 0)
}

// 📈 HistSummary aggregates the MACD histogram family
type HistSummary struct {
	Acc      Accumulator
	Negative int // Values below zero
	AboveEps int // Values above the epsilon threshold
}

// SummarizeRSI folds every record's RSI in one forward pass
func SummarizeRSI(records []conditions.Record) RSISummary {
	var s RSISummary
	for _, r := range records {
		s.Acc.Add(r.RSI)
		if r.RSI < rsiLowWatermark {
			s.Below25++
		}
	}
	return s
}

// SummarizeMACD counts records where MACD crossed above its signal line
func SummarizeMACD(records []conditions.Record) MACDSummary {
	var s MACDSummary
	for _, r := range records {
		s.Total++
		if r.Hist > 0 {
			s.AboveSignal++
		}
	}
	return s
}

// SummarizeHist folds every record's histogram in one forward pass
func SummarizeHist(records []conditions.Record) HistSummary {
	var s HistSummary
	for _, r := range records {
		s.Acc.Add(r.Hist)
		if r.Hist < 0 {
			s.Negative++
		}
		if r.Hist > histEpsilon {
			s.AboveEps++
		}
	}
	return s
}

// Percentage returns the share of records with MACD above signal
func (s MACDSummary) Percentage() float64 {
	if s.Total == 0 {
		return 0.0
	}
	return float64(s.AboveSignal) / float64(s.Total) * 100
}

// Lines renders the RSI block as labeled report lines
func (s RSISummary) Lines() []string {
	return []string{
		"RSI Statistics:",
		fmt.Sprintf("  Count: %d", s.Acc.Count()),
		fmt.Sprintf("  Mean: %s", s.Acc.FormatMean(5)),
		fmt.Sprintf("  Min: %s", s.Acc.FormatMin(2)),
		fmt.Sprintf("  Max: %s", s.Acc.FormatMax(2)),
		fmt.Sprintf("  RSI < %d Count: %d", rsiLowWatermark, s.Below25),
	}
}

// Lines renders the MACD-vs-Signal block as labeled report lines
func (s MACDSummary) Lines() []string {
	return []string{
		"MACD > Signal Statistics:",
		fmt.Sprintf("  MACD > Signal Count: %d", s.AboveSignal),
		fmt.Sprintf("  Percentage: %.4f", s.Percentage()),
	}
}

// Lines renders the Hist block as labeled report lines
func (s HistSummary) Lines() []string {
	return []string{
		"Hist Statistics:",
		fmt.Sprintf("  Count: %d", s.Acc.Count()),
		fmt.Sprintf("  Mean: %s", s.Acc.FormatMean(6)),
		fmt.Sprintf("  Min: %s", s.Acc.FormatMin(4)),
		fmt.Sprintf("  Max: %s", s.Acc.FormatMax(4)),
		fmt.Sprintf("  Negative Hist Count: %d", s.Negative),
		fmt.Sprintf("  Hist > %.3f Count: %d", histEpsilon, s.AboveEps),
	}
}
