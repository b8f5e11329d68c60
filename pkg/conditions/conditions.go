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

// Package conditions parses the partial-conditions log written by the
// backtest: one line per candle where the entry conditions were only
// partially met, carrying the indicator values at that point.
package conditions

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🕐 TimeLayout is the timestamp layout used inside the brackets
const TimeLayout = "2006-01-02 15:04:05"

// 📋 linePattern matches `[ts],RSI=..,MACD=..,Signal=..,Hist=..`
var linePattern = regexp.MustCompile(`^\[(.*?)\],RSI=([\d.]+),MACD=(-?[\d.]+),Signal=(-?[\d.]+),Hist=(-?[\d.]+)`)

// 📊 Record is one logged partial-condition observation
type Record struct {
	Timestamp time.Time // Candle timestamp
	RSI       float64   // Relative strength index
	MACD      float64   // MACD line value
	Signal    float64   // MACD signal line value
	Hist      float64   // MACD histogram (macd - signal)
}

// 📝 Format renders the record back into its on-disk line layout
func (r Record) Format() string {
	return fmt.Sprintf("[%s],RSI=%.2f,MACD=%.4f,Signal=%.4f,Hist=%.4f",
		r.Timestamp.Format(TimeLayout), r.RSI, r.MACD, r.Signal, r.Hist)
}

// 🔍 ParseLine parses one line of the conditions log. The second return
// is false when the line does not match the expected layout; malformed
// lines are a distinguishable outcome, not an error.
func ParseLine(line string) (Record, bool) {
	m := linePattern.FindStringSubmatch(line)
	if m == nil {
		return Record{}, false
	}

	ts, err := time.Parse(TimeLayout, m[1])
	if err != nil {
		return Record{}, false
	}

	fields := make([]float64, 4)
	for i, raw := range m[2:6] {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Record{}, false
		}
		fields[i] = v
	}

	return Record{
		Timestamp: ts,
		RSI:       fields[0],
		MACD:      fields[1],
		Signal:    fields[2],
		Hist:      fields[3],
	}, true
}

// 📖 ReadFile streams the conditions file and returns every well-formed
// record in file order. Lines that do not parse are skipped.
func ReadFile(ctx context.Context, path string) ([]Record, error) {
	logger := zerolog.Ctx(ctx)

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Errorf("opening conditions file: %w", err)
	}
	defer f.Close()

	var records []Record
	skipped := 0

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		rec, ok := ParseLine(line)
		if !ok {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Errorf("reading conditions file: %w", err)
	}

	logger.Debug().
		Str("path", path).
		Int("records", len(records)).
		Int("skipped", skipped).
		Msg("loaded partial conditions")

	return records, nil
}
