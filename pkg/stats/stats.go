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

// Package stats accumulates descriptive statistics over indicator
// values in a single forward pass. Source records are never mutated;
// an empty input reports a defined sentinel instead of dividing by
// zero.
package stats

import "fmt"

// 🚫 Sentinel reported for mean/min/max over an empty input set
const Sentinel = "N/A"

// 📊 Accumulator tracks count, sum and running min/max of a series
type Accumulator struct {
	count int
	sum   float64
	min   float64
	max   float64
}

// ➕ Add folds one value into the accumulator
func (a *Accumulator) Add(v float64) {
	if a.count == 0 || v < a.min {
		a.min = v
	}
	if a.count == 0 || v > a.max {
		a.max = v
	}
	a.count++
	a.sum += v
}

// 🔢 Count returns the number of accumulated values
func (a *Accumulator) Count() int {
	return a.count
}

// ➗ Mean returns the arithmetic mean and whether it is defined
func (a *Accumulator) Mean() (float64, bool) {
	if a.count == 0 {
		return 0, false
	}
	return a.sum / float64(a.count), true
}

// ⬇️ Min returns the smallest value and whether it is defined
func (a *Accumulator) Min() (float64, bool) {
	if a.count == 0 {
		return 0, false
	}
	return a.min, true
}

// ⬆️ Max returns the largest value and whether it is defined
func (a *Accumulator) Max() (float64, bool) {
	if a.count == 0 {
		return 0, false
	}
	return a.max, true
}

// FormatMean renders the mean with the given precision, or the sentinel
func (a *Accumulator) FormatMean(precision int) string {
	m, ok := a.Mean()
	if !ok {
		return Sentinel
	}
	return fmt.Sprintf("%.*f", precision, m)
}

// FormatMin renders the min with the given precision, or the sentinel
func (a *Accumulator) FormatMin(precision int) string {
	m, ok := a.Min()
	if !ok {
		return Sentinel
	}
	return fmt.Sprintf("%.*f", precision, m)
}

// FormatMax renders the max with the given precision, or the sentinel
func (a *Accumulator) FormatMax(precision int) string {
	m, ok := a.Max()
	if !ok {
		return Sentinel
	}
	return fmt.Sprintf("%.*f", precision, m)
}
