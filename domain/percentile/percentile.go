// Package percentile holds the two percentile computations used by the examples table:
// the 21-point value table behind the slider labels, and the coarse rank used for live filtering.
// The two are computed independently and must not be substituted for one another.
package percentile

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats/scalar"
)

// Step is the distance between two marks of the value table.
const Step = 5

// Marks maps a percentile mark (0, 5, ..., 100) to the data value at that mark.
type Marks map[int]float64

// Table maps a column key to its marks. Columns without data are absent.
type Table map[string]Marks

// Sampler exposes the numeric value of a column for one row.
type Sampler interface {
	Number(key string) (float64, bool)
}

// MarkPoints returns the 21 marks 0, 5, ..., 100.
func MarkPoints() []int {
	points := make([]int, 0, 100/Step+1)
	for p := 0; p <= 100; p += Step {
		points = append(points, p)
	}
	return points
}

// Values computes the value table for an ascending sample.
// The value at mark p is sorted[round((n-1)*p/100)] rounded to two decimals.
func Values(sorted []float64) (Marks, bool) {
	n := len(sorted)
	if n == 0 {
		return nil, false
	}

	marks := make(Marks, 100/Step+1)
	for _, p := range MarkPoints() {
		index := int(math.Round(float64(n-1) * float64(p) / 100.0))
		marks[p] = scalar.Round(sorted[index], 2)
	}
	return marks, true
}

// Sample collects the parseable values of key across rows, sorted ascending.
func Sample[S Sampler](rows []S, key string) []float64 {
	values := make([]float64, 0, len(rows))
	for _, row := range rows {
		if v, ok := row.Number(key); ok {
			values = append(values, v)
		}
	}
	sort.Float64s(values)
	return values
}

// ComputeTable builds the value table for every key over the full row set.
func ComputeTable[S Sampler](rows []S, keys []string) Table {
	table := make(Table, len(keys))
	for _, key := range keys {
		if marks, ok := Values(Sample(rows, key)); ok {
			table[key] = marks
		}
	}
	return table
}

// Interpolate returns the data value at an arbitrary percentile by linear
// interpolation between the two surrounding marks.
func Interpolate(marks Marks, p float64) (float64, bool) {
	lowerP := int(math.Floor(p/Step)) * Step
	upperP := int(math.Ceil(p/Step)) * Step

	if lowerP == upperP {
		v, ok := marks[lowerP]
		return v, ok
	}

	lowerV, okLower := marks[lowerP]
	upperV, okUpper := marks[upperP]
	if !okLower || !okUpper {
		return 0, false
	}

	fraction := (p - float64(lowerP)) / float64(upperP-lowerP)
	return lowerV + fraction*(upperV-lowerV), true
}

// Rank is the share of the ascending sample that is <= value, as a whole percentage.
// An empty sample ranks everything at 0.
func Rank(value float64, sorted []float64) int {
	if len(sorted) == 0 {
		return 0
	}

	count := 0
	for _, v := range sorted {
		if v <= value {
			count++
		} else {
			break
		}
	}

	return int(math.Round(float64(count) / float64(len(sorted)) * 100))
}

// ValueRange renders the data range covered by [min, max] percentiles, e.g. "42.0 to 87.5".
func (t Table) ValueRange(key string, min, max int) (string, bool) {
	marks, ok := t[key]
	if !ok {
		return "", false
	}

	minValue, okMin := Interpolate(marks, float64(min))
	maxValue, okMax := Interpolate(marks, float64(max))
	if !okMin || !okMax {
		return "", false
	}

	return fmt.Sprintf("%.1f to %.1f", minValue, maxValue), true
}

// DecodeTable parses the injected percentile payload.
func DecodeTable(raw []byte) (Table, error) {
	var table Table
	if err := json.Unmarshal(raw, &table); err != nil {
		return nil, fmt.Errorf("failed to decode percentile table: %w", err)
	}
	if table == nil {
		table = Table{}
	}
	return table, nil
}
