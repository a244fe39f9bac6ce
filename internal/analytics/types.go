// Package analytics provides the series types shared by the statistics,
// time-series, correlation and anomaly packages.
package analytics

import (
	"encoding/json"
	"math"

	"gonum.org/v1/gonum/stat"
)

// TimeSeriesPoint is one cell of a parameter column, in file order.
// Invalid points keep their position so that positional analyses see the gap.
type TimeSeriesPoint struct {
	Index int     `json:"index"` // Row index in the source dataset
	Date  string  `json:"date,omitempty"`
	Value float64 `json:"value"`
	Valid bool    `json:"valid"`
}

// TimeSeriesData represents a collection of time-series data points
type TimeSeriesData []TimeSeriesPoint

// FromValues builds a fully valid series indexed 0..n-1.
func FromValues(values []float64) TimeSeriesData {
	ts := make(TimeSeriesData, len(values))
	for i, v := range values {
		ts[i] = TimeSeriesPoint{Index: i, Value: v, Valid: true}
	}
	return ts
}

// Values extracts the valid values in order, skipping nulls
func (ts TimeSeriesData) Values() []float64 {
	values := make([]float64, 0, len(ts))
	for _, p := range ts {
		if p.Valid {
			values = append(values, p.Value)
		}
	}
	return values
}

// Valid returns the valid points only, preserving their fields
func (ts TimeSeriesData) Valid() TimeSeriesData {
	out := make(TimeSeriesData, 0, len(ts))
	for _, p := range ts {
		if p.Valid {
			out = append(out, p)
		}
	}
	return out
}

// Len returns the number of positions, nulls included
func (ts TimeSeriesData) Len() int {
	return len(ts)
}

// ValidCount returns the number of non-null points
func (ts TimeSeriesData) ValidCount() int {
	n := 0
	for _, p := range ts {
		if p.Valid {
			n++
		}
	}
	return n
}

// Mean calculates the mean of the valid values
func (ts TimeSeriesData) Mean() float64 {
	mean, _ := PopMeanStdDev(ts.Values())
	return mean
}

// StdDev calculates the population standard deviation of the valid values
func (ts TimeSeriesData) StdDev() float64 {
	_, std := PopMeanStdDev(ts.Values())
	return std
}

// PopMeanVariance returns the mean and population variance of values, or
// zeros for an empty slice. Rounding can leave a tiny negative variance on a
// near-constant input; it is clamped to 0.
func PopMeanVariance(values []float64) (mean, variance float64) {
	if len(values) == 0 {
		return 0, 0
	}
	mean, variance = stat.PopMeanVariance(values, nil)
	if variance < 0 {
		variance = 0
	}
	return mean, variance
}

// PopMeanStdDev returns the mean and population standard deviation of values
func PopMeanStdDev(values []float64) (mean, std float64) {
	mean, variance := PopMeanVariance(values)
	return mean, math.Sqrt(variance)
}

// Optional is a number that may be absent. It encodes as JSON null when absent.
type Optional struct {
	Value float64
	Valid bool
}

// Some wraps a defined value
func Some(v float64) Optional {
	return Optional{Value: v, Valid: true}
}

// None is the absent value
var None = Optional{}

// MarshalJSON encodes absent values as null
func (o Optional) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// UnmarshalJSON decodes null as absent
func (o *Optional) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*o = None
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}
