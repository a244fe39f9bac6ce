package timeseries

import (
	"math"

	"github.com/simlens/simlens/internal/analytics"
	"github.com/simlens/simlens/internal/utils"
	"gonum.org/v1/gonum/stat"
)

// PointType marks a turning point
type PointType string

const (
	PointPeak   PointType = "peak"
	PointValley PointType = "valley"
)

// CriticalPoint is a local turning point within the series
type CriticalPoint struct {
	Index int       `json:"index"` // Position within the series
	Row   int       `json:"row"`   // Row index in the dataset
	Date  string    `json:"date,omitempty"`
	Value float64   `json:"value"`
	Type  PointType `json:"type"`
}

// Cyclicality counts direction reversals between consecutive valid samples
type Cyclicality struct {
	Reversals int     `json:"reversals"`
	Ratio     float64 `json:"ratio"`
	Label     string  `json:"label"`
}

// Volatility is the coefficient of variation with its label
type Volatility struct {
	CV    float64 `json:"cv"`
	Label string  `json:"label"`
}

// HalfSplit compares the first and second halves of the valid samples
type HalfSplit struct {
	FirstMean     float64 `json:"first_mean"`
	SecondMean    float64 `json:"second_mean"`
	PercentChange float64 `json:"percent_change"`
}

// Extremes holds the first position of the maximum and minimum
type Extremes struct {
	Max      float64 `json:"max"`
	MaxIndex int     `json:"max_index"`
	Min      float64 `json:"min"`
	MinIndex int     `json:"min_index"`
	Found    bool    `json:"found"`
}

const (
	cyclicalHigh     = "highly cyclical"
	cyclicalModerate = "moderately cyclical"
	cyclicalNone     = "not significantly cyclical"

	volatilityHigh     = "High"
	volatilityModerate = "Moderate"
	volatilityLow      = "Low"
	volatilityUnknown  = "Unknown"
)

// CriticalPoints flags interior positions where the slope over two steps
// changes sign and the change, normalized by the value range, exceeds
// threshold. Positions with a null within two steps are skipped.
// threshold <= 0 uses the default.
func CriticalPoints(ts analytics.TimeSeriesData, threshold float64) []CriticalPoint {
	if threshold <= 0 {
		threshold = utils.DefaultCriticalThreshold
	}

	points := make([]CriticalPoint, 0)
	n := len(ts)
	if n < 5 {
		return points
	}

	ext := FindExtremes(ts)
	valueRange := ext.Max - ext.Min
	if !ext.Found || valueRange == 0 {
		return points
	}

	for i := 2; i <= n-3; i++ {
		if !windowValid(ts, i-2, i+2) {
			continue
		}
		prevSlope := ts[i].Value - ts[i-2].Value
		nextSlope := ts[i+2].Value - ts[i].Value

		if prevSlope*nextSlope >= 0 {
			continue
		}
		if math.Abs(nextSlope-prevSlope)/valueRange <= threshold {
			continue
		}

		typ := PointValley
		if prevSlope > 0 {
			typ = PointPeak
		}
		points = append(points, CriticalPoint{
			Index: i,
			Row:   ts[i].Index,
			Date:  ts[i].Date,
			Value: ts[i].Value,
			Type:  typ,
		})
	}

	return points
}

func windowValid(ts analytics.TimeSeriesData, from, to int) bool {
	for j := from; j <= to; j++ {
		if !ts[j].Valid {
			return false
		}
	}
	return true
}

// MeasureCyclicality counts sign changes between consecutive non-zero deltas
// of the valid samples and divides by the number of valid samples.
func MeasureCyclicality(ts analytics.TimeSeriesData) Cyclicality {
	values := ts.Values()
	if len(values) == 0 {
		return Cyclicality{Label: cyclicalNone}
	}

	reversals := 0
	lastSign := 0
	for i := 1; i < len(values); i++ {
		d := values[i] - values[i-1]
		sign := 0
		switch {
		case d > 0:
			sign = 1
		case d < 0:
			sign = -1
		}
		if sign == 0 {
			continue
		}
		if lastSign != 0 && sign != lastSign {
			reversals++
		}
		lastSign = sign
	}

	ratio := float64(reversals) / float64(len(values))
	label := cyclicalNone
	switch {
	case ratio > 0.4:
		label = cyclicalHigh
	case ratio > 0.2:
		label = cyclicalModerate
	}

	return Cyclicality{Reversals: reversals, Ratio: ratio, Label: label}
}

// MeasureVolatility computes stdDev/|mean| over the valid samples.
// A zero mean or an empty series is labelled Unknown.
func MeasureVolatility(ts analytics.TimeSeriesData) Volatility {
	if ts.ValidCount() == 0 {
		return Volatility{Label: volatilityUnknown}
	}
	mean := ts.Mean()
	if mean == 0 {
		return Volatility{Label: volatilityUnknown}
	}

	cv := ts.StdDev() / math.Abs(mean)
	label := volatilityLow
	switch {
	case cv > 0.3:
		label = volatilityHigh
	case cv > 0.1:
		label = volatilityModerate
	}
	return Volatility{CV: cv, Label: label}
}

// SplitHalves compares the mean of the first floor(n/2) valid samples with
// the mean of the rest.
func SplitHalves(ts analytics.TimeSeriesData) HalfSplit {
	values := ts.Values()
	if len(values) < 2 {
		return HalfSplit{}
	}

	mid := len(values) / 2
	first := stat.Mean(values[:mid], nil)
	second := stat.Mean(values[mid:], nil)

	return HalfSplit{
		FirstMean:     first,
		SecondMean:    second,
		PercentChange: PercentChange(first, second),
	}
}

// FindExtremes returns the first position of the max and min valid values
func FindExtremes(ts analytics.TimeSeriesData) Extremes {
	var ext Extremes
	for i, p := range ts {
		if !p.Valid {
			continue
		}
		if !ext.Found {
			ext = Extremes{Max: p.Value, MaxIndex: i, Min: p.Value, MinIndex: i, Found: true}
			continue
		}
		if p.Value > ext.Max {
			ext.Max = p.Value
			ext.MaxIndex = i
		}
		if p.Value < ext.Min {
			ext.Min = p.Value
			ext.MinIndex = i
		}
	}
	return ext
}
