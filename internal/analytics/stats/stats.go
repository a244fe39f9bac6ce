// Package stats computes descriptive statistics over the valid values of a
// parameter column.
package stats

import (
	"errors"
	"math"
	"sort"

	"github.com/simlens/simlens/internal/analytics"
	"gonum.org/v1/gonum/stat"
)

// ErrUnsupportedConfidence is returned for confidence levels without a z-score
var ErrUnsupportedConfidence = errors.New("unsupported confidence level")

// Summary is the four-number summary shown on the dashboard
type Summary struct {
	Avg    float64 `json:"avg"`
	Max    float64 `json:"max"`
	Min    float64 `json:"min"`
	StdDev float64 `json:"std_dev"`
}

// Extended adds distribution shape to a Summary
type Extended struct {
	Summary
	Count      int       `json:"count"`
	Median     float64   `json:"median"`
	Variance   float64   `json:"variance"`
	Q1         float64   `json:"q1"`
	Q3         float64   `json:"q3"`
	IQR        float64   `json:"iqr"`
	LowerFence float64   `json:"lower_fence"`
	UpperFence float64   `json:"upper_fence"`
	Outliers   []float64 `json:"outliers"`
	Skewness   float64   `json:"skewness"`
	Kurtosis   float64   `json:"kurtosis"`
}

// Interval is a normal-approximation confidence interval for the mean
type Interval struct {
	Level  float64 `json:"level"`
	Lower  float64 `json:"lower"`
	Upper  float64 `json:"upper"`
	Margin float64 `json:"margin"`
}

// zScores maps supported confidence levels to two-sided z critical values
var zScores = map[float64]float64{
	0.90: 1.645,
	0.95: 1.96,
	0.99: 2.576,
}

// SupportedConfidence reports whether level has a known z-score
func SupportedConfidence(level float64) bool {
	_, ok := zScores[level]
	return ok
}

// Summarize computes mean, max, min and population standard deviation.
// An empty input yields the zero Summary.
func Summarize(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}

	mean, std := analytics.PopMeanStdDev(values)
	minV, maxV := values[0], values[0]
	for _, v := range values[1:] {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}

	return Summary{
		Avg:    mean,
		Max:    maxV,
		Min:    minV,
		StdDev: std,
	}
}

// Describe computes the Summary plus median, quartiles, fences, outliers and
// the third and fourth standardized moments.
func Describe(values []float64) Extended {
	if len(values) == 0 {
		return Extended{Outliers: []float64{}}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	summary := Summarize(values)
	_, variance := analytics.PopMeanVariance(values)
	q1, q3 := Quartiles(sorted)
	iqr := q3 - q1
	lower := q1 - 1.5*iqr
	upper := q3 + 1.5*iqr

	outliers := make([]float64, 0)
	for _, v := range values {
		if v < lower || v > upper {
			outliers = append(outliers, v)
		}
	}

	skew, kurt := moments(values, summary)

	return Extended{
		Summary:    summary,
		Count:      len(values),
		Median:     median(sorted),
		Variance:   variance,
		Q1:         q1,
		Q3:         q3,
		IQR:        iqr,
		LowerFence: lower,
		UpperFence: upper,
		Outliers:   outliers,
		Skewness:   skew,
		Kurtosis:   kurt,
	}
}

// Quartiles returns positional Q1 and Q3 of an ascending slice:
// sorted[floor(0.25*N)] and sorted[floor(0.75*N)].
func Quartiles(sorted []float64) (q1, q3 float64) {
	n := len(sorted)
	if n == 0 {
		return 0, 0
	}
	return sorted[int(math.Floor(0.25*float64(n)))], sorted[int(math.Floor(0.75*float64(n)))]
}

// ConfidenceInterval returns mean ± z*stdDev/sqrt(N) for level 0.90, 0.95 or 0.99
func ConfidenceInterval(values []float64, level float64) (Interval, error) {
	z, ok := zScores[level]
	if !ok {
		return Interval{}, ErrUnsupportedConfidence
	}
	if len(values) == 0 {
		return Interval{Level: level}, nil
	}

	mean, std := analytics.PopMeanStdDev(values)
	margin := z * std / math.Sqrt(float64(len(values)))

	return Interval{
		Level:  level,
		Lower:  mean - margin,
		Upper:  mean + margin,
		Margin: margin,
	}, nil
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// moments returns population skewness and excess kurtosis; both 0 for a
// constant series
func moments(values []float64, summary Summary) (skew, kurt float64) {
	stdDev := summary.StdDev
	if stdDev == 0 || summary.Max == summary.Min {
		return 0, 0
	}
	m3 := stat.Moment(3, values, nil)
	m4 := stat.Moment(4, values, nil)
	return m3 / math.Pow(stdDev, 3), m4/math.Pow(stdDev, 4) - 3
}
