// Package correlation relates two parameter columns with Pearson's r and a
// least-squares line.
package correlation

import (
	"errors"
	"math"

	"github.com/simlens/simlens/internal/analytics"
	"gonum.org/v1/gonum/stat"
)

// ErrLengthMismatch is returned when xs and ys differ in length
var ErrLengthMismatch = errors.New("correlation inputs must have equal length")

// Strength of a correlation, thresholded on |r|
type Strength string

const (
	StrengthStrong   Strength = "strong"
	StrengthModerate Strength = "moderate"
	StrengthWeak     Strength = "weak"
)

// Direction is the sign of r
type Direction string

const (
	DirectionPositive Direction = "positive"
	DirectionNegative Direction = "negative"
	DirectionNone     Direction = "no"
)

// Result holds r, the regression line of ys on xs and their labels
type Result struct {
	R         float64   `json:"r"`
	Slope     float64   `json:"slope"`
	Intercept float64   `json:"intercept"`
	N         int       `json:"n"`
	Strength  Strength  `json:"strength"`
	Direction Direction `json:"direction"`
}

// Correlate computes Pearson's r and the OLS line of ys on xs.
// Zero variance in either input yields r = 0.
func Correlate(xs, ys []float64) (Result, error) {
	if len(xs) != len(ys) {
		return Result{}, ErrLengthMismatch
	}

	n := len(xs)
	line := analytics.FitLine(xs, ys)

	var r float64
	if n >= 2 && stat.Variance(xs, nil) > 0 && stat.Variance(ys, nil) > 0 {
		r = clamp(stat.Correlation(xs, ys, nil))
	}

	return Result{
		R:         r,
		Slope:     line.Slope,
		Intercept: line.Intercept,
		N:         n,
		Strength:  classifyStrength(r),
		Direction: classifyDirection(r),
	}, nil
}

func clamp(r float64) float64 {
	switch {
	case math.IsNaN(r):
		return 0
	case r > 1:
		return 1
	case r < -1:
		return -1
	default:
		return r
	}
}

func classifyStrength(r float64) Strength {
	abs := math.Abs(r)
	switch {
	case abs > 0.7:
		return StrengthStrong
	case abs > 0.3:
		return StrengthModerate
	default:
		return StrengthWeak
	}
}

func classifyDirection(r float64) Direction {
	switch {
	case r > 0:
		return DirectionPositive
	case r < 0:
		return DirectionNegative
	default:
		return DirectionNone
	}
}
