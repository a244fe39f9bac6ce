package analytics

import (
	"github.com/simlens/simlens/internal/utils"
	"gonum.org/v1/gonum/stat"
)

// Line is a least-squares fit y = Slope*x + Intercept
type Line struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
}

// At evaluates the line at x
func (l Line) At(x float64) float64 {
	return l.Slope*x + l.Intercept
}

// FitLine fits an ordinary least-squares line through (xs[i], ys[i]).
// Fewer than two points or zero variance in xs yields slope 0 and the mean of
// ys as intercept. Both slices must have the same length.
func FitLine(xs, ys []float64) Line {
	n := len(xs)
	if n == 0 || n != len(ys) {
		return Line{}
	}
	if n < 2 || constant(xs) {
		return Line{Intercept: stat.Mean(ys, nil)}
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	return Line{Slope: utils.FiniteOrZero(beta), Intercept: utils.FiniteOrZero(alpha)}
}

func constant(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}
