// Package timeseries derives smoothing, trend, rate-of-change, turning-point
// and variability views from one parameter series. Nulls keep their position.
package timeseries

import (
	"math"

	"github.com/simlens/simlens/internal/analytics"
	"github.com/simlens/simlens/internal/utils"
	"gonum.org/v1/gonum/stat"
)

// Direction of a fitted trend
type Direction string

const (
	DirectionIncreasing Direction = "increasing"
	DirectionDecreasing Direction = "decreasing"
	DirectionFlat       Direction = "flat"
)

// Strength of a fitted trend, thresholded on |slope|
type Strength string

const (
	StrengthStrong   Strength = "strong"
	StrengthModerate Strength = "moderate"
	StrengthStable   Strength = "stable"
)

// Trend is the OLS line of value against row position
type Trend struct {
	analytics.Line
	Strength  Strength  `json:"strength"`
	Direction Direction `json:"direction"`
}

// MovingAverage returns the trailing mean over window samples at each position.
// A position is undefined until window samples precede it (inclusive) and
// whenever a null falls inside its window. window < 1 uses the default.
func MovingAverage(ts analytics.TimeSeriesData, window int) []analytics.Optional {
	if window < 1 {
		window = utils.DefaultMovingAverageWindow
	}

	out := make([]analytics.Optional, len(ts))
	buf := make([]float64, window)

	for i := range ts {
		out[i] = analytics.None
		if i+1 < window {
			continue
		}
		// each window is summed afresh so a large value leaving it cannot
		// swamp the ones that remain
		complete := true
		for j, p := range ts[i+1-window : i+1] {
			if !p.Valid {
				complete = false
				break
			}
			buf[j] = p.Value
		}
		if complete {
			out[i] = analytics.Some(stat.Mean(buf, nil))
		}
	}

	return out
}

// FitTrend fits value against position index, skipping nulls. Positions keep
// their original index so gaps stretch the x axis.
func FitTrend(ts analytics.TimeSeriesData) Trend {
	xs := make([]float64, 0, len(ts))
	ys := make([]float64, 0, len(ts))
	for i, p := range ts {
		if p.Valid {
			xs = append(xs, float64(i))
			ys = append(ys, p.Value)
		}
	}

	line := analytics.FitLine(xs, ys)
	return Trend{
		Line:      line,
		Strength:  classifyStrength(line.Slope),
		Direction: classifyDirection(line.Slope),
	}
}

func classifyStrength(slope float64) Strength {
	abs := math.Abs(slope)
	switch {
	case abs > 0.5:
		return StrengthStrong
	case abs > 0.1:
		return StrengthModerate
	default:
		return StrengthStable
	}
}

func classifyDirection(slope float64) Direction {
	switch {
	case slope > 0:
		return DirectionIncreasing
	case slope < 0:
		return DirectionDecreasing
	default:
		return DirectionFlat
	}
}

// ChangeRates returns the percent change between each valid sample and the
// previous valid sample, aligned with ts. The first valid sample and nulls are
// undefined.
func ChangeRates(ts analytics.TimeSeriesData) []analytics.Optional {
	out := make([]analytics.Optional, len(ts))
	havePrev := false
	var prev float64

	for i, p := range ts {
		if !p.Valid {
			out[i] = analytics.None
			continue
		}
		if havePrev {
			out[i] = analytics.Some(PercentChange(prev, p.Value))
		} else {
			out[i] = analytics.None
		}
		prev = p.Value
		havePrev = true
	}

	return out
}

// PercentChange is (curr-prev)/|prev|*100. A zero prev yields +100, -100 or 0
// by the sign of curr.
func PercentChange(prev, curr float64) float64 {
	if prev == 0 {
		switch {
		case curr > 0:
			return 100
		case curr < 0:
			return -100
		default:
			return 0
		}
	}
	return (curr - prev) / math.Abs(prev) * 100
}
