package timeseries

import (
	"github.com/simlens/simlens/internal/analytics"
	"github.com/simlens/simlens/internal/utils"
)

// Options controls the tunable parts of Analyze
type Options struct {
	Window            int
	CriticalThreshold float64
}

// DefaultOptions returns the dashboard defaults
func DefaultOptions() Options {
	return Options{
		Window:            utils.DefaultMovingAverageWindow,
		CriticalThreshold: utils.DefaultCriticalThreshold,
	}
}

// Report bundles every derived view of one series
type Report struct {
	Points         int                  `json:"points"`
	ValidPoints    int                  `json:"valid_points"`
	MovingAverage  []analytics.Optional `json:"moving_average"`
	Trend          Trend                `json:"trend"`
	ChangeRates    []analytics.Optional `json:"change_rates"`
	CriticalPoints []CriticalPoint      `json:"critical_points"`
	Cyclicality    Cyclicality          `json:"cyclicality"`
	Volatility     Volatility           `json:"volatility"`
	HalfSplit      HalfSplit            `json:"half_split"`
	Extremes       Extremes             `json:"extremes"`
}

// Analyze runs every time-series view over ts
func Analyze(ts analytics.TimeSeriesData, opts Options) Report {
	return Report{
		Points:         ts.Len(),
		ValidPoints:    ts.ValidCount(),
		MovingAverage:  MovingAverage(ts, opts.Window),
		Trend:          FitTrend(ts),
		ChangeRates:    ChangeRates(ts),
		CriticalPoints: CriticalPoints(ts, opts.CriticalThreshold),
		Cyclicality:    MeasureCyclicality(ts),
		Volatility:     MeasureVolatility(ts),
		HalfSplit:      SplitHalves(ts),
		Extremes:       FindExtremes(ts),
	}
}
