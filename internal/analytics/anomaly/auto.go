package anomaly

import (
	"math"

	"github.com/simlens/simlens/internal/analytics"
	"github.com/simlens/simlens/internal/analytics/stats"
	"github.com/simlens/simlens/internal/analytics/timeseries"
)

// AutoDetector picks iqr, moving_avg or zscore from the shape of the data
type AutoDetector struct{}

func init() {
	RegisterDetector("auto", &AutoDetector{})
}

// Name returns the algorithm name
func (a *AutoDetector) Name() string {
	return "auto"
}

// Detect selects an algorithm from the data characteristics and runs it
func (a *AutoDetector) Detect(data []DataPoint, config DetectorConfig) []AnomalyResult {
	if len(data) < config.MinDataPoints || len(data) == 0 {
		return nil
	}

	chars := AnalyzeData(data)
	detector, err := GetDetector(chars.SelectedAlgorithm)
	if err != nil {
		detector = &IQRDetector{}
	}
	return detector.Detect(data, config)
}

// DataCharacteristics describes properties of the data
type DataCharacteristics struct {
	IsNormalDistribution bool
	HasTrend             bool
	TrendStrength        timeseries.Strength
	OutlierPercentage    float64
	DataSize             int
	SelectedAlgorithm    string
}

// AnalyzeData returns characteristics of the data and the algorithm they select
func AnalyzeData(data []DataPoint) DataCharacteristics {
	chars := DataCharacteristics{DataSize: len(data)}
	if len(data) < 3 {
		chars.SelectedAlgorithm = "iqr"
		return chars
	}

	ext := stats.Describe(values(data))
	chars.OutlierPercentage = float64(len(ext.Outliers)) / float64(len(data)) * 100
	chars.IsNormalDistribution = len(data) >= 10 && ext.StdDev > 0 &&
		math.Abs(ext.Skewness) < 1 && math.Abs(ext.Kurtosis) < 2

	trend := timeseries.FitTrend(analytics.TimeSeriesData(data))
	chars.TrendStrength = trend.Strength
	chars.HasTrend = trend.Strength != timeseries.StrengthStable

	chars.SelectedAlgorithm = selectAlgorithm(chars)
	return chars
}

// selectAlgorithm: many outliers → iqr, trending → moving_avg,
// roughly normal → zscore, otherwise iqr
func selectAlgorithm(chars DataCharacteristics) string {
	switch {
	case chars.OutlierPercentage > 5:
		return "iqr"
	case chars.HasTrend:
		return "moving_avg"
	case chars.IsNormalDistribution:
		return "zscore"
	default:
		return "iqr"
	}
}
