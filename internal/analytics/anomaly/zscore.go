package anomaly

import (
	"math"

	"github.com/simlens/simlens/internal/analytics/stats"
)

// ZScoreDetector flags points more than Threshold population standard
// deviations from the mean. A constant run is reported as a flatline.
type ZScoreDetector struct{}

func init() {
	RegisterDetector("zscore", &ZScoreDetector{})
}

// Name returns the algorithm name
func (z *ZScoreDetector) Name() string {
	return "zscore"
}

// Detect finds anomalies using Z-Score method
func (z *ZScoreDetector) Detect(data []DataPoint, config DetectorConfig) []AnomalyResult {
	if len(data) < config.MinDataPoints || len(data) == 0 {
		return nil
	}

	summary := stats.Summarize(values(data))
	mean, stdDev := summary.Avg, summary.StdDev

	if stdDev == 0 {
		return flatline(data)
	}

	expected := &Range{
		Min: mean - config.Threshold*stdDev,
		Max: mean + config.Threshold*stdDev,
	}

	var results []AnomalyResult
	for i, dp := range data {
		zScore := CalculateZScore(dp.Value, mean, stdDev)
		if math.Abs(zScore) <= config.Threshold {
			continue
		}

		anomalyType := AnomalyTypeDrop
		if zScore > 0 {
			anomalyType = AnomalyTypeSpike
		}
		results = append(results, AnomalyResult{
			Index:    i,
			Score:    math.Abs(zScore),
			Type:     anomalyType,
			Expected: expected,
		})
	}

	return results
}

// CalculateZScore calculates Z-Score for a single value given mean and stdDev
func CalculateZScore(value, mean, stdDev float64) float64 {
	if stdDev == 0 {
		return 0
	}
	return (value - mean) / stdDev
}
