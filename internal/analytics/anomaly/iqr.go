package anomaly

import (
	"sort"

	"github.com/simlens/simlens/internal/analytics/stats"
)

// IQRDetector flags points outside [Q1 - k*IQR, Q3 + k*IQR].
// Quartiles are positional, matching the dashboard summary.
type IQRDetector struct{}

func init() {
	RegisterDetector("iqr", &IQRDetector{})
}

// Name returns the algorithm name
func (iqr *IQRDetector) Name() string {
	return "iqr"
}

// Detect finds anomalies using IQR method
func (iqr *IQRDetector) Detect(data []DataPoint, config DetectorConfig) []AnomalyResult {
	if len(data) < config.MinDataPoints || len(data) == 0 {
		return nil
	}

	sorted := values(data)
	sort.Float64s(sorted)
	q1, q3 := stats.Quartiles(sorted)
	iqrValue := q3 - q1

	// Thresholds tuned for z-scores are too wide for IQR fences
	multiplier := config.Threshold
	if multiplier <= 0 || multiplier >= 3 {
		multiplier = 1.5
	}

	lowerBound := q1 - multiplier*iqrValue
	upperBound := q3 + multiplier*iqrValue
	expected := &Range{Min: lowerBound, Max: upperBound}

	var results []AnomalyResult
	for i, dp := range data {
		if dp.Value >= lowerBound && dp.Value <= upperBound {
			continue
		}

		score := 1.0
		anomalyType := AnomalyTypeSpike
		if dp.Value < lowerBound {
			anomalyType = AnomalyTypeDrop
			if iqrValue > 0 {
				score = (lowerBound - dp.Value) / iqrValue
			}
		} else if iqrValue > 0 {
			score = (dp.Value - upperBound) / iqrValue
		}

		results = append(results, AnomalyResult{
			Index:    i,
			Score:    score,
			Type:     anomalyType,
			Expected: expected,
		})
	}

	return results
}
