package anomaly

import (
	"math"

	"github.com/simlens/simlens/internal/analytics"
)

// MovingAverageDetector compares each point with the mean and spread of its
// neighbours, which tolerates slow drifts such as a growing money balance.
type MovingAverageDetector struct{}

func init() {
	RegisterDetector("moving_avg", &MovingAverageDetector{})
}

// Name returns the algorithm name
func (ma *MovingAverageDetector) Name() string {
	return "moving_avg"
}

// Detect finds anomalies using a centred window that excludes the point itself
func (ma *MovingAverageDetector) Detect(data []DataPoint, config DetectorConfig) []AnomalyResult {
	if len(data) < config.MinDataPoints || len(data) == 0 {
		return nil
	}

	windowSize := config.WindowSize
	if windowSize <= 0 {
		windowSize = 10
	}
	if windowSize > len(data) {
		windowSize = len(data) / 2
	}
	if windowSize < 3 {
		windowSize = 3
	}
	half := windowSize / 2

	var results []AnomalyResult
	for i, dp := range data {
		start := max(i-half, 0)
		end := min(i+half, len(data)-1)

		neighbours := make([]float64, 0, end-start)
		for j := start; j <= end; j++ {
			if j != i {
				neighbours = append(neighbours, data[j].Value)
			}
		}
		if len(neighbours) == 0 {
			continue
		}
		localMean, localStdDev := analytics.PopMeanStdDev(neighbours)

		var deviation float64
		switch {
		case localStdDev > 0:
			deviation = math.Abs(dp.Value-localMean) / localStdDev
		case dp.Value != localMean:
			// flat neighbourhood: any step is significant
			deviation = config.Threshold + 1
		}

		if deviation <= config.Threshold {
			continue
		}

		anomalyType := AnomalyTypeDrop
		if dp.Value > localMean {
			anomalyType = AnomalyTypeSpike
		}
		results = append(results, AnomalyResult{
			Index: i,
			Score: deviation,
			Type:  anomalyType,
			Expected: &Range{
				Min: localMean - config.Threshold*localStdDev,
				Max: localMean + config.Threshold*localStdDev,
			},
		})
	}

	return results
}
