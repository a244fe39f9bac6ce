// Package anomaly flags unusual samples in a parameter series using a registry
// of named detectors.
package anomaly

import (
	"errors"
	"fmt"
	"sort"

	"github.com/simlens/simlens/internal/analytics"
)

// ErrUnknownDetector is returned for an algorithm name that is not registered
var ErrUnknownDetector = errors.New("unknown anomaly detector")

// AnomalyType represents the type of anomaly detected
type AnomalyType string

const (
	AnomalyTypeSpike    AnomalyType = "spike"    // Sudden increase
	AnomalyTypeDrop     AnomalyType = "drop"     // Sudden decrease
	AnomalyTypeFlatline AnomalyType = "flatline" // No variation across the run
)

// Anomaly is one flagged sample, located by its dataset row
type Anomaly struct {
	Row       int         `json:"row"`
	Date      string      `json:"date,omitempty"`
	Value     float64     `json:"value"`
	Expected  *Range      `json:"expected,omitempty"`
	Score     float64     `json:"score"` // Higher is more abnormal
	Type      AnomalyType `json:"type"`
	Algorithm string      `json:"algorithm"`
}

// Range represents expected value range
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// DataPoint is an alias to the shared analytics.TimeSeriesPoint type.
type DataPoint = analytics.TimeSeriesPoint

// DetectorConfig holds configuration for anomaly detection
type DetectorConfig struct {
	// Threshold is the sensitivity: std deviations for zscore and moving_avg,
	// the IQR multiplier for iqr
	Threshold float64

	// WindowSize for the moving_avg detector
	WindowSize int

	// MinDataPoints minimum number of valid samples required for detection
	MinDataPoints int
}

// DefaultConfig returns default detector configuration
func DefaultConfig() DetectorConfig {
	return DetectorConfig{
		Threshold:     3.0,
		WindowSize:    10,
		MinDataPoints: 10,
	}
}

// AnomalyDetector interface for all anomaly detection algorithms
type AnomalyDetector interface {
	// Name returns the algorithm name
	Name() string

	// Detect finds anomalies among valid data points.
	// Result indices refer to positions in data.
	Detect(data []DataPoint, config DetectorConfig) []AnomalyResult
}

// AnomalyResult contains detection result for a single point
type AnomalyResult struct {
	Index    int
	Score    float64
	Type     AnomalyType
	Expected *Range
}

var detectorRegistry = make(map[string]AnomalyDetector)

// RegisterDetector adds a detector to the registry
func RegisterDetector(name string, detector AnomalyDetector) {
	detectorRegistry[name] = detector
}

// GetDetector returns a detector by name
func GetDetector(name string) (AnomalyDetector, error) {
	if detector, ok := detectorRegistry[name]; ok {
		return detector, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownDetector, name)
}

// ListDetectors returns the registered detector names, sorted
func ListDetectors() []string {
	names := make([]string, 0, len(detectorRegistry))
	for name := range detectorRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Detect runs the named detector over the valid samples of ts and maps the
// results back to dataset rows.
func Detect(ts analytics.TimeSeriesData, algorithm string, config DetectorConfig) ([]Anomaly, error) {
	detector, err := GetDetector(algorithm)
	if err != nil {
		return nil, err
	}

	valid := ts.Valid()
	results := detector.Detect(valid, config)

	anomalies := make([]Anomaly, 0, len(results))
	for _, r := range results {
		p := valid[r.Index]
		anomalies = append(anomalies, Anomaly{
			Row:       p.Index,
			Date:      p.Date,
			Value:     p.Value,
			Expected:  r.Expected,
			Score:     r.Score,
			Type:      r.Type,
			Algorithm: detector.Name(),
		})
	}
	return anomalies, nil
}

func values(data []DataPoint) []float64 {
	out := make([]float64, len(data))
	for i, dp := range data {
		out[i] = dp.Value
	}
	return out
}

// flatline flags every point when all values are identical
func flatline(data []DataPoint) []AnomalyResult {
	if len(data) == 0 {
		return nil
	}
	first := data[0].Value
	for _, dp := range data[1:] {
		if dp.Value != first {
			return nil
		}
	}

	results := make([]AnomalyResult, len(data))
	for i := range data {
		results[i] = AnomalyResult{
			Index: i,
			Score: 1.0,
			Type:  AnomalyTypeFlatline,
		}
	}
	return results
}
