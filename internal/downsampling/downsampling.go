// Package downsampling thins long parameter series for chart display while
// keeping real samples and their dataset rows.
package downsampling

import (
	"errors"
	"fmt"
	"math"

	"github.com/simlens/simlens/internal/analytics"
	"github.com/simlens/simlens/internal/analytics/stats"
	"github.com/simlens/simlens/internal/utils"
)

// ErrUnknownMode is returned for an unsupported mode string
var ErrUnknownMode = errors.New("unknown downsampling mode")

// Mode represents the downsampling mode
type Mode string

const (
	// ModeNone means no downsampling
	ModeNone Mode = "none"
	// ModeAuto picks an algorithm when the series exceeds the threshold
	ModeAuto Mode = "auto"
	// ModeLTTB uses Largest-Triangle-Three-Buckets algorithm
	ModeLTTB Mode = "lttb"
	// ModeMinMax keeps min and max values per bucket (preserves peaks/spikes)
	ModeMinMax Mode = "minmax"
	// ModeM4 keeps First, Min, Max, Last per bucket (4 points per bucket)
	ModeM4 Mode = "m4"
)

// MinLTTBThreshold is the minimum threshold for LTTB algorithm
const MinLTTBThreshold = 100

// ValidModes returns all valid downsampling modes
func ValidModes() []Mode {
	return []Mode{ModeNone, ModeAuto, ModeLTTB, ModeMinMax, ModeM4}
}

// ParseMode converts a query value to a Mode. Empty means none.
func ParseMode(s string) (Mode, error) {
	if s == "" {
		return ModeNone, nil
	}
	for _, m := range ValidModes() {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownMode, s)
}

// Apply reduces ts to roughly threshold valid points using mode.
// ModeNone and series already under the threshold are returned unchanged.
// Downsampled output holds valid points only, in original order.
func Apply(ts analytics.TimeSeriesData, mode Mode, threshold int) (analytics.TimeSeriesData, error) {
	if mode == ModeNone || mode == "" {
		return ts, nil
	}

	valid := ts.Valid()
	if len(valid) == 0 {
		return ts, nil
	}

	if mode == ModeAuto {
		if threshold <= 0 {
			threshold = utils.DefaultDownsampleThreshold
		}
		if len(valid) <= threshold {
			return ts, nil
		}
		mode = detectBestAlgorithm(valid)
	}

	if threshold < 2 {
		threshold = 2
	}
	if len(valid) <= threshold {
		return ts, nil
	}

	var positions []int
	switch mode {
	case ModeLTTB:
		threshold = max(threshold, MinLTTBThreshold)
		positions = lttb(valid, threshold)
	case ModeMinMax:
		positions = minmax(valid, threshold)
	case ModeM4:
		positions = m4(valid, threshold)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownMode, mode)
	}

	out := make(analytics.TimeSeriesData, len(positions))
	for i, pos := range positions {
		out[i] = valid[pos]
	}
	return out, nil
}

// detectBestAlgorithm selects minmax for spiky data, m4 for moderately
// spiky data and lttb for smooth data.
func detectBestAlgorithm(data analytics.TimeSeriesData) Mode {
	spikiness := calculateSpikiness(data)
	switch {
	case spikiness > 0.2:
		return ModeMinMax
	case spikiness > 0.1:
		return ModeM4
	default:
		return ModeLTTB
	}
}

// calculateSpikiness blends the share of points beyond two standard
// deviations with the share of steps larger than one standard deviation.
// Returns a value in [0, 1].
func calculateSpikiness(data analytics.TimeSeriesData) float64 {
	if len(data) < 10 {
		return 0
	}

	summary := stats.Summarize(data.Values())
	mean, stdDev := summary.Avg, summary.StdDev
	if stdDev == 0 {
		return 0
	}

	spikeCount := 0
	stepCount := 0
	for i, p := range data {
		if math.Abs(p.Value-mean) > 2*stdDev {
			spikeCount++
		}
		if i > 0 && math.Abs(p.Value-data[i-1].Value) > stdDev {
			stepCount++
		}
	}

	absolute := float64(spikeCount) / float64(len(data))
	steps := float64(stepCount) / float64(len(data)-1)

	return math.Min((absolute+1.5*steps)/2.5, 1)
}

func allPositions(n int) []int {
	positions := make([]int, n)
	for i := range positions {
		positions[i] = i
	}
	return positions
}

// lttb implements the Largest-Triangle-Three-Buckets algorithm.
// Returns positions of selected points in data.
func lttb(data analytics.TimeSeriesData, threshold int) []int {
	n := len(data)
	if n <= threshold {
		return allPositions(n)
	}
	if threshold <= 2 {
		return []int{0, n - 1}
	}

	sampled := make([]int, 0, threshold)
	sampled = append(sampled, 0)

	bucketSize := float64(n-2) / float64(threshold-2)
	a := 0

	for i := 0; i < threshold-2; i++ {
		// average of the next bucket
		avgStart := int(math.Floor(float64(i+1)*bucketSize)) + 1
		avgEnd := min(int(math.Floor(float64(i+2)*bucketSize))+1, n)

		var avgX, avgY float64
		for j := avgStart; j < avgEnd; j++ {
			avgX += float64(j)
			avgY += data[j].Value
		}
		avgLen := float64(avgEnd - avgStart)
		avgX /= avgLen
		avgY /= avgLen

		rangeFrom := int(math.Floor(float64(i)*bucketSize)) + 1
		rangeTo := int(math.Floor(float64(i+1)*bucketSize)) + 1

		ax, ay := float64(a), data[a].Value
		maxArea := -1.0
		next := rangeFrom

		for j := rangeFrom; j < rangeTo; j++ {
			area := math.Abs((ax-avgX)*(data[j].Value-ay)-(ax-float64(j))*(avgY-ay)) * 0.5
			if area > maxArea {
				maxArea = area
				next = j
			}
		}

		sampled = append(sampled, next)
		a = next
	}

	return append(sampled, n-1)
}

// bucketExtremes returns the positions of the min and max within [start, end)
func bucketExtremes(data analytics.TimeSeriesData, start, end int) (minIdx, maxIdx int) {
	minIdx, maxIdx = start, start
	for j := start + 1; j < end; j++ {
		if data[j].Value < data[minIdx].Value {
			minIdx = j
		}
		if data[j].Value > data[maxIdx].Value {
			maxIdx = j
		}
	}
	return minIdx, maxIdx
}

// minmax keeps the min and max of each bucket, in time order.
// Output size: about 2 points per bucket.
func minmax(data analytics.TimeSeriesData, threshold int) []int {
	if len(data) <= threshold {
		return allPositions(len(data))
	}

	numBuckets := max(threshold/2, 1)
	bucketSize := float64(len(data)) / float64(numBuckets)
	sampled := make([]int, 0, numBuckets*2)

	for i := 0; i < numBuckets; i++ {
		start := int(float64(i) * bucketSize)
		end := min(int(float64(i+1)*bucketSize), len(data))
		if start >= end {
			continue
		}

		lo, hi := bucketExtremes(data, start, end)
		switch {
		case lo == hi:
			sampled = append(sampled, lo)
		case lo < hi:
			sampled = append(sampled, lo, hi)
		default:
			sampled = append(sampled, hi, lo)
		}
	}

	return sampled
}

// m4 keeps first, min, max and last of each bucket, deduplicated and in
// time order. Output size: up to 4 points per bucket.
func m4(data analytics.TimeSeriesData, threshold int) []int {
	if len(data) <= threshold {
		return allPositions(len(data))
	}

	numBuckets := max(threshold/4, 1)
	bucketSize := float64(len(data)) / float64(numBuckets)
	sampled := make([]int, 0, numBuckets*4)

	for i := 0; i < numBuckets; i++ {
		start := int(float64(i) * bucketSize)
		end := min(int(float64(i+1)*bucketSize), len(data))
		if start >= end {
			continue
		}

		first, last := start, end-1
		lo, hi := bucketExtremes(data, start, end)
		if lo > hi {
			lo, hi = hi, lo
		}

		prev := -1
		for _, idx := range []int{first, lo, hi, last} {
			if idx > prev {
				sampled = append(sampled, idx)
				prev = idx
			}
		}
	}

	return sampled
}
