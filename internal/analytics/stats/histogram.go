package stats

import (
	"github.com/simlens/simlens/internal/utils"
)

// Bin is one histogram bucket covering [Start, End); the last bin is closed
type Bin struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Count int     `json:"count"`
}

// Histogram partitions values into binCount equal-width bins between min and
// max. binCount < 1 falls back to the default. A constant series yields a
// single bin; empty input yields none. Counts always sum to len(values).
func Histogram(values []float64, binCount int) []Bin {
	if len(values) == 0 {
		return []Bin{}
	}
	if binCount < 1 {
		binCount = utils.DefaultHistogramBins
	}

	minV, maxV := values[0], values[0]
	for _, v := range values[1:] {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}

	if minV == maxV {
		return []Bin{{Start: minV, End: maxV, Count: len(values)}}
	}

	width := (maxV - minV) / float64(binCount)
	bins := make([]Bin, binCount)
	for i := range bins {
		bins[i].Start = minV + float64(i)*width
		bins[i].End = minV + float64(i+1)*width
	}
	bins[binCount-1].End = maxV

	for _, v := range values {
		idx := int((v - minV) / width)
		if idx >= binCount {
			idx = binCount - 1
		}
		if idx < 0 {
			idx = 0
		}
		// division can land one bin off on an inner edge; trust the bounds
		for idx > 0 && v < bins[idx].Start {
			idx--
		}
		for idx < binCount-1 && v >= bins[idx+1].Start {
			idx++
		}
		bins[idx].Count++
	}

	return bins
}
