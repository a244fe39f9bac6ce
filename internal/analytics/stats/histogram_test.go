package stats

import (
	"testing"
)

func sumCounts(bins []Bin) int {
	total := 0
	for _, b := range bins {
		total += b.Count
	}
	return total
}

func TestHistogram_Conservation(t *testing.T) {
	inputs := [][]float64{
		{1},
		{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
		{0.1, 0.7, 0.7, 0.9, 2.5, -3},
		{-1e6, 0, 1e6},
	}

	for _, values := range inputs {
		for _, n := range []int{1, 2, 3, 7, 10, 50} {
			bins := Histogram(values, n)
			if got := sumCounts(bins); got != len(values) {
				t.Errorf("Histogram(%v, %d) counts sum = %d, want %d", values, n, got, len(values))
			}
		}
	}
}

func TestHistogram_LastBinClosed(t *testing.T) {
	bins := Histogram([]float64{0, 5, 10}, 2)

	if len(bins) != 2 {
		t.Fatalf("expected 2 bins, got %d", len(bins))
	}
	if bins[0].Start != 0 || bins[0].End != 5 || bins[1].End != 10 {
		t.Errorf("unexpected bin edges: %+v", bins)
	}
	// 5 sits on the boundary and belongs to the upper bin; max lands in the last bin
	if bins[0].Count != 1 || bins[1].Count != 2 {
		t.Errorf("counts = [%d %d], want [1 2]", bins[0].Count, bins[1].Count)
	}
}

func TestHistogram_Constant(t *testing.T) {
	bins := Histogram([]float64{3, 3, 3, 3}, 10)

	if len(bins) != 1 {
		t.Fatalf("constant series should yield 1 bin, got %d", len(bins))
	}
	if bins[0].Count != 4 || bins[0].Start != 3 || bins[0].End != 3 {
		t.Errorf("constant bin = %+v", bins[0])
	}
}

func TestHistogram_Defaults(t *testing.T) {
	if bins := Histogram(nil, 10); len(bins) != 0 {
		t.Errorf("empty input should yield no bins, got %d", len(bins))
	}

	bins := Histogram([]float64{1, 2, 3}, 0)
	if len(bins) != 10 {
		t.Errorf("binCount 0 should fall back to 10 bins, got %d", len(bins))
	}
}

func TestHistogram_InnerEdgesFollowBounds(t *testing.T) {
	// (32.4-5.8)/((98.9-5.8)/7) rounds just below 2
	bins := Histogram([]float64{5.8, 37.4, 97, 98.9, 32.4, 22.8}, 7)
	for i, b := range bins {
		want := 0
		for _, v := range []float64{5.8, 37.4, 97, 98.9, 32.4, 22.8} {
			last := i == len(bins)-1
			if v >= b.Start && (v < b.End || (last && v <= b.End)) {
				want++
			}
		}
		if b.Count != want {
			t.Errorf("bin %d [%v,%v) count = %d, want %d", i, b.Start, b.End, b.Count, want)
		}
	}
}

func TestHistogram_ValuesOnEveryInnerEdge(t *testing.T) {
	for _, n := range []int{3, 7, 10, 13} {
		for _, span := range []float64{1, 0.3, 91.7, 1e-3} {
			width := span / float64(n)
			values := []float64{0, span}
			for i := 1; i < n; i++ {
				values = append(values, float64(i)*width)
			}

			bins := Histogram(values, n)
			for _, v := range values {
				matched := 0
				for i, b := range bins {
					last := i == len(bins)-1
					if v >= b.Start && (v < b.End || (last && v <= b.End)) {
						matched++
					}
				}
				if matched != 1 {
					t.Fatalf("n=%d span=%v: value %v falls in %d bins", n, span, v, matched)
				}
			}
			for i, b := range bins {
				want := 0
				for _, v := range values {
					last := i == len(bins)-1
					if v >= b.Start && (v < b.End || (last && v <= b.End)) {
						want++
					}
				}
				if b.Count != want {
					t.Errorf("n=%d span=%v: bin %d count = %d, want %d", n, span, i, b.Count, want)
				}
			}
		}
	}
}
