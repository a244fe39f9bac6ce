package stats

import (
	"errors"
	"math"
	"testing"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestSummarize_Empty(t *testing.T) {
	got := Summarize(nil)
	if got != (Summary{}) {
		t.Errorf("Summarize(nil) = %+v, want all zero", got)
	}

	ext := Describe([]float64{})
	if ext.Count != 0 || ext.Median != 0 || ext.Variance != 0 {
		t.Errorf("Describe(empty) = %+v, want all zero", ext)
	}
	if ext.Outliers == nil || len(ext.Outliers) != 0 {
		t.Errorf("Describe(empty).Outliers = %v, want empty slice", ext.Outliers)
	}
}

func TestSummarize_MoneyColumn(t *testing.T) {
	got := Summarize([]float64{100, 200, 300})

	if got.Avg != 200 {
		t.Errorf("Avg = %v, want 200", got.Avg)
	}
	if got.Max != 300 {
		t.Errorf("Max = %v, want 300", got.Max)
	}
	if got.Min != 100 {
		t.Errorf("Min = %v, want 100", got.Min)
	}
	if !almostEqual(got.StdDev, 81.6496580927726, 1e-9) {
		t.Errorf("StdDev = %v, want 81.6496...", got.StdDev)
	}
}

func TestDescribe_Median(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"even count", []float64{1, 2, 3, 4}, 2.5},
		{"odd count", []float64{1, 3, 5}, 3},
		{"unsorted", []float64{5, 1, 3}, 3},
		{"single", []float64{7}, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Describe(tt.values).Median; got != tt.want {
				t.Errorf("Median(%v) = %v, want %v", tt.values, got, tt.want)
			}
		})
	}
}

func TestDescribe_VarianceNonNegative(t *testing.T) {
	inputs := [][]float64{
		{1},
		{1, 1, 1},
		{-5, 0, 5},
		{1e9, 1e9 + 1, 1e9 + 2},
		{0.1, 0.2, 0.3, 0.4, 100},
	}

	for _, values := range inputs {
		ext := Describe(values)
		if ext.Variance < 0 {
			t.Errorf("Variance(%v) = %v, want >= 0", values, ext.Variance)
		}
		if !almostEqual(ext.StdDev, math.Sqrt(ext.Variance), 1e-9) {
			t.Errorf("StdDev(%v) = %v, want sqrt(variance) = %v", values, ext.StdDev, math.Sqrt(ext.Variance))
		}
	}
}

func TestDescribe_PositionalQuartiles(t *testing.T) {
	// N=8: Q1 = sorted[2], Q3 = sorted[6]
	values := []float64{8, 1, 7, 2, 6, 3, 5, 4}
	ext := Describe(values)

	if ext.Q1 != 3 {
		t.Errorf("Q1 = %v, want 3", ext.Q1)
	}
	if ext.Q3 != 7 {
		t.Errorf("Q3 = %v, want 7", ext.Q3)
	}
	if ext.IQR != 4 {
		t.Errorf("IQR = %v, want 4", ext.IQR)
	}
	if ext.LowerFence != -3 || ext.UpperFence != 13 {
		t.Errorf("fences = [%v, %v], want [-3, 13]", ext.LowerFence, ext.UpperFence)
	}
}

func TestDescribe_Outliers(t *testing.T) {
	values := []float64{10, 11, 12, 11, 10, 12, 11, 100, 10, -50}
	ext := Describe(values)

	if len(ext.Outliers) != 2 {
		t.Fatalf("Outliers = %v, want 2 values", ext.Outliers)
	}
	// input order preserved
	if ext.Outliers[0] != 100 || ext.Outliers[1] != -50 {
		t.Errorf("Outliers = %v, want [100 -50]", ext.Outliers)
	}
}

func TestDescribe_ConstantSeriesMoments(t *testing.T) {
	ext := Describe([]float64{4, 4, 4, 4})

	if ext.StdDev != 0 {
		t.Errorf("StdDev = %v, want 0", ext.StdDev)
	}
	if ext.Skewness != 0 || ext.Kurtosis != 0 {
		t.Errorf("Skewness/Kurtosis = %v/%v, want 0/0", ext.Skewness, ext.Kurtosis)
	}
	if math.IsNaN(ext.Skewness) || math.IsNaN(ext.Kurtosis) {
		t.Error("moments must never be NaN")
	}
}

func TestDescribe_NearConstantSeries(t *testing.T) {
	// the mean of three 0.1s is not exactly 0.1
	ext := Describe([]float64{0.1, 0.1, 0.1})

	if ext.Variance < 0 || math.IsNaN(ext.StdDev) {
		t.Errorf("Variance/StdDev = %v/%v, want finite and non-negative", ext.Variance, ext.StdDev)
	}
	if ext.Skewness != 0 || ext.Kurtosis != 0 {
		t.Errorf("Skewness/Kurtosis = %v/%v, want 0/0", ext.Skewness, ext.Kurtosis)
	}
}

func TestDescribe_PopulationMoments(t *testing.T) {
	// mean 5, population stddev 2
	ext := Describe([]float64{2, 4, 4, 4, 5, 5, 7, 9})

	if !almostEqual(ext.Avg, 5, 1e-12) || !almostEqual(ext.StdDev, 2, 1e-12) || !almostEqual(ext.Variance, 4, 1e-12) {
		t.Errorf("Avg/StdDev/Variance = %v/%v/%v, want 5/2/4", ext.Avg, ext.StdDev, ext.Variance)
	}
	// sum of cubed deviations 42, of fourth powers 356
	if !almostEqual(ext.Skewness, 42.0/8/8, 1e-12) {
		t.Errorf("Skewness = %v, want %v", ext.Skewness, 42.0/8/8)
	}
	if !almostEqual(ext.Kurtosis, 356.0/8/16-3, 1e-12) {
		t.Errorf("Kurtosis = %v, want %v", ext.Kurtosis, 356.0/8/16-3)
	}
}

func TestDescribe_Skewness(t *testing.T) {
	symmetric := Describe([]float64{1, 2, 3, 4, 5})
	if !almostEqual(symmetric.Skewness, 0, 1e-12) {
		t.Errorf("symmetric Skewness = %v, want 0", symmetric.Skewness)
	}
	// population excess kurtosis of a discrete uniform on 5 points
	if !almostEqual(symmetric.Kurtosis, -1.3, 1e-9) {
		t.Errorf("uniform Kurtosis = %v, want -1.3", symmetric.Kurtosis)
	}

	rightTail := Describe([]float64{1, 1, 1, 1, 10})
	if rightTail.Skewness <= 0 {
		t.Errorf("right-tailed Skewness = %v, want > 0", rightTail.Skewness)
	}
}

func TestConfidenceInterval(t *testing.T) {
	values := []float64{100, 200, 300}
	sd := 81.6496580927726

	tests := []struct {
		level float64
		z     float64
	}{
		{0.90, 1.645},
		{0.95, 1.96},
		{0.99, 2.576},
	}

	for _, tt := range tests {
		ci, err := ConfidenceInterval(values, tt.level)
		if err != nil {
			t.Fatalf("ConfidenceInterval(%v) error = %v", tt.level, err)
		}
		margin := tt.z * sd / math.Sqrt(3)
		if !almostEqual(ci.Margin, margin, 1e-9) {
			t.Errorf("level %v margin = %v, want %v", tt.level, ci.Margin, margin)
		}
		if !almostEqual(ci.Lower, 200-margin, 1e-9) || !almostEqual(ci.Upper, 200+margin, 1e-9) {
			t.Errorf("level %v interval = [%v, %v]", tt.level, ci.Lower, ci.Upper)
		}
	}
}

func TestConfidenceInterval_Unsupported(t *testing.T) {
	_, err := ConfidenceInterval([]float64{1, 2, 3}, 0.80)
	if !errors.Is(err, ErrUnsupportedConfidence) {
		t.Errorf("expected ErrUnsupportedConfidence, got %v", err)
	}
	if SupportedConfidence(0.80) {
		t.Error("0.80 should not be supported")
	}
}

func TestConfidenceInterval_Empty(t *testing.T) {
	ci, err := ConfidenceInterval(nil, 0.95)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ci.Lower != 0 || ci.Upper != 0 || ci.Margin != 0 || ci.Level != 0.95 {
		t.Errorf("empty interval = %+v", ci)
	}
}
