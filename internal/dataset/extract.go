package dataset

import (
	"fmt"

	"github.com/simlens/simlens/internal/analytics"
	"github.com/simlens/simlens/internal/utils"
)

// NumericMode decides what happens to cells that are not finite numbers
type NumericMode string

const (
	// NullableNumeric keeps such cells as null points (float analyses)
	NullableNumeric NumericMode = "nullable"
	// ZeroFillNumeric turns such cells into valid zeros (chart data)
	ZeroFillNumeric NumericMode = "zerofill"
)

// ParseNumericMode converts a query value to a NumericMode. Empty means nullable.
func ParseNumericMode(s string) (NumericMode, error) {
	switch NumericMode(s) {
	case "", NullableNumeric:
		return NullableNumeric, nil
	case ZeroFillNumeric:
		return ZeroFillNumeric, nil
	default:
		return "", fmt.Errorf("unknown numeric mode: %s", s)
	}
}

// matches reports whether r belongs to agent; an empty agent matches all
func (ds *Dataset) matches(r Record, agent string) bool {
	return agent == "" || r.Value(ds.agentColumn) == agent
}

// Extract returns the key column as a series in dataset order, restricted to
// rows whose agent equals agent exactly when agent is non-empty. An unknown
// column or an agent with no rows yields an empty series.
func Extract(ds *Dataset, key, agent string, mode NumericMode) analytics.TimeSeriesData {
	ts := make(analytics.TimeSeriesData, 0)
	if !ds.HasColumn(key) {
		return ts
	}

	for i, r := range ds.Records {
		if !ds.matches(r, agent) {
			continue
		}
		p := analytics.TimeSeriesPoint{
			Index: i,
			Date:  r.Value(ds.dateColumn),
		}
		if v, ok := utils.ParseNumeric(r.Value(key)); ok {
			p.Value = v
			p.Valid = true
		} else if mode == ZeroFillNumeric {
			p.Valid = true
		}
		ts = append(ts, p)
	}

	return ts
}

// ExtractPair returns aligned values of xKey and yKey from rows where both
// cells are finite numbers.
func ExtractPair(ds *Dataset, xKey, yKey, agent string) (xs, ys []float64) {
	xs = make([]float64, 0)
	ys = make([]float64, 0)
	if !ds.HasColumn(xKey) || !ds.HasColumn(yKey) {
		return xs, ys
	}

	for _, r := range ds.Records {
		if !ds.matches(r, agent) {
			continue
		}
		x, okX := utils.ParseNumeric(r.Value(xKey))
		y, okY := utils.ParseNumeric(r.Value(yKey))
		if okX && okY {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}

	return xs, ys
}
