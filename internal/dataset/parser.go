package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/simlens/simlens/internal/utils"
)

var (
	// ErrMalformedInput is returned for text that is not valid CSV
	ErrMalformedInput = errors.New("malformed CSV input")

	// ErrMalformedRow is returned for a row with more cells than the header
	ErrMalformedRow = errors.New("row has more fields than header")
)

// Options names the special columns and the source date layout
type Options struct {
	DateColumn  string
	DateLayout  string
	AgentColumn string
}

// DefaultOptions returns the simulator's column conventions
func DefaultOptions() Options {
	return Options{
		DateColumn:  utils.DateColumn,
		DateLayout:  utils.DateLayout,
		AgentColumn: utils.AgentColumn,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.DateColumn == "" {
		o.DateColumn = d.DateColumn
	}
	if o.DateLayout == "" {
		o.DateLayout = d.DateLayout
	}
	if o.AgentColumn == "" {
		o.AgentColumn = d.AgentColumn
	}
	return o
}

// Parse parses CSV text into a Dataset
func Parse(text string, opts Options) (*Dataset, error) {
	return ParseReader(strings.NewReader(text), opts)
}

// ParseReader parses CSV from r. The first row is the header. Empty input
// yields an empty Dataset. Short rows are padded with empty cells; long rows
// fail with ErrMalformedRow. Date cells are rewritten to YYYY-MM-DD when they
// parse with opts.DateLayout and left as is otherwise.
func ParseReader(r io.Reader, opts Options) (*Dataset, error) {
	opts = opts.withDefaults()

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return newDataset([]string{}, opts), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	ds := newDataset(header, opts)
	dateIdx, hasDate := ds.index[opts.DateColumn]

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
		}

		if len(row) > len(header) {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("%w: line %d has %d fields, header has %d",
				ErrMalformedRow, line, len(row), len(header))
		}

		if hasDate && dateIdx < len(row) {
			row[dateIdx] = NormalizeDate(row[dateIdx], opts.DateLayout)
		}
		ds.append(row)
	}

	return ds, nil
}

// NormalizeDate rewrites a date in layout as YYYY-MM-DD. Values that do not
// parse are returned unchanged.
func NormalizeDate(value, layout string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return value
	}
	t, err := time.Parse(layout, v)
	if err != nil {
		return value
	}
	return t.Format(utils.NormalizedDateLayout)
}
