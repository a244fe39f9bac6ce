// Package dataset holds the simulator's CSV log as an ordered set of records
// and converts it to and from CSV text.
package dataset

import (
	"github.com/simlens/simlens/internal/utils"
)

// Record is one CSV row. Cells follow the dataset's column order.
type Record struct {
	cells []string
	index map[string]int
}

// Get returns the cell for col and whether the column exists
func (r Record) Get(col string) (string, bool) {
	i, ok := r.index[col]
	if !ok || i >= len(r.cells) {
		return "", false
	}
	return r.cells[i], true
}

// Value returns the cell for col, or "" when the column does not exist
func (r Record) Value(col string) string {
	v, _ := r.Get(col)
	return v
}

// Values returns a copy of the cells in column order
func (r Record) Values() []string {
	out := make([]string, len(r.cells))
	copy(out, r.cells)
	return out
}

// Dataset is the parsed CSV: a header and its rows, in file order.
// A Dataset is never mutated after parsing and is safe for concurrent reads.
type Dataset struct {
	Columns []string
	Records []Record

	index       map[string]int
	dateColumn  string
	agentColumn string
}

// New builds a Dataset from a header and rows. Rows shorter than the header
// are padded with empty cells; callers must not pass longer rows.
func New(columns []string, rows [][]string) *Dataset {
	ds := newDataset(columns, DefaultOptions())
	for _, row := range rows {
		ds.append(row)
	}
	return ds
}

func newDataset(columns []string, opts Options) *Dataset {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, dup := index[c]; !dup {
			index[c] = i
		}
	}
	return &Dataset{
		Columns:     columns,
		Records:     make([]Record, 0),
		index:       index,
		dateColumn:  opts.DateColumn,
		agentColumn: opts.AgentColumn,
	}
}

func (ds *Dataset) append(row []string) {
	cells := make([]string, len(ds.Columns))
	copy(cells, row)
	ds.Records = append(ds.Records, Record{cells: cells, index: ds.index})
}

// Len returns the number of data rows
func (ds *Dataset) Len() int {
	if ds == nil {
		return 0
	}
	return len(ds.Records)
}

// HasColumn reports whether the header contains col
func (ds *Dataset) HasColumn(col string) bool {
	if ds == nil {
		return false
	}
	_, ok := ds.index[col]
	return ok
}

// DateColumn returns the name of the normalized date column
func (ds *Dataset) DateColumn() string {
	return ds.dateColumn
}

// AgentColumn returns the name of the agent identifier column
func (ds *Dataset) AgentColumn() string {
	return ds.agentColumn
}

// Agents returns distinct non-empty agent identifiers in first-seen order
func (ds *Dataset) Agents() []string {
	agents := make([]string, 0)
	if !ds.HasColumn(ds.agentColumn) {
		return agents
	}

	seen := make(map[string]struct{})
	for _, r := range ds.Records {
		a := r.Value(ds.agentColumn)
		if a == "" {
			continue
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		agents = append(agents, a)
	}
	return agents
}

// NumericColumns returns the columns, in header order, with at least one
// finite numeric cell. The date and agent columns are never numeric.
func (ds *Dataset) NumericColumns() []string {
	cols := make([]string, 0)
	if ds == nil {
		return cols
	}
	for _, c := range ds.Columns {
		if c == ds.dateColumn || c == ds.agentColumn {
			continue
		}
		for _, r := range ds.Records {
			if utils.IsNumeric(r.Value(c)) {
				cols = append(cols, c)
				break
			}
		}
	}
	return cols
}

// DateRange returns the first and last non-empty values of the date column
func (ds *Dataset) DateRange() (first, last string) {
	if !ds.HasColumn(ds.dateColumn) {
		return "", ""
	}
	for _, r := range ds.Records {
		if d := r.Value(ds.dateColumn); d != "" {
			if first == "" {
				first = d
			}
			last = d
		}
	}
	return first, last
}
