package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
)

// Write serializes ds as CSV: the header, then every record in order
func Write(w io.Writer, ds *Dataset) error {
	cw := csv.NewWriter(w)

	if err := writeRow(w, cw, ds.Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, r := range ds.Records {
		if err := writeRow(w, cw, r.cells); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// writeRow writes one CSV line. A row holding a single empty cell is written
// as "" because csv.Reader skips blank lines.
func writeRow(w io.Writer, cw *csv.Writer, cells []string) error {
	if len(cells) != 1 || cells[0] != "" {
		return cw.Write(cells)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\"\"\n")
	return err
}

// Marshal returns ds as CSV bytes
func Marshal(ds *Dataset) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, ds); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
