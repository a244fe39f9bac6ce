package services

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang/snappy"
	"github.com/google/uuid"
	"github.com/simlens/simlens/internal/analytics/stats"
	"github.com/simlens/simlens/internal/dataset"
	"github.com/simlens/simlens/internal/logging"
	"github.com/simlens/simlens/internal/source"
	"github.com/simlens/simlens/internal/utils"
	"github.com/xuri/excelize/v2"
)

// ExportFormat is a supported export encoding
type ExportFormat string

const (
	FormatCSV       ExportFormat = "csv"
	FormatCSVSnappy ExportFormat = "csv.sz"
	FormatXLSX      ExportFormat = "xlsx"
)

const (
	dataSheet    = "Data"
	summarySheet = "Summary"
)

var contentTypes = map[ExportFormat]string{
	FormatCSV:       "text/csv; charset=utf-8",
	FormatCSVSnappy: "application/x-snappy-framed",
	FormatXLSX:      "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// ParseExportFormat validates a format name. Empty means csv.
func ParseExportFormat(s string) (ExportFormat, error) {
	if s == "" {
		return FormatCSV, nil
	}
	f := ExportFormat(s)
	if _, ok := contentTypes[f]; !ok {
		return "", NewServiceErrorWithDetails(CodeUnsupportedFormat, "unsupported export format: "+s, map[string]interface{}{
			"supported": []string{string(FormatCSV), string(FormatCSVSnappy), string(FormatXLSX)},
		})
	}
	return f, nil
}

// ExportFile is an encoded dataset ready to send or save
type ExportFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// ExportService encodes the current dataset for download
type ExportService struct {
	logger  *logging.Logger
	session *source.Session
	dir     string
}

// NewExportService creates a new ExportService. dir is where Save writes.
func NewExportService(logger *logging.Logger, session *source.Session, dir string) *ExportService {
	return &ExportService{
		logger:  logger,
		session: session,
		dir:     dir,
	}
}

// Export encodes the current dataset in format
func (s *ExportService) Export(ctx context.Context, format string) (*ExportFile, error) {
	f, err := ParseExportFormat(format)
	if err != nil {
		return nil, err
	}

	ds, err := s.session.Current()
	if err != nil {
		return nil, translate(err)
	}

	start := time.Now()
	var data []byte
	switch f {
	case FormatCSV:
		data, err = dataset.Marshal(ds)
	case FormatCSVSnappy:
		data, err = encodeSnappyCSV(ds)
	case FormatXLSX:
		data, err = encodeWorkbook(ds)
	}
	if err != nil {
		return nil, translate(fmt.Errorf("failed to encode %s: %w", f, err))
	}

	s.logger.Debug("Dataset exported",
		"format", string(f),
		"rows", ds.Len(),
		"bytes", len(data),
		"duration_ms", time.Since(start).Milliseconds())

	return &ExportFile{
		Name:        "simlens-" + time.Now().UTC().Format("20060102-150405") + "." + string(f),
		ContentType: contentTypes[f],
		Data:        data,
	}, nil
}

// Save exports the dataset into the export directory and returns the path
func (s *ExportService) Save(ctx context.Context, format string) (string, error) {
	file, err := s.Export(ctx, format)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", translate(fmt.Errorf("failed to create export directory: %w", err))
	}

	ext := filepath.Ext(file.Name)
	if ext == ".sz" {
		ext = ".csv.sz"
	}
	path := filepath.Join(s.dir, "simlens-"+uuid.NewString()+ext)
	if err := os.WriteFile(path, file.Data, 0o644); err != nil {
		return "", translate(fmt.Errorf("failed to write export: %w", err))
	}

	s.logger.Info("Export saved", "path", path, "bytes", len(file.Data))
	return path, nil
}

// encodeSnappyCSV writes the CSV through the snappy framing format
func encodeSnappyCSV(ds *dataset.Dataset) ([]byte, error) {
	var buf bytes.Buffer
	w := snappy.NewBufferedWriter(&buf)
	if err := dataset.Write(w, ds); err != nil {
		_ = w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// encodeWorkbook builds a workbook with the raw rows on one sheet and
// per-parameter summaries on another. Numeric cells are written as numbers.
func encodeWorkbook(ds *dataset.Dataset) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", dataSheet); err != nil {
		return nil, err
	}
	if err := writeDataSheet(f, ds); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, err
	}
	if err := writeSummarySheet(f, ds); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeDataSheet(f *excelize.File, ds *dataset.Dataset) error {
	sw, err := f.NewStreamWriter(dataSheet)
	if err != nil {
		return err
	}

	header := make([]interface{}, len(ds.Columns))
	for i, col := range ds.Columns {
		header[i] = col
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	for i, rec := range ds.Records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		raw := rec.Values()
		row := make([]interface{}, len(raw))
		for j, v := range raw {
			if n, ok := utils.ParseNumeric(v); ok {
				row[j] = n
			} else {
				row[j] = v
			}
		}
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}

	return sw.Flush()
}

func writeSummarySheet(f *excelize.File, ds *dataset.Dataset) error {
	headers := []interface{}{"Parameter", "Count", "Avg", "Min", "Max", "StdDev", "Median", "Q1", "Q3", "Outliers"}
	if err := f.SetSheetRow(summarySheet, "A1", &headers); err != nil {
		return err
	}

	for i, col := range ds.NumericColumns() {
		values := dataset.Extract(ds, col, "", dataset.NullableNumeric).Values()
		ext := stats.Describe(values)
		row := []interface{}{
			col, ext.Count, ext.Avg, ext.Min, ext.Max, ext.StdDev, ext.Median, ext.Q1, ext.Q3, len(ext.Outliers),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
