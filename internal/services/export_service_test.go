package services

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang/snappy"
	"github.com/simlens/simlens/internal/dataset"
	"github.com/simlens/simlens/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseExportFormat(t *testing.T) {
	f, err := ParseExportFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseExportFormat("csv.sz")
	require.NoError(t, err)
	assert.Equal(t, FormatCSVSnappy, f)

	_, err = ParseExportFormat("parquet")
	requireServiceError(t, err, CodeUnsupportedFormat)
}

func TestExportService_CSV(t *testing.T) {
	svc := NewExportService(logging.Nop(), testSession(t), t.TempDir())

	file, err := svc.Export(context.Background(), "csv")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(file.Name, ".csv"))
	assert.Contains(t, file.ContentType, "text/csv")

	// dates come back in normalized form
	ds, err := dataset.Parse(string(file.Data), dataset.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 5, ds.Len())
	assert.Equal(t, "2024-01-01", ds.Records[0].Value("internalCurrentDate"))
	assert.Equal(t, "", ds.Records[3].Value("money"))
}

func TestExportService_SnappyCSV(t *testing.T) {
	svc := NewExportService(logging.Nop(), testSession(t), t.TempDir())

	file, err := svc.Export(context.Background(), "csv.sz")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(file.Name, ".csv.sz"))

	plain, err := io.ReadAll(snappy.NewReader(bytes.NewReader(file.Data)))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(plain), "internalCurrentDate,Agent,money,health,label\n"))
}

func TestExportService_Workbook(t *testing.T) {
	svc := NewExportService(logging.Nop(), testSession(t), t.TempDir())

	file, err := svc.Export(context.Background(), "xlsx")
	require.NoError(t, err)

	wb, err := excelize.OpenReader(bytes.NewReader(file.Data))
	require.NoError(t, err)
	defer func() { _ = wb.Close() }()

	assert.Equal(t, []string{"Data", "Summary"}, wb.GetSheetList())

	rows, err := wb.GetRows("Data")
	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.Equal(t, []string{"internalCurrentDate", "Agent", "money", "health", "label"}, rows[0])
	assert.Equal(t, "100", rows[1][2])

	summary, err := wb.GetRows("Summary")
	require.NoError(t, err)
	require.Len(t, summary, 3)
	assert.Equal(t, "Parameter", summary[0][0])
	assert.Equal(t, "money", summary[1][0])
	assert.Equal(t, "4", summary[1][1])
	assert.Equal(t, "275", summary[1][2])
	assert.Equal(t, "health", summary[2][0])
}

func TestExportService_Save(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	svc := NewExportService(logging.Nop(), testSession(t), dir)

	path, err := svc.Save(context.Background(), "csv.sz")
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasSuffix(path, ".csv.sz"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestExportService_Errors(t *testing.T) {
	svc := NewExportService(logging.Nop(), testSession(t), t.TempDir())

	_, err := svc.Export(context.Background(), "json")
	requireServiceError(t, err, CodeUnsupportedFormat)
}
