package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/simlens/simlens/internal/dataset"
	"github.com/simlens/simlens/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = "internalCurrentDate,Agent,money\n01/01/2024,A,100\n02/01/2024,A,200\n"

func writeCSV(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestFileSource_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wpsSimulator.csv")
	writeCSV(t, path, sampleCSV)

	src := NewFileSource(path, dataset.DefaultOptions())
	ds, err := src.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, ds.Len())
	assert.Equal(t, "2024-01-02", ds.Records[1].Value("internalCurrentDate"))
	assert.Equal(t, path, src.Location())
}

func TestFileSource_LoadMissing(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "absent.csv"), dataset.DefaultOptions())
	_, err := src.Load(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileSource_LoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	writeCSV(t, path, "a,b\n1,2,3\n")

	_, err := NewFileSource(path, dataset.DefaultOptions()).Load(context.Background())
	assert.ErrorIs(t, err, dataset.ErrMalformedRow)
}

func TestWaitForFile_Appears(t *testing.T) {
	path := filepath.Join(t.TempDir(), "late.csv")

	go func() {
		time.Sleep(50 * time.Millisecond)
		_ = os.WriteFile(path, []byte(sampleCSV), 0o644)
	}()

	err := WaitForFile(context.Background(), path, 2*time.Second, 10*time.Millisecond)
	assert.NoError(t, err)
}

func TestWaitForFile_Timeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "never.csv")

	start := time.Now()
	err := WaitForFile(context.Background(), path, 100*time.Millisecond, 10*time.Millisecond)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Less(t, time.Since(start), time.Second)
}

func TestWaitForFile_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WaitForFile(ctx, filepath.Join(t.TempDir(), "x.csv"), time.Second, 10*time.Millisecond)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSession_ReloadAndCurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.csv")
	session := NewSession(NewFileSource(path, dataset.DefaultOptions()), logging.Nop())

	_, err := session.Current()
	assert.ErrorIs(t, err, ErrNotFound)

	// reload before the file exists records the error
	err = session.Reload(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotEmpty(t, session.Status().Error)

	writeCSV(t, path, sampleCSV)
	require.NoError(t, session.Reload(context.Background()))

	ds, err := session.Current()
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())
	assert.False(t, session.LoadedAt().IsZero())

	st := session.Status()
	assert.True(t, st.Loaded)
	assert.Equal(t, 2, st.Rows)
	assert.Empty(t, st.Error)
}

func TestSession_FailedReloadKeepsSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.csv")
	writeCSV(t, path, sampleCSV)

	session := NewSession(NewFileSource(path, dataset.DefaultOptions()), logging.Nop())
	require.NoError(t, session.Reload(context.Background()))

	writeCSV(t, path, "a,b\n1,2,3\n")
	err := session.Reload(context.Background())
	require.Error(t, err)

	ds, err := session.Current()
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())
}

func TestSession_Repoint(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.csv")
	second := filepath.Join(dir, "second.csv")
	writeCSV(t, first, sampleCSV)
	writeCSV(t, second, "Agent,money\nB,1\nB,2\nB,3\n")

	session := NewSession(NewFileSource(first, dataset.DefaultOptions()), logging.Nop())
	require.NoError(t, session.Reload(context.Background()))

	session.Repoint(NewFileSource(second, dataset.DefaultOptions()))
	require.NoError(t, session.Reload(context.Background()))

	ds, _ := session.Current()
	assert.Equal(t, 3, ds.Len())
	assert.Equal(t, second, session.Status().Location)
}

type countingLoader struct {
	calls atomic.Int32
}

func (l *countingLoader) Load(ctx context.Context) (*dataset.Dataset, error) {
	l.calls.Add(1)
	return dataset.New([]string{"money"}, [][]string{{"1"}}), nil
}

func (l *countingLoader) Location() string { return "memory" }

func TestRefresher_Run(t *testing.T) {
	loader := &countingLoader{}
	session := NewSession(loader, logging.Nop())
	refresher := NewRefresher(session, 20*time.Millisecond, logging.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	refresher.Run(ctx)

	assert.GreaterOrEqual(t, loader.calls.Load(), int32(2))
	_, err := session.Current()
	assert.NoError(t, err)
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.csv")

	var fired atomic.Int32
	w, err := NewWatcher(path, 50*time.Millisecond, func(ctx context.Context) {
		fired.Add(1)
	}, logging.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)
	defer func() { _ = w.Stop() }()

	// a burst of writes collapses into one callback
	writeCSV(t, path, sampleCSV)
	writeCSV(t, path, sampleCSV)
	writeCSV(t, filepath.Join(filepath.Dir(path), "other.csv"), sampleCSV)

	require.Eventually(t, func() bool { return fired.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())
}

func TestNewWatcher_MissingDirectory(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "nope", "run.csv"), 0, func(context.Context) {}, logging.Nop())
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}
