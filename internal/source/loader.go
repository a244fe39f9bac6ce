// Package source loads the simulator's CSV output and keeps the current
// Dataset snapshot for the analysis layer.
package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/simlens/simlens/internal/dataset"
	"github.com/simlens/simlens/internal/utils"
)

// ErrNotFound is returned when the CSV file (or a loaded dataset) is absent
var ErrNotFound = errors.New("data not found")

// Loader produces a fresh Dataset on each call
type Loader interface {
	Load(ctx context.Context) (*dataset.Dataset, error)
	Location() string
}

// FileSource loads a Dataset from a CSV file on disk
type FileSource struct {
	Path    string
	Options dataset.Options
}

// NewFileSource creates a FileSource for path
func NewFileSource(path string, opts dataset.Options) *FileSource {
	return &FileSource{Path: path, Options: opts}
}

// Location returns the file path
func (s *FileSource) Location() string {
	return s.Path
}

// Load reads and parses the file. A missing file yields ErrNotFound.
func (s *FileSource) Load(ctx context.Context) (*dataset.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, s.Path)
		}
		return nil, fmt.Errorf("failed to open %s: %w", s.Path, err)
	}
	defer func() { _ = f.Close() }()

	ds, err := dataset.ParseReader(f, s.Options)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.Path, err)
	}
	return ds, nil
}

// WaitForFile polls until path exists, the timeout elapses or ctx is done.
// Zero timeout and interval use the defaults. Returns ErrNotFound on timeout.
func WaitForFile(ctx context.Context, path string, timeout, interval time.Duration) error {
	if timeout <= 0 {
		timeout = utils.DefaultWaitTimeout
	}
	if interval <= 0 {
		interval = utils.DefaultPollInterval
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := os.Stat(path); err == nil {
			return nil
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return fmt.Errorf("%w: %s did not appear within %s", ErrNotFound, path, timeout)
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
