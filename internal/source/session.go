package source

import (
	"context"
	"sync"
	"time"

	"github.com/simlens/simlens/internal/dataset"
	"github.com/simlens/simlens/internal/logging"
)

// Session holds the most recently loaded Dataset. Readers get an immutable
// snapshot; a failed reload keeps the previous one.
type Session struct {
	mu       sync.RWMutex
	loader   Loader
	current  *dataset.Dataset
	loadedAt time.Time
	lastErr  error

	reloadMu sync.Mutex
	logger   *logging.Logger
}

// Status describes the session for the overview endpoint
type Status struct {
	Location string    `json:"location"`
	Loaded   bool      `json:"loaded"`
	LoadedAt time.Time `json:"loaded_at,omitempty"`
	Rows     int       `json:"rows"`
	Error    string    `json:"error,omitempty"`
}

// NewSession creates an empty session over loader
func NewSession(loader Loader, logger *logging.Logger) *Session {
	if logger == nil {
		logger = logging.Global()
	}
	return &Session{
		loader: loader,
		logger: logger.With("component", "session"),
	}
}

// NewStaticSession creates a session already holding ds
func NewStaticSession(ds *dataset.Dataset) *Session {
	return &Session{
		current:  ds,
		loadedAt: time.Now(),
		logger:   logging.Nop(),
	}
}

// Current returns the loaded Dataset or ErrNotFound when nothing has loaded
func (s *Session) Current() (*dataset.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		if s.lastErr != nil {
			return nil, s.lastErr
		}
		return nil, ErrNotFound
	}
	return s.current, nil
}

// LoadedAt returns when the current Dataset was loaded
func (s *Session) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

// Status returns a snapshot of the session state
func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Status{
		Loaded:   s.current != nil,
		LoadedAt: s.loadedAt,
		Rows:     s.current.Len(),
	}
	if s.loader != nil {
		st.Location = s.loader.Location()
	}
	if s.lastErr != nil {
		st.Error = s.lastErr.Error()
	}
	return st
}

// Repoint switches the session to a different loader for subsequent reloads
func (s *Session) Repoint(loader Loader) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loader = loader
}

// Reload loads a fresh Dataset and swaps it in. Concurrent reloads run one
// at a time.
func (s *Session) Reload(ctx context.Context) error {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	s.mu.RLock()
	loader := s.loader
	s.mu.RUnlock()
	if loader == nil {
		return ErrNotFound
	}

	start := time.Now()
	ds, err := loader.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.lastErr = err
		s.logger.Warn("Dataset reload failed", "location", loader.Location(), "error", err)
		return err
	}

	s.current = ds
	s.loadedAt = time.Now()
	s.lastErr = nil
	s.logger.Info("Dataset reloaded",
		"location", loader.Location(),
		"rows", ds.Len(),
		"columns", len(ds.Columns),
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}
