package services

import (
	"context"
	"fmt"

	"github.com/simlens/simlens/internal/config"
	"github.com/simlens/simlens/internal/dataset"
	"github.com/simlens/simlens/internal/events"
	"github.com/simlens/simlens/internal/logging"
	"github.com/simlens/simlens/internal/source"
	"github.com/simlens/simlens/internal/utils"
)

// Recompute reloads the session when a simulation run completes
type Recompute struct {
	logger  *logging.Logger
	session *source.Session
	bus     events.Bus
	source  config.SourceConfig
	opts    dataset.Options
}

// NewRecompute creates a Recompute wired to bus
func NewRecompute(logger *logging.Logger, session *source.Session, bus events.Bus, src config.SourceConfig) *Recompute {
	return &Recompute{
		logger:  logger.With("component", "recompute"),
		session: session,
		bus:     bus,
		source:  src,
		opts: dataset.Options{
			DateColumn:  src.DateColumn,
			DateLayout:  src.DateLayout,
			AgentColumn: src.AgentColumn,
		},
	}
}

// Start subscribes to run events until ctx is done
func (r *Recompute) Start(ctx context.Context) error {
	if err := r.bus.Subscribe(ctx, r.HandleRunEvent); err != nil {
		return fmt.Errorf("failed to subscribe to run events: %w", err)
	}
	r.logger.Info("Listening for run events")
	return nil
}

// HandleRunEvent waits for the run's CSV, repoints the session when the
// event names a new file and reloads. Failed runs are ignored.
func (r *Recompute) HandleRunEvent(ctx context.Context, ev events.RunEvent) error {
	log := r.logger.With("run_id", ev.RunID, "status", ev.Status)
	if !ev.Completed() {
		log.Info("Ignoring run that did not complete")
		return nil
	}

	path := ev.CSVPath
	if path == "" {
		path = r.session.Status().Location
	}
	if path == "" {
		path = r.source.CSVPath
	}

	if err := source.WaitForFile(ctx, path, r.source.WaitTimeout, r.source.PollInterval); err != nil {
		log.Warn("Run output did not appear", "path", path, "error", err)
		return err
	}

	if path != r.session.Status().Location {
		r.session.Repoint(source.NewFileSource(path, r.opts))
	}

	reloadCtx, cancel := context.WithTimeout(ctx, utils.ReloadTimeout)
	defer cancel()
	if err := r.session.Reload(reloadCtx); err != nil {
		log.Error("Reload after run failed", "path", path, "error", err)
		return err
	}

	log.Info("Dataset recomputed after run", "path", path)
	return nil
}

// OnFileChange announces a rewrite of the watched CSV as a completed run so
// that reloads flow through the event path. When the bus rejects the event
// the session is reloaded directly.
func (r *Recompute) OnFileChange(ctx context.Context) {
	ev := events.NewRunEvent(r.source.CSVPath, events.StatusCompleted)
	err := r.bus.Publish(ctx, ev)
	if err == nil {
		return
	}
	r.logger.Warn("Failed to publish file change, reloading directly", "error", err)

	reloadCtx, cancel := context.WithTimeout(ctx, utils.ReloadTimeout)
	defer cancel()
	_ = r.session.Reload(reloadCtx)
}
