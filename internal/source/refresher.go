package source

import (
	"context"
	"time"

	"github.com/simlens/simlens/internal/logging"
	"github.com/simlens/simlens/internal/utils"
)

// Refresher reloads a Session on a fixed interval, matching the dashboard's
// live re-analysis cadence.
type Refresher struct {
	session  *Session
	interval time.Duration
	logger   *logging.Logger
}

// NewRefresher creates a refresher. interval <= 0 uses the default.
func NewRefresher(session *Session, interval time.Duration, logger *logging.Logger) *Refresher {
	if interval <= 0 {
		interval = utils.DefaultRefreshInterval
	}
	if logger == nil {
		logger = logging.Global()
	}
	return &Refresher{
		session:  session,
		interval: interval,
		logger:   logger.With("component", "refresher"),
	}
}

// Run reloads the session every interval until ctx is done. Reload errors
// are logged and the previous snapshot is kept.
func (r *Refresher) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("Refresher started", "interval", r.interval.String())
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Refresher stopped")
			return
		case <-ticker.C:
			reloadCtx, cancel := context.WithTimeout(ctx, utils.ReloadTimeout)
			_ = r.session.Reload(reloadCtx)
			cancel()
		}
	}
}
