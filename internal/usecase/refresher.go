package usecase

import (
	"context"
	"time"

	applogger "CurveWatch/pkg/logger"
)

// Refresher rebuilds the snapshot on a fixed interval so an open dashboard
// never serves data older than the cache TTL plus one interval. With a zero
// interval it does nothing and refreshes stay purely on-demand.
type Refresher struct {
	svc      *CurveService
	interval time.Duration
	logger   *applogger.Logger
}

func NewRefresher(svc *CurveService, interval time.Duration, logger *applogger.Logger) *Refresher {
	return &Refresher{svc: svc, interval: interval, logger: logger}
}

// Run blocks until ctx is done, refreshing on each tick.
func (r *Refresher) Run(ctx context.Context) {
	if r.interval <= 0 {
		return
	}
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := r.svc.Refresh(ctx); err != nil {
				r.logger.Error("scheduled refresh failed", applogger.Error(err))
			}
		}
	}
}
