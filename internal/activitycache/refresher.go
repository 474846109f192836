package activitycache

import (
	"context"
	"time"
)

// Refresher re-fetches the cache on a fixed interval. The host owns its
// lifetime through the context passed to Run.
type Refresher struct {
	cache    *Cache
	interval time.Duration
	timeout  time.Duration
	logger   Logger
}

func NewRefresher(cache *Cache, interval, timeout time.Duration, log Logger) *Refresher {
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	return &Refresher{cache: cache, interval: interval, timeout: timeout, logger: log}
}

// Run refreshes once immediately, then on every tick until ctx is done.
func (r *Refresher) Run(ctx context.Context) {
	r.logger.Info("activity cache refresher started", map[string]interface{}{
		"interval": r.interval.String(),
	})

	r.refreshOnce(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("activity cache refresher stopped", nil)
			return
		case <-ticker.C:
			r.refreshOnce(ctx)
		}
	}
}

func (r *Refresher) refreshOnce(ctx context.Context) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	// Failures are already logged and counted by the cache.
	_, _ = r.cache.ForceRefresh(ctx)
}
