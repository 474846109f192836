// Package activitycache keeps the last successfully fetched activity list
// and serves it stale when the Data API is failing.
package activitycache

import (
	"context"
	"sync"
	"time"

	"youthunion-chat/internal/common/config"
	"youthunion-chat/internal/common/errors"
	"youthunion-chat/internal/common/metrics"
	"youthunion-chat/internal/models"
)

// Refresh results recorded in activity_cache_refresh_total.
const (
	ResultOK    = "ok"
	ResultStale = "stale"
	ResultError = "error"
)

// Lister fetches one page of activities from the Data API.
type Lister interface {
	ListActivities(ctx context.Context, opts models.ListOptions) (*models.ActivityList, error)
}

// SnapshotStore persists the cached list outside the process.
type SnapshotStore interface {
	Save(ctx context.Context, snap Snapshot) error
	Load(ctx context.Context) (*Snapshot, error)
}

// Snapshot is the persisted cache content.
type Snapshot struct {
	FetchedAt time.Time            `json:"fetched_at"`
	Data      *models.ActivityList `json:"data"`
}

type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Cache is safe for concurrent use. Concurrent refreshes are not
// coalesced; the last one to finish wins.
type Cache struct {
	source   Lister
	store    SnapshotStore
	expiry   time.Duration
	pageSize int
	logger   Logger
	now      func() time.Time

	mu        sync.RWMutex
	data      *models.ActivityList
	fetchedAt time.Time
}

type Option func(*Cache)

// WithSnapshotStore mirrors every successful fetch into store.
func WithSnapshotStore(store SnapshotStore) Option {
	return func(c *Cache) { c.store = store }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func New(source Lister, cfg config.CacheConfig, log Logger, opts ...Option) *Cache {
	c := &Cache{
		source:   source,
		expiry:   time.Duration(cfg.ExpiryMinutes) * time.Minute,
		pageSize: cfg.FetchPageSize,
		logger:   log,
		now:      time.Now,
	}
	if c.expiry <= 0 {
		c.expiry = time.Hour
	}
	if c.pageSize <= 0 {
		c.pageSize = 50
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached list, fetching when it is absent or expired. When
// the fetch fails the previous list is returned; an error is returned only
// if nothing was ever fetched. The result must not be modified.
func (c *Cache) Get(ctx context.Context) (*models.ActivityList, error) {
	c.mu.RLock()
	data, fetchedAt := c.data, c.fetchedAt
	c.mu.RUnlock()

	if data != nil {
		age := c.now().Sub(fetchedAt)
		metrics.CacheAgeSeconds.Set(age.Seconds())
		if age < c.expiry {
			return data, nil
		}
	}

	return c.refresh(ctx)
}

// ForceRefresh fetches regardless of age, with the same stale fallback as Get.
func (c *Cache) ForceRefresh(ctx context.Context) (*models.ActivityList, error) {
	return c.refresh(ctx)
}

// LastFetchedAt is the zero time until the first successful fetch.
func (c *Cache) LastFetchedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fetchedAt
}

// Ready reports whether any list is available.
func (c *Cache) Ready() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data != nil
}

// Warm loads the persisted snapshot, if any, so a restarted process has
// data before its first fetch. A newer in-memory list is kept.
func (c *Cache) Warm(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	snap, err := c.store.Load(ctx)
	if err != nil {
		return err
	}
	if snap == nil || snap.Data == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data == nil || snap.FetchedAt.After(c.fetchedAt) {
		c.data = snap.Data
		c.fetchedAt = snap.FetchedAt
		c.logger.Info("activity cache warmed from snapshot", map[string]interface{}{
			"fetchedAt": snap.FetchedAt,
			"count":     len(snap.Data.Results),
		})
	}
	return nil
}

func (c *Cache) refresh(ctx context.Context) (*models.ActivityList, error) {
	list, err := c.source.ListActivities(ctx, models.ListOptions{Page: 1, PageSize: c.pageSize})
	if err != nil {
		return c.fallback(ctx, err)
	}

	fetchedAt := c.now()
	c.mu.Lock()
	c.data = list
	c.fetchedAt = fetchedAt
	c.mu.Unlock()

	metrics.CacheRefreshTotal.WithLabelValues(ResultOK).Inc()
	metrics.CacheAgeSeconds.Set(0)
	c.logger.Info("activity cache refreshed", map[string]interface{}{
		"count": len(list.Results),
		"total": list.Count,
	})

	if c.store != nil {
		if err := c.store.Save(ctx, Snapshot{FetchedAt: fetchedAt, Data: list}); err != nil {
			c.logger.Warn("activity snapshot not saved", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	return list, nil
}

func (c *Cache) fallback(ctx context.Context, fetchErr error) (*models.ActivityList, error) {
	c.mu.RLock()
	data, fetchedAt := c.data, c.fetchedAt
	c.mu.RUnlock()

	if data == nil && c.store != nil {
		if err := c.Warm(ctx); err != nil {
			c.logger.Warn("activity snapshot not loaded", map[string]interface{}{
				"error": err.Error(),
			})
		}
		c.mu.RLock()
		data, fetchedAt = c.data, c.fetchedAt
		c.mu.RUnlock()
	}

	if data == nil {
		metrics.CacheRefreshTotal.WithLabelValues(ResultError).Inc()
		c.logger.Error("activity cache refresh failed with no previous data", map[string]interface{}{
			"error": fetchErr.Error(),
		})
		return nil, errors.NewCacheUnavailableError(fetchErr)
	}

	metrics.CacheRefreshTotal.WithLabelValues(ResultStale).Inc()
	c.logger.Warn("activity cache refresh failed, serving stale data", map[string]interface{}{
		"error":     fetchErr.Error(),
		"fetchedAt": fetchedAt,
		"age":       c.now().Sub(fetchedAt).String(),
	})
	return data, nil
}
