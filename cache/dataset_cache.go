// Package cache holds the process-wide aggregated dataset.
package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"invcost/metrics"
	"invcost/model"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL is how long a loaded dataset is served before the next request reloads it.
const DefaultTTL = time.Hour

// LoadFunc builds a complete dataset. It must not return a partial dataset
// together with an error.
type LoadFunc func(ctx context.Context) (*model.Dataset, error)

// DatasetCache owns the cached dataset and its load time. A refresh builds the
// new dataset fully before it replaces the old one, and concurrent refreshes
// share one load.
//
// Thread Safety: DatasetCache is safe for concurrent use.
type DatasetCache struct {
	mu       sync.RWMutex
	dataset  *model.Dataset
	loadedAt time.Time
	ttl      time.Duration

	load   LoadFunc
	group  singleflight.Group
	logger *zap.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// New creates an empty cache. A non-positive ttl selects DefaultTTL.
func New(load LoadFunc, ttl time.Duration, logger *zap.Logger) *DatasetCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DatasetCache{load: load, ttl: ttl, logger: logger}
}

// TTL returns the configured time-to-live.
func (c *DatasetCache) TTL() time.Duration {
	return c.ttl
}

// GetOrRefresh returns the cached dataset if it is younger than the TTL at now
// and force is false. Otherwise it loads a new one. When the load fails the
// previous dataset stays cached but is not returned.
func (c *DatasetCache) GetOrRefresh(ctx context.Context, now time.Time, force bool) (*model.Dataset, error) {
	if !force {
		if ds, ok := c.fresh(now); ok {
			c.hits.Add(1)
			metrics.CacheRequestsTotal.WithLabelValues("hit").Inc()
			return ds, nil
		}
		c.misses.Add(1)
		metrics.CacheRequestsTotal.WithLabelValues("miss").Inc()
	} else {
		metrics.CacheRequestsTotal.WithLabelValues("forced").Inc()
	}

	v, err, shared := c.group.Do("dataset", func() (interface{}, error) {
		// Another caller may have finished a load while we waited for the lock.
		if !force {
			if ds, ok := c.fresh(now); ok {
				return ds, nil
			}
		}
		// The load is shared, so one caller leaving must not cancel it for the
		// others. QUERY_TIMEOUT still bounds the fetch.
		return c.refresh(context.WithoutCancel(ctx), now)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.logger.Debug("Joined in-flight dataset load")
	}
	return v.(*model.Dataset), nil
}

func (c *DatasetCache) fresh(now time.Time) (*model.Dataset, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.dataset == nil || now.Sub(c.loadedAt) >= c.ttl {
		return nil, false
	}
	return c.dataset, true
}

func (c *DatasetCache) refresh(ctx context.Context, now time.Time) (*model.Dataset, error) {
	ds, err := c.load(ctx)
	if err != nil {
		c.logger.Error("Dataset load failed; keeping previous dataset", zap.Error(err))
		return nil, err
	}
	if ds == nil {
		return nil, errors.New("dataset loader returned no dataset")
	}
	ds.LoadedAt = now

	c.mu.Lock()
	c.dataset = ds
	c.loadedAt = now
	c.mu.Unlock()

	metrics.DatasetRecords.Set(float64(ds.Len()))
	c.logger.Info("Dataset refreshed",
		zap.String("snapshotId", ds.SnapshotID),
		zap.Int("records", ds.Len()))
	return ds, nil
}

// Invalidate drops the cached dataset so the next request reloads.
func (c *DatasetCache) Invalidate() {
	c.mu.Lock()
	c.dataset = nil
	c.loadedAt = time.Time{}
	c.mu.Unlock()
	metrics.DatasetRecords.Set(0)
	c.logger.Info("Dataset cache invalidated")
}

// Snapshot returns the cached dataset without loading or checking expiry.
func (c *DatasetCache) Snapshot() (*model.Dataset, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dataset, c.dataset != nil
}

// Stats reports cache hits and misses since start.
func (c *DatasetCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Status describes the cache for the health endpoint.
type Status struct {
	Loaded     bool      `json:"loaded"`
	SnapshotID string    `json:"snapshotId,omitempty"`
	Records    int       `json:"records"`
	LoadedAt   time.Time `json:"loadedAt,omitempty"`
	AgeSeconds float64   `json:"ageSeconds"`
	TTLSeconds float64   `json:"ttlSeconds"`
	Hits       int64     `json:"hits"`
	Misses     int64     `json:"misses"`
}

// Status reports the cached snapshot and hit counters as of now.
func (c *DatasetCache) Status(now time.Time) Status {
	st := Status{TTLSeconds: c.TTL().Seconds()}
	st.Hits, st.Misses = c.Stats()
	if ds, ok := c.Snapshot(); ok {
		st.Loaded = true
		st.SnapshotID = ds.SnapshotID
		st.Records = ds.Len()
		st.LoadedAt = ds.LoadedAt
		st.AgeSeconds = now.Sub(ds.LoadedAt).Seconds()
	}
	return st
}
