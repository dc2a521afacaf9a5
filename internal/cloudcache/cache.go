// Package cloudcache builds, persists, and serves a hierarchical
// snapshot of everything that exists in cloud object storage, so that
// inventory queries do not hit the network on every call.
package cloudcache

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/input-output-hk/catalyst-forge-libs/fs"

	"github.com/nbarbarousis/fieldsync/internal/s3api"
	"github.com/nbarbarousis/fieldsync/synctypes"
)

// Cache owns the cloud inventory snapshot. It is lazily populated:
// queries trigger a full rescan when no snapshot is held, the snapshot
// has been marked stale, or the caller forces one. A refresh replaces
// the whole snapshot atomically; readers see either the old or the new
// snapshot, never a partial merge.
type Cache struct {
	client    s3api.S3API
	fsys      fs.Filesystem
	rawBucket string
	mlBucket  string
	path      string
	logger    *log.Logger

	mu          sync.RWMutex
	snapshot    *Snapshot
	lastUpdated time.Time
	stale       bool
	staleReason string
}

// New creates a Cache over the two buckets, persisting to path on the
// given filesystem. Any usable cache file is loaded immediately; a
// missing, corrupt, or mismatched file just means the first query
// rescans.
func New(client s3api.S3API, fsys fs.Filesystem, rawBucket, mlBucket, path string, logger *log.Logger) *Cache {
	if logger == nil {
		logger = log.Default()
	}
	c := &Cache{
		client:    client,
		fsys:      fsys,
		rawBucket: rawBucket,
		mlBucket:  mlBucket,
		path:      path,
		logger:    logger.With("component", "cloudcache"),
	}
	c.loadFromDisk()
	return c
}

// FullInventory returns the snapshot, refreshing first when it is
// empty, stale, or force is set.
func (c *Cache) FullInventory(ctx context.Context, force bool) (*Snapshot, error) {
	if err := c.ensure(ctx, force); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot, nil
}

// MarkStale flags the snapshot for refresh on the next query. It is
// idempotent and does not itself trigger a rescan.
func (c *Cache) MarkStale(reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.stale {
		c.logger.Debug("cache marked stale", "reason", reason)
	}
	c.stale = true
	c.staleReason = reason
}

// HierarchyLevel returns the sorted child keys under parentPath.
func (c *Cache) HierarchyLevel(ctx context.Context, kind DataKind, parentPath string) ([]string, error) {
	snap, err := c.FullInventory(ctx, false)
	if err != nil {
		return nil, err
	}
	return snap.HierarchyLevel(kind, parentPath), nil
}

// PathExists reports whether any data exists under the path.
func (c *Cache) PathExists(ctx context.Context, kind DataKind, path string) (bool, error) {
	snap, err := c.FullInventory(ctx, false)
	if err != nil {
		return false, err
	}
	return snap.PathExists(kind, path), nil
}

// RawStatus returns the cloud raw status for one coordinate.
func (c *Cache) RawStatus(ctx context.Context, coord synctypes.Coordinate) (synctypes.CloudRawStatus, error) {
	snap, err := c.FullInventory(ctx, false)
	if err != nil {
		return synctypes.CloudRawStatus{}, err
	}
	return snap.RawStatus(coord), nil
}

// MLStatus returns the cloud ML status for one coordinate.
func (c *Cache) MLStatus(ctx context.Context, coord synctypes.Coordinate) (synctypes.CloudMLStatus, error) {
	snap, err := c.FullInventory(ctx, false)
	if err != nil {
		return synctypes.CloudMLStatus{}, err
	}
	return snap.MLStatus(coord), nil
}

// AllRawStatuses returns the cloud raw status of every coordinate.
func (c *Cache) AllRawStatuses(ctx context.Context) (map[synctypes.Coordinate]synctypes.CloudRawStatus, error) {
	snap, err := c.FullInventory(ctx, false)
	if err != nil {
		return nil, err
	}
	return snap.AllRawStatuses(), nil
}

// AllMLStatuses returns the cloud ML status of every coordinate.
func (c *Cache) AllMLStatuses(ctx context.Context) (map[synctypes.Coordinate]synctypes.CloudMLStatus, error) {
	snap, err := c.FullInventory(ctx, false)
	if err != nil {
		return nil, err
	}
	return snap.AllMLStatuses(), nil
}

// Timeline aggregates per-timestamp coverage under the filter prefix.
func (c *Cache) Timeline(ctx context.Context, filter synctypes.HierarchyFilter) (synctypes.TimelineData, error) {
	snap, err := c.FullInventory(ctx, false)
	if err != nil {
		return synctypes.TimelineData{}, err
	}
	return snap.Timeline(filter), nil
}

// Info describes the current cache state.
func (c *Cache) Info() synctypes.CacheInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	info := synctypes.CacheInfo{
		Exists:      c.snapshot != nil,
		LastUpdated: c.lastUpdated,
		Stale:       c.stale,
		StaleReason: c.staleReason,
		Path:        c.path,
	}
	if c.snapshot != nil {
		info.Coordinates = c.snapshot.Coordinates()
	}
	return info
}

// ensure refreshes the snapshot when needed.
func (c *Cache) ensure(ctx context.Context, force bool) error {
	c.mu.RLock()
	needs := force || c.stale || c.snapshot == nil
	c.mu.RUnlock()
	if !needs {
		return nil
	}
	return c.refresh(ctx)
}

// refresh performs a full rescan of both buckets and swaps in the new
// snapshot. A listing failure in one bucket degrades to an empty tree
// for that bucket only; the other bucket's scan still runs and the
// previously persisted cache file is left untouched on persist failure.
func (c *Cache) refresh(ctx context.Context) error {
	start := time.Now()
	c.logger.Info("refreshing cloud inventory", "raw_bucket", c.rawBucket, "ml_bucket", c.mlBucket)

	snap := NewSnapshot()

	rawObjects, err := c.scanBucket(ctx, c.rawBucket)
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		c.logger.Error("raw bucket scan failed, treating as empty", "bucket", c.rawBucket, "error", err)
	} else {
		for _, obj := range rawObjects {
			addRawObject(snap, obj.key, obj.size)
		}
	}

	mlObjects, err := c.scanBucket(ctx, c.mlBucket)
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		c.logger.Error("ml bucket scan failed, treating as empty", "bucket", c.mlBucket, "error", err)
	} else {
		for _, obj := range mlObjects {
			addMLObject(snap, obj.key, obj.size)
		}
	}

	now := time.Now().UTC()

	c.mu.Lock()
	c.snapshot = snap
	c.lastUpdated = now
	c.stale = false
	c.staleReason = ""
	c.mu.Unlock()

	if err := c.saveToDisk(snap, now); err != nil {
		c.logger.Warn("failed to persist cache, previous file preserved", "path", c.path, "error", err)
	}

	c.logger.Info("cloud inventory refreshed",
		"coordinates", snap.Coordinates(),
		"duration", time.Since(start))
	return nil
}
