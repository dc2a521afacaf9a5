package fieldsync

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/nbarbarousis/fieldsync/internal/cloudcache"
	"github.com/nbarbarousis/fieldsync/internal/localstate"
	"github.com/nbarbarousis/fieldsync/internal/reconcile"
	"github.com/nbarbarousis/fieldsync/internal/transfer"
	"github.com/nbarbarousis/fieldsync/paths"
	"github.com/nbarbarousis/fieldsync/synctypes"
)

// DataKind selects raw recordings or ML samples in hierarchy queries.
type DataKind string

// Snapshot sides
const (
	KindRaw DataKind = "raw"
	KindML  DataKind = "ml"
)

// Service is the high-level synchronization surface: inventory,
// hierarchy queries, transfer jobs, and export lookups, all over one
// shared cloud cache and local scanner. It is safe for concurrent use.
type Service struct {
	cache     *cloudcache.Cache
	scanner   *localstate.Scanner
	engine    *transfer.Engine
	inventory *reconcile.Builder
	logger    *log.Logger
}

// Service builds the synchronization service from the client's
// configuration. Each call constructs an independent service with its
// own cloud cache.
func (c *Client) Service() *Service {
	c.mu.RLock()
	filesystem := c.fs
	c.mu.RUnlock()

	builder := paths.NewBuilder(c.cfg.RawRoot, c.cfg.MLRoot, c.cfg.ProcessedRoot)
	translator := paths.NewTranslator(c.logger)
	cache := cloudcache.New(c.s3Client, filesystem, c.cfg.RawBucket, c.cfg.MLBucket, c.cfg.CacheFile, c.logger)
	scanner := localstate.NewScanner(filesystem, builder, c.logger)

	backend := &transfer.Backend{
		S3:                 c.s3Client,
		FS:                 filesystem,
		RawBucket:          c.cfg.RawBucket,
		MLBucket:           c.cfg.MLBucket,
		MultipartThreshold: c.cfg.MultipartThreshold,
		Logger:             c.logger,
	}
	if c.uploader != nil {
		backend.Uploader = c.uploader
	}

	return &Service{
		cache:     cache,
		scanner:   scanner,
		engine:    transfer.NewEngine(cache, scanner, builder, translator, backend, c.logger),
		inventory: reconcile.NewBuilder(cache, scanner, translator, c.logger),
		logger:    c.logger.With("component", "service"),
	}
}

// CreateJob builds a transfer job for one coordinate. Jobs default to
// dry-run; Execute flips that per evaluation.
func (s *Service) CreateJob(
	coord synctypes.Coordinate,
	op synctypes.OperationType,
	criteria synctypes.SelectionCriteria,
	policy synctypes.ConflictPolicy,
) *synctypes.TransferJob {
	return &synctypes.TransferJob{
		ID:         uuid.NewString(),
		Coordinate: coord,
		Operation:  op,
		Criteria:   criteria,
		Policy:     policy,
		DryRun:     true,
		CreatedAt:  time.Now().UTC(),
	}
}

// Plan evaluates a job without moving any bytes and returns the plan.
func (s *Service) Plan(ctx context.Context, job *synctypes.TransferJob) *synctypes.OperationResult {
	j := *job
	j.DryRun = true
	return s.engine.Run(ctx, &j)
}

// Execute evaluates and runs a job. A successful run invalidates the
// cached inventory since at least one side changed.
func (s *Service) Execute(ctx context.Context, job *synctypes.TransferJob) *synctypes.OperationResult {
	j := *job
	j.DryRun = false
	result := s.engine.Run(ctx, &j)
	if result.Summary != nil && result.Summary.Successful > 0 {
		s.inventory.Refresh()
	}
	return result
}

// Inventory returns the reconciled cloud/local view narrowed by the
// filter, with aggregate metrics over the filtered items.
func (s *Service) Inventory(ctx context.Context, filter synctypes.HierarchyFilter) ([]synctypes.InventoryItem, synctypes.InventoryMetrics, error) {
	items, err := s.inventory.Build(ctx)
	if err != nil {
		return nil, synctypes.InventoryMetrics{}, err
	}
	items = reconcile.Filter(items, filter)
	return items, reconcile.Metrics(items), nil
}

// RefreshInventory forces a full cloud rescan and drops the cached
// reconciliation so the next Inventory call recomputes everything.
func (s *Service) RefreshInventory(ctx context.Context) error {
	if _, err := s.cache.FullInventory(ctx, true); err != nil {
		return err
	}
	s.inventory.Refresh()
	return nil
}

// CloudRawStatus returns the cloud raw status for one coordinate.
func (s *Service) CloudRawStatus(ctx context.Context, coord synctypes.Coordinate) (synctypes.CloudRawStatus, error) {
	return s.cache.RawStatus(ctx, coord)
}

// CloudMLStatus returns the cloud ML status for one coordinate.
func (s *Service) CloudMLStatus(ctx context.Context, coord synctypes.Coordinate) (synctypes.CloudMLStatus, error) {
	return s.cache.MLStatus(ctx, coord)
}

// LocalRawStatus returns the local raw status for one coordinate.
// Local state is always read live from disk.
func (s *Service) LocalRawStatus(coord synctypes.Coordinate) synctypes.LocalRawStatus {
	return s.scanner.RawStatus(coord)
}

// LocalMLStatus returns the local ML status for one coordinate.
func (s *Service) LocalMLStatus(coord synctypes.Coordinate) synctypes.LocalMLStatus {
	return s.scanner.MLStatus(coord)
}

// HierarchyLevel returns the sorted cloud-side child names one level
// below parentPath. An empty parentPath lists the clients.
func (s *Service) HierarchyLevel(ctx context.Context, kind DataKind, parentPath string) ([]string, error) {
	return s.cache.HierarchyLevel(ctx, cloudcache.DataKind(kind), parentPath)
}

// PathExists reports whether any cloud data exists under the path.
func (s *Service) PathExists(ctx context.Context, kind DataKind, path string) (bool, error) {
	return s.cache.PathExists(ctx, cloudcache.DataKind(kind), path)
}

// Timeline aggregates per-timestamp cloud coverage under the filter.
func (s *Service) Timeline(ctx context.Context, filter synctypes.HierarchyFilter) (synctypes.TimelineData, error) {
	return s.cache.Timeline(ctx, filter)
}

// CacheInfo describes the current cloud cache state without triggering
// a refresh.
func (s *Service) CacheInfo() synctypes.CacheInfo {
	return s.cache.Info()
}

// MarkCacheStale flags the cloud cache for refresh on the next query.
func (s *Service) MarkCacheStale(reason string) {
	s.cache.MarkStale(reason)
	s.inventory.Refresh()
}

// ExportIDs returns the sorted identifiers of all recorded exports.
func (s *Service) ExportIDs() ([]string, error) {
	return s.scanner.ExportIDs()
}

// Export returns one export's metadata and whether it exists.
func (s *Service) Export(id string) (synctypes.ExportInfo, bool, error) {
	return s.scanner.ExportInfo(id)
}
