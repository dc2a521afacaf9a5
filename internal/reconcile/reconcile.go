// Package reconcile combines cloud and local state across the whole
// tree into a single sync-status view used by operators to decide what
// needs syncing.
package reconcile

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/nbarbarousis/fieldsync/internal/cloudcache"
	"github.com/nbarbarousis/fieldsync/internal/localstate"
	"github.com/nbarbarousis/fieldsync/paths"
	"github.com/nbarbarousis/fieldsync/synctypes"
)

// Builder produces the inventory in one pass over the four bulk
// discovery calls and caches the result until explicitly refreshed.
type Builder struct {
	cache      *cloudcache.Cache
	scanner    *localstate.Scanner
	translator *paths.Translator
	logger     *log.Logger

	mu    sync.Mutex
	items []synctypes.InventoryItem
	built bool
}

// NewBuilder creates a Builder. A nil logger falls back to the default
// logger.
func NewBuilder(
	cache *cloudcache.Cache,
	scanner *localstate.Scanner,
	translator *paths.Translator,
	logger *log.Logger,
) *Builder {
	if logger == nil {
		logger = log.Default()
	}
	return &Builder{
		cache:      cache,
		scanner:    scanner,
		translator: translator,
		logger:     logger.With("component", "reconcile"),
	}
}

// Build returns the inventory, computing it on first use. Callers get
// the cached result until Refresh is called.
func (b *Builder) Build(ctx context.Context) ([]synctypes.InventoryItem, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.built {
		return b.items, nil
	}

	cloudRaw, err := b.cache.AllRawStatuses(ctx)
	if err != nil {
		return nil, err
	}
	cloudML, err := b.cache.AllMLStatuses(ctx)
	if err != nil {
		return nil, err
	}
	localRaw := b.scanner.AllRawStatuses()
	localML := b.scanner.AllMLStatuses()

	coords := make(map[synctypes.Coordinate]struct{})
	for c := range cloudRaw {
		coords[c] = struct{}{}
	}
	for c := range cloudML {
		coords[c] = struct{}{}
	}
	for c := range localRaw {
		coords[c] = struct{}{}
	}
	for c := range localML {
		coords[c] = struct{}{}
	}

	items := make([]synctypes.InventoryItem, 0, len(coords))
	for coord := range coords {
		item := synctypes.InventoryItem{
			Coordinate: coord,
			CloudRaw:   cloudRaw[coord],
			LocalRaw:   localRaw[coord],
			CloudML:    cloudML[coord],
			LocalML:    localML[coord],
		}
		item.RawSyncStatus, item.RawIssues = b.rawVerdict(item.CloudRaw, item.LocalRaw)
		item.MLSyncStatus, item.MLIssues = b.mlVerdict(item.CloudML, item.LocalML)
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Coordinate.String() < items[j].Coordinate.String()
	})

	b.items = items
	b.built = true
	b.logger.Info("inventory built", "coordinates", len(items))
	return items, nil
}

// Refresh drops the cached inventory so the next Build recomputes it.
func (b *Builder) Refresh() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.built = false
	b.items = nil
}

// rawVerdict decides the raw sync status for one coordinate.
func (b *Builder) rawVerdict(
	cloud synctypes.CloudRawStatus,
	local synctypes.LocalRawStatus,
) (synctypes.SyncStatus, []string) {
	switch {
	case !cloud.Exists && !local.Downloaded:
		return synctypes.SyncStatusMissing, nil
	case cloud.Exists && !local.Downloaded:
		return synctypes.SyncStatusCloudOnly, []string{"Not downloaded locally"}
	case !cloud.Exists && local.Downloaded:
		return synctypes.SyncStatusLocalOnly, []string{"Not available in cloud"}
	}

	var issues []string
	if cloud.BagCount != local.BagCount {
		issues = append(issues, fmt.Sprintf("Bag count mismatch: cloud=%d, local=%d", cloud.BagCount, local.BagCount))
	}
	if cloud.TotalSize != local.TotalSize {
		issues = append(issues, fmt.Sprintf("Size mismatch: cloud=%d, local=%d", cloud.TotalSize, local.TotalSize))
	}
	if len(issues) == 0 {
		for _, cloudName := range cloud.BagNames {
			localName := b.translator.CloudToLocal(cloudName)
			localSize, ok := local.BagSizes[localName]
			if !ok {
				issues = append(issues, fmt.Sprintf("Bag missing locally: %s", cloudName))
				continue
			}
			if localSize != cloud.BagSizes[cloudName] {
				issues = append(issues, fmt.Sprintf("Size mismatch for bag %s: cloud=%d, local=%d",
					cloudName, cloud.BagSizes[cloudName], localSize))
			}
		}
	}

	if len(issues) > 0 {
		return synctypes.SyncStatusMismatch, issues
	}
	return synctypes.SyncStatusSynced, nil
}

// mlVerdict decides the ML sync status for one coordinate. Deep
// equality covers sample counts and per-bag file-name/size sets after
// name translation.
func (b *Builder) mlVerdict(
	cloud synctypes.CloudMLStatus,
	local synctypes.LocalMLStatus,
) (synctypes.SyncStatus, []string) {
	switch {
	case !cloud.Exists && !local.Downloaded:
		return synctypes.SyncStatusMissing, nil
	case cloud.Exists && !local.Downloaded:
		return synctypes.SyncStatusCloudOnly, []string{"Not downloaded locally"}
	case !cloud.Exists && local.Downloaded:
		return synctypes.SyncStatusLocalOnly, []string{"Not uploaded to cloud"}
	}

	var issues []string
	if cloud.TotalSamples != local.TotalSamples {
		issues = append(issues,
			fmt.Sprintf("Sample count mismatch: cloud=%d, local=%d", cloud.TotalSamples, local.TotalSamples))
	}

	if len(issues) == 0 {
		if len(cloud.BagFiles) != len(local.BagFiles) {
			issues = append(issues,
				fmt.Sprintf("Bag count mismatch: cloud=%d, local=%d", len(cloud.BagFiles), len(local.BagFiles)))
		} else {
			for cloudBag, cloudFiles := range cloud.BagFiles {
				localBag := b.translator.CloudToLocal(cloudBag)
				localFiles, ok := local.BagFiles[localBag]
				if !ok {
					issues = append(issues, fmt.Sprintf("Bag missing locally: %s", cloudBag))
					continue
				}
				if issue := compareBagFiles(cloudBag, cloudFiles, localFiles); issue != "" {
					issues = append(issues, issue)
				}
			}
		}
	}

	if len(issues) > 0 {
		return synctypes.SyncStatusMismatch, issues
	}
	return synctypes.SyncStatusSynced, nil
}

// compareBagFiles checks one bag's per-type file listings for name and
// size equality. Filenames are identical across conventions; only the
// bag directory name differs.
func compareBagFiles(bag string, cloud, local synctypes.BagFiles) string {
	for _, ft := range synctypes.AllFileTypes {
		cloudListing := cloud[ft]
		localListing := local[ft]
		if len(cloudListing) != len(localListing) {
			return fmt.Sprintf("File count mismatch for bag %s/%s: cloud=%d, local=%d",
				bag, ft, len(cloudListing), len(localListing))
		}
		for name, cloudSize := range cloudListing {
			localSize, ok := localListing[name]
			if !ok {
				return fmt.Sprintf("File missing locally for bag %s/%s: %s", bag, ft, name)
			}
			if localSize != cloudSize {
				return fmt.Sprintf("Size mismatch for bag %s/%s/%s: cloud=%d, local=%d",
					bag, ft, name, cloudSize, localSize)
			}
		}
	}
	return ""
}

// Filter narrows a built inventory by a hierarchy prefix without
// rebuilding it.
func Filter(items []synctypes.InventoryItem, filter synctypes.HierarchyFilter) []synctypes.InventoryItem {
	out := make([]synctypes.InventoryItem, 0, len(items))
	for _, item := range items {
		if filter.Matches(item.Coordinate) {
			out = append(out, item)
		}
	}
	return out
}

// Metrics sums the simple cloud/local totals over an inventory slice.
func Metrics(items []synctypes.InventoryItem) synctypes.InventoryMetrics {
	var m synctypes.InventoryMetrics
	for _, item := range items {
		m.CloudBags += item.CloudRaw.BagCount
		m.LocalBags += item.LocalRaw.BagCount
		m.CloudSamples += item.CloudML.TotalSamples
		m.LocalSamples += item.LocalML.TotalSamples
	}
	return m
}
