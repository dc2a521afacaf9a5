package fieldsync

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nbarbarousis/fieldsync/internal/testutil"
	"github.com/nbarbarousis/fieldsync/paths"
	"github.com/nbarbarousis/fieldsync/synctypes"
)

func serviceCoord() synctypes.Coordinate {
	return synctypes.Coordinate{
		ClientID:     "acme",
		RegionID:     "emea",
		FieldID:      "field-7",
		TimeWindowID: "2025-w33",
		BoxID:        "lb-042",
		Timestamp:    "2025-08-12-08-54-00",
	}
}

func newService(t *testing.T) (*Service, *testutil.FakeStore, *billy.FS, *paths.Builder) {
	t.Helper()
	store := testutil.NewFakeStore()
	memFS := billy.NewInMemoryFS()
	client := NewWithClient(store.Client(),
		WithFilesystem(memFS),
		WithBuckets("robot-raw", "robot-ml"),
		WithLocalRoots("/data/raw", "/data/ml", "/data/processed"),
		WithCacheFile("/state/cache.json"),
	)
	builder := paths.NewBuilder("/data/raw", "/data/ml", "/data/processed")
	return client.Service(), store, memFS, builder
}

func TestService_DownloadRoundTrip(t *testing.T) {
	svc, store, memFS, builder := newService(t)
	coord := serviceCoord()
	ctx := context.Background()

	store.PutBytes("robot-raw", coord.String()+"/rosbag/_2025-08-12-08-00-00_0.bag", 500)

	items, metrics, err := svc.Inventory(ctx, synctypes.HierarchyFilter{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, synctypes.SyncStatusCloudOnly, items[0].RawSyncStatus)
	assert.Equal(t, 1, metrics.CloudBags)
	assert.Equal(t, 0, metrics.LocalBags)

	job := svc.CreateJob(coord, synctypes.OpRawDownload,
		synctypes.SelectionCriteria{All: true}, synctypes.PolicySkip)
	assert.NotEmpty(t, job.ID)
	assert.True(t, job.DryRun)
	assert.False(t, job.CreatedAt.IsZero())

	planned := svc.Plan(ctx, job)
	require.True(t, planned.Success)
	assert.Equal(t, 1, planned.Plan.TotalFiles)
	assert.Equal(t, int64(500), planned.Plan.TotalSize)
	assert.Nil(t, planned.Summary)

	result := svc.Execute(ctx, job)
	require.True(t, result.Success)
	require.NotNil(t, result.Summary)
	assert.Equal(t, 1, result.Summary.Successful)

	info, err := memFS.Stat(builder.LocalRawFile(coord, "rosbag_2025-08-12-08-00-00_0.bag"))
	require.NoError(t, err)
	assert.Equal(t, int64(500), info.Size())

	// A fresh inventory sees the download: local scanning is live and
	// Execute dropped the cached reconciliation.
	items, metrics, err = svc.Inventory(ctx, synctypes.HierarchyFilter{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, synctypes.SyncStatusSynced, items[0].RawSyncStatus)
	assert.Equal(t, 1, metrics.LocalBags)
}

func TestService_HierarchyAndTimeline(t *testing.T) {
	svc, store, _, _ := newService(t)
	coord := serviceCoord()
	ctx := context.Background()

	store.PutBytes("robot-raw", coord.String()+"/rosbag/_2025-08-12-08-00-00_0.bag", 500)
	store.PutBytes("robot-ml",
		"raw/"+coord.String()+"/rosbag/_2025-08-12-08-00-00_0/labels/000001.json", 20)

	clients, err := svc.HierarchyLevel(ctx, KindRaw, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"acme"}, clients)

	regions, err := svc.HierarchyLevel(ctx, KindRaw, "acme")
	require.NoError(t, err)
	assert.Equal(t, []string{"emea"}, regions)

	exists, err := svc.PathExists(ctx, KindML, "acme/emea")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = svc.PathExists(ctx, KindRaw, "globex")
	require.NoError(t, err)
	assert.False(t, exists)

	timeline, err := svc.Timeline(ctx, synctypes.HierarchyFilter{ClientID: "acme"})
	require.NoError(t, err)
	require.Len(t, timeline.Points, 1)
	assert.Equal(t, coord.Timestamp, timeline.Points[0].Timestamp)
	assert.Equal(t, 1, timeline.Points[0].BagCount)
	assert.Equal(t, 1, timeline.Points[0].SampleCount)
}

func TestService_CacheLifecycle(t *testing.T) {
	svc, store, _, _ := newService(t)
	coord := serviceCoord()
	ctx := context.Background()

	store.PutBytes("robot-raw", coord.String()+"/rosbag/_2025-08-12-08-00-00_0.bag", 500)

	_, _, err := svc.Inventory(ctx, synctypes.HierarchyFilter{})
	require.NoError(t, err)

	info := svc.CacheInfo()
	assert.True(t, info.Exists)
	assert.False(t, info.Stale)
	assert.Equal(t, 1, info.Coordinates)
	assert.Equal(t, "/state/cache.json", info.Path)

	svc.MarkCacheStale("manual invalidation")
	info = svc.CacheInfo()
	assert.True(t, info.Stale)
	assert.Equal(t, "manual invalidation", info.StaleReason)

	// New cloud data is picked up after a forced refresh.
	store.PutBytes("robot-raw", coord.String()+"/rosbag/_2025-08-12-08-05-00_1.bag", 700)
	require.NoError(t, svc.RefreshInventory(ctx))

	status, err := svc.CloudRawStatus(ctx, coord)
	require.NoError(t, err)
	assert.Equal(t, 2, status.BagCount)
	assert.False(t, svc.CacheInfo().Stale)
}

func TestService_LocalStatuses(t *testing.T) {
	svc, _, memFS, builder := newService(t)
	coord := serviceCoord()

	path := builder.LocalRawFile(coord, "rosbag_2025-08-12-08-00-00_0.bag")
	require.NoError(t, memFS.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, memFS.WriteFile(path, make([]byte, 500), 0o644))

	raw := svc.LocalRawStatus(coord)
	assert.True(t, raw.Downloaded)
	assert.Equal(t, 1, raw.BagCount)

	ml := svc.LocalMLStatus(coord)
	assert.False(t, ml.Downloaded)
}

func TestService_Exports(t *testing.T) {
	svc, _, memFS, builder := newService(t)

	ids, err := svc.ExportIDs()
	require.NoError(t, err)
	assert.Empty(t, ids)

	sidecar := builder.ExportTrackingPath()
	require.NoError(t, memFS.MkdirAll(filepath.Dir(sidecar), 0o755))
	require.NoError(t, memFS.WriteFile(sidecar, []byte(`{
		"exports": {
			"export-2025-08-20": {
				"created_at": "2025-08-20T10:00:00Z",
				"sample_count": 42,
				"coordinates": ["acme/emea/field-7/2025-w33/lb-042/2025-08-12-08-54-00"]
			}
		}
	}`), 0o644))

	ids, err = svc.ExportIDs()
	require.NoError(t, err)
	assert.Equal(t, []string{"export-2025-08-20"}, ids)

	info, ok, err := svc.Export("export-2025-08-20")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "export-2025-08-20", info.ID)
	assert.Equal(t, 42, info.SampleCount)

	_, ok, err = svc.Export("missing")
	require.NoError(t, err)
	assert.False(t, ok)
}
