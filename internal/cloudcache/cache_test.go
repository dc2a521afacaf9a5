package cloudcache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nbarbarousis/fieldsync/internal/testutil"
	"github.com/nbarbarousis/fieldsync/synctypes"
)

const (
	rawBucket = "robot-raw"
	mlBucket  = "robot-ml"
	cachePath = "/cache/inventory.json"
)

func coordA() synctypes.Coordinate {
	return synctypes.Coordinate{
		ClientID:     "acme",
		RegionID:     "emea",
		FieldID:      "field-7",
		TimeWindowID: "2025-w33",
		BoxID:        "lb-042",
		Timestamp:    "2025-08-12-08-54-00",
	}
}

func coordB() synctypes.Coordinate {
	c := coordA()
	c.Timestamp = "2025-08-13-10-00-00"
	return c
}

// seedStore populates a fake store with two raw bags for coordA, one
// for coordB, and one ML bag with two samples for coordA.
func seedStore() *testutil.FakeStore {
	store := testutil.NewFakeStore()
	a, b := coordA().String(), coordB().String()

	store.PutBytes(rawBucket, a+"/rosbag/_2025-08-12-08-54-21_0.bag", 500)
	store.PutBytes(rawBucket, a+"/rosbag/_2025-08-12-08-59-21_1.bag", 700)
	store.PutBytes(rawBucket, b+"/rosbag/_2025-08-13-10-00-21_0.bag", 300)
	// Noise that does not follow the bag convention.
	store.PutBytes(rawBucket, "manifest.txt", 10)

	bag := "_2025-08-12-08-54-21_0"
	store.PutBytes(mlBucket, "raw/"+a+"/rosbag/"+bag+"/frames/000001.png", 100)
	store.PutBytes(mlBucket, "raw/"+a+"/rosbag/"+bag+"/frames/000002.png", 110)
	store.PutBytes(mlBucket, "raw/"+a+"/rosbag/"+bag+"/labels/000001.json", 20)
	store.PutBytes(mlBucket, "raw/"+a+"/rosbag/"+bag+"/labels/000002.json", 25)
	return store
}

func newTestCache(t *testing.T, store *testutil.FakeStore) (*Cache, *billy.FS) {
	t.Helper()
	memFS := billy.NewInMemoryFS()
	return New(store.Client(), memFS, rawBucket, mlBucket, cachePath, nil), memFS
}

func TestCache_RefreshBuildsSnapshot(t *testing.T) {
	store := seedStore()
	cache, _ := newTestCache(t, store)

	snap, err := cache.FullInventory(context.Background(), false)
	require.NoError(t, err)

	status := snap.RawStatus(coordA())
	assert.True(t, status.Exists)
	assert.Equal(t, 2, status.BagCount)
	assert.Equal(t, []string{"_2025-08-12-08-54-21_0.bag", "_2025-08-12-08-59-21_1.bag"}, status.BagNames)
	assert.Equal(t, int64(1200), status.TotalSize)

	ml := snap.MLStatus(coordA())
	assert.True(t, ml.Exists)
	assert.Equal(t, 2, ml.TotalSamples)
	assert.Equal(t, 2, ml.BagSamples["_2025-08-12-08-54-21_0"].FrameCount)
	assert.Equal(t, 2, ml.BagSamples["_2025-08-12-08-54-21_0"].LabelCount)

	// Absent coordinate yields a zero status, not an error.
	missing := coordA()
	missing.Timestamp = "2099-01-01-00-00-00"
	assert.False(t, snap.RawStatus(missing).Exists)
	assert.False(t, snap.MLStatus(missing).Exists)
}

func TestCache_PaginatedListing(t *testing.T) {
	store := seedStore()
	store.PageSize = 2
	cache, _ := newTestCache(t, store)

	snap, err := cache.FullInventory(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.RawStatus(coordA()).BagCount)
	assert.Equal(t, 1, snap.RawStatus(coordB()).BagCount)
}

func TestCache_LazyRefresh(t *testing.T) {
	store := seedStore()
	client := store.Client()

	var listings int
	inner := client.ListObjectsV2Func
	client.ListObjectsV2Func = func(ctx context.Context, in *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
		listings++
		return inner(ctx, in, opts...)
	}

	memFS := billy.NewInMemoryFS()
	cache := New(client, memFS, rawBucket, mlBucket, cachePath, nil)
	ctx := context.Background()

	_, err := cache.FullInventory(ctx, false)
	require.NoError(t, err)
	after := listings
	require.Positive(t, after)

	// Cached queries do not touch the network.
	_, err = cache.FullInventory(ctx, false)
	require.NoError(t, err)
	_, err = cache.RawStatus(ctx, coordA())
	require.NoError(t, err)
	assert.Equal(t, after, listings)

	// Staleness is lazy: marking does not rescan, the next query does.
	cache.MarkStale("upload completed")
	cache.MarkStale("upload completed")
	assert.Equal(t, after, listings)

	_, err = cache.FullInventory(ctx, false)
	require.NoError(t, err)
	assert.Greater(t, listings, after)

	info := cache.Info()
	assert.False(t, info.Stale)
}

func TestCache_BucketFailureIsolated(t *testing.T) {
	store := seedStore()
	store.ListErr[mlBucket] = errors.New("access denied")
	cache, _ := newTestCache(t, store)

	snap, err := cache.FullInventory(context.Background(), false)
	require.NoError(t, err)

	// Raw side scanned normally, ML side degraded to empty.
	assert.True(t, snap.RawStatus(coordA()).Exists)
	assert.Empty(t, snap.ML)
}

func TestCache_PersistAndReload(t *testing.T) {
	store := seedStore()
	cache, memFS := newTestCache(t, store)

	_, err := cache.FullInventory(context.Background(), false)
	require.NoError(t, err)

	exists, err := memFS.Exists(cachePath)
	require.NoError(t, err)
	require.True(t, exists)

	// A second cache over the same file serves queries without scanning.
	var listings int
	counting := &testutil.MockS3Client{
		ListObjectsV2Func: func(ctx context.Context, in *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
			listings++
			return &s3.ListObjectsV2Output{}, nil
		},
	}
	reloaded := New(counting, memFS, rawBucket, mlBucket, cachePath, nil)

	info := reloaded.Info()
	assert.True(t, info.Exists)
	assert.Equal(t, 2, info.Coordinates)
	assert.WithinDuration(t, time.Now(), info.LastUpdated, time.Minute)

	snap, err := reloaded.FullInventory(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, int64(1200), snap.RawStatus(coordA()).TotalSize)
	assert.Zero(t, listings)
}

func TestCache_BadCacheFilesIgnored(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "corrupt json",
			content: "{not json",
		},
		{
			name:    "version mismatch",
			content: `{"metadata":{"last_updated":"2025-08-12T00:00:00Z","cache_version":"0.9","bucket_names":["robot-raw","robot-ml"]},"snapshot":{"raw":{},"ml":{}}}`,
		},
		{
			name:    "bucket mismatch",
			content: `{"metadata":{"last_updated":"2025-08-12T00:00:00Z","cache_version":"1.0","bucket_names":["other-raw","other-ml"]},"snapshot":{"raw":{},"ml":{}}}`,
		},
		{
			name:    "missing snapshot",
			content: `{"metadata":{"last_updated":"2025-08-12T00:00:00Z","cache_version":"1.0","bucket_names":["robot-raw","robot-ml"]}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			memFS := billy.NewInMemoryFS()
			require.NoError(t, memFS.MkdirAll("/cache", 0o755))
			require.NoError(t, memFS.WriteFile(cachePath, []byte(tt.content), 0o644))

			cache := New(seedStore().Client(), memFS, rawBucket, mlBucket, cachePath, nil)
			assert.False(t, cache.Info().Exists)

			// The bad file still triggers a clean rescan.
			snap, err := cache.FullInventory(context.Background(), false)
			require.NoError(t, err)
			assert.True(t, snap.RawStatus(coordA()).Exists)
		})
	}
}

func TestCache_ForceRefresh(t *testing.T) {
	store := seedStore()
	cache, _ := newTestCache(t, store)
	ctx := context.Background()

	_, err := cache.FullInventory(ctx, false)
	require.NoError(t, err)

	// New data appears only after a forced refresh.
	store.PutBytes(rawBucket, coordB().String()+"/rosbag/_2025-08-13-10-05-21_1.bag", 400)

	snap, err := cache.FullInventory(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.RawStatus(coordB()).BagCount)

	snap, err = cache.FullInventory(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.RawStatus(coordB()).BagCount)
}

func TestSnapshot_HierarchyQueries(t *testing.T) {
	store := seedStore()
	cache, _ := newTestCache(t, store)
	ctx := context.Background()

	level, err := cache.HierarchyLevel(ctx, KindRaw, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"acme"}, level)

	level, err = cache.HierarchyLevel(ctx, KindRaw, "acme/emea/field-7/2025-w33/lb-042")
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-08-12-08-54-00", "2025-08-13-10-00-00"}, level)

	level, err = cache.HierarchyLevel(ctx, KindML, "acme/emea/field-7/2025-w33/lb-042")
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-08-12-08-54-00"}, level)

	level, err = cache.HierarchyLevel(ctx, KindRaw, "nobody")
	require.NoError(t, err)
	assert.Empty(t, level)

	ok, err := cache.PathExists(ctx, KindRaw, "acme/emea")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = cache.PathExists(ctx, KindML, coordB().String())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSnapshot_Timeline(t *testing.T) {
	store := seedStore()
	cache, _ := newTestCache(t, store)

	data, err := cache.Timeline(context.Background(), synctypes.HierarchyFilter{ClientID: "acme"})
	require.NoError(t, err)
	require.Len(t, data.Points, 2)

	assert.Equal(t, "2025-08-12-08-54-00", data.Points[0].Timestamp)
	assert.Equal(t, 2, data.Points[0].BagCount)
	assert.Equal(t, 2, data.Points[0].SampleCount)

	assert.Equal(t, "2025-08-13-10-00-00", data.Points[1].Timestamp)
	assert.Equal(t, 1, data.Points[1].BagCount)
	assert.Equal(t, 0, data.Points[1].SampleCount)

	// A non-matching filter yields no points.
	data, err = cache.Timeline(context.Background(), synctypes.HierarchyFilter{ClientID: "other"})
	require.NoError(t, err)
	assert.Empty(t, data.Points)
}

func TestSnapshot_AllStatuses(t *testing.T) {
	store := seedStore()
	cache, _ := newTestCache(t, store)
	ctx := context.Background()

	raws, err := cache.AllRawStatuses(ctx)
	require.NoError(t, err)
	assert.Len(t, raws, 2)
	assert.Equal(t, int64(1200), raws[coordA()].TotalSize)
	assert.Equal(t, int64(300), raws[coordB()].TotalSize)

	mls, err := cache.AllMLStatuses(ctx)
	require.NoError(t, err)
	assert.Len(t, mls, 1)
	assert.Equal(t, 2, mls[coordA()].TotalSamples)
}
