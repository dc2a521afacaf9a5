package transfer

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nbarbarousis/fieldsync/errors"
	"github.com/nbarbarousis/fieldsync/internal/testutil"
)

func newBackend(store *testutil.FakeStore, memFS *billy.FS) *Backend {
	return &Backend{
		S3:        store.Client(),
		FS:        memFS,
		RawBucket: rawBucket,
		MLBucket:  mlBucket,
		Logger:    log.Default(),
	}
}

func TestBackend_DownloadMissingObject(t *testing.T) {
	store := testutil.NewFakeStore()
	memFS := billy.NewInMemoryFS()
	backend := newBackend(store, memFS)

	_, err := backend.downloadObject(context.Background(),
		rawBucket, "nowhere/rosbag/_x.bag", "/data/raw/_x.bag", 10)

	require.Error(t, err)
	assert.True(t, errors.IsObjectNotFound(err))
	assert.Contains(t, err.Error(), "nowhere/rosbag/_x.bag")
}

func TestBackend_UploadAccessDenied(t *testing.T) {
	store := testutil.NewFakeStore()
	memFS := billy.NewInMemoryFS()
	backend := newBackend(store, memFS)

	local := "/data/ml/frame_0001.png"
	require.NoError(t, memFS.MkdirAll("/data/ml", 0o755))
	require.NoError(t, memFS.WriteFile(local, make([]byte, 64), 0o644))
	store.PutErr["k/frame_0001.png"] = stderrors.New("AccessDenied: robot-ml")

	_, err := backend.uploadObject(context.Background(), local, mlBucket, "k/frame_0001.png", 64)

	require.Error(t, err)
	assert.True(t, errors.IsAccessDenied(err))
}

func TestBackend_UploadSizeVerification(t *testing.T) {
	store := testutil.NewFakeStore()
	memFS := billy.NewInMemoryFS()
	backend := newBackend(store, memFS)

	local := "/data/ml/frame_0001.png"
	require.NoError(t, memFS.MkdirAll("/data/ml", 0o755))
	require.NoError(t, memFS.WriteFile(local, make([]byte, 64), 0o644))

	// The listing promised more bytes than the local file holds, so the
	// post-upload head check must reject the stored object.
	_, err := backend.uploadObject(context.Background(), local, mlBucket, "k/frame_0001.png", 99)

	require.Error(t, err)
	assert.True(t, errors.IsSizeMismatch(err))
	assert.Contains(t, err.Error(), "stored 64 bytes, expected 99")
}
