package fieldsync

import (
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nbarbarousis/fieldsync/errors"
	"github.com/nbarbarousis/fieldsync/internal/testutil"
)

func TestNew_RequiresBuckets(t *testing.T) {
	_, err := New(WithAWSConfig(&aws.Config{}))
	require.Error(t, err)
	assert.True(t, errors.IsInvalidInput(err))
}

func TestNew_WithCustomAWSConfig(t *testing.T) {
	client, err := New(
		WithAWSConfig(&aws.Config{}),
		WithBuckets("robot-raw", "robot-ml"),
	)
	require.NoError(t, err)
	require.NotNil(t, client)
	defer client.Close()

	// Region falls back to the AWS default when neither the option nor
	// the config sets one.
	assert.Equal(t, "us-east-1", client.config.Region)
	assert.NotNil(t, client.uploader)
	assert.Equal(t, "robot-raw", client.cfg.RawBucket)
	assert.Equal(t, "robot-ml", client.cfg.MLBucket)
}

func TestNew_AppliesOptions(t *testing.T) {
	memFS := billy.NewInMemoryFS()
	client, err := New(
		WithAWSConfig(&aws.Config{}),
		WithBuckets("robot-raw", "robot-ml"),
		WithRegion("eu-central-1"),
		WithMaxRetries(5),
		WithTimeout(30*time.Second),
		WithEndpoint("http://localhost:9000"),
		WithForcePathStyle(true),
		WithStaticCredentials("key", "secret"),
		WithFilesystem(memFS),
		WithLocalRoots("/srv/raw", "/srv/ml", "/srv/processed"),
		WithCacheFile("/srv/cache.json"),
		WithMultipartThreshold(64*1024*1024),
		WithPartSize(16*1024*1024),
	)
	require.NoError(t, err)
	defer client.Close()

	assert.Equal(t, "eu-central-1", client.config.Region)
	assert.Equal(t, 5, client.config.RetryMaxAttempts)
	assert.Equal(t, "/srv/raw", client.cfg.RawRoot)
	assert.Equal(t, "/srv/ml", client.cfg.MLRoot)
	assert.Equal(t, "/srv/processed", client.cfg.ProcessedRoot)
	assert.Equal(t, "/srv/cache.json", client.cfg.CacheFile)
	assert.Equal(t, int64(64*1024*1024), client.cfg.MultipartThreshold)
	assert.Equal(t, int64(16*1024*1024), client.cfg.PartSize)
	assert.Same(t, memFS, client.fs)
}

func TestNewWithClient(t *testing.T) {
	store := testutil.NewFakeStore()
	memFS := billy.NewInMemoryFS()

	client := NewWithClient(store.Client(),
		WithFilesystem(memFS),
		WithBuckets("robot-raw", "robot-ml"),
	)
	require.NotNil(t, client)
	assert.Nil(t, client.uploader)
	assert.Same(t, memFS, client.fs)
}

func TestClient_SetFilesystem(t *testing.T) {
	client := NewWithClient(testutil.NewFakeStore().Client(),
		WithBuckets("robot-raw", "robot-ml"))

	memFS := billy.NewInMemoryFS()
	client.SetFilesystem(memFS)
	assert.Same(t, memFS, client.fs)
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, int64(8*1024*1024), cfg.PartSize)
	assert.Equal(t, "data/raw", cfg.RawRoot)
	assert.Equal(t, "data/ml", cfg.MLRoot)
	assert.Equal(t, "data/processed", cfg.ProcessedRoot)
	assert.Equal(t, "data/cloud_cache.json", cfg.CacheFile)
}
