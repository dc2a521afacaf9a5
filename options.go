// Package fieldsync provides functional options for configuring client behavior.
// These options follow the functional options pattern for clean, composable configuration.
package fieldsync

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/charmbracelet/log"
	"github.com/input-output-hk/catalyst-forge-libs/fs"

	"github.com/nbarbarousis/fieldsync/synctypes"
)

// WithRegion sets the AWS region for S3 operations.
// If not specified, uses the default AWS region from the credential chain.
func WithRegion(region string) synctypes.Option {
	return func(c *synctypes.ClientConfig) {
		c.Region = region
	}
}

// WithEndpoint sets a custom S3 endpoint URL.
// This is useful for S3-compatible services or local testing with MinIO.
func WithEndpoint(endpoint string) synctypes.Option {
	return func(c *synctypes.ClientConfig) {
		c.Endpoint = endpoint
	}
}

// WithStaticCredentials sets static AWS credentials, bypassing the
// default credential chain. Mainly for S3-compatible services.
func WithStaticCredentials(accessKeyID, secretAccessKey string) synctypes.Option {
	return func(c *synctypes.ClientConfig) {
		c.AccessKeyID = accessKeyID
		c.SecretAccessKey = secretAccessKey
	}
}

// WithMaxRetries sets the maximum number of retry attempts for failed operations.
// Default is 3 retries.
func WithMaxRetries(maxRetries int) synctypes.Option {
	return func(c *synctypes.ClientConfig) {
		c.MaxRetries = maxRetries
	}
}

// WithTimeout sets the timeout for individual S3 operations.
// Default is no timeout (0). Values should be positive durations.
func WithTimeout(timeout time.Duration) synctypes.Option {
	return func(c *synctypes.ClientConfig) {
		c.Timeout = timeout
	}
}

// WithForcePathStyle forces the use of path-style URLs instead of virtual-hosted style.
// This is required for S3-compatible services that don't support virtual hosting.
// Default is false (uses virtual-hosted style).
func WithForcePathStyle(forcePathStyle bool) synctypes.Option {
	return func(c *synctypes.ClientConfig) {
		c.ForcePathStyle = forcePathStyle
	}
}

// WithAWSConfig allows providing a custom AWS configuration.
// This overrides the default configuration loading behavior.
// Use this when you need fine-grained control over AWS SDK configuration.
func WithAWSConfig(config *aws.Config) synctypes.Option {
	return func(c *synctypes.ClientConfig) {
		c.CustomAWSConfig = config
	}
}

// WithFilesystem sets a custom filesystem implementation for local file operations.
// This allows using in-memory filesystems for testing or virtual filesystems.
// If not specified, defaults to the OS filesystem.
func WithFilesystem(filesystem fs.Filesystem) synctypes.Option {
	return func(c *synctypes.ClientConfig) {
		c.Filesystem = filesystem
	}
}

// WithLogger sets the root logger. Services derive component loggers
// from it. If not specified, defaults to the package-level logger.
func WithLogger(logger *log.Logger) synctypes.Option {
	return func(c *synctypes.ClientConfig) {
		c.Logger = logger
	}
}

// WithBuckets sets the raw-recording and ML-sample bucket names.
// Both are required; New fails without them.
func WithBuckets(rawBucket, mlBucket string) synctypes.Option {
	return func(c *synctypes.ClientConfig) {
		c.RawBucket = rawBucket
		c.MLBucket = mlBucket
	}
}

// WithLocalRoots sets the local root directories for raw recordings,
// ML samples, and processed outputs. Defaults are data/raw, data/ml,
// and data/processed relative to the filesystem root.
func WithLocalRoots(rawRoot, mlRoot, processedRoot string) synctypes.Option {
	return func(c *synctypes.ClientConfig) {
		c.RawRoot = rawRoot
		c.MLRoot = mlRoot
		c.ProcessedRoot = processedRoot
	}
}

// WithCacheFile sets the cloud inventory cache location.
// Default is data/cloud_cache.json.
func WithCacheFile(path string) synctypes.Option {
	return func(c *synctypes.ClientConfig) {
		c.CacheFile = path
	}
}

// WithMultipartThreshold sets the file size above which uploads go
// through the multipart upload manager. Default is 100MB.
func WithMultipartThreshold(threshold int64) synctypes.Option {
	return func(c *synctypes.ClientConfig) {
		if threshold > 0 {
			c.MultipartThreshold = threshold
		}
	}
}

// WithPartSize sets the part size for multipart uploads.
// Default is 8MB. Must be at least 5MB for S3 multipart uploads.
func WithPartSize(partSize int64) synctypes.Option {
	return func(c *synctypes.ClientConfig) {
		if partSize > 0 {
			c.PartSize = partSize
		}
	}
}
