package synctypes

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/charmbracelet/log"
	"github.com/input-output-hk/catalyst-forge-libs/fs"
)

// ClientConfig holds the configuration assembled by functional options.
type ClientConfig struct {
	// Region is the AWS region for S3 operations
	Region string

	// Endpoint is a custom S3 endpoint URL for S3-compatible services
	Endpoint string

	// AccessKeyID and SecretAccessKey enable static credentials; when
	// empty the default credential chain is used
	AccessKeyID     string
	SecretAccessKey string

	// MaxRetries is the maximum number of SDK retry attempts
	MaxRetries int

	// Timeout is the per-request HTTP timeout (0 means none)
	Timeout time.Duration

	// ForcePathStyle forces path-style URLs for S3-compatible services
	ForcePathStyle bool

	// MultipartThreshold is the file size above which uploads go through
	// the multipart upload manager
	MultipartThreshold int64

	// PartSize is the multipart upload part size
	PartSize int64

	// CustomAWSConfig overrides default AWS configuration loading
	CustomAWSConfig *aws.Config

	// Filesystem overrides the default OS filesystem
	Filesystem fs.Filesystem

	// Logger overrides the default logger
	Logger *log.Logger

	// RawBucket is the bucket holding raw recordings
	RawBucket string

	// MLBucket is the bucket holding ML samples
	MLBucket string

	// RawRoot is the local root directory for raw recordings
	RawRoot string

	// MLRoot is the local root directory for ML samples
	MLRoot string

	// ProcessedRoot is the local root directory for processed outputs
	ProcessedRoot string

	// CacheFile is the cloud inventory cache location
	CacheFile string
}

// Option configures a client.
type Option func(*ClientConfig)
