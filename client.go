// Package fieldsync provides client initialization and configuration.
//
// The Client owns the AWS plumbing (credentials, endpoint, retries) and
// the filesystem abstraction; the Service built on top of it exposes the
// synchronization operations.
package fieldsync

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/charmbracelet/log"
	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"

	"github.com/nbarbarousis/fieldsync/errors"
	"github.com/nbarbarousis/fieldsync/internal/s3api"
	"github.com/nbarbarousis/fieldsync/internal/transfer"
	"github.com/nbarbarousis/fieldsync/synctypes"
)

// Client holds the configured storage handles shared by all services.
// It is safe for concurrent use.
type Client struct {
	// s3Client is the underlying AWS SDK S3 client
	s3Client s3api.S3API

	// uploader is the multipart upload manager; nil when the client was
	// built around a custom S3API implementation
	uploader *manager.Uploader

	// config holds the AWS configuration
	config aws.Config

	// cfg holds the resolved client configuration
	cfg *synctypes.ClientConfig

	// mu protects concurrent access to client configuration
	mu sync.RWMutex

	// fs is the filesystem abstraction for local file operations
	fs fs.Filesystem

	// logger is the root logger; services derive component loggers from it
	logger *log.Logger
}

// New creates a new client with the provided options. AWS credentials
// come from the default credential chain unless static credentials or a
// custom AWS config are given. Bucket names are required.
//
// Example:
//
//	client, err := fieldsync.New(
//	    fieldsync.WithRegion("eu-central-1"),
//	    fieldsync.WithBuckets("robot-raw", "robot-ml"),
//	)
func New(opts ...synctypes.Option) (*Client, error) {
	clientCfg := defaultConfig()
	for _, opt := range opts {
		opt(clientCfg)
	}

	if clientCfg.RawBucket == "" || clientCfg.MLBucket == "" {
		return nil, errors.NewError("client initialization",
			fmt.Errorf("%w: raw and ml bucket names are required", errors.ErrInvalidInput))
	}

	var cfg aws.Config
	var err error

	if clientCfg.CustomAWSConfig != nil {
		cfg = *clientCfg.CustomAWSConfig
	} else {
		var loadOpts []func(*config.LoadOptions) error
		if clientCfg.AccessKeyID != "" {
			loadOpts = append(loadOpts, config.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(clientCfg.AccessKeyID, clientCfg.SecretAccessKey, "")))
		}
		cfg, err = config.LoadDefaultConfig(context.Background(), loadOpts...)
		if err != nil {
			return nil, errors.NewError("client initialization", err)
		}
	}

	if clientCfg.Region != "" {
		cfg.Region = clientCfg.Region
	} else if cfg.Region == "" {
		cfg.Region = "us-east-1" // AWS default region
	}

	if clientCfg.MaxRetries > 0 {
		cfg.RetryMaxAttempts = clientCfg.MaxRetries
	}

	var s3Opts []func(*s3.Options)

	if clientCfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(clientCfg.Endpoint)
		})
	}

	if clientCfg.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	if clientCfg.Timeout > 0 {
		httpClient := &http.Client{
			Timeout: clientCfg.Timeout,
		}
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.HTTPClient = httpClient
		})
	}

	s3Client := s3.NewFromConfig(cfg, s3Opts...)

	uploader := manager.NewUploader(s3Client, func(u *manager.Uploader) {
		if clientCfg.PartSize > 0 {
			u.PartSize = clientCfg.PartSize
		}
	})

	var filesystem fs.Filesystem
	if clientCfg.Filesystem != nil {
		filesystem = clientCfg.Filesystem
	} else {
		filesystem = billy.NewOSFS("/")
	}

	logger := clientCfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Client{
		s3Client: s3Client,
		uploader: uploader,
		config:   cfg,
		cfg:      clientCfg,
		fs:       filesystem,
		logger:   logger,
	}, nil
}

// NewWithClient creates a client around a custom S3API implementation.
// This is primarily used for testing with mocked or faked clients.
// Uploads never go through the multipart manager on such a client.
func NewWithClient(s3Client s3api.S3API, opts ...synctypes.Option) *Client {
	clientCfg := defaultConfig()
	for _, opt := range opts {
		opt(clientCfg)
	}

	filesystem := clientCfg.Filesystem
	if filesystem == nil {
		filesystem = billy.NewOSFS("/")
	}
	logger := clientCfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Client{
		s3Client: s3Client,
		config:   aws.Config{},
		cfg:      clientCfg,
		fs:       filesystem,
		logger:   logger,
	}
}

// defaultConfig returns the configuration New starts from before options
// are applied.
func defaultConfig() *synctypes.ClientConfig {
	return &synctypes.ClientConfig{
		MaxRetries:         3,
		Timeout:            0,
		PartSize:           8 * 1024 * 1024,
		MultipartThreshold: transfer.DefaultMultipartThreshold,
		ForcePathStyle:     false,
		RawRoot:            "data/raw",
		MLRoot:             "data/ml",
		ProcessedRoot:      "data/processed",
		CacheFile:          "data/cloud_cache.json",
	}
}

// SetFilesystem sets the filesystem implementation for the client.
// This is useful for testing or when the filesystem needs to be changed
// after creation. Services built before the call keep the old one.
func (c *Client) SetFilesystem(filesystem fs.Filesystem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fs = filesystem
}

// Close releases any resources held by the client.
// Currently a no-op but included for future extensibility.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return nil
}
