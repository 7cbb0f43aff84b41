// Package minio stores raw HTML snapshots of crawled pages in an
// S3-compatible object store, keyed by page id. Snapshots let operators
// inspect what a page looked like when its embedding was computed.
package minio

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/lifecycle"

	"github.com/searchlens/gapintel/internal/config"
	"github.com/searchlens/gapintel/internal/infrastructure/monitoring/logging"
	"github.com/searchlens/gapintel/pkg/errors"
)

// API is the subset of the minio SDK the snapshot store uses.
type API interface {
	ListBuckets(ctx context.Context) ([]minio.BucketInfo, error)
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	SetBucketLifecycle(ctx context.Context, bucketName string, config *lifecycle.Configuration) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (*minio.Object, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expiry time.Duration, reqParams url.Values) (*url.URL, error)
}

// ClientConfig holds connection and bucket parameters.
type ClientConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	UseSSL        bool
	Region        string
	Bucket        string
	RetentionDays int
	PresignExpiry time.Duration
}

// ClientFromConfig maps the application object-storage section onto a
// ClientConfig.
func ClientFromConfig(cfg config.MinIOConfig) ClientConfig {
	return ClientConfig{
		Endpoint:      cfg.Endpoint,
		AccessKey:     cfg.AccessKey,
		SecretKey:     cfg.SecretKey,
		UseSSL:        cfg.UseSSL,
		Bucket:        cfg.Bucket,
		PresignExpiry: cfg.PresignExpiry,
	}
}

var ErrConnectionFailed = errors.New(errors.ErrCodeServiceUnavailable, "object storage unreachable")

// Client wraps the minio SDK with bucket provisioning for the snapshot
// bucket.
type Client struct {
	api    API
	config ClientConfig
	logger logging.Logger
	mu     sync.Mutex
	closed bool
}

func NewClient(cfg ClientConfig, logger logging.Logger) (*Client, error) {
	applyClientDefaults(&cfg)
	if cfg.Endpoint == "" {
		return nil, errors.New(errors.ErrCodeValidation, "endpoint is required")
	}

	api, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to create object storage client")
	}

	c := &Client{api: api, config: cfg, logger: logger}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := api.ListBuckets(ctx); err != nil {
		return nil, ErrConnectionFailed
	}
	if err := c.ensureBucket(ctx); err != nil {
		return nil, err
	}
	c.setupLifecycle(ctx)

	logger.Info("object storage connected",
		logging.String("endpoint", cfg.Endpoint),
		logging.String("bucket", cfg.Bucket))
	return c, nil
}

func applyClientDefaults(cfg *ClientConfig) {
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	if cfg.Bucket == "" {
		cfg.Bucket = "gapintel-snapshots"
	}
	if cfg.RetentionDays == 0 {
		cfg.RetentionDays = 90
	}
	if cfg.PresignExpiry == 0 {
		cfg.PresignExpiry = time.Hour
	}
}

func (c *Client) ensureBucket(ctx context.Context) error {
	exists, err := c.api.BucketExists(ctx, c.config.Bucket)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to check bucket existence")
	}
	if exists {
		return nil
	}
	if err := c.api.MakeBucket(ctx, c.config.Bucket, minio.MakeBucketOptions{Region: c.config.Region}); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, fmt.Sprintf("failed to create bucket %s", c.config.Bucket))
	}
	c.logger.Info("created bucket", logging.String("bucket", c.config.Bucket))
	return nil
}

// setupLifecycle expires snapshots past the retention window.  Lifecycle
// support varies across S3 implementations so a failure only logs.
func (c *Client) setupLifecycle(ctx context.Context) {
	lc := lifecycle.NewConfiguration()
	lc.Rules = []lifecycle.Rule{{
		ID:     "snapshot-retention",
		Status: "Enabled",
		Expiration: lifecycle.Expiration{
			Days: lifecycle.ExpirationDays(c.config.RetentionDays),
		},
	}}
	if err := c.api.SetBucketLifecycle(ctx, c.config.Bucket, lc); err != nil {
		c.logger.Warn("failed to set snapshot retention", logging.Err(err))
	}
}

// Bucket returns the snapshot bucket name.
func (c *Client) Bucket() string {
	return c.config.Bucket
}

// HealthCheck verifies the endpoint responds and the bucket exists.
func (c *Client) HealthCheck(ctx context.Context) error {
	exists, err := c.api.BucketExists(ctx, c.config.Bucket)
	if err != nil {
		return ErrConnectionFailed
	}
	if !exists {
		return errors.New(errors.ErrCodeServiceUnavailable,
			fmt.Sprintf("bucket %s missing", c.config.Bucket))
	}
	return nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}
