package minio

import (
	"context"
	"io"
	"net/url"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/lifecycle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/searchlens/gapintel/internal/config"
	"github.com/searchlens/gapintel/internal/infrastructure/monitoring/logging"
)

type mockStorageAPI struct {
	listBucketsFn  func(ctx context.Context) ([]minio.BucketInfo, error)
	bucketExistsFn func(ctx context.Context, bucket string) (bool, error)
	makeBucketFn   func(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	setLifecycleFn func(ctx context.Context, bucket string, lc *lifecycle.Configuration) error
	putObjectFn    func(ctx context.Context, bucket, key string, reader io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	getObjectFn    func(ctx context.Context, bucket, key string, opts minio.GetObjectOptions) (*minio.Object, error)
	removeObjectFn func(ctx context.Context, bucket, key string, opts minio.RemoveObjectOptions) error
	statObjectFn   func(ctx context.Context, bucket, key string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	presignedGetFn func(ctx context.Context, bucket, key string, expiry time.Duration, params url.Values) (*url.URL, error)
}

func (m *mockStorageAPI) ListBuckets(ctx context.Context) ([]minio.BucketInfo, error) {
	if m.listBucketsFn != nil {
		return m.listBucketsFn(ctx)
	}
	return nil, nil
}

func (m *mockStorageAPI) BucketExists(ctx context.Context, bucket string) (bool, error) {
	if m.bucketExistsFn != nil {
		return m.bucketExistsFn(ctx, bucket)
	}
	return true, nil
}

func (m *mockStorageAPI) MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error {
	if m.makeBucketFn != nil {
		return m.makeBucketFn(ctx, bucket, opts)
	}
	return nil
}

func (m *mockStorageAPI) SetBucketLifecycle(ctx context.Context, bucket string, lc *lifecycle.Configuration) error {
	if m.setLifecycleFn != nil {
		return m.setLifecycleFn(ctx, bucket, lc)
	}
	return nil
}

func (m *mockStorageAPI) PutObject(ctx context.Context, bucket, key string, reader io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if m.putObjectFn != nil {
		return m.putObjectFn(ctx, bucket, key, reader, size, opts)
	}
	return minio.UploadInfo{Bucket: bucket, Key: key, Size: size}, nil
}

func (m *mockStorageAPI) GetObject(ctx context.Context, bucket, key string, opts minio.GetObjectOptions) (*minio.Object, error) {
	if m.getObjectFn != nil {
		return m.getObjectFn(ctx, bucket, key, opts)
	}
	return nil, nil
}

func (m *mockStorageAPI) RemoveObject(ctx context.Context, bucket, key string, opts minio.RemoveObjectOptions) error {
	if m.removeObjectFn != nil {
		return m.removeObjectFn(ctx, bucket, key, opts)
	}
	return nil
}

func (m *mockStorageAPI) StatObject(ctx context.Context, bucket, key string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
	if m.statObjectFn != nil {
		return m.statObjectFn(ctx, bucket, key, opts)
	}
	return minio.ObjectInfo{Key: key}, nil
}

func (m *mockStorageAPI) PresignedGetObject(ctx context.Context, bucket, key string, expiry time.Duration, params url.Values) (*url.URL, error) {
	if m.presignedGetFn != nil {
		return m.presignedGetFn(ctx, bucket, key, expiry, params)
	}
	return url.Parse("https://storage.local/" + bucket + "/" + key)
}

func newStorageTestClient(api API) *Client {
	cfg := ClientConfig{Endpoint: "localhost:9000"}
	applyClientDefaults(&cfg)
	return &Client{api: api, config: cfg, logger: logging.NewNopLogger()}
}

func TestApplyClientDefaults(t *testing.T) {
	cfg := ClientConfig{}
	applyClientDefaults(&cfg)

	assert.Equal(t, "gapintel-snapshots", cfg.Bucket)
	assert.Equal(t, "us-east-1", cfg.Region)
	assert.Equal(t, 90, cfg.RetentionDays)
	assert.Equal(t, time.Hour, cfg.PresignExpiry)
}

func TestClientFromConfig(t *testing.T) {
	cc := ClientFromConfig(config.MinIOConfig{
		Endpoint: "storage.internal:9000",
		Bucket:   "snapshots",
		UseSSL:   true,
	})
	assert.Equal(t, "storage.internal:9000", cc.Endpoint)
	assert.Equal(t, "snapshots", cc.Bucket)
	assert.True(t, cc.UseSSL)
}

func TestEnsureBucket_CreatesMissing(t *testing.T) {
	var made string
	api := &mockStorageAPI{
		bucketExistsFn: func(ctx context.Context, bucket string) (bool, error) { return false, nil },
		makeBucketFn: func(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error {
			made = bucket
			return nil
		},
	}
	c := newStorageTestClient(api)

	require.NoError(t, c.ensureBucket(context.Background()))
	assert.Equal(t, "gapintel-snapshots", made)
}

func TestEnsureBucket_ExistingSkipsCreate(t *testing.T) {
	api := &mockStorageAPI{
		makeBucketFn: func(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error {
			t.Fatal("MakeBucket should not be called")
			return nil
		},
	}
	c := newStorageTestClient(api)

	require.NoError(t, c.ensureBucket(context.Background()))
}

func TestHealthCheck(t *testing.T) {
	c := newStorageTestClient(&mockStorageAPI{})
	assert.NoError(t, c.HealthCheck(context.Background()))
}

func TestHealthCheck_MissingBucket(t *testing.T) {
	api := &mockStorageAPI{
		bucketExistsFn: func(ctx context.Context, bucket string) (bool, error) { return false, nil },
	}
	c := newStorageTestClient(api)
	assert.Error(t, c.HealthCheck(context.Background()))
}

func TestHealthCheck_Unreachable(t *testing.T) {
	api := &mockStorageAPI{
		bucketExistsFn: func(ctx context.Context, bucket string) (bool, error) {
			return false, assert.AnError
		},
	}
	c := newStorageTestClient(api)
	assert.ErrorIs(t, c.HealthCheck(context.Background()), ErrConnectionFailed)
}
