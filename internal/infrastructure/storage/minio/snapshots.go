package minio

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/searchlens/gapintel/internal/infrastructure/monitoring/logging"
	"github.com/searchlens/gapintel/pkg/errors"
	"github.com/searchlens/gapintel/pkg/types/common"
)

var ErrSnapshotNotFound = errors.New(errors.ErrCodeNotFound, "snapshot not found")

// Snapshot is a stored HTML capture with its object metadata.
type Snapshot struct {
	PageID     common.ID
	HTML       []byte
	Size       int64
	CapturedAt time.Time
}

// SnapshotStore persists raw page HTML keyed by page id.
type SnapshotStore interface {
	// Put stores the HTML and returns the object key to record on the page.
	Put(ctx context.Context, pageID common.ID, html []byte) (string, error)
	Get(ctx context.Context, pageID common.ID) (*Snapshot, error)
	Delete(ctx context.Context, pageID common.ID) error
	Exists(ctx context.Context, pageID common.ID) (bool, error)

	// PresignedURL returns a temporary download link for operator tooling.
	PresignedURL(ctx context.Context, pageID common.ID, expiry time.Duration) (string, error)
}

type snapshotStore struct {
	client *Client
	logger logging.Logger
}

func NewSnapshotStore(client *Client, logger logging.Logger) SnapshotStore {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &snapshotStore{client: client, logger: logger}
}

// snapshotKey is the object key for a page's snapshot.  One snapshot per
// page; a re-crawl overwrites the previous capture.
func snapshotKey(pageID common.ID) string {
	return "pages/" + string(pageID) + ".html"
}

func (s *snapshotStore) Put(ctx context.Context, pageID common.ID, html []byte) (string, error) {
	if pageID == "" {
		return "", errors.NewValidationError("page_id", "page id is required")
	}
	if len(html) == 0 {
		return "", errors.NewValidationError("html", "snapshot body is empty")
	}

	key := snapshotKey(pageID)
	_, err := s.client.api.PutObject(ctx, s.client.Bucket(), key,
		bytes.NewReader(html), int64(len(html)), minio.PutObjectOptions{
			ContentType: "text/html; charset=utf-8",
			UserMetadata: map[string]string{
				"page-id": string(pageID),
			},
		})
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodePageSnapshotFailed, "failed to store snapshot")
	}

	s.logger.Debug("snapshot stored",
		logging.String("page_id", string(pageID)),
		logging.Int("bytes", len(html)))
	return key, nil
}

func (s *snapshotStore) Get(ctx context.Context, pageID common.ID) (*Snapshot, error) {
	obj, err := s.client.api.GetObject(ctx, s.client.Bucket(), snapshotKey(pageID), minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodePageSnapshotFailed, "failed to open snapshot")
	}
	defer obj.Close()

	stat, err := obj.Stat()
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrSnapshotNotFound
		}
		return nil, errors.Wrap(err, errors.ErrCodePageSnapshotFailed, "failed to stat snapshot")
	}

	html, err := io.ReadAll(obj)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodePageSnapshotFailed, "failed to read snapshot")
	}

	return &Snapshot{
		PageID:     pageID,
		HTML:       html,
		Size:       stat.Size,
		CapturedAt: stat.LastModified,
	}, nil
}

func (s *snapshotStore) Delete(ctx context.Context, pageID common.ID) error {
	err := s.client.api.RemoveObject(ctx, s.client.Bucket(), snapshotKey(pageID), minio.RemoveObjectOptions{})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodePageSnapshotFailed, "failed to delete snapshot")
	}
	return nil
}

func (s *snapshotStore) Exists(ctx context.Context, pageID common.ID) (bool, error) {
	_, err := s.client.api.StatObject(ctx, s.client.Bucket(), snapshotKey(pageID), minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, errors.Wrap(err, errors.ErrCodePageSnapshotFailed, "failed to stat snapshot")
	}
	return true, nil
}

func (s *snapshotStore) PresignedURL(ctx context.Context, pageID common.ID, expiry time.Duration) (string, error) {
	if expiry == 0 {
		expiry = s.client.config.PresignExpiry
	}
	u, err := s.client.api.PresignedGetObject(ctx, s.client.Bucket(), snapshotKey(pageID), expiry, nil)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodePageSnapshotFailed, "failed to presign snapshot url")
	}
	return u.String(), nil
}
