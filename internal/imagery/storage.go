package imagery

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// PresignTTL is the expiration time for presigned download URLs.
const PresignTTL = 15 * time.Minute

// StorageConfig defines the configuration interface for the photo archive.
type StorageConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinioBucketUploads() string
	IsMinIOEnabled() bool
}

// Archiver keeps copies of uploaded photos in object storage so completed
// generations can be reviewed later. Callers treat archiving as best effort;
// a storage failure never blocks a generation.
type Archiver struct {
	client *minio.Client
	bucket string
}

// NewArchiver creates an archiver backed by MinIO.
func NewArchiver(cfg StorageConfig) (*Archiver, error) {
	if !cfg.IsMinIOEnabled() {
		return nil, fmt.Errorf("MinIO is not configured")
	}

	client, err := minio.New(cfg.GetMinIOEndpoint(), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.GetMinIOAccessKey(), cfg.GetMinIOSecretKey(), ""),
		Secure: cfg.GetMinIOUseSSL(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	return &Archiver{client: client, bucket: cfg.GetMinioBucketUploads()}, nil
}

// Ready reports whether the archive bucket is reachable.
func (a *Archiver) Ready(ctx context.Context) error {
	_, err := a.client.BucketExists(ctx, a.bucket)
	return err
}

// EnsureBucket creates the archive bucket if it does not exist.
func (a *Archiver) EnsureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", a.bucket, err)
		}
	}
	return nil
}

// Store uploads the image under a date-partitioned key and returns that key.
// Camera metadata, when present, is attached as object user metadata.
func (a *Archiver) Store(ctx context.Context, data []byte, f Format) (string, error) {
	key := objectKey(time.Now().UTC(), f.Ext)

	opts := minio.PutObjectOptions{ContentType: f.MIME}
	if meta, ok := Inspect(data); ok {
		opts.UserMetadata = metaHeaders(meta)
	}

	_, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(data), int64(len(data)), opts)
	if err != nil {
		return "", fmt.Errorf("failed to upload object %s: %w", key, err)
	}
	return key, nil
}

// PresignedURL returns a short-lived download link for an archived photo.
func (a *Archiver) PresignedURL(ctx context.Context, key string) (string, error) {
	u, err := a.client.PresignedGetObject(ctx, a.bucket, key, PresignTTL, url.Values{})
	if err != nil {
		return "", fmt.Errorf("failed to presign object %s: %w", key, err)
	}
	return u.String(), nil
}

func objectKey(now time.Time, ext string) string {
	return fmt.Sprintf("%04d/%02d/%s.%s", now.Year(), int(now.Month()), uuid.New().String(), ext)
}

func metaHeaders(m Meta) map[string]string {
	h := make(map[string]string)
	if m.Width > 0 {
		h["Img-Width"] = strconv.Itoa(m.Width)
	}
	if m.Height > 0 {
		h["Img-Height"] = strconv.Itoa(m.Height)
	}
	if m.CameraMake != "" {
		h["Camera-Make"] = m.CameraMake
	}
	if m.CameraModel != "" {
		h["Camera-Model"] = m.CameraModel
	}
	if !m.CapturedAt.IsZero() {
		h["Captured-At"] = m.CapturedAt.UTC().Format(time.RFC3339)
	}
	return h
}
