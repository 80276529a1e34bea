package storage

import (
	"context"
	"errors"
	"fmt"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
	"io"
	"ytcatalog-backend/internal/config"
)

var ErrObjectNotFound = errors.New("object not found")

// Minio reads and writes catalogue CSV exports in one bucket. Objects are
// named like the files in the data directory, optionally under a prefix.
type Minio struct {
	client *minio.Client
	bucket string
	prefix string
	log    *zap.Logger
}

// NewMinio connects to the configured endpoint and creates the bucket if it
// does not exist yet.
func NewMinio(ctx context.Context, cfg config.MinioConfig, log *zap.Logger) (*Minio, error) {
	client, err := minio.New(cfg.InternalEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	m := &Minio{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix, log: log.Named("minio")}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("bucket check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
		m.log.Info("bucket created", zap.String("bucket", cfg.Bucket))
	}

	return m, nil
}

func (m *Minio) key(name string) string {
	if m.prefix == "" {
		return name
	}
	return m.prefix + "/" + name
}

// Open returns the object's content. A missing object yields ErrObjectNotFound.
func (m *Minio) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	key := m.key(name)

	if _, err := m.client.StatObject(ctx, m.bucket, key, minio.StatObjectOptions{}); err != nil {
		var minioErr minio.ErrorResponse
		if errors.As(err, &minioErr) && minioErr.Code == "NoSuchKey" {
			return nil, fmt.Errorf("%s/%s: %w", m.bucket, key, ErrObjectNotFound)
		}
		return nil, fmt.Errorf("stat %s/%s: %w", m.bucket, key, err)
	}

	obj, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", m.bucket, key, err)
	}
	return obj, nil
}

// Upload stores src under name.
func (m *Minio) Upload(ctx context.Context, name string, src io.Reader, size int64, contentType string) error {
	key := m.key(name)
	info, err := m.client.PutObject(ctx, m.bucket, key, src, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("upload %s/%s: %w", m.bucket, key, err)
	}

	m.log.Info("object uploaded", zap.String("key", key), zap.Int64("size", info.Size))
	return nil
}
