// Package publish uploads finished deliverables to S3-compatible
// object storage, keyed by group, entity and fiscal year so every
// published revision of a local file is retrievable.
package publish

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"localfile/internal/export"
)

type Service struct {
	client *minio.Client
	bucket string
	logger *zap.Logger
}

type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Logger    *zap.Logger
}

func New(opts Options) (*Service, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("object storage client: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{client: client, bucket: opts.Bucket, logger: logger}, nil
}

// EnsureBucket creates the configured bucket when it does not exist.
func (s *Service) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %q: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %q: %w", s.bucket, err)
	}
	s.logger.Info("created publish bucket", zap.String("bucket", s.bucket))
	return nil
}

// ObjectKey builds the storage key for one deliverable file.
func ObjectKey(group, entity, fiscalYear, filename string) string {
	return fmt.Sprintf("%s/%s/%s/%s", group, entity, fiscalYear, filename)
}

// Publish uploads one export result. The returned key identifies the
// stored object inside the bucket.
func (s *Service) Publish(ctx context.Context, group, entity, fiscalYear string, res *export.Result) (string, error) {
	if err := s.EnsureBucket(ctx); err != nil {
		return "", err
	}

	key := ObjectKey(group, entity, fiscalYear, res.Filename)
	started := time.Now()
	_, err := s.client.PutObject(ctx, s.bucket, key,
		bytes.NewReader(res.Data), int64(len(res.Data)),
		minio.PutObjectOptions{ContentType: res.MimeType})
	if err != nil {
		return "", fmt.Errorf("upload %q: %w", key, err)
	}

	s.logger.Info("published deliverable",
		zap.String("key", key),
		zap.Int("bytes", len(res.Data)),
		zap.Duration("took", time.Since(started)))
	return key, nil
}
