package archive

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/xtaxx12/BGR-SHRIMP/platform/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// DownloadURLTTL is how long a proforma download link stays valid.
// Clients often open these links days after the conversation.
const DownloadURLTTL = 72 * time.Hour

// Store persists proforma documents in a MinIO bucket.
type Store struct {
	client *minio.Client
	bucket string
}

// NewStore creates a MinIO-backed proforma store. Returns nil when the
// archive is not configured, which disables the module entirely.
func NewStore(cfg config.ArchiveConfig) (*Store, error) {
	if !cfg.IsArchiveEnabled() {
		return nil, nil
	}

	client, err := minio.New(cfg.GetMinIOEndpoint(), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.GetMinIOAccessKey(), cfg.GetMinIOSecretKey(), ""),
		Secure: cfg.GetMinIOUseSSL(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	return &Store{
		client: client,
		bucket: cfg.GetMinioBucketProformas(),
	}, nil
}

// EnsureBucket creates the proforma bucket if it doesn't exist.
func (s *Store) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
		}
	}

	return nil
}

// Put uploads a rendered proforma document under the given key.
func (s *Store) Put(ctx context.Context, key, document string) error {
	reader := strings.NewReader(document)
	_, err := s.client.PutObject(ctx, s.bucket, key, reader, int64(reader.Len()), minio.PutObjectOptions{
		ContentType: "text/plain; charset=utf-8",
	})
	if err != nil {
		return fmt.Errorf("failed to upload proforma %s: %w", key, err)
	}
	return nil
}

// DownloadURL generates a presigned GET URL for a stored proforma.
func (s *Store) DownloadURL(ctx context.Context, key string) (string, error) {
	reqParams := make(url.Values)
	presignedURL, err := s.client.PresignedGetObject(ctx, s.bucket, key, DownloadURLTTL, reqParams)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned download URL: %w", err)
	}
	return presignedURL.String(), nil
}
