package archive

import (
	"context"
	"fmt"
	"path"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/specialistvlad/f2eflow/internal/config"
	"github.com/specialistvlad/f2eflow/internal/ctxlog"
)

// Uploader publishes a finished bundle.
type Uploader interface {
	Upload(ctx context.Context, bundlePath string) error
}

// S3Uploader puts bundles into an S3-compatible bucket.
type S3Uploader struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewS3Uploader creates an uploader for the given settings. No request is
// made until Upload.
func NewS3Uploader(u *config.Upload) (*S3Uploader, error) {
	client, err := minio.New(u.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(u.AccessKey, u.SecretKey, ""),
		Secure: u.UseSSL,
		Region: u.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client for %s: %w", u.Endpoint, err)
	}
	return &S3Uploader{client: client, bucket: u.Bucket, prefix: u.Prefix}, nil
}

// ObjectName is the key a bundle is stored under.
func (s *S3Uploader) ObjectName(bundlePath string) string {
	return path.Join(s.prefix, filepath.Base(bundlePath))
}

// Upload implements Uploader.
func (s *S3Uploader) Upload(ctx context.Context, bundlePath string) error {
	object := s.ObjectName(bundlePath)
	logger := ctxlog.FromContext(ctx).With("bucket", s.bucket, "object", object)
	logger.Info("Uploading file to S3", "source", bundlePath)

	info, err := s.client.FPutObject(ctx, s.bucket, object, bundlePath, minio.PutObjectOptions{
		ContentType: "application/zip",
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s to bucket %s: %w", bundlePath, s.bucket, err)
	}
	logger.Info("Successfully uploaded file", "size", humanize.Bytes(uint64(info.Size)), "etag", info.ETag)
	return nil
}
