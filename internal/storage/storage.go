package storage

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/therealutkarshpriyadarshi/dashprep/internal/config"
	"github.com/therealutkarshpriyadarshi/dashprep/internal/metrics"
)

// Storage publishes packaged output to an S3-compatible bucket
type Storage struct {
	client     *minio.Client
	bucketName string
	prefix     string
}

// New creates a new storage client
func New(ctx context.Context, cfg config.StorageConfig) (*Storage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	// Ensure bucket exists
	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		err = client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{
			Region: cfg.Region,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &Storage{
		client:     client,
		bucketName: cfg.BucketName,
		prefix:     cfg.Prefix,
	}, nil
}

// UploadFile uploads a file from local filesystem and returns its size
func (s *Storage) UploadFile(ctx context.Context, objectName, filePath string) (int64, error) {
	info, err := s.client.FPutObject(ctx, s.bucketName, objectName, filePath, minio.PutObjectOptions{
		ContentType: getContentType(filePath),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to upload file %s: %w", filePath, err)
	}

	return info.Size, nil
}

// PublishDir uploads every regular file under dir, keyed by its path
// relative to dir beneath the configured prefix and runPrefix. Uploads are
// sequential and stop at the first error.
func (s *Storage) PublishDir(ctx context.Context, dir, runPrefix string) (int, error) {
	uploaded := 0

	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		key, err := objectKey(dir, p, s.prefix, runPrefix)
		if err != nil {
			return err
		}

		size, err := s.UploadFile(ctx, key, p)
		if err != nil {
			return err
		}

		metrics.RecordPublish(size)
		uploaded++
		return nil
	})
	if err != nil {
		return uploaded, fmt.Errorf("failed to publish %s: %w", dir, err)
	}

	return uploaded, nil
}

// objectKey maps a local file under root to its bucket key
func objectKey(root, filePath string, prefixes ...string) (string, error) {
	rel, err := filepath.Rel(root, filePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve object key: %w", err)
	}
	if strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("file %s is outside %s", filePath, root)
	}

	parts := make([]string, 0, len(prefixes)+1)
	for _, p := range prefixes {
		if p = strings.Trim(p, "/"); p != "" {
			parts = append(parts, p)
		}
	}
	parts = append(parts, filepath.ToSlash(rel))

	return path.Join(parts...), nil
}

// getContentType returns the content type based on file extension
func getContentType(filePath string) string {
	ext := strings.ToLower(filepath.Ext(filePath))
	switch ext {
	case ".mp4":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	case ".mkv":
		return "video/x-matroska"
	case ".webm":
		return "video/webm"
	case ".mpd":
		return "application/dash+xml"
	case ".m4s":
		return "video/iso.segment"
	case ".m4a":
		return "audio/mp4"
	case ".m4v":
		return "video/x-m4v"
	default:
		return "application/octet-stream"
	}
}
