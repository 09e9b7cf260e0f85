package mirror

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"var-manager/core/catalog"
	"var-manager/core/retry"
	"var-manager/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// RunReport summarizes one mirror pass.
type RunReport struct {
	// Candidates is the number of archived variants considered.
	Candidates int `json:"candidates"`
	// Uploaded counts archives pushed to the bucket this pass.
	Uploaded int `json:"uploaded"`
	// AlreadyMirrored counts archives skipped because the bucket holds
	// an object of the same name and size.
	AlreadyMirrored int `json:"alreadyMirrored"`
	// Failed lists the object names that could not be uploaded.
	Failed []string `json:"failed"`
}

// Service mirrors archived package variants into object storage.
type Service struct {
	client storage.Client
	bucket string
	store  *catalog.Store
	logger *zap.Logger

	// Retry is the transient-failure policy applied to uploads.
	Retry retry.Policy
}

// NewService creates a new mirror service.
func NewService(client storage.Client, bucket string, store *catalog.Store, logger *zap.Logger) *Service {
	return &Service{
		client: client,
		bucket: bucket,
		store:  store,
		logger: logger,
		Retry:  retry.Default(),
	}
}

// EnsureBucket creates the mirror bucket if it does not exist.
func (s *Service) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	s.logger.Info("Mirror bucket created", zap.String("bucket", s.bucket))
	return nil
}

// MirrorArchived uploads every published archived variant that is not
// already in the bucket. Per-file failures are reported, never fatal;
// the next pass retries them.
func (s *Service) MirrorArchived(ctx context.Context) (*RunReport, error) {
	if err := s.EnsureBucket(ctx); err != nil {
		return nil, err
	}

	report := &RunReport{}
	for _, meta := range s.archivedRecords() {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Candidates++

		objectName := filepath.Base(meta.Path)
		if info, err := s.client.StatObject(ctx, s.bucket, objectName, minio.StatObjectOptions{}); err == nil && info.Size == meta.FileSize {
			report.AlreadyMirrored++
			continue
		}

		err := s.Retry.Do(ctx, func() error {
			_, putErr := s.client.FPutObject(ctx, s.bucket, objectName, meta.Path, minio.PutObjectOptions{
				ContentType: "application/zip",
			})
			return putErr
		})
		if err != nil {
			s.logger.Warn("Mirror upload failed",
				zap.String("object", objectName), zap.Error(err))
			report.Failed = append(report.Failed, objectName)
			continue
		}
		report.Uploaded++
	}

	s.logger.Info("Mirror pass complete",
		zap.Int("candidates", report.Candidates),
		zap.Int("uploaded", report.Uploaded),
		zap.Int("already_mirrored", report.AlreadyMirrored),
		zap.Int("failed", len(report.Failed)))
	return report, nil
}

// ListMirrored returns the object names currently in the bucket.
func (s *Service) ListMirrored(ctx context.Context) ([]string, error) {
	var names []string
	for info := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Recursive: true}) {
		if info.Err != nil {
			return nil, info.Err
		}
		names = append(names, info.Key)
	}
	sort.Strings(names)
	return names, nil
}

// Prune removes mirrored objects whose package is no longer published
// as archived. Deletion failures abort the pass; a prune must never
// silently leave the bucket half-cleaned.
func (s *Service) Prune(ctx context.Context) (removed []string, err error) {
	wanted := make(map[string]bool)
	for _, meta := range s.archivedRecords() {
		wanted[filepath.Base(meta.Path)] = true
	}

	names, err := s.ListMirrored(ctx)
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		if wanted[name] {
			continue
		}
		if err := s.client.RemoveObject(ctx, s.bucket, name, minio.RemoveObjectOptions{}); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", name, err)
		}
		removed = append(removed, name)
	}
	return removed, nil
}

// Restore downloads a mirrored archive into destDir.
func (s *Service) Restore(ctx context.Context, objectName, destDir string) (string, error) {
	if objectName == "" || strings.Contains(objectName, "/") {
		return "", fmt.Errorf("invalid object name %q", objectName)
	}

	obj, err := s.client.GetObject(ctx, s.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", objectName, err)
	}
	defer obj.Close()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", err
	}
	destPath := filepath.Join(destDir, objectName)
	f, err := os.Create(destPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, obj); err != nil {
		os.Remove(destPath)
		return "", fmt.Errorf("failed to write %s: %w", destPath, err)
	}
	return destPath, nil
}

// archivedRecords returns the distinct archived variants in the
// published store, canonical entries first.
func (s *Service) archivedRecords() []*catalog.Metadata {
	items := s.store.Items()
	keys := make([]string, 0, len(items))
	for key := range items {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	seen := make(map[string]bool)
	var records []*catalog.Metadata
	for _, key := range keys {
		meta := items[key]
		if meta.Status != catalog.StatusArchived || meta.IsCorrupted {
			continue
		}
		if meta.Path == "" || seen[meta.Path] {
			continue
		}
		seen[meta.Path] = true
		records = append(records, meta)
	}
	return records
}
