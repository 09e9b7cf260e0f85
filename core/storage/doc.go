// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client to provide a simplified interface for the
// operations the package mirror needs: uploading archived packages, checking
// whether a package is already mirrored, and streaming one back for restore.
// This abstraction supports both AWS S3 and self-hosted MinIO instances.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider, making it easier
// to mock storage interactions for unit testing (as seen in core/storage/mocks).
//
// # Operations
//
//   - BucketExists / MakeBucket: Verify or create the mirror bucket.
//   - FPutObject: Upload a package archive from disk.
//   - StatObject: Check whether an archive is already mirrored.
//   - GetObject: Stream a mirrored archive back for restore.
//   - ListObjects: Enumerate mirrored archives.
//   - RemoveObject: Delete a mirrored archive.
package storage
