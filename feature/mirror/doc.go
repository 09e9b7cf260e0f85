// Package mirror pushes archived package variants into S3-compatible
// object storage.
//
// A mirror pass uploads every published archived archive the bucket
// does not already hold, skipping objects whose name and size match.
// Prune removes objects whose package left the archived role, and
// Restore streams one archive back to disk.
//
// # Endpoints
//
//   - GET  /mirror        List mirrored archives
//   - POST /mirror/run    Upload archived variants
//   - POST /mirror/prune  Remove stale objects
package mirror
