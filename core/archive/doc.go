// Package archive provides read access to packed content-package files.
//
// Packages are zip containers; this package wraps the klauspost/compress
// zip reader behind a small Reader interface so the catalog engine can be
// tested against synthetic archives and extended to other container
// formats without touching the parser.
//
// # Error Taxonomy
//
// Open and entry-level failures are split into two classes:
//
//   - ErrFormat: the file exists and is readable but is not a valid
//     archive (truncated, wrong magic, unsupported compression). The
//     caller keeps the filename-derived identity and downgrades the
//     record to corrupted.
//   - anything else: a plain I/O failure (missing file, permission).
//
// # Access Coordination
//
// The AccessCoordinator interface models the external file-locking
// primitive used by content-rewriting tools. This engine only ever
// requests shared read access and treats denial as "skip this file this
// cycle", never as an error.
package archive
