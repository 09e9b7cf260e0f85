// Package catalog implements the package-catalog reconciliation engine:
// it reconciles versioned content packages scattered across the loaded,
// available, and archived storage roles into a single logical view per
// package identity.
//
// # Pipeline
//
//  1. BuildDescriptors turns raw folder listings into role-tagged,
//     sorted descriptors.
//  2. Parser extracts identity, content, and category metadata from
//     each archive, consulting the persistent cache first. Parsing is
//     the only concurrent phase; it runs on a bounded worker pool.
//  3. Snapshot aggregates the variants of one package base, resolves
//     the preferred variant through a fixed four-level ordering law,
//     assigns duplicate flags, and materializes canonical plus
//     role-suffixed keys into the shared Store.
//  4. Catalog orchestrates the whole pass: mark-and-sweep bulk resync,
//     single-package refresh, invalidation, and old-version detection.
//
// # Performance
//
// The engine targets tens of thousands of archives. Two layers keep
// repeat scans cheap: the persistent metadata cache keyed by
// (filename, size, mtime), and the in-memory fast path that clones the
// previous generation's variant outright when size, mtime, and a
// nonzero content hash line up. A resync over an unchanged catalog
// re-opens zero archives.
//
// # Failure Semantics
//
// Per-file failures never abort a pass. A corrupt or unreadable archive
// becomes a corrupted-but-identifiable record; a file whose read access
// is denied to an external writer is skipped for the cycle; a cache
// failure is a miss. The only hard failure is a missing required
// argument. Consumers inspect the published IsCorrupted/IsDamaged flags
// instead of handling errors.
package catalog
