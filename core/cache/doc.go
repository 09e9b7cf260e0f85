// Package cache implements the persistent archive-metadata cache.
//
// Parsing a package archive is the dominant cost of a catalog scan; over
// tens of thousands of mostly-unchanged files the cache turns a full
// resync from minutes into seconds. Each row stores the JSON-encoded
// parse result keyed by (filename, size, mtimeTicks), so any change to
// the file invalidates its entry implicitly.
//
// # Failure Semantics
//
// The cache is strictly an optimization. Every read failure is reported
// as a miss and every write failure is swallowed after a debug log; the
// caller reparses and continues. Hit/miss/count counters are exposed for
// the integrity report and for tests.
//
// # Storage
//
// Rows live in an embedded SQLite database (see core/database), which
// survives process restarts and needs no external service.
package cache
