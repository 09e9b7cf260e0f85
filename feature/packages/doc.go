// Package packages exposes the package catalog over HTTP.
//
// It provides listing and lookup of published records plus the three
// re-sync entry points: a full rebuild, a single-package refresh after
// an external file change, and invalidation ahead of a controlled
// delete or move.
//
// # Endpoints
//
//   - GET    /packages           List records (creator/category/status/q filters)
//   - GET    /packages/stats     Statistics of the most recent pass
//   - GET    /packages/{key}     One record by catalog key
//   - POST   /packages/resync    Full catalog rebuild
//   - POST   /packages/refresh   Single-package refresh
//   - DELETE /packages/{key}     Invalidate a package base
package packages
