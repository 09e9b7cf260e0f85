// Package integrity builds health reports over the published catalog.
//
// The report flags corrupted archives, records the standard validator
// marked as damaged, dependencies no published package can satisfy, and
// duplicate copies across storage roles. A second endpoint exposes the
// persistent-cache hit, miss and row counters.
//
// # Endpoints
//
//   - GET /integrity        Full catalog health report
//   - GET /integrity/cache  Persistent cache statistics
package integrity
