// Package retry provides the shared retry-with-backoff policy for I/O
// call sites.
//
// File stats and archive opens can fail transiently on a catalog the
// size this engine targets (antivirus scanners, sync tools, network
// shares). Rather than each call site improvising its own loop, they
// share a Policy: max attempts, an exponential schedule from
// cenkalti/backoff, and an optional retryable-error predicate so that
// permanent conditions (format errors, access denial by a pending
// writer) fail immediately.
package retry
