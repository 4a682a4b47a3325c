// Package store persists raw permission payloads in Redis and fans out
// invalidation signals over pub/sub.
//
// The store deals only in raw payloads: it never normalizes, never
// evaluates, and never inspects payload content beyond JSON framing. Each
// save stamps a fresh UUID revision so hosts can discard stale
// invalidation signals.
//
// # What this package must NOT do
//
//   - Make permission decisions or normalize payloads (permission/ owns
//     that).
//   - Cache payloads in process; every Fetch is a Redis round-trip.
//   - Import goPerm (the root package imports store, not the reverse).
package store
