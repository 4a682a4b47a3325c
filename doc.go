// Package goPerm provides a fail-closed permission evaluation engine: it
// normalizes the heterogeneous permission payloads emitted by legacy
// identity providers into one canonical set and answers resource/action,
// tri-level visibility, and ownership questions against it.
//
// The package is designed for concurrent server workloads: Engine methods
// are safe to call from multiple goroutines after initialization through
// [Builder.Build]. A [Snapshot] is immutable; permission refreshes produce
// a new snapshot and never mutate one already handed out.
//
// # Architecture boundaries
//
// goPerm is the public surface. It exposes [Engine], [Builder], [Config],
// and value types (Snapshot, TraceEvent, MetricsSnapshot). The pure
// decision functions live in permission/ and carry no engine dependencies;
// the Redis payload store and the JWT claim extractor live in store/ and
// jwt/ and are optional collaborators.
//
// # What this package must NOT do
//
//   - Authenticate subjects: the engine decides what a subject may do,
//     never who the subject is.
//   - Cache or invalidate payloads internally: snapshot lifetime belongs
//     to the host, which re-runs [Engine.Load] on invalidation signals.
//   - Fail open: every malformed or absent input evaluates as denial.
//
// # Performance contract
//
// HasPermission and PermissionLevel are the hot path: pure map lookups
// over an immutable snapshot, no allocation, no I/O. Load is allowed one
// Redis round-trip; normalization and super-admin detection run there,
// once per payload change, never per check.
package goPerm
