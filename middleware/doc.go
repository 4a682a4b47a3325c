// Package middleware exposes HTTP middleware adapters for permission
// enforcement built on top of goPerm.Engine snapshots.
//
// # Guards
//
//   - [Require] — token-backed snapshot plus one resource/action check.
//   - [RequireLoaded] — store-backed snapshot for an already-authenticated
//     subject, plus one resource/action check.
//
// Each guard derives a snapshot, evaluates the check, and injects the
// snapshot into the request context for downstream handlers.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// evaluate permissions itself — all decisions are delegated to
// Engine.HasPermission over an Engine-built snapshot.
//
// # What this package must NOT do
//
//   - Parse or create JWTs directly (delegates to Engine).
//   - Access Redis (Engine handles I/O).
//   - Make grant decisions beyond pass/reject from Engine.HasPermission.
package middleware
