package goPerm

import (
	"context"
	"time"

	"github.com/MrEthical07/goPerm/permission"
	"github.com/MrEthical07/goPerm/store"
)

// RawPayload is a fetched raw permission blob plus its revision.
//
//	Docs: docs/store.md
type RawPayload = store.Payload

// InvalidationSignal announces that a subject's stored payload changed.
// Revision identifies the new payload, or is empty for deletions.
type InvalidationSignal = store.Signal

// PermissionStore is the external collaborator that persists raw
// permission payloads. [store.Store] is the Redis implementation; hosts
// with their own persistence supply anything satisfying this interface
// via [Builder.WithStore].
type PermissionStore interface {
	Fetch(ctx context.Context, subjectID string) (RawPayload, error)
	Subscribe(ctx context.Context, handler func(InvalidationSignal)) error
}

// Snapshot binds a subject to the canonical permission context derived
// from their payload. It is immutable: a refreshed payload produces a new
// Snapshot, and callers holding an old one keep evaluating against a
// stale-but-consistent view until they reload.
//
//	Docs: docs/engine.md
type Snapshot struct {
	SubjectID   string
	Revision    string
	LoadedAt    time.Time
	Permissions *permission.Context
}

// SuperAdmin reports the flag computed when the snapshot was built.
func (s *Snapshot) SuperAdmin() bool {
	return s != nil && s.Permissions.SuperAdmin()
}

func (s *Snapshot) permissions() *permission.Context {
	if s == nil {
		return nil
	}
	return s.Permissions
}

func (s *Snapshot) subjectID() string {
	if s == nil {
		return ""
	}
	return s.SubjectID
}

// TraceEvent is delivered to the optional decision-trace hook for every
// resource/action check. It is observability only: decisions are
// identical whether or not a hook is installed.
type TraceEvent struct {
	SubjectID string
	Resource  string
	Action    string
	Granted   bool
	Rule      permission.Match
}

// TraceFunc receives [TraceEvent] values synchronously on the decision
// path. Implementations must be fast and must not panic.
type TraceFunc func(TraceEvent)

// AuditEvent is a structured record of payload lifecycle activity
// (loads, invalidations, token rejections). Per-decision tracing uses
// [TraceFunc] instead; decisions are never audit-logged.
//
//	Docs: docs/audit.md
type AuditEvent struct {
	Timestamp time.Time         `json:"timestamp"`
	EventType string            `json:"event_type"`
	SubjectID string            `json:"subject_id,omitempty"`
	Revision  string            `json:"revision,omitempty"`
	IP        string            `json:"ip,omitempty"`
	Success   bool              `json:"success"`
	Error     string            `json:"error,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// AuditSink receives [AuditEvent] values from the engine's audit
// dispatcher.
type AuditSink interface {
	Emit(ctx context.Context, event AuditEvent)
}
