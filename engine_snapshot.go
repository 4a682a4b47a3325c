package goPerm

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/MrEthical07/goPerm/permission"
	"github.com/MrEthical07/goPerm/store"
)

// Load fetches the subject's raw payload from the store and derives an
// immutable [Snapshot]: normalization and super-admin detection run here,
// once per payload change, never per check.
//
// A subject without a stored payload is a legitimate outcome, not an
// error: the snapshot simply carries no grants. A corrupt payload is
// treated the same way (fail-closed). Only an unreachable backend
// returns an error.
func (e *Engine) Load(ctx context.Context, subjectID string) (*Snapshot, error) {
	if e == nil || e.rules == nil {
		return nil, ErrEngineNotReady
	}
	if strings.TrimSpace(subjectID) == "" {
		return nil, ErrSubjectRequired
	}
	if e.store == nil {
		return nil, ErrStoreRequired
	}

	start := time.Now()

	payload, err := e.store.Fetch(ctx, subjectID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		e.metricInc(MetricPayloadMissing)
		snap := e.SnapshotFromRaw(subjectID, nil)
		e.emitAudit(ctx, auditEventPayloadMissing, true, subjectID, "", nil, nil)
		return snap, nil

	case errors.Is(err, store.ErrCorruptPayload):
		e.metricInc(MetricPayloadCorrupt)
		snap := e.SnapshotFromRaw(subjectID, nil)
		e.emitAudit(ctx, auditEventPayloadCorrupt, false, subjectID, "", err, nil)
		return snap, nil

	case err != nil:
		e.metricInc(MetricStoreError)
		e.emitAudit(ctx, auditEventStoreUnavailable, false, subjectID, "", ErrStoreUnavailable, nil)
		return nil, ErrStoreUnavailable
	}

	snap := e.snapshotFromPayload(subjectID, payload)
	e.metricInc(MetricPayloadLoaded)
	e.metricObserve(MetricLoadLatency, time.Since(start))
	e.emitAudit(ctx, auditEventPayloadLoaded, true, subjectID, snap.Revision, nil, func() map[string]string {
		return map[string]string{
			"format":      permission.DetectFormat(payload.Raw).String(),
			"resources":   strconv.Itoa(snap.Permissions.Set().Len()),
			"super_admin": strconv.FormatBool(snap.SuperAdmin()),
		}
	})
	return snap, nil
}

// SnapshotFromToken verifies a permission token and derives a snapshot
// from the payload claim it carries. Any verification failure yields
// [ErrTokenInvalid] and no snapshot.
func (e *Engine) SnapshotFromToken(ctx context.Context, token string) (*Snapshot, error) {
	if e == nil || e.rules == nil {
		return nil, ErrEngineNotReady
	}
	if e.tokens == nil {
		return nil, ErrTokenManagerRequired
	}

	ext, err := e.tokens.Extract(token)
	if err != nil {
		e.metricInc(MetricTokenRejected)
		e.emitAudit(ctx, auditEventTokenRejected, false, "", "", ErrTokenInvalid, nil)
		return nil, ErrTokenInvalid
	}

	snap := e.SnapshotFromRaw(ext.SubjectID, ext.Raw)
	e.metricInc(MetricSnapshotFromToken)
	return snap, nil
}

// SnapshotFromRaw derives a snapshot from a payload the host fetched
// itself. Pure and total: any input, including nil, produces a usable
// (possibly grant-less) snapshot.
func (e *Engine) SnapshotFromRaw(subjectID string, raw any) *Snapshot {
	rules := e.Rules()
	if rules == nil {
		rules = permission.NewRuleset(nil, nil)
	}

	pctx := rules.NewContext(raw)
	if pctx.SuperAdmin() {
		e.metricInc(MetricSuperAdminDetected)
	}

	return &Snapshot{
		SubjectID:   subjectID,
		LoadedAt:    time.Now().UTC(),
		Permissions: pctx,
	}
}

func (e *Engine) snapshotFromPayload(subjectID string, payload RawPayload) *Snapshot {
	snap := e.SnapshotFromRaw(subjectID, payload.Raw)
	snap.Revision = payload.Revision
	return snap
}

// OnPermissionsInvalidated delivers store invalidation signals to handler
// until ctx is done. It blocks; run it in its own goroutine. The host
// reacts by re-running [Engine.Load] for affected subjects — the engine
// itself caches nothing.
func (e *Engine) OnPermissionsInvalidated(ctx context.Context, handler func(InvalidationSignal)) error {
	if e == nil {
		return ErrEngineNotReady
	}
	if e.store == nil {
		return ErrStoreRequired
	}

	return e.store.Subscribe(ctx, func(sig InvalidationSignal) {
		e.metricInc(MetricInvalidationSignal)
		e.emitAudit(ctx, auditEventPayloadInvalidated, true, sig.SubjectID, sig.Revision, nil, nil)
		if handler != nil {
			handler(sig)
		}
	})
}
