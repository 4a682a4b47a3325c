package goPerm

import (
	"strings"
	"time"

	"github.com/MrEthical07/goPerm/jwt"
	"github.com/MrEthical07/goPerm/permission"
)

// Engine defines a public type used by goPerm APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config    Config
	rules     *permission.Ruleset
	ownership map[string]permission.OwnershipRule
	store     PermissionStore
	tokens    *jwt.Manager
	trace     TraceFunc
	audit     *auditDispatcher
	metrics   *Metrics
}

// Rules exposes the compiled ruleset for hosts that call the pure
// decision functions directly.
func (e *Engine) Rules() *permission.Ruleset {
	if e == nil {
		return nil
	}
	return e.rules
}

// Close drains and stops the audit dispatcher. Decision methods remain
// usable after Close; only audit delivery stops.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped returns the number of audit events discarded because the
// buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of all counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) metricObserve(id MetricID, d time.Duration) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Observe(id, d)
}

func (e *Engine) ownershipRule(module string) permission.OwnershipRule {
	if e == nil {
		return permission.OwnershipRule{}
	}
	return e.ownership[strings.ToLower(module)]
}

func (e *Engine) emitTrace(snap *Snapshot, resource, action string, granted bool, rule permission.Match) {
	if e == nil || e.trace == nil {
		return
	}

	event := TraceEvent{
		Resource: resource,
		Action:   action,
		Granted:  granted,
		Rule:     rule,
	}
	if snap != nil {
		event.SubjectID = snap.SubjectID
	}
	e.trace(event)
}
