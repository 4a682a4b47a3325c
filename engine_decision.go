package goPerm

import (
	"github.com/MrEthical07/goPerm/permission"
)

/*
====================================
DECISION SURFACE
====================================
*/

// HasPermission reports whether the snapshot grants action on resource.
// Pure hot path: no I/O, no allocation, safe for request-time use. A nil
// snapshot denies.
func (e *Engine) HasPermission(snap *Snapshot, resource, action string) bool {
	if e == nil || e.rules == nil {
		return false
	}

	granted, rule := e.rules.HasMatch(snap.permissions(), resource, action)
	if granted {
		e.metricInc(MetricDecisionGranted)
	} else {
		e.metricInc(MetricDecisionDenied)
	}
	e.emitTrace(snap, resource, action, granted, rule)

	return granted
}

// PermissionLevel resolves the snapshot's visibility level for module.
// A nil snapshot resolves to [permission.LevelOwn], the most restrictive
// tier.
func (e *Engine) PermissionLevel(snap *Snapshot, module string) permission.Level {
	if e == nil || e.rules == nil {
		return permission.LevelOwn
	}
	return e.rules.Level(snap.permissions(), module)
}

// CanEdit reports whether the subject may edit the record identified by
// ownerID under module. Module level is consulted first; when it falls
// short, the resource type's ownership rule may still grant the exact
// owner.
func (e *Engine) CanEdit(snap *Snapshot, module, ownerID string) bool {
	if e == nil || e.rules == nil {
		return false
	}

	level := e.rules.Level(snap.permissions(), module)
	granted := permission.CanEdit(level, ownerID, snap.subjectID(), e.ownershipRule(module))

	if granted {
		e.metricInc(MetricOwnershipGranted)
	} else {
		e.metricInc(MetricOwnershipDenied)
	}
	return granted
}

// CanDelete is the deletion analogue of [Engine.CanEdit]. Deletion is
// never more permissive than editing for the same rule.
func (e *Engine) CanDelete(snap *Snapshot, module, ownerID string) bool {
	if e == nil || e.rules == nil {
		return false
	}

	level := e.rules.Level(snap.permissions(), module)
	granted := permission.CanDelete(level, ownerID, snap.subjectID(), e.ownershipRule(module))

	if granted {
		e.metricInc(MetricOwnershipGranted)
	} else {
		e.metricInc(MetricOwnershipDenied)
	}
	return granted
}
