package goPerm

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/goPerm/store"
)

const (
	auditEventPayloadLoaded      = "payload_loaded"
	auditEventPayloadMissing     = "payload_missing"
	auditEventPayloadCorrupt     = "payload_corrupt"
	auditEventPayloadInvalidated = "payload_invalidated"
	auditEventStoreUnavailable   = "store_unavailable"
	auditEventTokenRejected      = "token_rejected"
)

// AuditErrorCode defines a public type used by goPerm APIs.
//
// AuditErrorCode instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditErrorCode string

const (
	auditErrInvalidToken   AuditErrorCode = "invalid_token"
	auditErrCorruptPayload AuditErrorCode = "corrupt_payload"
	auditErrUnavailable    AuditErrorCode = "backend_unavailable"
	auditErrInternal       AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	subjectID string,
	revision string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}
	if subjectID == "" {
		subjectID = subjectIDFromContext(ctx)
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		SubjectID: subjectID,
		Revision:  revision,
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrTokenInvalid):
		return auditErrInvalidToken
	case errors.Is(err, ErrStoreUnavailable):
		return auditErrUnavailable
	case errors.Is(err, store.ErrCorruptPayload):
		return auditErrCorruptPayload
	default:
		return auditErrInternal
	}
}
