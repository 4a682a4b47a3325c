package goPerm

import "errors"

var (
	// ErrEngineNotReady is returned when an Engine method runs before
	// Builder.Build completed.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrStoreRequired is returned by Load when no permission store was
	// configured.
	ErrStoreRequired = errors.New("permission store required")
	// ErrTokenManagerRequired is returned by SnapshotFromToken when no
	// token manager was configured.
	ErrTokenManagerRequired = errors.New("token manager required")
	// ErrSubjectRequired is returned when a subject identifier is blank.
	ErrSubjectRequired = errors.New("subject id required")
	// ErrTokenInvalid is returned when a permission token fails
	// verification or carries no usable claims.
	ErrTokenInvalid = errors.New("invalid permission token")
	// ErrStoreUnavailable is returned when the payload store backend
	// cannot be reached.
	ErrStoreUnavailable = errors.New("permission store unavailable")
)
