package middleware

import (
	"context"
	"net/http"
	"strings"

	goPerm "github.com/MrEthical07/goPerm"
)

type snapshotContextKey struct{}

// SnapshotFromContext returns the snapshot a guard attached to the
// request context.
func SnapshotFromContext(ctx context.Context) (*goPerm.Snapshot, bool) {
	snap, ok := ctx.Value(snapshotContextKey{}).(*goPerm.Snapshot)
	return snap, ok
}

// Require derives a snapshot from the request's bearer token and rejects
// the request unless it grants action on resource. 401 for a missing or
// invalid token, 403 for a valid token without the grant.
func Require(engine *goPerm.Engine, resource, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			snap, err := engine.SnapshotFromToken(r.Context(), token)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			if !engine.HasPermission(snap, resource, action) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), snapshotContextKey{}, snap)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SubjectResolver extracts the authenticated subject from the request.
// Returning an empty string rejects the request.
type SubjectResolver func(r *http.Request) string

// RequireLoaded loads the subject's stored payload and rejects the
// request unless the snapshot grants action on resource. 401 when no
// subject resolves, 403 for a denied check, 503 when the store is
// unreachable.
func RequireLoaded(engine *goPerm.Engine, resolve SubjectResolver, resource, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil || resolve == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			subjectID := resolve(r)
			if subjectID == "" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			snap, err := engine.Load(r.Context(), subjectID)
			if err != nil {
				http.Error(w, "service unavailable", http.StatusServiceUnavailable)
				return
			}

			if !engine.HasPermission(snap, resource, action) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), snapshotContextKey{}, snap)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
