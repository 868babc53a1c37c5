package middleware

import (
	"context"
	"net/http"

	"github.com/gorilla/sessions"

	"media-gallery-platform/internal/models"
)

// SessionName is the cookie holding the visitor's session.
const SessionName = "gallery_session"

type contextKey string

const (
	actorContextKey contextKey = "actor"
	adminContextKey contextKey = "is_admin"
)

// Session value keys.
const (
	sessionActorID = "actor_id"
	sessionIsAdmin = "is_admin"
)

// SessionMiddleware resolves the request's actor from the session cookie
// and puts it on the context. A request without a session identity runs
// as a guest; handlers never see a nil actor.
type SessionMiddleware struct {
	store sessions.Store
}

// NewSessionMiddleware creates a new session middleware
func NewSessionMiddleware(store sessions.Store) *SessionMiddleware {
	return &SessionMiddleware{store: store}
}

// WithActor attaches the session's actor to the request context.
func (m *SessionMiddleware) WithActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := models.Guest()
		isAdmin := false

		// A broken session cookie degrades to guest rather than erroring.
		if session, err := m.store.Get(r, SessionName); err == nil {
			if id, ok := session.Values[sessionActorID].(string); ok && id != "" {
				actor = models.User(id)
			}
			if admin, ok := session.Values[sessionIsAdmin].(bool); ok {
				isAdmin = admin
			}
		}

		ctx := context.WithValue(r.Context(), actorContextKey, actor)
		ctx = context.WithValue(ctx, adminContextKey, isAdmin)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin rejects requests whose session is not an authenticated
// admin.
func (m *SessionMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsAdminFromContext(r.Context()) {
			http.Error(w, `{"error":"admin authentication required"}`, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ActorFromContext returns the request's actor, guest if none was set.
func ActorFromContext(ctx context.Context) models.Actor {
	if actor, ok := ctx.Value(actorContextKey).(models.Actor); ok {
		return actor
	}
	return models.Guest()
}

// IsAdminFromContext reports whether the session is an authenticated
// admin.
func IsAdminFromContext(ctx context.Context) bool {
	admin, ok := ctx.Value(adminContextKey).(bool)
	return ok && admin
}
