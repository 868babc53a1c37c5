package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media-gallery-platform/internal/models"
)

func TestWithActor_DefaultsToGuest(t *testing.T) {
	store := sessions.NewCookieStore([]byte("test-secret"))
	m := NewSessionMiddleware(store)

	var actor models.Actor
	handler := m.WithActor(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor = ActorFromContext(r.Context())
	}))

	req := httptest.NewRequest("GET", "/", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.True(t, actor.IsGuest)
	assert.Empty(t, actor.ID)
}

func TestWithActor_ReadsSessionIdentity(t *testing.T) {
	store := sessions.NewCookieStore([]byte("test-secret"))
	m := NewSessionMiddleware(store)

	// Establish a session cookie with an actor id.
	setup := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	session, err := store.Get(setup, SessionName)
	require.NoError(t, err)
	session.Values["actor_id"] = "u1"
	require.NoError(t, session.Save(setup, rec))

	var actor models.Actor
	handler := m.WithActor(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor = ActorFromContext(r.Context())
	}))

	req := httptest.NewRequest("GET", "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.False(t, actor.IsGuest)
	assert.Equal(t, "u1", actor.ID)
}

func TestRequireAdmin(t *testing.T) {
	store := sessions.NewCookieStore([]byte("test-secret"))
	m := NewSessionMiddleware(store)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	chain := m.WithActor(m.RequireAdmin(next))

	// No session: rejected.
	rec := httptest.NewRecorder()
	chain.ServeHTTP(rec, httptest.NewRequest("GET", "/admin", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Admin-marked session: allowed.
	setup := httptest.NewRequest("GET", "/", nil)
	setupRec := httptest.NewRecorder()
	session, err := store.Get(setup, SessionName)
	require.NoError(t, err)
	session.Values["is_admin"] = true
	require.NoError(t, session.Save(setup, setupRec))

	req := httptest.NewRequest("GET", "/admin", nil)
	for _, c := range setupRec.Result().Cookies() {
		req.AddCookie(c)
	}
	rec = httptest.NewRecorder()
	chain.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
