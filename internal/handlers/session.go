package handlers

import (
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"media-gallery-platform/internal/middleware"
)

// SessionHandler manages the visitor's session identity. There are no
// user accounts; a buyer is whatever actor id their session carries, and
// unlocks attach to that id.
type SessionHandler struct {
	store sessions.Store
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(store sessions.Store) *SessionHandler {
	return &SessionHandler{store: store}
}

// Start ensures the session has an actor id, minting one on first call.
// Idempotent: an existing identity is returned unchanged.
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	session, err := h.store.Get(r, middleware.SessionName)
	if err != nil {
		// Corrupt cookie: fall through and mint a fresh identity.
		log.Printf("session start: resetting broken session: %v", err)
	}

	actorID, _ := session.Values["actor_id"].(string)
	if actorID == "" {
		actorID = uuid.New().String()
		session.Values["actor_id"] = actorID
		if err := session.Save(r, w); err != nil {
			respondError(w, err)
			return
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"actor_id": actorID,
		"is_guest": false,
	})
}

// Current reports the session's actor without creating one.
func (h *SessionHandler) Current(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"actor_id": actor.ID,
		"is_guest": actor.IsGuest,
	})
}
