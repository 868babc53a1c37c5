package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"media-gallery-platform/internal/middleware"
	"media-gallery-platform/internal/models"
	"media-gallery-platform/internal/services"
)

// CheckoutHandler drives purchases: intent creation, direct card charges
// and purchase history.
type CheckoutHandler struct {
	checkout *services.CheckoutService
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkout *services.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout}
}

type checkoutRequest struct {
	Nonce string            `json:"nonce"`
	Items []models.LineItem `json:"items"`
}

// CreateIntent prices the requested items server-side and opens a hosted
// checkout. Client-supplied prices in the payload are ignored.
func (h *CheckoutHandler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	intent, err := h.checkout.CreateIntent(actor, req.Nonce, req.Items)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, intent)
}

type chargeRequest struct {
	SourceID string `json:"source_id"`
}

// Charge completes a pending checkout with a client-tokenized card.
func (h *CheckoutHandler) Charge(w http.ResponseWriter, r *http.Request) {
	reference := chi.URLParam(r, "reference")

	var req chargeRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	result, err := h.checkout.ChargeIntent(actor, reference, req.SourceID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// History lists the actor's completed purchases.
func (h *CheckoutHandler) History(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	payments, err := h.checkout.PurchaseHistory(actor, 50)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, payments)
}
