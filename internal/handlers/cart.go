package handlers

import (
	"net/http"

	"github.com/gorilla/sessions"

	"media-gallery-platform/internal/middleware"
	"media-gallery-platform/internal/models"
	"media-gallery-platform/internal/services"
)

const cartSessionKey = "cart"

// CartHandler keeps the visitor's selection in the session. The cart is
// a convenience for the client; prices in it are display hints and
// checkout recomputes everything server-side.
type CartHandler struct {
	store   sessions.Store
	pricing *services.PricingService
}

// NewCartHandler creates a new cart handler
func NewCartHandler(store sessions.Store, pricing *services.PricingService) *CartHandler {
	return &CartHandler{store: store, pricing: pricing}
}

func (h *CartHandler) loadCart(r *http.Request) (*sessions.Session, *models.Cart) {
	session, _ := h.store.Get(r, middleware.SessionName)
	if cart, ok := session.Values[cartSessionKey].(*models.Cart); ok && cart != nil {
		return session, cart
	}
	return session, &models.Cart{Items: []models.LineItem{}}
}

// Get returns the session's cart.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	_, cart := h.loadCart(r)
	respondJSON(w, http.StatusOK, cart)
}

// AddItem adds one line item, pricing it for display. Duplicate tuples
// collapse to one.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var item models.LineItem
	if err := decodeBody(r, &item); err != nil {
		respondError(w, err)
		return
	}
	if err := item.Validate(); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	var price int
	var err error
	if item.IsPackage() {
		price, err = h.pricing.PackagePriceFor(item.ProfileID, item.Package)
	} else {
		price, err = h.pricing.PriceFor(item.ProfileID, item.ItemIndex, item.ItemType)
	}
	if err != nil {
		respondError(w, err)
		return
	}
	item.PriceCents = price

	session, cart := h.loadCart(r)
	cart.Add(item)
	session.Values[cartSessionKey] = cart
	if err := session.Save(r, w); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cart)
}

// RemoveItem drops the line item matching the given tuple.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	var item models.LineItem
	if err := decodeBody(r, &item); err != nil {
		respondError(w, err)
		return
	}

	session, cart := h.loadCart(r)
	cart.Remove(item)
	session.Values[cartSessionKey] = cart
	if err := session.Save(r, w); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cart)
}

// Clear empties the cart.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	session, _ := h.loadCart(r)
	delete(session.Values, cartSessionKey)
	if err := session.Save(r, w); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, &models.Cart{Items: []models.LineItem{}})
}
