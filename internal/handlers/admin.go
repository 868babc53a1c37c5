package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"media-gallery-platform/internal/middleware"
	"media-gallery-platform/internal/models"
	"media-gallery-platform/internal/services"
)

// AdminCatalog is the catalog mutation surface the admin API needs.
type AdminCatalog interface {
	Catalog
	CreateProfile(req *models.ProfileCreateRequest) (*models.Profile, error)
	UpdateProfile(id int, req *models.ProfileUpdateRequest) (*models.Profile, error)
	DeleteProfile(id int) error
}

// AdminHandler serves the admin API: profile and media management,
// pricing, comped unlocks and refunds.
type AdminHandler struct {
	auth        *services.AdminAuthService
	store       sessions.Store
	catalog     AdminCatalog
	media       *services.MediaService
	pricing     *services.PricingService
	entitlement *services.EntitlementService
	reconciler  *services.ReconciliationService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	auth *services.AdminAuthService,
	store sessions.Store,
	catalog AdminCatalog,
	media *services.MediaService,
	pricing *services.PricingService,
	entitlement *services.EntitlementService,
	reconciler *services.ReconciliationService,
) *AdminHandler {
	return &AdminHandler{
		auth:        auth,
		store:       store,
		catalog:     catalog,
		media:       media,
		pricing:     pricing,
		entitlement: entitlement,
		reconciler:  reconciler,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login authenticates the configured admin and marks the session.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	if err := h.auth.Authenticate(req.Username, req.Password); err != nil {
		respondError(w, err)
		return
	}

	session, _ := h.store.Get(r, middleware.SessionName)
	session.Values["is_admin"] = true
	if err := session.Save(r, w); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"admin": true})
}

// Logout drops the session's admin mark.
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, _ := h.store.Get(r, middleware.SessionName)
	delete(session.Values, "is_admin")
	if err := session.Save(r, w); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"admin": false})
}

// CreateProfile creates an empty profile.
func (h *AdminHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	var req models.ProfileCreateRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	profile, err := h.catalog.CreateProfile(&req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, profile)
}

// UpdateProfile patches profile metadata, the unlock flag and per-type
// default prices.
func (h *AdminHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "profileID")
	if err != nil {
		respondError(w, err)
		return
	}

	var req models.ProfileUpdateRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	profile, err := h.pricing.SetProfileDefaults(id, &req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

// DeleteProfile removes a profile and its media rows.
func (h *AdminHandler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "profileID")
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.catalog.DeleteProfile(id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// UploadMedia accepts a multipart upload and appends it to the profile's
// gallery. Form fields: file, type (photo|video), locked (optional bool).
func (h *AdminHandler) UploadMedia(w http.ResponseWriter, r *http.Request) {
	profileID, err := urlParamInt(r, "profileID")
	if err != nil {
		respondError(w, err)
		return
	}

	// 100 MB in-memory threshold; larger bodies spill to temp files.
	if err := r.ParseMultipartForm(100 << 20); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid multipart form"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "file field is required"})
		return
	}
	defer file.Close()

	itemType := models.ItemType(r.FormValue("type"))
	var isLocked *bool
	if v := r.FormValue("locked"); v != "" {
		locked := v == "true" || v == "1"
		isLocked = &locked
	}

	item, err := h.media.UploadItem(
		r.Context(),
		profileID,
		itemType,
		header.Filename,
		header.Header.Get("Content-Type"),
		file,
		header.Size,
		isLocked,
	)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, item)
}

type lockRequest struct {
	ItemType models.ItemType `json:"item_type"`
	Locked   bool            `json:"locked"`
}

// SetItemLock flips one item's lock flag.
func (h *AdminHandler) SetItemLock(w http.ResponseWriter, r *http.Request) {
	profileID, err := urlParamInt(r, "profileID")
	if err != nil {
		respondError(w, err)
		return
	}
	itemIndex, err := urlParamInt(r, "itemIndex")
	if err != nil {
		respondError(w, err)
		return
	}

	var req lockRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	if err := h.media.SetItemLock(profileID, itemIndex, req.ItemType, req.Locked); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"locked": req.Locked})
}

type coverRequest struct {
	ItemType models.ItemType `json:"item_type"`
}

// SetCover marks one item as the profile's cover.
func (h *AdminHandler) SetCover(w http.ResponseWriter, r *http.Request) {
	profileID, err := urlParamInt(r, "profileID")
	if err != nil {
		respondError(w, err)
		return
	}
	itemIndex, err := urlParamInt(r, "itemIndex")
	if err != nil {
		respondError(w, err)
		return
	}

	var req coverRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	if err := h.media.SetCover(profileID, itemIndex, req.ItemType); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"cover": true})
}

type itemPriceRequest struct {
	ItemType   models.ItemType `json:"item_type"`
	PriceCents int             `json:"price_cents"`
}

// SetItemPrice sets a per-item price override.
func (h *AdminHandler) SetItemPrice(w http.ResponseWriter, r *http.Request) {
	profileID, err := urlParamInt(r, "profileID")
	if err != nil {
		respondError(w, err)
		return
	}
	itemIndex, err := urlParamInt(r, "itemIndex")
	if err != nil {
		respondError(w, err)
		return
	}

	var req itemPriceRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	if err := h.pricing.SetItemPrice(profileID, itemIndex, req.ItemType, req.PriceCents); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"price_cents": req.PriceCents})
}

// ListPriceOverrides lists a profile's per-item price overrides.
func (h *AdminHandler) ListPriceOverrides(w http.ResponseWriter, r *http.Request) {
	profileID, err := urlParamInt(r, "profileID")
	if err != nil {
		respondError(w, err)
		return
	}

	overrides, err := h.pricing.ListOverrides(profileID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, overrides)
}

type grantRequest struct {
	ActorID string             `json:"actor_id"`
	Package models.PackageType `json:"package"`
}

// GrantUnlock comps a package unlock to an actor without a payment.
func (h *AdminHandler) GrantUnlock(w http.ResponseWriter, r *http.Request) {
	profileID, err := urlParamInt(r, "profileID")
	if err != nil {
		respondError(w, err)
		return
	}

	var req grantRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	if err := h.entitlement.GrantPackage(req.ActorID, profileID, req.Package); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]bool{"granted": true})
}

// RefundPayment transitions a completed payment to refunded.
func (h *AdminHandler) RefundPayment(w http.ResponseWriter, r *http.Request) {
	reference := chi.URLParam(r, "reference")

	payment, err := h.reconciler.Refund(reference)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, payment)
}
