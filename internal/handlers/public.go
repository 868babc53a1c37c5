package handlers

import (
	"net/http"

	"media-gallery-platform/internal/middleware"
	"media-gallery-platform/internal/models"
	"media-gallery-platform/internal/services"
)

// Catalog is the read-side catalog access public browsing needs.
type Catalog interface {
	ListProfiles() ([]*models.Profile, error)
	GetProfile(id int) (*models.Profile, error)
	ListMediaItems(profileID int) ([]*models.MediaItem, error)
	GetMediaItem(profileID, itemIndex int, itemType models.ItemType) (*models.MediaItem, error)
}

// PublicHandler serves the viewer-facing gallery API
type PublicHandler struct {
	catalog     Catalog
	entitlement *services.EntitlementService
	pricing     *services.PricingService
}

// NewPublicHandler creates a new public handler
func NewPublicHandler(catalog Catalog, entitlement *services.EntitlementService, pricing *services.PricingService) *PublicHandler {
	return &PublicHandler{catalog: catalog, entitlement: entitlement, pricing: pricing}
}

// galleryItem is a media item as the viewer sees it. The original URL is
// present only when the viewer is entitled to the item; locked items
// carry just the blurred preview.
type galleryItem struct {
	ItemType   models.ItemType `json:"item_type"`
	ItemIndex  int             `json:"item_index"`
	URL        string          `json:"url,omitempty"`
	PreviewURL string          `json:"preview_url,omitempty"`
	IsCover    bool            `json:"is_cover"`
	Unlocked   bool            `json:"unlocked"`
}

type profileResponse struct {
	ID          int                    `json:"id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	IsUnlocked  bool                   `json:"is_unlocked"`
	Photos      []galleryItem          `json:"photos"`
	Videos      []galleryItem          `json:"videos"`
	Counts      *services.UnlockCounts `json:"counts,omitempty"`
}

// ListProfiles returns the gallery index. Only covers and metadata; item
// listings come from GetProfile.
func (h *PublicHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.catalog.ListProfiles()
	if err != nil {
		respondError(w, err)
		return
	}

	type summary struct {
		ID          int    `json:"id"`
		Name        string `json:"name"`
		Description string `json:"description"`
		IsUnlocked  bool   `json:"is_unlocked"`
	}
	out := make([]summary, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, summary{ID: p.ID, Name: p.Name, Description: p.Description, IsUnlocked: p.IsUnlocked})
	}
	respondJSON(w, http.StatusOK, out)
}

// GetProfile returns one profile with its media listings, redacted to the
// requesting actor's entitlements.
func (h *PublicHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "profileID")
	if err != nil {
		respondError(w, err)
		return
	}
	actor := middleware.ActorFromContext(r.Context())

	profile, err := h.catalog.GetProfile(id)
	if err != nil {
		respondError(w, err)
		return
	}
	items, err := h.catalog.ListMediaItems(id)
	if err != nil {
		respondError(w, err)
		return
	}
	counts, err := h.entitlement.UnlockedCount(actor, id)
	if err != nil {
		respondError(w, err)
		return
	}

	resp := profileResponse{
		ID:          profile.ID,
		Name:        profile.Name,
		Description: profile.Description,
		IsUnlocked:  profile.IsUnlocked,
		Photos:      []galleryItem{},
		Videos:      []galleryItem{},
		Counts:      counts,
	}
	for _, item := range items {
		unlocked, err := h.entitlement.IsUnlocked(actor, id, item.ItemIndex, item.ItemType)
		if err != nil {
			respondError(w, err)
			return
		}
		gi := galleryItem{
			ItemType:   item.ItemType,
			ItemIndex:  item.ItemIndex,
			PreviewURL: item.PreviewURL,
			IsCover:    item.IsCover,
			Unlocked:   unlocked,
		}
		if unlocked {
			gi.URL = item.URL
		}
		if item.ItemType == models.ItemPhoto {
			resp.Photos = append(resp.Photos, gi)
		} else {
			resp.Videos = append(resp.Videos, gi)
		}
	}

	respondJSON(w, http.StatusOK, resp)
}

// GetEntitlement answers whether the actor may view one item right now.
func (h *PublicHandler) GetEntitlement(w http.ResponseWriter, r *http.Request) {
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
	itemType := models.ItemType(r.URL.Query().Get("type"))
	if !models.ValidItemType(itemType) {
		respondError(w, models.ErrInvalidInput)
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	unlocked, err := h.entitlement.IsUnlocked(actor, profileID, itemIndex, itemType)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"unlocked": unlocked})
}

// GetPrice returns the effective price of an item or a package after the
// fallback chain.
func (h *PublicHandler) GetPrice(w http.ResponseWriter, r *http.Request) {
	profileID, err := urlParamInt(r, "profileID")
	if err != nil {
		respondError(w, err)
		return
	}

	if pkg := models.PackageType(r.URL.Query().Get("package")); pkg != "" {
		if !models.ValidPackageType(pkg) {
			respondError(w, models.ErrInvalidInput)
			return
		}
		price, err := h.pricing.PackagePriceFor(profileID, pkg)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{"price_cents": price, "package": pkg})
		return
	}

	itemIndex, err := urlParamInt(r, "itemIndex")
	if err != nil {
		respondError(w, err)
		return
	}
	itemType := models.ItemType(r.URL.Query().Get("type"))
	if !models.ValidItemType(itemType) {
		respondError(w, models.ErrInvalidInput)
		return
	}

	price, err := h.pricing.PriceFor(profileID, itemIndex, itemType)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"price_cents": price})
}

// GetUnlockStatus returns the coarse unlock view of a profile for the
// actor.
func (h *PublicHandler) GetUnlockStatus(w http.ResponseWriter, r *http.Request) {
	profileID, err := urlParamInt(r, "profileID")
	if err != nil {
		respondError(w, err)
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	status, err := h.entitlement.Status(actor, profileID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, status)
}
