package models

import (
	"errors"
	"strings"
	"time"
)

// ItemType distinguishes the two media collections of a profile. Each
// collection is independently ordered by item index.
type ItemType string

const (
	ItemPhoto ItemType = "photo"
	ItemVideo ItemType = "video"
)

// ValidItemType reports whether t is a known media type.
func ValidItemType(t ItemType) bool {
	return t == ItemPhoto || t == ItemVideo
}

// PackageType identifies a bundle purchase covering every item of one
// type for a profile.
type PackageType string

const (
	PackagePhotos PackageType = "photos"
	PackageVideos PackageType = "videos"
)

// ValidPackageType reports whether t is a known package type.
func ValidPackageType(t PackageType) bool {
	return t == PackagePhotos || t == PackageVideos
}

// ItemTypeFor returns the media type a package covers.
func (t PackageType) ItemType() ItemType {
	if t == PackageVideos {
		return ItemVideo
	}
	return ItemPhoto
}

// Profile is a media gallery managed by an admin. Per-type default prices
// and package prices are stored in cents; nil means "use the system
// default". IsUnlocked is the package-level override that makes the whole
// profile viewable by everyone.
type Profile struct {
	ID                     int       `json:"id" db:"id"`
	Name                   string    `json:"name" db:"name"`
	Description            string    `json:"description" db:"description"`
	IsUnlocked             bool      `json:"is_unlocked" db:"is_unlocked"`
	PhotoPriceCents        *int      `json:"photo_price_cents,omitempty" db:"photo_price_cents"`
	VideoPriceCents        *int      `json:"video_price_cents,omitempty" db:"video_price_cents"`
	PhotoPackagePriceCents *int      `json:"photo_package_price_cents,omitempty" db:"photo_package_price_cents"`
	VideoPackagePriceCents *int      `json:"video_package_price_cents,omitempty" db:"video_package_price_cents"`
	CreatedAt              time.Time `json:"created_at" db:"created_at"`
	UpdatedAt              time.Time `json:"updated_at" db:"updated_at"`

	Photos []*MediaItem `json:"photos,omitempty"`
	Videos []*MediaItem `json:"videos,omitempty"`
}

// MediaItem is one photo or video of a profile. ItemIndex is the stable
// 0-based position within its type; it is the join key referenced by
// price overrides, unlock records and payment metadata, so it must never
// be reassigned once a payment references it.
//
// IsLocked is tri-state: nil means the flag was never set, which the
// entitlement resolver treats as locked.
type MediaItem struct {
	ID         int       `json:"id" db:"id"`
	ProfileID  int       `json:"profile_id" db:"profile_id"`
	ItemType   ItemType  `json:"item_type" db:"item_type"`
	ItemIndex  int       `json:"item_index" db:"item_index"`
	URL        string    `json:"url,omitempty" db:"url"`
	PreviewURL string    `json:"preview_url,omitempty" db:"preview_url"`
	IsCover    bool      `json:"is_cover" db:"is_cover"`
	IsLocked   *bool     `json:"is_locked,omitempty" db:"is_locked"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Locked resolves the tri-state lock flag, failing closed: an unset flag
// means locked.
func (m *MediaItem) Locked() bool {
	return m.IsLocked == nil || *m.IsLocked
}

// ProfileCreateRequest represents the data needed to create a profile
type ProfileCreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Validate validates profile creation data
func (req *ProfileCreateRequest) Validate() error {
	if strings.TrimSpace(req.Name) == "" {
		return errors.New("profile name is required")
	}
	if len(req.Name) > 255 {
		return errors.New("profile name must be less than 255 characters")
	}
	if len(req.Description) > 5000 {
		return errors.New("profile description must be less than 5000 characters")
	}
	return nil
}

// ProfileUpdateRequest represents the fields an admin may change on a
// profile. Price fields are validated against the price floor by the
// pricing service before persistence.
type ProfileUpdateRequest struct {
	Name                   *string `json:"name,omitempty"`
	Description            *string `json:"description,omitempty"`
	IsUnlocked             *bool   `json:"is_unlocked,omitempty"`
	PhotoPriceCents        *int    `json:"photo_price_cents,omitempty"`
	VideoPriceCents        *int    `json:"video_price_cents,omitempty"`
	PhotoPackagePriceCents *int    `json:"photo_package_price_cents,omitempty"`
	VideoPackagePriceCents *int    `json:"video_package_price_cents,omitempty"`
}

// Validate validates profile update data
func (req *ProfileUpdateRequest) Validate() error {
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return errors.New("profile name cannot be empty")
	}
	if req.Name != nil && len(*req.Name) > 255 {
		return errors.New("profile name must be less than 255 characters")
	}
	return nil
}
