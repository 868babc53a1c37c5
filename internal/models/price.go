package models

import "time"

// System default prices in cents, used when neither a per-item override
// nor a profile-level default is set.
const (
	DefaultPhotoPriceCents        = 499
	DefaultVideoPriceCents        = 999
	DefaultPhotoPackagePriceCents = 1999
	DefaultVideoPackagePriceCents = 3999

	// MinPriceCents is the business floor for any admin-set price.
	MinPriceCents = 50
)

// PriceOverride pins the price of one media item, keyed by
// (profile_id, item_index, item_type). At most one override exists per
// key; writes are upserts on the composite.
type PriceOverride struct {
	ID         int       `json:"id" db:"id"`
	ProfileID  int       `json:"profile_id" db:"profile_id"`
	ItemIndex  int       `json:"item_index" db:"item_index"`
	ItemType   ItemType  `json:"item_type" db:"item_type"`
	PriceCents int       `json:"price_cents" db:"price_cents"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// ValidatePriceCents enforces the price floor on admin-set prices.
func ValidatePriceCents(cents int) error {
	if cents < MinPriceCents {
		return ErrInvalidPrice
	}
	return nil
}
