package repositories

import (
	"database/sql"
	"errors"
	"time"

	"media-gallery-platform/internal/models"
)

// PriceRepository handles per-item price override data operations
type PriceRepository struct {
	db *sql.DB
}

// NewPriceRepository creates a new price repository
func NewPriceRepository(db *sql.DB) *PriceRepository {
	return &PriceRepository{db: db}
}

// GetOverride returns the explicit price for one item, or nil when no
// override exists. Absence is a normal state, not an error.
func (r *PriceRepository) GetOverride(profileID, itemIndex int, itemType models.ItemType) (*int, error) {
	var cents int
	err := r.db.QueryRow(`
		SELECT price_cents FROM item_prices
		WHERE profile_id = $1 AND item_index = $2 AND item_type = $3`,
		profileID, itemIndex, itemType).Scan(&cents)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, storeErr("failed to get price override", err)
	}

	return &cents, nil
}

// ListOverrides returns all overrides for a profile.
func (r *PriceRepository) ListOverrides(profileID int) ([]*models.PriceOverride, error) {
	rows, err := r.db.Query(`
		SELECT id, profile_id, item_index, item_type, price_cents, created_at, updated_at
		FROM item_prices
		WHERE profile_id = $1
		ORDER BY item_type, item_index`, profileID)
	if err != nil {
		return nil, storeErr("failed to list price overrides", err)
	}
	defer rows.Close()

	var overrides []*models.PriceOverride
	for rows.Next() {
		o := &models.PriceOverride{}
		if err := rows.Scan(&o.ID, &o.ProfileID, &o.ItemIndex, &o.ItemType, &o.PriceCents, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, storeErr("failed to scan price override", err)
		}
		overrides = append(overrides, o)
	}

	if err = rows.Err(); err != nil {
		return nil, storeErr("error iterating price overrides", err)
	}

	return overrides, nil
}

// UpsertOverride writes the price for one item, keyed on the composite
// (profile_id, item_index, item_type). The floor is validated by the
// pricing service before this is reached; the CHECK constraint is the
// backstop.
func (r *PriceRepository) UpsertOverride(profileID, itemIndex int, itemType models.ItemType, priceCents int) error {
	now := time.Now()
	_, err := r.db.Exec(`
		INSERT INTO item_prices (profile_id, item_index, item_type, price_cents, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (profile_id, item_index, item_type)
		DO UPDATE SET price_cents = EXCLUDED.price_cents, updated_at = EXCLUDED.updated_at`,
		profileID, itemIndex, itemType, priceCents, now)
	if err != nil {
		return storeErr("failed to upsert price override", err)
	}

	return nil
}
