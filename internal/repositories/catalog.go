package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"media-gallery-platform/internal/models"
)

// storeErr wraps a driver-level failure so callers can distinguish "the
// store is unreachable" from domain not-found errors and fail closed.
func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w (%v)", op, models.ErrStoreUnavailable, err)
}

// CatalogRepository handles profile and media item data operations
type CatalogRepository struct {
	db *sql.DB
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(db *sql.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

const profileColumns = `id, name, description, is_unlocked, photo_price_cents, video_price_cents,
	photo_package_price_cents, video_package_price_cents, created_at, updated_at`

func scanProfile(row interface{ Scan(...interface{}) error }) (*models.Profile, error) {
	p := &models.Profile{}
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.IsUnlocked,
		&p.PhotoPriceCents,
		&p.VideoPriceCents,
		&p.PhotoPackagePriceCents,
		&p.VideoPackagePriceCents,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

// CreateProfile creates a new profile
func (r *CatalogRepository) CreateProfile(req *models.ProfileCreateRequest) (*models.Profile, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO profiles (name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING %s`, profileColumns)

	now := time.Now()
	profile, err := scanProfile(r.db.QueryRow(query, req.Name, req.Description, now, now))
	if err != nil {
		return nil, storeErr("failed to create profile", err)
	}

	return profile, nil
}

// GetProfile retrieves a profile by ID, without its media items.
func (r *CatalogRepository) GetProfile(id int) (*models.Profile, error) {
	query := fmt.Sprintf("SELECT %s FROM profiles WHERE id = $1", profileColumns)

	profile, err := scanProfile(r.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrProfileNotFound
		}
		return nil, storeErr("failed to get profile", err)
	}

	return profile, nil
}

// ListProfiles retrieves all profiles ordered by creation time.
func (r *CatalogRepository) ListProfiles() ([]*models.Profile, error) {
	query := fmt.Sprintf("SELECT %s FROM profiles ORDER BY created_at DESC", profileColumns)

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, storeErr("failed to list profiles", err)
	}
	defer rows.Close()

	var profiles []*models.Profile
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, storeErr("failed to scan profile", err)
		}
		profiles = append(profiles, profile)
	}

	if err = rows.Err(); err != nil {
		return nil, storeErr("error iterating profiles", err)
	}

	return profiles, nil
}

// UpdateProfile applies the non-nil fields of req to a profile.
func (r *CatalogRepository) UpdateProfile(id int, req *models.ProfileUpdateRequest) (*models.Profile, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	query := fmt.Sprintf(`
		UPDATE profiles
		SET name = COALESCE($2, name),
		    description = COALESCE($3, description),
		    is_unlocked = COALESCE($4, is_unlocked),
		    photo_price_cents = COALESCE($5, photo_price_cents),
		    video_price_cents = COALESCE($6, video_price_cents),
		    photo_package_price_cents = COALESCE($7, photo_package_price_cents),
		    video_package_price_cents = COALESCE($8, video_package_price_cents),
		    updated_at = $9
		WHERE id = $1
		RETURNING %s`, profileColumns)

	profile, err := scanProfile(r.db.QueryRow(
		query,
		id,
		req.Name,
		req.Description,
		req.IsUnlocked,
		req.PhotoPriceCents,
		req.VideoPriceCents,
		req.PhotoPackagePriceCents,
		req.VideoPackagePriceCents,
		time.Now(),
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrProfileNotFound
		}
		return nil, storeErr("failed to update profile", err)
	}

	return profile, nil
}

// DeleteProfile deletes a profile and, via cascade, its media, prices
// and unlock records. Only explicit admin action reaches this.
func (r *CatalogRepository) DeleteProfile(id int) error {
	result, err := r.db.Exec("DELETE FROM profiles WHERE id = $1", id)
	if err != nil {
		return storeErr("failed to delete profile", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return storeErr("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return models.ErrProfileNotFound
	}

	return nil
}

const mediaColumns = `id, profile_id, item_type, item_index, url, preview_url, is_cover, is_locked, created_at`

func scanMediaItem(row interface{ Scan(...interface{}) error }) (*models.MediaItem, error) {
	m := &models.MediaItem{}
	err := row.Scan(
		&m.ID,
		&m.ProfileID,
		&m.ItemType,
		&m.ItemIndex,
		&m.URL,
		&m.PreviewURL,
		&m.IsCover,
		&m.IsLocked,
		&m.CreatedAt,
	)
	return m, err
}

// ListMediaItems retrieves all media items of a profile ordered by type
// and item index.
func (r *CatalogRepository) ListMediaItems(profileID int) ([]*models.MediaItem, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM media_items
		WHERE profile_id = $1
		ORDER BY item_type, item_index`, mediaColumns)

	rows, err := r.db.Query(query, profileID)
	if err != nil {
		return nil, storeErr("failed to list media items", err)
	}
	defer rows.Close()

	var items []*models.MediaItem
	for rows.Next() {
		item, err := scanMediaItem(rows)
		if err != nil {
			return nil, storeErr("failed to scan media item", err)
		}
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, storeErr("error iterating media items", err)
	}

	return items, nil
}

// GetMediaItem retrieves one media item by its join key.
func (r *CatalogRepository) GetMediaItem(profileID, itemIndex int, itemType models.ItemType) (*models.MediaItem, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM media_items
		WHERE profile_id = $1 AND item_index = $2 AND item_type = $3`, mediaColumns)

	item, err := scanMediaItem(r.db.QueryRow(query, profileID, itemIndex, itemType))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrItemNotFound
		}
		return nil, storeErr("failed to get media item", err)
	}

	return item, nil
}

// CountMediaItems returns the number of items of each type for a profile.
func (r *CatalogRepository) CountMediaItems(profileID int) (photos int, videos int, err error) {
	query := `
		SELECT
			COUNT(CASE WHEN item_type = 'photo' THEN 1 END),
			COUNT(CASE WHEN item_type = 'video' THEN 1 END)
		FROM media_items
		WHERE profile_id = $1`

	if err := r.db.QueryRow(query, profileID).Scan(&photos, &videos); err != nil {
		return 0, 0, storeErr("failed to count media items", err)
	}

	return photos, videos, nil
}

// AddMediaItem appends an item at the next free index of its type. Item
// indexes are append-only: they are referenced by price overrides, unlock
// records and payment metadata, so existing items are never renumbered.
func (r *CatalogRepository) AddMediaItem(profileID int, itemType models.ItemType, url, previewURL string, isLocked *bool) (*models.MediaItem, error) {
	if !models.ValidItemType(itemType) {
		return nil, fmt.Errorf("%w: unknown item type %q", models.ErrInvalidInput, itemType)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return nil, storeErr("failed to begin transaction", err)
	}
	defer tx.Rollback()

	var nextIndex int
	err = tx.QueryRow(`
		SELECT COALESCE(MAX(item_index) + 1, 0)
		FROM media_items
		WHERE profile_id = $1 AND item_type = $2`, profileID, itemType).Scan(&nextIndex)
	if err != nil {
		return nil, storeErr("failed to compute next item index", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO media_items (profile_id, item_type, item_index, url, preview_url, is_cover, is_locked, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING %s`, mediaColumns)

	// First item of a type becomes the cover.
	item, err := scanMediaItem(tx.QueryRow(query, profileID, itemType, nextIndex, url, previewURL, nextIndex == 0, isLocked, time.Now()))
	if err != nil {
		return nil, storeErr("failed to add media item", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, storeErr("failed to commit media item", err)
	}

	return item, nil
}

// SetItemLock sets the explicit lock flag on one media item.
func (r *CatalogRepository) SetItemLock(profileID, itemIndex int, itemType models.ItemType, locked bool) error {
	result, err := r.db.Exec(`
		UPDATE media_items SET is_locked = $4
		WHERE profile_id = $1 AND item_index = $2 AND item_type = $3`,
		profileID, itemIndex, itemType, locked)
	if err != nil {
		return storeErr("failed to set item lock", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return storeErr("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return models.ErrItemNotFound
	}

	return nil
}

// SetCover marks one item as the cover of its type, clearing the flag on
// every sibling of the same type in the same transaction so exactly one
// cover per type survives the write.
func (r *CatalogRepository) SetCover(profileID, itemIndex int, itemType models.ItemType) error {
	tx, err := r.db.Begin()
	if err != nil {
		return storeErr("failed to begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		UPDATE media_items SET is_cover = FALSE
		WHERE profile_id = $1 AND item_type = $2`, profileID, itemType); err != nil {
		return storeErr("failed to clear cover flags", err)
	}

	result, err := tx.Exec(`
		UPDATE media_items SET is_cover = TRUE
		WHERE profile_id = $1 AND item_index = $2 AND item_type = $3`,
		profileID, itemIndex, itemType)
	if err != nil {
		return storeErr("failed to set cover flag", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return storeErr("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return models.ErrItemNotFound
	}

	if err = tx.Commit(); err != nil {
		return storeErr("failed to commit cover change", err)
	}

	return nil
}
