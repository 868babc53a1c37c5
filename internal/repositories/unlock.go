package repositories

import (
	"database/sql"
	"media-gallery-platform/internal/models"
)

// UnlockRepository handles unlock record data operations
type UnlockRepository struct {
	db *sql.DB
}

// NewUnlockRepository creates a new unlock repository
func NewUnlockRepository(db *sql.DB) *UnlockRepository {
	return &UnlockRepository{db: db}
}

const unlockColumns = `id, actor_id, profile_id, unlock_type, item_index, item_type, payment_id, created_at`

// ListForProfile returns every unlock record an actor holds on a profile.
func (r *UnlockRepository) ListForProfile(actorID string, profileID int) ([]*models.UnlockRecord, error) {
	rows, err := r.db.Query(`
		SELECT `+unlockColumns+`
		FROM unlock_records
		WHERE actor_id = $1 AND profile_id = $2`, actorID, profileID)
	if err != nil {
		return nil, storeErr("failed to list unlock records", err)
	}
	defer rows.Close()

	var records []*models.UnlockRecord
	for rows.Next() {
		rec := &models.UnlockRecord{}
		if err := rows.Scan(&rec.ID, &rec.ActorID, &rec.ProfileID, &rec.Type, &rec.ItemIndex, &rec.ItemType, &rec.PaymentID, &rec.CreatedAt); err != nil {
			return nil, storeErr("failed to scan unlock record", err)
		}
		records = append(records, rec)
	}

	if err = rows.Err(); err != nil {
		return nil, storeErr("error iterating unlock records", err)
	}

	return records, nil
}

// HasPackageUnlock reports whether a package-scoped record of the given
// type exists.
func (r *UnlockRepository) HasPackageUnlock(actorID string, profileID int, unlockType models.UnlockType) (bool, error) {
	var exists bool
	err := r.db.QueryRow(`
		SELECT EXISTS(
			SELECT 1 FROM unlock_records
			WHERE actor_id = $1 AND profile_id = $2 AND unlock_type = $3
		)`, actorID, profileID, unlockType).Scan(&exists)
	if err != nil {
		return false, storeErr("failed to check package unlock", err)
	}

	return exists, nil
}

// HasItemUnlock reports whether an item-scoped record for the exact join
// key exists.
func (r *UnlockRepository) HasItemUnlock(actorID string, profileID, itemIndex int, itemType models.ItemType) (bool, error) {
	var exists bool
	err := r.db.QueryRow(`
		SELECT EXISTS(
			SELECT 1 FROM unlock_records
			WHERE actor_id = $1 AND profile_id = $2 AND unlock_type = $3
			  AND item_index = $4 AND item_type = $5
		)`, actorID, profileID, models.UnlockItem, itemIndex, itemType).Scan(&exists)
	if err != nil {
		return false, storeErr("failed to check item unlock", err)
	}

	return exists, nil
}

// Grant writes one unlock record. Writing the same key twice is a no-op:
// the grant is an upsert on the record's composite key, so reconciliation
// retries are harmless.
func (r *UnlockRepository) Grant(record models.UnlockRecord) error {
	if err := grantTx(r.db, record); err != nil {
		return storeErr("failed to grant unlock", err)
	}
	return nil
}

// execer lets the same grant statement run on a *sql.DB or inside a
// *sql.Tx (reconciliation grants happen inside the payment transaction).
type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

func grantTx(e execer, record models.UnlockRecord) error {
	itemIndex := -1
	itemType := ""
	if record.Type == models.UnlockItem {
		itemIndex = record.ItemIndex
		itemType = string(record.ItemType)
	}

	_, err := e.Exec(`
		INSERT INTO unlock_records (actor_id, profile_id, unlock_type, item_index, item_type, payment_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (actor_id, profile_id, unlock_type, item_index, item_type) DO NOTHING`,
		record.ActorID, record.ProfileID, record.Type, itemIndex, itemType, record.PaymentID)
	return err
}
