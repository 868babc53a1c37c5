package models

import "time"

// UnlockType is the scope of an unlock record. Item-scoped records name an
// exact (item_index, item_type) pair; the package scopes cover every item
// of a type, or the whole profile.
type UnlockType string

const (
	UnlockItem    UnlockType = "item"
	UnlockPhotos  UnlockType = "photos"
	UnlockVideos  UnlockType = "videos"
	UnlockProfile UnlockType = "profile"
)

// UnlockRecord is durable proof that an actor purchased access to an item
// or package. Existence is the entitlement: records never expire and are
// only written by payment reconciliation or an explicit admin grant.
//
// ItemIndex and ItemType are only meaningful when Type is UnlockItem.
type UnlockRecord struct {
	ID        int        `json:"id" db:"id"`
	ActorID   string     `json:"actor_id" db:"actor_id"`
	ProfileID int        `json:"profile_id" db:"profile_id"`
	Type      UnlockType `json:"unlock_type" db:"unlock_type"`
	ItemIndex int        `json:"item_index" db:"item_index"`
	ItemType  ItemType   `json:"item_type" db:"item_type"`
	PaymentID *int       `json:"payment_id,omitempty" db:"payment_id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// ItemUnlock builds an item-scoped unlock record.
func ItemUnlock(actorID string, profileID, itemIndex int, itemType ItemType) UnlockRecord {
	return UnlockRecord{
		ActorID:   actorID,
		ProfileID: profileID,
		Type:      UnlockItem,
		ItemIndex: itemIndex,
		ItemType:  itemType,
	}
}

// PackageUnlock builds a package-scoped unlock record covering every item
// of the package's type.
func PackageUnlock(actorID string, profileID int, pkg PackageType) UnlockRecord {
	t := UnlockPhotos
	if pkg == PackageVideos {
		t = UnlockVideos
	}
	return UnlockRecord{
		ActorID:   actorID,
		ProfileID: profileID,
		Type:      t,
	}
}

// Covers reports whether this record entitles the actor to the given item.
func (u *UnlockRecord) Covers(itemIndex int, itemType ItemType) bool {
	switch u.Type {
	case UnlockProfile:
		return true
	case UnlockPhotos:
		return itemType == ItemPhoto
	case UnlockVideos:
		return itemType == ItemVideo
	case UnlockItem:
		return u.ItemIndex == itemIndex && u.ItemType == itemType
	}
	return false
}
