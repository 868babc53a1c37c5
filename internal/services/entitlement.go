package services

import (
	"fmt"

	"media-gallery-platform/internal/models"
)

// CatalogStore is the catalog access the resolver and pricing need.
type CatalogStore interface {
	GetProfile(id int) (*models.Profile, error)
	ListMediaItems(profileID int) ([]*models.MediaItem, error)
	GetMediaItem(profileID, itemIndex int, itemType models.ItemType) (*models.MediaItem, error)
	CountMediaItems(profileID int) (photos int, videos int, err error)
	UpdateProfile(id int, req *models.ProfileUpdateRequest) (*models.Profile, error)
}

// UnlockStore is the unlock record access the resolver needs.
type UnlockStore interface {
	ListForProfile(actorID string, profileID int) ([]*models.UnlockRecord, error)
	HasPackageUnlock(actorID string, profileID int, unlockType models.UnlockType) (bool, error)
	HasItemUnlock(actorID string, profileID, itemIndex int, itemType models.ItemType) (bool, error)
	Grant(record models.UnlockRecord) error
}

// EntitlementService decides whether content is viewable right now.
// Absence of an unlock record is a normal state meaning "locked", never
// an error; only a store failure surfaces as an error, and callers must
// then treat the content as locked.
type EntitlementService struct {
	catalog CatalogStore
	unlocks UnlockStore
}

// NewEntitlementService creates a new entitlement service
func NewEntitlementService(catalog CatalogStore, unlocks UnlockStore) *EntitlementService {
	return &EntitlementService{catalog: catalog, unlocks: unlocks}
}

// UnlockCounts reports unlock progress for one profile.
type UnlockCounts struct {
	PhotosUnlocked int `json:"photos_unlocked"`
	VideosUnlocked int `json:"videos_unlocked"`
	TotalPhotos    int `json:"total_photos"`
	TotalVideos    int `json:"total_videos"`
}

// UnlockStatus mirrors the client's coarse unlock view of a profile.
type UnlockStatus struct {
	Photos  bool `json:"photos"`
	Videos  bool `json:"videos"`
	Profile bool `json:"profile"`
}

// IsUnlocked resolves entitlement for one media item. Resolution order,
// first match wins:
//  1. guests only see items explicitly marked unlocked
//  2. the profile-level unlock flag opens everything
//  3. a package-scoped unlock record covering the item's type
//  4. an item-scoped unlock record for the exact join key
//  5. the item's own lock flag, unset meaning locked
func (s *EntitlementService) IsUnlocked(actor models.Actor, profileID, itemIndex int, itemType models.ItemType) (bool, error) {
	item, err := s.catalog.GetMediaItem(profileID, itemIndex, itemType)
	if err != nil {
		return false, err
	}

	if actor.IsGuest {
		// Server-side unlocks are never attributed to guests.
		return !item.Locked(), nil
	}

	profile, err := s.catalog.GetProfile(profileID)
	if err != nil {
		return false, err
	}
	if profile.IsUnlocked {
		return true, nil
	}

	pkgType := models.UnlockPhotos
	if itemType == models.ItemVideo {
		pkgType = models.UnlockVideos
	}
	if ok, err := s.unlocks.HasPackageUnlock(actor.ID, profileID, pkgType); err != nil {
		return false, err
	} else if ok {
		return true, nil
	}
	if ok, err := s.unlocks.HasPackageUnlock(actor.ID, profileID, models.UnlockProfile); err != nil {
		return false, err
	} else if ok {
		return true, nil
	}

	if ok, err := s.unlocks.HasItemUnlock(actor.ID, profileID, itemIndex, itemType); err != nil {
		return false, err
	} else if ok {
		return true, nil
	}

	return !item.Locked(), nil
}

// UnlockedCount reports how many items of each type the actor can view,
// for progress display.
func (s *EntitlementService) UnlockedCount(actor models.Actor, profileID int) (*UnlockCounts, error) {
	profile, err := s.catalog.GetProfile(profileID)
	if err != nil {
		return nil, err
	}

	items, err := s.catalog.ListMediaItems(profileID)
	if err != nil {
		return nil, err
	}

	var records []*models.UnlockRecord
	if !actor.IsGuest {
		records, err = s.unlocks.ListForProfile(actor.ID, profileID)
		if err != nil {
			return nil, err
		}
	}

	counts := &UnlockCounts{}
	for _, item := range items {
		if item.ItemType == models.ItemPhoto {
			counts.TotalPhotos++
		} else {
			counts.TotalVideos++
		}

		if !s.itemUnlocked(actor, profile, item, records) {
			continue
		}
		if item.ItemType == models.ItemPhoto {
			counts.PhotosUnlocked++
		} else {
			counts.VideosUnlocked++
		}
	}

	return counts, nil
}

// itemUnlocked applies the IsUnlocked resolution order against records
// already in hand, avoiding one query per item.
func (s *EntitlementService) itemUnlocked(actor models.Actor, profile *models.Profile, item *models.MediaItem, records []*models.UnlockRecord) bool {
	if actor.IsGuest {
		return !item.Locked()
	}
	if profile.IsUnlocked {
		return true
	}
	for _, rec := range records {
		if rec.Covers(item.ItemIndex, item.ItemType) {
			return true
		}
	}
	return !item.Locked()
}

// IsPackageFullyUnlocked reports whether every item of a type is viewable
// by the actor, either through the package flag or item by item. A
// profile with no items of the type is only "fully unlocked" through an
// explicit flag or package record.
func (s *EntitlementService) IsPackageFullyUnlocked(actor models.Actor, profileID int, itemType models.ItemType) (bool, error) {
	profile, err := s.catalog.GetProfile(profileID)
	if err != nil {
		return false, err
	}
	if profile.IsUnlocked {
		return true, nil
	}

	if !actor.IsGuest {
		pkgType := models.UnlockPhotos
		if itemType == models.ItemVideo {
			pkgType = models.UnlockVideos
		}
		if ok, err := s.unlocks.HasPackageUnlock(actor.ID, profileID, pkgType); err != nil {
			return false, err
		} else if ok {
			return true, nil
		}
	}

	counts, err := s.UnlockedCount(actor, profileID)
	if err != nil {
		return false, err
	}
	if itemType == models.ItemVideo {
		return counts.TotalVideos > 0 && counts.VideosUnlocked == counts.TotalVideos, nil
	}
	return counts.TotalPhotos > 0 && counts.PhotosUnlocked == counts.TotalPhotos, nil
}

// Status returns the coarse per-profile unlock view used by gallery
// rendering.
func (s *EntitlementService) Status(actor models.Actor, profileID int) (*UnlockStatus, error) {
	profile, err := s.catalog.GetProfile(profileID)
	if err != nil {
		return nil, err
	}

	status := &UnlockStatus{Profile: profile.IsUnlocked}
	if status.Profile {
		status.Photos = true
		status.Videos = true
		return status, nil
	}

	status.Photos, err = s.IsPackageFullyUnlocked(actor, profileID, models.ItemPhoto)
	if err != nil {
		return nil, err
	}
	status.Videos, err = s.IsPackageFullyUnlocked(actor, profileID, models.ItemVideo)
	if err != nil {
		return nil, err
	}

	return status, nil
}

// GrantPackage writes an admin-authorized package unlock without a
// payment (a comp). Reuses the same upsert the reconciler uses, so a
// repeated grant is a no-op.
func (s *EntitlementService) GrantPackage(actorID string, profileID int, pkg models.PackageType) error {
	if actorID == "" {
		return fmt.Errorf("%w: actor id is required", models.ErrInvalidInput)
	}
	if !models.ValidPackageType(pkg) {
		return fmt.Errorf("%w: unknown package type %q", models.ErrInvalidInput, pkg)
	}
	if _, err := s.catalog.GetProfile(profileID); err != nil {
		return err
	}
	return s.unlocks.Grant(models.PackageUnlock(actorID, profileID, pkg))
}
