package services

import (
	"fmt"

	"media-gallery-platform/internal/models"
)

// PriceStore is the price override access the pricing service needs.
type PriceStore interface {
	GetOverride(profileID, itemIndex int, itemType models.ItemType) (*int, error)
	ListOverrides(profileID int) ([]*models.PriceOverride, error)
	UpsertOverride(profileID, itemIndex int, itemType models.ItemType, priceCents int) error
}

// PricingService resolves the price of items and packages. All amounts
// are integer cents; decimal display is the caller's problem.
type PricingService struct {
	catalog CatalogStore
	prices  PriceStore
}

// NewPricingService creates a new pricing service
func NewPricingService(catalog CatalogStore, prices PriceStore) *PricingService {
	return &PricingService{catalog: catalog, prices: prices}
}

// PriceFor resolves the price of one media item: explicit per-item
// override, then the profile's per-type default, then the system default.
func (s *PricingService) PriceFor(profileID, itemIndex int, itemType models.ItemType) (int, error) {
	if !models.ValidItemType(itemType) {
		return 0, fmt.Errorf("%w: unknown item type %q", models.ErrInvalidInput, itemType)
	}

	if _, err := s.catalog.GetMediaItem(profileID, itemIndex, itemType); err != nil {
		return 0, err
	}

	override, err := s.prices.GetOverride(profileID, itemIndex, itemType)
	if err != nil {
		return 0, err
	}
	if override != nil {
		return *override, nil
	}

	profile, err := s.catalog.GetProfile(profileID)
	if err != nil {
		return 0, err
	}

	if itemType == models.ItemVideo {
		if profile.VideoPriceCents != nil {
			return *profile.VideoPriceCents, nil
		}
		return models.DefaultVideoPriceCents, nil
	}
	if profile.PhotoPriceCents != nil {
		return *profile.PhotoPriceCents, nil
	}
	return models.DefaultPhotoPriceCents, nil
}

// PackagePriceFor resolves the price of a whole-package purchase: the
// profile's package price, then the system default.
func (s *PricingService) PackagePriceFor(profileID int, pkg models.PackageType) (int, error) {
	if !models.ValidPackageType(pkg) {
		return 0, fmt.Errorf("%w: unknown package type %q", models.ErrInvalidInput, pkg)
	}

	profile, err := s.catalog.GetProfile(profileID)
	if err != nil {
		return 0, err
	}

	if pkg == models.PackageVideos {
		if profile.VideoPackagePriceCents != nil {
			return *profile.VideoPackagePriceCents, nil
		}
		return models.DefaultVideoPackagePriceCents, nil
	}
	if profile.PhotoPackagePriceCents != nil {
		return *profile.PhotoPackagePriceCents, nil
	}
	return models.DefaultPhotoPackagePriceCents, nil
}

// SetItemPrice upserts a per-item override, enforcing the price floor
// before anything is persisted.
func (s *PricingService) SetItemPrice(profileID, itemIndex int, itemType models.ItemType, priceCents int) error {
	if !models.ValidItemType(itemType) {
		return fmt.Errorf("%w: unknown item type %q", models.ErrInvalidInput, itemType)
	}
	if err := models.ValidatePriceCents(priceCents); err != nil {
		return err
	}
	if _, err := s.catalog.GetMediaItem(profileID, itemIndex, itemType); err != nil {
		return err
	}

	return s.prices.UpsertOverride(profileID, itemIndex, itemType, priceCents)
}

// SetProfileDefaults updates a profile's per-type and package prices,
// enforcing the floor on every price present in the request.
func (s *PricingService) SetProfileDefaults(profileID int, req *models.ProfileUpdateRequest) (*models.Profile, error) {
	for _, cents := range []*int{
		req.PhotoPriceCents,
		req.VideoPriceCents,
		req.PhotoPackagePriceCents,
		req.VideoPackagePriceCents,
	} {
		if cents == nil {
			continue
		}
		if err := models.ValidatePriceCents(*cents); err != nil {
			return nil, err
		}
	}

	return s.catalog.UpdateProfile(profileID, req)
}

// ListOverrides returns a profile's per-item price overrides.
func (s *PricingService) ListOverrides(profileID int) ([]*models.PriceOverride, error) {
	return s.prices.ListOverrides(profileID)
}
