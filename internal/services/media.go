package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/disintegration/imaging"

	"media-gallery-platform/internal/models"
)

// MediaStore is the catalog mutation surface media uploads need.
type MediaStore interface {
	GetProfile(id int) (*models.Profile, error)
	AddMediaItem(profileID int, itemType models.ItemType, url, previewURL string, isLocked *bool) (*models.MediaItem, error)
	SetItemLock(profileID, itemIndex int, itemType models.ItemType, locked bool) error
	SetCover(profileID, itemIndex int, itemType models.ItemType) error
}

// MediaService handles admin media uploads. Originals go to object
// storage as-is; photos additionally get a low-resolution blurred preview
// that is safe to serve for locked items.
type MediaService struct {
	catalog MediaStore
	storage StorageService
}

// NewMediaService creates a new media service
func NewMediaService(catalog MediaStore, storage StorageService) *MediaService {
	return &MediaService{catalog: catalog, storage: storage}
}

const (
	previewMaxWidth    = 400
	previewBlurSigma   = 12.0
	previewJPEGQuality = 40
)

var allowedContentTypes = map[string]models.ItemType{
	"image/jpeg":      models.ItemPhoto,
	"image/png":       models.ItemPhoto,
	"image/gif":       models.ItemPhoto,
	"image/webp":      models.ItemPhoto,
	"video/mp4":       models.ItemVideo,
	"video/webm":      models.ItemVideo,
	"video/quicktime": models.ItemVideo,
}

// ValidateContentType checks an upload's declared content type against the
// target media type.
func ValidateContentType(contentType string, itemType models.ItemType) error {
	got, ok := allowedContentTypes[strings.ToLower(contentType)]
	if !ok {
		return fmt.Errorf("%w: unsupported content type %q", models.ErrInvalidInput, contentType)
	}
	if got != itemType {
		return fmt.Errorf("%w: content type %q is not a %s", models.ErrInvalidInput, contentType, itemType)
	}
	return nil
}

// UploadItem stores an upload and appends it to the profile's gallery.
// New items default to locked unless isLocked says otherwise.
func (s *MediaService) UploadItem(ctx context.Context, profileID int, itemType models.ItemType, filename, contentType string, reader io.Reader, size int64, isLocked *bool) (*models.MediaItem, error) {
	if !models.ValidItemType(itemType) {
		return nil, fmt.Errorf("%w: unknown item type %q", models.ErrInvalidInput, itemType)
	}
	if err := ValidateContentType(contentType, itemType); err != nil {
		return nil, err
	}
	if _, err := s.catalog.GetProfile(profileID); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	key := MediaKey(profileID, itemType, filename)
	url, err := s.storage.Upload(ctx, key, bytes.NewReader(data), contentType, size)
	if err != nil {
		return nil, err
	}

	previewURL := ""
	if itemType == models.ItemPhoto {
		previewURL, err = s.uploadBlurredPreview(ctx, key, data)
		if err != nil {
			// The original is already stored; a missing preview only means
			// the locked tile renders a placeholder.
			log.Printf("media upload %s: preview generation failed: %v", key, err)
			previewURL = ""
		}
	}

	return s.catalog.AddMediaItem(profileID, itemType, url, previewURL, isLocked)
}

// uploadBlurredPreview renders and stores the locked-state preview for a
// photo. The preview is downscaled and heavily blurred so the full-size
// original never leaves storage for viewers without an unlock.
func (s *MediaService) uploadBlurredPreview(ctx context.Context, mediaKey string, data []byte) (string, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	preview := imaging.Resize(img, previewMaxWidth, 0, imaging.Lanczos)
	preview = imaging.Blur(preview, previewBlurSigma)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, preview, imaging.JPEG, imaging.JPEGQuality(previewJPEGQuality)); err != nil {
		return "", fmt.Errorf("failed to encode preview: %w", err)
	}

	key := PreviewKey(mediaKey)
	return s.storage.Upload(ctx, key, bytes.NewReader(buf.Bytes()), "image/jpeg", int64(buf.Len()))
}

// SetItemLock flips an item's lock flag.
func (s *MediaService) SetItemLock(profileID, itemIndex int, itemType models.ItemType, locked bool) error {
	if !models.ValidItemType(itemType) {
		return fmt.Errorf("%w: unknown item type %q", models.ErrInvalidInput, itemType)
	}
	return s.catalog.SetItemLock(profileID, itemIndex, itemType, locked)
}

// SetCover marks an item as the profile's cover.
func (s *MediaService) SetCover(profileID, itemIndex int, itemType models.ItemType) error {
	if !models.ValidItemType(itemType) {
		return fmt.Errorf("%w: unknown item type %q", models.ErrInvalidInput, itemType)
	}
	return s.catalog.SetCover(profileID, itemIndex, itemType)
}
