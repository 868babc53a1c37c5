package services

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/google/uuid"

	"media-gallery-platform/internal/models"
)

// StorageService abstracts object storage for gallery media.
type StorageService interface {
	// Upload stores an object and returns its public URL.
	Upload(ctx context.Context, key string, reader io.Reader, contentType string, size int64) (string, error)

	// Delete removes an object. Deleting a missing object is not an error.
	Delete(ctx context.Context, key string) error

	// GetURL returns the public URL for a stored object.
	GetURL(key string) string

	// Exists reports whether an object is present.
	Exists(ctx context.Context, key string) (bool, error)

	// HealthCheck verifies the storage backend is reachable.
	HealthCheck(ctx context.Context) error
}

// MediaKey builds the storage key for an uploaded gallery item. Keys are
// random per upload so replacing an item never serves a stale cached
// object.
func MediaKey(profileID int, itemType models.ItemType, filename string) string {
	ext := path.Ext(filename)
	return fmt.Sprintf("profiles/%d/%s/%s%s", profileID, itemType, uuid.New().String(), ext)
}

// PreviewKey builds the storage key for the blurred preview that stands
// in for a locked item.
func PreviewKey(mediaKey string) string {
	dir, file := path.Split(mediaKey)
	ext := path.Ext(file)
	return dir + "preview/" + file[:len(file)-len(ext)] + "_blur.jpg"
}
