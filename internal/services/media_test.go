package services

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"io"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media-gallery-platform/internal/models"
)

// memoryStorage is an in-memory StorageService for testing
type memoryStorage struct {
	objects map[string][]byte
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: make(map[string][]byte)}
}

func (m *memoryStorage) Upload(ctx context.Context, key string, reader io.Reader, contentType string, size int64) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	m.objects[key] = data
	return m.GetURL(key), nil
}

func (m *memoryStorage) Delete(ctx context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func (m *memoryStorage) GetURL(key string) string {
	return "https://cdn.test/" + key
}

func (m *memoryStorage) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := m.objects[key]
	return ok, nil
}

func (m *memoryStorage) HealthCheck(ctx context.Context) error { return nil }

func testJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 800, 600))
	for x := 0; x < 800; x += 10 {
		for y := 0; y < 600; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 50, B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.JPEG))
	return buf.Bytes()
}

func TestMediaService_UploadPhotoGeneratesPreview(t *testing.T) {
	catalog := newFakeCatalog()
	storage := newMemoryStorage()
	svc := NewMediaService(catalog, storage)

	catalog.addProfile(&models.Profile{ID: 1})

	item, err := svc.UploadItem(context.Background(), 1, models.ItemPhoto, "shot.jpg", "image/jpeg",
		bytes.NewReader(testJPEG(t)), 1024, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, item.URL)
	assert.NotEmpty(t, item.PreviewURL)
	assert.Contains(t, item.PreviewURL, "_blur.jpg")

	// Both original and preview landed in storage, preview is smaller.
	var originalKey, previewKey string
	for key := range storage.objects {
		if strings.Contains(key, "preview/") {
			previewKey = key
		} else {
			originalKey = key
		}
	}
	require.NotEmpty(t, originalKey)
	require.NotEmpty(t, previewKey)
	assert.Less(t, len(storage.objects[previewKey]), len(storage.objects[originalKey]))
}

func TestMediaService_UploadVideoSkipsPreview(t *testing.T) {
	catalog := newFakeCatalog()
	storage := newMemoryStorage()
	svc := NewMediaService(catalog, storage)

	catalog.addProfile(&models.Profile{ID: 1})

	item, err := svc.UploadItem(context.Background(), 1, models.ItemVideo, "clip.mp4", "video/mp4",
		bytes.NewReader([]byte("not really a video")), 18, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, item.URL)
	assert.Empty(t, item.PreviewURL)
	assert.Len(t, storage.objects, 1)
}

func TestMediaService_UploadRejectsBadInput(t *testing.T) {
	catalog := newFakeCatalog()
	svc := NewMediaService(catalog, newMemoryStorage())

	catalog.addProfile(&models.Profile{ID: 1})

	_, err := svc.UploadItem(context.Background(), 1, models.ItemPhoto, "x.exe", "application/octet-stream",
		bytes.NewReader(nil), 0, nil)
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	// Declared type must match the target collection.
	_, err = svc.UploadItem(context.Background(), 1, models.ItemVideo, "shot.jpg", "image/jpeg",
		bytes.NewReader(nil), 0, nil)
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = svc.UploadItem(context.Background(), 99, models.ItemPhoto, "shot.jpg", "image/jpeg",
		bytes.NewReader(nil), 0, nil)
	assert.ErrorIs(t, err, models.ErrProfileNotFound)
}

func TestPreviewKey(t *testing.T) {
	key := PreviewKey("profiles/1/photo/abc123.jpg")
	assert.Equal(t, "profiles/1/photo/preview/abc123_blur.jpg", key)
}
