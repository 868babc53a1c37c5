package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FallbackStorageService implements StorageService on the local
// filesystem for development and tests when R2 is not configured.
type FallbackStorageService struct {
	baseDir string
	baseURL string
}

// NewFallbackStorageService creates a local-disk storage service
func NewFallbackStorageService(baseDir, baseURL string) *FallbackStorageService {
	return &FallbackStorageService{
		baseDir: baseDir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

func (s *FallbackStorageService) path(key string) string {
	return filepath.Join(s.baseDir, filepath.FromSlash(strings.TrimPrefix(key, "/")))
}

// Upload writes the object under the base directory and returns its URL
func (s *FallbackStorageService) Upload(ctx context.Context, key string, reader io.Reader, contentType string, size int64) (string, error) {
	dst := s.path(key)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("failed to create storage directory: %w", err)
	}

	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, reader); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return s.GetURL(key), nil
}

// Delete removes the object; a missing file is not an error
func (s *FallbackStorageService) Delete(ctx context.Context, key string) error {
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// GetURL returns the public URL for an object
func (s *FallbackStorageService) GetURL(key string) string {
	return s.baseURL + "/" + strings.TrimPrefix(key, "/")
}

// Exists checks whether the object is present on disk
func (s *FallbackStorageService) Exists(ctx context.Context, key string) (bool, error) {
	if _, err := os.Stat(s.path(key)); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// HealthCheck verifies the base directory is writable
func (s *FallbackStorageService) HealthCheck(ctx context.Context) error {
	if err := os.MkdirAll(s.baseDir, 0o755); err != nil {
		return fmt.Errorf("storage directory not writable: %w", err)
	}
	return nil
}
