package services

import (
	"context"
	"errors"
	"fmt"

	"pustaka/internal/models"
	"pustaka/pkg/storage"
)

// FileStore persists uploaded bytes and returns the URL they are served from.
type FileStore interface {
	Store(ctx context.Context, data []byte, suggestedName string) (string, error)
}

// UploadService stores book files and covers for admins.
type UploadService struct {
	store    FileStore
	maxBytes int
}

// NewUploadService creates an UploadService. maxBytes <= 0 disables the
// size check.
func NewUploadService(store FileStore, maxBytes int) *UploadService {
	return &UploadService{store: store, maxBytes: maxBytes}
}

// Upload stores data and returns its public URL.
func (s *UploadService) Upload(ctx context.Context, actor *models.Session, data []byte, name string) (string, error) {
	if err := requireAdmin(actor); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", invalid("file is required")
	}
	if s.maxBytes > 0 && len(data) > s.maxBytes {
		return "", invalid("file exceeds the %d byte limit", s.maxBytes)
	}

	url, err := s.store.Store(ctx, data, name)
	if err != nil {
		if errors.Is(err, storage.ErrEmptyFile) {
			return "", invalid("file is required")
		}
		return "", fmt.Errorf("failed to store upload: %w", err)
	}
	return url, nil
}
