package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"strings"

	"github.com/google/uuid"

	"github.com/atinyakov/stoneworks/internal/models"
)

// ObjectStore persists uploaded files and resolves their public URL.
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	URL(key string) string
}

// UploadService turns submitted image data into a URL the site can reference.
type UploadService struct {
	store ObjectStore
}

// NewUploadService returns an UploadService backed by store. With a nil
// store every image is returned unchanged.
func NewUploadService(store ObjectStore) *UploadService {
	return &UploadService{store: store}
}

var imageExtensions = map[string]string{
	"image/jpeg":    ".jpg",
	"image/png":     ".png",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
	"image/avif":    ".avif",
}

// Store uploads a data: URL and returns the object's URL. Plain URLs and
// paths, and any image when no store is configured, are returned as given.
func (s *UploadService) Store(ctx context.Context, image string) (string, error) {
	if s.store == nil || !strings.HasPrefix(image, "data:") {
		return image, nil
	}

	contentType, data, err := decodeDataURL(image)
	if err != nil {
		return "", err
	}

	key := "uploads/" + uuid.NewString() + extensionFor(contentType)
	if err := s.store.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return "", fmt.Errorf("store %s: %w", key, err)
	}
	return s.store.URL(key), nil
}

// decodeDataURL parses data:<type>;base64,<payload>. Only base64 image
// payloads are accepted.
func decodeDataURL(image string) (string, []byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(image, "data:"), ",")
	if !ok {
		return "", nil, models.NewValidationError("image", "malformed data URL")
	}
	contentType, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return "", nil, models.NewValidationError("image", "data URL must be base64 encoded")
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		return "", nil, models.NewValidationError("image", "data URL must contain an image")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, models.NewValidationError("image", "invalid base64 payload")
	}
	if len(data) == 0 {
		return "", nil, models.NewValidationError("image", "no image data provided")
	}
	return mediaType, data, nil
}

func extensionFor(contentType string) string {
	if ext, ok := imageExtensions[contentType]; ok {
		return ext
	}
	if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
		return exts[0]
	}
	return ""
}
