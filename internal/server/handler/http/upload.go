package http

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/stoneworks/internal/models"
	"github.com/atinyakov/stoneworks/internal/server/response"
)

// Uploader turns submitted image data into a URL the site can reference.
type Uploader interface {
	Store(ctx context.Context, image string) (string, error)
}

// UploadHandler serves POST /api/upload.
type UploadHandler struct {
	Uploads Uploader
	Log     *zap.Logger
}

// Upload answers {"url": ...} for the submitted image.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	req, err := decode[models.UploadRequest](w, r)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	url, err := h.Uploads.Store(r.Context(), req.Image)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"url": url})
}
