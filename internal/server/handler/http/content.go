package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/atinyakov/stoneworks/internal/models"
	"github.com/atinyakov/stoneworks/internal/server/response"
)

// ContentStore reads and writes editable content blocks.
type ContentStore interface {
	GetSiteContent(ctx context.Context, key string) (*models.SiteContent, error)
	UpsertSiteContent(ctx context.Context, key string, content json.RawMessage) (*models.SiteContent, error)
}

// ContentHandler serves /api/content/{key}.
type ContentHandler struct {
	Store ContentStore
	Log   *zap.Logger
}

// emptyContent is returned for keys that were never written.
var emptyContent = map[string]json.RawMessage{"content": json.RawMessage(`{}`)}

// Get returns the block stored under {key}, or {"content":{}}.
func (h *ContentHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.Store.GetSiteContent(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	if c == nil {
		response.JSON(w, http.StatusOK, emptyContent)
		return
	}
	response.JSON(w, http.StatusOK, c)
}

// Put creates or replaces the block stored under {key}.
func (h *ContentHandler) Put(w http.ResponseWriter, r *http.Request) {
	in, err := decode[models.SiteContentInput](w, r)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	c, err := h.Store.UpsertSiteContent(r.Context(), chi.URLParam(r, "key"), in.Content)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	response.JSON(w, http.StatusOK, c)
}
