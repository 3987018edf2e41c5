package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/atinyakov/stoneworks/internal/server/response"
)

// Resource serves list, create, update and delete for one collection.
// T is the record type, C the create payload and U the update payload.
// Storage methods are bound as method values, e.g. store.ListGranites.
type Resource[T any, C, U validatable] struct {
	List   func(ctx context.Context) ([]T, error)
	Create func(ctx context.Context, in C) (*T, error)
	Update func(ctx context.Context, id string, upd U) (*T, error)
	Delete func(ctx context.Context, id string) error
	Log    *zap.Logger
}

// HandleList answers 200 with every record in the collection's order.
func (h *Resource[T, C, U]) HandleList(w http.ResponseWriter, r *http.Request) {
	items, err := h.List(r.Context())
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	if items == nil {
		items = []T{}
	}
	response.JSON(w, http.StatusOK, items)
}

// HandleCreate validates the body, stores it and answers 201 with the record.
func (h *Resource[T, C, U]) HandleCreate(w http.ResponseWriter, r *http.Request) {
	in, err := decode[C](w, r)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	item, err := h.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	response.JSON(w, http.StatusCreated, item)
}

// HandleUpdate applies a partial update to {id}. Unknown ids answer 404.
func (h *Resource[T, C, U]) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	upd, err := decode[U](w, r)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	item, err := h.Update(r.Context(), chi.URLParam(r, "id"), upd)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	response.JSON(w, http.StatusOK, item)
}

// HandleDelete removes {id}. Deleting a missing record still answers 204.
func (h *Resource[T, C, U]) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// mountMutations registers the gated write routes of a collection under path.
func mountMutations[T any, C, U validatable](r chi.Router, path string, h *Resource[T, C, U]) {
	r.Post(path, h.HandleCreate)
	r.Patch(path+"/{id}", h.HandleUpdate)
	r.Delete(path+"/{id}", h.HandleDelete)
}
