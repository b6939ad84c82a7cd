// ABOUTME: HTTP handlers for the request-type catalog
// ABOUTME: Reads are cached briefly; writes are admin-only and invalidate the cache

package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/campus-tools/lettertrack/backend/models"
)

const catalogCacheKey = "request_types:all"

type requestTypeInput struct {
	Label string `json:"label"`
}

// ListRequestTypes returns the catalog, served from cache when fresh.
func (h *Handler) ListRequestTypes(w http.ResponseWriter, r *http.Request) {
	if cached, found := h.cache.Get(catalogCacheKey); found {
		h.writeJSON(w, http.StatusOK, cached)
		return
	}

	types, err := h.requestTypes.List(r.Context())
	if err != nil {
		h.respondStoreError(w, err, "no request types found")
		return
	}
	if types == nil {
		types = []*models.RequestType{}
	}

	h.cache.SetWithTTL(catalogCacheKey, types, time.Duration(h.cfg.CatalogTTL)*time.Second)
	h.writeJSON(w, http.StatusOK, types)
}

// CreateRequestType adds a catalog entry. Duplicate labels yield 409.
func (h *Handler) CreateRequestType(w http.ResponseWriter, r *http.Request) {
	var input requestTypeInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.writeError(w, models.ErrKindBadRequest, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if input.Label == "" {
		h.writeError(w, models.ErrKindBadRequest, "label is required", http.StatusBadRequest)
		return
	}

	created, err := h.requestTypes.Create(r.Context(), input.Label)
	if err != nil {
		h.respondStoreError(w, err, "request type not found")
		return
	}

	h.cache.Clear(catalogCacheKey)
	h.writeJSON(w, http.StatusCreated, created)
}

// UpdateRequestType renames a catalog entry.
func (h *Handler) UpdateRequestType(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, models.ErrKindBadRequest, "Invalid request type id", http.StatusBadRequest)
		return
	}

	var input requestTypeInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.writeError(w, models.ErrKindBadRequest, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if input.Label == "" {
		h.writeError(w, models.ErrKindBadRequest, "label is required", http.StatusBadRequest)
		return
	}

	updated, err := h.requestTypes.Update(r.Context(), id, input.Label)
	if err != nil {
		h.respondStoreError(w, err, "request type not found")
		return
	}

	h.cache.Clear(catalogCacheKey)
	h.writeJSON(w, http.StatusOK, updated)
}

// DeleteRequestType removes a catalog entry.
func (h *Handler) DeleteRequestType(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, models.ErrKindBadRequest, "Invalid request type id", http.StatusBadRequest)
		return
	}

	if err := h.requestTypes.Delete(r.Context(), id); err != nil {
		h.respondStoreError(w, err, "request type not found")
		return
	}

	h.cache.Clear(catalogCacheKey)
	w.WriteHeader(http.StatusNoContent)
}
