package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"newsroom/internal/cache"
	"newsroom/internal/service"
)

const categoryResource = "category"

// slugResponse is the body of the slugify helper endpoint.
type slugResponse struct {
	Slug string `json:"slug"`
}

// Categories groups the category CRUD handlers.
type Categories struct {
	svc   *service.CategoryService
	cache *cache.ResponseCache
}

// NewCategories creates the category handlers. rc may be nil.
func NewCategories(svc *service.CategoryService, rc *cache.ResponseCache) *Categories {
	return &Categories{svc: svc, cache: rc}
}

// List returns every category in insertion order.
func (h *Categories) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context())
	if err != nil {
		handleError(w, r, err, categoryResource)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Create stores a new category.
func (h *Categories) Create(w http.ResponseWriter, r *http.Request) {
	var in service.CategoryInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	c, err := h.svc.Create(r.Context(), in)
	if err != nil {
		handleError(w, r, err, categoryResource)
		return
	}
	h.cache.InvalidateAll(r.Context())
	writeJSON(w, http.StatusCreated, c)
}

// Get returns one category by ID.
func (h *Categories) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}

	c, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		handleError(w, r, err, categoryResource)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// GetBySlug returns one category by slug.
func (h *Categories) GetBySlug(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		handleError(w, r, err, categoryResource)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// Update applies a partial update to a category.
func (h *Categories) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}

	var patch service.CategoryPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	c, err := h.svc.Update(r.Context(), id, patch)
	if err != nil {
		handleError(w, r, err, categoryResource)
		return
	}
	h.cache.InvalidateAll(r.Context())
	writeJSON(w, http.StatusOK, c)
}

// Delete removes a category. Its posts are kept.
func (h *Categories) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		handleError(w, r, err, categoryResource)
		return
	}
	h.cache.InvalidateAll(r.Context())
	writeJSON(w, http.StatusOK, messageResponse{Message: "Category deleted successfully"})
}

// Slugify suggests a slug for the name query parameter.
func (h *Categories) Slugify(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, slugResponse{Slug: h.svc.SuggestSlug(r.URL.Query().Get("name"))})
}
