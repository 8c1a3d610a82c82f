package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"newsroom/internal/cache"
	"newsroom/internal/models"
	"newsroom/internal/seo"
	"newsroom/internal/service"
)

const postResource = "post"

// viewsResponse is the body of a successful view increment.
type viewsResponse struct {
	Views int64 `json:"views"`
}

// Site identifies the public site for canonical URLs.
type Site struct {
	URL  string
	Name string
}

// Posts groups the post CRUD, listing, view and SEO handlers.
type Posts struct {
	svc   *service.PostService
	cache *cache.ResponseCache
	site  Site
}

// NewPosts creates the post handlers. rc may be nil.
func NewPosts(svc *service.PostService, rc *cache.ResponseCache, site Site) *Posts {
	return &Posts{svc: svc, cache: rc, site: site}
}

// listParams reads the listing query string. Unparseable numbers fall
// back to the default limit.
func listParams(r *http.Request) service.ListParams {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	return service.ListParams{
		Status:     models.PostStatus(q.Get("status")),
		Category:   q.Get("category"),
		Trending:   q.Get("trending") == "true",
		Query:      q.Get("q"),
		Limit:      limit,
		IncludeAll: q.Get("all") == "true",
	}
}

// List returns posts matching the query, newest first. Public listings
// are served from the response cache when possible.
func (h *Posts) List(w http.ResponseWriter, r *http.Request) {
	params := listParams(r)
	ctx := r.Context()

	var key string
	if !params.IncludeAll {
		key = cache.ListKey(r.URL.Query())
		if body, ok := h.cache.Get(ctx, key); ok {
			writeRaw(w, http.StatusOK, body)
			return
		}
	}

	posts, err := h.svc.List(ctx, params)
	if err != nil {
		handleError(w, r, err, postResource)
		return
	}
	h.writeCached(w, r, key, posts)
}

// writeCached encodes v, stores it under key when key is set and writes it.
func (h *Posts) writeCached(w http.ResponseWriter, r *http.Request, key string, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		slog.Error("encode response failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if key != "" {
		h.cache.Set(r.Context(), key, body)
	}
	writeRaw(w, http.StatusOK, body)
}

// Create stores a new post.
func (h *Posts) Create(w http.ResponseWriter, r *http.Request) {
	var in service.PostInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.svc.Create(r.Context(), in)
	if err != nil {
		handleError(w, r, err, postResource)
		return
	}
	h.cache.InvalidateAll(r.Context())
	writeJSON(w, http.StatusCreated, p)
}

// Get returns one post by ID.
func (h *Posts) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}

	p, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		handleError(w, r, err, postResource)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// GetBySlug returns one post by slug, served from the response cache when
// possible.
func (h *Posts) GetBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	key := cache.PostKey(slug)
	if body, ok := h.cache.Get(r.Context(), key); ok {
		writeRaw(w, http.StatusOK, body)
		return
	}

	p, err := h.svc.GetBySlug(r.Context(), slug)
	if err != nil {
		handleError(w, r, err, postResource)
		return
	}
	h.writeCached(w, r, key, p)
}

// SEO returns page metadata for a published post.
func (h *Posts) SEO(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		handleError(w, r, err, postResource)
		return
	}
	if !p.IsPublished() {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}
	writeJSON(w, http.StatusOK, seo.Build(p, h.site.URL, h.site.Name))
}

// Update applies a partial update to a post.
func (h *Posts) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}

	var patch service.PostPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.svc.Update(r.Context(), id, patch)
	if err != nil {
		handleError(w, r, err, postResource)
		return
	}
	h.cache.InvalidateAll(r.Context())
	writeJSON(w, http.StatusOK, p)
}

// Delete removes a post.
func (h *Posts) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		handleError(w, r, err, postResource)
		return
	}
	h.cache.InvalidateAll(r.Context())
	writeJSON(w, http.StatusOK, messageResponse{Message: "Post deleted successfully"})
}

// View records one view of a published post. Cached copies keep their
// older count until they expire.
func (h *Posts) View(w http.ResponseWriter, r *http.Request) {
	views, err := h.svc.IncrementView(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		handleError(w, r, err, postResource)
		return
	}
	writeJSON(w, http.StatusOK, viewsResponse{Views: views})
}
