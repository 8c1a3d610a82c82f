// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router tests verify the HTTP routing configuration, middleware
// chains and the full request path against in-memory stores.
package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"newsroom/internal/cache"
	"newsroom/internal/handlers"
	"newsroom/internal/middleware"
	"newsroom/internal/service"
	"newsroom/internal/store/memstore"
)

const (
	testEmail    = "admin@newsroom.local"
	testPassword = "s3cret"
)

// testServer wires the router over fresh memstores.
type testServer struct {
	t          *testing.T
	handler    http.Handler
	auth       bool
	categories *memstore.CategoryStore
	posts      *memstore.PostStore
}

// testOptions configures newTestServerWith. The zero value gives an open
// router with no rate limit and no response cache.
type testOptions struct {
	auth       bool
	viewLimit  int
	trustProxy bool
	cache      *cache.ResponseCache
}

func newTestServer(t *testing.T, withAuth bool, viewLimit int) *testServer {
	t.Helper()
	return newTestServerWith(t, testOptions{auth: withAuth, viewLimit: viewLimit})
}

func newTestServerWith(t *testing.T, opts testOptions) *testServer {
	t.Helper()

	categories := memstore.NewCategoryStore()
	posts := memstore.NewPostStore()

	var hash string
	if opts.auth {
		b, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
		if err != nil {
			t.Fatalf("bcrypt: %v", err)
		}
		hash = string(b)
	}

	var limiter *middleware.RateLimiter
	if opts.viewLimit > 0 {
		limiter = middleware.NewRateLimiter(opts.viewLimit, time.Minute)
		t.Cleanup(limiter.Stop)
	}

	postSvc := service.NewPostService(posts, categories)
	h := New(Deps{
		Categories:        handlers.NewCategories(service.NewCategoryService(categories), opts.cache),
		Posts:             handlers.NewPosts(postSvc, opts.cache, handlers.Site{URL: "https://news.example.com", Name: "Example News"}),
		Admin:             handlers.NewAdmin(service.NewStatsService(posts, categories), categories, posts, opts.cache),
		AdminEmail:        testEmail,
		AdminPasswordHash: hash,
		ViewLimiter:       limiter,
		TrustProxy:        opts.trustProxy,
	})
	return &testServer{t: t, handler: h, auth: opts.auth, categories: categories, posts: posts}
}

// do sends a request, authenticating writes when auth is configured.
func (s *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	s.t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if s.auth {
		req.SetBasicAuth(testEmail, testPassword)
	}
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

// decode unmarshals a response body or fails the test.
func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return v
}

func expectStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("status: got %d, want %d (body %s)", rr.Code, want, rr.Body.String())
	}
}

type categoryBody struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type postBody struct {
	ID         string        `json:"id"`
	Slug       string        `json:"slug"`
	Status     string        `json:"status"`
	Views      int64         `json:"views"`
	CategoryID string        `json:"categoryId"`
	Category   *categoryBody `json:"category"`
}

func (s *testServer) createCategory(name, slug string) categoryBody {
	s.t.Helper()
	rr := s.do(http.MethodPost, "/api/categories", fmt.Sprintf(`{"name":%q,"slug":%q}`, name, slug))
	expectStatus(s.t, rr, http.StatusCreated)
	return decode[categoryBody](s.t, rr)
}

func (s *testServer) createPost(categoryID, slug, status string, trending bool) postBody {
	s.t.Helper()
	body := fmt.Sprintf(`{"title":"Title %[1]s","slug":%[1]q,"content":"<p>Body</p>","summary":"About %[1]s","category":%[2]q,"status":%[3]q,"isTrending":%[4]t}`,
		slug, categoryID, status, trending)
	rr := s.do(http.MethodPost, "/api/posts", body)
	expectStatus(s.t, rr, http.StatusCreated)
	return decode[postBody](s.t, rr)
}

func TestHealthHandler(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/health", nil)

	healthHandler(w, r)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}

	ct := resp.Header.Get("Content-Type")
	if ct != "application/json" {
		t.Errorf("content-type: got %q, want %q", ct, "application/json")
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field: got %q, want %q", body["status"], "ok")
	}
}

func TestRouterMiddleware(t *testing.T) {
	s := newTestServer(t, false, 0)
	rr := s.do(http.MethodGet, "/health", "")

	expectStatus(t, rr, http.StatusOK)
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers not applied")
	}

	rr = s.do(http.MethodGet, "/nope", "")
	expectStatus(t, rr, http.StatusNotFound)
	if got := decode[map[string]string](t, rr)["error"]; got != "not found" {
		t.Errorf("not found body: %q", got)
	}

	rr = s.do(http.MethodPatch, "/api/categories", "")
	expectStatus(t, rr, http.StatusMethodNotAllowed)
}

func TestCategoryRoutes(t *testing.T) {
	s := newTestServer(t, false, 0)
	c := s.createCategory("Technology", "technology")

	rr := s.do(http.MethodGet, "/api/categories/"+c.ID, "")
	expectStatus(t, rr, http.StatusOK)
	if got := decode[categoryBody](t, rr); got.Slug != "technology" || got.Name != "Technology" {
		t.Errorf("get: %+v", got)
	}

	rr = s.do(http.MethodGet, "/api/categories/slug/technology", "")
	expectStatus(t, rr, http.StatusOK)

	rr = s.do(http.MethodGet, "/api/categories", "")
	expectStatus(t, rr, http.StatusOK)
	if list := decode[[]categoryBody](t, rr); len(list) != 1 {
		t.Errorf("list: %+v", list)
	}

	rr = s.do(http.MethodPut, "/api/categories/"+c.ID, `{"name":"Tech"}`)
	expectStatus(t, rr, http.StatusOK)
	if got := decode[categoryBody](t, rr); got.Name != "Tech" || got.Slug != "technology" {
		t.Errorf("update: %+v", got)
	}

	rr = s.do(http.MethodGet, "/api/categories/slugify?name=Science+%26+Tech", "")
	expectStatus(t, rr, http.StatusOK)
	if got := decode[map[string]string](t, rr)["slug"]; got != "science-tech" {
		t.Errorf("slugify: %q", got)
	}

	rr = s.do(http.MethodDelete, "/api/categories/"+c.ID, "")
	expectStatus(t, rr, http.StatusOK)
	if got := decode[map[string]string](t, rr)["message"]; got == "" {
		t.Error("delete: missing message")
	}

	rr = s.do(http.MethodDelete, "/api/categories/"+c.ID, "")
	expectStatus(t, rr, http.StatusNotFound)
}

func TestCategoryErrors(t *testing.T) {
	s := newTestServer(t, false, 0)
	s.createCategory("Technology", "technology")

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{name: "missing name", method: http.MethodPost, path: "/api/categories", body: `{"slug":"x"}`, want: http.StatusBadRequest},
		{name: "unknown field", method: http.MethodPost, path: "/api/categories", body: `{"name":"X","slug":"x","color":"red"}`, want: http.StatusBadRequest},
		{name: "malformed body", method: http.MethodPost, path: "/api/categories", body: `{"name":`, want: http.StatusBadRequest},
		{name: "trailing data", method: http.MethodPost, path: "/api/categories", body: `{"name":"X","slug":"x"} {}`, want: http.StatusBadRequest},
		{name: "duplicate slug", method: http.MethodPost, path: "/api/categories", body: `{"name":"Tech","slug":"technology"}`, want: http.StatusConflict},
		{name: "malformed id", method: http.MethodGet, path: "/api/categories/not-a-uuid", want: http.StatusNotFound},
		{name: "unknown id", method: http.MethodGet, path: "/api/categories/00000000-0000-0000-0000-000000000001", want: http.StatusNotFound},
		{name: "unknown slug", method: http.MethodGet, path: "/api/categories/slug/missing", want: http.StatusNotFound},
		{name: "update malformed id", method: http.MethodPut, path: "/api/categories/xyz", body: `{"name":"X"}`, want: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := s.do(tt.method, tt.path, tt.body)
			expectStatus(t, rr, tt.want)
			if msg := decode[map[string]any](t, rr)["error"]; msg == nil || msg == "" {
				t.Errorf("missing error message in %s", rr.Body.String())
			}
		})
	}
}

func TestValidationErrorFields(t *testing.T) {
	s := newTestServer(t, false, 0)
	rr := s.do(http.MethodPost, "/api/categories", `{"name":"","slug":"Bad Slug"}`)
	expectStatus(t, rr, http.StatusBadRequest)

	body := decode[struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}](t, rr)
	if body.Fields["name"] == "" || body.Fields["slug"] == "" {
		t.Errorf("fields: %+v", body.Fields)
	}
}

func TestPostRoutes(t *testing.T) {
	s := newTestServer(t, false, 0)
	c := s.createCategory("Technology", "technology")
	p := s.createPost(c.ID, "ai-news", "published", true)
	s.createPost(c.ID, "draft-news", "draft", false)

	if p.Category == nil || p.Category.ID != c.ID || p.CategoryID != c.ID {
		t.Errorf("create: category not resolved: %+v", p)
	}

	rr := s.do(http.MethodGet, "/api/posts", "")
	expectStatus(t, rr, http.StatusOK)
	if list := decode[[]postBody](t, rr); len(list) != 1 || list[0].Slug != "ai-news" {
		t.Errorf("public list: %+v", list)
	}

	rr = s.do(http.MethodGet, "/api/posts?all=true", "")
	expectStatus(t, rr, http.StatusOK)
	if list := decode[[]postBody](t, rr); len(list) != 2 {
		t.Errorf("all list: %d posts", len(list))
	}

	rr = s.do(http.MethodGet, "/api/posts?all=true&status=draft", "")
	expectStatus(t, rr, http.StatusOK)
	if list := decode[[]postBody](t, rr); len(list) != 1 || list[0].Status != "draft" {
		t.Errorf("draft list: %+v", list)
	}

	rr = s.do(http.MethodGet, "/api/posts?trending=true&q=AI&category="+c.ID+"&limit=5", "")
	expectStatus(t, rr, http.StatusOK)
	if list := decode[[]postBody](t, rr); len(list) != 1 {
		t.Errorf("filtered list: %+v", list)
	}

	rr = s.do(http.MethodGet, "/api/posts?category=garbage", "")
	expectStatus(t, rr, http.StatusOK)
	if strings.TrimSpace(rr.Body.String()) != "[]" {
		t.Errorf("invalid category should yield empty list, got %s", rr.Body.String())
	}

	rr = s.do(http.MethodGet, "/api/posts/"+p.ID, "")
	expectStatus(t, rr, http.StatusOK)

	rr = s.do(http.MethodGet, "/api/posts/slug/ai-news", "")
	expectStatus(t, rr, http.StatusOK)
	if got := decode[postBody](t, rr); got.ID != p.ID {
		t.Errorf("by slug: %+v", got)
	}

	rr = s.do(http.MethodPut, "/api/posts/"+p.ID, `{"status":"draft"}`)
	expectStatus(t, rr, http.StatusOK)
	if got := decode[postBody](t, rr); got.Status != "draft" {
		t.Errorf("update: %+v", got)
	}

	rr = s.do(http.MethodDelete, "/api/posts/"+p.ID, "")
	expectStatus(t, rr, http.StatusOK)

	rr = s.do(http.MethodGet, "/api/posts/"+p.ID, "")
	expectStatus(t, rr, http.StatusNotFound)
}

func TestPostErrors(t *testing.T) {
	s := newTestServer(t, false, 0)
	c := s.createCategory("Technology", "technology")
	s.createPost(c.ID, "taken", "published", false)

	valid := func(slug string) string {
		return fmt.Sprintf(`{"title":"T","slug":%q,"content":"<p>c</p>","summary":"s","category":%q}`, slug, c.ID)
	}

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{name: "missing fields", method: http.MethodPost, path: "/api/posts", body: `{"title":"T"}`, want: http.StatusBadRequest},
		{name: "unknown category", method: http.MethodPost, path: "/api/posts", body: `{"title":"T","slug":"t","content":"c","summary":"s","category":"00000000-0000-0000-0000-000000000001"}`, want: http.StatusBadRequest},
		{name: "unknown field", method: http.MethodPost, path: "/api/posts", body: `{"title":"T","likes":3}`, want: http.StatusBadRequest},
		{name: "duplicate slug", method: http.MethodPost, path: "/api/posts", body: valid("taken"), want: http.StatusConflict},
		{name: "malformed id", method: http.MethodGet, path: "/api/posts/123", want: http.StatusNotFound},
		{name: "unknown slug", method: http.MethodGet, path: "/api/posts/slug/missing", want: http.StatusNotFound},
		{name: "delete malformed id", method: http.MethodDelete, path: "/api/posts/zzz", want: http.StatusNotFound},
		{name: "view unknown", method: http.MethodPost, path: "/api/posts/view/missing", want: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectStatus(t, s.do(tt.method, tt.path, tt.body), tt.want)
		})
	}
}

func TestViewAndStats(t *testing.T) {
	s := newTestServer(t, false, 0)
	tech := s.createCategory("Technology", "technology")
	biz := s.createCategory("Business", "business")
	s.createPost(tech.ID, "one", "published", false)
	s.createPost(biz.ID, "two", "published", false)
	s.createPost(biz.ID, "three", "draft", false)

	for want := int64(1); want <= 2; want++ {
		rr := s.do(http.MethodPost, "/api/posts/view/one", "")
		expectStatus(t, rr, http.StatusOK)
		if got := decode[map[string]int64](t, rr)["views"]; got != want {
			t.Errorf("views = %d, want %d", got, want)
		}
	}

	expectStatus(t, s.do(http.MethodPost, "/api/posts/view/three", ""), http.StatusNotFound)

	rr := s.do(http.MethodGet, "/api/admin/stats", "")
	expectStatus(t, rr, http.StatusOK)
	stats := decode[map[string]int64](t, rr)
	want := map[string]int64{
		"totalPosts":      3,
		"publishedPosts":  2,
		"draftPosts":      1,
		"totalCategories": 2,
		"totalViews":      2,
	}
	for k, v := range want {
		if stats[k] != v {
			t.Errorf("%s = %d, want %d", k, stats[k], v)
		}
	}
}

func TestSEORoute(t *testing.T) {
	s := newTestServer(t, false, 0)
	c := s.createCategory("Technology", "technology")
	s.createPost(c.ID, "ai-news", "published", false)
	s.createPost(c.ID, "hidden", "draft", false)

	rr := s.do(http.MethodGet, "/api/posts/slug/ai-news/seo", "")
	expectStatus(t, rr, http.StatusOK)
	meta := decode[struct {
		Title     string   `json:"title"`
		Canonical string   `json:"canonical"`
		Keywords  []string `json:"keywords"`
	}](t, rr)
	if meta.Canonical != "https://news.example.com/article/ai-news" {
		t.Errorf("canonical = %q", meta.Canonical)
	}
	if meta.Title != "Title ai-news" || len(meta.Keywords) == 0 {
		t.Errorf("meta = %+v", meta)
	}

	expectStatus(t, s.do(http.MethodGet, "/api/posts/slug/hidden/seo", ""), http.StatusNotFound)
}

func TestSeedRoute(t *testing.T) {
	s := newTestServer(t, false, 0)

	rr := s.do(http.MethodPost, "/api/admin/seed", "")
	expectStatus(t, rr, http.StatusOK)
	if msg := decode[map[string]string](t, rr)["message"]; msg != "Database seeded successfully" {
		t.Errorf("first seed: %q", msg)
	}

	rr = s.do(http.MethodPost, "/api/admin/seed", "")
	expectStatus(t, rr, http.StatusOK)
	if msg := decode[map[string]string](t, rr)["message"]; msg != "Database already seeded" {
		t.Errorf("second seed: %q", msg)
	}

	rr = s.do(http.MethodGet, "/api/posts?trending=true", "")
	expectStatus(t, rr, http.StatusOK)
	if list := decode[[]postBody](t, rr); len(list) != 2 {
		t.Errorf("seeded trending posts = %d, want 2", len(list))
	}
}

func TestAdminAuthGuards(t *testing.T) {
	s := newTestServer(t, true, 0)
	c := s.createCategory("Technology", "technology")

	anon := func(method, path, body string) int {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		rr := httptest.NewRecorder()
		s.handler.ServeHTTP(rr, req)
		return rr.Code
	}

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{name: "public list", method: http.MethodGet, path: "/api/categories", want: http.StatusOK},
		{name: "public get", method: http.MethodGet, path: "/api/categories/" + c.ID, want: http.StatusOK},
		{name: "public posts", method: http.MethodGet, path: "/api/posts", want: http.StatusOK},
		{name: "create category", method: http.MethodPost, path: "/api/categories", body: `{"name":"X","slug":"x"}`, want: http.StatusUnauthorized},
		{name: "update category", method: http.MethodPut, path: "/api/categories/" + c.ID, body: `{"name":"X"}`, want: http.StatusUnauthorized},
		{name: "delete category", method: http.MethodDelete, path: "/api/categories/" + c.ID, want: http.StatusUnauthorized},
		{name: "create post", method: http.MethodPost, path: "/api/posts", body: `{}`, want: http.StatusUnauthorized},
		{name: "stats", method: http.MethodGet, path: "/api/admin/stats", want: http.StatusUnauthorized},
		{name: "seed", method: http.MethodPost, path: "/api/admin/seed", want: http.StatusUnauthorized},
		{name: "view is public", method: http.MethodPost, path: "/api/posts/view/missing", want: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := anon(tt.method, tt.path, tt.body); got != tt.want {
				t.Errorf("status: got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestViewRateLimit(t *testing.T) {
	s := newTestServer(t, false, 2)
	c := s.createCategory("Technology", "technology")
	s.createPost(c.ID, "hot", "published", false)

	expectStatus(t, s.do(http.MethodPost, "/api/posts/view/hot", ""), http.StatusOK)
	expectStatus(t, s.do(http.MethodPost, "/api/posts/view/hot", ""), http.StatusOK)
	rr := s.do(http.MethodPost, "/api/posts/view/hot", "")
	expectStatus(t, rr, http.StatusTooManyRequests)
	if rr.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}

	// Reads are not throttled.
	expectStatus(t, s.do(http.MethodGet, "/api/posts/slug/hot", ""), http.StatusOK)
}

// view sends a view increment with the given forwarding header.
func (s *testServer) view(slug, header, value string) int {
	s.t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/posts/view/"+slug, nil)
	req.RemoteAddr = "203.0.113.7:5555"
	req.Header.Set(header, value)
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr.Code
}

func TestViewRateLimitIgnoresSpoofedHeaders(t *testing.T) {
	s := newTestServer(t, false, 1)
	c := s.createCategory("Technology", "technology")
	s.createPost(c.ID, "hot", "published", false)

	if code := s.view("hot", "X-Forwarded-For", "10.0.0.1"); code != http.StatusOK {
		t.Fatalf("first view: got %d, want 200", code)
	}
	if code := s.view("hot", "X-Forwarded-For", "10.0.0.2"); code != http.StatusTooManyRequests {
		t.Errorf("rotated X-Forwarded-For: got %d, want 429", code)
	}
	if code := s.view("hot", "X-Real-IP", "10.0.0.3"); code != http.StatusTooManyRequests {
		t.Errorf("X-Real-IP: got %d, want 429", code)
	}
}

func TestViewRateLimitTrustedProxy(t *testing.T) {
	s := newTestServerWith(t, testOptions{viewLimit: 1, trustProxy: true})
	c := s.createCategory("Technology", "technology")
	s.createPost(c.ID, "hot", "published", false)

	// Behind a trusted proxy every forwarded client gets its own budget.
	if code := s.view("hot", "X-Real-IP", "10.0.0.1"); code != http.StatusOK {
		t.Fatalf("client 1: got %d, want 200", code)
	}
	if code := s.view("hot", "X-Real-IP", "10.0.0.2"); code != http.StatusOK {
		t.Errorf("client 2: got %d, want 200", code)
	}
	if code := s.view("hot", "X-Real-IP", "10.0.0.1"); code != http.StatusTooManyRequests {
		t.Errorf("client 1 again: got %d, want 429", code)
	}
}
