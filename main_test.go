package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/calepin/calepin/internal/config"
	"github.com/calepin/calepin/internal/model"
	"github.com/calepin/calepin/internal/plugin"
	"github.com/calepin/calepin/internal/repository"
)

type stubRepo struct {
	summaries []model.PostSummary
	posts     map[string]*model.Post
	plugins   []string
}

func (s *stubRepo) ListPublished(context.Context) ([]model.PostSummary, error) {
	return s.summaries, nil
}

func (s *stubRepo) GetBySlug(_ context.Context, slug string) (*model.Post, error) {
	post, ok := s.posts[slug]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return post, nil
}

func (s *stubRepo) RegisterPlugin(plugin.Renderer) {}

func (s *stubRepo) AvailablePlugins() []string { return s.plugins }

func setupTestConfig(t *testing.T) {
	t.Helper()
	old := config.AppConfig

	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	config.AppConfig = cfg

	t.Cleanup(func() { config.AppConfig = old })
}

func TestServeIndex(t *testing.T) {
	setupTestConfig(t)
	postRepository = &stubRepo{summaries: []model.PostSummary{
		{Title: "First Post", Slug: "first-post"},
	}}

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()

	serveIndex(rec, req)

	res := rec.Result()
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200 OK, got %d", res.StatusCode)
	}

	body, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(body), "First Post") {
		t.Errorf("Expected body to contain post title, got %s", body)
	}
	if !strings.Contains(string(body), "/blog/first-post") {
		t.Errorf("Expected body to link the post, got %s", body)
	}
}

func TestServePost(t *testing.T) {
	setupTestConfig(t)
	postRepository = &stubRepo{posts: map[string]*model.Post{
		"hello-world": {
			PostSummary: model.PostSummary{Title: "Hello, World!", Slug: "hello-world"},
			Blocks: []model.Block{
				{Kind: model.KindHeading1, Text: "Intro"},
				{Kind: model.KindParagraph, Text: "Some body text."},
			},
		},
	}}

	req := httptest.NewRequest("GET", postsBasePath+"/hello-world", nil)
	rec := httptest.NewRecorder()

	servePost(rec, req)

	res := rec.Result()
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200 OK, got %d", res.StatusCode)
	}

	body, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(body), "Hello, World!") {
		t.Errorf("Expected post title, got %s", body)
	}
	if !strings.Contains(string(body), "Some body text.") {
		t.Errorf("Expected rendered content, got %s", body)
	}
}

func TestServePostNotFound(t *testing.T) {
	setupTestConfig(t)
	postRepository = &stubRepo{}

	req := httptest.NewRequest("GET", postsBasePath+"/nonexistent", nil)
	rec := httptest.NewRecorder()

	servePost(rec, req)

	res := rec.Result()
	defer res.Body.Close()
	if res.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 Not Found, got %d", res.StatusCode)
	}
}

func TestServePlugins(t *testing.T) {
	setupTestConfig(t)
	postRepository = &stubRepo{plugins: []string{"YouTube", "CodePen"}}

	req := httptest.NewRequest("GET", "/plugins", nil)
	rec := httptest.NewRecorder()

	servePlugins(rec, req)

	res := rec.Result()
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200 OK, got %d", res.StatusCode)
	}

	var names []string
	if err := json.NewDecoder(res.Body).Decode(&names); err != nil {
		t.Fatalf("Unexpected decode error: %v", err)
	}
	if len(names) != 2 || names[0] != "CodePen" || names[1] != "YouTube" {
		t.Errorf("Expected sorted plugin names, got %v", names)
	}
}

func TestSecureHeaders(t *testing.T) {
	handler := secureHeaders(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if got := rec.Header().Get("X-Frame-Options"); got != "deny" {
		t.Errorf("Expected X-Frame-Options deny, got %q", got)
	}
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("Expected nosniff, got %q", got)
	}
}

func TestGzipIt(t *testing.T) {
	handler := gzipIt(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("compressible ", 100)))
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	handler(rec, req)

	if got := rec.Header().Get(config.HContentEncoding); got != "gzip" {
		t.Errorf("Expected gzip encoding, got %q", got)
	}
	if rec.Body.Len() >= len("compressible ")*100 {
		t.Errorf("Expected compressed body, got %d bytes", rec.Body.Len())
	}
}

func TestGzipItSkippedWithoutAcceptHeader(t *testing.T) {
	handler := gzipIt(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("plain"))
	})

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Header().Get(config.HContentEncoding) != "" {
		t.Error("Expected no content encoding without Accept-Encoding")
	}
	if rec.Body.String() != "plain" {
		t.Errorf("Expected plain body, got %q", rec.Body.String())
	}
}

func TestWithRequestID(t *testing.T) {
	handler := withRequestID(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Header().Get(config.HRequestID) == "" {
		t.Error("Expected a request id header")
	}
}
