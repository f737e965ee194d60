package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/starford/jera/internal/build"
	"github.com/starford/jera/internal/preview"
	"github.com/starford/jera/internal/testutil"
)

func testEnv(t *testing.T, token string) http.Handler {
	t.Helper()
	root, cfg := testutil.TestSite(t)
	db := testutil.TestDB(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	builder := build.New(cfg, root, logger)
	svc := preview.NewService(builder, db, nil, logger)
	if _, err := svc.Rebuild(context.Background(), "test"); err != nil {
		t.Fatalf("initial build: %v", err)
	}
	return NewRouter(svc, token != "", token)
}

func doRequest(t *testing.T, h http.Handler, method, target, token string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestListPagesEndpoint(t *testing.T) {
	h := testEnv(t, "")

	rec := doRequest(t, h, http.MethodGet, "/pages", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var resp PageListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Total != 3 {
		t.Fatalf("total = %d, want 3", resp.Total)
	}
	if len(resp.Pages) != 3 {
		t.Fatalf("len(pages) = %d, want 3", len(resp.Pages))
	}
	// Newest post sorts first.
	if resp.Pages[0].Title != "Second Post" {
		t.Errorf("pages[0].title = %q, want %q", resp.Pages[0].Title, "Second Post")
	}
}

func TestListPagesCollectionFilter(t *testing.T) {
	h := testEnv(t, "")

	rec := doRequest(t, h, http.MethodGet, "/pages?collection=posts", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var resp PageListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Total != 2 {
		t.Fatalf("total = %d, want 2", resp.Total)
	}
	for _, p := range resp.Pages {
		if p.Collection != "posts" {
			t.Errorf("collection = %q, want %q", p.Collection, "posts")
		}
	}
}

func TestGetPageEndpoint(t *testing.T) {
	h := testEnv(t, "")

	rec := doRequest(t, h, http.MethodGet, "/pages/_posts/2024-01-15-hello-world.md", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var page PageDetail
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if page.Title != "Hello World" {
		t.Errorf("title = %q, want %q", page.Title, "Hello World")
	}
	if page.URL != "/news/2024/01/15/hello-world/" {
		t.Errorf("url = %q", page.URL)
	}
	if !strings.Contains(page.Body, "uniqueword") {
		t.Errorf("body missing source text: %q", page.Body)
	}
}

func TestGetPageNotFound(t *testing.T) {
	h := testEnv(t, "")

	rec := doRequest(t, h, http.MethodGet, "/pages/nope.md", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestGetPageBacklinks(t *testing.T) {
	h := testEnv(t, "")

	rec := doRequest(t, h, http.MethodGet, "/pages/about.md", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var page PageDetail
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(page.Backlinks) != 1 || page.Backlinks[0] != "_posts/2024-01-15-hello-world.md" {
		t.Errorf("backlinks = %v", page.Backlinks)
	}
}

func TestSearchEndpoint(t *testing.T) {
	h := testEnv(t, "")

	rec := doRequest(t, h, http.MethodGet, "/search?q=uniqueword", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var resp SearchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("results = %d, want 1", len(resp.Results))
	}
	if resp.Results[0].Path != "_posts/2024-01-15-hello-world.md" {
		t.Errorf("path = %q", resp.Results[0].Path)
	}
}

func TestSearchRequiresQuery(t *testing.T) {
	h := testEnv(t, "")

	rec := doRequest(t, h, http.MethodGet, "/search", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestReportEndpoint(t *testing.T) {
	h := testEnv(t, "")

	rec := doRequest(t, h, http.MethodGet, "/report", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var report build.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if report.Posts != 2 {
		t.Errorf("posts = %d, want 2", report.Posts)
	}
	if report.Pages != 1 {
		t.Errorf("pages = %d, want 1", report.Pages)
	}
}

func TestBuildEndpoint(t *testing.T) {
	h := testEnv(t, "")

	rec := doRequest(t, h, http.MethodPost, "/build", "", strings.NewReader(`{"reason":"editor"}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var report build.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if report.Posts != 2 {
		t.Errorf("posts = %d, want 2", report.Posts)
	}
}

func TestBuildEndpointNoBody(t *testing.T) {
	h := testEnv(t, "")

	rec := doRequest(t, h, http.MethodPost, "/build", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestBrokenLinksEndpoint(t *testing.T) {
	h := testEnv(t, "")

	rec := doRequest(t, h, http.MethodGet, "/links/broken", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var resp BrokenLinksResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Broken) != 1 {
		t.Fatalf("broken = %d, want 1: %v", len(resp.Broken), resp.Broken)
	}
	if resp.Broken[0].Target != "/nowhere/" {
		t.Errorf("target = %q, want %q", resp.Broken[0].Target, "/nowhere/")
	}
	if resp.Broken[0].Source != "_posts/2024-01-15-hello-world.md" {
		t.Errorf("source = %q", resp.Broken[0].Source)
	}
}

func TestSearchDisabled(t *testing.T) {
	root, cfg := testutil.TestSite(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := preview.NewService(build.New(cfg, root, logger), nil, nil, logger)
	if _, err := svc.Rebuild(context.Background(), "test"); err != nil {
		t.Fatal(err)
	}
	h := NewRouter(svc, false, "")

	rec := doRequest(t, h, http.MethodGet, "/pages", "", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}

	// Build reporting does not need the index.
	rec = doRequest(t, h, http.MethodGet, "/report", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("report status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestAuthMiddleware(t *testing.T) {
	h := testEnv(t, "s3cret")

	rec := doRequest(t, h, http.MethodGet, "/pages", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}

	rec = doRequest(t, h, http.MethodGet, "/pages", "wrong", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong token: status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}

	rec = doRequest(t, h, http.MethodGet, "/pages", "s3cret", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("valid token: status = %d, want %d", rec.Code, http.StatusOK)
	}
}
