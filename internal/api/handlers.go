package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/jera/internal/apperr"
	"github.com/starford/jera/internal/preview"
)

// Handler holds API route handlers.
type Handler struct {
	svc *preview.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *preview.Service) *Handler {
	return &Handler{svc: svc}
}

// pagePath extracts the source path from the URL (everything after
// /api/pages/). Supports encoded slashes (e.g. _posts%2Fhello.md).
func pagePath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// ListPages handles GET /api/pages.
//
//	@Summary		List indexed pages with optional pagination and filtering
//	@Tags			pages
//	@Produce		json
//	@Param			limit		query		int		false	"Page size"
//	@Param			offset		query		int		false	"Page offset"
//	@Param			collection	query		string	false	"Filter by collection"	Enums(posts, pages)
//	@Param			tag			query		string	false	"Filter by tag"
//	@Success		200			{object}	PageListResponse
//	@Security		BearerAuth
//	@Router			/pages [get]
func (h *Handler) ListPages(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	collection := q.Get("collection")
	tag := q.Get("tag")

	items, total, err := h.svc.ListPages(r.Context(), limit, offset, collection, tag)
	if err != nil {
		if errors.Is(err, preview.ErrSearchDisabled) {
			writeJSON(w, http.StatusServiceUnavailable, errorBody("search is disabled"))
			return
		}
		slog.Error("list pages failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, PageListResponse{Pages: items, Total: total})
}

// GetPage handles GET /api/pages/*.
//
//	@Summary		Get a single indexed page by source path
//	@Tags			pages
//	@Produce		json
//	@Param			path	path		string	true	"Source path"
//	@Success		200		{object}	PageDetail
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/pages/{path} [get]
func (h *Handler) GetPage(w http.ResponseWriter, r *http.Request) {
	path := pagePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	page, err := h.svc.GetPage(r.Context(), path)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else if errors.Is(err, preview.ErrSearchDisabled) {
			writeJSON(w, http.StatusServiceUnavailable, errorBody("search is disabled"))
		} else {
			slog.Error("get page failed", slog.String("path", path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across site content
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	hits, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		if errors.Is(err, preview.ErrSearchDisabled) {
			writeJSON(w, http.StatusServiceUnavailable, errorBody("search is disabled"))
			return
		}
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	results := make([]SearchResult, len(hits))
	for i, hit := range hits {
		results[i] = SearchResult{Path: hit.Path, URL: hit.URL, Title: hit.Title, Snippet: hit.Snippet}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// Report handles GET /api/report.
//
//	@Summary		Return the report of the most recent build
//	@Tags			build
//	@Produce		json
//	@Success		200	{object}	build.Report
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/report [get]
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	rep := h.svc.Report()
	if rep == nil {
		writeJSON(w, http.StatusNotFound, errorBody("no build yet"))
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// Build handles POST /api/build.
//
//	@Summary		Trigger a full rebuild
//	@Tags			build
//	@Accept			json
//	@Produce		json
//	@Param			body	body		BuildRequest	false	"Build options"
//	@Success		200		{object}	build.Report
//	@Failure		500		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/build [post]
func (h *Handler) Build(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req BuildRequest
	// The body is optional; decode errors on an empty body are fine.
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.Reason == "" {
		req.Reason = "api"
	}

	rep, err := h.svc.Rebuild(r.Context(), req.Reason)
	if err != nil {
		slog.Error("build failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("build failed"))
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// BrokenLinks handles GET /api/links/broken.
//
//	@Summary		List internal links that do not resolve to a page
//	@Tags			links
//	@Produce		json
//	@Success		200	{object}	BrokenLinksResponse
//	@Security		BearerAuth
//	@Router			/links/broken [get]
func (h *Handler) BrokenLinks(w http.ResponseWriter, r *http.Request) {
	links, err := h.svc.BrokenLinks(r.Context())
	if err != nil {
		if errors.Is(err, preview.ErrSearchDisabled) {
			writeJSON(w, http.StatusServiceUnavailable, errorBody("search is disabled"))
			return
		}
		slog.Error("broken links failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	broken := make([]BrokenLink, len(links))
	for i, l := range links {
		broken[i] = BrokenLink{Source: l.Source, Target: l.Target}
	}
	writeJSON(w, http.StatusOK, BrokenLinksResponse{Broken: broken})
}
