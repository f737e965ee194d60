package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/starford/jera/internal/preview"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
func NewRouter(svc *preview.Service, authEnabled bool, token string) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Indexed content.
	r.Get("/pages", h.ListPages)
	r.Get("/pages/*", h.GetPage)

	// Search.
	r.Get("/search", h.Search)

	// Build control.
	r.Get("/report", h.Report)
	r.Post("/build", h.Build)

	// Link check.
	r.Get("/links/broken", h.BrokenLinks)

	return r
}
