package api

import (
	"github.com/starford/jera/internal/preview"
)

// PageDetail is the full page response type (aliased from the service
// layer).
type PageDetail = preview.PageDetail

// PageListItem is a lightweight item in a list response (aliased from
// the service layer).
type PageListItem = preview.PageListItem

// PageListResponse wraps paginated page listings.
type PageListResponse struct {
	Pages []PageListItem `json:"pages"`
	Total int            `json:"total"`
}

// SearchResult is a single search hit in the API response.
type SearchResult struct {
	Path    string `json:"path"`
	URL     string `json:"url"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
}

// BrokenLink is one unresolved internal link.
type BrokenLink struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// BrokenLinksResponse wraps the link check result.
type BrokenLinksResponse struct {
	Broken []BrokenLink `json:"broken"`
}

// BuildRequest is the optional request body for triggering a build.
type BuildRequest struct {
	Reason string `json:"reason"`
}
