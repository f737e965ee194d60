package site

import (
	"strconv"
	"strings"

	"github.com/starford/jera/internal/models"
)

// Paginator is one page of a paginated post list, handed to the home
// layout as .Paginator.
type Paginator struct {
	Posts      []*models.Page
	Page       int // 1-based
	PerPage    int
	TotalPosts int
	TotalPages int

	prevURL string
	nextURL string
	url     string
}

// URL returns this index page's site-relative URL.
func (p *Paginator) URL() string { return p.url }

// HasPrev reports whether a newer index page exists.
func (p *Paginator) HasPrev() bool { return p.prevURL != "" }

// HasNext reports whether an older index page exists.
func (p *Paginator) HasNext() bool { return p.nextURL != "" }

// PrevURL returns the newer index page's URL, or "".
func (p *Paginator) PrevURL() string { return p.prevURL }

// NextURL returns the older index page's URL, or "".
func (p *Paginator) NextURL() string { return p.nextURL }

// indexURL expands the paginate path pattern for page n. Page 1 lives
// at the site root unless rooted is false.
func indexURL(pattern string, n int, rooted bool) string {
	if n == 1 && rooted {
		return "/"
	}
	expanded := strings.Replace(pattern, ":num", strconv.Itoa(n), 1)
	return "/" + strings.Trim(expanded, "/") + "/"
}

// Paginate slices posts into index pages of perPage entries. The last
// page holds the remainder. rooted places page 1 at "/"; otherwise
// every page lives under the pattern, leaving the root to an authored
// index page.
func Paginate(posts []*models.Page, perPage int, pattern string, rooted bool) []*Paginator {
	if perPage <= 0 || len(posts) == 0 {
		return nil
	}
	total := (len(posts) + perPage - 1) / perPage

	out := make([]*Paginator, 0, total)
	for n := 1; n <= total; n++ {
		start := (n - 1) * perPage
		end := start + perPage
		if end > len(posts) {
			end = len(posts)
		}
		p := &Paginator{
			Posts:      posts[start:end],
			Page:       n,
			PerPage:    perPage,
			TotalPosts: len(posts),
			TotalPages: total,
			url:        indexURL(pattern, n, rooted),
		}
		if n > 1 {
			p.prevURL = indexURL(pattern, n-1, rooted)
		}
		if n < total {
			p.nextURL = indexURL(pattern, n+1, rooted)
		}
		out = append(out, p)
	}
	return out
}
