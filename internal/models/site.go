package models

import (
	"sort"
	"strings"
	"time"
)

// FooterLink is a labelled URL rendered in the site footer.
type FooterLink struct {
	Label string `json:"label" yaml:"label"`
	URL   string `json:"url" yaml:"url"`
}

// Author is the site author profile exposed to templates and the feed.
type Author struct {
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email" yaml:"email"`
	URL   string `json:"url" yaml:"url"`
}

// Site is the fully assembled site handed to templates and generators.
// Time is pinned to the newest post date so repeated builds of the same
// sources produce byte-identical output.
type Site struct {
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	URL         string       `json:"url"`
	BaseURL     string       `json:"baseurl"`
	Locale      string       `json:"locale"`
	Author      Author       `json:"author"`
	FooterLinks []FooterLink `json:"footer_links,omitempty"`
	Time        time.Time    `json:"time"`

	Posts      []*Page            `json:"-"`
	Pages      []*Page            `json:"-"`
	Categories map[string][]*Page `json:"-"`
	Tags       map[string][]*Page `json:"-"`
}

// AbsURL joins the site URL, base path and a site-relative path into an
// absolute URL.
func (s *Site) AbsURL(path string) string {
	base := strings.TrimSuffix(s.URL, "/") + s.BaseURL
	if path == "" {
		return base + "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}

// RelURL prefixes a site-relative path with the configured base path.
func (s *Site) RelURL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return s.BaseURL + path
}

// CategoryNames returns the category terms in lexical order.
func (s *Site) CategoryNames() []string {
	return sortedKeys(s.Categories)
}

// TagNames returns the tag terms in lexical order.
func (s *Site) TagNames() []string {
	return sortedKeys(s.Tags)
}

// AllPages returns posts followed by pages, the order generators walk
// the site in.
func (s *Site) AllPages() []*Page {
	out := make([]*Page, 0, len(s.Posts)+len(s.Pages))
	out = append(out, s.Posts...)
	out = append(out, s.Pages...)
	return out
}

func sortedKeys(m map[string][]*Page) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
