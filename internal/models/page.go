// Package models defines the domain types for Jera.
package models

import (
	"html/template"
	"time"
)

// Collections a content file can belong to.
const (
	CollectionPosts = "posts"
	CollectionPages = "pages"
)

// Page represents one Markdown source file flowing through the build
// pipeline. FrontMatter holds the effective metadata after defaults
// resolution; the typed fields below it are derived from FrontMatter
// once resolution is done.
type Page struct {
	SourcePath  string                 `json:"source_path"`
	Collection  string                 `json:"collection"`
	FrontMatter map[string]interface{} `json:"front_matter,omitempty"`
	Body        string                 `json:"-"`
	Checksum    string                 `json:"checksum"`

	Title      string    `json:"title"`
	Date       time.Time `json:"date,omitempty"`
	Slug       string    `json:"slug"`
	Layout     string    `json:"layout,omitempty"`
	Categories []string  `json:"categories,omitempty"`
	Tags       []string  `json:"tags,omitempty"`
	Draft      bool      `json:"draft,omitempty"`
	Excerpt    string    `json:"excerpt,omitempty"`

	URL        string `json:"url"`
	OutputPath string `json:"output_path"`

	Content template.HTML `json:"-"`
	Links   []string      `json:"links,omitempty"`
}

// IsPost reports whether the page belongs to the posts collection.
func (p *Page) IsPost() bool { return p.Collection == CollectionPosts }

// String returns the front matter value for key as a string. The second
// return is false when the key is absent or not a string.
func (p *Page) String(key string) (string, bool) {
	v, ok := p.FrontMatter[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Bool returns the front matter value for key as a bool, or false when
// the key is absent or not a bool.
func (p *Page) Bool(key string) bool {
	v, ok := p.FrontMatter[key]
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// StringSlice returns the front matter value for key as a string slice.
// A scalar string value is returned as a single-element slice, matching
// how YAML authors write one-item lists.
func (p *Page) StringSlice(key string) []string {
	v, ok := p.FrontMatter[key]
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case string:
		if t == "" {
			return nil
		}
		return []string{t}
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return t
	default:
		return nil
	}
}
