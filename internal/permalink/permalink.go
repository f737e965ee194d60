// Package permalink expands permalink patterns into page URLs and
// output paths.
package permalink

import (
	"fmt"
	"strings"

	"github.com/starford/jera/internal/models"
	"github.com/starford/jera/internal/parser"
)

// Named permalink styles. A style name in the configuration stands for
// its pattern; anything else is treated as a literal pattern.
const (
	StyleDate   = "date"
	StylePretty = "pretty"
	StyleNone   = "none"
)

var styles = map[string]string{
	StyleDate:   "/:categories/:year/:month/:day/:title/",
	StylePretty: "/:categories/:year/:month/:day/:title/",
	StyleNone:   "/:categories/:title/",
}

// validTokens is the set of placeholders a pattern may reference.
var validTokens = map[string]bool{
	"categories": true,
	"year":       true,
	"month":      true,
	"day":        true,
	"title":      true,
	"slug":       true,
}

// Pattern is a compiled permalink pattern.
type Pattern struct {
	raw      string
	segments []string
}

// Compile resolves a style name or literal pattern and checks that
// every :token it references is known.
func Compile(pattern string) (*Pattern, error) {
	if pattern == "" {
		pattern = styles[StyleDate]
	}
	if resolved, ok := styles[pattern]; ok {
		pattern = resolved
	}
	if !strings.HasPrefix(pattern, "/") {
		return nil, fmt.Errorf("pattern %q must start with /", pattern)
	}

	segments := strings.Split(strings.Trim(pattern, "/"), "/")
	for _, seg := range segments {
		if !strings.Contains(seg, ":") {
			continue
		}
		for _, tok := range tokensIn(seg) {
			if !validTokens[tok] {
				return nil, fmt.Errorf("unknown permalink token :%s in %q", tok, pattern)
			}
		}
	}
	return &Pattern{raw: pattern, segments: segments}, nil
}

// tokensIn extracts the :token names embedded in one path segment.
func tokensIn(seg string) []string {
	var out []string
	for i := 0; i < len(seg); i++ {
		if seg[i] != ':' {
			continue
		}
		j := i + 1
		for j < len(seg) && (isWordByte(seg[j]) || seg[j] == '_') {
			j++
		}
		if j > i+1 {
			out = append(out, seg[i+1:j])
		}
		i = j - 1
	}
	return out
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

// Expand produces the site-relative URL for a post. Directory-style
// patterns (trailing slash) yield URLs ending in "/"; other patterns
// keep their literal tail.
func (p *Pattern) Expand(page *models.Page) (string, error) {
	var parts []string
	for _, seg := range p.segments {
		if seg == "" {
			continue
		}
		if !strings.Contains(seg, ":") {
			parts = append(parts, seg)
			continue
		}
		expanded, err := expandSegment(seg, page)
		if err != nil {
			return "", err
		}
		if expanded == "" {
			// A token with no value (e.g. no categories) drops its
			// whole segment rather than leaving an empty hole.
			continue
		}
		parts = append(parts, expanded)
	}
	url := "/" + strings.Join(parts, "/")
	if strings.HasSuffix(p.raw, "/") && url != "/" {
		url += "/"
	}
	return url, nil
}

func expandSegment(seg string, page *models.Page) (string, error) {
	out := seg
	for _, tok := range tokensIn(seg) {
		val, err := tokenValue(tok, page)
		if err != nil {
			return "", err
		}
		out = strings.Replace(out, ":"+tok, val, 1)
	}
	return strings.Trim(out, "/"), nil
}

func tokenValue(tok string, page *models.Page) (string, error) {
	switch tok {
	case "categories":
		if len(page.Categories) == 0 {
			return "", nil
		}
		slugs := make([]string, 0, len(page.Categories))
		for _, c := range page.Categories {
			if s := parser.Slugify(c); s != "" {
				slugs = append(slugs, s)
			}
		}
		return strings.Join(slugs, "/"), nil
	case "year":
		if page.Date.IsZero() {
			return "", fmt.Errorf(":year used but page has no date")
		}
		return page.Date.Format("2006"), nil
	case "month":
		if page.Date.IsZero() {
			return "", fmt.Errorf(":month used but page has no date")
		}
		return page.Date.Format("01"), nil
	case "day":
		if page.Date.IsZero() {
			return "", fmt.Errorf(":day used but page has no date")
		}
		return page.Date.Format("02"), nil
	case "title", "slug":
		if page.Slug == "" {
			return "", fmt.Errorf(":%s used but page has no slug", tok)
		}
		return page.Slug, nil
	default:
		return "", fmt.Errorf("unknown permalink token :%s", tok)
	}
}

// OutputPath maps a site-relative URL to the file path written under
// the output directory. Directory URLs get an index.html; URLs with an
// extension map to themselves; extensionless file URLs get ".html".
func OutputPath(url string) string {
	trimmed := strings.TrimPrefix(url, "/")
	if trimmed == "" {
		return "index.html"
	}
	if strings.HasSuffix(trimmed, "/") {
		return trimmed + "index.html"
	}
	if i := strings.LastIndex(trimmed, "."); i > strings.LastIndex(trimmed, "/") {
		return trimmed
	}
	return trimmed + ".html"
}

// PageURL derives the URL for a non-post page from its source path:
// about.md becomes /about/, docs/setup.md becomes /docs/setup/ and any
// index.md maps onto its directory.
func PageURL(sourcePath string) string {
	p := strings.TrimSuffix(sourcePath, ".markdown")
	p = strings.TrimSuffix(p, ".md")
	p = strings.Trim(p, "/")
	if p == "index" || p == "" {
		return "/"
	}
	if strings.HasSuffix(p, "/index") {
		p = strings.TrimSuffix(p, "/index")
	}
	segs := strings.Split(p, "/")
	for i, s := range segs {
		segs[i] = parser.Slugify(s)
	}
	return "/" + strings.Join(segs, "/") + "/"
}
