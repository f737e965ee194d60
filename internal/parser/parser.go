// Package parser extracts front matter and filename conventions from
// Markdown source files.
package parser

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

var (
	postNameRe  = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})-(.+)\.(md|markdown)$`)
	slugDropRe  = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpaceRe = regexp.MustCompile(`[\s-]+`)
	mdLinkRe    = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	mdInlineRe  = regexp.MustCompile("[*_`]")

	titleCaser = cases.Title(language.English)
)

// Result holds the output of parsing a Markdown source file.
type Result struct {
	FrontMatter map[string]interface{}
	Body        string
}

// Parse separates YAML front matter (between leading --- delimiters)
// from the Markdown body. A file without front matter parses to an
// empty map; malformed YAML inside the delimiters is an error so the
// caller can skip the file and report it.
func Parse(data []byte) (*Result, error) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return &Result{Body: string(data)}, nil
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, fmt.Errorf("front matter opened but never closed")
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var fm map[string]interface{}
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		return nil, fmt.Errorf("invalid front matter: %w", err)
	}

	return &Result{FrontMatter: fm, Body: body}, nil
}

// PostFilename extracts the date and slug embedded in a post filename
// of the form 2026-01-02-hello-world.md. ok is false when the name does
// not follow the convention.
func PostFilename(name string) (date time.Time, slug string, ok bool) {
	m := postNameRe.FindStringSubmatch(name)
	if m == nil {
		return time.Time{}, "", false
	}
	d, err := time.Parse("2006-01-02", m[1]+"-"+m[2]+"-"+m[3])
	if err != nil {
		return time.Time{}, "", false
	}
	return d, m[4], true
}

// Date formats accepted in front matter, tried in order.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDate coerces a front matter date value into a time.Time. YAML
// already resolves unquoted timestamps to time.Time and those pass
// through unchanged; quoted values arrive as strings, are tried
// against the known layouts and interpreted in loc when the layout
// carries no zone of its own.
func ParseDate(v interface{}, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range dateLayouts {
			if d, err := time.ParseInLocation(layout, s, loc); err == nil {
				return d, nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognized date %q", s)
	case nil:
		return time.Time{}, fmt.Errorf("empty date")
	default:
		return time.Time{}, fmt.Errorf("date has unsupported type %T", v)
	}
}

// Slugify lowercases s and reduces it to hyphen-separated alphanumeric
// runs, the form used in URLs and post filenames.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugDropRe.ReplaceAllString(s, "")
	s = slugSpaceRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// TitleFromSlug turns a slug like "about-us" into the display title
// "About Us".
func TitleFromSlug(slug string) string {
	words := strings.ReplaceAll(slug, "-", " ")
	return titleCaser.String(words)
}

// DeriveTitle returns the front matter "title" if present, otherwise
// the first H1 heading, otherwise empty string.
func DeriveTitle(fm map[string]interface{}, body string) string {
	if fm != nil {
		if t, ok := fm["title"]; ok {
			if s, ok := t.(string); ok && s != "" {
				return s
			}
		}
	}
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}

// Excerpt returns the first paragraph of body as plain text: headings
// are skipped, links collapse to their text, emphasis markers drop out.
func Excerpt(body string) string {
	var para []string
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			if len(para) > 0 {
				break
			}
			continue
		}
		if strings.HasPrefix(trimmed, "#") {
			continue
		}
		para = append(para, trimmed)
	}
	if len(para) == 0 {
		return ""
	}
	text := strings.Join(para, " ")
	text = mdLinkRe.ReplaceAllString(text, "$1")
	text = mdInlineRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
