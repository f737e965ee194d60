// Package scaffold creates new sites and content stubs with canonical
// front matter.
package scaffold

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/starford/jera/internal/apperr"
	"github.com/starford/jera/internal/config"
	"github.com/starford/jera/internal/parser"
	"github.com/starford/jera/internal/storage"
)

const postsDir = "_posts"

// PostStub returns the relative path and content for a new post dated
// now. The file name carries the date prefix the collector expects.
func PostStub(title string, now time.Time, draft bool) (string, []byte, error) {
	slug := parser.Slugify(title)
	if slug == "" {
		return "", nil, fmt.Errorf("scaffold: title %q produces an empty slug", title)
	}
	rel := path.Join(postsDir, now.Format("2006-01-02")+"-"+slug+".md")

	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "uid: %s\n", uuid.New().String())
	fmt.Fprintf(&b, "title: %q\n", title)
	b.WriteString("layout: post\n")
	fmt.Fprintf(&b, "date: %s\n", now.Format("2006-01-02 15:04:05 -0700"))
	b.WriteString("categories: []\n")
	b.WriteString("tags: []\n")
	if draft {
		b.WriteString("draft: true\n")
	}
	b.WriteString("---\n\n")
	return rel, []byte(b.String()), nil
}

// PageStub returns the relative path and content for a new standalone
// page at the source root.
func PageStub(title string) (string, []byte, error) {
	slug := parser.Slugify(title)
	if slug == "" {
		return "", nil, fmt.Errorf("scaffold: title %q produces an empty slug", title)
	}
	rel := slug + ".md"

	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "uid: %s\n", uuid.New().String())
	fmt.Fprintf(&b, "title: %q\n", title)
	b.WriteString("layout: default\n")
	b.WriteString("---\n\n")
	return rel, []byte(b.String()), nil
}

// CreatePost writes a post stub into the site source, refusing to
// overwrite an existing file. It returns the path relative to the
// source root.
func CreatePost(store storage.Provider, cfg *config.Config, title string, draft bool) (string, error) {
	rel, content, err := PostStub(title, time.Now().In(cfg.Location()), draft)
	if err != nil {
		return "", err
	}
	if _, err := store.Read(rel); err == nil {
		return "", fmt.Errorf("scaffold: %s: %w", rel, apperr.ErrAlreadyExists)
	}
	if err := store.Write(rel, content); err != nil {
		return "", err
	}
	return rel, nil
}

// CreatePage writes a page stub at the source root, refusing to
// overwrite an existing file.
func CreatePage(store storage.Provider, title string) (string, error) {
	rel, content, err := PageStub(title)
	if err != nil {
		return "", err
	}
	if _, err := store.Read(rel); err == nil {
		return "", fmt.Errorf("scaffold: %s: %w", rel, apperr.ErrAlreadyExists)
	}
	if err := store.Write(rel, content); err != nil {
		return "", err
	}
	return rel, nil
}
