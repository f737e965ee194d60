package build

import (
	"fmt"
	"path"
	"strings"

	"github.com/starford/jera/internal/apperr"
	"github.com/starford/jera/internal/models"
	"github.com/starford/jera/internal/parser"
	"github.com/starford/jera/internal/permalink"
	"github.com/starford/jera/internal/storage"
)

// postsDir is the conventional posts location under the site source.
const postsDir = "_posts"

var markdownExts = []string{".md", ".markdown"}

// collect scans the source tree and parses every content file into a
// Page. Files whose front matter cannot be parsed are skipped and
// recorded as content errors.
func (b *Builder) collect(src *storage.FS, errs *apperr.Collector) ([]*models.Page, error) {
	var pages []*models.Page

	postMetas, err := src.List(postsDir, markdownExts...)
	if err != nil {
		return nil, err
	}
	for _, m := range postMetas {
		p, perr := b.loadPage(src, m, models.CollectionPosts)
		if perr != nil {
			errs.Add(perr)
			continue
		}
		pages = append(pages, p)
	}

	pageMetas, err := src.List("", markdownExts...)
	if err != nil {
		return nil, err
	}
	for _, m := range pageMetas {
		if b.skipAsPage(m.Path) {
			continue
		}
		p, perr := b.loadPage(src, m, models.CollectionPages)
		if perr != nil {
			errs.Add(perr)
			continue
		}
		pages = append(pages, p)
	}

	return pages, nil
}

// loadPage reads and parses one source file.
func (b *Builder) loadPage(src *storage.FS, m storage.FileMeta, collection string) (*models.Page, *apperr.Error) {
	data, err := src.Read(m.Path)
	if err != nil {
		return nil, apperr.New(apperr.KindContent, m.Path, err)
	}
	res, err := parser.Parse(data)
	if err != nil {
		return nil, apperr.New(apperr.KindContent, m.Path, err)
	}
	return &models.Page{
		SourcePath:  m.Path,
		Collection:  collection,
		FrontMatter: res.FrontMatter,
		Body:        res.Body,
		Checksum:    m.Checksum,
	}, nil
}

// skipAsPage filters the whole-tree listing down to plain pages:
// underscore and dot directories are reserved, the static dir is
// copied verbatim, and configured excludes are honored.
func (b *Builder) skipAsPage(rel string) bool {
	for _, seg := range strings.Split(rel, "/") {
		if strings.HasPrefix(seg, "_") || strings.HasPrefix(seg, ".") {
			return true
		}
	}
	if b.cfg.StaticDir != "" {
		static := strings.Trim(b.cfg.StaticDir, "/")
		if rel == static || strings.HasPrefix(rel, static+"/") {
			return true
		}
	}
	for _, ex := range b.cfg.Exclude {
		ex = strings.Trim(ex, "/")
		if ex == "" {
			continue
		}
		if rel == ex || strings.HasPrefix(rel, ex+"/") {
			return true
		}
		if ok, _ := path.Match(ex, rel); ok {
			return true
		}
	}
	return false
}

// materialize derives the typed page fields from the effective front
// matter, fills URLs and output paths, and drops pages that fail their
// contract. Posts require a title and a date (front matter or filename
// prefix); pages derive what they can.
func (b *Builder) materialize(pages []*models.Page, pattern *permalink.Pattern, errs *apperr.Collector) ([]*models.Page, int) {
	loc := b.cfg.Location()
	seen := make(map[string]string) // URL → source path
	drafts := 0

	var out []*models.Page
	for _, p := range pages {
		p.Draft = p.Bool("draft")
		if p.Draft && !b.IncludeDrafts {
			drafts++
			continue
		}

		name := path.Base(p.SourcePath)
		fileDate, fileSlug, fromName := parser.PostFilename(name)

		if v, ok := p.FrontMatter["date"]; ok {
			d, err := parser.ParseDate(v, loc)
			if err != nil {
				errs.Add(apperr.New(apperr.KindContent, p.SourcePath, err))
				continue
			}
			p.Date = d
		} else if fromName {
			p.Date = fileDate
		}

		if p.IsPost() {
			if p.Date.IsZero() {
				errs.Addf(apperr.KindContent, p.SourcePath, "post has no date in front matter or filename")
				continue
			}
			title, ok := p.String("title")
			if !ok || title == "" {
				errs.Addf(apperr.KindContent, p.SourcePath, "post has no title")
				continue
			}
			p.Title = title
		} else {
			p.Title = parser.DeriveTitle(p.FrontMatter, p.Body)
			if p.Title == "" {
				p.Title = parser.TitleFromSlug(stem(name))
			}
		}

		if s, ok := p.String("slug"); ok && s != "" {
			p.Slug = parser.Slugify(s)
		} else if fromName {
			p.Slug = fileSlug
		} else if p.IsPost() {
			p.Slug = parser.Slugify(p.Title)
		} else {
			p.Slug = parser.Slugify(stem(name))
		}

		p.Layout, _ = p.String("layout")
		p.Categories = p.StringSlice("categories")
		if len(p.Categories) == 0 {
			p.Categories = p.StringSlice("category")
		}
		p.Tags = p.StringSlice("tags")

		if ex, ok := p.String("excerpt"); ok {
			p.Excerpt = ex
		} else {
			p.Excerpt = parser.Excerpt(p.Body)
		}

		url, err := b.pageURL(p, pattern)
		if err != nil {
			errs.Add(apperr.New(apperr.KindContent, p.SourcePath, err))
			continue
		}
		p.URL = url
		p.OutputPath = permalink.OutputPath(url)

		if prev, dup := seen[p.URL]; dup {
			errs.Addf(apperr.KindContent, p.SourcePath, "url %s already used by %s", p.URL, prev)
			continue
		}
		seen[p.URL] = p.SourcePath

		out = append(out, p)
	}
	return out, drafts
}

// pageURL resolves the page URL: an explicit front matter permalink
// wins, posts expand the configured pattern, pages mirror their source
// path.
func (b *Builder) pageURL(p *models.Page, pattern *permalink.Pattern) (string, error) {
	if pl, ok := p.String("permalink"); ok && pl != "" {
		if !strings.HasPrefix(pl, "/") {
			pl = "/" + pl
		}
		return pl, nil
	}
	if p.IsPost() {
		url, err := pattern.Expand(p)
		if err != nil {
			return "", fmt.Errorf("permalink: %w", err)
		}
		return url, nil
	}
	return permalink.PageURL(p.SourcePath), nil
}

func stem(name string) string {
	for _, ext := range markdownExts {
		if strings.HasSuffix(name, ext) {
			return strings.TrimSuffix(name, ext)
		}
	}
	return name
}
