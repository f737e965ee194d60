package site

import (
	"fmt"
	"sort"

	"github.com/starford/jera/internal/config"
	"github.com/starford/jera/internal/models"
	"github.com/starford/jera/internal/parser"
	"github.com/starford/jera/internal/permalink"
	"github.com/starford/jera/internal/render"
)

// Doc is one derived output document produced by a generator.
type Doc struct {
	URL  string // site-relative URL, empty for non-page artifacts
	Path string // file path relative to the output directory
	Body []byte
}

// Context carries everything generators read. Derived accumulates the
// documents produced by generators that already ran, so later plugins
// (the sitemap) can see earlier output.
type Context struct {
	Cfg     *config.Config
	Site    *models.Site
	Engine  *render.Engine
	Derived []Doc
}

// Generator derives documents from the assembled site.
type Generator interface {
	Name() string
	Generate(ctx *Context) ([]Doc, error)
}

// registry maps plugin identifiers from the configuration to their
// generators.
var registry = map[string]Generator{
	"paginate": paginateGenerator{},
	"archives": archivesGenerator{},
	"feed":     feedGenerator{},
	"sitemap":  sitemapGenerator{},
}

// Generators resolves the configured plugin list into generators,
// preserving order. Unknown names are returned separately so the
// caller can log them; "emoji" is silently skipped here because it is
// wired into the Markdown engine, not the document set.
func Generators(names []string) (gens []Generator, unknown []string) {
	for _, name := range names {
		if name == "emoji" {
			continue
		}
		g, ok := registry[name]
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		gens = append(gens, g)
	}
	return gens, unknown
}

// paginateGenerator emits the reverse-chronological post index pages.
type paginateGenerator struct{}

func (paginateGenerator) Name() string { return "paginate" }

func (paginateGenerator) Generate(ctx *Context) ([]Doc, error) {
	if ctx.Cfg.Paginate <= 0 {
		return nil, nil
	}

	// An authored index page owns the site root; the generated index
	// pages then all live under the paginate path.
	rooted := true
	for _, p := range ctx.Site.Pages {
		if p.URL == "/" {
			rooted = false
			break
		}
	}

	var docs []Doc
	for _, pag := range Paginate(ctx.Site.Posts, ctx.Cfg.Paginate, ctx.Cfg.PaginatePath, rooted) {
		title := ""
		if pag.Page > 1 {
			title = fmt.Sprintf("Page %d", pag.Page)
		}
		synthetic := &models.Page{Title: title, URL: pag.URL()}
		html, err := ctx.Engine.Execute("home", render.Data{
			Site:      ctx.Site,
			Page:      synthetic,
			Paginator: pag,
		})
		if err != nil {
			return nil, fmt.Errorf("index page %d: %w", pag.Page, err)
		}
		docs = append(docs, Doc{
			URL:  pag.URL(),
			Path: permalink.OutputPath(pag.URL()),
			Body: []byte(html),
		})
	}
	return docs, nil
}

// archivesGenerator emits one page per category and tag term.
type archivesGenerator struct{}

func (archivesGenerator) Name() string { return "archives" }

func (archivesGenerator) Generate(ctx *Context) ([]Doc, error) {
	var docs []Doc

	emit := func(kind, term string, posts []*models.Page) error {
		url := fmt.Sprintf("/%s/%s/", kind, parser.Slugify(term))
		title := fmt.Sprintf("%s: %s", archiveHeading(kind), term)
		synthetic := &models.Page{Title: title, URL: url}
		html, err := ctx.Engine.Execute("archive", render.Data{
			Site:  ctx.Site,
			Page:  synthetic,
			Posts: posts,
			Term:  term,
		})
		if err != nil {
			return fmt.Errorf("%s %q: %w", kind, term, err)
		}
		docs = append(docs, Doc{
			URL:  url,
			Path: permalink.OutputPath(url),
			Body: []byte(html),
		})
		return nil
	}

	for _, term := range sortedTerms(ctx.Site.Categories) {
		if err := emit("category", term, ctx.Site.Categories[term]); err != nil {
			return nil, err
		}
	}
	for _, term := range sortedTerms(ctx.Site.Tags) {
		if err := emit("tag", term, ctx.Site.Tags[term]); err != nil {
			return nil, err
		}
	}
	return docs, nil
}

func archiveHeading(kind string) string {
	if kind == "tag" {
		return "Tag"
	}
	return "Category"
}

func sortedTerms(m map[string][]*models.Page) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
