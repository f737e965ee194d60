package site

import (
	"encoding/xml"
	"fmt"
	"strings"
)

const sitemapXmlns = "http://www.sitemaps.org/schemas/sitemap/0.9"

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

type urlset struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// sitemapGenerator emits sitemap.xml covering posts, pages and the
// HTML documents earlier generators derived. Running it last in the
// plugin list therefore includes index and archive pages.
type sitemapGenerator struct{}

func (sitemapGenerator) Name() string { return "sitemap" }

func (sitemapGenerator) Generate(ctx *Context) ([]Doc, error) {
	s := ctx.Site
	set := urlset{Xmlns: sitemapXmlns}

	for _, p := range s.Posts {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:     s.AbsURL(p.URL),
			LastMod: p.Date.Format("2006-01-02"),
		})
	}
	for _, p := range s.Pages {
		set.URLs = append(set.URLs, sitemapURL{Loc: s.AbsURL(p.URL)})
	}
	for _, d := range ctx.Derived {
		if d.URL == "" || !strings.HasSuffix(d.Path, ".html") {
			continue
		}
		set.URLs = append(set.URLs, sitemapURL{Loc: s.AbsURL(d.URL)})
	}

	body, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("sitemap: %w", err)
	}
	out := append([]byte(xml.Header), body...)
	out = append(out, '\n')
	return []Doc{{Path: "sitemap.xml", Body: out}}, nil
}
