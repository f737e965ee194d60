// Package site assembles the final Site from materialized pages and
// derives the generated documents: paginated indexes, archives, the
// feed and the sitemap.
package site

import (
	"sort"

	"github.com/starford/jera/internal/config"
	"github.com/starford/jera/internal/models"
)

// Assemble splits pages into collections, orders them and computes the
// taxonomy maps. Posts are reverse chronological with the source path
// as tie-break; pages are in lexical source order. Site.Time is pinned
// to the newest post date so identical sources build identical bytes.
func Assemble(cfg *config.Config, all []*models.Page) *models.Site {
	s := &models.Site{
		Title:       cfg.Title,
		Description: cfg.Description,
		URL:         cfg.URL,
		BaseURL:     cfg.BaseURL,
		Locale:      cfg.Locale,
		Author:      cfg.Author,
		FooterLinks: cfg.FooterLinks,
		Categories:  make(map[string][]*models.Page),
		Tags:        make(map[string][]*models.Page),
	}

	for _, p := range all {
		if p.IsPost() {
			s.Posts = append(s.Posts, p)
		} else {
			s.Pages = append(s.Pages, p)
		}
	}

	sort.SliceStable(s.Posts, func(i, j int) bool {
		if !s.Posts[i].Date.Equal(s.Posts[j].Date) {
			return s.Posts[i].Date.After(s.Posts[j].Date)
		}
		return s.Posts[i].SourcePath < s.Posts[j].SourcePath
	})
	sort.SliceStable(s.Pages, func(i, j int) bool {
		return s.Pages[i].SourcePath < s.Pages[j].SourcePath
	})

	for _, p := range s.Posts {
		for _, c := range p.Categories {
			s.Categories[c] = append(s.Categories[c], p)
		}
		for _, tag := range p.Tags {
			s.Tags[tag] = append(s.Tags[tag], p)
		}
	}

	if len(s.Posts) > 0 {
		s.Time = s.Posts[0].Date
	}
	return s
}
