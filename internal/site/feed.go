package site

import (
	"fmt"

	"github.com/gorilla/feeds"
)

// feedEntries caps how many posts the feed carries.
const feedEntries = 20

// feedGenerator emits an Atom feed of the newest posts at /feed.xml.
// The feed's updated stamp is the site time, never the wall clock, so
// rebuilding unchanged sources reproduces identical bytes.
type feedGenerator struct{}

func (feedGenerator) Name() string { return "feed" }

func (feedGenerator) Generate(ctx *Context) ([]Doc, error) {
	s := ctx.Site

	feed := &feeds.Feed{
		Title:       s.Title,
		Description: s.Description,
		Link:        &feeds.Link{Href: s.AbsURL("/")},
		Id:          s.AbsURL("/"),
		Updated:     s.Time,
	}
	if s.Author.Name != "" {
		feed.Author = &feeds.Author{Name: s.Author.Name, Email: s.Author.Email}
	}

	posts := s.Posts
	if len(posts) > feedEntries {
		posts = posts[:feedEntries]
	}
	for _, p := range posts {
		item := &feeds.Item{
			Title:   p.Title,
			Link:    &feeds.Link{Href: s.AbsURL(p.URL)},
			Id:      s.AbsURL(p.URL),
			Created: p.Date,
			Updated: p.Date,
			Content: string(p.Content),
		}
		if p.Excerpt != "" {
			item.Description = p.Excerpt
		}
		feed.Items = append(feed.Items, item)
	}

	atom, err := feed.ToAtom()
	if err != nil {
		return nil, fmt.Errorf("feed: %w", err)
	}
	return []Doc{{Path: "feed.xml", Body: []byte(atom)}}, nil
}
