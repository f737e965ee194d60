// Package preview coordinates rebuilds, the content index and the
// event broker behind the development server.
package preview

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/starford/jera/internal/build"
	"github.com/starford/jera/internal/index"
	"github.com/starford/jera/internal/models"
	"github.com/starford/jera/internal/sse"
)

// ErrSearchDisabled is returned by index-backed operations when the
// service runs without an index database.
var ErrSearchDisabled = errors.New("search index is disabled")

// PageDetail is the full representation of an indexed page.
type PageDetail struct {
	Path       string    `json:"path"`
	URL        string    `json:"url"`
	Title      string    `json:"title"`
	Collection string    `json:"collection"`
	Tags       []string  `json:"tags"`
	Categories []string  `json:"categories"`
	Date       time.Time `json:"date"`
	Checksum   string    `json:"checksum"`
	Body       string    `json:"body"`
	Backlinks  []string  `json:"backlinks"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// PageListItem is a lightweight item in a list response.
type PageListItem struct {
	Path       string    `json:"path"`
	URL        string    `json:"url"`
	Title      string    `json:"title"`
	Collection string    `json:"collection"`
	Tags       []string  `json:"tags"`
	Date       time.Time `json:"date"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Service coordinates builds, the index and event broadcasting.
type Service struct {
	builder *build.Builder
	db      *index.DB
	broker  *sse.Broker
	logger  *slog.Logger

	mu   sync.RWMutex
	last *build.Result
}

// NewService creates a new preview service. db and broker may be nil;
// the corresponding features are then skipped.
func NewService(builder *build.Builder, db *index.DB, broker *sse.Broker, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{builder: builder, db: db, broker: broker, logger: logger}
}

// Rebuild runs a full build, refreshes the index and notifies event
// subscribers. reason is carried in the build.started event so clients
// can tell watch-triggered builds from manual ones.
func (s *Service) Rebuild(_ context.Context, reason string) (*build.Report, error) {
	s.publish("started", map[string]string{"reason": reason})

	res, err := s.builder.Run()
	if err != nil {
		s.logger.Error("rebuild failed", slog.String("reason", reason), slog.String("error", err.Error()))
		s.publish("failed", map[string]string{"error": err.Error()})
		return nil, err
	}

	s.mu.Lock()
	s.last = res
	s.mu.Unlock()

	if s.db != nil {
		if err := index.Sync(s.db, res.Site, s.logger); err != nil {
			s.logger.Warn("index sync failed", slog.String("error", err.Error()))
		}
	}

	s.publish("finished", map[string]int{
		"posts":     res.Report.Posts,
		"pages":     res.Report.Pages,
		"generated": res.Report.Generated,
		"errors":    len(res.Report.Errors),
	})
	return res.Report, nil
}

func (s *Service) publish(kind string, data interface{}) {
	if s.broker != nil {
		s.broker.PublishBuildEvent(kind, data)
	}
}

// Report returns the report of the most recent successful build, or
// nil before the first one.
func (s *Service) Report() *build.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return nil
	}
	return s.last.Report
}

// Site returns the assembled site of the most recent successful build.
func (s *Service) Site() *models.Site {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return nil
	}
	return s.last.Site
}

// GetPage reads one page from the index and enriches it with backlinks.
func (s *Service) GetPage(_ context.Context, path string) (*PageDetail, error) {
	if s.db == nil {
		return nil, ErrSearchDisabled
	}
	row, body, err := s.db.GetPage(path)
	if err != nil {
		return nil, err
	}
	bl, err := s.db.Backlinks(row.URL)
	if err != nil {
		return nil, err
	}
	return &PageDetail{
		Path:       row.Path,
		URL:        row.URL,
		Title:      row.Title,
		Collection: row.Collection,
		Tags:       nonNilSlice(row.Tags),
		Categories: nonNilSlice(row.Categories),
		Date:       row.Date,
		Checksum:   row.Checksum,
		Body:       body,
		Backlinks:  nonNilSlice(bl),
		UpdatedAt:  row.UpdatedAt,
	}, nil
}

// ListPages returns paginated pages with optional collection and tag
// filters.
func (s *Service) ListPages(_ context.Context, limit, offset int, collection, tag string) ([]PageListItem, int, error) {
	if s.db == nil {
		return nil, 0, ErrSearchDisabled
	}
	rows, total, err := s.db.ListPages(limit, offset, collection, tag)
	if err != nil {
		return nil, 0, err
	}
	items := make([]PageListItem, len(rows))
	for i, r := range rows {
		items[i] = PageListItem{
			Path:       r.Path,
			URL:        r.URL,
			Title:      r.Title,
			Collection: r.Collection,
			Tags:       nonNilSlice(r.Tags),
			Date:       r.Date,
			UpdatedAt:  r.UpdatedAt,
		}
	}
	return items, total, nil
}

// Search delegates full-text search to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	if s.db == nil {
		return nil, ErrSearchDisabled
	}
	return s.db.Search(query, limit)
}

// BrokenLinks returns internal links that do not resolve to a page.
func (s *Service) BrokenLinks(_ context.Context) ([]index.Link, error) {
	if s.db == nil {
		return nil, ErrSearchDisabled
	}
	return s.db.BrokenLinks()
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
