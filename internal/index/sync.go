package index

import (
	"log/slog"
	"strings"
	"time"

	"github.com/starford/jera/internal/models"
)

// Sync brings the index in line with an assembled site:
//   - new and changed pages are upserted (unchanged checksums skip)
//   - pages no longer in the site are deleted from the index
func Sync(db *DB, s *models.Site, logger *slog.Logger) error {
	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	seen := make(map[string]struct{})
	for _, p := range s.AllPages() {
		seen[p.SourcePath] = struct{}{}

		if checksums[p.SourcePath] == p.Checksum {
			continue
		}

		row := PageRow{
			Path:       p.SourcePath,
			URL:        p.URL,
			Title:      p.Title,
			Collection: p.Collection,
			Checksum:   p.Checksum,
			Tags:       p.Tags,
			Categories: p.Categories,
			Date:       p.Date,
			UpdatedAt:  time.Now(),
		}
		if err := db.UpsertPage(row, p.Body, normalizeLinks(s.URL, p.Links)); err != nil {
			logger.Warn("sync: index failed", slog.String("path", p.SourcePath), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", p.SourcePath))
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := seen[p]; !ok {
			if err := db.DeletePage(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// normalizeLinks rewrites links on the site's own host to root-relative
// form and strips fragments and queries from internal targets, so link
// checks compare against canonical page URLs.
func normalizeLinks(siteURL string, links []string) []string {
	var out []string
	for _, l := range links {
		if siteURL != "" && strings.HasPrefix(l, siteURL) {
			l = strings.TrimPrefix(l, siteURL)
			if !strings.HasPrefix(l, "/") {
				l = "/" + l
			}
		}
		if strings.HasPrefix(l, "/") {
			if i := strings.IndexAny(l, "#?"); i >= 0 {
				l = l[:i]
			}
		}
		if l == "" {
			continue
		}
		out = append(out, l)
	}
	return out
}
