package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/starford/jera/internal/apperr"
)

// PageRow represents a row in the pages table.
type PageRow struct {
	Path       string
	URL        string
	Title      string
	Collection string
	Checksum   string
	Tags       []string
	Categories []string
	Date       time.Time
	UpdatedAt  time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	Path    string
	URL     string
	Title   string
	Snippet string
}

// Link is one recorded outgoing link.
type Link struct {
	Source string
	Target string
}

// UpsertPage inserts or replaces a page, its FTS entry, and links
// within a transaction.
func (db *DB) UpsertPage(row PageRow, body string, links []string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	tagsJSON, _ := json.Marshal(row.Tags)
	catsJSON, _ := json.Marshal(row.Categories)

	// Upsert pages table (includes body for fallback search).
	_, err = tx.Exec(`
		INSERT INTO pages (path, url, title, collection, checksum, tags, categories, date, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			url        = excluded.url,
			title      = excluded.title,
			collection = excluded.collection,
			checksum   = excluded.checksum,
			tags       = excluded.tags,
			categories = excluded.categories,
			date       = excluded.date,
			body       = excluded.body,
			updated_at = excluded.updated_at
	`, row.Path, row.URL, row.Title, row.Collection, row.Checksum, string(tagsJSON), string(catsJSON), row.Date, body, row.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert page: %w", err)
	}

	// FTS upsert (no-op when FTS5 tag is absent).
	if err := ftsUpsert(tx, row.Path, row.URL, row.Title, body, row.Tags); err != nil {
		return err
	}

	// Replace links: delete old then bulk insert.
	_, _ = tx.Exec(`DELETE FROM links WHERE source = ?`, row.Path)
	if len(links) > 0 {
		stmt, err := tx.Prepare(`INSERT OR IGNORE INTO links (source, target, type) VALUES (?, ?, 'inline')`)
		if err != nil {
			return fmt.Errorf("index: prepare link insert: %w", err)
		}
		defer stmt.Close()
		for _, target := range links {
			if _, err := stmt.Exec(row.Path, target); err != nil {
				return fmt.Errorf("index: insert link: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeletePage removes a page, its FTS entry, and outgoing links.
func (db *DB) DeletePage(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	_, _ = tx.Exec(`DELETE FROM links WHERE source = ?`, path)
	_, _ = tx.Exec(`DELETE FROM pages WHERE path = ?`, path)

	return tx.Commit()
}

// GetPage returns the indexed page row and its stored body.
func (db *DB) GetPage(path string) (*PageRow, string, error) {
	var (
		row              PageRow
		body, tags, cats string
	)
	err := db.conn.QueryRow(`
		SELECT path, url, title, collection, checksum, tags, categories, date, body, updated_at
		FROM pages WHERE path = ?
	`, path).Scan(&row.Path, &row.URL, &row.Title, &row.Collection, &row.Checksum, &tags, &cats, &row.Date, &body, &row.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", apperr.ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("index: get page: %w", err)
	}
	_ = json.Unmarshal([]byte(tags), &row.Tags)
	_ = json.Unmarshal([]byte(cats), &row.Categories)
	return &row, body, nil
}

// GetChecksum returns the stored checksum for a page, or empty string
// if not found.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM pages WHERE path = ?`, path).Scan(&cs)
	if err != nil {
		return "", nil // not found is fine
	}
	return cs, nil
}

// AllChecksums returns path → checksum for every indexed page.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM pages`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// ListPages returns paginated pages with optional collection and tag
// filters, newest first, plus the total matching count.
func (db *DB) ListPages(limit, offset int, collection, tag string) ([]PageRow, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	where := "1=1"
	args := []interface{}{}
	if collection != "" {
		where += " AND collection = ?"
		args = append(args, collection)
	}
	if tag != "" {
		// Tags are stored as a JSON array of strings.
		where += " AND tags LIKE ?"
		args = append(args, `%"`+tag+`"%`)
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM pages WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count pages: %w", err)
	}

	rows, err := db.conn.Query(`
		SELECT path, url, title, collection, checksum, tags, categories, date, updated_at
		FROM pages WHERE `+where+`
		ORDER BY date DESC, path ASC
		LIMIT ? OFFSET ?
	`, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list pages: %w", err)
	}
	defer rows.Close()

	var out []PageRow
	for rows.Next() {
		var r PageRow
		var tags, cats string
		if err := rows.Scan(&r.Path, &r.URL, &r.Title, &r.Collection, &r.Checksum, &tags, &cats, &r.Date, &r.UpdatedAt); err != nil {
			return nil, 0, err
		}
		_ = json.Unmarshal([]byte(tags), &r.Tags)
		_ = json.Unmarshal([]byte(cats), &r.Categories)
		out = append(out, r)
	}
	return out, total, rows.Err()
}

// Backlinks returns all page paths that link to the given target URL.
func (db *DB) Backlinks(target string) ([]string, error) {
	rows, err := db.conn.Query(`SELECT source FROM links WHERE target = ?`, target)
	if err != nil {
		return nil, fmt.Errorf("index: backlinks: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// BrokenLinks returns internal links whose target does not resolve to
// any indexed page URL. Targets that look like asset files are left to
// the static file copy and not reported.
func (db *DB) BrokenLinks() ([]Link, error) {
	rows, err := db.conn.Query(`
		SELECT l.source, l.target
		FROM links l
		WHERE l.target LIKE '/%'
		  AND NOT EXISTS (
			SELECT 1 FROM pages p
			WHERE p.url = l.target OR p.url = l.target || '/'
		  )
		ORDER BY l.source, l.target
	`)
	if err != nil {
		return nil, fmt.Errorf("index: broken links: %w", err)
	}
	defer rows.Close()

	var out []Link
	for rows.Next() {
		var l Link
		if err := rows.Scan(&l.Source, &l.Target); err != nil {
			return nil, err
		}
		if ext := path.Ext(strings.TrimSuffix(l.Target, "/")); ext != "" && ext != ".html" {
			continue
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
