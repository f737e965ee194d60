package index

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/starford/jera/internal/apperr"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "jera-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM pages`).Scan(&count); err != nil {
		t.Fatalf("pages table missing: %v", err)
	}
	if err := db.conn.QueryRow(`SELECT count(*) FROM links`).Scan(&count); err != nil {
		t.Fatalf("links table missing: %v", err)
	}
}

func TestUpsertAndGetChecksum(t *testing.T) {
	db := testDB(t)
	row := PageRow{
		Path:       "_posts/2024-01-15-hello.md",
		URL:        "/news/2024/01/15/hello/",
		Title:      "Hello World",
		Collection: "posts",
		Checksum:   "abc123",
		Tags:       []string{"go", "web"},
		Categories: []string{"news"},
		Date:       time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		UpdatedAt:  time.Now(),
	}
	if err := db.UpsertPage(row, "This is a hello world post.", []string{"/about/"}); err != nil {
		t.Fatalf("UpsertPage: %v", err)
	}
	cs, err := db.GetChecksum("_posts/2024-01-15-hello.md")
	if err != nil {
		t.Fatalf("GetChecksum: %v", err)
	}
	if cs != "abc123" {
		t.Errorf("checksum = %q, want %q", cs, "abc123")
	}
}

func TestGetPage(t *testing.T) {
	db := testDB(t)
	row := PageRow{
		Path:       "about.md",
		URL:        "/about/",
		Title:      "About",
		Collection: "pages",
		Checksum:   "x1",
		Tags:       []string{"meta"},
		UpdatedAt:  time.Now(),
	}
	if err := db.UpsertPage(row, "About body.", nil); err != nil {
		t.Fatalf("UpsertPage: %v", err)
	}

	got, body, err := db.GetPage("about.md")
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if got.Title != "About" || got.URL != "/about/" {
		t.Errorf("row = %+v", got)
	}
	if len(got.Tags) != 1 || got.Tags[0] != "meta" {
		t.Errorf("tags = %v", got.Tags)
	}
	if body != "About body." {
		t.Errorf("body = %q", body)
	}

	_, _, err = db.GetPage("nope.md")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing page err = %v, want ErrNotFound", err)
	}
}

func TestBacklinks(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertPage(PageRow{Path: "a.md", URL: "/a/", Checksum: "1", UpdatedAt: time.Now()}, "body", []string{"/b/"})
	_ = db.UpsertPage(PageRow{Path: "c.md", URL: "/c/", Checksum: "2", UpdatedAt: time.Now()}, "body", []string{"/b/"})

	bl, err := db.Backlinks("/b/")
	if err != nil {
		t.Fatalf("Backlinks: %v", err)
	}
	if len(bl) != 2 {
		t.Fatalf("expected 2 backlinks, got %d", len(bl))
	}
}

func TestDeletePage(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertPage(PageRow{Path: "del.md", URL: "/del/", Checksum: "x", UpdatedAt: time.Now()}, "body", []string{"/target/"})

	if err := db.DeletePage("del.md"); err != nil {
		t.Fatalf("DeletePage: %v", err)
	}
	cs, _ := db.GetChecksum("del.md")
	if cs != "" {
		t.Errorf("deleted page still has checksum %q", cs)
	}
	bl, _ := db.Backlinks("/target/")
	if len(bl) != 0 {
		t.Errorf("expected 0 backlinks after delete, got %d", len(bl))
	}
}

func TestUpsertUpdatesExisting(t *testing.T) {
	db := testDB(t)
	now := time.Now()
	_ = db.UpsertPage(PageRow{Path: "up.md", URL: "/up/", Title: "Old", Checksum: "1", UpdatedAt: now}, "old body", []string{"/x/"})
	_ = db.UpsertPage(PageRow{Path: "up.md", URL: "/up/", Title: "New", Checksum: "2", Tags: []string{"new"}, UpdatedAt: now}, "new body", []string{"/y/"})

	cs, _ := db.GetChecksum("up.md")
	if cs != "2" {
		t.Errorf("checksum = %q, want %q", cs, "2")
	}
	bl, _ := db.Backlinks("/x/")
	if len(bl) != 0 {
		t.Error("old link should be removed on upsert")
	}
	bl, _ = db.Backlinks("/y/")
	if len(bl) != 1 {
		t.Error("new link should exist")
	}
}

func TestGetChecksum_NotFound(t *testing.T) {
	db := testDB(t)
	cs, err := db.GetChecksum("nonexistent.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cs != "" {
		t.Errorf("expected empty checksum, got %q", cs)
	}
}

func TestSearch_Basic(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertPage(PageRow{Path: "s.md", URL: "/s/", Title: "Search Me", Checksum: "1", UpdatedAt: time.Now()}, "uniqueword appears here", nil)

	results, err := db.Search("uniqueword", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Path != "s.md" {
		t.Errorf("search results = %+v, want 1 hit for s.md", results)
	}
	if results[0].URL != "/s/" {
		t.Errorf("result url = %q", results[0].URL)
	}
}

func TestListPages(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertPage(PageRow{
		Path: "_posts/2024-02-01-b.md", URL: "/b/", Title: "B", Collection: "posts",
		Checksum: "1", Tags: []string{"go"}, Date: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), UpdatedAt: time.Now(),
	}, "b", nil)
	_ = db.UpsertPage(PageRow{
		Path: "_posts/2024-01-01-a.md", URL: "/a/", Title: "A", Collection: "posts",
		Checksum: "2", Tags: []string{"web"}, Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), UpdatedAt: time.Now(),
	}, "a", nil)
	_ = db.UpsertPage(PageRow{
		Path: "about.md", URL: "/about/", Title: "About", Collection: "pages",
		Checksum: "3", UpdatedAt: time.Now(),
	}, "about", nil)

	rows, total, err := db.ListPages(0, 0, "", "")
	if err != nil {
		t.Fatalf("ListPages: %v", err)
	}
	if total != 3 || len(rows) != 3 {
		t.Fatalf("total = %d, rows = %d, want 3", total, len(rows))
	}
	if rows[0].Title != "B" {
		t.Errorf("newest first: got %q", rows[0].Title)
	}

	rows, total, err = db.ListPages(0, 0, "posts", "")
	if err != nil {
		t.Fatalf("ListPages posts: %v", err)
	}
	if total != 2 {
		t.Errorf("posts total = %d, want 2", total)
	}
	for _, r := range rows {
		if r.Collection != "posts" {
			t.Errorf("collection filter leaked %q", r.Path)
		}
	}

	rows, total, err = db.ListPages(0, 0, "", "go")
	if err != nil {
		t.Fatalf("ListPages tag: %v", err)
	}
	if total != 1 || rows[0].Path != "_posts/2024-02-01-b.md" {
		t.Errorf("tag filter = %+v, total %d", rows, total)
	}

	rows, total, err = db.ListPages(1, 1, "posts", "")
	if err != nil {
		t.Fatalf("ListPages paged: %v", err)
	}
	if total != 2 || len(rows) != 1 || rows[0].Title != "A" {
		t.Errorf("paged = %+v, total %d", rows, total)
	}
}

func TestBrokenLinks(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertPage(PageRow{Path: "a.md", URL: "/a/", Checksum: "1", UpdatedAt: time.Now()}, "a",
		[]string{"/b/", "/b", "/missing/", "https://elsewhere.example.com/x", "/static/css/site.css"})
	_ = db.UpsertPage(PageRow{Path: "b.md", URL: "/b/", Checksum: "2", UpdatedAt: time.Now()}, "b", nil)

	broken, err := db.BrokenLinks()
	if err != nil {
		t.Fatalf("BrokenLinks: %v", err)
	}
	if len(broken) != 1 {
		t.Fatalf("broken = %+v, want exactly /missing/", broken)
	}
	if broken[0].Source != "a.md" || broken[0].Target != "/missing/" {
		t.Errorf("broken[0] = %+v", broken[0])
	}
}
