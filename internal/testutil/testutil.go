// Package testutil provides shared test helpers for setting up site
// fixtures and index databases.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/jera/internal/config"
	"github.com/starford/jera/internal/index"
)

// TestDB creates a temporary SQLite database that is automatically
// cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "jera-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// WriteFile writes a source file under root, creating directories as
// needed.
func WriteFile(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// TestSite creates a site root with two posts, one page and a static
// file, and returns it with a validated default config.
func TestSite(t *testing.T) (string, *config.Config) {
	t.Helper()
	root := t.TempDir()

	WriteFile(t, root, "_posts/2024-01-15-hello-world.md", `---
title: Hello World
layout: post
categories: news
tags: [go]
---

A uniqueword start.

See [missing](/nowhere/) and [about](/about/).
`)
	WriteFile(t, root, "_posts/2024-02-20-second-post.md", `---
title: Second Post
layout: post
---

More to say.
`)
	WriteFile(t, root, "about.md", `---
title: About
layout: default
---

About this site.
`)
	WriteFile(t, root, "static/css/site.css", "body { margin: 0; }\n")

	cfg := config.NewDefaultConfig()
	cfg.Title = "Test Site"
	cfg.URL = "https://example.com"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate config: %v", err)
	}
	return root, cfg
}
