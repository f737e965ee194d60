package parser

import (
	"strings"
	"testing"
	"time"
)

func TestParseFrontMatter(t *testing.T) {
	data := []byte(`---
title: Hello World
layout: post
tags:
  - go
  - web
---

Body text here.
`)
	res, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := res.FrontMatter["title"]; got != "Hello World" {
		t.Errorf("title = %v, want Hello World", got)
	}
	if got := res.FrontMatter["layout"]; got != "post" {
		t.Errorf("layout = %v, want post", got)
	}
	if !strings.HasPrefix(res.Body, "Body text here.") {
		t.Errorf("body = %q", res.Body)
	}
}

func TestParseNoFrontMatter(t *testing.T) {
	res, err := Parse([]byte("# Just a heading\n\nText.\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if res.FrontMatter != nil {
		t.Errorf("front matter = %v, want nil", res.FrontMatter)
	}
	if !strings.HasPrefix(res.Body, "# Just a heading") {
		t.Errorf("body = %q", res.Body)
	}
}

func TestParseMalformedYAML(t *testing.T) {
	data := []byte("---\ntitle: [unclosed\n---\nbody\n")
	if _, err := Parse(data); err == nil {
		t.Fatal("expected error for malformed front matter")
	}
}

func TestParseUnclosedFrontMatter(t *testing.T) {
	data := []byte("---\ntitle: Dangling\n\nno closing delimiter\n")
	if _, err := Parse(data); err == nil {
		t.Fatal("expected error for unclosed front matter")
	}
}

func TestPostFilename(t *testing.T) {
	cases := []struct {
		name     string
		wantDate string
		wantSlug string
		wantOK   bool
	}{
		{"2026-01-02-hello-world.md", "2026-01-02", "hello-world", true},
		{"2025-12-31-year-end.markdown", "2025-12-31", "year-end", true},
		{"hello-world.md", "", "", false},
		{"2026-1-2-short.md", "", "", false},
		{"2026-13-40-bad-date.md", "", "", false},
	}
	for _, tc := range cases {
		date, slug, ok := PostFilename(tc.name)
		if ok != tc.wantOK {
			t.Errorf("%s: ok = %v, want %v", tc.name, ok, tc.wantOK)
			continue
		}
		if !ok {
			continue
		}
		if got := date.Format("2006-01-02"); got != tc.wantDate {
			t.Errorf("%s: date = %s, want %s", tc.name, got, tc.wantDate)
		}
		if slug != tc.wantSlug {
			t.Errorf("%s: slug = %s, want %s", tc.name, slug, tc.wantSlug)
		}
	}
}

func TestParseDate(t *testing.T) {
	// yaml.v3 hands over unquoted dates as time.Time already.
	native := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	got, err := ParseDate(native, time.UTC)
	if err != nil {
		t.Fatalf("ParseDate(time.Time): %v", err)
	}
	if !got.Equal(native) {
		t.Errorf("got %v, want %v", got, native)
	}

	for _, s := range []string{
		"2026-03-14",
		"2026-03-14 09:26:53",
		"2026-03-14T09:26:53Z",
	} {
		d, err := ParseDate(s, time.UTC)
		if err != nil {
			t.Errorf("ParseDate(%q): %v", s, err)
			continue
		}
		if d.Year() != 2026 || d.Month() != 3 || d.Day() != 14 {
			t.Errorf("ParseDate(%q) = %v", s, d)
		}
	}

	if _, err := ParseDate("yesterday", time.UTC); err == nil {
		t.Error("expected error for unparseable date")
	}
	if _, err := ParseDate(nil, nil); err == nil {
		t.Error("expected error for nil date")
	}
}

func TestParseDateLocation(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	d, err := ParseDate("2026-03-14 09:00", berlin)
	if err != nil {
		t.Fatal(err)
	}
	if d.Location().String() != "Europe/Berlin" {
		t.Errorf("location = %s", d.Location())
	}
}

func TestSlugify(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Hello World", "hello-world"},
		{"  Spaces  Around  ", "spaces-around"},
		{"Mixed CASE & Symbols!", "mixed-case-symbols"},
		{"already-a-slug", "already-a-slug"},
		{"Dots. And, Commas", "dots-and-commas"},
	}
	for _, tc := range cases {
		if got := Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTitleFromSlug(t *testing.T) {
	if got := TitleFromSlug("about-us"); got != "About Us" {
		t.Errorf("TitleFromSlug = %q, want About Us", got)
	}
}

func TestDeriveTitle(t *testing.T) {
	fm := map[string]interface{}{"title": "Explicit"}
	if got := DeriveTitle(fm, "# Heading\n"); got != "Explicit" {
		t.Errorf("explicit title lost: %q", got)
	}
	if got := DeriveTitle(nil, "intro\n\n# From Heading\n"); got != "From Heading" {
		t.Errorf("heading title = %q", got)
	}
	if got := DeriveTitle(nil, "no headings here\n"); got != "" {
		t.Errorf("want empty title, got %q", got)
	}
}

func TestExcerpt(t *testing.T) {
	body := "# Title\n\nFirst *paragraph* with a [link](https://example.com) inside.\nStill the same paragraph.\n\nSecond paragraph.\n"
	got := Excerpt(body)
	want := "First paragraph with a link inside. Still the same paragraph."
	if got != want {
		t.Errorf("Excerpt = %q, want %q", got, want)
	}

	if got := Excerpt("# Only a heading\n"); got != "" {
		t.Errorf("heading-only excerpt = %q, want empty", got)
	}
}
