package render

import (
	"html/template"
	"strings"
	"testing"

	"github.com/starford/jera/internal/models"
	"github.com/starford/jera/internal/storage"
)

func testStore(t *testing.T, files map[string]string) *storage.FS {
	t.Helper()
	fs, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for p, content := range files {
		if err := fs.Write(p, []byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	return fs
}

func testSite() *models.Site {
	return &models.Site{Title: "Test Site", Locale: "en"}
}

func TestBuiltinLayoutsWhenDirMissing(t *testing.T) {
	store := testStore(t, nil)

	e, err := NewEngine(store, "_layouts", "_includes")
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	for _, name := range []string{"default", "post", "home", "archive"} {
		if !e.Has(name) {
			t.Errorf("builtin layout %q missing", name)
		}
	}

	page := &models.Page{Title: "Hello", Layout: "default"}
	out, err := e.Execute("default", Data{
		Site:    testSite(),
		Page:    page,
		Content: template.HTML("<p>body</p>"),
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(string(out), "<p>body</p>") {
		t.Errorf("content missing from output: %s", out)
	}
	if !strings.Contains(string(out), "Test Site") {
		t.Errorf("site title missing from output: %s", out)
	}
}

func TestLayoutChain(t *testing.T) {
	store := testStore(t, map[string]string{
		"_layouts/base.html": "<html><body>{{.Content}}</body></html>",
		"_layouts/wrap.html": "---\nlayout: base\n---\n<div class=\"wrap\">{{.Content}}</div>",
	})

	e, err := NewEngine(store, "_layouts", "_includes")
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	out, err := e.Execute("wrap", Data{
		Site:    testSite(),
		Content: template.HTML("<p>hi</p>"),
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	s := string(out)
	wrapIdx := strings.Index(s, `<div class="wrap">`)
	bodyIdx := strings.Index(s, "<body>")
	contentIdx := strings.Index(s, "<p>hi</p>")
	if bodyIdx < 0 || wrapIdx < 0 || contentIdx < 0 {
		t.Fatalf("output missing pieces: %s", s)
	}
	if !(bodyIdx < wrapIdx && wrapIdx < contentIdx) {
		t.Errorf("nesting order wrong: %s", s)
	}
}

func TestMissingLayout(t *testing.T) {
	store := testStore(t, map[string]string{
		"_layouts/base.html": "{{.Content}}",
	})
	e, err := NewEngine(store, "_layouts", "_includes")
	if err != nil {
		t.Fatal(err)
	}

	_, err = e.Execute("ghost", Data{Site: testSite()})
	if err == nil {
		t.Fatal("expected error for missing layout")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("error = %v", err)
	}
}

func TestLayoutCycle(t *testing.T) {
	store := testStore(t, map[string]string{
		"_layouts/a.html": "---\nlayout: b\n---\nA{{.Content}}",
		"_layouts/b.html": "---\nlayout: a\n---\nB{{.Content}}",
	})
	e, err := NewEngine(store, "_layouts", "_includes")
	if err != nil {
		t.Fatal(err)
	}

	_, err = e.Execute("a", Data{Site: testSite()})
	if err == nil {
		t.Fatal("expected error for layout cycle")
	}
	if !strings.Contains(err.Error(), "cycle") {
		t.Errorf("error = %v", err)
	}
}

func TestIncludes(t *testing.T) {
	store := testStore(t, map[string]string{
		"_includes/head.html": `<meta name="from-include">`,
		"_layouts/page.html":  `<head>{{template "head.html" .}}</head>{{.Content}}`,
	})
	e, err := NewEngine(store, "_layouts", "_includes")
	if err != nil {
		t.Fatal(err)
	}

	out, err := e.Execute("page", Data{Site: testSite()})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(string(out), `<meta name="from-include">`) {
		t.Errorf("include not rendered: %s", out)
	}
}

func TestEmptyLayoutPassesContentThrough(t *testing.T) {
	store := testStore(t, nil)
	e, err := NewEngine(store, "_layouts", "_includes")
	if err != nil {
		t.Fatal(err)
	}

	page := &models.Page{Content: template.HTML("<p>raw</p>")}
	out, err := e.Page(testSite(), page)
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	if string(out) != "<p>raw</p>" {
		t.Errorf("out = %q, want untouched content", out)
	}
}

func TestContentNotEscaped(t *testing.T) {
	store := testStore(t, map[string]string{
		"_layouts/raw.html": "{{.Content}}",
	})
	e, err := NewEngine(store, "_layouts", "_includes")
	if err != nil {
		t.Fatal(err)
	}

	out, err := e.Execute("raw", Data{
		Site:    testSite(),
		Content: template.HTML(`<em class="x">kept</em>`),
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), `<em class="x">kept</em>`) {
		t.Errorf("converted HTML was escaped: %s", out)
	}
}

func TestBrokenLayoutTemplate(t *testing.T) {
	store := testStore(t, map[string]string{
		"_layouts/bad.html": "{{.Content",
	})
	if _, err := NewEngine(store, "_layouts", "_includes"); err == nil {
		t.Fatal("expected error for unparseable layout")
	}
}
