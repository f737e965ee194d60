// Package render resolves layout chains and executes them around
// converted page content.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"

	"github.com/starford/jera/internal/models"
	"github.com/starford/jera/internal/parser"
	"github.com/starford/jera/internal/storage"
)

//go:embed layouts/*.html
var builtinLayouts embed.FS

// maxChainDepth bounds layout nesting so a parent cycle cannot loop
// forever.
const maxChainDepth = 10

// Data is the dot handed to layout templates. Content carries the
// already-rendered inner HTML; Paginator, Posts and Term are only set
// for derived documents (index, archive pages).
type Data struct {
	Site      *models.Site
	Page      *models.Page
	Content   template.HTML
	Paginator interface{}
	Posts     []*models.Page
	Term      string
}

// layout is one parsed layout file and its parent reference.
type layout struct {
	name   string
	parent string
	tmpl   *template.Template
}

// Engine holds the parsed layout set.
type Engine struct {
	layouts map[string]*layout
}

// NewEngine parses layouts and includes from the site source. When the
// layouts directory does not exist the embedded default set is used so
// a bare site still renders. Includes are optional either way.
func NewEngine(store storage.Provider, layoutsDir, includesDir string) (*Engine, error) {
	base := template.New("base").Funcs(funcMap)

	includes, err := store.List(includesDir, ".html")
	if err != nil {
		return nil, fmt.Errorf("render: list includes: %w", err)
	}
	for _, inc := range includes {
		data, err := store.Read(inc.Path)
		if err != nil {
			return nil, fmt.Errorf("render: read include: %w", err)
		}
		name := strings.TrimPrefix(inc.Path, strings.Trim(includesDir, "/")+"/")
		if _, err := base.New(name).Parse(string(data)); err != nil {
			return nil, fmt.Errorf("render: parse include %s: %w", inc.Path, err)
		}
	}

	e := &Engine{layouts: make(map[string]*layout)}

	metas, err := store.List(layoutsDir, ".html")
	if err != nil {
		return nil, fmt.Errorf("render: list layouts: %w", err)
	}
	if len(metas) > 0 {
		for _, m := range metas {
			data, err := store.Read(m.Path)
			if err != nil {
				return nil, fmt.Errorf("render: read layout: %w", err)
			}
			if err := e.addLayout(base, layoutName(m.Path), data); err != nil {
				return nil, fmt.Errorf("render: layout %s: %w", m.Path, err)
			}
		}
		return e, nil
	}

	// No layouts directory: fall back to the embedded defaults.
	entries, err := fs.ReadDir(builtinLayouts, "layouts")
	if err != nil {
		return nil, fmt.Errorf("render: builtin layouts: %w", err)
	}
	for _, entry := range entries {
		data, err := builtinLayouts.ReadFile("layouts/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("render: builtin layout %s: %w", entry.Name(), err)
		}
		if err := e.addLayout(base, layoutName(entry.Name()), data); err != nil {
			return nil, fmt.Errorf("render: builtin layout %s: %w", entry.Name(), err)
		}
	}
	return e, nil
}

// layoutName maps a layout file path to its reference name: the
// filename without directory or extension.
func layoutName(p string) string {
	b := path.Base(p)
	return strings.TrimSuffix(b, path.Ext(b))
}

// addLayout splits optional front matter off a layout file, records
// the parent reference and parses the template into a clone of base so
// every layout sees the shared includes.
func (e *Engine) addLayout(base *template.Template, name string, data []byte) error {
	res, err := parser.Parse(data)
	if err != nil {
		return err
	}
	parent := ""
	if res.FrontMatter != nil {
		if p, ok := res.FrontMatter["layout"].(string); ok {
			parent = p
		}
	}
	set, err := base.Clone()
	if err != nil {
		return err
	}
	tmpl, err := set.New(name).Parse(res.Body)
	if err != nil {
		return err
	}
	e.layouts[name] = &layout{name: name, parent: parent, tmpl: tmpl}
	return nil
}

// Has reports whether the engine knows a layout by name.
func (e *Engine) Has(name string) bool {
	_, ok := e.layouts[name]
	return ok
}

// Names returns the known layout names, unsorted.
func (e *Engine) Names() []string {
	out := make([]string, 0, len(e.layouts))
	for n := range e.layouts {
		out = append(out, n)
	}
	return out
}

// chain resolves the layout chain starting at name, child first.
func (e *Engine) chain(name string) ([]*layout, error) {
	var out []*layout
	seen := make(map[string]bool)
	for cur := name; cur != ""; {
		if seen[cur] {
			return nil, fmt.Errorf("layout cycle through %q", cur)
		}
		if len(out) >= maxChainDepth {
			return nil, fmt.Errorf("layout chain deeper than %d", maxChainDepth)
		}
		l, ok := e.layouts[cur]
		if !ok {
			return nil, fmt.Errorf("layout %q not found", cur)
		}
		seen[cur] = true
		out = append(out, l)
		cur = l.parent
	}
	return out, nil
}

// Execute wraps data.Content in the layout chain named by layoutName,
// innermost first. An empty layoutName returns the content untouched.
func (e *Engine) Execute(layoutName string, data Data) (template.HTML, error) {
	if layoutName == "" {
		return data.Content, nil
	}
	chain, err := e.chain(layoutName)
	if err != nil {
		return "", err
	}
	content := data.Content
	for _, l := range chain {
		data.Content = content
		var buf bytes.Buffer
		if err := l.tmpl.ExecuteTemplate(&buf, l.name, data); err != nil {
			return "", fmt.Errorf("layout %q: %w", l.name, err)
		}
		content = template.HTML(buf.String())
	}
	return content, nil
}

// Page renders a single content page: its converted Markdown wrapped
// in the chain named by the page's layout.
func (e *Engine) Page(site *models.Site, page *models.Page) (template.HTML, error) {
	return e.Execute(page.Layout, Data{
		Site:    site,
		Page:    page,
		Content: page.Content,
	})
}
