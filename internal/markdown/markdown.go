// Package markdown converts Markdown bodies to HTML and extracts link
// targets for the content index.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	emoji "github.com/yuin/goldmark-emoji"
)

// Options tunes the converter. The zero value is CommonMark with
// heading anchors and escaped raw HTML.
type Options struct {
	GFM        bool
	Emoji      bool
	UnsafeHTML bool
	HardWraps  bool
}

// Converter wraps a configured goldmark instance. It is safe for
// concurrent use.
type Converter struct {
	md goldmark.Markdown
}

// New builds a Converter for the given options.
func New(opts Options) *Converter {
	var exts []goldmark.Extender
	if opts.GFM {
		exts = append(exts, extension.GFM)
	}
	if opts.Emoji {
		exts = append(exts, emoji.Emoji)
	}
	rendererOpts := []renderer.Option{}
	if opts.HardWraps {
		rendererOpts = append(rendererOpts, gmhtml.WithHardWraps())
	}
	if opts.UnsafeHTML {
		rendererOpts = append(rendererOpts, gmhtml.WithUnsafe())
	}
	md := goldmark.New(
		goldmark.WithExtensions(exts...),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(rendererOpts...),
	)
	return &Converter{md: md}
}

// Convert renders Markdown to HTML.
func (c *Converter) Convert(body []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.md.Convert(body, &buf); err != nil {
		return nil, fmt.Errorf("markdown: %w", err)
	}
	return buf.Bytes(), nil
}

// Links parses body and returns the deduplicated destinations of every
// link, image and autolink, in document order.
func (c *Converter) Links(body []byte) []string {
	doc := c.md.Parser().Parse(text.NewReader(body))

	seen := make(map[string]struct{})
	var out []string
	add := func(dest string) {
		if dest == "" {
			return
		}
		if _, ok := seen[dest]; ok {
			return
		}
		seen[dest] = struct{}{}
		out = append(out, dest)
	}

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *ast.Link:
			add(string(t.Destination))
		case *ast.Image:
			add(string(t.Destination))
		case *ast.AutoLink:
			add(string(t.URL(body)))
		}
		return ast.WalkContinue, nil
	})
	return out
}
