// Package build runs the batch pipeline: collect content, resolve
// defaults, convert Markdown, render layouts, assemble the site and
// write the output tree.
package build

import (
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/starford/jera/internal/apperr"
	"github.com/starford/jera/internal/config"
	"github.com/starford/jera/internal/defaults"
	"github.com/starford/jera/internal/markdown"
	"github.com/starford/jera/internal/models"
	"github.com/starford/jera/internal/permalink"
	"github.com/starford/jera/internal/render"
	"github.com/starford/jera/internal/site"
	"github.com/starford/jera/internal/storage"
)

// Builder runs builds for one site rooted at a directory.
type Builder struct {
	cfg    *config.Config
	root   string
	logger *slog.Logger

	// IncludeDrafts renders pages marked draft, used by the preview
	// server.
	IncludeDrafts bool
}

// Result pairs the written report with the assembled site, which the
// serving layers feed into the content index.
type Result struct {
	Report *Report
	Site   *models.Site
}

// New creates a Builder for the site at root using cfg.
func New(cfg *config.Config, root string, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{cfg: cfg, root: root, logger: logger}
}

// SourceDir returns the resolved source directory.
func (b *Builder) SourceDir() string {
	return filepath.Join(b.root, b.cfg.Source)
}

// OutputDir returns the resolved output directory.
func (b *Builder) OutputDir() string {
	return filepath.Join(b.root, b.cfg.Output)
}

// Run executes one full build. Content and render failures are
// collected in the report and skip only the affected documents;
// environment and write failures abort with an error. The output
// directory is fully regenerated, so unchanged sources reproduce
// byte-identical output.
func (b *Builder) Run() (*Result, error) {
	start := time.Now()
	report := &Report{OutputDir: b.OutputDir(), BuiltAt: start}
	var errs apperr.Collector

	src, err := storage.NewFS(b.SourceDir())
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}

	pattern, err := permalink.Compile(b.cfg.Permalink)
	if err != nil {
		return nil, apperr.New(apperr.KindParse, "", err)
	}

	engine, err := render.NewEngine(src, b.cfg.LayoutsDir, b.cfg.IncludesDir)
	if err != nil {
		return nil, apperr.New(apperr.KindRender, b.cfg.LayoutsDir, err)
	}

	pages, err := b.collect(src, &errs)
	if err != nil {
		return nil, fmt.Errorf("build: collect: %w", err)
	}

	for _, p := range pages {
		p.FrontMatter = defaults.Apply(b.cfg.Defaults, p.SourcePath, p.Collection, p.FrontMatter)
	}

	pages, drafts := b.materialize(pages, pattern, &errs)
	report.Drafts = drafts

	conv := markdown.New(markdown.Options{
		GFM:        b.cfg.Goldmark.GFM,
		Emoji:      b.cfg.HasPlugin("emoji"),
		UnsafeHTML: b.cfg.Goldmark.UnsafeHTML,
		HardWraps:  b.cfg.Goldmark.HardWraps,
	})

	var converted []*models.Page
	for _, p := range pages {
		html, err := conv.Convert([]byte(p.Body))
		if err != nil {
			errs.Add(apperr.New(apperr.KindRender, p.SourcePath, err))
			continue
		}
		p.Content = template.HTML(html)
		p.Links = conv.Links([]byte(p.Body))
		converted = append(converted, p)
	}

	s := site.Assemble(b.cfg, converted)

	type doc struct {
		path string
		body []byte
	}
	var docs []doc
	for _, p := range s.AllPages() {
		html, err := engine.Page(s, p)
		if err != nil {
			errs.Add(apperr.New(apperr.KindRender, p.SourcePath, err))
			continue
		}
		docs = append(docs, doc{p.OutputPath, []byte(html)})
		if p.IsPost() {
			report.Posts++
		} else {
			report.Pages++
		}
	}

	genCtx := &site.Context{Cfg: b.cfg, Site: s, Engine: engine}
	gens, unknown := site.Generators(b.cfg.Plugins)
	for _, name := range unknown {
		b.logger.Warn("unknown plugin", slog.String("plugin", name))
	}
	for _, g := range gens {
		gdocs, err := g.Generate(genCtx)
		if err != nil {
			errs.Add(apperr.New(apperr.KindRender, g.Name(), err))
			continue
		}
		genCtx.Derived = append(genCtx.Derived, gdocs...)
	}

	// Write phase: regenerate the output tree from scratch.
	outDir := b.OutputDir()
	if err := os.RemoveAll(outDir); err != nil {
		return nil, apperr.New(apperr.KindWrite, outDir, err)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, apperr.New(apperr.KindWrite, outDir, err)
	}
	out, err := storage.NewFS(outDir)
	if err != nil {
		return nil, apperr.New(apperr.KindWrite, outDir, err)
	}

	written := make(map[string]bool)
	write := func(path string, body []byte) error {
		if written[path] {
			b.logger.Warn("output collision, keeping first writer", slog.String("path", path))
			return nil
		}
		if err := out.Write(path, body); err != nil {
			return apperr.New(apperr.KindWrite, path, err)
		}
		written[path] = true
		return nil
	}

	for _, d := range docs {
		if err := write(d.path, d.body); err != nil {
			return nil, err
		}
	}
	for _, d := range genCtx.Derived {
		if err := write(d.Path, d.Body); err != nil {
			return nil, err
		}
		report.Generated++
	}

	static, err := storage.CopyDir(src, b.cfg.StaticDir, out, b.cfg.StaticDir)
	if err != nil {
		return nil, apperr.New(apperr.KindWrite, b.cfg.StaticDir, err)
	}
	report.Static = static

	report.Errors = errs.Errors()
	report.Skipped = errs.Len()
	report.Duration = time.Since(start)

	b.logger.Info("build finished",
		slog.Int("posts", report.Posts),
		slog.Int("pages", report.Pages),
		slog.Int("generated", report.Generated),
		slog.Int("static", report.Static),
		slog.Int("errors", len(report.Errors)),
		slog.Duration("duration", report.Duration),
	)

	return &Result{Report: report, Site: s}, nil
}
