package scaffold

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/starford/jera/internal/apperr"
	"github.com/starford/jera/internal/storage"
)

//go:embed all:skeleton
var skeletonFS embed.FS

const welcomeBody = `Welcome to your new site. This post was created by ` + "`jera init`" + `.

Start the preview server with ` + "`jera serve`" + ` and open the printed
address, or run ` + "`jera build`" + ` to write the site to ` + "`_site/`" + `.
Posts live in ` + "`_posts/`" + ` and are named ` + "`YYYY-MM-DD-title.md`" + `.
`

// InitSite materializes a fresh site at dir: config, stylesheet, an
// about page and a first post dated today. It refuses to run where a
// site.yaml already exists.
func InitSite(dir string) error {
	cfgPath := filepath.Join(dir, "site.yaml")
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("scaffold: %s: %w", cfgPath, apperr.ErrAlreadyExists)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("scaffold: init: %w", err)
	}

	err := fs.WalkDir(skeletonFS, "skeleton", func(p string, d fs.DirEntry, err error) error {
		if err != nil || p == "skeleton" {
			return err
		}
		rel := strings.TrimPrefix(p, "skeleton/")
		// The skeleton carries the gitignore without its dot so the
		// embed directive picks it up.
		if rel == "gitignore" {
			rel = ".gitignore"
		}
		target := filepath.Join(dir, filepath.FromSlash(rel))
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		data, err := skeletonFS.ReadFile(p)
		if err != nil {
			return err
		}
		return os.WriteFile(target, data, 0o644)
	})
	if err != nil {
		return fmt.Errorf("scaffold: init: %w", err)
	}

	store, err := storage.NewFS(dir)
	if err != nil {
		return err
	}
	rel, content, err := PostStub("Welcome to Jera", time.Now(), false)
	if err != nil {
		return err
	}
	return store.Write(rel, append(content, []byte(welcomeBody)...))
}
