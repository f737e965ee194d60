package internal

import "github.com/starford/jera/internal/config"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *config.Config
	root   string
	drafts bool
}

// WithConfig sets the site configuration.
func WithConfig(cfg *config.Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithRoot sets the site root directory that source, output and index
// paths are resolved against.
func WithRoot(root string) Option {
	return func(a *application) {
		a.root = root
	}
}

// WithDrafts includes draft posts in every build.
func WithDrafts(include bool) Option {
	return func(a *application) {
		a.drafts = include
	}
}
