// Package config defines the site configuration loaded from site.yaml
// and the validation rules that gate a build.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/jera/internal/defaults"
	"github.com/starford/jera/internal/models"
	"github.com/starford/jera/internal/permalink"
	pkgconfig "github.com/starford/jera/pkg/config"
)

// DefaultFile is the configuration filename looked up in the site root.
const DefaultFile = "site.yaml"

// Auth modes for the preview server API.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Markdown engines.
const MarkdownGoldmark = "goldmark"

// Config represents the full site configuration.
type Config struct {
	Title       string              `yaml:"title"`
	Description string              `yaml:"description"`
	URL         string              `yaml:"url"`
	BaseURL     string              `yaml:"baseurl"`
	Timezone    string              `yaml:"timezone"`
	Locale      string              `yaml:"locale"`
	Author      models.Author       `yaml:"author"`
	FooterLinks []models.FooterLink `yaml:"footer_links"`

	Source      string   `yaml:"source"`
	Output      string   `yaml:"output"`
	LayoutsDir  string   `yaml:"layouts_dir"`
	IncludesDir string   `yaml:"includes_dir"`
	StaticDir   string   `yaml:"static_dir"`
	Exclude     []string `yaml:"exclude"`

	Permalink    string `yaml:"permalink"`
	Paginate     int    `yaml:"paginate"`
	PaginatePath string `yaml:"paginate_path"`

	Markdown string         `yaml:"markdown"`
	Goldmark GoldmarkConfig `yaml:"goldmark"`

	Plugins  []string        `yaml:"plugins"`
	Defaults []defaults.Rule `yaml:"defaults"`

	Serve  ServeConfig  `yaml:"serve"`
	Search SearchConfig `yaml:"search"`

	LogLevel slog.Level `yaml:"log_level"`

	location *time.Location
}

// GoldmarkConfig tunes the Markdown engine.
type GoldmarkConfig struct {
	GFM        bool `yaml:"gfm"`
	UnsafeHTML bool `yaml:"unsafe_html"`
	HardWraps  bool `yaml:"hard_wraps"`
}

// ServeConfig holds preview server configuration.
type ServeConfig struct {
	Port       int        `yaml:"port"`
	LiveReload bool       `yaml:"live_reload"`
	Watch      bool       `yaml:"watch"`
	Auth       AuthConfig `yaml:"auth"`
}

// Address returns the preview server listen address.
func (c *ServeConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the serve configuration.
func (c *ServeConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// AuthConfig holds authentication configuration for the preview API.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication, suitable for local previews.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// SearchConfig holds the content index configuration.
type SearchConfig struct {
	Enabled bool   `yaml:"enabled"`
	DBPath  string `yaml:"db_path"`
}

// Validate validates the search configuration.
func (c *SearchConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.DBPath, validation.Required),
	)
}

// Validate validates the whole configuration and resolves derived
// fields (timezone location, permalink pattern).
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Title, validation.Required),
		validation.Field(&c.Source, validation.Required),
		validation.Field(&c.Output, validation.Required),
		validation.Field(&c.Paginate, validation.Min(0)),
		validation.Field(&c.Markdown, validation.Required, validation.In(MarkdownGoldmark)),
	); err != nil {
		return err
	}

	if _, err := permalink.Compile(c.Permalink); err != nil {
		return fmt.Errorf("permalink: %w", err)
	}

	loc := time.UTC
	if c.Timezone != "" {
		l, err := time.LoadLocation(c.Timezone)
		if err != nil {
			return fmt.Errorf("timezone: %w", err)
		}
		loc = l
	}
	c.location = loc

	for i, r := range c.Defaults {
		if len(r.Values) == 0 {
			return fmt.Errorf("defaults[%d]: values must not be empty", i)
		}
		if r.Scope.Type != "" && r.Scope.Type != models.CollectionPosts && r.Scope.Type != models.CollectionPages {
			return fmt.Errorf("defaults[%d]: unknown scope type %q", i, r.Scope.Type)
		}
	}

	if err := c.Serve.Validate(); err != nil {
		return err
	}
	return c.Search.Validate()
}

// Location returns the site timezone resolved during validation.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// HasPlugin reports whether name is listed in the plugins setting.
func (c *Config) HasPlugin(name string) bool {
	for _, p := range c.Plugins {
		if p == name {
			return true
		}
	}
	return false
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		Title:        "Jera Site",
		BaseURL:      "",
		Locale:       "en",
		Source:       ".",
		Output:       "_site",
		LayoutsDir:   "_layouts",
		IncludesDir:  "_includes",
		StaticDir:    "static",
		Permalink:    permalink.StyleDate,
		Paginate:     5,
		PaginatePath: "page/:num",
		Markdown:     MarkdownGoldmark,
		Goldmark: GoldmarkConfig{
			GFM: true,
		},
		Plugins: []string{"paginate", "archives", "feed", "sitemap"},
		Serve: ServeConfig{
			Port:       4000,
			LiveReload: true,
			Watch:      true,
			Auth:       AuthConfig{Mode: AuthModeDisabled},
		},
		Search: SearchConfig{
			Enabled: true,
			DBPath:  ".jera/index.db",
		},
		LogLevel: slog.LevelInfo,
	}
}

// Load reads the configuration file at path into a Config seeded with
// defaults. A missing file is not an error: the defaults apply as-is,
// matching the behavior of building a site that has no site.yaml.
func Load(path string) (*Config, error) {
	cfg := NewDefaultConfig()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	if err := pkgconfig.Load(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
