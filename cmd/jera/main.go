package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/jera/internal"
	"github.com/starford/jera/internal/build"
	"github.com/starford/jera/internal/config"
	"github.com/starford/jera/internal/index"
	"github.com/starford/jera/internal/mcpserver"
	"github.com/starford/jera/internal/scaffold"
	"github.com/starford/jera/internal/storage"
	"github.com/starford/jera/internal/version"
)

func configFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to site config file",
		Value:   "site.yaml",
		Sources: cli.EnvVars("JERA_CONFIG_FILE"),
	}
}

func draftsFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:    "drafts",
		Aliases: []string{"D"},
		Usage:   "Include draft posts",
	}
}

// loadConfig reads the config named by --config. The directory holding
// the config file becomes the site root.
func loadConfig(cmd *cli.Command) (*config.Config, string, error) {
	path := cmd.String("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, filepath.Dir(path), nil
}

func cliLogger(cfg *config.Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
}

func runBuild(ctx context.Context, cmd *cli.Command) error {
	cfg, root, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if s := cmd.String("source"); s != "" {
		cfg.Source = s
	}
	if o := cmd.String("output"); o != "" {
		cfg.Output = o
	}

	b := build.New(cfg, root, cliLogger(cfg))
	b.IncludeDrafts = cmd.Bool("drafts")

	res, err := b.Run()
	if err != nil {
		return err
	}

	rep := res.Report
	fmt.Printf("wrote %d files to %s in %s\n",
		rep.Written(), rep.OutputDir, rep.Duration.Round(time.Millisecond))

	if rep.Failed() {
		for _, e := range rep.Errors {
			fmt.Fprintf(os.Stderr, "  %s\n", e)
		}
		return fmt.Errorf("build finished with %d errors", len(rep.Errors))
	}
	return nil
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, root, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if p := int(cmd.Int("port")); p != 0 {
		cfg.Serve.Port = p
	}
	if cmd.Bool("no-watch") {
		cfg.Serve.Watch = false
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
		internal.WithRoot(root),
	}
	if cmd.Bool("drafts") {
		opts = append(opts, internal.WithDrafts(true))
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runCheck(ctx context.Context, cmd *cli.Command) error {
	cfg, root, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := cliLogger(cfg)
	b := build.New(cfg, root, logger)
	b.IncludeDrafts = cmd.Bool("drafts")

	res, err := b.Run()
	if err != nil {
		return err
	}

	// Link-check against a throwaway in-memory index.
	db, err := index.Open(":memory:")
	if err != nil {
		return err
	}
	defer db.Close()
	if err := index.Sync(db, res.Site, logger); err != nil {
		return err
	}
	broken, err := db.BrokenLinks()
	if err != nil {
		return err
	}

	for _, e := range res.Report.Errors {
		fmt.Fprintf(os.Stderr, "error: %s\n", e)
	}
	for _, l := range broken {
		fmt.Fprintf(os.Stderr, "broken link: %s -> %s\n", l.Source, l.Target)
	}

	if problems := len(res.Report.Errors) + len(broken); problems > 0 {
		return fmt.Errorf("check found %d problems", problems)
	}
	fmt.Println("no content errors, no broken internal links")
	return nil
}

func runNewPost(ctx context.Context, cmd *cli.Command) error {
	title := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if title == "" {
		return fmt.Errorf("usage: jera new post <title>")
	}

	cfg, root, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, err := storage.NewFS(filepath.Join(root, cfg.Source))
	if err != nil {
		return err
	}

	rel, err := scaffold.CreatePost(store, cfg, title, cmd.Bool("draft"))
	if err != nil {
		return err
	}
	fmt.Printf("created %s\n", filepath.Join(root, cfg.Source, rel))
	return nil
}

func runNewPage(ctx context.Context, cmd *cli.Command) error {
	title := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if title == "" {
		return fmt.Errorf("usage: jera new page <title>")
	}

	cfg, root, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, err := storage.NewFS(filepath.Join(root, cfg.Source))
	if err != nil {
		return err
	}

	rel, err := scaffold.CreatePage(store, title)
	if err != nil {
		return err
	}
	fmt.Printf("created %s\n", filepath.Join(root, cfg.Source, rel))
	return nil
}

func runInit(ctx context.Context, cmd *cli.Command) error {
	dir := cmd.Args().First()
	if dir == "" {
		dir = "."
	}
	if err := scaffold.InitSite(dir); err != nil {
		return err
	}
	fmt.Printf("initialized new site in %s\n", dir)
	fmt.Printf("next: cd %s && jera serve\n", dir)
	return nil
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, root, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if !cfg.Search.Enabled {
		return fmt.Errorf("the MCP server requires search.enabled: true")
	}

	store, err := storage.NewFS(filepath.Join(root, cfg.Source))
	if err != nil {
		return err
	}
	db, err := index.Open(filepath.Join(root, cfg.Search.DBPath))
	if err != nil {
		return err
	}
	defer db.Close()

	// Stdout belongs to the MCP protocol from here on.
	return mcpserver.New(store, db, cfg).ServeStdio()
}

func runVersion(ctx context.Context, cmd *cli.Command) error {
	fmt.Printf("jera %s\n", version.Version)
	fmt.Printf("  commit: %s\n", version.GitCommit)
	fmt.Printf("  built:  %s\n", version.BuildTime)
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:    "jera",
		Usage:   "Static site generator with live preview, full-text search and an MCP interface",
		Version: version.String(),
		Commands: []*cli.Command{
			{
				Name:  "build",
				Usage: "Build the site once and exit non-zero on content errors",
				Flags: []cli.Flag{configFlag(), draftsFlag(),
					&cli.StringFlag{
						Name:    "source",
						Aliases: []string{"s"},
						Usage:   "Override the configured source directory",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Override the configured output directory",
					},
				},
				Action: runBuild,
			},
			{
				Name:  "serve",
				Usage: "Build, then serve the site with live reload, rebuilding on changes",
				Flags: []cli.Flag{configFlag(), draftsFlag(),
					&cli.IntFlag{
						Name:    "port",
						Aliases: []string{"p"},
						Usage:   "Override the configured listen port",
					},
					&cli.BoolFlag{
						Name:  "no-watch",
						Usage: "Serve without rebuilding on source changes",
					},
				},
				Action: runServe,
			},
			{
				Name:  "new",
				Usage: "Create a new post or page with canonical front matter",
				Commands: []*cli.Command{
					{
						Name:      "post",
						Usage:     "Create a post named after today's date and the title",
						ArgsUsage: "<title>",
						Flags: []cli.Flag{configFlag(), &cli.BoolFlag{
							Name:  "draft",
							Usage: "Mark the post as a draft",
						}},
						Action: runNewPost,
					},
					{
						Name:      "page",
						Usage:     "Create a standalone page at the source root",
						ArgsUsage: "<title>",
						Flags:     []cli.Flag{configFlag()},
						Action:    runNewPage,
					},
				},
			},
			{
				Name:      "init",
				Usage:     "Scaffold a fresh site in the given directory",
				ArgsUsage: "[dir]",
				Action:    runInit,
			},
			{
				Name:   "check",
				Usage:  "Build the site and report content errors and broken internal links",
				Flags:  []cli.Flag{configFlag(), draftsFlag()},
				Action: runCheck,
			},
			{
				Name:   "mcp",
				Usage:  "Serve site content tools over the Model Context Protocol on stdio",
				Flags:  []cli.Flag{configFlag()},
				Action: runMCP,
			},
			{
				Name:   "version",
				Usage:  "Print version and build metadata",
				Action: runVersion,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
