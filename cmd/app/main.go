package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/arnarsson/gitpress/internal"
	pkgconfig "github.com/arnarsson/gitpress/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runSync(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	eng, db, err := internal.BuildEngine(cfg, logger, nil)
	if err != nil {
		return err
	}
	defer db.Close()

	var stats any
	if cmd.Bool("incremental") {
		stats, err = eng.IncrementalSync(ctx)
	} else {
		stats, err = eng.FullSync(ctx)
	}
	if err != nil {
		return err
	}
	return printJSON(stats)
}

func runPreview(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	eng, db, err := internal.BuildEngine(cfg, logger, nil)
	if err != nil {
		return err
	}
	defer db.Close()

	preview, err := eng.Preview(ctx)
	if err != nil {
		return err
	}
	return printJSON(preview)
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// MCP speaks on stdout; keep log output on stderr.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))

	eng, db, err := internal.BuildEngine(cfg, logger, nil)
	if err != nil {
		return err
	}
	defer db.Close()

	return internal.ServeMCP(eng)
}

func newLogger(cfg *internal.Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	configFlag := &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: "config/config.yaml",
		Value:       "config/config.yaml",
		Sources:     cli.EnvVars("APP_CONFIG_FILE"),
	}

	cmd := &cli.Command{
		Name:   "gitpress",
		Usage:  "Sync a git-versioned Markdown content tree into a SQLite content store",
		Action: serve,
		Flags:  []cli.Flag{configFlag},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP control plane with webhook and watcher",
				Action: serve,
				Flags:  []cli.Flag{configFlag},
			},
			{
				Name:   "sync",
				Usage:  "Run one sync pass and exit",
				Action: runSync,
				Flags: []cli.Flag{
					configFlag,
					&cli.BoolFlag{
						Name:  "incremental",
						Usage: "Replay commits since the last recorded sync instead of re-scanning",
					},
				},
			},
			{
				Name:   "preview",
				Usage:  "Print what a sync would change, without changing anything",
				Action: runPreview,
				Flags:  []cli.Flag{configFlag},
			},
			{
				Name:   "mcp",
				Usage:  "Serve sync tools over the Model Context Protocol on stdio",
				Action: runMCP,
				Flags:  []cli.Flag{configFlag},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
