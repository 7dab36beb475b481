// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/arnarsson/gitpress/internal/api"
	"github.com/arnarsson/gitpress/internal/apperr"
	"github.com/arnarsson/gitpress/internal/engine"
	"github.com/arnarsson/gitpress/internal/frontend"
	"github.com/arnarsson/gitpress/internal/git"
	"github.com/arnarsson/gitpress/internal/mapper"
	"github.com/arnarsson/gitpress/internal/mcpserver"
	"github.com/arnarsson/gitpress/internal/render"
	"github.com/arnarsson/gitpress/internal/sse"
	"github.com/arnarsson/gitpress/internal/storage"
	"github.com/arnarsson/gitpress/internal/store"
	"github.com/arnarsson/gitpress/internal/webhook"
	"github.com/arnarsson/gitpress/internal/writer"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config

	logger := app.logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: cfg.App.LogLevel,
		}))
	}
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("content_path", cfg.Content.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	broker := sse.NewBroker()
	defer broker.Close()

	eng, db, err := buildEngine(cfg, logger, broker)
	if err != nil {
		return err
	}
	defer db.Close()

	// Initial full sync so the store reflects the checkout before the
	// server accepts traffic. Failure is logged, not fatal.
	if _, err := eng.FullSync(ctx); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	var webhookHandler http.Handler
	if cfg.Webhook.Enabled() {
		webhookHandler = webhook.New(cfg.Webhook.Secret, engine.SkipMarker,
			func(ctx context.Context) { runTriggeredSync(ctx, eng, logger) }, logger)
	}

	r := api.NewRouter(eng, cfg.Auth.AuthEnabled(), cfg.Auth.Token, webhookHandler, broker)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	if cfg.Content.Watch {
		g.Go(func() error {
			return eng.Watch(gCtx)
		})
	}

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}
	logger.Info("Server stopped successfully")
	return nil
}

// BuildEngine constructs a fully wired sync engine from configuration.
// It is used by the serve path and by the one-shot CLI commands.
func BuildEngine(cfg *Config, logger *slog.Logger, events engine.Notifier) (*engine.Engine, *store.DB, error) {
	return buildEngine(cfg, logger, events)
}

func buildEngine(cfg *Config, logger *slog.Logger, events engine.Notifier) (*engine.Engine, *store.DB, error) {
	if err := os.MkdirAll(cfg.Content.Path, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create content dir: %w", err)
	}

	tree, err := storage.NewFS(cfg.Content.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("init content tree: %w", err)
	}

	db, err := store.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("init store: %w", err)
	}

	m := mapper.New(db, db, db, tree, mapper.Options{
		AutoCreateCategories: cfg.Content.AutoCreateCategories,
		DefaultCategorySlug:  cfg.Content.DefaultCategorySlug,
	}, logger)
	w := writer.New(tree, m, logger)
	vcs := git.New(cfg.Content.Path, cfg.Git.AuthorName, cfg.Git.AuthorEmail, logger)
	fe := frontend.New(cfg.Frontend.RevalidateURL, cfg.Frontend.Token, logger)

	var inv engine.Invalidator
	if fe != nil {
		inv = fe
	}

	eng := engine.New(db, tree, m, w, vcs, render.Plain{}, inv, events, logger)
	return eng, db, nil
}

// ServeMCP exposes the engine's sync tools over MCP stdio transport.
// It blocks until stdin closes.
func ServeMCP(eng *engine.Engine) error {
	return mcpserver.New(eng).ServeStdio()
}

// runTriggeredSync services a webhook notification: incremental when a
// bookmark exists, full otherwise.
func runTriggeredSync(ctx context.Context, eng *engine.Engine, logger *slog.Logger) {
	if _, err := eng.IncrementalSync(ctx); err != nil {
		if errors.Is(err, apperr.ErrNoBookmark) {
			if _, ferr := eng.FullSync(ctx); ferr != nil {
				logger.Error("triggered full sync failed", slog.String("error", ferr.Error()))
			}
			return
		}
		logger.Error("triggered sync failed", slog.String("error", err.Error()))
	}
}
