// Package engine orchestrates content synchronization: full re-scans,
// commit-diff incremental passes, dry-run previews, and the write-back
// of generated identifiers and metadata commits.
package engine

import (
	"context"
	"log/slog"
	"sync"

	"github.com/arnarsson/gitpress/internal/git"
	"github.com/arnarsson/gitpress/internal/mapper"
	"github.com/arnarsson/gitpress/internal/models"
	"github.com/arnarsson/gitpress/internal/render"
	"github.com/arnarsson/gitpress/internal/scanner"
	"github.com/arnarsson/gitpress/internal/storage"
	"github.com/arnarsson/gitpress/internal/writer"
)

// SkipMarker in a commit message tells the webhook receiver that the
// commit was produced by the engine itself and must not trigger a sync.
const SkipMarker = "[gitpress skip]"

// Store is the persistence view the orchestrator needs beyond what the
// mapper's collaborator interfaces cover.
type Store interface {
	mapper.Catalog
	mapper.Identity
	mapper.MediaLibrary

	ListExported() ([]models.Post, error)
	ListNeverExported() ([]models.Post, error)
	CountNeverExported() (int, error)
	GetPostBySlug(slug string) (*models.Post, error)
	CreatePost(p *models.Post, tagIDs []string) error
	UpdatePost(p *models.Post, tagIDs []string) error
	DeletePost(id string) error
	PostTags(postID string) ([]models.Tag, error)
	ListCategories() ([]models.Category, error)
	UpdateCategory(c *models.Category) error
}

// VCS is the version-control view of the orchestrator.
type VCS interface {
	Pull(ctx context.Context) error
	Head(ctx context.Context) (string, error)
	DiffNameStatus(ctx context.Context, from, to string) ([]git.Change, error)
	Add(ctx context.Context, paths ...string) error
	Commit(ctx context.Context, message string) error
	Push(ctx context.Context) error
}

// Invalidator is the outbound cache-invalidation collaborator. Failures
// are logged, never raised.
type Invalidator interface {
	Invalidate(ctx context.Context, paths []string) error
}

// Notifier receives sync lifecycle events (for SSE fan-out). May be nil.
type Notifier interface {
	Publish(event, detail string)
}

// Engine runs sync passes against one tree and one store. A single
// process-wide mutex serializes full and incremental entry points: a
// second caller waits, it is never rejected.
type Engine struct {
	store    Store
	tree     storage.Provider
	scanner  *scanner.Scanner
	mapper   *mapper.Mapper
	writer   *writer.Writer
	vcs      VCS
	renderer render.Renderer
	frontend Invalidator
	events   Notifier
	logger   *slog.Logger

	mu sync.Mutex // the unit of mutual exclusion is a whole sync pass

	statsMu   sync.Mutex
	lastStats *models.SyncStats
}

// New wires an Engine from its collaborators. frontend and events may be
// nil.
func New(store Store, tree storage.Provider, m *mapper.Mapper, w *writer.Writer,
	vcs VCS, renderer render.Renderer, frontend Invalidator, events Notifier,
	logger *slog.Logger) *Engine {
	return &Engine{
		store:    store,
		tree:     tree,
		scanner:  scanner.New(tree, logger),
		mapper:   m,
		writer:   w,
		vcs:      vcs,
		renderer: renderer,
		frontend: frontend,
		events:   events,
		logger:   logger,
	}
}

// LastStats returns the outcome of the most recent sync pass, or nil if
// none has run yet.
func (e *Engine) LastStats() *models.SyncStats {
	e.statsMu.Lock()
	defer e.statsMu.Unlock()
	return e.lastStats
}

func (e *Engine) setLastStats(s *models.SyncStats) {
	e.statsMu.Lock()
	e.lastStats = s
	e.statsMu.Unlock()
}

func (e *Engine) publish(event, detail string) {
	if e.events != nil {
		e.events.Publish(event, detail)
	}
}

// recordIssue appends a per-file error to the run stats.
func recordIssue(stats *models.SyncStats, context, code, message string) {
	stats.Errors = append(stats.Errors, models.SyncIssue{
		Context: context,
		Code:    code,
		Message: message,
	})
}
