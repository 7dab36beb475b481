package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/arnarsson/gitpress/internal/apperr"
	"github.com/arnarsson/gitpress/internal/layout"
	"github.com/arnarsson/gitpress/internal/models"
)

// FullSync re-scans the whole tree and reconciles it against every
// exported record. It blocks until any in-flight sync finishes.
func (e *Engine) FullSync(ctx context.Context) (*models.SyncStats, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fullSyncLocked(ctx)
}

// fullSyncLocked is the full-sync body; callers hold e.mu.
func (e *Engine) fullSyncLocked(ctx context.Context) (*models.SyncStats, error) {
	start := time.Now()
	stats := &models.SyncStats{}
	e.publish("sync-started", "full")

	// Best-effort pull: failure degrades to local-only.
	if err := e.vcs.Pull(ctx); err != nil {
		e.logger.Warn("pull failed, syncing local tree only", slog.String("error", err.Error()))
	}

	docs, issues, err := e.scanner.ScanAll(ctx)
	if err != nil {
		e.publish("sync-error", err.Error())
		return nil, err
	}
	stats.Errors = append(stats.Errors, issues...)

	posts, err := e.store.ListExported()
	if err != nil {
		e.publish("sync-error", err.Error())
		return nil, err
	}

	matched := make(map[string]bool, len(posts))
	for i := range docs {
		e.applyDocument(ctx, &docs[i], posts, matched, stats)
	}

	// Any exported record no document claimed has lost its file. Records
	// whose file failed to scan are skipped: a broken file is an error,
	// not a removal.
	failed := make(map[string]bool, len(stats.Errors))
	for _, issue := range stats.Errors {
		failed[issue.Context] = true
	}
	for i := range posts {
		p := &posts[i]
		if matched[p.ID] || failed[p.SourcePath] {
			continue
		}
		if err := e.store.DeletePost(p.ID); err != nil {
			recordIssue(stats, p.SourcePath, apperr.CodeStore, err.Error())
			continue
		}
		stats.Deleted = append(stats.Deleted, p.SourcePath)
		e.logger.Info("deleted post without document",
			slog.String("path", p.SourcePath), slog.String("slug", p.Slug))
	}

	e.synthesizeCategoryIndexes(stats)
	e.exportNeverExported(stats)

	e.finishRun(ctx, stats)
	stats.Duration = time.Since(start)
	e.setLastStats(stats)
	e.publish("sync-finished", "full")
	e.logger.Info("full sync finished",
		slog.Int("added", stats.Added),
		slog.Int("updated", stats.Updated),
		slog.Int("deleted", len(stats.Deleted)),
		slog.Int("errors", len(stats.Errors)),
		slog.Duration("duration", stats.Duration))
	return stats, nil
}

// synthesizeCategoryIndexes writes an index document for every category
// that lacks one, keeping the filesystem a complete mirror of the store.
func (e *Engine) synthesizeCategoryIndexes(stats *models.SyncStats) {
	cats, err := e.store.ListCategories()
	if err != nil {
		e.logger.Warn("category listing failed", slog.String("error", err.Error()))
		return
	}
	for i := range cats {
		c := &cats[i]
		if !layout.KnownType(c.Type) || c.Slug == "" {
			continue
		}
		rel := layout.IndexPath(c.Type, c.Slug)
		if e.tree.Exists(rel) {
			continue
		}
		var cover *models.Media
		if c.CoverID != "" {
			cover, _ = e.store.GetMediaByID(c.CoverID)
		}
		if _, err := e.writer.WriteCategoryIndex(c, cover); err != nil {
			recordIssue(stats, rel, apperr.CodeFileOp, err.Error())
			continue
		}
		stats.Updated++
		stats.Touched(rel)
		e.logger.Info("synthesized category index", slog.String("path", rel))
	}
}

// finishRun performs the end-of-pass write-back: cache invalidation, the
// automated skip-marked metadata commit, a best-effort push, and the
// bookmark update. None of it rolls back already-applied store changes.
func (e *Engine) finishRun(ctx context.Context, stats *models.SyncStats) {
	if stats.Changed() {
		if e.frontend != nil {
			if err := e.frontend.Invalidate(ctx, stats.AffectedPaths()); err != nil {
				e.logger.Warn("cache invalidation failed", slog.String("error", err.Error()))
			}
		}
		if err := e.vcs.Add(ctx); err != nil {
			e.logger.Warn("stage failed", slog.String("error", err.Error()))
		} else if err := e.vcs.Commit(ctx, "chore: sync content metadata "+SkipMarker); err != nil {
			e.logger.Warn("metadata commit failed", slog.String("error", err.Error()))
		} else if err := e.vcs.Push(ctx); err != nil {
			e.logger.Warn("push failed", slog.String("error", err.Error()))
		}
	}

	head, err := e.vcs.Head(ctx)
	if err != nil {
		e.logger.Warn("head unavailable, bookmark not updated", slog.String("error", err.Error()))
		return
	}
	e.writeBookmark(head)
}
