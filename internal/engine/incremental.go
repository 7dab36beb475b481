package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/arnarsson/gitpress/internal/apperr"
	"github.com/arnarsson/gitpress/internal/git"
	"github.com/arnarsson/gitpress/internal/layout"
	"github.com/arnarsson/gitpress/internal/models"
)

// IncrementalSync replays only the paths the VCS reports as changed since
// the persisted bookmark. A missing bookmark returns ErrNoBookmark: the
// caller must request a full sync explicitly, there is no silent
// fallback. A diff-computation failure, by contrast, falls back to a full
// sync automatically.
func (e *Engine) IncrementalSync(ctx context.Context) (*models.SyncStats, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	bookmark := e.readBookmark()
	if bookmark == "" {
		return nil, apperr.ErrNoBookmark
	}

	start := time.Now()
	stats := &models.SyncStats{}
	e.publish("sync-started", "incremental")

	if err := e.vcs.Pull(ctx); err != nil {
		e.logger.Warn("pull failed, syncing local tree only", slog.String("error", err.Error()))
	}

	head, err := e.vcs.Head(ctx)
	if err != nil {
		e.publish("sync-error", err.Error())
		return nil, err
	}
	if head == bookmark {
		stats.Duration = time.Since(start)
		e.setLastStats(stats)
		e.publish("sync-finished", "incremental")
		e.logger.Info("incremental sync: already at bookmark", slog.String("commit", head))
		return stats, nil
	}

	changes, err := e.vcs.DiffNameStatus(ctx, bookmark, head)
	if err != nil {
		e.logger.Warn("diff failed, falling back to full sync", slog.String("error", err.Error()))
		return e.fullSyncLocked(ctx)
	}

	posts, err := e.store.ListExported()
	if err != nil {
		e.publish("sync-error", err.Error())
		return nil, err
	}
	byPath := make(map[string]*models.Post, len(posts))
	for i := range posts {
		if p := &posts[i]; p.SourcePath != "" {
			byPath[p.SourcePath] = p
		}
	}

	matched := map[string]bool{}
	for _, ch := range changes {
		if !layout.IsContentFile(ch.Path) && !layout.IsContentFile(ch.OldPath) {
			continue
		}
		e.replayChange(ctx, ch, posts, byPath, matched, stats)
	}

	e.finishRun(ctx, stats)
	stats.Duration = time.Since(start)
	e.setLastStats(stats)
	e.publish("sync-finished", "incremental")
	e.logger.Info("incremental sync finished",
		slog.String("from", bookmark), slog.String("to", head),
		slog.Int("added", stats.Added),
		slog.Int("updated", stats.Updated),
		slog.Int("deleted", len(stats.Deleted)),
		slog.Int("errors", len(stats.Errors)))
	return stats, nil
}

// replayChange routes one diffed path through the same handlers a full
// sync uses.
func (e *Engine) replayChange(ctx context.Context, ch git.Change,
	posts []models.Post, byPath map[string]*models.Post,
	matched map[string]bool, stats *models.SyncStats) {

	switch ch.Status {
	case git.StatusDeleted:
		p, ok := byPath[ch.Path]
		if !ok {
			return
		}
		if err := e.store.DeletePost(p.ID); err != nil {
			recordIssue(stats, ch.Path, apperr.CodeStore, err.Error())
			return
		}
		stats.Deleted = append(stats.Deleted, ch.Path)
		e.logger.Info("deleted post for removed file", slog.String("path", ch.Path))

	default: // added, modified, renamed
		// A renamed file re-pairs with its record through the backsigned
		// slug; the move handler then persists the new source path.
		doc, err := e.scanner.ScanFile(ch.Path)
		if err != nil {
			recordIssue(stats, ch.Path, apperr.CodeParseFailed, err.Error())
			return
		}
		e.applyDocument(ctx, doc, posts, matched, stats)
	}
}
