package engine

import (
	"errors"
	"log/slog"

	"github.com/arnarsson/gitpress/internal/apperr"
	"github.com/arnarsson/gitpress/internal/mapper"
	"github.com/arnarsson/gitpress/internal/models"
)

// exportNeverExported writes a content file for every record created
// outside the tree (source_path empty), completing the filesystem
// mirror. Each export is isolated: one record's failure is recorded and
// the rest proceed.
func (e *Engine) exportNeverExported(stats *models.SyncStats) {
	posts, err := e.store.ListNeverExported()
	if err != nil {
		e.logger.Warn("never-exported listing failed", slog.String("error", err.Error()))
		return
	}

	for i := range posts {
		p := &posts[i]
		rel, err := e.exportPost(p)
		if err != nil {
			recordIssue(stats, p.Slug, apperr.CodeFileOp, err.Error())
			continue
		}
		p.SourcePath = rel
		tags, terr := e.store.PostTags(p.ID)
		var tagIDs []string
		if terr == nil {
			for _, t := range tags {
				tagIDs = append(tagIDs, t.ID)
			}
		}
		if err := e.store.UpdatePost(p, tagIDs); err != nil {
			recordIssue(stats, rel, apperr.CodeStore, err.Error())
			continue
		}
		stats.Updated++
		stats.Touched(rel)
		e.logger.Info("exported record",
			slog.String("slug", p.Slug), slog.String("path", rel))
	}
}

// exportPost serializes one record to its canonical path, resolving its
// references so the header carries both natural keys and ids.
func (e *Engine) exportPost(p *models.Post) (string, error) {
	in := mapper.SerializeInput{Post: p}

	if p.AuthorID != "" {
		if u, err := e.store.GetUserByID(p.AuthorID); err == nil {
			in.Author = u
		}
	}

	var categorySlug string
	if p.CategoryID != "" {
		c, err := e.store.GetCategoryByID(p.CategoryID)
		if err != nil && !errors.Is(err, apperr.ErrNotFound) {
			return "", err
		}
		if c != nil {
			in.Category = c
			categorySlug = c.Slug
		}
	}

	if p.CoverID != "" {
		if m, err := e.store.GetMediaByID(p.CoverID); err == nil {
			in.Cover = m
		}
	}

	if tags, err := e.store.PostTags(p.ID); err == nil {
		for _, t := range tags {
			in.TagNames = append(in.TagNames, t.Name)
		}
	}

	return e.writer.Write(in, nil, categorySlug)
}
