package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/arnarsson/gitpress/internal/apperr"
	"github.com/arnarsson/gitpress/internal/layout"
	"github.com/arnarsson/gitpress/internal/mapper"
	"github.com/arnarsson/gitpress/internal/models"
)

// outcome classifies what a handler did with one document.
type outcome int

const (
	outcomeCreated outcome = iota
	outcomeUpdated
	outcomeUnchanged
	outcomeCategorySynced
	outcomeError
)

// applyDocument routes one scanned document through the create, update,
// or category-sync handler. Errors are recorded in stats and never abort
// the batch. matched collects the ids of records claimed by documents so
// the full-sync pass can delete the leftovers.
func (e *Engine) applyDocument(ctx context.Context, doc *models.Document,
	candidates []models.Post, matched map[string]bool, stats *models.SyncStats) outcome {

	if doc.IsCategoryIndex {
		if err := e.syncCategoryIndex(doc); err != nil {
			recordIssue(stats, err.Context, err.Code, err.Message)
			return outcomeError
		}
		return outcomeCategorySynced
	}

	// Match before mapping: a document that fails to map still claims its
	// record, so the delete pass never treats a broken file as a removal.
	existing, isMove := mapper.Match(doc, candidates)
	if existing != nil {
		matched[existing.ID] = true
	}

	mapped, serr := e.mapper.MapDocument(doc, false)
	if serr != nil {
		recordIssue(stats, serr.Context, serr.Code, serr.Message)
		return outcomeError
	}

	if existing == nil {
		if err := e.createPost(doc, mapped); err != nil {
			recordIssue(stats, err.Context, err.Code, err.Message)
			return outcomeError
		}
		stats.Added++
		stats.Touched(doc.RelPath)
		return outcomeCreated
	}

	if len(e.diffPost(doc, mapped, existing)) == 0 {
		return outcomeUnchanged
	}
	if err := e.updatePost(doc, mapped, existing, isMove); err != nil {
		recordIssue(stats, err.Context, err.Code, err.Message)
		return outcomeError
	}
	stats.Updated++
	stats.Touched(doc.RelPath)
	return outcomeUpdated
}

// createPost persists a new record for a document and back-signs the
// generated identifiers into the source file. An absent slug is derived
// from the filename or title plus a short random suffix, avoiding a
// uniqueness query at the cost of a slightly longer slug.
func (e *Engine) createPost(doc *models.Document, mapped *mapper.Mapped) *apperr.SyncError {
	p := mapped.Post
	p.ID = uuid.NewString()
	if p.Slug == "" {
		p.Slug = deriveSlug(doc.RelPath, p.Title)
	}

	rendered, err := e.renderer.Render(p.Body)
	if err != nil {
		e.logger.Warn("render failed", slog.String("path", doc.RelPath), slog.String("error", err.Error()))
	} else {
		p.Rendered = rendered
	}

	if err := e.store.CreatePost(&p, mapped.TagIDs); err != nil {
		return apperr.Syncf(doc.RelPath, apperr.CodeStore, "create: %v", err)
	}
	if err := e.backsign(doc, &p); err != nil {
		return err
	}
	e.logger.Info("created post",
		slog.String("path", doc.RelPath), slog.String("slug", p.Slug))
	return nil
}

// updatePost applies the mapped fields to an existing record. The slug is
// excluded from the update set: it is immutable after creation so
// external references stay stable. A move updates source_path to the
// document's current location.
func (e *Engine) updatePost(doc *models.Document, mapped *mapper.Mapped,
	existing *models.Post, isMove bool) *apperr.SyncError {

	p := mapped.Post
	p.ID = existing.ID
	p.Slug = existing.Slug
	p.CreatedAt = existing.CreatedAt
	p.SourcePath = doc.RelPath
	// A document without a declared date keeps the date set at creation;
	// the modified-time fallback would drift on every rewrite.
	if _, ok := doc.Meta["date"]; !ok {
		p.Date = existing.Date
	}

	rendered, err := e.renderer.Render(p.Body)
	if err != nil {
		e.logger.Warn("render failed", slog.String("path", doc.RelPath), slog.String("error", err.Error()))
		p.Rendered = existing.Rendered
	} else {
		p.Rendered = rendered
	}

	if err := e.store.UpdatePost(&p, mapped.TagIDs); err != nil {
		return apperr.Syncf(doc.RelPath, apperr.CodeStore, "update: %v", err)
	}
	if isMove {
		e.logger.Info("detected move",
			slog.String("slug", p.Slug),
			slog.String("from", existing.SourcePath),
			slog.String("to", doc.RelPath))
	}
	return e.backsign(doc, &p)
}

// syncCategoryIndex creates the category on first encounter of its index
// document and merges metadata on subsequent encounters.
func (e *Engine) syncCategoryIndex(doc *models.Document) *apperr.SyncError {
	contentType := doc.DerivedType
	if contentType == "" {
		return apperr.NewSyncError(doc.RelPath, apperr.CodeInvalidType, "category index outside a typed directory")
	}

	existing, err := e.store.GetCategory(doc.DerivedCategory, contentType)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return apperr.Syncf(doc.RelPath, apperr.CodeStore, "category lookup: %v", err)
	}

	merged, serr := e.mapper.MapCategoryIndex(doc, contentType, existing, false)
	if serr != nil {
		return serr
	}

	if existing == nil {
		merged.ID = uuid.NewString()
		if err := e.store.CreateCategory(merged); err != nil {
			return apperr.Syncf(doc.RelPath, apperr.CodeStore, "create category: %v", err)
		}
		e.logger.Info("created category",
			slog.String("slug", merged.Slug), slog.String("type", merged.Type))
	} else if err := e.store.UpdateCategory(merged); err != nil {
		return apperr.Syncf(doc.RelPath, apperr.CodeStore, "update category: %v", err)
	}
	return e.backsignCategory(doc, merged)
}

// deriveSlug builds a slug from the filename stem (or the title when the
// stem is unusable) plus a short random suffix for collision avoidance.
func deriveSlug(relPath, title string) string {
	stem := strings.TrimSuffix(path.Base(relPath), path.Ext(relPath))
	s := layout.Slugify(stem)
	if s == "" || s == "index" {
		s = layout.Slugify(title)
	}
	suffix := uuid.NewString()[:6]
	if s == "" {
		return suffix
	}
	return fmt.Sprintf("%s-%s", s, suffix)
}
